package rotation

// fakeSource is a VideoSource whose metadata is loaded by the test.
type fakeSource struct {
	size      Size
	ready     bool
	listeners map[int]func()
	nextID    int
	subs      int
	unsubs    int
}

func newFakeSource() *fakeSource {
	return &fakeSource{listeners: map[int]func(){}}
}

func (f *fakeSource) IntrinsicSize() Size { return f.size }

func (f *fakeSource) MetadataReady() bool { return f.ready }

func (f *fakeSource) SubscribeMetadata(fn func()) func() {
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.subs++
	return func() {
		if _, ok := f.listeners[id]; ok {
			delete(f.listeners, id)
			f.unsubs++
		}
	}
}

// load sets the size without notifying, as if metadata arrived before anyone listened.
func (f *fakeSource) load(w, h int) {
	f.size = Size{Width: w, Height: h}
	f.ready = true
}

// fire delivers a metadata-loaded notification to every listener.
func (f *fakeSource) fire() {
	for _, fn := range f.listeners {
		fn()
	}
}

// loadAndFire is the normal path: metadata loads and listeners are told.
func (f *fakeSource) loadAndFire(w, h int) {
	f.load(w, h)
	f.fire()
}

// fakeContainer is a ContainerMeasurer whose size the test changes.
type fakeContainer struct {
	size  ContainerSize
	reads int
}

func (c *fakeContainer) ContainerSize() ContainerSize {
	c.reads++
	return c.size
}

type transitionRecord struct {
	t        Transition
	from, to Angle
}

type recordingObserver struct {
	transitions []transitionRecord
	hits        int
	misses      int
}

func (o *recordingObserver) ObserveTransition(t Transition, from, to Angle) {
	o.transitions = append(o.transitions, transitionRecord{t, from, to})
}

func (o *recordingObserver) ObserveTransform(cached bool) {
	if cached {
		o.hits++
	} else {
		o.misses++
	}
}
