package session

import "media-player/internal/rotation"

// videoSource is a rotation.VideoSource fed by pushes: the browser reports
// videoWidth/videoHeight after loadedmetadata, or the background probe
// fills in the size from ffprobe.
type videoSource struct {
	size      rotation.Size
	ready     bool
	listeners map[uint64]func()
	nextID    uint64
}

func newVideoSource() *videoSource {
	return &videoSource{listeners: make(map[uint64]func())}
}

func (v *videoSource) IntrinsicSize() rotation.Size { return v.size }

func (v *videoSource) MetadataReady() bool { return v.ready }

func (v *videoSource) SubscribeMetadata(fn func()) func() {
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	return func() { delete(v.listeners, id) }
}

// set records a size without notifying listeners.
func (v *videoSource) set(size rotation.Size) {
	if !size.Known() {
		return
	}
	v.size = size
	v.ready = true
}

// load records a size and delivers a metadata-loaded notification.
func (v *videoSource) load(size rotation.Size) {
	if !size.Known() {
		return
	}
	v.set(size)
	for _, fn := range v.snapshotListeners() {
		fn()
	}
}

func (v *videoSource) snapshotListeners() []func() {
	fns := make([]func(), 0, len(v.listeners))
	for _, fn := range v.listeners {
		fns = append(fns, fn)
	}
	return fns
}

// reportedContainer is the last container size the renderer reported.
// The controller queries it on every transform computation.
type reportedContainer struct {
	size rotation.ContainerSize
}

func (c *reportedContainer) ContainerSize() rotation.ContainerSize { return c.size }
