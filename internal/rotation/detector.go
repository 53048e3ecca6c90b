package rotation

// VideoSource is the handle to the video element the detector observes.
type VideoSource interface {
	// IntrinsicSize returns the decoded frame size, zero until metadata loads.
	IntrinsicSize() Size
	// MetadataReady reports whether metadata has already been loaded.
	MetadataReady() bool
	// SubscribeMetadata registers fn to run on every metadata-loaded
	// notification and returns a function that removes it.
	SubscribeMetadata(fn func()) (unsubscribe func())
}

// Detection is the result of classifying a known video size.
type Detection struct {
	Size     Size `json:"size"`
	Portrait bool `json:"portrait"`
}

// Detector classifies the attached video as portrait or landscape and
// reports each distinct size exactly once.
type Detector struct {
	onSize func(Detection)

	source      VideoSource
	unsubscribe func()
	generation  uint64
	reported    Size
	disabled    bool
}

// NewDetector returns a detector that calls onSize for each newly known size.
func NewDetector(onSize func(Detection)) *Detector {
	return &Detector{onSize: onSize}
}

// Attach starts observing src, replacing any previous source. Metadata may
// have loaded before the subscription existed, so a ready source is
// checked immediately.
func (d *Detector) Attach(src VideoSource) {
	d.Detach()
	if src == nil {
		return
	}

	d.generation++
	gen := d.generation
	d.source = src
	d.unsubscribe = src.SubscribeMetadata(func() {
		// Drop notifications delivered after Detach or a later Attach.
		if d.generation != gen || d.source == nil {
			return
		}
		d.Detect()
	})

	if src.MetadataReady() {
		d.Detect()
	}
}

// Detach releases the metadata subscription. It is safe to call repeatedly.
func (d *Detector) Detach() {
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
	if d.source != nil {
		d.generation++
	}
	d.source = nil
	d.reported = Size{}
}

// Attached reports whether a source is currently observed.
func (d *Detector) Attached() bool {
	return d.source != nil
}

// SetEnabled turns detection on or off. Re-enabling runs an immediate
// check so a size that loaded while disabled is not lost.
func (d *Detector) SetEnabled(enabled bool) {
	wasDisabled := d.disabled
	d.disabled = !enabled
	if enabled && wasDisabled {
		d.Detect()
	}
}

// Detect reads the intrinsic size of the attached source. It returns false
// when no source is attached, detection is disabled, or the size is still
// unknown. A size different from the last reported one is passed to onSize.
func (d *Detector) Detect() (Detection, bool) {
	if d.source == nil || d.disabled {
		return Detection{}, false
	}

	size := d.source.IntrinsicSize()
	if !size.Known() {
		return Detection{}, false
	}

	det := Detection{Size: size, Portrait: size.Portrait()}
	if size != d.reported {
		d.reported = size
		if d.onSize != nil {
			d.onSize(det)
		}
	}
	return det, true
}
