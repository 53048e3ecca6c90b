package rotation

// Size is the decoded frame size of a video in pixels.
// A zero in either dimension means the size is not known yet.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Known reports whether both dimensions are available.
func (s Size) Known() bool {
	return s.Width > 0 && s.Height > 0
}

// Portrait reports whether the frame is taller than it is wide.
// Square frames are landscape.
func (s Size) Portrait() bool {
	return s.Known() && s.Height > s.Width
}

// ContainerSize is the rendered size of the element hosting the video, in layout pixels.
type ContainerSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Known reports whether both dimensions are positive.
func (c ContainerSize) Known() bool {
	return c.Width > 0 && c.Height > 0
}

// Orientation is the classification of a known video size.
type Orientation string

const (
	OrientationUnknown   Orientation = "unknown"
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// OrientationOf classifies s.
func OrientationOf(s Size) Orientation {
	switch {
	case !s.Known():
		return OrientationUnknown
	case s.Portrait():
		return OrientationPortrait
	default:
		return OrientationLandscape
	}
}
