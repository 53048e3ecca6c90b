package rotation

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Positioning says how the renderer places the video element.
type Positioning string

const (
	// PositionInline leaves the element in normal flow at 100% × 100%.
	PositionInline Positioning = "inline"
	// PositionAbsoluteCentered places the element at top/left 50% and
	// translates it back by half its own box before rotating.
	PositionAbsoluteCentered Positioning = "absolute-centered"
)

// Length units understood by the renderer.
const (
	UnitPercent        = "%"
	UnitPixel          = "px"
	UnitViewportWidth  = "vw"
	UnitViewportHeight = "vh"
)

// Length is a CSS length.
type Length struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Percent returns a percentage length.
func Percent(v float64) Length { return Length{Value: v, Unit: UnitPercent} }

// Pixels returns a pixel length.
func Pixels(v float64) Length { return Length{Value: v, Unit: UnitPixel} }

func (l Length) String() string {
	return formatNumber(l.Value) + l.Unit
}

// MarshalJSON renders the length as a CSS string such as "450px".
func (l Length) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// TransformResult is the style the renderer applies to the video element.
type TransformResult struct {
	Identity        bool        `json:"identity"`
	RotationDegrees int         `json:"rotationDegrees"`
	ScaleFactor     float64     `json:"scaleFactor"`
	Positioning     Positioning `json:"positioning"`
	Width           Length      `json:"width"`
	Height          Length      `json:"height"`
	Strategy        Strategy    `json:"strategy"`
}

// Style renders the result as CSS properties. The identity transform
// yields an empty map so the renderer can clear any previous style.
func (t TransformResult) Style() map[string]string {
	style := map[string]string{}
	if t.Identity {
		return style
	}

	var transform []string
	if t.Positioning == PositionAbsoluteCentered {
		transform = append(transform, "translate(-50%, -50%)")
		style["position"] = "absolute"
		style["top"] = "50%"
		style["left"] = "50%"
	}
	transform = append(transform, "rotate("+strconv.Itoa(t.RotationDegrees)+"deg)")
	if t.ScaleFactor != 1 {
		transform = append(transform, "scale("+formatNumber(t.ScaleFactor)+")")
	}

	style["transform"] = strings.Join(transform, " ")
	style["transformOrigin"] = "center center"
	style["width"] = t.Width.String()
	style["height"] = t.Height.String()
	return style
}

// TransformInput is every value a transform depends on. It doubles as the
// memoization key, so it must stay comparable.
type TransformInput struct {
	Angle      Angle
	Container  ContainerSize
	Video      Size
	Fullscreen bool
	Enabled    bool
	Strategy   Strategy
}

// IdentityTransform is the untouched element: no rotation, 100% box.
func IdentityTransform() TransformResult {
	return TransformResult{
		Identity:        true,
		RotationDegrees: 0,
		ScaleFactor:     1,
		Positioning:     PositionInline,
		Width:           Percent(100),
		Height:          Percent(100),
	}
}

// rotationOnly rotates a 100% box in place without scaling.
func rotationOnly(a Angle, strategy Strategy) TransformResult {
	t := IdentityTransform()
	t.Identity = false
	t.RotationDegrees = int(a)
	t.Strategy = strategy
	return t
}

// ComputeTransform derives the element style for in. It never divides by
// a zero dimension: missing sizes degrade to a rotation-only transform.
func ComputeTransform(in TransformInput) TransformResult {
	if !in.Enabled || in.Angle == Angle0 || !in.Angle.Valid() {
		return IdentityTransform()
	}
	if !in.Angle.SwapsAxes() || !in.Container.Known() || !in.Video.Known() {
		return rotationOnly(in.Angle, in.Strategy)
	}

	switch in.Strategy {
	case StrategyStaticScale:
		return staticScale(in)
	case StrategyFullscreenSwap:
		if in.Fullscreen {
			return fullscreenSwap(in)
		}
		return containerRelative(in)
	default:
		return containerRelative(in)
	}
}

// containerRelative sizes the unrotated box to the container's height ×
// width so that after a quarter turn it covers exactly the container.
func containerRelative(in TransformInput) TransformResult {
	return TransformResult{
		RotationDegrees: int(in.Angle),
		ScaleFactor:     1,
		Positioning:     PositionAbsoluteCentered,
		Width:           Pixels(in.Container.Height),
		Height:          Pixels(in.Container.Width),
		Strategy:        in.Strategy,
	}
}

// staticScale rotates the 100% box in place and scales it so the rotated
// box spans the container width. Exact only when the container matches
// the video's rotated aspect ratio.
func staticScale(in TransformInput) TransformResult {
	t := rotationOnly(in.Angle, in.Strategy)
	t.ScaleFactor = in.Container.Width / in.Container.Height
	return t
}

// fullscreenSwap sizes the box to the viewport with its axes exchanged.
func fullscreenSwap(in TransformInput) TransformResult {
	return TransformResult{
		RotationDegrees: int(in.Angle),
		ScaleFactor:     1,
		Positioning:     PositionAbsoluteCentered,
		Width:           Length{Value: 100, Unit: UnitViewportHeight},
		Height:          Length{Value: 100, Unit: UnitViewportWidth},
		Strategy:        in.Strategy,
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
