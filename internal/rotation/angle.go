package rotation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidAngle is returned when a value is not one of 0, 90, 180 or 270.
var ErrInvalidAngle = errors.New("invalid rotation angle")

// Angle is a clockwise rotation in degrees. Only the four quarter turns are valid.
type Angle int

const (
	Angle0   Angle = 0
	Angle90  Angle = 90
	Angle180 Angle = 180
	Angle270 Angle = 270
)

// Angles lists every valid angle in ascending order.
var Angles = [4]Angle{Angle0, Angle90, Angle180, Angle270}

// Valid reports whether a is one of the four quarter turns.
func (a Angle) Valid() bool {
	switch a {
	case Angle0, Angle90, Angle180, Angle270:
		return true
	}
	return false
}

// SwapsAxes reports whether rotating by a exchanges the visual width and height.
func (a Angle) SwapsAxes() bool {
	return a == Angle90 || a == Angle270
}

// Next returns the angle that follows a in the given cycle order.
func (a Angle) Next(order CycleOrder) Angle {
	idx := a.index()
	if order == CycleDescending {
		return Angles[(idx+len(Angles)-1)%len(Angles)]
	}
	return Angles[(idx+1)%len(Angles)]
}

// index returns the position of a in Angles; invalid angles map to 0.
func (a Angle) index() int {
	for i, v := range Angles {
		if v == a {
			return i
		}
	}
	return 0
}

func (a Angle) String() string {
	return strconv.Itoa(int(a))
}

// ParseAngle parses "90", "90deg" or "-90" (normalized to 270) into an Angle.
func ParseAngle(s string) (Angle, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(strings.ToLower(s)), "deg")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return Angle0, fmt.Errorf("%w: %q", ErrInvalidAngle, s)
	}
	return NormalizeDegrees(n)
}

// NormalizeDegrees maps any multiple of 90 onto [0, 360).
func NormalizeDegrees(deg int) (Angle, error) {
	if deg%90 != 0 {
		return Angle0, fmt.Errorf("%w: %d", ErrInvalidAngle, deg)
	}
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return Angle(deg), nil
}

// UnmarshalJSON accepts numbers and numeric strings.
func (a *Angle) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAngle(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON writes the angle as a bare number.
func (a Angle) MarshalJSON() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAngle, int(a))
	}
	return []byte(a.String()), nil
}
