package rotation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPolicy is returned by Policy.Validate and the Parse helpers.
var ErrInvalidPolicy = errors.New("invalid rotation policy")

// Trigger selects when a portrait video is rotated automatically.
type Trigger string

const (
	// TriggerOnLoad rotates as soon as the video size is known.
	TriggerOnLoad Trigger = "load"
	// TriggerOnFullscreen only records orientation on load and rotates on fullscreen entry.
	TriggerOnFullscreen Trigger = "fullscreen"
)

// CycleOrder is the order Toggle walks through the angles.
type CycleOrder string

const (
	// CycleAscending is 0 → 90 → 180 → 270 → 0.
	CycleAscending CycleOrder = "ascending"
	// CycleDescending is 0 → 270 → 180 → 90 → 0.
	CycleDescending CycleOrder = "descending"
)

// Strategy selects how a rotated video is fitted into its container.
type Strategy string

const (
	// StrategyContainerRelative swaps the element box to the container's
	// height × width, centers it absolutely and rotates it.
	StrategyContainerRelative Strategy = "container"
	// StrategyStaticScale rotates a 100% box in place and scales it by an aspect ratio.
	StrategyStaticScale Strategy = "static"
	// StrategyFullscreenSwap sizes the box to 100vh × 100vw while fullscreen.
	StrategyFullscreenSwap Strategy = "fullscreen-swap"
)

// Policy fixes the behavioural choices of a controller for its whole life.
type Policy struct {
	Trigger   Trigger    `json:"trigger"`
	Cycle     CycleOrder `json:"cycle"`
	AutoAngle Angle      `json:"autoAngle"`
	Strategy  Strategy   `json:"strategy"`
}

// DefaultPolicy rotates portrait video to 90° as soon as its size is known,
// toggles in ascending order and fits with the container-relative strategy.
func DefaultPolicy() Policy {
	return Policy{
		Trigger:   TriggerOnLoad,
		Cycle:     CycleAscending,
		AutoAngle: Angle90,
		Strategy:  StrategyContainerRelative,
	}
}

// Validate checks every field of p.
func (p Policy) Validate() error {
	switch p.Trigger {
	case TriggerOnLoad, TriggerOnFullscreen:
	default:
		return fmt.Errorf("%w: trigger %q", ErrInvalidPolicy, p.Trigger)
	}
	switch p.Cycle {
	case CycleAscending, CycleDescending:
	default:
		return fmt.Errorf("%w: cycle %q", ErrInvalidPolicy, p.Cycle)
	}
	if !p.AutoAngle.SwapsAxes() {
		return fmt.Errorf("%w: auto angle must be 90 or 270, got %d", ErrInvalidPolicy, p.AutoAngle)
	}
	switch p.Strategy {
	case StrategyContainerRelative, StrategyStaticScale, StrategyFullscreenSwap:
	default:
		return fmt.Errorf("%w: strategy %q", ErrInvalidPolicy, p.Strategy)
	}
	return nil
}

// withDefaults fills zero-valued fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.Trigger == "" {
		p.Trigger = def.Trigger
	}
	if p.Cycle == "" {
		p.Cycle = def.Cycle
	}
	if p.AutoAngle == Angle0 {
		p.AutoAngle = def.AutoAngle
	}
	if p.Strategy == "" {
		p.Strategy = def.Strategy
	}
	return p
}

// ParseTrigger accepts "load"/"onload" and "fullscreen"/"onfullscreen".
func ParseTrigger(s string) (Trigger, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "load", "onload", "on-load":
		return TriggerOnLoad, nil
	case "fullscreen", "onfullscreen", "on-fullscreen":
		return TriggerOnFullscreen, nil
	}
	return "", fmt.Errorf("%w: trigger %q", ErrInvalidPolicy, s)
}

// ParseCycleOrder accepts "ascending"/"asc"/"cw" and "descending"/"desc"/"ccw".
func ParseCycleOrder(s string) (CycleOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascending", "asc", "cw":
		return CycleAscending, nil
	case "descending", "desc", "ccw":
		return CycleDescending, nil
	}
	return "", fmt.Errorf("%w: cycle %q", ErrInvalidPolicy, s)
}

// ParseStrategy accepts the strategy names plus a few aliases.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "container", "container-relative", "absolute":
		return StrategyContainerRelative, nil
	case "static", "static-scale", "scale":
		return StrategyStaticScale, nil
	case "fullscreen-swap", "swap", "viewport":
		return StrategyFullscreenSwap, nil
	}
	return "", fmt.Errorf("%w: strategy %q", ErrInvalidPolicy, s)
}
