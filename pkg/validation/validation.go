// Package validation sanitizes values that cross into the simulation from
// devices, sliders and configuration files.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Simulation input limits
const (
	MaxDeltaTime   = 0.033
	MaxTimeSpeed   = 4.0
	MinZoomSlider  = 1.0
	MaxZoomSlider  = 100.0
	MaxLookDelta   = 2000.0 // pointer units accepted per tick
	MaxBodyNameLen = 32
)

// Body names appear in the HUD and are used as focus keys.
var validBodyNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.()']+$`)

// SanitizeDeltaTime maps NaN, infinite and negative frame times to 0 and caps
// the rest at MaxDeltaTime.
func SanitizeDeltaTime(dt float64) float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return 0
	}
	return math.Min(dt, MaxDeltaTime)
}

// ClampTimeSpeed limits the orbital time multiplier to [0, MaxTimeSpeed].
func ClampTimeSpeed(v float64) float64 {
	return clampFinite(v, 0, MaxTimeSpeed, 1)
}

// ClampZoomSlider limits a zoom slider value to [MinZoomSlider, MaxZoomSlider].
func ClampZoomSlider(v float64) float64 {
	return clampFinite(v, MinZoomSlider, MaxZoomSlider, MaxZoomSlider/2)
}

// ClampAxis limits a joystick component to [-1, 1].
func ClampAxis(v float64) float64 {
	return clampFinite(v, -1, 1, 0)
}

// ClampLookDelta limits one component of a pointer drag delta.
func ClampLookDelta(v float64) float64 {
	return clampFinite(v, -MaxLookDelta, MaxLookDelta, 0)
}

func clampFinite(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return math.Max(lo, math.Min(hi, v))
}

// ValidateBodyName validates and trims a celestial body name.
func ValidateBodyName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("body name cannot be empty")
	}

	if len(name) > MaxBodyNameLen {
		return "", fmt.Errorf("body name too long: %d characters (max %d)", len(name), MaxBodyNameLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("body name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("body name cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("body name contains control characters")
		}
	}

	if !validBodyNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("body name contains invalid characters (only alphanumeric, spaces, hyphens, underscores, apostrophes and basic punctuation allowed)")
	}

	return trimmed, nil
}

// ValidatePositive reports an error when a tuning value is not a positive
// finite number.
func ValidatePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%s must be a positive number, got %v", field, v)
	}
	return nil
}

// ValidateNonNegative reports an error when a value is negative or not finite.
func ValidateNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s must not be negative, got %v", field, v)
	}
	return nil
}
