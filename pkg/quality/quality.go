// Package quality gates captured photos on basic exposure before they
// enter a session. The check is a cheap lighting proxy: no histogram
// and no face-presence test, those belong to the analysis collaborator.
package quality

import (
	"fmt"
	"image"
)

// Rejection reasons.
const (
	ReasonTooDark   = "too_dark"
	ReasonTooBright = "too_bright"
)

// Luminance acceptance window, in 8-bit channel units.
const (
	MinLuminance = 40.0
	MaxLuminance = 230.0
)

// Result is the outcome of a gate check.
type Result struct {
	OK        bool
	Reason    string // empty when OK
	Luminance float64
}

// Error wraps a failed check so callers can surface the reason tag.
type Error struct {
	Reason    string
	Luminance float64
}

func (e *Error) Error() string {
	return fmt.Sprintf("photo rejected: %s (mean luminance %.1f)", e.Reason, e.Luminance)
}

// Gate evaluates exposure acceptability of captured images.
type Gate struct {
	min float64
	max float64
}

// New creates a Gate with the default acceptance window.
func New() *Gate {
	return &Gate{min: MinLuminance, max: MaxLuminance}
}

// Check computes the unweighted mean of (R+G+B)/3 over all pixels and
// accepts iff min <= mean <= max.
func (g *Gate) Check(img image.Image) Result {
	mean := MeanLuminance(img)

	switch {
	case mean < g.min:
		return Result{OK: false, Reason: ReasonTooDark, Luminance: mean}
	case mean > g.max:
		return Result{OK: false, Reason: ReasonTooBright, Luminance: mean}
	default:
		return Result{OK: true, Luminance: mean}
	}
}

// MeanLuminance returns the average per-pixel brightness of img in
// 8-bit units, 0 for an empty image.
func MeanLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0
	}

	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA channels are 16-bit; scale down to 8-bit.
			total += float64(r>>8+g>>8+b>>8) / 3.0
		}
	}

	return total / float64(width*height)
}
