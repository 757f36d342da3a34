// Package cropper renders per-step close-ups of a transformed result
// image. Landmark boxes are tight around the feature itself, so each
// facial region gets an asymmetric padding ratio that restores the
// surrounding context before the crop is clipped to image bounds.
package cropper

import (
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/venuslab/glowup/pkg/types"
)

// ErrPending signals that no bounding box is available yet for a
// non-face region. Callers should show a loading state, not an error:
// the crop is best-effort and may simply never arrive.
var ErrPending = errors.New("crop pending: no feature box available")

// padding holds the per-axis expansion ratios applied to a region box.
type padding struct {
	x float64
	y float64
}

// Per-area padding. Lips get the widest horizontal pad to capture
// mouth shape context, eyes and brows a taller vertical pad.
var areaPadding = map[types.Area]padding{
	types.AreaLips:  {x: 0.8, y: 1.2},
	types.AreaEyes:  {x: 0.4, y: 0.8},
	types.AreaBrows: {x: 0.3, y: 0.8},
}

var defaultPadding = padding{x: 0.5, y: 0.6}

// RegionCropper computes padded close-up crops from landmark boxes.
type RegionCropper struct{}

// New creates a RegionCropper.
func New() *RegionCropper {
	return &RegionCropper{}
}

// Crop renders the close-up for the given area. Area Face always
// yields the full image unmodified. Other areas require a box scaled
// in the 0-1000 space; a nil box returns ErrPending.
func (c *RegionCropper) Crop(img image.Image, area types.Area, box *types.BoundingBox) (image.Image, error) {
	if area == types.AreaFace {
		return img, nil
	}
	if box == nil {
		return nil, ErrPending
	}

	rect := CropRect(img.Bounds().Dx(), img.Bounds().Dy(), area, *box)
	if rect.Empty() {
		return nil, errors.New("empty crop rectangle")
	}

	return imaging.Crop(img, rect), nil
}

// CropRect computes the padded, clipped crop rectangle in pixel
// coordinates. Pure function of its inputs: the same box and area
// always produce identical geometry.
func CropRect(imgWidth, imgHeight int, area types.Area, box types.BoundingBox) image.Rectangle {
	scaleX := float64(imgWidth) / 1000.0
	scaleY := float64(imgHeight) / 1000.0

	x := float64(box.Xmin) * scaleX
	y := float64(box.Ymin) * scaleY
	w := float64(box.Xmax-box.Xmin) * scaleX
	h := float64(box.Ymax-box.Ymin) * scaleY

	pad, ok := areaPadding[area]
	if !ok {
		pad = defaultPadding
	}

	padX := w * pad.x
	padY := h * pad.y

	x = math.Max(0, x-padX)
	y = math.Max(0, y-padY)
	w = math.Min(float64(imgWidth)-x, w+2*padX)
	h = math.Min(float64(imgHeight)-y, h+2*padY)

	return image.Rect(int(x), int(y), int(x+w), int(y+h))
}
