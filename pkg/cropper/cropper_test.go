package cropper

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/venuslab/glowup/pkg/types"
)

// createTestImage creates a simple gradient test image.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	return img
}

func TestCropFaceReturnsFullImage(t *testing.T) {
	c := New()
	img := createTestImage(200, 150)

	result, err := c.Crop(img, types.AreaFace, nil)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if result != img {
		t.Error("expected Face crop to return the original image unmodified")
	}
}

func TestCropMissingBoxIsPending(t *testing.T) {
	c := New()
	img := createTestImage(200, 150)

	for _, area := range []types.Area{types.AreaEyes, types.AreaBrows, types.AreaLips} {
		_, err := c.Crop(img, area, nil)
		if !errors.Is(err, ErrPending) {
			t.Errorf("Crop(%s, nil box) error = %v, want ErrPending", area, err)
		}
	}
}

func TestCropRectWithinBounds(t *testing.T) {
	boxes := []types.BoundingBox{
		{Xmin: 0, Ymin: 0, Xmax: 1000, Ymax: 1000},
		{Xmin: 10, Ymin: 10, Xmax: 100, Ymax: 80},
		{Xmin: 900, Ymin: 950, Xmax: 1000, Ymax: 1000},
		{Xmin: 450, Ymin: 450, Xmax: 550, Ymax: 550},
		{Xmin: 0, Ymin: 990, Xmax: 30, Ymax: 1000},
	}
	areas := []types.Area{types.AreaEyes, types.AreaBrows, types.AreaLips, "Cheeks"}

	const imgW, imgH = 640, 480
	for _, box := range boxes {
		for _, area := range areas {
			rect := CropRect(imgW, imgH, area, box)
			if rect.Min.X < 0 || rect.Min.Y < 0 {
				t.Errorf("CropRect(%s, %+v) has negative origin: %v", area, box, rect)
			}
			if rect.Max.X > imgW || rect.Max.Y > imgH {
				t.Errorf("CropRect(%s, %+v) exceeds image bounds: %v", area, box, rect)
			}
		}
	}
}

func TestCropRectIdempotent(t *testing.T) {
	box := types.BoundingBox{Xmin: 300, Ymin: 400, Xmax: 500, Ymax: 480}

	first := CropRect(800, 600, types.AreaLips, box)
	for i := 0; i < 5; i++ {
		if got := CropRect(800, 600, types.AreaLips, box); got != first {
			t.Fatalf("CropRect not deterministic: got %v, want %v", got, first)
		}
	}
}

func TestCropRectPaddingByArea(t *testing.T) {
	// Box in the image center so no clipping interferes with the
	// padding comparison.
	box := types.BoundingBox{Xmin: 450, Ymin: 450, Xmax: 550, Ymax: 550}
	const imgW, imgH = 1000, 1000

	lips := CropRect(imgW, imgH, types.AreaLips, box)
	eyes := CropRect(imgW, imgH, types.AreaEyes, box)
	brows := CropRect(imgW, imgH, types.AreaBrows, box)
	other := CropRect(imgW, imgH, "Cheeks", box)

	// Lips: 100px box padded 0.8x horizontally -> 100 + 160 = 260 wide.
	if lips.Dx() != 260 {
		t.Errorf("lips width = %d, want 260", lips.Dx())
	}
	// Lips: padded 1.2x vertically -> 100 + 240 = 340 tall.
	if lips.Dy() != 340 {
		t.Errorf("lips height = %d, want 340", lips.Dy())
	}
	// Eyes: 0.4x / 0.8x -> 180 x 260.
	if eyes.Dx() != 180 || eyes.Dy() != 260 {
		t.Errorf("eyes rect = %dx%d, want 180x260", eyes.Dx(), eyes.Dy())
	}
	// Brows: 0.3x / 0.8x -> 160 x 260.
	if brows.Dx() != 160 || brows.Dy() != 260 {
		t.Errorf("brows rect = %dx%d, want 160x260", brows.Dx(), brows.Dy())
	}
	// Unknown area defaults to 0.5x / 0.6x -> 200 x 220.
	if other.Dx() != 200 || other.Dy() != 220 {
		t.Errorf("default rect = %dx%d, want 200x220", other.Dx(), other.Dy())
	}
}

func TestCropRectClipsAtEdges(t *testing.T) {
	// Box hugging the top-left corner: padding cannot go negative.
	box := types.BoundingBox{Xmin: 0, Ymin: 0, Xmax: 100, Ymax: 100}
	rect := CropRect(500, 500, types.AreaLips, box)

	if rect.Min.X != 0 || rect.Min.Y != 0 {
		t.Errorf("expected origin clipped to (0,0), got %v", rect.Min)
	}
}

func TestCropProducesSubImage(t *testing.T) {
	c := New()
	img := createTestImage(400, 300)
	box := &types.BoundingBox{Xmin: 400, Ymin: 400, Xmax: 600, Ymax: 600}

	result, err := c.Crop(img, types.AreaEyes, box)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	want := CropRect(400, 300, types.AreaEyes, *box)
	bounds := result.Bounds()
	if bounds.Dx() != want.Dx() || bounds.Dy() != want.Dy() {
		t.Errorf("cropped image is %dx%d, want %dx%d",
			bounds.Dx(), bounds.Dy(), want.Dx(), want.Dy())
	}
}

func BenchmarkCropRect(b *testing.B) {
	box := types.BoundingBox{Xmin: 300, Ymin: 400, Xmax: 500, Ymax: 480}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CropRect(1920, 1080, types.AreaEyes, box)
	}
}
