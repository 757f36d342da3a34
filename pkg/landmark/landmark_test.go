package landmark

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/venuslab/glowup/pkg/types"
)

// fakeDetector returns a fixed point set and counts invocations.
type fakeDetector struct {
	points []Point
	err    error
	calls  int
}

func (f *fakeDetector) DetectPoints(_ context.Context, _ image.Image) ([]Point, error) {
	f.calls++
	return f.points, f.err
}

// meshPoints builds a full 478-point set where every point sits at the
// given coordinate, then overrides selected indices.
func meshPoints(base Point, overrides map[int]Point) []Point {
	points := make([]Point, 478)
	for i := range points {
		points[i] = base
	}
	for idx, p := range overrides {
		points[idx] = p
	}
	return points
}

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 100, 100))
}

func TestFeaturesBoxGeometry(t *testing.T) {
	// Spread the eye indices so the eyes box spans a known rectangle.
	points := meshPoints(Point{X: 0.5, Y: 0.5}, map[int]Point{
		33:  {X: 0.30, Y: 0.40}, // leftmost, topmost
		263: {X: 0.70, Y: 0.45},
		145: {X: 0.40, Y: 0.48}, // bottom edge
	})

	adapter := New(func() (PointDetector, error) {
		return &fakeDetector{points: points}, nil
	})

	features := adapter.Features(context.Background(), testImage())
	if features == nil {
		t.Fatal("Features returned nil for a detected face")
	}

	want := types.BoundingBox{Xmin: 300, Ymin: 400, Xmax: 700, Ymax: 500}
	if features.Eyes != want {
		t.Errorf("Eyes box = %+v, want %+v", features.Eyes, want)
	}

	// All other regions collapse onto the base point.
	collapsed := types.BoundingBox{Xmin: 500, Ymin: 500, Xmax: 500, Ymax: 500}
	if features.Lips != collapsed {
		t.Errorf("Lips box = %+v, want %+v", features.Lips, collapsed)
	}
}

func TestFeaturesFloorScaling(t *testing.T) {
	points := meshPoints(Point{X: 0.1239, Y: 0.9999}, nil)
	adapter := New(func() (PointDetector, error) {
		return &fakeDetector{points: points}, nil
	})

	features := adapter.Features(context.Background(), testImage())
	if features == nil {
		t.Fatal("Features returned nil")
	}
	if features.Eyes.Xmin != 123 || features.Eyes.Ymin != 999 {
		t.Errorf("expected floor scaling to (123, 999), got (%d, %d)",
			features.Eyes.Xmin, features.Eyes.Ymin)
	}
}

func TestFeaturesNoFace(t *testing.T) {
	adapter := New(func() (PointDetector, error) {
		return &fakeDetector{points: nil}, nil
	})

	if features := adapter.Features(context.Background(), testImage()); features != nil {
		t.Errorf("expected nil features for no face, got %+v", features)
	}
}

func TestFeaturesDetectorError(t *testing.T) {
	adapter := New(func() (PointDetector, error) {
		return &fakeDetector{err: errors.New("detector offline")}, nil
	})

	if features := adapter.Features(context.Background(), testImage()); features != nil {
		t.Errorf("expected nil features on detector error, got %+v", features)
	}
}

func TestInitFailureIsNonFatal(t *testing.T) {
	initCalls := 0
	adapter := New(func() (PointDetector, error) {
		initCalls++
		return nil, errors.New("weights unavailable")
	})

	for i := 0; i < 3; i++ {
		if features := adapter.Features(context.Background(), testImage()); features != nil {
			t.Fatalf("expected nil features after init failure, got %+v", features)
		}
	}

	if initCalls != 1 {
		t.Errorf("factory called %d times, want 1 (memoized)", initCalls)
	}
}

func TestInitMemoized(t *testing.T) {
	detector := &fakeDetector{points: meshPoints(Point{X: 0.5, Y: 0.5}, nil)}
	initCalls := 0
	adapter := New(func() (PointDetector, error) {
		initCalls++
		return detector, nil
	})

	if err := adapter.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	adapter.Features(context.Background(), testImage())
	adapter.Features(context.Background(), testImage())

	if initCalls != 1 {
		t.Errorf("factory called %d times, want 1", initCalls)
	}
	if detector.calls != 2 {
		t.Errorf("detector called %d times, want 2", detector.calls)
	}
}

func TestBoxFromPointsSkipsOutOfRange(t *testing.T) {
	// Only 10 points: every configured index beyond that is ignored,
	// but index 7 is still in range for the eyes.
	points := make([]Point, 10)
	for i := range points {
		points[i] = Point{X: 0.2, Y: 0.3}
	}

	box, ok := boxFromPoints(points, eyeIndices)
	if !ok {
		t.Fatal("expected an in-range eye point at index 7")
	}
	if box.Xmin != 200 || box.Ymin != 300 {
		t.Errorf("box = %+v, want collapsed box at (200, 300)", box)
	}
}

func TestBoxFromPointsAllOutOfRange(t *testing.T) {
	points := make([]Point, 5) // below every eye index
	if _, ok := boxFromPoints(points, eyeIndices); ok {
		t.Error("expected ok=false when no index is in range")
	}
}

func TestFeaturesTruncatedMesh(t *testing.T) {
	// A detector returning fewer points than the smallest eye index
	// must yield no features, not a degenerate box.
	points := make([]Point, 5)
	for i := range points {
		points[i] = Point{X: 0.4, Y: 0.4}
	}
	adapter := New(func() (PointDetector, error) {
		return &fakeDetector{points: points}, nil
	})

	if features := adapter.Features(context.Background(), testImage()); features != nil {
		t.Errorf("expected nil features for a truncated mesh, got %+v", features)
	}
}
