// Package landmark reduces raw face-mesh landmark points into three
// fixed facial-region bounding boxes (brows, eyes, lips) in a 0-1000
// coordinate space. Detection itself is delegated to an external
// capability behind the PointDetector interface; missing features are
// a degraded mode, never an error.
package landmark

import (
	"context"
	"image"
	"math"
	"sync"

	"github.com/venuslab/glowup/pkg/types"
)

// Point is one detected landmark, normalized to [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointDetector finds the face-mesh landmark points of at most one
// face. An empty point set means no face was found.
type PointDetector interface {
	DetectPoints(ctx context.Context, img image.Image) ([]Point, error)
}

// Landmark index groups of the 478-point face mesh. Eyes and brows
// merge the left and right sides into one region; lips include both
// the inner and outer contour.
var (
	eyeIndices = []int{33, 133, 160, 159, 158, 144, 145, 153, 246, 7,
		362, 263, 387, 386, 385, 373, 374, 380, 249}

	browIndices = []int{70, 63, 105, 66, 107, 55, 65, 52, 53, 46,
		336, 296, 334, 293, 300, 285, 295, 282, 283, 276}

	lipIndices = []int{61, 146, 91, 181, 84, 17, 314, 405, 321, 375,
		291, 409, 270, 269, 267, 0, 37, 39, 40, 185, 78, 95, 88, 178,
		87, 14, 317, 402, 318, 324, 308, 415, 310, 311, 312, 13, 82,
		81, 80, 191}
)

// Adapter wraps a lazily initialized PointDetector. Initialization of
// the underlying capability is heavy (model weights), so it runs at
// most once for the process lifetime; a failed init silently disables
// the feature set.
type Adapter struct {
	factory func() (PointDetector, error)

	once     sync.Once
	detector PointDetector
	initErr  error
}

// New creates an Adapter. The factory is invoked on first use.
func New(factory func() (PointDetector, error)) *Adapter {
	return &Adapter{factory: factory}
}

// Init forces eager initialization. Safe to call concurrently and to
// ignore the result: a later Features call repeats nothing.
func (a *Adapter) Init() error {
	a.once.Do(func() {
		a.detector, a.initErr = a.factory()
	})
	return a.initErr
}

// Features detects the facial regions of img. It returns nil when the
// detector could not be initialized, no face is present, or detection
// fails; callers must treat nil as an optional enhancement.
func (a *Adapter) Features(ctx context.Context, img image.Image) *types.FaceFeatures {
	if a.Init() != nil {
		return nil
	}

	points, err := a.detector.DetectPoints(ctx, img)
	if err != nil || len(points) == 0 {
		return nil
	}

	eyes, ok := boxFromPoints(points, eyeIndices)
	if !ok {
		return nil
	}
	brows, ok := boxFromPoints(points, browIndices)
	if !ok {
		return nil
	}
	lips, ok := boxFromPoints(points, lipIndices)
	if !ok {
		return nil
	}

	return &types.FaceFeatures{Eyes: eyes, Brows: brows, Lips: lips}
}

// boxFromPoints computes the bounding box of the indexed points,
// scaled into the 0-1000 integer space by floor(coord * 1000).
// Indices past the end of the point set are skipped; ok reports
// whether any indexed point was in range, so a truncated point set
// never yields an inverted box.
func boxFromPoints(points []Point, indices []int) (box types.BoundingBox, ok bool) {
	xmin, ymin := 1.0, 1.0
	xmax, ymax := 0.0, 0.0

	for _, idx := range indices {
		if idx >= len(points) {
			continue
		}
		ok = true
		p := points[idx]
		if p.X < xmin {
			xmin = p.X
		}
		if p.X > xmax {
			xmax = p.X
		}
		if p.Y < ymin {
			ymin = p.Y
		}
		if p.Y > ymax {
			ymax = p.Y
		}
	}
	if !ok {
		return types.BoundingBox{}, false
	}

	return types.BoundingBox{
		Xmin: int(math.Floor(xmin * 1000)),
		Ymin: int(math.Floor(ymin * 1000)),
		Xmax: int(math.Floor(xmax * 1000)),
		Ymax: int(math.Floor(ymax * 1000)),
	}, true
}
