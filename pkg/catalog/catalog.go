// Package catalog provides read-only access to the makeup style
// catalog. The backing store may be unavailable; a fixed built-in set
// of styles guarantees the selector is never empty.
package catalog

import (
	"context"

	"github.com/venuslab/glowup/pkg/types"
)

// Store fetches the full style catalog. Implementations treat the
// catalog as external, read-only data.
type Store interface {
	ListStyles(ctx context.Context) ([]types.MakeupStyle, error)
}

// fallbackStyles is the built-in catalog used when the store is empty
// or unreachable.
var fallbackStyles = []types.MakeupStyle{
	{
		ID:          "1",
		Name:        "Peach Fuzz",
		ImageURL:    "https://images.unsplash.com/photo-1512413914633-b5043f4041ea?q=80&w=600&auto=format&fit=crop",
		Tags:        []string{"鹅蛋脸", "Oval", "Warm", "Almond"},
		Description: "Soft peach tones for daily wear.",
	},
	{
		ID:          "2",
		Name:        "Vintage Red",
		ImageURL:    "https://images.unsplash.com/photo-1526045612212-70caf35c14df?q=80&w=600&auto=format&fit=crop",
		Tags:        []string{"圆脸", "Round", "Fair", "Classic"},
		Description: "Timeless red lip with subtle eyes.",
	},
	{
		ID:          "3",
		Name:        "Smokey Glam",
		ImageURL:    "https://images.unsplash.com/photo-1487412720507-e7ab37603c6f?q=80&w=600&auto=format&fit=crop",
		Tags:        []string{"方脸", "Square", "Cool", "Hooded"},
		Description: "Intense eye drama.",
	},
	{
		ID:          "4",
		Name:        "Nude Glow",
		ImageURL:    "https://images.unsplash.com/photo-1506956191951-7a88da4435e5?q=80&w=600&auto=format&fit=crop",
		Tags:        []string{"菱形脸", "Diamond", "Medium", "Monolid"},
		Description: "Sun-kissed natural radiance.",
	},
}

// FallbackStyles returns a copy of the built-in style set.
func FallbackStyles() []types.MakeupStyle {
	out := make([]types.MakeupStyle, len(fallbackStyles))
	copy(out, fallbackStyles)
	return out
}

// Fetch lists the catalog from store, silently substituting the
// fallback set when the store fails or holds nothing.
func Fetch(ctx context.Context, store Store) []types.MakeupStyle {
	if store == nil {
		return FallbackStyles()
	}
	styles, err := store.ListStyles(ctx)
	if err != nil || len(styles) == 0 {
		return FallbackStyles()
	}
	return styles
}
