// Package matcher ranks a style catalog against a face analysis using
// tiered tag matching. Tags carry an uncontrolled, language-mixed
// vocabulary, so classification labels are expanded through a static
// bilingual synonym table and compared by case-insensitive substring
// containment rather than equality.
package matcher

import (
	"strings"

	"github.com/venuslab/glowup/pkg/catalog"
	"github.com/venuslab/glowup/pkg/types"
)

// Tier is the confidence level of a match result, exposed to the
// caller as a user-facing trust signal.
type Tier string

const (
	// TierStrict: at least one face-shape synonym AND one skin-tone
	// synonym matched.
	TierStrict Tier = "strict"
	// TierRelaxed: only face-shape synonyms matched.
	TierRelaxed Tier = "relaxed"
	// TierNone: nothing matched, the whole catalog is offered.
	TierNone Tier = "none"
)

// synonyms maps classification labels to the tag surface forms
// considered equivalent. The table is intentionally irregular and only
// partially bidirectional (Light and Fair are interchanged to raise
// match rates, other entries are not); it must be kept exactly as
// declared rather than symmetrized.
var synonyms = map[string][]string{
	// Face shapes.
	"Oval":    {"鹅蛋脸", "椭圆脸", "Oval"},
	"Round":   {"圆脸", "圆形脸", "Round"},
	"Square":  {"方脸", "方形脸", "国字脸", "Square"},
	"Heart":   {"心形脸", "倒三角", "Heart"},
	"Long":    {"长脸", "Long"},
	"Diamond": {"菱形脸", "钻石脸", "Diamond"},

	// Skin tones.
	"Fair":    {"白皙", "冷白", "Light", "Fair"},
	"Light":   {"白皙", "自然偏白", "Light", "Fair"},
	"Medium":  {"自然色", "黄皮", "Medium", "Natural"},
	"Tan":     {"小麦色", "健康色", "Tan", "Deep"},
	"Deep":    {"黑皮", "深肤色", "Deep"},
	"Warm":    {"暖皮", "黄皮", "Warm", "Medium"},
	"Cool":    {"冷皮", "粉调", "Cool", "Light"},
	"Neutral": {"自然色", "中性皮", "Neutral", "Medium"},

	// Eye shapes, used as auxiliary display hints.
	"Almond":     {"杏眼", "Almond", "DoubleMonolid"},
	"Round Eyes": {"圆眼", "Round"},
	"Monolid":    {"单眼皮", "Monolid"},
	"Hooded":     {"内双", "肿眼泡", "Hooded", "InnerDouble"},
}

// Synonyms returns the surface forms equivalent to label. Labels
// absent from the table expand to the singleton {label}.
func Synonyms(label string) []string {
	if forms, ok := synonyms[label]; ok {
		return forms
	}
	return []string{label}
}

// Result is the prioritized candidate list plus its confidence tier.
type Result struct {
	Styles []types.MakeupStyle
	Tier   Tier
}

// Match filters styles against the analysis's face shape and skin
// tone. Tiers degrade monotonically: strict when both dimensions
// match, relaxed when only the face shape does, otherwise the whole
// catalog with tier none. An empty catalog yields the built-in
// fallback set so the caller is never left without candidates.
func Match(analysis *types.FaceAnalysis, styles []types.MakeupStyle) Result {
	if len(styles) == 0 {
		return Result{Styles: catalog.FallbackStyles(), Tier: TierNone}
	}

	faceForms := Synonyms(analysis.FaceShape)
	skinForms := Synonyms(analysis.SkinTone)

	var strict []types.MakeupStyle
	for _, style := range styles {
		if tagsContainAny(style.Tags, faceForms) && tagsContainAny(style.Tags, skinForms) {
			strict = append(strict, style)
		}
	}
	if len(strict) > 0 {
		return Result{Styles: strict, Tier: TierStrict}
	}

	var relaxed []types.MakeupStyle
	for _, style := range styles {
		if tagsContainAny(style.Tags, faceForms) {
			relaxed = append(relaxed, style)
		}
	}
	if len(relaxed) > 0 {
		return Result{Styles: relaxed, Tier: TierRelaxed}
	}

	return Result{Styles: styles, Tier: TierNone}
}

// tagsContainAny reports whether any tag contains any of the surface
// forms, case-insensitively. Containment (not equality) tolerates
// compound tags such as a face shape fused with an occasion.
func tagsContainAny(tags, forms []string) bool {
	for _, tag := range tags {
		lowered := strings.ToLower(tag)
		for _, form := range forms {
			if strings.Contains(lowered, strings.ToLower(form)) {
				return true
			}
		}
	}
	return false
}
