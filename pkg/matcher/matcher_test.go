package matcher

import (
	"testing"

	"github.com/venuslab/glowup/pkg/types"
)

func analysisFor(face, skin string) *types.FaceAnalysis {
	return &types.FaceAnalysis{FaceShape: face, SkinTone: skin}
}

func styleWithTags(id string, tags ...string) types.MakeupStyle {
	return types.MakeupStyle{ID: id, Name: "style-" + id, Tags: tags}
}

func TestMatchStrictTier(t *testing.T) {
	// Round maps to 圆脸, Fair maps to Light among others: a catalog
	// entry tagged in Chinese plus an English tone tag must match.
	catalog := []types.MakeupStyle{
		styleWithTags("a", "圆脸", "Light"),
		styleWithTags("b", "方脸", "Deep"),
	}

	result := Match(analysisFor("Round", "Fair"), catalog)
	if result.Tier != TierStrict {
		t.Fatalf("tier = %s, want strict", result.Tier)
	}
	if len(result.Styles) != 1 || result.Styles[0].ID != "a" {
		t.Errorf("styles = %+v, want only style a", result.Styles)
	}
}

func TestMatchStrictNeverFallsThrough(t *testing.T) {
	// When strict matches exist they win even though a relaxed pass
	// would have matched more entries.
	catalog := []types.MakeupStyle{
		styleWithTags("strict", "圆脸", "白皙"),
		styleWithTags("face-only", "圆脸", "Deep"),
	}

	result := Match(analysisFor("Round", "Fair"), catalog)
	if result.Tier != TierStrict {
		t.Fatalf("tier = %s, want strict", result.Tier)
	}
	for _, s := range result.Styles {
		if s.ID == "face-only" {
			t.Error("strict result contains a face-only match")
		}
	}
}

func TestMatchRelaxedTier(t *testing.T) {
	catalog := []types.MakeupStyle{
		styleWithTags("a", "圆脸", "Deep"),
		styleWithTags("b", "方脸", "Deep"),
	}

	result := Match(analysisFor("Round", "Fair"), catalog)
	if result.Tier != TierRelaxed {
		t.Fatalf("tier = %s, want relaxed", result.Tier)
	}
	if len(result.Styles) != 1 || result.Styles[0].ID != "a" {
		t.Errorf("styles = %+v, want only style a", result.Styles)
	}
}

func TestMatchFallbackTierKeepsWholeCatalog(t *testing.T) {
	catalog := []types.MakeupStyle{
		styleWithTags("a", "方脸"),
		styleWithTags("b", "长脸"),
	}

	result := Match(analysisFor("Round", "Fair"), catalog)
	if result.Tier != TierNone {
		t.Fatalf("tier = %s, want none", result.Tier)
	}
	if len(result.Styles) != len(catalog) {
		t.Errorf("fallback tier returned %d styles, want whole catalog (%d)",
			len(result.Styles), len(catalog))
	}
}

func TestMatchEmptyCatalogUsesBuiltinFallback(t *testing.T) {
	result := Match(analysisFor("Round", "Fair"), nil)
	if result.Tier != TierNone {
		t.Fatalf("tier = %s, want none", result.Tier)
	}
	if len(result.Styles) == 0 {
		t.Fatal("expected built-in fallback styles for an empty catalog")
	}
}

func TestMatchSubstringContainment(t *testing.T) {
	// Compound tag fusing a face shape with an occasion still matches.
	catalog := []types.MakeupStyle{
		styleWithTags("a", "圆脸日常妆", "Light皮"),
	}

	result := Match(analysisFor("Round", "Fair"), catalog)
	if result.Tier != TierStrict {
		t.Errorf("tier = %s, want strict via substring containment", result.Tier)
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	catalog := []types.MakeupStyle{
		styleWithTags("a", "OVAL", "light"),
	}

	result := Match(analysisFor("Oval", "Fair"), catalog)
	if result.Tier != TierStrict {
		t.Errorf("tier = %s, want strict with case-folded tags", result.Tier)
	}
}

func TestSynonymsKnownLabel(t *testing.T) {
	forms := Synonyms("Fair")
	want := map[string]bool{"白皙": true, "冷白": true, "Light": true, "Fair": true}
	if len(forms) != len(want) {
		t.Fatalf("Synonyms(Fair) = %v, want %d forms", forms, len(want))
	}
	for _, f := range forms {
		if !want[f] {
			t.Errorf("unexpected synonym %q for Fair", f)
		}
	}
}

func TestSynonymsUnknownLabelIsSingleton(t *testing.T) {
	forms := Synonyms("Oblong")
	if len(forms) != 1 || forms[0] != "Oblong" {
		t.Errorf("Synonyms(Oblong) = %v, want singleton", forms)
	}
}

func TestSynonymTableAsymmetryPreserved(t *testing.T) {
	// Light expands to Fair but Tan expands to Deep while Deep does
	// not expand back to Tan. The declared irregularity is load
	// bearing for match behavior.
	hasForm := func(label, form string) bool {
		for _, f := range Synonyms(label) {
			if f == form {
				return true
			}
		}
		return false
	}

	if !hasForm("Tan", "Deep") {
		t.Error("Tan should expand to Deep")
	}
	if hasForm("Deep", "Tan") {
		t.Error("Deep must not expand to Tan")
	}
	if !hasForm("Light", "Fair") || !hasForm("Fair", "Light") {
		t.Error("Light and Fair should be interchangeable")
	}
}

func TestPagerWraparound(t *testing.T) {
	styles := make([]types.MakeupStyle, 5)
	for i := range styles {
		styles[i] = styleWithTags(string(rune('a' + i)))
	}
	pager := NewPager(styles)

	wantIndices := []int{0, 2, 4, 0, 2, 4, 0}
	for i, want := range wantIndices {
		if pager.Index() != want {
			t.Fatalf("step %d: index = %d, want %d", i, pager.Index(), want)
		}
		if pager.Index() >= len(styles) {
			t.Fatalf("cursor %d overran list of %d", pager.Index(), len(styles))
		}
		pager.Advance()
	}
}

func TestPagerPadsSingleItemPage(t *testing.T) {
	styles := []types.MakeupStyle{
		styleWithTags("a"), styleWithTags("b"), styleWithTags("c"),
	}
	pager := NewPager(styles)
	pager.Advance() // cursor at 2, one item remaining

	page := pager.Page()
	if len(page) != 2 {
		t.Fatalf("page length = %d, want 2 (padded)", len(page))
	}
	if page[0].ID != "c" || page[1].ID != "a" {
		t.Errorf("page = [%s %s], want [c a]", page[0].ID, page[1].ID)
	}
}

func TestPagerShortCatalog(t *testing.T) {
	pager := NewPager([]types.MakeupStyle{styleWithTags("only")})
	page := pager.Page()
	if len(page) != 1 {
		t.Errorf("page length = %d, want 1 for a single-entry catalog", len(page))
	}

	pager.Advance()
	if pager.Index() != 0 {
		t.Errorf("index = %d, want 0 after advancing a single-entry catalog", pager.Index())
	}
}

func TestPagerEmpty(t *testing.T) {
	pager := NewPager(nil)
	if page := pager.Page(); page != nil {
		t.Errorf("page = %v, want nil for empty list", page)
	}
	pager.Advance() // must not panic
}
