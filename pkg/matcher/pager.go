package matcher

import "github.com/venuslab/glowup/pkg/types"

// PageSize is the number of styles shown at once.
const PageSize = 2

// Pager walks a candidate list two at a time with wraparound, the
// "show more" cursor of the style selector.
type Pager struct {
	styles []types.MakeupStyle
	index  int
}

// NewPager creates a Pager positioned at the start of styles.
func NewPager(styles []types.MakeupStyle) *Pager {
	return &Pager{styles: styles}
}

// Index returns the current cursor position.
func (p *Pager) Index() int {
	return p.index
}

// Page returns the current page. A trailing page holding exactly one
// item is padded with the first style of the full list, so a full
// page is shown whenever the candidate set has at least two entries.
func (p *Pager) Page() []types.MakeupStyle {
	if len(p.styles) == 0 {
		return nil
	}

	end := p.index + PageSize
	if end > len(p.styles) {
		end = len(p.styles)
	}
	page := make([]types.MakeupStyle, 0, PageSize)
	page = append(page, p.styles[p.index:end]...)

	if len(page) == 1 && len(p.styles) > 1 {
		page = append(page, p.styles[0])
	}
	return page
}

// Advance moves the cursor forward by the page size, wrapping to 0
// when it would run past the end of the list.
func (p *Pager) Advance() {
	if len(p.styles) == 0 {
		return
	}

	next := p.index + PageSize
	if next >= len(p.styles) {
		next = 0
	}
	p.index = next
}
