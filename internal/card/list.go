package card

import (
	"fmt"
	"strings"

	"github.com/keepmind9/heliumbot/pkg/constants"
)

// ListPolicy decides how a list-valued result is rendered. Lists of at
// most Threshold items become one card with a field per item; longer lists
// become numbered lines split into pages.
type ListPolicy struct {
	Threshold int
	Paginator *Paginator
}

// DefaultListPolicy returns the 25-item / 2000-character policy
func DefaultListPolicy() ListPolicy {
	return ListPolicy{
		Threshold: constants.DefaultListCardThreshold,
		Paginator: NewPaginator(constants.DefaultPageSize),
	}
}

// Render shapes items into a reply titled title
func (lp ListPolicy) Render(title string, items []Field) (Reply, error) {
	threshold := lp.Threshold
	if threshold <= 0 {
		threshold = constants.DefaultListCardThreshold
	}

	if len(items) <= threshold {
		c := New(title)
		if len(items) == 0 {
			c.Description = "No results."
		}
		c.Fields = append(c.Fields, items...)
		return CardReply(c), nil
	}

	p := lp.Paginator
	if p == nil {
		p = NewPaginator(constants.DefaultPageSize)
	}
	pages, err := p.Pages(NumberedLines(items))
	if err != nil {
		return Reply{}, fmt.Errorf("paginate %s: %w", title, err)
	}
	return Reply{Pages: pages}, nil
}

// NumberedLines flattens items to "N. name: value" lines
func NumberedLines(items []Field) []string {
	lines := make([]string, len(items))
	for i, f := range items {
		value := strings.ReplaceAll(f.Value, "\n", " | ")
		lines[i] = fmt.Sprintf("%d. %s: %s", i+1, f.Name, value)
	}
	return lines
}
