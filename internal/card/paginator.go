package card

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/keepmind9/heliumbot/pkg/constants"
)

// ErrLineTooLong is returned when one line cannot fit on a page by itself
var ErrLineTooLong = errors.New("line exceeds page size")

// Paginator packs lines into pages of at most MaxSize characters.
// Every page is Prefix, newline, the lines joined by newlines, newline, Suffix.
type Paginator struct {
	Prefix  string
	Suffix  string
	MaxSize int
}

// NewPaginator returns a code-block paginator with the given budget.
// A non-positive size selects the default.
func NewPaginator(maxSize int) *Paginator {
	if maxSize <= 0 {
		maxSize = constants.DefaultPageSize
	}
	return &Paginator{
		Prefix:  constants.PagePrefix,
		Suffix:  constants.PageSuffix,
		MaxSize: maxSize,
	}
}

// overhead is the size of an empty page
func (p *Paginator) overhead() int {
	return utf8.RuneCountInString(p.Prefix) + utf8.RuneCountInString(p.Suffix) + 2
}

// Pages splits lines into ordered pages. Empty input yields no pages.
func (p *Paginator) Pages(lines []string) ([]string, error) {
	var (
		pages   []string
		current []string
		size    = p.overhead()
	)
	if size >= p.MaxSize {
		return nil, fmt.Errorf("page size %d too small for wrapper", p.MaxSize)
	}

	for i, line := range lines {
		n := utf8.RuneCountInString(line)
		if p.overhead()+n > p.MaxSize {
			return nil, fmt.Errorf("line %d (%d chars, budget %d): %w", i+1, n, p.MaxSize-p.overhead(), ErrLineTooLong)
		}

		// lines after the first on a page cost an extra separator
		cost := n
		if len(current) > 0 {
			cost++
		}
		if size+cost > p.MaxSize {
			pages = append(pages, p.wrap(current))
			current = current[:0]
			size = p.overhead()
			cost = n
		}
		current = append(current, line)
		size += cost
	}
	if len(current) > 0 {
		pages = append(pages, p.wrap(current))
	}
	return pages, nil
}

func (p *Paginator) wrap(lines []string) string {
	return p.Prefix + "\n" + strings.Join(lines, "\n") + "\n" + p.Suffix
}

// Unwrap strips the page decoration and returns the page's lines
func (p *Paginator) Unwrap(page string) []string {
	body := strings.TrimPrefix(page, p.Prefix+"\n")
	body = strings.TrimSuffix(body, "\n"+p.Suffix)
	return strings.Split(body, "\n")
}
