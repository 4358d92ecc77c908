// Package card models the display cards sent back as command replies and
// renders them for platforms without native embed support.
package card

import (
	"fmt"
	"strings"
)

// Colors used for the fixed-purpose cards
const (
	ColorInfo     = 0x2B90D9
	ColorNotFound = 0xF0A020
	ColorError    = 0xE03C31
)

// Field is one name/value row of a card
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Card is a titled, multi-field reply
type Card struct {
	Title       string
	URL         string
	Color       int
	Description string
	Fields      []Field
	Footer      string
	Thumbnail   string
	Image       string
}

// New returns an info-colored card with the given title
func New(title string) *Card {
	return &Card{Title: title, Color: ColorInfo}
}

// AddField appends a field and returns the card for chaining
func (c *Card) AddField(name, value string, inline bool) *Card {
	c.Fields = append(c.Fields, Field{Name: name, Value: value, Inline: inline})
	return c
}

// NotFound builds the card used when a lookup returns nothing
func NotFound(kind, key string) *Card {
	return &Card{
		Title:       fmt.Sprintf("%s not found", kind),
		Description: fmt.Sprintf("No %s matches `%s`.", strings.ToLower(kind), key),
		Color:       ColorNotFound,
	}
}

// Failure builds an error card
func Failure(title, detail string) *Card {
	return &Card{Title: title, Description: detail, Color: ColorError}
}

// Reply is the output of a formatter: either one card or an ordered list
// of plain-text pages.
type Reply struct {
	Card  *Card
	Pages []string
}

// CardReply wraps a single card
func CardReply(c *Card) Reply {
	return Reply{Card: c}
}
