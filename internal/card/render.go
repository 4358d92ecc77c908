package card

import "strings"

// PlainText renders the card as unformatted text
func (c *Card) PlainText() string {
	var b strings.Builder
	writeLine(&b, c.Title)
	writeLine(&b, c.URL)
	writeLine(&b, c.Description)
	for _, f := range c.Fields {
		writeLine(&b, f.Name+": "+f.Value)
	}
	writeLine(&b, c.Image)
	writeLine(&b, c.Footer)
	return strings.TrimRight(b.String(), "\n")
}

// Markdown renders the card with bold headings, the common subset of
// Telegram, Feishu and DingTalk markdown.
func (c *Card) Markdown() string {
	var b strings.Builder
	switch {
	case c.Title != "" && c.URL != "":
		writeLine(&b, "**["+c.Title+"]("+c.URL+")**")
	case c.Title != "":
		writeLine(&b, "**"+c.Title+"**")
	}
	writeLine(&b, c.Description)
	for _, f := range c.Fields {
		writeLine(&b, "**"+f.Name+"**: "+f.Value)
	}
	if c.Image != "" {
		writeLine(&b, "![image]("+c.Image+")")
	}
	if c.Footer != "" {
		writeLine(&b, "_"+c.Footer+"_")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeLine(b *strings.Builder, s string) {
	if s == "" {
		return
	}
	b.WriteString(s)
	b.WriteByte('\n')
}
