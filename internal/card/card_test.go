package card

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(n int) []Field {
	out := make([]Field, n)
	for i := range out {
		out[i] = Field{Name: fmt.Sprintf("Hotspot %d", i), Value: fmt.Sprintf("address-%d", i)}
	}
	return out
}

func TestPaginator_PacksLinesInOrder(t *testing.T) {
	p := &Paginator{Prefix: "```", Suffix: "```", MaxSize: 30}
	lines := []string{"aaaa", "bbbb", "cccc", "dddd", "eeee", "ffff"}

	pages, err := p.Pages(lines)
	require.NoError(t, err)
	require.Greater(t, len(pages), 1)

	var got []string
	for _, page := range pages {
		assert.LessOrEqual(t, utf8.RuneCountInString(page), p.MaxSize)
		assert.True(t, strings.HasPrefix(page, "```\n"))
		assert.True(t, strings.HasSuffix(page, "\n```"))
		got = append(got, p.Unwrap(page)...)
	}
	assert.Equal(t, lines, got)
}

func TestPaginator_ExactFit(t *testing.T) {
	// overhead 8 + "abcd\nefgh" (9) = 17
	p := &Paginator{Prefix: "```", Suffix: "```", MaxSize: 17}
	pages, err := p.Pages([]string{"abcd", "efgh"})
	require.NoError(t, err)
	assert.Equal(t, []string{"```\nabcd\nefgh\n```"}, pages)

	p.MaxSize = 16
	pages, err = p.Pages([]string{"abcd", "efgh"})
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestPaginator_LineTooLong(t *testing.T) {
	p := &Paginator{Prefix: "```", Suffix: "```", MaxSize: 12}
	_, err := p.Pages([]string{"ok", "this line is far too long"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLineTooLong))
}

func TestPaginator_CountsCharactersNotBytes(t *testing.T) {
	p := &Paginator{Prefix: "", Suffix: "", MaxSize: 6}
	pages, err := p.Pages([]string{"ääää"})
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestPaginator_Empty(t *testing.T) {
	pages, err := NewPaginator(0).Pages(nil)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestListPolicy_AtThresholdIsOneCard(t *testing.T) {
	in := items(25)
	reply, err := DefaultListPolicy().Render("Hotspots", in)
	require.NoError(t, err)
	require.NotNil(t, reply.Card)
	assert.Empty(t, reply.Pages)
	if diff := cmp.Diff(in, reply.Card.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestListPolicy_AboveThresholdPaginates(t *testing.T) {
	in := items(26)
	policy := ListPolicy{Threshold: 25, Paginator: NewPaginator(120)}

	reply, err := policy.Render("Hotspots", in)
	require.NoError(t, err)
	assert.Nil(t, reply.Card)
	require.NotEmpty(t, reply.Pages)

	var got []string
	for _, page := range reply.Pages {
		assert.LessOrEqual(t, utf8.RuneCountInString(page), 120)
		got = append(got, policy.Paginator.Unwrap(page)...)
	}
	require.Len(t, got, 26)
	for i, line := range got {
		assert.Equal(t, fmt.Sprintf("%d. Hotspot %d: address-%d", i+1, i, i), line)
	}
}

func TestListPolicy_EmptyList(t *testing.T) {
	reply, err := DefaultListPolicy().Render("OUIs", nil)
	require.NoError(t, err)
	require.NotNil(t, reply.Card)
	assert.Equal(t, "No results.", reply.Card.Description)
}

func TestNumberedLines_FlattensNewlines(t *testing.T) {
	lines := NumberedLines([]Field{{Name: "a", Value: "x\ny"}})
	assert.Equal(t, []string{"1. a: x | y"}, lines)
}

func TestRenderers(t *testing.T) {
	c := New("Tall Plum Griffin")
	c.URL = "https://explorer.helium.com/hotspots/abc"
	c.AddField("Mode", "full", true).AddField("Online", "online", true)
	c.Footer = "block 42"

	assert.Equal(t, "Tall Plum Griffin\nhttps://explorer.helium.com/hotspots/abc\nMode: full\nOnline: online\nblock 42", c.PlainText())

	md := c.Markdown()
	assert.Contains(t, md, "**[Tall Plum Griffin](https://explorer.helium.com/hotspots/abc)**")
	assert.Contains(t, md, "**Mode**: full")
	assert.Contains(t, md, "_block 42_")
}

func TestNotFoundAndFailure(t *testing.T) {
	nf := NotFound("Hotspot", "tall-plum-griffin")
	assert.Equal(t, "Hotspot not found", nf.Title)
	assert.Equal(t, ColorNotFound, nf.Color)

	f := Failure("Upstream error", "HTTP 503")
	assert.Equal(t, ColorError, f.Color)
}
