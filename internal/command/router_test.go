package command

import (
	"context"
	"errors"
	"testing"

	"github.com/keepmind9/heliumbot/internal/bot"
	"github.com/keepmind9/heliumbot/internal/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	cards []*card.Card
	texts []string
}

func (r *recorder) SendCard(c *card.Card) error {
	r.cards = append(r.cards, c)
	return nil
}

func (r *recorder) SendText(text string) error {
	r.texts = append(r.texts, text)
	return nil
}

type calls struct {
	count int
	last  *Invocation
}

func (c *calls) handler(ctx context.Context, inv *Invocation) error {
	c.count++
	c.last = inv
	return nil
}

func newTestRouter(t *testing.T, c *calls) *Router {
	t.Helper()
	r := NewRouter("!")
	require.NoError(t, r.RegisterGroup(Group{
		Name:    "helium",
		Aliases: []string{"hm"},
		Help:    "Helium explorer",
		Commands: []Command{
			{Name: "stats", Aliases: []string{"stat", "st"}, Help: "Stats", Handler: c.handler},
			{Name: "blockforheight", Aliases: []string{"bfh"}, Help: "Block", Handler: c.handler,
				Params: []Param{{Name: "height", Kind: KindInt}}},
			{Name: "listaccounts", Aliases: []string{"la"}, Help: "Rich list", Handler: c.handler,
				Params: []Param{{Name: "limit", Kind: KindInt, Optional: true, Default: "2"}}},
			{Name: "minername", Aliases: []string{"hs"}, Help: "Hotspot", Handler: c.handler,
				Params: []Param{{Name: "words", Variadic: true}}},
			{Name: "blockheight", Help: "Height", Handler: c.handler,
				Params: []Param{{Name: "max_time", Optional: true}}},
		},
	}))
	return r
}

func dispatch(t *testing.T, r *Router, content string) (*recorder, bool, error) {
	t.Helper()
	rec := &recorder{}
	handled, err := r.Dispatch(context.Background(), bot.BotMessage{Content: content, Channel: "c1"}, rec)
	return rec, handled, err
}

func TestDispatch_ResolvesNamesAndAliases(t *testing.T) {
	for _, content := range []string{"!helium stats", "!hm stats", "!hm st", "!helium stat"} {
		t.Run(content, func(t *testing.T) {
			c := &calls{}
			r := newTestRouter(t, c)
			rec, handled, err := dispatch(t, r, content)
			require.NoError(t, err)
			assert.True(t, handled)
			assert.Equal(t, 1, c.count)
			assert.Equal(t, "helium stats", c.last.Path)
			assert.NotEmpty(t, c.last.ID)
			assert.Empty(t, rec.cards)
		})
	}
}

func TestDispatch_NotACommand(t *testing.T) {
	c := &calls{}
	r := newTestRouter(t, c)
	for _, content := range []string{"hello", "!", "! helium stats", "!unknown thing", ""} {
		rec, handled, err := dispatch(t, r, content)
		require.NoError(t, err)
		assert.False(t, handled, content)
		assert.Empty(t, rec.cards)
		assert.Empty(t, rec.texts)
	}
	assert.Zero(t, c.count)
}

func TestDispatch_UnknownCommandIsNotTokenized(t *testing.T) {
	c := &calls{}
	r := newTestRouter(t, c)
	for _, content := range []string{"!wow that's great", `!nope "half quoted`, "!wow"} {
		rec, handled, err := dispatch(t, r, content)
		require.NoError(t, err)
		assert.False(t, handled, content)
		assert.Empty(t, rec.texts, content)
		assert.Empty(t, rec.cards, content)
	}
	assert.Zero(t, c.count)
}

func TestDispatch_KnownCommandUnterminatedQuote(t *testing.T) {
	c := &calls{}
	r := newTestRouter(t, c)
	rec, handled, err := dispatch(t, r, `!hm hs "kind purple`)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"❌ unterminated quote"}, rec.texts)
	assert.Zero(t, c.count)
}

func TestResolve(t *testing.T) {
	r := newTestRouter(t, &calls{})
	tests := []struct {
		content string
		want    bool
	}{
		{"!helium stats", true},
		{"!hm", true},
		{"  !hm\tbfh 5", true},
		{"!help", true},
		{"!h", true},
		{"!wow that's great", false},
		{"! helium", false},
		{"helium stats", false},
		{"!", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Resolve(tt.content), tt.content)
	}
}

func TestDispatch_GroupHelp(t *testing.T) {
	for _, content := range []string{"!helium", "!hm nosuchcommand"} {
		c := &calls{}
		r := newTestRouter(t, c)
		rec, handled, err := dispatch(t, r, content)
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Zero(t, c.count)
		require.Len(t, rec.cards, 1)
		assert.Equal(t, "!helium (hm)", rec.cards[0].Title)
		assert.Len(t, rec.cards[0].Fields, 5)
		assert.Equal(t, "blockforheight (bfh) <height:int>", rec.cards[0].Fields[1].Name)
	}
}

func TestDispatch_BindsTypedArguments(t *testing.T) {
	c := &calls{}
	r := newTestRouter(t, c)

	_, _, err := dispatch(t, r, "!hm bfh 12345")
	require.NoError(t, err)
	assert.Equal(t, 12345, c.last.Args.Int("height"))

	_, _, err = dispatch(t, r, "!hm la")
	require.NoError(t, err)
	assert.Equal(t, 2, c.last.Args.Int("limit"))

	_, _, err = dispatch(t, r, "!hm hs Tall Plum 'Griffin Extra' more")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tall", "Plum", "Griffin Extra", "more"}, c.last.Args.Strings("words"))

	_, _, err = dispatch(t, r, "!hm blockheight")
	require.NoError(t, err)
	assert.False(t, c.last.Args.Has("max_time"))
	assert.Equal(t, 4, c.count)
}

func TestDispatch_UsageErrors(t *testing.T) {
	tests := []struct {
		content string
		reason  string
	}{
		{"!hm bfh", `missing argument "height"`},
		{"!hm bfh tall", `height must be an integer, got "tall"`},
		{"!hm stats extra", `too many arguments: "extra"`},
		{"!hm hs", `missing argument "words"`},
		{`!hm bfh "12`, "unterminated quote"},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			c := &calls{}
			r := newTestRouter(t, c)
			rec, handled, err := dispatch(t, r, tt.content)
			require.NoError(t, err)
			assert.True(t, handled)
			assert.Zero(t, c.count)
			require.Len(t, rec.texts, 1)
			assert.Contains(t, rec.texts[0], tt.reason)
		})
	}

	rec, _, _ := dispatch(t, newTestRouter(t, &calls{}), "!hm bfh x")
	assert.Contains(t, rec.texts[0], "Usage: !helium blockforheight <height:int>")
}

func TestDispatch_HandlerErrorAndPanic(t *testing.T) {
	r := NewRouter("!")
	boom := errors.New("upstream down")
	require.NoError(t, r.Register(Command{Name: "fail", Handler: func(ctx context.Context, inv *Invocation) error {
		return boom
	}}))
	require.NoError(t, r.Register(Command{Name: "panic", Handler: func(ctx context.Context, inv *Invocation) error {
		var m map[string]int
		m["x"] = 1
		return nil
	}}))

	_, handled, err := dispatch(t, r, "!fail")
	assert.True(t, handled)
	assert.ErrorIs(t, err, boom)

	_, handled, err = dispatch(t, r, "!panic")
	assert.True(t, handled)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	noop := func(ctx context.Context, inv *Invocation) error { return nil }

	r := NewRouter("!")
	assert.ErrorIs(t, r.Register(Command{Name: "help", Handler: noop}), ErrDuplicate)
	assert.ErrorIs(t, r.Register(Command{Name: "x", Aliases: []string{"h"}, Handler: noop}), ErrDuplicate)
	assert.ErrorIs(t, r.Register(Command{Name: "y", Aliases: []string{"y"}, Handler: noop}), ErrDuplicate)

	require.NoError(t, r.RegisterGroup(Group{Name: "meme", Aliases: []string{"business"}}))
	assert.ErrorIs(t, r.RegisterGroup(Group{Name: "business"}), ErrDuplicate)
	assert.ErrorIs(t, r.Register(Command{Name: "meme", Handler: noop}), ErrDuplicate)

	err := r.RegisterGroup(Group{Name: "helium", Commands: []Command{
		{Name: "stats", Aliases: []string{"st"}, Handler: noop},
		{Name: "supply", Aliases: []string{"st"}, Handler: noop},
	}})
	assert.ErrorIs(t, err, ErrDuplicate)

	// same sub-command name in different groups is fine
	require.NoError(t, r.RegisterGroup(Group{Name: "a", Commands: []Command{{Name: "random", Handler: noop}}}))
	require.NoError(t, r.RegisterGroup(Group{Name: "b", Commands: []Command{{Name: "random", Handler: noop}}}))
}

func TestRegister_RejectsBadDescriptors(t *testing.T) {
	noop := func(ctx context.Context, inv *Invocation) error { return nil }
	r := NewRouter("!")
	assert.Error(t, r.Register(Command{Name: "nohandler"}))
	assert.Error(t, r.Register(Command{Name: "two words", Handler: noop}))
	assert.Error(t, r.Register(Command{Name: "v", Handler: noop, Params: []Param{
		{Name: "rest", Variadic: true}, {Name: "after"},
	}}))
}

func TestHelpCommand(t *testing.T) {
	r := newTestRouter(t, &calls{})

	rec, handled, err := dispatch(t, r, "!help")
	require.NoError(t, err)
	assert.True(t, handled)
	require.Len(t, rec.cards, 1)
	assert.Equal(t, "Commands", rec.cards[0].Title)
	assert.Equal(t, "!helium (hm)", rec.cards[0].Fields[0].Name)

	rec, _, _ = dispatch(t, r, "!h hm")
	assert.Equal(t, "!helium (hm)", rec.cards[0].Title)
}

func TestSend_PagesInOrder(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Send(rec, card.Reply{Pages: []string{"one", "two", "three"}}))
	assert.Equal(t, []string{"one", "two", "three"}, rec.texts)

	require.NoError(t, Send(rec, card.CardReply(card.New("x"))))
	assert.Len(t, rec.cards, 1)
}

func TestTokenize(t *testing.T) {
	tokens, err := tokenize(`  a "b c"  'd' e"f g"  `)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b c", "d", "ef g"}, tokens)

	tokens, err = tokenize(`""`)
	require.NoError(t, err)
	assert.Equal(t, []string{""}, tokens)
}
