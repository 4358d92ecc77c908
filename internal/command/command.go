// Package command implements the prefix-command router: a static table of
// groups and commands with aliases, typed argument binding, and generated
// help cards.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/keepmind9/heliumbot/internal/bot"
	"github.com/keepmind9/heliumbot/internal/card"
)

// Kind is the type an argument is coerced to
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Param declares one positional parameter. A Variadic param must be last
// and collects every remaining token.
type Param struct {
	Name     string
	Kind     Kind
	Optional bool
	Default  string
	Variadic bool
}

// Replier sends replies to the channel an invocation came from
type Replier interface {
	SendCard(c *card.Card) error
	SendText(text string) error
}

// Invocation is what a handler receives
type Invocation struct {
	ID      string
	Path    string // e.g. "helium stats"
	Message bot.BotMessage
	Args    Args
	Reply   Replier
}

// HandlerFunc runs a command
type HandlerFunc func(ctx context.Context, inv *Invocation) error

// Command describes one command
type Command struct {
	Name    string
	Aliases []string
	Help    string
	Params  []Param
	Handler HandlerFunc
}

// Group is a named set of sub-commands
type Group struct {
	Name     string
	Aliases  []string
	Help     string
	Commands []Command
}

// Signature renders the parameter list, e.g. "<height:int> [limit:int=2]"
func (c Command) Signature() string {
	parts := make([]string, 0, len(c.Params))
	for _, p := range c.Params {
		label := p.Name
		if p.Kind != KindString {
			label += ":" + p.Kind.String()
		}
		switch {
		case p.Variadic:
			parts = append(parts, "<"+label+"...>")
		case p.Optional && p.Default != "":
			parts = append(parts, fmt.Sprintf("[%s=%s]", label, p.Default))
		case p.Optional:
			parts = append(parts, "["+label+"]")
		default:
			parts = append(parts, "<"+label+">")
		}
	}
	return strings.Join(parts, " ")
}

// Send delivers a formatter reply: the card, or every page in order
func Send(r Replier, reply card.Reply) error {
	if reply.Card != nil {
		return r.SendCard(reply.Card)
	}
	for i, page := range reply.Pages {
		if err := r.SendText(page); err != nil {
			return fmt.Errorf("send page %d/%d: %w", i+1, len(reply.Pages), err)
		}
	}
	return nil
}
