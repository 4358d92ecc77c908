package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/keepmind9/heliumbot/internal/card"
)

func (r *Router) help(ctx context.Context, inv *Invocation) error {
	topic := inv.Args.String("topic")
	if g, ok := r.groups[topic]; ok {
		return inv.Reply.SendCard(r.groupHelp(g))
	}
	if cmd, ok := r.commands[topic]; ok {
		return inv.Reply.SendCard(r.commandHelp(cmd))
	}
	return inv.Reply.SendCard(r.rootHelp())
}

func (r *Router) rootHelp() *card.Card {
	c := card.New("Commands")
	c.Description = fmt.Sprintf("Use `%shelp <group>` for the commands in a group.", r.prefix)
	for _, g := range r.groupOrder {
		c.AddField(r.prefix+g.Name+aliasSuffix(g.Aliases), g.Help, false)
	}
	for _, cmd := range r.commandOrder {
		c.AddField(r.prefix+cmd.Name+aliasSuffix(cmd.Aliases), cmd.Help, false)
	}
	return c
}

func (r *Router) groupHelp(g *group) *card.Card {
	c := card.New(r.prefix + g.Name + aliasSuffix(g.Aliases))
	c.Description = g.Help
	for _, cmd := range g.Commands {
		name := cmd.Name + aliasSuffix(cmd.Aliases)
		if sig := cmd.Signature(); sig != "" {
			name += " " + sig
		}
		c.AddField(name, cmd.Help, false)
	}
	c.Footer = fmt.Sprintf("Usage: %s%s <command> [arguments]", r.prefix, g.Name)
	return c
}

func (r *Router) commandHelp(cmd *Command) *card.Card {
	c := card.New(r.prefix + cmd.Name + aliasSuffix(cmd.Aliases))
	c.Description = cmd.Help
	if sig := cmd.Signature(); sig != "" {
		c.Footer = "Usage: " + r.prefix + cmd.Name + " " + sig
	}
	return c
}

func aliasSuffix(aliases []string) string {
	if len(aliases) == 0 {
		return ""
	}
	return " (" + strings.Join(aliases, ", ") + ")"
}
