package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/keepmind9/heliumbot/internal/bot"
	"github.com/keepmind9/heliumbot/internal/logger"
	"github.com/keepmind9/heliumbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// ErrDuplicate is returned when a name or alias is registered twice in
// the same namespace
var ErrDuplicate = errors.New("duplicate command name")

type group struct {
	Group
	commands map[string]*Command
}

// Router resolves prefix commands to handlers. The table is built once at
// startup and must not be modified while Dispatch is running.
type Router struct {
	prefix   string
	groups   map[string]*group
	commands map[string]*Command

	groupOrder   []*group
	commandOrder []*Command
}

// NewRouter creates a router with the built-in help command registered
func NewRouter(prefix string) *Router {
	if prefix == "" {
		prefix = constants.DefaultCommandPrefix
	}
	r := &Router{
		prefix:   prefix,
		groups:   make(map[string]*group),
		commands: make(map[string]*Command),
	}
	// cannot collide on an empty table
	_ = r.Register(Command{
		Name:    "help",
		Aliases: []string{"h"},
		Help:    "Show available commands, or the commands of one group",
		Params:  []Param{{Name: "topic", Optional: true}},
		Handler: r.help,
	})
	return r
}

// Prefix returns the command prefix
func (r *Router) Prefix() string {
	return r.prefix
}

func (r *Router) rootTaken(name string) bool {
	_, isGroup := r.groups[name]
	_, isCommand := r.commands[name]
	return isGroup || isCommand
}

func checkNames(taken func(string) bool, name string, aliases []string) error {
	if name == "" {
		return errors.New("command name is required")
	}
	seen := make(map[string]struct{}, len(aliases)+1)
	for _, n := range append([]string{name}, aliases...) {
		if n == "" || strings.ContainsAny(n, " \t\n") {
			return fmt.Errorf("invalid command name %q", n)
		}
		if _, dup := seen[n]; dup || taken(n) {
			return fmt.Errorf("%q: %w", n, ErrDuplicate)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func validateCommand(cmd Command) error {
	if cmd.Handler == nil {
		return fmt.Errorf("command %q has no handler", cmd.Name)
	}
	for i, p := range cmd.Params {
		if p.Variadic && i != len(cmd.Params)-1 {
			return fmt.Errorf("command %q: variadic parameter %q must be last", cmd.Name, p.Name)
		}
	}
	return nil
}

// Register adds a top-level command
func (r *Router) Register(cmd Command) error {
	if err := checkNames(r.rootTaken, cmd.Name, cmd.Aliases); err != nil {
		return err
	}
	if err := validateCommand(cmd); err != nil {
		return err
	}
	c := cmd
	r.commands[c.Name] = &c
	for _, a := range c.Aliases {
		r.commands[a] = &c
	}
	r.commandOrder = append(r.commandOrder, &c)
	return nil
}

// RegisterGroup adds a group and all of its sub-commands. Nothing is
// registered if any name collides.
func (r *Router) RegisterGroup(g Group) error {
	if err := checkNames(r.rootTaken, g.Name, g.Aliases); err != nil {
		return fmt.Errorf("group %w", err)
	}

	entry := &group{Group: g, commands: make(map[string]*Command)}
	entry.Commands = make([]Command, len(g.Commands))
	copy(entry.Commands, g.Commands)

	taken := func(n string) bool {
		_, ok := entry.commands[n]
		return ok
	}
	for i := range entry.Commands {
		c := &entry.Commands[i]
		if err := checkNames(taken, c.Name, c.Aliases); err != nil {
			return fmt.Errorf("group %s: %w", g.Name, err)
		}
		if err := validateCommand(*c); err != nil {
			return fmt.Errorf("group %s: %w", g.Name, err)
		}
		entry.commands[c.Name] = c
		for _, a := range c.Aliases {
			entry.commands[a] = c
		}
	}

	r.groups[g.Name] = entry
	for _, a := range g.Aliases {
		r.groups[a] = entry
	}
	r.groupOrder = append(r.groupOrder, entry)
	return nil
}

// Resolve reports whether content names a registered command or group.
func (r *Router) Resolve(content string) bool {
	name, _, ok := r.splitName(content)
	return ok && r.rootTaken(name)
}

// splitName strips the prefix and returns the first word and the remainder.
func (r *Router) splitName(content string) (name, rest string, ok bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, r.prefix) {
		return "", "", false
	}
	body := content[len(r.prefix):]
	if body == "" || unicode.IsSpace([]rune(body)[0]) {
		return "", "", false
	}
	if i := strings.IndexFunc(body, unicode.IsSpace); i >= 0 {
		return body[:i], body[i:], true
	}
	return body, "", true
}

// Dispatch parses msg as a command and runs it. It reports false when the
// message is not a known command; only the arguments of a known command
// are tokenized. Usage problems and help are answered through reply; the
// returned error is the handler's.
func (r *Router) Dispatch(ctx context.Context, msg bot.BotMessage, reply Replier) (bool, error) {
	name, rest, ok := r.splitName(msg.Content)
	if !ok {
		return false, nil
	}

	g, isGroup := r.groups[name]
	cmd, isCommand := r.commands[name]
	if !isGroup && !isCommand {
		logger.WithFields(logrus.Fields{
			"command": name,
			"channel": msg.Channel,
		}).Debug("unknown-command-ignored")
		return false, nil
	}

	tokens, err := tokenize(rest)
	if err != nil {
		return true, reply.SendText(fmt.Sprintf("❌ %v", err))
	}

	if isCommand {
		return true, r.invoke(ctx, cmd, cmd.Name, msg, reply, tokens)
	}

	if len(tokens) == 0 {
		return true, reply.SendCard(r.groupHelp(g))
	}
	sub, ok := g.commands[tokens[0]]
	if !ok {
		logger.WithFields(logrus.Fields{
			"group":   g.Name,
			"command": tokens[0],
		}).Debug("unknown-subcommand")
		return true, reply.SendCard(r.groupHelp(g))
	}
	return true, r.invoke(ctx, sub, g.Name+" "+sub.Name, msg, reply, tokens[1:])
}

func (r *Router) invoke(ctx context.Context, cmd *Command, path string, msg bot.BotMessage, reply Replier, tokens []string) error {
	args, err := bind(cmd.Params, tokens)
	if err != nil {
		return r.usageReply(cmd, path, reply, err)
	}

	inv := &Invocation{
		ID:      uuid.New().String(),
		Path:    path,
		Message: msg,
		Args:    args,
		Reply:   reply,
	}
	logger.WithFields(logrus.Fields{
		"invocation": inv.ID,
		"command":    path,
		"platform":   msg.Platform,
		"channel":    msg.Channel,
		"user":       msg.UserID,
	}).Info("command-dispatched")

	// handlers may reject arguments the binder cannot check, such as an
	// unknown city name
	return r.usageReply(cmd, path, reply, call(ctx, cmd, inv))
}

// usageReply answers a *UsageError with the usage text and passes any other
// error through
func (r *Router) usageReply(cmd *Command, path string, reply Replier, err error) error {
	var ue *UsageError
	if !errors.As(err, &ue) {
		return err
	}
	logger.WithFields(logrus.Fields{
		"command": path,
		"reason":  ue.Reason,
	}).Info("command-usage-error")
	return reply.SendText(r.usage(cmd, path, ue.Reason))
}

func call(ctx context.Context, cmd *Command, inv *Invocation) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithFields(logrus.Fields{
				"invocation": inv.ID,
				"command":    inv.Path,
				"panic":      rec,
			}).Error("command-panic-recovered")
			err = fmt.Errorf("command %s panicked: %v", inv.Path, rec)
		}
	}()
	return cmd.Handler(ctx, inv)
}

func (r *Router) usage(cmd *Command, path, reason string) string {
	line := r.prefix + path
	if sig := cmd.Signature(); sig != "" {
		line += " " + sig
	}
	return fmt.Sprintf("❌ %s\nUsage: %s", reason, line)
}
