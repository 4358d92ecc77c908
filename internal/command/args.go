package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// UsageError reports arguments that could not be bound to a command
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// Args holds bound argument values by parameter name
type Args struct {
	values map[string]any
}

// Has reports whether name was bound, either from input or a default
func (a Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// String returns a string argument, or "" when unbound
func (a Args) String(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// Int returns an int argument, or 0 when unbound
func (a Args) Int(name string) int {
	n, _ := a.values[name].(int)
	return n
}

// Float returns a float argument, or 0 when unbound
func (a Args) Float(name string) float64 {
	f, _ := a.values[name].(float64)
	return f
}

// Strings returns the tokens collected by a variadic parameter
func (a Args) Strings(name string) []string {
	s, _ := a.values[name].([]string)
	return s
}

// bind coerces tokens to params
func bind(params []Param, tokens []string) (Args, error) {
	args := Args{values: make(map[string]any, len(params))}

	i := 0
	for _, p := range params {
		if p.Variadic {
			if i >= len(tokens) && !p.Optional {
				return Args{}, &UsageError{Reason: fmt.Sprintf("missing argument %q", p.Name)}
			}
			rest := make([]string, 0, len(tokens)-i)
			for ; i < len(tokens); i++ {
				rest = append(rest, tokens[i])
			}
			args.values[p.Name] = rest
			continue
		}

		raw, ok := "", false
		if i < len(tokens) {
			raw, ok = tokens[i], true
			i++
		} else if p.Optional {
			if p.Default == "" {
				continue
			}
			raw, ok = p.Default, true
		}
		if !ok {
			return Args{}, &UsageError{Reason: fmt.Sprintf("missing argument %q", p.Name)}
		}

		v, err := coerce(p, raw)
		if err != nil {
			return Args{}, err
		}
		args.values[p.Name] = v
	}

	if i < len(tokens) {
		return Args{}, &UsageError{Reason: fmt.Sprintf("too many arguments: %q", strings.Join(tokens[i:], " "))}
	}
	return args, nil
}

func coerce(p Param, raw string) (any, error) {
	switch p.Kind {
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &UsageError{Reason: fmt.Sprintf("%s must be an integer, got %q", p.Name, raw)}
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &UsageError{Reason: fmt.Sprintf("%s must be a number, got %q", p.Name, raw)}
		}
		return f, nil
	default:
		return raw, nil
	}
}

var errUnterminatedQuote = errors.New("unterminated quote")

// tokenize splits input on whitespace; single or double quotes group words
func tokenize(input string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
		inToken bool
	)
	for _, r := range input {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, errUnterminatedQuote
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}
