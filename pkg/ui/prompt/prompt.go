// Package prompt asks the user how to resolve conflicts on the terminal.
package prompt

import (
	"context"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/resolver"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/pterm/pterm"
)

// SelectFunc shows question with options and returns the picked option.
type SelectFunc func(question string, options []string) (string, error)

// Terminal implements resolver.Prompter with a pterm select menu.
type Terminal struct {
	selectFn SelectFunc
}

// New returns a prompter bound to the controlling terminal.
func New() *Terminal {
	return &Terminal{selectFn: ptermSelect}
}

// NewWithSelect swaps the menu, for tests and scripted sessions.
func NewWithSelect(fn SelectFunc) *Terminal {
	return &Terminal{selectFn: fn}
}

func ptermSelect(question string, options []string) (string, error) {
	return pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithDefaultOption(options[0]).
		Show(question)
}

var labels = map[resolver.Choice]string{
	resolver.ChoiceOverwrite: "overwrite with the generated version",
	resolver.ChoiceSkip:      "keep the file as it is",
	resolver.ChoiceAbort:     "abort the sync",
}

// Label is the menu text for c.
func Label(c resolver.Choice) string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// Choose shows the conflict and maps the picked label back to a choice.
func (p *Terminal) Choose(ctx context.Context, conflict types.PlannedFile, choices []resolver.Choice) (resolver.Choice, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	options := make([]string, len(choices))
	byLabel := make(map[string]resolver.Choice, len(choices))
	for i, c := range choices {
		options[i] = Label(c)
		byLabel[options[i]] = c
	}

	picked, err := p.selectFn(resolver.Describe(conflict), options)
	if err != nil {
		return "", err
	}
	c, ok := byLabel[picked]
	if !ok {
		return "", errors.Newf(errors.ErrInvalidInput, "unexpected answer %q for %s", picked, conflict.Key)
	}
	return c, nil
}

