package ui

import (
	"context"

	"github.com/charmbracelet/huh/spinner"
)

// SpinnerAction is the work shown behind a spinner. It receives the
// spinner's context and should return once that context is done.
type SpinnerAction func(ctx context.Context) error

// RunWithSpinner runs action behind a spinner bound to ctx.
// Without a TTY the title is printed and the action runs directly.
//
// On a TTY the spinner may return before the action does (ctrl+c, ctx
// cancelled); callers that need the action's side effects must wait for
// them through their own channel.
func RunWithSpinner(ctx context.Context, title string, action SpinnerAction) error {
	if !IsTTY() {
		Println(title)
		return action(ctx)
	}

	return spinner.New().
		Title(title).
		Context(ctx).
		ActionWithErr(action).
		Run()
}
