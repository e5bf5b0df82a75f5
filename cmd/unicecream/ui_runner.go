package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"unicecream/internal/driver"
	"unicecream/internal/ui"
)

type runOutcome struct {
	result *driver.Result
	err    error
}

// runWithUI runs the driver in the background while a progress view
// follows it. Per-file callbacks are not forwarded: the caller prints the
// collected results once the view is gone.
func runWithUI(ctx context.Context, title string, out io.Writer, paths []string, opts driver.Options) (*driver.Result, error) {
	events := make(chan ui.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		runOpts := opts
		runOpts.OnFile = func(fr *driver.FileResult) {
			events <- ui.EventFor(fr, runOpts.Mode)
		}
		res, err := driver.Run(ctx, paths, runOpts)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// вид мог закрыться раньше драйвера
	for range events {
	}
	outcome := <-outcomeCh
	if outcome.err != nil {
		return outcome.result, outcome.err
	}
	if uiErr != nil && ctx.Err() == nil {
		return outcome.result, uiErr
	}
	return outcome.result, nil
}
