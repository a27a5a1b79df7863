package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"mend/internal/loop"
	"mend/internal/ui"
)

// runRepairWithUI runs the loop in a goroutine and renders its events on
// this one until the loop finishes.
func runRepairWithUI(ctx context.Context, title string, opts loop.Options) (*loop.Report, error) {
	events := make(chan loop.Event, 256)
	reportCh := make(chan *loop.Report, 1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		optsCopy := opts
		optsCopy.Progress = func(ev loop.Event) {
			if opts.Progress != nil {
				opts.Progress(ev)
			}
			events <- ev
		}
		reportCh <- loop.Run(ctx, optsCopy)
		close(events)
	}()

	model := ui.NewProgressModel(title, opts.MaxIterations, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// ctrl+c в UI закрывает программу раньше цикла
	cancel()
	for range events {
	}
	rep := <-reportCh
	return rep, uiErr
}
