package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"mend/internal/loop"
)

// progressMode says how `mend repair` reports progress on stderr.
type progressMode string

const (
	progressAuto  progressMode = "auto"
	progressTUI   progressMode = "tui"   // bubbletea view
	progressLines progressMode = "lines" // one line per check and patch
	progressNone  progressMode = "none"
)

func readProgressMode(value string) (progressMode, error) {
	m := progressMode(strings.ToLower(strings.TrimSpace(value)))
	switch m {
	case "":
		return progressAuto, nil
	case progressAuto, progressTUI, progressLines, progressNone:
		return m, nil
	}
	return "", fmt.Errorf("invalid --progress value %q (expected auto|tui|lines|none)", value)
}

// resolve picks a concrete mode. --quiet silences everything; auto stays
// silent under a JSON report and draws the TUI only on a terminal.
func (m progressMode) resolve(quiet, jsonReport, terminal bool) progressMode {
	switch {
	case quiet:
		return progressNone
	case m != progressAuto:
		return m
	case jsonReport:
		return progressNone
	case terminal:
		return progressTUI
	}
	return progressLines
}

// lineProgress prints one line per patch attempt for non-interactive output.
func lineProgress(w io.Writer) func(loop.Event) {
	var start time.Time
	return func(ev loop.Event) {
		switch ev.Stage {
		case loop.StageCheck:
			start = time.Now()
			fmt.Fprintf(w, "[%d] checking...\n", ev.Iteration)
		case loop.StageParse:
			fmt.Fprintf(w, "[%d] %s (check took %s)\n", ev.Iteration, ev.Status, time.Since(start).Round(time.Millisecond))
		case loop.StagePatch:
			fmt.Fprintf(w, "[%d] %s:%d %s\n", ev.Iteration, ev.Path, ev.Line, ev.Status)
		}
	}
}
