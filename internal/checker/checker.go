// Package checker runs the external build/verify tool whose diagnostics drive
// the repair loop.
package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"mend/internal/trace"
)

// DefaultTimeout bounds a single checker invocation.
const DefaultTimeout = 10 * time.Minute

// Output is the combined text and status of one checker run.
type Output struct {
	Text     string
	Success  bool
	ExitCode int
	Duration time.Duration
}

// Source produces checker output for a project root.
type Source interface {
	Check(ctx context.Context, root string) (Output, error)
}

// ToolInvocationError means the checker could not be run to completion:
// the binary is missing, could not start, or exceeded its timeout.
type ToolInvocationError struct {
	Command  string
	TimedOut bool
	Timeout  time.Duration
	Err      error
}

func (e *ToolInvocationError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("checker %q timed out after %s", e.Command, e.Timeout)
	}
	return fmt.Sprintf("checker %q could not run: %v", e.Command, e.Err)
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Err
}

// Command runs an executable in the project root and captures combined
// stdout/stderr.
type Command struct {
	Name    string
	Args    []string
	Env     []string // extra KEY=VALUE pairs appended to the environment
	Timeout time.Duration
}

// ParseCommandLine splits a command line on whitespace. Quoting is not
// interpreted; use the args list in mend.toml for arguments with spaces.
func ParseCommandLine(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, errors.New("empty checker command")
	}
	return Command{Name: fields[0], Args: fields[1:]}, nil
}

// String renders the command line for reports.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Check runs the command once. A non-zero exit is a normal failed check, not
// an error. Cancellation of ctx is returned as ctx.Err().
func (c Command) Check(ctx context.Context, root string) (Output, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Output{}, &ToolInvocationError{Err: errors.New("no checker command configured")}
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	traceCtx, span := trace.Start(ctx, trace.ScopeStep, "check")
	span.With("command", c.String())
	stopPulse := trace.Pulse(traceCtx)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var buf bytes.Buffer
	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	// дочерние процессы могут держать pipe открытым после kill
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	err := cmd.Run()
	stopPulse()
	out := Output{Text: buf.String(), Duration: time.Since(start)}

	switch {
	case ctx.Err() != nil:
		span.End("canceled")
		return out, ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		span.End("timeout")
		return out, &ToolInvocationError{Command: c.String(), TimedOut: true, Timeout: timeout, Err: runCtx.Err()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		span.With("exit", strconv.Itoa(out.ExitCode)).End("failed")
		return out, nil
	}
	if err != nil {
		span.End("invocation error")
		return out, &ToolInvocationError{Command: c.String(), Err: err}
	}
	out.Success = true
	span.End("ok")
	return out, nil
}
