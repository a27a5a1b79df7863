package checker

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCheckSuccess(t *testing.T) {
	requireShell(t)
	cmd := Command{Name: "sh", Args: []string{"-c", "echo Finished"}}
	out, err := cmd.Check(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !out.Success || out.ExitCode != 0 {
		t.Fatalf("expected success, got %+v", out)
	}
	if strings.TrimSpace(out.Text) != "Finished" {
		t.Fatalf("unexpected output %q", out.Text)
	}
}

func TestCheckFailureCapturesStderr(t *testing.T) {
	requireShell(t)
	cmd := Command{Name: "sh", Args: []string{"-c", "echo 'error: boom' >&2; echo ' --> src/a.rs:3:1' >&2; exit 101"}}
	out, err := cmd.Check(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("a failing check must not be an error, got %v", err)
	}
	if out.Success {
		t.Fatal("expected failure")
	}
	if out.ExitCode != 101 {
		t.Fatalf("expected exit code 101, got %d", out.ExitCode)
	}
	if !strings.Contains(out.Text, "--> src/a.rs:3:1") {
		t.Fatalf("expected stderr in combined output, got %q", out.Text)
	}
}

func TestCheckRunsInRoot(t *testing.T) {
	requireShell(t)
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "marker.txt"), []byte("here"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := Command{Name: "sh", Args: []string{"-c", "cat marker.txt; echo \" $MEND_TEST_VAR\""}, Env: []string{"MEND_TEST_VAR=ok"}}
	out, err := cmd.Check(context.Background(), root)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if strings.TrimSpace(out.Text) != "here ok" {
		t.Fatalf("unexpected output %q", out.Text)
	}
}

func TestCheckMissingBinary(t *testing.T) {
	cmd := Command{Name: "mend-definitely-missing-checker"}
	_, err := cmd.Check(context.Background(), t.TempDir())
	var inv *ToolInvocationError
	if !errors.As(err, &inv) {
		t.Fatalf("expected ToolInvocationError, got %v", err)
	}
	if inv.TimedOut {
		t.Fatal("missing binary must not be reported as timeout")
	}
}

func TestCheckEmptyCommand(t *testing.T) {
	_, err := Command{}.Check(context.Background(), t.TempDir())
	var inv *ToolInvocationError
	if !errors.As(err, &inv) {
		t.Fatalf("expected ToolInvocationError, got %v", err)
	}
}

func TestCheckTimeout(t *testing.T) {
	requireShell(t)
	cmd := Command{Name: "sh", Args: []string{"-c", "exec sleep 5"}, Timeout: 50 * time.Millisecond}
	_, err := cmd.Check(context.Background(), t.TempDir())
	var inv *ToolInvocationError
	if !errors.As(err, &inv) || !inv.TimedOut {
		t.Fatalf("expected timeout ToolInvocationError, got %v", err)
	}
}

func TestCheckCanceled(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Command{Name: "sh", Args: []string{"-c", "true"}}.Check(ctx, t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseCommandLine(t *testing.T) {
	cmd, err := ParseCommandLine("  cargo   check --workspace ")
	if err != nil {
		t.Fatalf("ParseCommandLine returned error: %v", err)
	}
	if cmd.Name != "cargo" || len(cmd.Args) != 2 || cmd.Args[1] != "--workspace" {
		t.Fatalf("unexpected command %+v", cmd)
	}
	if cmd.String() != "cargo check --workspace" {
		t.Fatalf("unexpected String %q", cmd.String())
	}
	if _, err := ParseCommandLine("   "); err == nil {
		t.Fatal("expected error for empty command line")
	}
}
