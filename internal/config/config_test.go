package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("expected config found, got ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[check]
command = "make"
args = ["lint"]
timeout = "90s"

[check.env]
RUSTFLAGS = "-Awarnings"

[loop]
max_iterations = 7
journal = true

[rules]
disable = ["struct-literal"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Check.Command != "make" || cfg.Check.Timeout.Duration != 90*time.Second {
		t.Fatalf("unexpected check config %+v", cfg.Check)
	}
	if cfg.Check.Marker != "-->" {
		t.Fatalf("expected default marker kept, got %q", cfg.Check.Marker)
	}
	if cfg.Loop.MaxIterations != 7 || cfg.Loop.MaxLocations != DefaultMaxLocations || !cfg.Loop.Journal {
		t.Fatalf("unexpected loop config %+v", cfg.Loop)
	}
	cmd := cfg.Check.Invocation()
	if cmd.String() != "make lint" || len(cmd.Env) != 1 || cmd.Env[0] != "RUSTFLAGS=-Awarnings" {
		t.Fatalf("unexpected command %+v", cmd)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[loop]\nmax_iteration = 3\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "loop.max_iteration") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadValidates(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"zero iterations", "[loop]\nmax_iterations = 0\n", "max_iterations"},
		{"empty command", "[check]\ncommand = \"\"\n", "command"},
		{"bad duration", "[check]\ntimeout = \"soon\"\n", "parse"},
		{"unknown rule", "[rules]\ndisable = [\"magic\"]\n", "unknown rule"},
		{"bad extension", "[scan]\nextensions = [\"rs\"]\n", "extensions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestResolveWithoutFile(t *testing.T) {
	cfg, path, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != "" {
		t.Fatalf("expected no path, got %s", path)
	}
	if cfg.Loop.MaxIterations != DefaultMaxIterations {
		t.Fatalf("expected defaults, got %+v", cfg.Loop)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Default()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	path := writeConfig(t, t.TempDir(), buf.String())
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v\n%s", err, buf.String())
	}
	if cfg.Check.Timeout.Duration != Default().Check.Timeout.Duration {
		t.Fatalf("expected timeout preserved, got %v", cfg.Check.Timeout)
	}
}

func TestLoadMergesEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "check.env"), []byte("RUSTFLAGS=-Awarnings\nCARGO_TERM_COLOR=always\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, dir, `
[check]
env_file = "check.env"

[check.env]
CARGO_TERM_COLOR = "never"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Check.Env["RUSTFLAGS"] != "-Awarnings" {
		t.Fatalf("expected RUSTFLAGS from env file, got %q", cfg.Check.Env["RUSTFLAGS"])
	}
	if cfg.Check.Env["CARGO_TERM_COLOR"] != "never" {
		t.Fatalf("expected [check.env] to win, got %q", cfg.Check.Env["CARGO_TERM_COLOR"])
	}
	env := cfg.Check.Invocation().Env
	if len(env) != 2 || env[0] != "CARGO_TERM_COLOR=never" {
		t.Fatalf("unexpected command env %v", env)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[check]
env_file = "absent.env"
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "env_file") {
		t.Fatalf("expected env_file error, got %v", err)
	}
}
