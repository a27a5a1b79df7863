package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mend/internal/checker"
	"mend/internal/config"
	"mend/internal/journal"
	"mend/internal/lock"
	"mend/internal/loop"
	"mend/internal/observ"
	"mend/internal/rules"
)

var repairCmd = &cobra.Command{
	Use:   "repair [root]",
	Short: "Run the checker and patch structural damage until it passes",
	Long: `Run the configured checker over the project root, patch every location whose
shape a repair rule recognises and repeat. The run stops when the checker
passes (exit 0), when an iteration makes no progress (2), when the iteration
ceiling is reached (3) or on a fatal error (4).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().Int("max-iterations", config.DefaultMaxIterations, "iteration ceiling")
	repairCmd.Flags().Int("max-locations", config.DefaultMaxLocations, "locations repaired per iteration")
	repairCmd.Flags().String("command", "", "checker command line, overrides [check] (e.g. \"cargo check --all-targets\")")
	repairCmd.Flags().Duration("timeout", 0, "per-run checker timeout, overrides [check].timeout")
	repairCmd.Flags().StringSlice("disable", nil, "repair rules to disable")
	repairCmd.Flags().String("format", "pretty", "report format (pretty|json)")
	repairCmd.Flags().Bool("attempts", false, "include every repair attempt in the JSON report")
	repairCmd.Flags().Bool("journal", false, "journal original file contents so `mend undo` can restore them")
	repairCmd.Flags().String("progress", string(progressAuto), "progress on stderr (auto|tui|lines|none)")
}

// repairSettings is the merged view of mend.toml and the command line.
type repairSettings struct {
	root     string
	cfg      config.Config
	cfgPath  string
	format   string
	attempts bool
	progress progressMode
	quiet    bool
	timings  bool
}

func readRepairSettings(cmd *cobra.Command, args []string) (repairSettings, error) {
	var s repairSettings
	root, err := resolveRoot(args)
	if err != nil {
		return s, err
	}
	cfg, cfgPath, err := config.Resolve(root)
	if err != nil {
		return s, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-iterations") {
		cfg.Loop.MaxIterations, _ = flags.GetInt("max-iterations")
	}
	if flags.Changed("max-locations") {
		cfg.Loop.MaxLocations, _ = flags.GetInt("max-locations")
	}
	if flags.Changed("command") {
		line, _ := flags.GetString("command")
		c, err := checker.ParseCommandLine(line)
		if err != nil {
			return s, fmt.Errorf("--command: %w", err)
		}
		cfg.Check.Command, cfg.Check.Args = c.Name, c.Args
	}
	if flags.Changed("timeout") {
		cfg.Check.Timeout.Duration, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("disable") {
		extra, _ := flags.GetStringSlice("disable")
		cfg.Rules.Disable = append(cfg.Rules.Disable, extra...)
	}
	if flags.Changed("journal") {
		cfg.Loop.Journal, _ = flags.GetBool("journal")
	}
	if err := cfg.Validate(); err != nil {
		return s, err
	}

	format, _ := flags.GetString("format")
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return s, fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	progressValue, _ := flags.GetString("progress")
	progress, err := readProgressMode(progressValue)
	if err != nil {
		return s, err
	}
	attempts, _ := flags.GetBool("attempts")
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return s, err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return s, err
	}

	return repairSettings{
		root:     root,
		cfg:      cfg,
		cfgPath:  cfgPath,
		format:   format,
		attempts: attempts,
		progress: progress,
		quiet:    quiet,
		timings:  timings,
	}, nil
}

func runRepair(cmd *cobra.Command, args []string) error {
	s, err := readRepairSettings(cmd, args)
	if err != nil {
		return err
	}
	catalog, err := rules.New(s.cfg.Rules.Disable)
	if err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	lockDir, err := lock.DefaultDir()
	if err != nil {
		return err
	}
	release, err := lock.Acquire(lockDir, s.root)
	if errors.Is(err, lock.ErrLocked) {
		return fmt.Errorf("another mend run is repairing %s", s.root)
	}
	if err != nil {
		return err
	}
	defer release()

	var j *journal.Journal
	if s.cfg.Loop.Journal {
		dir, err := journal.DefaultDir()
		if err != nil {
			return err
		}
		if j, err = journal.Begin(dir, s.root); err != nil {
			return err
		}
	}

	var timer *observ.Timer
	if s.timings {
		timer = observ.NewTimer()
	}

	errOut := cmd.ErrOrStderr()
	if !s.quiet && s.format == "pretty" {
		cfgLabel := "defaults"
		if s.cfgPath != "" {
			cfgLabel = s.cfgPath
		}
		fmt.Fprintf(errOut, "repairing %s with `%s` (config: %s)\n", s.root, s.cfg.Check.Invocation().String(), cfgLabel)
	}

	opts := loop.Options{
		Root:          s.root,
		Source:        s.cfg.Check.Invocation(),
		Catalog:       catalog,
		Marker:        s.cfg.Check.Marker,
		MaxIterations: s.cfg.Loop.MaxIterations,
		MaxLocations:  s.cfg.Loop.MaxLocations,
		Journal:       j,
		Timer:         timer,
	}

	ctx := cmd.Context()
	var rep *loop.Report
	terminal := isTerminal(os.Stdout) && isTerminal(os.Stderr)
	switch s.progress.resolve(s.quiet, s.format == "json", terminal) {
	case progressTUI:
		rep, err = runRepairWithUI(ctx, "mend "+filepath.Base(s.root), opts)
		if err != nil {
			fmt.Fprintf(errOut, "ui: %v\n", err)
		}
	case progressLines:
		opts.Progress = lineProgress(errOut)
		rep = loop.Run(ctx, opts)
	default:
		rep = loop.Run(ctx, opts)
	}

	if rep.State == loop.Fatal {
		dumpTrace(tracer, errOut)
	}
	if j != nil {
		finishJournal(errOut, j, s.quiet)
	}

	out := cmd.OutOrStdout()
	if s.format == "json" {
		if err := loop.RenderJSON(out, rep, s.attempts); err != nil {
			return err
		}
	} else if !s.quiet || rep.State != loop.Succeeded {
		loop.RenderText(out, rep)
	}
	if s.timings {
		printTimings(errOut, timer)
	}

	if code := rep.State.ExitCode(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// finishJournal drops an empty journal and tells the user how to undo otherwise.
func finishJournal(w io.Writer, j *journal.Journal, quiet bool) {
	if len(j.Entries()) == 0 {
		if err := j.Drop(); err != nil {
			fmt.Fprintf(w, "journal: %v\n", err)
		}
		return
	}
	if !quiet {
		fmt.Fprintf(w, "journaled %d file(s); run `mend undo` to restore them\n", len(j.Entries()))
	}
}
