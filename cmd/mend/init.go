package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mend/internal/checker"
	"mend/internal/config"
	"mend/internal/fix"
)

var initCmd = &cobra.Command{
	Use:   "init [root]",
	Short: "Write a default mend.toml",
	Long: `Write mend.toml with the default checker, loop bounds and scan settings into
the root (the current directory when omitted). An existing file is kept unless
--force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("command", "", "checker command line to record instead of `cargo check`")
	initCmd.Flags().Bool("force", false, "overwrite an existing mend.toml")
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	line, err := cmd.Flags().GetString("command")
	if err != nil {
		return err
	}

	path := filepath.Join(root, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg := config.Default()
	if line != "" {
		c, err := checker.ParseCommandLine(line)
		if err != nil {
			return fmt.Errorf("--command: %w", err)
		}
		cfg.Check.Command, cfg.Check.Args = c.Name, c.Args
	}

	var buf bytes.Buffer
	if err := config.Write(&buf, cfg); err != nil {
		return err
	}
	if err := fix.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}

	rel := path
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, path); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", rel)
	return nil
}
