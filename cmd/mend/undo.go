package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mend/internal/journal"
	"mend/internal/lock"
	"mend/internal/source"
)

var undoCmd = &cobra.Command{
	Use:   "undo [root]",
	Short: "Restore the files changed by the last journaled repair",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUndo,
}

func init() {
	undoCmd.Flags().Bool("dry-run", false, "list the files that would be restored")
}

func runUndo(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}

	dir, err := journal.DefaultDir()
	if err != nil {
		return err
	}
	j, err := journal.Load(dir, root)
	if errors.Is(err, journal.ErrNoJournal) {
		return fmt.Errorf("no journal for %s (run `mend repair --journal` first)", root)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintf(out, "journal from %s:\n", j.Created().Local().Format("2006-01-02 15:04:05"))
		for _, e := range j.Entries() {
			fmt.Fprintf(out, "  %s\n", relTo(root, e.Path))
		}
		return nil
	}

	lockDir, err := lock.DefaultDir()
	if err != nil {
		return err
	}
	release, err := lock.Acquire(lockDir, root)
	if errors.Is(err, lock.ErrLocked) {
		return fmt.Errorf("a mend run is still repairing %s", root)
	}
	if err != nil {
		return err
	}
	defer release()

	restored, err := j.Restore()
	for _, path := range restored {
		fmt.Fprintf(out, "restored %s\n", relTo(root, path))
	}
	return err
}

func relTo(root, path string) string {
	rel, err := source.RelativePath(path, root)
	if err != nil {
		return path
	}
	return rel
}
