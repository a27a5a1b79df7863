package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mend/internal/config"
	"mend/internal/scan"
)

var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "List files with unbalanced delimiters without running the checker",
	Long: `Scan every source file under the root (see [scan] in mend.toml) and report
files whose brackets do not balance. Strings and comments are ignored. Nothing
is modified. Exits 2 when imbalanced files are found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	scanCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, _, err := config.Resolve(root)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	res, err := scan.Tree(cmd.Context(), root, scan.Options{
		Extensions: cfg.Scan.Extensions,
		Exclude:    cfg.Scan.Exclude,
		Jobs:       jobs,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		renderScan(out, res)
	}
	if !res.Clean() {
		return &exitError{code: 2}
	}
	return nil
}

func renderScan(w io.Writer, res *scan.Result) {
	bold := color.New(color.Bold)
	warn := color.New(color.FgYellow)
	for _, f := range res.Findings {
		if f.Err != "" {
			fmt.Fprintf(w, "%s: %s\n", bold.Sprint(f.Path), color.RedString(f.Err))
			continue
		}
		fmt.Fprintf(w, "%s: imbalance %s\n", bold.Sprint(f.Path), warn.Sprint(f.Imbalance))
		for _, p := range f.Open {
			fmt.Fprintf(w, "  unclosed %s at %d:%d\n", p.Char, p.Line, p.Col)
		}
		for _, p := range f.Stray {
			fmt.Fprintf(w, "  stray %s at %d:%d\n", p.Char, p.Line, p.Col)
		}
		if f.Unterminated {
			fmt.Fprintln(w, "  ends inside a string or comment")
		}
	}
	if res.Clean() {
		fmt.Fprintf(w, "%s %d file(s) balanced\n", color.GreenString("ok"), res.Files)
		return
	}
	fmt.Fprintf(w, "%d of %d file(s) imbalanced\n", len(res.Findings), res.Files)
}
