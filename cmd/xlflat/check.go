package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
)

var errOutputDiffers = errors.New("existing output differs from a fresh conversion")

func newCheckCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <input.xlsx> <existing.csv>",
		Short: "Regenerate the export and diff it against an existing file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.converter(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fresh, err := c.ConvertBytes(args[0])
			if err != nil {
				return err
			}
			existing, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read existing output: %w", err)
			}
			if n := writeLineDiff(cmd.OutOrStdout(), normalizeEOL(string(existing)), string(fresh)); n > 0 {
				return fmt.Errorf("%s: %w (%d lines)", args[1], errOutputDiffers, n)
			}
			printStatus(cmd.ErrOrStderr(), "%s is up to date", args[1])
			return nil
		},
	}
}

// normalizeEOL drops CR line endings and the trailing newline some editors add.
func normalizeEOL(s string) string {
	return strings.TrimSuffix(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// writeLineDiff prints inserted and deleted lines between from and to and
// returns how many lines changed.
func writeLineDiff(w io.Writer, from, to string) int {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	added := painter(w, color.FgGreen)
	removed := painter(w, color.FgRed)
	changed := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			changed++
			if d.Type == diffmatchpatch.DiffInsert {
				added.Fprintln(w, "+"+line)
			} else {
				removed.Fprintln(w, "-"+line)
			}
		}
	}
	return changed
}
