// Package main provides the xlflat command line tool.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/javajack/xlflat"
	"github.com/spf13/cobra"
)

var version = "dev"

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	profile     string
	policy      string
	rule        string
	locale      string
	delimiter   string
	displayText bool
	verbose     bool
}

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "xlflat",
		Short: "Flatten spreadsheet grids with merged multi-row headers into delimited text",
		Long: `xlflat reads the first sheet of an .xlsx workbook, resolves merged cells,
builds one header per column from the stage, role and field header rows,
and writes a semicolon-delimited table.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.profile, "profile", "", "YAML profile with converter settings")
	pf.StringVar(&g.policy, "policy", "", "stage detection policy: any-non-empty, keyword-only, expression")
	pf.StringVar(&g.rule, "stage-rule", "", "expr predicate deciding stage starts (implies --policy expression)")
	pf.StringVar(&g.locale, "locale", "", "number grouping locale: ru, en")
	pf.StringVarP(&g.delimiter, "delimiter", "d", "", "field delimiter (default ;)")
	pf.BoolVar(&g.displayText, "display-text", false, "prefer the workbook's formatted cell text")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log debug details to stderr")

	root.AddCommand(newConvertCommand(g))
	root.AddCommand(newDescribeCommand(g))
	root.AddCommand(newValidateCommand(g))
	root.AddCommand(newCheckCommand(g))
	return root
}

// converter builds a Converter from the profile first and the flags second,
// so flags override profile values.
func (g *globalFlags) converter(stderr io.Writer) (*xlflat.Converter, error) {
	var opts []xlflat.Option
	if g.profile != "" {
		p, err := xlflat.LoadProfile(g.profile)
		if err != nil {
			return nil, err
		}
		popts, err := p.Options()
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", g.profile, err)
		}
		opts = append(opts, popts...)
	}
	if g.policy != "" {
		policy, err := xlflat.ParseStagePolicy(g.policy)
		if err != nil {
			return nil, err
		}
		if g.rule != "" && policy != xlflat.StageExpression {
			return nil, fmt.Errorf("--stage-rule requires --policy %s, got %s", xlflat.StageExpression, policy)
		}
		opts = append(opts, xlflat.WithStagePolicy(policy))
	}
	if g.rule != "" {
		opts = append(opts, xlflat.WithStageRule(g.rule))
	}
	if g.locale != "" {
		l, err := xlflat.ParseLocale(g.locale)
		if err != nil {
			return nil, err
		}
		opts = append(opts, xlflat.WithLocale(l))
	}
	if g.delimiter != "" {
		d, err := xlflat.ParseDelimiter(g.delimiter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, xlflat.WithDelimiter(d))
	}
	if g.displayText {
		opts = append(opts, xlflat.WithDisplayText(true))
	}
	opts = append(opts, xlflat.WithLogger(newLogger(stderr, g.verbose)))
	return xlflat.NewConverter(opts...)
}

func newConvertCommand(g *globalFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "convert <input.xlsx>",
		Short: "Convert the first sheet of a workbook to delimited text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.converter(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if output != "" {
				if err := c.ConvertFile(args[0], output); err != nil {
					return err
				}
				printStatus(cmd.ErrOrStderr(), "wrote %s", output)
				return nil
			}
			data, err := c.ConvertBytes(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: stdout)")
	return cmd
}

func newDescribeCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <input.xlsx>",
		Short: "Print the detected stage, role and column header structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.converter(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			grid, merges, err := c.LoadFile(args[0])
			if err != nil {
				return err
			}
			out, err := c.Describe(grid, merges)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newValidateCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input.xlsx>",
		Short: "Check merge regions and the header block without converting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.converter(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			grid, merges, err := c.LoadFile(args[0])
			if err != nil {
				return err
			}
			issues := c.Validate(grid, merges)
			for _, is := range issues {
				printIssue(cmd.OutOrStdout(), is)
			}
			if xlflat.HasErrors(issues) {
				return fmt.Errorf("%s: validation failed", args[0])
			}
			printStatus(cmd.ErrOrStderr(), "%s: ok (%d warnings)", args[0], len(issues))
			return nil
		},
	}
}
