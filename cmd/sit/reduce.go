package main

import (
	"github.com/spf13/cobra"

	"github.com/sitproject/sit/internal/config"
	"github.com/sitproject/sit/internal/fold"
	"github.com/sitproject/sit/internal/types"
)

// reduceOutput is a projection with the diagnostics of the fold that
// produced it.
type reduceOutput struct {
	types.Projection `yaml:",inline"`
	Errors           []fold.Diagnostic `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func newReduceCmd(a *app) *cobra.Command {
	var (
		format     string
		noCache    bool
		withErrors bool
		from       string
	)
	cmd := &cobra.Command{
		Use:     "reduce <id>",
		GroupID: "issues",
		Short:   "Fold an item's records and print its current state",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(sessionOptions{from: from, noCache: noCache})
			if err != nil {
				return err
			}
			defer s.Close()

			outFormat := s.format
			if cmd.Flags().Changed("format") {
				if outFormat, err = config.ParseOutputFormat(format); err != nil {
					return err
				}
			} else if a.jsonOutput {
				outFormat = config.FormatJSON
			}

			res, err := s.fold(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := reduceOutput{Projection: res.Projection}
			if withErrors {
				out.Errors = res.Diagnostics
			} else if n := len(res.Diagnostics); n > 0 {
				a.warnf(cmd, "%s: %d record problem(s), use --with-errors for details", args[0], n)
			}
			return writeData(cmd.OutOrStdout(), outFormat, out)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format: json or yaml (default: output.format setting)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Fold the whole history instead of resuming from the snapshot cache")
	cmd.Flags().BoolVar(&withErrors, "with-errors", false, "Include per-record diagnostics under \"errors\"")
	cmd.Flags().StringVar(&from, "from", "", "Read records from a JSONL export instead of a repository")
	return cmd
}
