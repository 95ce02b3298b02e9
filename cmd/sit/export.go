package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sitproject/sit/internal/debug"
	"github.com/sitproject/sit/internal/storage/jsonl"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		output string
		from   string
	)
	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "data",
		Short:   "Export every item's records as JSONL",
		Long: `Export every item's records, one JSON object per line, in fold order.
The export can be read back with --from on reduce, items and records.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := a.openSession(sessionOptions{from: from, noCache: true})
			if err != nil {
				return err
			}
			defer s.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output) // #nosec G304 -- user-supplied output path
				if err != nil {
					return err
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
				}()
				w = f
			}

			n, err := jsonl.Export(cmd.Context(), jsonl.NewWriter(w), s.src)
			if err != nil {
				return err
			}
			if output != "" {
				debug.PrintNormal(cmd.ErrOrStderr(), "Exported %d records to %s\n", n, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().StringVar(&from, "from", "", "Read records from a JSONL export instead of a repository")
	return cmd
}
