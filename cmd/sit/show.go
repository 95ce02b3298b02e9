package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitproject/sit/internal/config"
	"github.com/sitproject/sit/internal/fold"
	"github.com/sitproject/sit/internal/ui"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		watch bool
		full  bool
		plain bool
	)
	cmd := &cobra.Command{
		Use:     "show <id>",
		GroupID: "issues",
		Short:   "Show an item: summary, details, merge requests and comments",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			id := args[0]
			opts := ui.IssueOptions{Full: full, Markdown: !plain}
			w := cmd.OutOrStdout()

			render := func(res *fold.Result) error {
				if a.jsonOutput {
					return writeJSON(w, res.Projection)
				}
				fmt.Fprint(w, ui.RenderIssue(res.Projection, opts))
				if n := len(res.Diagnostics); n > 0 {
					a.warnf(cmd, "%d record problem(s), see sit reduce %s --with-errors", n, id)
				}
				return nil
			}

			res, err := s.fold(ctx, id)
			if err != nil {
				return err
			}
			if err := render(res); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			debounce := config.GetDuration(config.KeyWatchDebounce)
			if !a.jsonOutput {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.RenderMuted("Watching "+id+" for new records (Ctrl+C to stop)"))
			}
			last := res
			err = watchItem(ctx, s.repo.ItemDir(id), debounce, func() error {
				res, err := s.refold(ctx, id, last)
				if err != nil {
					return err
				}
				last = res
				if !a.jsonOutput {
					fmt.Fprintln(w, ui.RenderSeparator())
				}
				return render(res)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render when new records arrive")
	cmd.Flags().BoolVar(&full, "full", false, "Do not truncate long text")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print text as-is instead of rendering markdown")
	return cmd
}
