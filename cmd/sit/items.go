package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitproject/sit/internal/fold"
	"github.com/sitproject/sit/internal/timeparsing"
	"github.com/sitproject/sit/internal/types"
	"github.com/sitproject/sit/internal/ui"
)

// itemFilter selects projections for "sit items".
type itemFilter struct {
	state   types.State // empty matches any
	since   time.Time   // zero matches any
	hasTime bool
}

func (f itemFilter) match(p types.Projection) bool {
	if f.state != "" && p.State != f.state {
		return false
	}
	if !f.hasTime {
		return true
	}
	if p.LastUpdatedTimestamp == nil {
		return false
	}
	updated, err := timeparsing.ParseTimestamp(*p.LastUpdatedTimestamp, time.Local)
	return err == nil && !updated.Before(f.since)
}

func newItemsCmd(a *app) *cobra.Command {
	var (
		state        string
		updatedSince string
		from         string
	)
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"list"},
		GroupID: "issues",
		Short:   "List items with their state and summary",
		Long: `List every item of the repository, folding items in parallel.

Examples:
  sit items --state open
  sit items --updated-since 2w
  sit items --updated-since "last monday"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter itemFilter
			if state != "" {
				s, err := types.ParseState(state)
				if err != nil {
					return err
				}
				filter.state = s
			}
			if updatedSince != "" {
				since, err := timeparsing.ParseSince(updatedSince, time.Now())
				if err != nil {
					return fmt.Errorf("--updated-since: %w", err)
				}
				filter.since, filter.hasTime = since, true
			}

			s, err := a.openSession(sessionOptions{from: from})
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			ids, err := s.issues(ctx)
			if err != nil {
				return err
			}
			results, err := s.foldAll(ctx, ids)
			if err != nil {
				return err
			}

			items := make([]types.Projection, 0, len(results))
			problems := 0
			for _, res := range results {
				problems += len(res.Diagnostics)
				if filter.match(res.Projection) {
					items = append(items, res.Projection)
				}
			}
			if problems > 0 {
				a.warnf(cmd, "%d record problem(s) across %d item(s), see sit reduce --with-errors", problems, countWithDiagnostics(results))
			}

			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			for _, p := range items {
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderIssueLine(p))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "Only list items in this state (open, closed)")
	cmd.Flags().StringVar(&updatedSince, "updated-since", "", "Only list items updated since EXPR (2d, 2025-01-15, \"last week\")")
	cmd.Flags().StringVar(&from, "from", "", "Read records from a JSONL export instead of a repository")
	return cmd
}

func countWithDiagnostics(results []*fold.Result) int {
	n := 0
	for _, res := range results {
		if len(res.Diagnostics) > 0 {
			n++
		}
	}
	return n
}
