package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitproject/sit/internal/reducer"
	"github.com/sitproject/sit/internal/types"
	"github.com/sitproject/sit/internal/ui"
)

type recordInfo struct {
	Hash  string        `json:"hash"`
	Types types.TypeSet `json:"types"`
	Files []string      `json:"files"`
}

func newRecordsCmd(a *app) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:     "records <id>",
		GroupID: "data",
		Short:   "List an item's records in fold order",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(sessionOptions{from: from, noCache: true})
			if err != nil {
				return err
			}
			defer s.Close()

			var infos []recordInfo
			for rec, err := range s.src.Records(cmd.Context(), args[0]) {
				if err != nil {
					return err
				}
				infos = append(infos, recordInfo{Hash: rec.Hash, Types: reducer.TypesOf(rec), Files: rec.Names()})
			}

			if a.jsonOutput {
				if infos == nil {
					infos = []recordInfo{}
				}
				return writeJSON(cmd.OutOrStdout(), infos)
			}
			w := cmd.OutOrStdout()
			for _, info := range infos {
				kinds := info.Types.String()
				if info.Types.Empty() {
					kinds = ui.RenderMuted("(no recognized type)")
				}
				fmt.Fprintf(w, "%s  %s\n", ui.RenderAccent(info.Hash), kinds)
				if a.verbose {
					fmt.Fprintln(w, ui.Indent(strings.Join(info.Files, "\n"), ui.TreeIndent))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Read records from a JSONL export instead of a repository")
	return cmd
}
