package cli

import (
	"github.com/spf13/cobra"
)

func newJournalCmd(app *App) *cobra.Command {
	var (
		limit int
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List executed actions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			level := ""
			if !all {
				if level, err = currentLevel(app); err != nil {
					return writeErr(cmd, err)
				}
			}
			entries, err := s.ListJournal(cmdContext(cmd), level, limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries (0 for all)")
	cmd.Flags().BoolVar(&all, "all", false, "Include every level")
	return cmd
}
