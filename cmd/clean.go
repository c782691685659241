package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sergiu-D/dataforge/internal/sink"
)

var cleanTables []string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete all rows from tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		tables := cleanTables
		if len(tables) == 0 && cfg.Sink.Table != "" {
			tables = []string{cfg.Sink.Table}
		}
		if len(tables) == 0 {
			return fmt.Errorf("no tables to clean: use --tables or set sink.table")
		}

		ctx := cmd.Context()
		db, d, _, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := sink.New(db, d, logger).Clean(ctx, tables)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "🧹 Cleaned %d/%d tables\n", n, len(tables))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringSliceVarP(&cleanTables, "tables", "t", nil, "tables to clean (comma-separated)")
}
