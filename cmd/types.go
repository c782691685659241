package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Sergiu-D/dataforge/internal/schema"
)

var typesJSON bool

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the field types the engine offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, sel, err := newSession()
		if err != nil {
			return err
		}

		types, err := sess.Types(cmd.Context())
		if err != nil {
			return err
		}

		if typesJSON {
			data, err := json.MarshalIndent(types, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		table, err := typesTable(types)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), table)
		fmt.Fprintf(cmd.ErrOrStderr(), "engine: %s\n", sel.State())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(typesCmd)
	typesCmd.Flags().BoolVar(&typesJSON, "json", false, "print the catalog as JSON")
}

// typesTable renders the catalog grouped by category.
func typesTable(types []schema.FieldTypeDescriptor) (string, error) {
	data := pterm.TableData{{"Category", "Type", "Name", "Options"}}
	for _, cat := range schema.Categories(types) {
		for _, t := range schema.ByCategory(types, cat) {
			data = append(data, []string{cat, t.ID, t.DisplayName, optionKeys(t.ID)})
		}
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func optionKeys(typeID string) string {
	switch schema.KindFor(typeID) {
	case schema.KindRange:
		return "min, max"
	case schema.KindWordCount:
		return "word_count"
	case schema.KindValueList:
		return "values"
	default:
		return ""
	}
}
