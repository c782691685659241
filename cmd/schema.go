package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Sergiu-D/dataforge/internal/schema"
)

var (
	importTable string
	importOut   string
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create, check and edit schema files",
}

var schemaInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Build a schema file interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "schema.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		sess, _, err := newSession()
		if err != nil {
			return err
		}
		types, err := sess.Types(cmd.Context())
		if err != nil {
			return err
		}
		ids := make([]string, len(types))
		for i, t := range types {
			ids[i] = t.ID
		}

		var fields []schema.Field
		for {
			if err := cmd.Context().Err(); err != nil {
				return err
			}

			var name string
			prompt := &survey.Input{
				Message: fmt.Sprintf("Field %d name:", len(fields)+1),
				Help:    "Leave empty to finish",
			}
			if err := survey.AskOne(prompt, &name); err != nil {
				return promptErr(err)
			}
			name = strings.TrimSpace(name)
			if name == "" {
				break
			}

			fields = schema.NewField(fields)
			f := fields[len(fields)-1]
			f.Name = name

			f, err = askType(f, ids)
			if err != nil {
				return err
			}
			if fields, err = schema.ReplaceField(fields, f); err != nil {
				return err
			}
		}

		rowsAnswer := strconv.Itoa(schema.DefaultRows)
		rowsPrompt := &survey.Input{Message: "Rows to generate:", Default: rowsAnswer}
		if err := survey.AskOne(rowsPrompt, &rowsAnswer, survey.WithValidator(intValidator)); err != nil {
			return promptErr(err)
		}
		rows, _ := strconv.Atoi(rowsAnswer)

		sc := schema.Schema{Fields: fields, Rows: schema.ClampRows(rows)}
		for _, problem := range schema.Validate(sc.Fields) {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %s\n", problem)
		}

		write := true
		confirm := &survey.Confirm{Message: fmt.Sprintf("Write %d fields to %s?", len(fields), path), Default: true}
		if err := survey.AskOne(confirm, &write); err != nil {
			return promptErr(err)
		}
		if !write {
			return nil
		}
		if err := schema.WriteFile(afero.NewOsFs(), path, sc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "💾 Saved %s\n", path)
		return nil
	},
}

var schemaValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Report problems in a schema file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := schema.LoadFile(afero.NewOsFs(), args[0])
		if err != nil {
			return err
		}
		problems := schema.Validate(sc.Fields)
		for _, p := range problems {
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("%s: %d problem(s)", args[0], len(problems))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d fields, %d rows\n", args[0], len(sc.Fields), sc.Rows)
		return nil
	},
}

var schemaMoveCmd = &cobra.Command{
	Use:   "move <file> <from> <to>",
	Short: "Move a field to another position (1-based)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[2])
		}

		fs := afero.NewOsFs()
		sc, err := schema.LoadFile(fs, args[0])
		if err != nil {
			return err
		}
		if sc.Fields, err = schema.MoveField(sc.Fields, from-1, to-1); err != nil {
			return err
		}
		if err := schema.WriteFile(fs, args[0], sc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", strings.Join(sc.Header(), ", "))
		return nil
	},
}

var schemaRemoveCmd = &cobra.Command{
	Use:   "remove <file> <position>",
	Short: "Remove the field at a position (1-based)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		sc, err := removeFieldAt(afero.NewOsFs(), args[0], pos)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", strings.Join(sc.Header(), ", "))
		return nil
	},
}

var schemaImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Create a schema file from an existing database table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importTable == "" {
			return errors.New("--table is required")
		}
		out := importOut
		if out == "" {
			out = importTable + ".yaml"
		}

		ctx := cmd.Context()
		db, d, schemaName, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		cols, err := schema.AnalyzeTable(ctx, db, d, schemaName, importTable)
		if err != nil {
			return err
		}

		data := pterm.TableData{{"Column", "SQL Type", "Suggested Type"}}
		for _, c := range cols {
			suggested := c.Meaning
			if suggested == "" {
				suggested = "?"
			}
			data = append(data, []string{c.Name, c.DataType, suggested})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), table)

		sc := schema.Schema{Fields: schema.FieldsFromColumns(cols), Rows: cfg.Generate.Rows}
		if err := schema.WriteFile(afero.NewOsFs(), out, sc); err != nil {
			return err
		}
		for _, p := range schema.Validate(sc.Fields) {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %s\n", p)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "💾 Saved %s\n", out)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaInitCmd, schemaValidateCmd, schemaMoveCmd, schemaRemoveCmd, schemaImportCmd)

	schemaImportCmd.Flags().StringVarP(&importTable, "table", "t", "", "table to import")
	schemaImportCmd.Flags().StringVarP(&importOut, "out", "o", "", "schema file to write (default <table>.yaml)")
}

// removeFieldAt drops the field at a 1-based position and rewrites the file.
func removeFieldAt(fs afero.Fs, path string, pos int) (schema.Schema, error) {
	sc, err := schema.LoadFile(fs, path)
	if err != nil {
		return schema.Schema{}, err
	}
	if pos < 1 || pos > len(sc.Fields) {
		return schema.Schema{}, fmt.Errorf("%w: position %d with %d fields", schema.ErrIndexOutOfRange, pos, len(sc.Fields))
	}
	if sc.Fields, err = schema.RemoveField(sc.Fields, sc.Fields[pos-1].ID); err != nil {
		return schema.Schema{}, err
	}
	if err := schema.WriteFile(fs, path, sc); err != nil {
		return schema.Schema{}, err
	}
	return sc, nil
}

// askType prompts for the type of f and then for the options that type takes.
func askType(f schema.Field, ids []string) (schema.Field, error) {
	var typeID string
	sel := &survey.Select{
		Message:  fmt.Sprintf("Type of %q:", f.Name),
		Options:  ids,
		PageSize: 12,
	}
	suggested := schema.SuggestType(f.Name, "")
	for _, id := range ids {
		if id == suggested {
			sel.Default = suggested
		}
	}
	if err := survey.AskOne(sel, &typeID); err != nil {
		return f, promptErr(err)
	}

	raw := map[string]any{}
	switch schema.KindFor(typeID) {
	case schema.KindRange:
		for _, key := range []string{"min", "max"} {
			var answer string
			p := &survey.Input{Message: key + ":", Help: "Leave empty for the default"}
			if err := survey.AskOne(p, &answer, survey.WithValidator(optionalNumber)); err != nil {
				return f, promptErr(err)
			}
			if answer = strings.TrimSpace(answer); answer != "" {
				raw[key] = answer
			}
		}
	case schema.KindWordCount:
		answer := strconv.Itoa(schema.DefaultWordCount)
		p := &survey.Input{Message: "Words per value:", Default: answer}
		if err := survey.AskOne(p, &answer, survey.WithValidator(intValidator)); err != nil {
			return f, promptErr(err)
		}
		n, _ := strconv.Atoi(strings.TrimSpace(answer))
		raw["word_count"] = n
	case schema.KindValueList:
		var answer string
		p := &survey.Multiline{Message: "Values (one per line):"}
		if err := survey.AskOne(p, &answer); err != nil {
			return f, promptErr(err)
		}
		raw["values"] = answer
	}

	return schema.SetType(f, typeID, raw)
}

func intValidator(ans any) error {
	s, _ := ans.(string)
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return errors.New("enter a whole number")
	}
	return nil
}

func optionalNumber(ans any) error {
	s, _ := ans.(string)
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return errors.New("enter a number or leave empty")
	}
	return nil
}

func promptErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errors.New("aborted")
	}
	return err
}
