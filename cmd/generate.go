package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sergiu-D/dataforge/internal/codec"
	"github.com/Sergiu-D/dataforge/internal/download"
	"github.com/Sergiu-D/dataforge/internal/engine"
	"github.com/Sergiu-D/dataforge/internal/schema"
	"github.com/Sergiu-D/dataforge/internal/sink"
)

var (
	schemaPath string
	toSink     bool
	noProgress bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a dataset from a schema file",
	Example: `  dataforge generate -s users.yaml -n 500
  dataforge generate -s users.yaml -f json > users.json
  dataforge generate -s users.yaml --download csv,json --out ./out
  dataforge generate -s users.yaml --sink --table users --create`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sc, err := schema.LoadFile(afero.NewOsFs(), schemaPath)
		if err != nil {
			return err
		}

		// Flag > schema file > config.
		rows := cfg.Generate.Rows
		if sc.Rows > 0 && !cmd.Flags().Changed("rows") {
			rows = sc.Rows
		}

		stderr := cmd.ErrOrStderr()
		format := strings.ToLower(cfg.Generate.Format)
		showBar := !noProgress && format == "table"

		sess, _, err := newSession()
		if err != nil {
			return err
		}

		start := time.Now()
		genCtx := ctx
		if showBar {
			uiprogress.Start()
			bar := uiprogress.AddBar(schema.ClampRows(rows)).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return "Generating: "
			})
			genCtx = engine.WithProgress(ctx, func(done, total int) {
				_ = bar.Set(done)
			})
		}

		res, err := sess.Generate(genCtx, sc.Fields, rows)
		if showBar {
			uiprogress.Stop()
		}
		if err != nil {
			return err
		}

		for _, w := range res.Warnings {
			fmt.Fprintf(stderr, "⚠️  %s\n", w)
		}
		logger.Infow("dataset generated", "rows", res.Rows, "elapsed", time.Since(start))

		if err := render(cmd.OutOrStdout(), format, res.Dataset, cfg.Generate.PreviewRows); err != nil {
			return err
		}

		saver := download.NewFileSaver(afero.NewOsFs(), cfg.Generate.OutputDir)
		for _, f := range cfg.Generate.Download {
			a, err := download.Build(f, res.Dataset)
			if err != nil {
				return err
			}
			path, err := saver.Save(ctx, a)
			if err != nil {
				return err
			}
			fmt.Fprintf(stderr, "💾 Saved %s\n", path)
		}

		if toSink {
			return loadIntoDatabase(ctx, stderr, res.Dataset)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.StringVarP(&schemaPath, "schema", "s", "", "schema file (.yaml, .yml or .json)")
	flags.IntP("rows", "n", 0, "number of rows to generate (overrides schema file and config)")
	flags.StringP("format", "f", "", "stdout view: table, csv or json")
	flags.Int("preview", 0, "rows shown in the table view")
	flags.StringSlice("download", nil, "also save the dataset as files (csv,json)")
	flags.String("out", "", "directory for --download files")
	flags.BoolVar(&noProgress, "no-progress", false, "hide the progress bar")

	flags.BoolVar(&toSink, "sink", false, "load the dataset into the configured database")
	flags.String("table", "", "target table for --sink")
	flags.Bool("create", false, "create the target table when it does not exist")
	flags.Bool("clean", false, "empty the target table before loading")

	generateCmd.MarkFlagRequired("schema")

	viper.BindPFlag("generate.rows", flags.Lookup("rows"))
	viper.BindPFlag("generate.format", flags.Lookup("format"))
	viper.BindPFlag("generate.preview_rows", flags.Lookup("preview"))
	viper.BindPFlag("generate.download", flags.Lookup("download"))
	viper.BindPFlag("generate.output_dir", flags.Lookup("out"))
	viper.BindPFlag("sink.table", flags.Lookup("table"))
	viper.BindPFlag("sink.create", flags.Lookup("create"))
	viper.BindPFlag("sink.clean", flags.Lookup("clean"))
}

// render writes the dataset to w in one of the stdout views.
func render(w io.Writer, format, dataset string, preview int) error {
	switch format {
	case "csv":
		_, err := fmt.Fprintln(w, dataset)
		return err
	case "json":
		data, err := codec.MarshalRecords(codec.ToRecords(codec.Decode(dataset)))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "table", "":
		header, rows := codec.Decode(dataset)
		table, err := codec.RenderTable(header, rows, preview)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, table)
		return err
	default:
		return fmt.Errorf("unknown format %q (want table, csv or json)", format)
	}
}

func loadIntoDatabase(ctx context.Context, out io.Writer, dataset string) error {
	if cfg.Sink.Table == "" {
		return errors.New("--table is required with --sink")
	}

	db, d, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	header, rows := codec.Decode(dataset)
	start := time.Now()

	uiprogress.Start()
	bar := uiprogress.AddBar(len(rows)).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return "Loading: "
	})

	sk := sink.New(db, d, logger)
	res, err := sk.Load(ctx, cfg.Sink, header, rows, func() {
		bar.Incr()
	})

	uiprogress.Stop()

	if err != nil {
		return err
	}

	results := sk.Verify(ctx, []sink.Result{res})

	fmt.Fprintln(out, "\n📊 Summary Report:")
	for _, r := range results {
		icon := "✓"
		if r.Status != sink.StatusOK {
			icon = "!"
		}
		fmt.Fprintf(out, "[%s] %-20s : %d rows (Target: %d) - %s\n", icon, r.Table, r.Actual, r.Target, r.Status)
		if r.ErrorMsg != "" {
			fmt.Fprintf(out, "    └ Error: %s\n", r.ErrorMsg)
		}
	}
	fmt.Fprintln(out, "--------------------------------------------------")
	logger.Infow("load done", "table", cfg.Sink.Table, "elapsed", time.Since(start))
	return nil
}
