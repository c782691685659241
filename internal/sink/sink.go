// Package sink loads a generated dataset into a database table.
package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Sergiu-D/dataforge/internal/dialect"
)

// Result statuses.
const (
	StatusOK          = "OK"
	StatusMissingData = "MISSING DATA"
)

// Options describe the target table.
type Options struct {
	Table  string `mapstructure:"table"`
	Create bool   `mapstructure:"create"`
	Clean  bool   `mapstructure:"clean"`
}

// Result reports how many rows reached the table.
type Result struct {
	Table    string
	Target   int
	Actual   int
	Status   string
	ErrorMsg string
}

// Sink writes datasets through one database handle and dialect.
type Sink struct {
	db  *sql.DB
	d   dialect.Dialect
	log *zap.SugaredLogger
}

func New(db *sql.DB, d dialect.Dialect, log *zap.SugaredLogger) *Sink {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Sink{db: db, d: d, log: log.With("dialect", d.Name())}
}

// Load inserts rows into opts.Table inside one transaction. Every column is written as
// text, and short rows are padded with empty strings. onProgress is called after each
// successful insert.
func (s *Sink) Load(ctx context.Context, opts Options, header []string, rows [][]string, onProgress func()) (Result, error) {
	db, d := s.db, s.d
	if opts.Table == "" {
		return Result{}, errors.New("sink: table name is required")
	}
	if len(header) == 0 {
		return Result{}, errors.New("sink: dataset has no columns")
	}
	log := s.log.With("table", opts.Table)

	if opts.Create {
		if _, err := db.ExecContext(ctx, d.CreateTableQuery(opts.Table, header)); err != nil {
			return Result{}, fmt.Errorf("failed to create table %s: %w", opts.Table, err)
		}
	}

	initial := 0
	if !opts.Clean {
		if err := db.QueryRowContext(ctx, d.CountQuery(opts.Table)).Scan(&initial); err != nil {
			return Result{}, fmt.Errorf("failed to count rows of %s: %w", opts.Table, err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	if err := d.BeforeLoad(tx, opts.Table); err != nil {
		log.Warnw("before-load hook failed, continuing", "error", err)
		if _, ok := d.(*dialect.PostgresDialect); ok {
			// the failed statement aborted the transaction
			tx.Rollback()
			if tx, err = db.BeginTx(ctx, nil); err != nil {
				return Result{}, fmt.Errorf("failed to restart transaction: %w", err)
			}
		}
	}

	if opts.Clean {
		if _, err := tx.ExecContext(ctx, d.TruncateQuery(opts.Table)); err != nil {
			return Result{}, fmt.Errorf("failed to clean %s: %w", opts.Table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, d.InsertQuery(opts.Table, header))
	if err != nil {
		return Result{}, fmt.Errorf("failed to prepare insert into %s: %w", opts.Table, err)
	}
	defer stmt.Close()

	inserted, failed := 0, 0
	var firstErr error
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if _, err := stmt.ExecContext(ctx, rowArgs(row, len(header))...); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			if failed <= 3 {
				log.Debugw("insert failed", "row", i+1, "error", err)
			}
			continue
		}
		inserted++
		if onProgress != nil {
			onProgress()
		}
	}

	if err := d.AfterLoad(tx, opts.Table); err != nil {
		log.Warnw("after-load hook failed", "error", err)
	}
	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("failed to commit load of %s: %w", opts.Table, err)
	}
	tx = nil

	var final int
	if err := db.QueryRowContext(ctx, d.CountQuery(opts.Table)).Scan(&final); err != nil {
		return Result{}, fmt.Errorf("failed to count rows of %s: %w", opts.Table, err)
	}

	res := Result{
		Table:  opts.Table,
		Target: len(rows),
		Actual: final - initial,
		Status: StatusOK,
	}
	if res.Actual < res.Target {
		res.Status = StatusMissingData
		switch {
		case inserted == 0 && firstErr != nil:
			res.ErrorMsg = fmt.Sprintf("failed to insert any rows: %v", firstErr)
		case failed > 0:
			res.ErrorMsg = fmt.Sprintf("only inserted %d out of %d (%d failed, first error: %v)", inserted, len(rows), failed, firstErr)
		}
	}
	log.Infow("dataset loaded", "inserted", inserted, "failed", failed)
	return res, nil
}

// Verify re-counts each result's table and rewrites its status.
func (s *Sink) Verify(ctx context.Context, results []Result) []Result {
	db, d := s.db, s.d
	verified := make([]Result, 0, len(results))
	for _, res := range results {
		var current int
		err := db.QueryRowContext(ctx, d.CountQuery(res.Table)).Scan(&current)

		status := StatusOK
		if err != nil {
			status = fmt.Sprintf("VERIFY_FAIL: %v", err)
		} else if current < res.Target {
			status = fmt.Sprintf("PARTIAL: %d/%d", current, res.Target)
		}

		res.Actual = current
		res.Status = status
		verified = append(verified, res)
	}
	return verified
}

func rowArgs(row []string, width int) []any {
	args := make([]any, width)
	for i := range args {
		if i < len(row) {
			args[i] = row[i]
		} else {
			args[i] = ""
		}
	}
	return args
}
