package sink

import (
	"context"
	"fmt"

	"github.com/Sergiu-D/dataforge/internal/dialect"
)

// Clean empties tables in reverse order with the dialect's load hooks around the
// deletes. A table that cannot be emptied is logged and skipped.
func (s *Sink) Clean(ctx context.Context, tables []string) (int, error) {
	db, d, log := s.db, s.d, s.log

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	first := ""
	if len(tables) > 0 {
		first = tables[0]
	}
	if err := d.BeforeLoad(tx, first); err != nil {
		log.Warnw("before-load hook failed, continuing", "error", err)
		if _, ok := d.(*dialect.PostgresDialect); ok {
			tx.Rollback()
			if tx, err = db.BeginTx(ctx, nil); err != nil {
				return 0, fmt.Errorf("failed to restart transaction: %w", err)
			}
		}
	}

	cleaned := 0
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, d.TruncateQuery(tables[i])); err != nil {
			log.Warnw("failed to clean table, continuing", "table", tables[i], "error", err)
			continue
		}
		if _, ok := d.(*dialect.MSSQLDialect); ok {
			reseed := fmt.Sprintf("DBCC CHECKIDENT ('%s', RESEED, 0)", tables[i])
			if _, err := tx.ExecContext(ctx, reseed); err != nil {
				log.Debugw("identity reseed skipped", "table", tables[i], "error", err)
			}
		}
		cleaned++
	}

	if err := d.AfterLoad(tx, first); err != nil {
		log.Warnw("after-load hook failed", "error", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit cleaning transaction: %w", err)
	}
	tx = nil
	return cleaned, nil
}
