package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Sergiu-D/dataforge/internal/codec"
	"github.com/Sergiu-D/dataforge/internal/schema"
)

// DefaultWorkers is the size of the built-in module's worker pool.
const DefaultWorkers = 4

// Native is the built-in pluggable module backed by gofakeit.
type Native struct {
	workers int
	seed    int64
	log     *zap.SugaredLogger
}

// NewNative returns the built-in module. A seed of 0 seeds every worker from crypto/rand.
func NewNative(workers int, seed int64, log *zap.SugaredLogger) *Native {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Native{workers: workers, seed: seed, log: log}
}

// AvailableTypes returns the built-in catalog as JSON.
func (n *Native) AvailableTypes(ctx context.Context) ([]byte, error) {
	return json.Marshal(schema.BuiltinTypes())
}

// GenerateData decodes an exchange payload and returns quoted CSV.
func (n *Native) GenerateData(ctx context.Context, payload []byte) ([]byte, error) {
	var p schema.Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	s, err := schema.FromPayload(p)
	if err != nil {
		return nil, err
	}

	rows, err := n.generateRows(ctx, s)
	if err != nil {
		return nil, err
	}

	out, err := codec.EncodeQuoted(s.Header(), rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rows: %w", err)
	}
	return []byte(out), nil
}

// generateRows splits the rows into contiguous chunks, one per worker. Each worker owns
// its faker and writes only its own slice range.
func (n *Native) generateRows(ctx context.Context, s schema.Schema) ([][]string, error) {
	total := max(s.Rows, 0)
	rows := make([][]string, total)
	if total == 0 {
		return rows, nil
	}

	workers := min(n.workers, total)
	per, rem := total/workers, total%workers
	progress := progressFrom(ctx)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	start := 0
	for w := 0; w < workers; w++ {
		count := per
		if w < rem {
			count++
		}
		from, to := start, start+count
		start = to

		seed := n.seed
		if seed != 0 {
			seed += int64(w)
		}

		g.Go(func() error {
			faker := gofakeit.New(seed)
			for i := from; i < to; i++ {
				if (i-from)%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				row := make([]string, len(s.Fields))
				for j, field := range s.Fields {
					row[j] = fakeValue(faker, field, i)
				}
				rows[i] = row

				if d := done.Add(1); d%100 == 0 || int(d) == total {
					progress(int(d), total)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	n.log.Debugw("native rows generated", "rows", total, "workers", workers)
	return rows, nil
}
