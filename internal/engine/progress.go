package engine

import "context"

// ProgressFunc receives the number of rows generated so far. It may be called from
// several goroutines at once.
type ProgressFunc func(done, total int)

type progressKey struct{}

// WithProgress attaches a progress hook to ctx.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func progressFrom(ctx context.Context) ProgressFunc {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		return fn
	}
	return func(int, int) {}
}
