package extrapolate

import "context"

// Progress reports how far a query has come.
type Progress struct {
	Phase   string // "aggregate", "watch", "direct", "done"
	Watcher string // Module being watched, empty outside the watch phase
	Press   int64  // Presses delivered so far in this phase
	Total   int64  // Press budget of this phase
}

// progressEvery throttles per-press updates.
const progressEvery = 1 << 12

func (r *Runner) report(ctx context.Context, p Progress) {
	if r.progress == nil {
		return
	}
	select {
	case r.progress <- p:
	case <-ctx.Done():
	}
}

func (r *Runner) tick(ctx context.Context, p Progress) {
	if p.Press%progressEvery == 0 {
		r.report(ctx, p)
	}
}
