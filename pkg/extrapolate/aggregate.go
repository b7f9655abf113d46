package extrapolate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/engine"
)

// AggregateResult holds the pulse totals over a fixed number of presses.
type AggregateResult struct {
	Presses int64 `json:"presses"`
	Low     int64 `json:"low"`
	High    int64 `json:"high"`
	Product int64 `json:"product"`

	// CycleStart and CycleLength describe the detected state cycle. Both are
	// zero when the horizon was simulated in full.
	CycleStart  int64 `json:"cycle_start"`
	CycleLength int64 `json:"cycle_length"`
	Simulated   int64 `json:"simulated"`
}

// Aggregate presses the button cfg.Presses times from the initial state and
// sums the low and high pulses.
//
// With DetectCycles set, the full module state is fingerprinted after every
// press. Once a state repeats, the press sequence from then on is periodic,
// so the remaining presses are accounted for from prefix sums instead of
// being simulated. States are tracked for at most MaxPresses presses; past
// that the run continues without detection.
//
// Totals that do not fit in an int64 yield ErrHorizonExceeded.
func (r *Runner) Aggregate(ctx context.Context) (*AggregateResult, error) {
	total := r.cfg.Presses
	sim := r.newSimulator()

	// prefix[k] is the sum over the first k presses, kept while detecting.
	var prefix []engine.Counts
	var seen map[uint64]int64
	if r.cfg.DetectCycles {
		prefix = make([]engine.Counts, 1, min(total, r.cfg.MaxPresses, 1<<16)+1)
		seen = map[uint64]int64{sim.Fingerprint(): 0}
	}

	var sum engine.Counts
	for j := int64(1); j <= total; j++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		if sum, err = sum.Add(sim.Press()); err != nil {
			return nil, overflow(j, err)
		}
		r.tick(ctx, Progress{Phase: "aggregate", Press: j, Total: total})

		if seen == nil {
			continue
		}
		prefix = append(prefix, sum)

		fp := sim.Fingerprint()
		i, ok := seen[fp]
		if !ok {
			if j >= r.cfg.MaxPresses {
				r.log.Warn("no state cycle within press limit, simulating the rest",
					slog.Int64("max_presses", r.cfg.MaxPresses),
					slog.Int64("presses", total))
				seen, prefix = nil, nil
				continue
			}
			seen[fp] = j
			continue
		}

		res, err := extend(prefix, i, j, total)
		if err != nil {
			return nil, err
		}
		r.log.Debug("state cycle detected",
			slog.Int64("start", i),
			slog.Int64("length", j-i),
			slog.Int64("simulated", j))
		r.report(ctx, Progress{Phase: "done", Press: total, Total: total})
		return res, nil
	}

	product, err := sum.Product()
	if err != nil {
		return nil, overflow(total, err)
	}
	r.log.Debug("aggregate simulated in full", slog.Int64("presses", total))
	r.report(ctx, Progress{Phase: "done", Press: total, Total: total})

	return &AggregateResult{
		Presses:   total,
		Low:       sum.Low,
		High:      sum.High,
		Product:   product,
		Simulated: total,
	}, nil
}

// extend completes the horizon once the state after press j equals the
// state after press i.
func extend(prefix []engine.Counts, i, j, total int64) (*AggregateResult, error) {
	length := j - i
	cycle := prefix[j].Sub(prefix[i])
	rem := total - j

	repeated, err := cycle.Scale(rem / length)
	if err != nil {
		return nil, overflow(total, err)
	}
	sum, err := prefix[j].Add(repeated)
	if err != nil {
		return nil, overflow(total, err)
	}
	if sum, err = sum.Add(prefix[i+rem%length].Sub(prefix[i])); err != nil {
		return nil, overflow(total, err)
	}
	product, err := sum.Product()
	if err != nil {
		return nil, overflow(total, err)
	}

	return &AggregateResult{
		Presses:     total,
		Low:         sum.Low,
		High:        sum.High,
		Product:     product,
		CycleStart:  i,
		CycleLength: length,
		Simulated:   j,
	}, nil
}

func overflow(presses int64, err error) error {
	return fmt.Errorf("%w: totals over %d presses: %w", ErrHorizonExceeded, presses, err)
}
