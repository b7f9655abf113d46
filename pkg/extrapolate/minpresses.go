package extrapolate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/engine"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/module"
)

// WatcherPeriod records when a watcher emitted the watched level.
type WatcherPeriod struct {
	Name   string `json:"name"`
	Period int64  `json:"period"`           // first press, taken as the period
	Second int64  `json:"second,omitempty"` // second press, zero when not verified
}

// MinResult is the answer to MinPresses.
type MinResult struct {
	Target    string          `json:"target"`
	Presses   int64           `json:"presses"`
	Plan      *WatchPlan      `json:"plan,omitempty"`
	Watchers  []WatcherPeriod `json:"watchers,omitempty"`
	Fallback  bool            `json:"fallback"`            // answered by direct simulation
	Confirmed bool            `json:"confirmed,omitempty"` // LCM answer reproduced by direct simulation
}

// MinPresses returns the fewest presses after which target receives a low
// pulse, starting from the initial state.
//
// When Plan finds watchers, each one is pressed on its own copy of the
// initial state until it emits the watched level, and the answer is the LCM
// of those press counts. That only holds because the watchers live in
// independent sub-networks that each return to their starting state when
// they fire; VerifyPeriods checks the second half of that by requiring the
// next firing at exactly twice the first. An answer within MaxPresses is
// then replayed on a fresh simulator, and the target must first receive its
// low pulse at exactly that press.
func (r *Runner) MinPresses(ctx context.Context, target string) (*MinResult, error) {
	plan, err := Plan(r.net, target)
	if err != nil {
		if errors.Is(err, ErrUnknownTarget) || !r.cfg.AllowFallback {
			return nil, err
		}
		r.log.Warn("falling back to direct simulation",
			slog.String("target", target),
			slog.String("reason", err.Error()),
			slog.Int64("max_presses", r.cfg.MaxPresses))
		return r.direct(ctx, target)
	}

	r.log.Info("watch plan",
		slog.String("target", target),
		slog.String("hub", plan.Hub),
		slog.Any("watchers", plan.Watchers),
		slog.String("level", plan.Level.String()))

	periods, err := r.watchAll(ctx, plan)
	if err != nil {
		return nil, err
	}

	values := make([]int64, len(periods))
	for i, p := range periods {
		values[i] = p.Period
	}
	answer, err := LCM(values...)
	if err != nil {
		return nil, err
	}

	res := &MinResult{
		Target:   target,
		Presses:  answer,
		Plan:     plan,
		Watchers: periods,
	}
	if answer <= r.cfg.MaxPresses {
		if err := r.confirm(ctx, target, answer); err != nil {
			return nil, err
		}
		res.Confirmed = true
	}
	r.report(ctx, Progress{Phase: "done", Press: answer, Total: answer})
	return res, nil
}

// confirm replays answer presses and checks that the first low pulse to
// target arrives on the last of them.
func (r *Runner) confirm(ctx context.Context, target string, answer int64) error {
	press, err := r.firstLow(ctx, "confirm", target, answer)
	if err != nil {
		return err
	}
	if press == 0 {
		return fmt.Errorf("%w: watchers predict %d presses but %s received no low pulse by then", ErrPrecondition, answer, target)
	}
	if press != answer {
		return fmt.Errorf("%w: %s first received a low pulse at press %d, watchers predict %d", ErrPrecondition, target, press, answer)
	}
	r.log.Debug("watcher answer confirmed", slog.String("target", target), slog.Int64("presses", answer))
	return nil
}

func (r *Runner) watchAll(ctx context.Context, plan *WatchPlan) ([]WatcherPeriod, error) {
	base := r.newSimulator()
	periods := make([]WatcherPeriod, len(plan.Watchers))

	if !r.cfg.Parallel {
		for i, w := range plan.Watchers {
			p, err := r.watch(ctx, base.Clone(), w, plan.Level)
			if err != nil {
				return nil, err
			}
			periods[i] = p
		}
		return periods, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, w := range plan.Watchers {
		sim := base.Clone()
		g.Go(func() error {
			p, err := r.watch(gctx, sim, w, plan.Level)
			if err != nil {
				return err
			}
			periods[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return periods, nil
}

// watch presses sim until watcher emits level, and with VerifyPeriods once
// more until it emits it again.
func (r *Runner) watch(ctx context.Context, sim *engine.Simulator, watcher string, level module.Level) (WatcherPeriod, error) {
	result := WatcherPeriod{Name: watcher}

	fired := false
	sim.OnPulse = func(p module.Pulse) {
		if p.From == watcher && p.Level == level {
			fired = true
		}
	}
	sim.Recorder = r.recorder

	limit := r.cfg.MaxPresses
	for press := int64(1); press <= limit; press++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fired = false
		sim.Press()
		r.tick(ctx, Progress{Phase: "watch", Watcher: watcher, Press: press, Total: limit})

		if result.Period != 0 && r.cfg.VerifyPeriods && press > 2*result.Period {
			return result, fmt.Errorf("%w: %s did not emit %s again at press %d", ErrPrecondition, watcher, level, 2*result.Period)
		}
		if !fired {
			continue
		}

		if result.Period == 0 {
			result.Period = press
			r.log.Debug("watcher fired",
				slog.String("watcher", watcher),
				slog.Int64("press", press))
			r.recordPeriod(watcher, press)
			if !r.cfg.VerifyPeriods {
				return result, nil
			}
			continue
		}

		if press != 2*result.Period {
			return result, fmt.Errorf("%w: %s emitted %s at presses %d and %d, not periodic", ErrPrecondition, watcher, level, result.Period, press)
		}
		result.Second = press
		return result, nil
	}

	if result.Period == 0 {
		return result, fmt.Errorf("%w: %s never emitted %s within %d presses", ErrPrecondition, watcher, level, limit)
	}
	return result, fmt.Errorf("%w: %s did not emit %s again within %d presses", ErrPrecondition, watcher, level, limit)
}

// direct presses until target receives a low pulse.
func (r *Runner) direct(ctx context.Context, target string) (*MinResult, error) {
	limit := r.cfg.MaxPresses
	press, err := r.firstLow(ctx, "direct", target, limit)
	if err != nil {
		return nil, err
	}
	if press == 0 {
		return nil, fmt.Errorf("%w: %s received no low pulse within %d presses", ErrHorizonExceeded, target, limit)
	}
	r.report(ctx, Progress{Phase: "done", Press: press, Total: limit})
	return &MinResult{
		Target:   target,
		Presses:  press,
		Fallback: true,
	}, nil
}

// firstLow presses a fresh simulator until target receives a low pulse and
// returns that press. It returns zero when limit presses pass first.
func (r *Runner) firstLow(ctx context.Context, phase, target string, limit int64) (int64, error) {
	sim := r.newSimulator()

	hit := false
	sim.OnPulse = func(p module.Pulse) {
		if p.To == target && p.Level == module.Low {
			hit = true
		}
	}

	for press := int64(1); press <= limit; press++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		sim.Press()
		r.tick(ctx, Progress{Phase: phase, Press: press, Total: limit})
		if hit {
			return press, nil
		}
	}
	return 0, nil
}
