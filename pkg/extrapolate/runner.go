package extrapolate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/engine"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/network"
)

var (
	// ErrPrecondition means the network does not have the shape the watcher
	// method relies on, or a watcher did not behave periodically.
	ErrPrecondition = errors.New("extrapolate: precondition not met")
	// ErrHorizonExceeded means a run hit MaxPresses without an answer.
	ErrHorizonExceeded = errors.New("extrapolate: press limit exceeded")
	// ErrUnknownTarget means the target is neither declared nor a sink.
	ErrUnknownTarget = errors.New("extrapolate: unknown target")
)

// PeriodRecorder is implemented by recorders that also track watcher periods.
type PeriodRecorder interface {
	RecordPeriod(watcher string, period int64)
}

// Runner answers queries about one network. Each query starts from the
// initial state; a Runner holds no simulation state between calls.
type Runner struct {
	net      *network.Network
	cfg      Config
	log      *slog.Logger
	progress chan<- Progress
	recorder engine.Recorder
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithProgress sets a channel receiving progress updates. The caller owns
// the channel and must keep draining it until the query returns.
func WithProgress(ch chan<- Progress) Option {
	return func(r *Runner) {
		r.progress = ch
	}
}

// WithRecorder attaches a recorder to every simulator the runner creates.
func WithRecorder(rec engine.Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// NewRunner validates cfg and returns a runner for net. A nil cfg means
// DefaultConfig.
func NewRunner(net *network.Network, cfg *Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if err := c.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		net: net,
		cfg: c,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the validated configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

func (r *Runner) newSimulator() *engine.Simulator {
	sim := engine.New(r.net)
	sim.Recorder = r.recorder
	return sim
}

func (r *Runner) recordPeriod(watcher string, period int64) {
	if pr, ok := r.recorder.(PeriodRecorder); ok {
		pr.RecordPeriod(watcher, period)
	}
}

func checkTarget(net *network.Network, target string) error {
	if !net.Declared(target) && !net.IsSink(target) {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}
	return nil
}
