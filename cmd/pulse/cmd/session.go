package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/OpenTraceLab/OpenTracePulse/internal/cache"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/extrapolate"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/metrics"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/netlist"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/network"
)

// session bundles what a query command needs: the loaded network, the
// optional cache and metrics, and a way to tear them down.
type session struct {
	path    string
	digest  string
	net     *network.Network
	cache   *cache.Cache
	metrics *metrics.Metrics
}

func openSession(path string) (*session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	net, err := netlist.LoadString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	s := &session{
		path:   path,
		digest: cache.Digest(data),
		net:    net,
	}

	if verbose {
		fmt.Printf("Loaded %s: %d modules, %d wires, %d sinks\n",
			path, len(net.Names()), net.EdgeCount(), len(net.Sinks()))
	}

	if settings.Cache.Dir != "" {
		cfg := cache.Config{Dir: settings.Cache.Dir, TTL: settings.Cache.TTL}
		if verbose {
			cfg.Logger = logger
		}
		c, err := cache.Open(cfg)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}

	if settings.Metrics.File != "" {
		s.metrics = metrics.New(nil)
	}
	return s, nil
}

func (s *session) runner(cfg *extrapolate.Config, progress chan<- extrapolate.Progress) (*extrapolate.Runner, error) {
	opts := []extrapolate.Option{extrapolate.WithLogger(logger)}
	if s.metrics != nil {
		opts = append(opts, extrapolate.WithRecorder(s.metrics))
	}
	if progress != nil {
		opts = append(opts, extrapolate.WithProgress(progress))
	}
	return extrapolate.NewRunner(s.net, cfg, opts...)
}

// lookup fills v from the cache. It reports false on a miss or when caching
// is disabled. Entries that no longer decode are dropped.
func (s *session) lookup(key string, v any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(key, v)
	if err != nil {
		logger.Warn("cache lookup failed, dropping entry", "key", key, "error", err)
		if err := s.cache.Delete(key); err != nil {
			logger.Warn("cache delete failed", "key", key, "error", err)
		}
		return false
	}
	return ok
}

func (s *session) store(key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(key, v); err != nil {
		logger.Warn("cache store failed", "key", key, "error", err)
	}
}

// finish records the run outcome and flushes metrics and cache.
func (s *session) finish(query string, status string) error {
	var firstErr error
	if s.metrics != nil {
		s.metrics.RecordRun(query, status)
		if err := s.metrics.WriteTextfile(settings.Metrics.File); err != nil {
			firstErr = err
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(parent, timeout)
	}
	return context.WithCancel(parent)
}

// startProgress draws a progress bar on stderr when it is a terminal. The
// returned stop function closes the channel and waits for the display.
func startProgress() (chan<- extrapolate.Progress, func()) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil, func() {}
	}

	ch := make(chan extrapolate.Progress, 16)
	done := make(chan struct{})
	go func() {
		displayProgress(ch)
		close(done)
	}()
	return ch, func() {
		close(ch)
		<-done
	}
}

// displayProgress shows real-time progress updates
func displayProgress(progressCh <-chan extrapolate.Progress) {
	lastPercent := -1
	drawn := false

	for p := range progressCh {
		if p.Phase == "done" {
			continue
		}

		percent := 0
		if p.Total > 0 {
			percent = int(p.Press * 100 / p.Total)
		}
		if percent > 100 {
			percent = 100
		}
		if percent == lastPercent {
			continue
		}

		barWidth := 40
		filled := (percent * barWidth) / 100
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

		label := p.Phase
		if p.Watcher != "" {
			label += " " + p.Watcher
		}
		fmt.Fprintf(os.Stderr, "\r[%s] %3d%% | Press %d/%d | %s", bar, percent, p.Press, p.Total, label)
		lastPercent = percent
		drawn = true
	}

	if drawn {
		fmt.Fprintf(os.Stderr, "\r%-100s\r", "")
	}
}

func writeReport(report *extrapolate.Report, path string) error {
	data, err := report.ExportJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Printf("\n✓ Report saved to: %s\n", path)
	return nil
}
