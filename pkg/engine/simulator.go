package engine

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/cespare/xxhash/v2"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/module"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/network"
)

// PulseHook observes every pulse as it is processed.
type PulseHook func(p module.Pulse)

// Recorder receives per-press pulse totals.
type Recorder interface {
	RecordPress(low, high int64)
}

// ErrOverflow means a pulse count no longer fits in an int64.
var ErrOverflow = errors.New("engine: count overflows int64")

// Counts is the number of low and high pulses processed.
type Counts struct {
	Low  int64
	High int64
}

// Add returns the element-wise sum.
func (c Counts) Add(o Counts) (Counts, error) {
	low, ok := add64(c.Low, o.Low)
	if !ok {
		return Counts{}, fmt.Errorf("%w: %d + %d low pulses", ErrOverflow, c.Low, o.Low)
	}
	high, ok := add64(c.High, o.High)
	if !ok {
		return Counts{}, fmt.Errorf("%w: %d + %d high pulses", ErrOverflow, c.High, o.High)
	}
	return Counts{Low: low, High: high}, nil
}

// Sub returns the element-wise difference. o must not exceed c.
func (c Counts) Sub(o Counts) Counts {
	return Counts{Low: c.Low - o.Low, High: c.High - o.High}
}

// Scale multiplies both counts by k.
func (c Counts) Scale(k int64) (Counts, error) {
	low, ok := mul64(c.Low, k)
	if !ok {
		return Counts{}, fmt.Errorf("%w: %d low pulses times %d", ErrOverflow, c.Low, k)
	}
	high, ok := mul64(c.High, k)
	if !ok {
		return Counts{}, fmt.Errorf("%w: %d high pulses times %d", ErrOverflow, c.High, k)
	}
	return Counts{Low: low, High: high}, nil
}

// Product returns Low*High.
func (c Counts) Product() (int64, error) {
	p, ok := mul64(c.Low, c.High)
	if !ok {
		return 0, fmt.Errorf("%w: %d low times %d high pulses", ErrOverflow, c.Low, c.High)
	}
	return p, nil
}

// add64 and mul64 operate on non-negative counts.
func add64(a, b int64) (int64, bool) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 || sum > math.MaxInt64 {
		return 0, false
	}
	return int64(sum), true
}

func mul64(a, b int64) (int64, bool) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

// Simulator owns the module state of one network and delivers button presses.
// It is not safe for concurrent use; use Clone to run presses in parallel.
type Simulator struct {
	net     *network.Network
	modules map[string]*module.Module
	order   []*module.Module

	// OnPulse, if set, is called for every processed pulse in delivery order.
	OnPulse PulseHook
	// Recorder, if set, receives the totals of every press.
	Recorder Recorder

	presses int64
	queue   []module.Pulse
	buf     []byte
}

// New creates a simulator with every module in its initial state.
func New(net *network.Network) *Simulator {
	s := &Simulator{
		net:     net,
		modules: net.NewModules(),
	}
	s.index()
	return s
}

func (s *Simulator) index() {
	names := s.net.Names()
	s.order = make([]*module.Module, len(names))
	for i, name := range names {
		s.order[i] = s.modules[name]
	}
}

// Network returns the topology being simulated.
func (s *Simulator) Network() *network.Network {
	return s.net
}

// Press delivers one low pulse from the button to the broadcaster and
// processes the resulting pulses in FIFO order until none remain. The seed
// pulse is included in the returned counts.
func (s *Simulator) Press() Counts {
	var counts Counts

	s.queue = append(s.queue[:0], module.Pulse{From: network.Button, Level: module.Low, To: network.Entry})
	for head := 0; head < len(s.queue); head++ {
		p := s.queue[head]

		if p.Level == module.High {
			counts.High++
		} else {
			counts.Low++
		}
		if s.OnPulse != nil {
			s.OnPulse(p)
		}

		m, ok := s.modules[p.To]
		if !ok {
			continue // sink
		}
		out, emit := m.Receive(p.From, p.Level)
		if !emit {
			continue
		}
		s.queue = m.AppendPulses(s.queue, out)
	}

	s.presses++
	if s.Recorder != nil {
		s.Recorder.RecordPress(counts.Low, counts.High)
	}
	return counts
}

// Presses returns how many presses have been delivered since creation or reset.
func (s *Simulator) Presses() int64 {
	return s.presses
}

// Module returns the live module with the given name.
func (s *Simulator) Module(name string) (*module.Module, bool) {
	m, ok := s.modules[name]
	return m, ok
}

// Reset returns every module to its initial state.
func (s *Simulator) Reset() {
	for _, m := range s.order {
		m.Reset()
	}
	s.presses = 0
}

// Clone returns an independent simulator with identical state. Hooks and the
// recorder are not copied.
func (s *Simulator) Clone() *Simulator {
	c := &Simulator{
		net:     s.net,
		modules: make(map[string]*module.Module, len(s.modules)),
		presses: s.presses,
	}
	for name, m := range s.modules {
		c.modules[name] = m.Clone()
	}
	c.index()
	return c
}

// Fingerprint hashes the complete module state. Equal states always produce
// equal fingerprints.
func (s *Simulator) Fingerprint() uint64 {
	s.buf = s.buf[:0]
	for _, m := range s.order {
		s.buf = m.AppendState(s.buf)
	}
	return xxhash.Sum64(s.buf)
}
