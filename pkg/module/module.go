package module

import (
	"fmt"
	"sort"
)

// Level is the value carried by a pulse.
type Level uint8

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	switch l {
	case Low:
		return "low"
	case High:
		return "high"
	}
	return fmt.Sprintf("Level(%d)", l)
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	switch string(b) {
	case "low":
		*l = Low
	case "high":
		*l = High
	default:
		return fmt.Errorf("module: unknown level %q", b)
	}
	return nil
}

// Kind identifies one of the three module behaviors. The set is closed.
type Kind uint8

const (
	Broadcast Kind = iota
	FlipFlop
	Conjunction
)

var kindNames = map[Kind]string{
	Broadcast:   "broadcast",
	FlipFlop:    "flip-flop",
	Conjunction: "conjunction",
}

var kindPrefixes = map[Kind]string{
	Broadcast:   "",
	FlipFlop:    "%",
	Conjunction: "&",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Prefix returns the declaration prefix for the kind ("" for broadcast).
func (k Kind) Prefix() string {
	return kindPrefixes[k]
}

// KindFromPrefix maps a declaration prefix back to its kind.
func KindFromPrefix(prefix string) (Kind, error) {
	for kind, p := range kindPrefixes {
		if p == prefix {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("module: unknown prefix %q", prefix)
}

// Pulse is a single event travelling along a wire.
type Pulse struct {
	From  string
	Level Level
	To    string
}

func (p Pulse) String() string {
	return fmt.Sprintf("%s -%s-> %s", p.From, p.Level, p.To)
}

// Module is one node of a pulse network. Its outputs are fixed when it is
// created; only the flip-flop bit and the conjunction memory change afterwards.
type Module struct {
	name    string
	kind    Kind
	outputs []string

	// flip-flop
	on bool

	// conjunction: memory[i] is the last level received from inputs[i]
	inputs []string
	index  map[string]int
	memory []Level
	highs  int
}

// NewBroadcast creates a stateless module that repeats every pulse.
func NewBroadcast(name string, outputs []string) *Module {
	return newModule(name, Broadcast, outputs)
}

// NewFlipFlop creates a flip-flop that starts off.
func NewFlipFlop(name string, outputs []string) *Module {
	return newModule(name, FlipFlop, outputs)
}

// NewConjunction creates a conjunction remembering a low level for every
// listed input. Duplicate input names are collapsed.
func NewConjunction(name string, outputs, inputs []string) *Module {
	m := newModule(name, Conjunction, outputs)

	sorted := append([]string(nil), inputs...)
	sort.Strings(sorted)
	m.index = make(map[string]int, len(sorted))
	for _, in := range sorted {
		if _, dup := m.index[in]; dup {
			continue
		}
		m.index[in] = len(m.inputs)
		m.inputs = append(m.inputs, in)
	}
	m.memory = make([]Level, len(m.inputs))
	return m
}

func newModule(name string, kind Kind, outputs []string) *Module {
	return &Module{
		name:    name,
		kind:    kind,
		outputs: append([]string(nil), outputs...),
	}
}

func (m *Module) Name() string { return m.name }
func (m *Module) Kind() Kind   { return m.kind }

// Outputs returns a copy of the destination list in declaration order.
func (m *Module) Outputs() []string {
	return append([]string(nil), m.outputs...)
}

// AppendPulses appends one pulse of the given level to every output, in
// declaration order.
func (m *Module) AppendPulses(dst []Pulse, level Level) []Pulse {
	for _, out := range m.outputs {
		dst = append(dst, Pulse{From: m.name, Level: level, To: out})
	}
	return dst
}

// Inputs returns the remembered senders of a conjunction in sorted order.
func (m *Module) Inputs() []string {
	return append([]string(nil), m.inputs...)
}

// On reports the flip-flop bit. It is always false for other kinds.
func (m *Module) On() bool {
	return m.on
}

// Memory returns the last level a conjunction received from the given sender.
func (m *Module) Memory(from string) (Level, bool) {
	i, ok := m.index[from]
	if !ok {
		return Low, false
	}
	return m.memory[i], true
}

// Receive delivers a pulse and returns the level the module sends to all of
// its outputs. The boolean is false when the module stays silent, which only
// happens for a flip-flop receiving a high pulse.
//
// A conjunction must only receive from senders it was built with; anything
// else means the network was assembled incorrectly and Receive panics.
func (m *Module) Receive(from string, level Level) (Level, bool) {
	switch m.kind {
	case Broadcast:
		return level, true

	case FlipFlop:
		if level == High {
			return Low, false
		}
		m.on = !m.on
		if m.on {
			return High, true
		}
		return Low, true

	case Conjunction:
		i, ok := m.index[from]
		if !ok {
			panic(fmt.Sprintf("module: conjunction %q has no input %q", m.name, from))
		}
		if prev := m.memory[i]; prev != level {
			if level == High {
				m.highs++
			} else {
				m.highs--
			}
			m.memory[i] = level
		}
		if m.highs == len(m.memory) {
			return Low, true
		}
		return High, true
	}
	panic(fmt.Sprintf("module: unhandled kind %d", m.kind))
}

// Reset returns the module to its initial state.
func (m *Module) Reset() {
	m.on = false
	for i := range m.memory {
		m.memory[i] = Low
	}
	m.highs = 0
}

// Clone returns an independent copy including the current state. The input
// index is shared since it never changes after construction.
func (m *Module) Clone() *Module {
	c := *m
	c.memory = append([]Level(nil), m.memory...)
	return &c
}

// AppendState appends a stable encoding of the mutable state to b.
func (m *Module) AppendState(b []byte) []byte {
	switch m.kind {
	case FlipFlop:
		if m.on {
			return append(b, 1)
		}
		return append(b, 0)
	case Conjunction:
		for _, l := range m.memory {
			b = append(b, byte(l))
		}
	}
	return b
}
