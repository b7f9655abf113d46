package network

import (
	"errors"
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/module"
)

const (
	// Entry is the module every button press is delivered to.
	Entry = "broadcaster"
	// Button is the sender name of the seed pulse.
	Button = "button"
)

var (
	ErrMissingEntry    = errors.New("network: no broadcaster module")
	ErrUnknownKind     = errors.New("network: unknown module kind")
	ErrDuplicateModule = errors.New("network: duplicate module")
	ErrEmptyName       = errors.New("network: empty module name")
)

// Declaration is one line of network input.
type Declaration struct {
	Name    string
	Kind    module.Kind
	Outputs []string
	Line    int // source line, 0 when unknown
}

// Network is the immutable topology of a pulse network. Destinations that
// are never declared are sinks.
type Network struct {
	names   []string
	decls   map[string]Declaration
	inputs  map[string][]string
	sinks   []string
	edges   int
	ordered []Declaration
}

// Build assembles a network in two passes: the first records every declared
// module and its outputs, the second inverts the edges so that every
// conjunction knows its full input set before simulation begins.
func Build(decls []Declaration) (*Network, error) {
	n := &Network{
		decls:  make(map[string]Declaration, len(decls)),
		inputs: make(map[string][]string),
	}

	for _, d := range decls {
		if d.Name == "" {
			return nil, fmt.Errorf("%w (line %d)", ErrEmptyName, d.Line)
		}
		if !d.Kind.Valid() {
			return nil, fmt.Errorf("%w: %s has kind %s", ErrUnknownKind, d.Name, d.Kind)
		}
		if d.Kind == module.Broadcast && d.Name != Entry {
			return nil, fmt.Errorf("%w: %s has no prefix but is not %s", ErrUnknownKind, d.Name, Entry)
		}
		if prev, dup := n.decls[d.Name]; dup {
			return nil, fmt.Errorf("%w: %s declared on lines %d and %d", ErrDuplicateModule, d.Name, prev.Line, d.Line)
		}
		for _, out := range d.Outputs {
			if out == "" {
				return nil, fmt.Errorf("%w: empty destination of %s (line %d)", ErrEmptyName, d.Name, d.Line)
			}
		}
		d.Outputs = append([]string(nil), d.Outputs...)
		n.decls[d.Name] = d
		n.names = append(n.names, d.Name)
		n.ordered = append(n.ordered, d)
	}

	entry, ok := n.decls[Entry]
	if !ok {
		return nil, ErrMissingEntry
	}
	if entry.Kind != module.Broadcast {
		return nil, fmt.Errorf("%w: %s must be a broadcast module, got %s", ErrUnknownKind, Entry, entry.Kind)
	}
	sort.Strings(n.names)

	sinks := make(map[string]struct{})
	for _, name := range n.names {
		for _, out := range n.decls[name].Outputs {
			n.edges++
			if ins := n.inputs[out]; len(ins) == 0 || ins[len(ins)-1] != name {
				n.inputs[out] = append(ins, name)
			}
			if _, declared := n.decls[out]; !declared {
				sinks[out] = struct{}{}
			}
		}
	}
	for s := range sinks {
		n.sinks = append(n.sinks, s)
	}
	sort.Strings(n.sinks)

	return n, nil
}

// Names returns the declared module names in sorted order.
func (n *Network) Names() []string {
	return append([]string(nil), n.names...)
}

// Declared reports whether name is a declared module.
func (n *Network) Declared(name string) bool {
	_, ok := n.decls[name]
	return ok
}

// IsSink reports whether name is referenced as a destination but never declared.
func (n *Network) IsSink(name string) bool {
	if n.Declared(name) {
		return false
	}
	_, ok := n.inputs[name]
	return ok
}

// Sinks returns every undeclared destination in sorted order.
func (n *Network) Sinks() []string {
	return append([]string(nil), n.sinks...)
}

// Kind returns the kind of a declared module.
func (n *Network) Kind(name string) (module.Kind, bool) {
	d, ok := n.decls[name]
	return d.Kind, ok
}

// Outputs returns the destinations of name in declaration order.
func (n *Network) Outputs(name string) []string {
	return append([]string(nil), n.decls[name].Outputs...)
}

// Inputs returns every module that names the given one as a destination, in
// sorted order. It works for sinks as well as declared modules.
func (n *Network) Inputs(name string) []string {
	return append([]string(nil), n.inputs[name]...)
}

// Feeders returns the inputs of target grouped by kind.
func (n *Network) Feeders(target string) map[module.Kind][]string {
	out := make(map[module.Kind][]string)
	for _, in := range n.inputs[target] {
		k := n.decls[in].Kind
		out[k] = append(out[k], in)
	}
	return out
}

// EdgeCount returns the number of directed wires.
func (n *Network) EdgeCount() int {
	return n.edges
}

// Declarations returns the declarations in their original order.
func (n *Network) Declarations() []Declaration {
	out := make([]Declaration, len(n.ordered))
	for i, d := range n.ordered {
		d.Outputs = append([]string(nil), d.Outputs...)
		out[i] = d
	}
	return out
}

// NewModules creates a fresh state table with every module in its initial state.
func (n *Network) NewModules() map[string]*module.Module {
	mods := make(map[string]*module.Module, len(n.names))
	for _, name := range n.names {
		d := n.decls[name]
		switch d.Kind {
		case module.Broadcast:
			mods[name] = module.NewBroadcast(name, d.Outputs)
		case module.FlipFlop:
			mods[name] = module.NewFlipFlop(name, d.Outputs)
		case module.Conjunction:
			mods[name] = module.NewConjunction(name, d.Outputs, n.inputs[name])
		}
	}
	return mods
}
