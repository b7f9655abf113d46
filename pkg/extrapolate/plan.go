package extrapolate

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/module"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/network"
)

// WatchPlan describes which modules to watch to predict when the target
// first receives a low pulse.
type WatchPlan struct {
	Target   string       `json:"target"`
	Hub      string       `json:"hub,omitempty"` // conjunction combining the watchers, if any
	Watchers []string     `json:"watchers"`
	Level    module.Level `json:"level"` // level each watcher must emit
}

func (p *WatchPlan) String() string {
	if p.Hub != "" {
		return fmt.Sprintf("%s <- &%s <- {%s} emitting %s", p.Target, p.Hub, strings.Join(p.Watchers, ", "), p.Level)
	}
	return fmt.Sprintf("%s <- {%s} emitting %s", p.Target, strings.Join(p.Watchers, ", "), p.Level)
}

// Plan inspects the topology around target.
//
// If target is fed by exactly one conjunction whose inputs are all
// conjunctions, that conjunction is the hub: it sends low exactly when every
// input last sent high, so each hub input is watched for a high pulse.
// Otherwise target must be fed by a single conjunction, which is watched for
// a low pulse itself. Several watchers must live in disjoint sub-networks
// once the broadcaster, target and hub are removed.
//
// A network without that shape yields an error wrapping ErrPrecondition.
func Plan(net *network.Network, target string) (*WatchPlan, error) {
	if err := checkTarget(net, target); err != nil {
		return nil, err
	}

	feeders := net.Feeders(target)
	for _, kind := range []module.Kind{module.Broadcast, module.FlipFlop} {
		if names := feeders[kind]; len(names) > 0 {
			return nil, fmt.Errorf("%w: %s is fed by %s %s", ErrPrecondition, target, kind, names[0])
		}
	}
	conjunctions := feeders[module.Conjunction]
	switch len(conjunctions) {
	case 0:
		return nil, fmt.Errorf("%w: nothing feeds %s", ErrPrecondition, target)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %d conjunctions feed %s directly", ErrPrecondition, len(conjunctions), target)
	}

	plan := &WatchPlan{
		Target:   target,
		Watchers: conjunctions,
		Level:    module.Low,
	}

	hub := conjunctions[0]
	if inputs := net.Inputs(hub); allConjunctions(net, inputs) && !contains(inputs, hub) {
		plan.Hub = hub
		plan.Watchers = inputs
		plan.Level = module.High
	}

	if err := checkIndependent(net, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func allConjunctions(net *network.Network, names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, name := range names {
		if kind, _ := net.Kind(name); kind != module.Conjunction {
			return false
		}
	}
	return true
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func checkIndependent(net *network.Network, plan *WatchPlan) error {
	if len(plan.Watchers) < 2 {
		return nil
	}

	exclude := []string{network.Entry, plan.Target}
	if plan.Hub != "" {
		exclude = append(exclude, plan.Hub)
	}
	parts := net.Components(exclude...)

	owner := make(map[string]string, len(plan.Watchers))
	for _, w := range plan.Watchers {
		root := parts.Find(w)
		if root == "" {
			return fmt.Errorf("%w: watcher %s is part of the hub", ErrPrecondition, w)
		}
		if other, ok := owner[root]; ok {
			return fmt.Errorf("%w: watchers %s and %s share a sub-network", ErrPrecondition, other, w)
		}
		owner[root] = w
	}
	return nil
}
