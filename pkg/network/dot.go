package network

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/module"
)

var dotShapes = map[module.Kind]string{
	module.Broadcast:   "doubleoctagon",
	module.FlipFlop:    "box",
	module.Conjunction: "invhouse",
}

// ExportDOT renders the topology in Graphviz format. Sinks are drawn as
// plain circles.
func (n *Network) ExportDOT() string {
	var b strings.Builder
	b.WriteString("digraph pulse {\n")
	b.WriteString("  rankdir=LR;\n")

	for _, name := range n.names {
		kind := n.decls[name].Kind
		fmt.Fprintf(&b, "  %q [shape=%s, label=%q];\n", name, dotShapes[kind], kind.Prefix()+name)
	}
	for _, sink := range n.sinks {
		fmt.Fprintf(&b, "  %q [shape=circle];\n", sink)
	}
	for _, name := range n.names {
		for _, out := range n.decls[name].Outputs {
			fmt.Fprintf(&b, "  %q -> %q;\n", name, out)
		}
	}

	b.WriteString("}\n")
	return b.String()
}
