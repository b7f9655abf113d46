package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/module"
)

func TestPartitionConnect(t *testing.T) {
	p := NewPartition([]string{"a", "b", "c", "d"})

	for _, name := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, name, p.Find(name), "each name starts as its own root")
	}

	p.Connect("a", "b")
	assert.Equal(t, p.Find("a"), p.Find("b"))
	assert.NotEqual(t, p.Find("a"), p.Find("c"))

	p.Connect("b", "c")
	assert.Equal(t, p.Find("a"), p.Find("c"))

	p.Connect("a", "zz")
	assert.Equal(t, "", p.Find("zz"))

	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d"}}, p.Groups())
}

func TestComponentsExcludeHubs(t *testing.T) {
	net, err := Build([]Declaration{
		decl("broadcaster", module.Broadcast, "a0", "b0"),
		decl("a0", module.FlipFlop, "ca"),
		decl("ca", module.Conjunction, "a0", "ia"),
		decl("ia", module.Conjunction, "hub"),
		decl("b0", module.FlipFlop, "cb"),
		decl("cb", module.Conjunction, "ib"),
		decl("ib", module.Conjunction, "hub"),
		decl("hub", module.Conjunction, "rx"),
	})
	require.NoError(t, err)

	whole := net.Components()
	assert.Equal(t, whole.Find("ia"), whole.Find("ib"))

	parts := net.Components(Entry, "hub", "rx")
	assert.NotEqual(t, parts.Find("ia"), parts.Find("ib"))
	assert.Equal(t, parts.Find("a0"), parts.Find("ia"))
	assert.Equal(t, parts.Find("b0"), parts.Find("ib"))
	assert.Equal(t, "", parts.Find("hub"))
	assert.Len(t, parts.Groups(), 2)
}
