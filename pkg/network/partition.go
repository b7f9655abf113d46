package network

import (
	"sort"
)

// Partition groups module names into disjoint sets using union-find with
// path compression and union by rank.
type Partition struct {
	parent map[string]string
	rank   map[string]int
	names  []string
}

// NewPartition creates a partition in which every name is its own group.
func NewPartition(names []string) *Partition {
	p := &Partition{
		parent: make(map[string]string, len(names)),
		rank:   make(map[string]int, len(names)),
		names:  make([]string, 0, len(names)),
	}
	for _, name := range names {
		if _, ok := p.parent[name]; ok {
			continue
		}
		p.parent[name] = name
		p.names = append(p.names, name)
	}
	return p
}

// Connect merges the groups of a and b. Names outside the partition are ignored.
func (p *Partition) Connect(a, b string) {
	if _, ok := p.parent[a]; !ok {
		return
	}
	if _, ok := p.parent[b]; !ok {
		return
	}

	rootA := p.Find(a)
	rootB := p.Find(b)
	if rootA == rootB {
		return
	}

	switch {
	case p.rank[rootA] < p.rank[rootB]:
		p.parent[rootA] = rootB
	case p.rank[rootA] > p.rank[rootB]:
		p.parent[rootB] = rootA
	default:
		p.parent[rootB] = rootA
		p.rank[rootA]++
	}
}

// Find returns the representative of name's group, or "" if name is unknown.
func (p *Partition) Find(name string) string {
	if _, ok := p.parent[name]; !ok {
		return ""
	}

	root := name
	for p.parent[root] != root {
		root = p.parent[root]
	}

	for cur := name; cur != root; {
		next := p.parent[cur]
		p.parent[cur] = root
		cur = next
	}
	return root
}

// Groups returns every group with its members sorted, ordered by first member.
func (p *Partition) Groups() [][]string {
	byRoot := make(map[string][]string)
	for _, name := range p.names {
		root := p.Find(name)
		byRoot[root] = append(byRoot[root], name)
	}

	groups := make([][]string, 0, len(byRoot))
	for _, members := range byRoot {
		sort.Strings(members)
		groups = append(groups, members)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i][0] < groups[j][0]
	})
	return groups
}

// Components partitions the declared modules into weakly connected
// sub-networks after removing the excluded modules and every wire touching
// them. Sinks are not part of any component.
func (n *Network) Components(exclude ...string) *Partition {
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}

	keep := make([]string, 0, len(n.names))
	for _, name := range n.names {
		if _, ok := skip[name]; !ok {
			keep = append(keep, name)
		}
	}

	p := NewPartition(keep)
	for _, name := range keep {
		for _, out := range n.decls[name].Outputs {
			p.Connect(name, out)
		}
	}
	return p
}
