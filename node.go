package rtree

import "golang.org/x/exp/constraints"

func newLeaf[P constraints.Float, V any]() *node[P, V] {
	return &node[P, V]{leaf: true}
}

func (n *node[P, V]) len() int {
	if n.leaf {
		return len(n.entries)
	}
	return len(n.children)
}

func (n *node[P, V]) isEmpty() bool {
	return n.len() == 0
}

// recomputeMBR rebuilds the bounding rect from the direct content.
func (n *node[P, V]) recomputeMBR() {
	m := Rect[P]{}
	if n.leaf {
		for _, e := range n.entries {
			m.Expand(e.mbr)
		}
	} else {
		for _, c := range n.children {
			m.Expand(c.mbr)
		}
	}
	n.mbr = m
}

// collectEntries moves every entry under n into out, leaving n empty.
func collectEntries[P constraints.Float, V any](n *node[P, V], out *[]*Entry[P, V]) {
	if n.leaf {
		*out = append(*out, n.entries...)
		n.entries = nil
		return
	}
	for _, c := range n.children {
		collectEntries(c, out)
	}
	n.children = nil
}
