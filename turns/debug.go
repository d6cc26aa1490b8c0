//go:build debug
// +build debug

package turns

// selfCheck walks the whole tree and panics with an *InvariantError on the
// first structural inconsistency. It must be called with the tree lock held.
func (t *Tree) selfCheck() {
	reachable := make(map[handle]struct{})
	var computing int
	var walk func(h handle)
	walk = func(h handle) {
		if !h.isValid() || int(h) >= len(t.nodes) || !t.nodes[h].valid {
			t.violation("node %d is reachable but not allocated", h)
		}
		if _, ok := reachable[h]; ok {
			t.violation("node %d is reachable twice", h)
		}
		reachable[h] = struct{}{}
		l := t.linkOf(h)
		if d, ok := depthOf(l); ok && d < t.ply {
			t.violation("node %d %v lies before the focus at ply %d", h, l, t.ply)
		}
		if l.kind() == BotComputing {
			computing++
			if t.computing != h {
				t.violation("node %d is computing but the slot holds %d", h, t.computing)
			}
		}
		for _, kid := range t.children(h) {
			walk(kid)
		}
	}
	walk(t.focus())

	if computing > 1 {
		t.violation("%d nodes are computing", computing)
	}
	if computing == 0 && t.computing.isValid() {
		t.violation("slot holds %d which is not in the tree", t.computing)
	}
	if n := t.liveNodes(); n != len(reachable) {
		t.violation("%d nodes are allocated but %d are reachable", n, len(reachable))
	}
	for _, f := range []struct {
		q    frontier
		kind Kind
	}{{t.unknowns, Unknown}, {t.scheduled, BotScheduled}} {
		for _, e := range f.q.entries() {
			if _, ok := reachable[e.node]; !ok {
				t.violation("queued node %d is not in the tree", e.node)
			}
			if k := t.linkOf(e.node).kind(); k != f.kind {
				t.violation("node %d is queued as %v but is %v", e.node, f.kind, k)
			}
		}
	}
}
