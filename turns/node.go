package turns

// handle is essentially *node: an index into the arena of the tree.
type handle int

func (h handle) isValid() bool { return h >= 0 }

const (
	nilNode handle = -1
)

type node struct {
	id    handle
	trans Trans
	link  link
	valid bool
}

func (n *node) reset() {
	n.trans = Trans{}
	n.link = nil
	n.valid = false
}

// alloc tries to get a node from the free list. If none is found a new node is allocated into the arena.
//
// alloc may grow the arena, so pointers to nodes must not be held across calls.
func (t *Tree) alloc(trans Trans, l link) handle {
	var h handle
	if k := len(t.freelist); k > 0 {
		h = t.freelist[k-1]
		t.freelist = t.freelist[:k-1]
	} else {
		h = handle(len(t.nodes))
		t.nodes = append(t.nodes, node{id: h})
	}
	n := &t.nodes[h]
	n.trans = trans
	n.link = l
	n.valid = true
	return h
}

// free puts the node back into the freelist.
//
// A freed handle may be handed out again by alloc, so a handle kept by a
// running computation is never trusted without checking the computation id.
func (t *Tree) free(h handle) {
	n := &t.nodes[h]
	if !n.valid {
		t.violation("double free of node %d", h)
	}
	n.reset()
	t.freelist = append(t.freelist, h)
}

func (t *Tree) linkOf(h handle) link { return t.nodes[h].link }

func (t *Tree) transOf(h handle) Trans { return t.nodes[h].trans }

func (t *Tree) setLink(h handle, l link) { t.nodes[h].link = l }

// children returns the handles the node links to, in move order.
func (t *Tree) children(h handle) []handle {
	switch l := t.linkOf(h).(type) {
	case humanLink:
		retVal := make([]handle, 0, len(l.moves))
		for _, m := range l.moves {
			retVal = append(retVal, l.nexts[m])
		}
		return retVal
	case computedLink:
		return []handle{l.next}
	}
	return nil
}

// cleanup frees the old focus and every subtree hanging off it, except the one rooted at keep.
func (t *Tree) cleanup(oldFocus, keep handle) {
	// we aint going down other paths, those nodes can be freed
	for _, kid := range t.children(oldFocus) {
		if kid != keep {
			t.cleanChildren(kid)
		}
	}
	t.free(oldFocus)
}

func (t *Tree) cleanChildren(root handle) {
	for _, kid := range t.children(root) {
		t.cleanChildren(kid) // recursively clean children
	}
	t.free(root)
}

// liveNodes is the number of nodes in use.
func (t *Tree) liveNodes() int { return len(t.nodes) - len(t.freelist) }
