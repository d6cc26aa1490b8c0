package turns

// minDepth returns the distance from the focus to the closest node whose
// future is not known yet. finite is false when every branch ends.
func (t *Tree) minDepth() (depth int, finite bool) { return t.depthFrom(t.focus(), 0) }

func (t *Tree) depthFrom(h handle, depth int) (int, bool) {
	switch l := t.linkOf(h).(type) {
	case endLink:
		return 0, false
	case unknownLink, scheduledLink, computingLink:
		return depth, true
	case computedLink:
		return t.depthFrom(l.next, depth+1)
	case humanLink:
		var best int
		var finite bool
		for _, m := range l.moves {
			d, ok := t.depthFrom(l.nexts[m], depth+1)
			if !ok {
				continue
			}
			if !finite || d < best {
				best = d
				finite = true
			}
		}
		return best, finite
	}
	t.violation("no depth for %v", t.linkOf(h))
	return 0, false
}

// width is the number of leaves of the tree.
func (t *Tree) width() int { return t.widthFrom(t.focus()) }

func (t *Tree) widthFrom(h handle) int {
	switch l := t.linkOf(h).(type) {
	case computedLink:
		return t.widthFrom(l.next)
	case humanLink:
		var sum int
		for _, m := range l.moves {
			sum += t.widthFrom(l.nexts[m])
		}
		return sum
	}
	return 1
}

// Stats describes the size of the tree.
type Stats struct {
	Ply       int  // turns made so far
	Nodes     int  // nodes in use
	Unknowns  int  // unexpanded nodes waiting for discovery
	Scheduled int  // bot turns waiting for the computation slot
	Computing bool // is the slot taken?
	Depth     int  // distance to the closest unresolved node, -1 if every branch ends
	Width     int  // number of leaves
	Discarded int  // stale completions dropped
}

// Stats returns the current Stats. A closed tree reports zero Stats.
func (t *Tree) Stats() Stats {
	if err := t.view(); err != nil {
		return Stats{}
	}
	defer t.unview()
	return t.stats()
}

func (t *Tree) stats() Stats {
	depth, finite := t.minDepth()
	if !finite {
		depth = -1
	}
	return Stats{
		Ply:       t.ply,
		Nodes:     t.liveNodes(),
		Unknowns:  t.unknowns.len(),
		Scheduled: t.scheduled.len(),
		Computing: t.computing.isValid(),
		Depth:     depth,
		Width:     t.width(),
		Discarded: t.discarded,
	}
}
