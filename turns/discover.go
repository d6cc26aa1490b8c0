package turns

import (
	"github.com/clonium/clonium/game"
	"github.com/google/uuid"
)

// discoverUnknowns expands the shallowest unknown nodes as long as the tree is
// small enough. Human turns are expanded on the spot, bot turns are handed to
// the computation pipeline.
func (t *Tree) discoverUnknowns() {
	for t.shouldDiscover() {
		e, _ := t.unknowns.pop()
		t.discover(e.node, e.depth)
	}
}

// shouldDiscover is the admission policy of the discovery loop.
func (t *Tree) shouldDiscover() bool {
	e, ok := t.unknowns.peek()
	if !ok {
		return false
	}
	if t.unknowns.len() >= t.SoftMaxUnknowns && !t.IsBot(t.transOf(e.node).Player()) {
		return false
	}
	if depth, finite := t.minDepth(); finite && depth <= t.SoftMinDepth {
		return true
	}
	return t.width() < t.SoftMaxWidth
}

func (t *Tree) discover(h handle, depth int) {
	if k := t.linkOf(h).kind(); k != Unknown {
		t.violation("discovering node %d which is %v", h, k)
	}
	trans := t.transOf(h)
	player := trans.Player()
	moves := trans.Moves()
	if len(moves) == 0 {
		t.violation("%v is to move at depth %d but has no moves", player, depth)
	}

	b, ok := t.bots[player]
	if !ok {
		nexts := make(map[game.Pos]handle, len(moves))
		for _, pos := range moves {
			next := trans.Apply(pos)
			if next.IsDecided() {
				nexts[pos] = t.alloc(next, endLink{})
				continue
			}
			kid := t.alloc(next, unknownLink{depth: depth + 1})
			t.unknowns.push(depth+1, kid)
			nexts[pos] = kid
		}
		t.setLink(h, humanLink{who: player, moves: moves, nexts: nexts})
		t.log.Debug().Int("depth", depth-t.ply).Int("moves", len(moves)).Msgf("expanded turn of %v", player)
		return
	}

	c := &Computation{
		Bot:   b,
		Board: trans.Board,
		Order: trans.Order,
		Depth: depth,
		ID:    uuid.New(),
	}
	if !t.computing.isValid() {
		t.startComputing(h, c)
		return
	}
	t.setLink(h, scheduledLink{who: player, depth: depth, computation: c})
	t.scheduled.push(depth, h)
}

// ensureFocusDiscovered expands the focus if it is still unknown. The focus is
// the shallowest node of the tree, so it is at the head of the unknowns.
func (t *Tree) ensureFocusDiscovered() {
	if t.linkOf(t.focus()).kind() != Unknown {
		return
	}
	e, ok := t.unknowns.pop()
	if !ok || e.node != t.focus() {
		t.violation("unknown focus %d is not at the head of the unknowns", t.focus())
	}
	t.discover(e.node, e.depth)
}
