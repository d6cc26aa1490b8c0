package turns

import (
	"github.com/clonium/clonium/game"
)

// GivenHumanTurn commits the move of the human at the focus and returns the
// resulting position. The tree is narrowed to the chosen branch in the
// background; the next commit or bot turn request waits for that to finish.
//
// A move that is not legal at the focus is rejected before anything changes,
// and false is returned.
func (t *Tree) GivenHumanTurn(pos game.Pos) (Trans, bool) {
	if err := t.humanAfterEffect.Acquire(t.ctx, 1); err != nil {
		return Trans{}, false
	}
	if err := t.lock(t.ctx); err != nil {
		t.humanAfterEffect.Release(1)
		return Trans{}, false
	}

	focus := t.focus()
	switch l := t.linkOf(focus).(type) {
	case humanLink:
		next, ok := l.nexts[pos]
		if !ok {
			t.log.Debug().Msgf("rejected move %v of %v", pos, l.who)
			t.unlock()
			t.humanAfterEffect.Release(1)
			return Trans{}, false
		}
		trans := t.transOf(next)
		t.unlock()

		t.wg.Add(1)
		go t.afterHumanTurn(next)
		return trans, true

	case endLink:
		// the game is decided but the winner may keep playing
		defer t.humanAfterEffect.Release(1)
		defer t.unlock()
		trans := t.transOf(focus)
		if !game.Contains(trans.Moves(), pos) {
			t.log.Debug().Msgf("rejected move %v of %v", pos, trans.Player())
			return Trans{}, false
		}
		next := trans.Apply(pos)
		t.setFocus(t.alloc(next, endLink{}))
		return next, true
	}
	t.violation("human turn %v at focus %v", pos, t.linkOf(focus))
	return Trans{}, false
}

// afterHumanTurn narrows the tree to next and re-seeds the queues from what is left.
func (t *Tree) afterHumanTurn(next handle) {
	defer t.wg.Done()
	defer t.humanAfterEffect.Release(1)
	if err := t.lock(t.ctx); err != nil {
		return
	}
	defer t.unlock()

	t.setFocus(next)
	t.rescheduleAll()
	t.selfCheck()
	t.log.Debug().
		Int("ply", t.ply).
		Int("nodes", t.liveNodes()).
		Int("unknowns", t.unknowns.len()).
		Int("scheduled", t.scheduled.len()).
		Msg("rescheduled after human turn")
}

func (t *Tree) rescheduleAll() {
	t.computing = nilNode
	t.scheduled.clear()
	t.unknowns.clear()
	t.reschedule(t.focus())
	t.ensureFocusDiscovered()
	t.runNextOrDiscover()
}

func (t *Tree) reschedule(h handle) {
	switch l := t.linkOf(h).(type) {
	case unknownLink:
		t.unknowns.push(l.depth, h)
	case scheduledLink:
		t.scheduled.push(l.depth, h)
	case computingLink:
		if t.computing.isValid() {
			t.violation("nodes %d and %d are both computing", t.computing, h)
		}
		t.computing = h
	case computedLink:
		t.reschedule(l.next)
	case humanLink:
		for _, m := range l.moves {
			t.reschedule(l.nexts[m])
		}
	}
}
