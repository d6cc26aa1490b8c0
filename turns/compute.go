package turns

import (
	"context"
	"fmt"
	"time"

	"github.com/clonium/clonium/game"
	"github.com/google/uuid"
)

// Computation is a request for a bot to make its turn on a board.
type Computation struct {
	Bot   game.Bot
	Board game.Board
	Order []game.PlayerID
	Depth int // ply of the turn
	ID    uuid.UUID
}

func (c *Computation) Format(s fmt.State, r rune) {
	fmt.Fprintf(s, "Computation(%v, depth = %d, %v)", c.Bot.PlayerID(), c.Depth, c.ID)
}

// result is the outcome of a Computation.
type result struct {
	id      uuid.UUID
	player  game.PlayerID
	pos     game.Pos
	trans   Trans
	elapsed time.Duration
}

// run makes the bot's turn. It does not touch the tree.
func (c *Computation) run() result {
	start := time.Now()
	pos := c.Bot.MakeTurn(c.Board, c.Order)
	elapsed := time.Since(start)
	board, order := c.Board.Apply(pos, c.Order)
	return result{
		id:      c.ID,
		player:  c.Bot.PlayerID(),
		pos:     pos,
		trans:   Trans{Board: board, Order: order},
		elapsed: elapsed,
	}
}

// future is a result that will be available once done is closed.
type future struct {
	done chan struct{}
	res  result
}

func newFuture() *future { return &future{done: make(chan struct{})} }

func (f *future) resolve(res result) {
	f.res = res
	close(f.done)
}

func (f *future) wait(ctx context.Context) (result, error) {
	select {
	case <-f.done:
		return f.res, nil
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// startComputing occupies the computation slot with the node and runs the
// computation in the background.
func (t *Tree) startComputing(h handle, c *Computation) {
	if t.computing.isValid() {
		t.violation("starting %v while node %d is computing", c, t.computing)
	}
	f := newFuture()
	t.setLink(h, computingLink{who: c.Bot.PlayerID(), depth: c.Depth, computation: c, future: f})
	t.computing = h

	t.wg.Add(1)
	go t.compute(c, f)
}

func (t *Tree) compute(c *Computation, f *future) {
	defer t.wg.Done()
	if err := t.workers.Acquire(t.ctx, 1); err != nil {
		return // closed
	}
	res := c.run()
	t.workers.Release(1)

	f.resolve(res)
	t.log.Debug().
		Str("id", c.ID.String()).
		Int("depth", c.Depth).
		Dur("elapsed", res.elapsed).
		Msgf("%s computed turn of %v: %v", c.Bot.Name(), res.player, res.pos)
	t.onComputed(res)
}

// onComputed grafts a finished computation into the tree, unless it went stale.
func (t *Tree) onComputed(res result) {
	if err := t.lock(t.ctx); err != nil {
		return
	}
	defer t.unlock()
	if _, ok := t.early[res.id]; ok {
		delete(t.early, res.id)
		return
	}
	if !t.graft(res) {
		return
	}
	t.runNextOrDiscover()
	t.selfCheck()
}

// graft replaces the computing node with the computed move. It returns false,
// leaving the tree untouched, if res is not the result of the computation
// occupying the slot.
func (t *Tree) graft(res result) bool {
	if !t.computing.isValid() {
		t.stale(res, "slot is empty")
		return false
	}
	h := t.computing
	c, ok := t.linkOf(h).(computingLink)
	if !ok {
		t.violation("computing slot points to %v", t.linkOf(h))
	}
	if c.computation.ID != res.id {
		t.stale(res, "slot is taken by "+c.computation.ID.String())
		return false
	}

	var next handle
	if res.trans.IsDecided() {
		next = t.alloc(res.trans, endLink{})
	} else {
		next = t.alloc(res.trans, unknownLink{depth: c.depth + 1})
		t.unknowns.push(c.depth+1, next)
	}
	t.setLink(h, computedLink{who: res.player, pos: res.pos, next: next, id: res.id})
	t.computing = nilNode
	return true
}

func (t *Tree) stale(res result, why string) {
	t.discarded++
	t.log.Debug().Str("id", res.id.String()).Str("reason", why).Msg("discarded stale computation")
}

// runNextOrDiscover promotes the shallowest scheduled computation, or resumes
// discovery if there is none.
func (t *Tree) runNextOrDiscover() {
	if !t.runNext() {
		t.discoverUnknowns()
	}
}

// runNext returns false if the slot is free and nothing is scheduled.
func (t *Tree) runNext() bool {
	if t.computing.isValid() {
		return true
	}
	e, ok := t.scheduled.pop()
	if !ok {
		return false
	}
	s, ok := t.linkOf(e.node).(scheduledLink)
	if !ok {
		t.violation("scheduled queue holds %v", t.linkOf(e.node))
	}
	t.startComputing(e.node, s.computation)
	return true
}
