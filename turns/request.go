package turns

import (
	"context"
	"time"

	"github.com/clonium/clonium/game"
)

// RequestBotTurn returns the move of the bot at the focus and the resulting
// position, waiting for the computation if it is still running. An error is
// returned only if ctx is done or the tree is closed while waiting.
func (t *Tree) RequestBotTurn(ctx context.Context) (game.Pos, Trans, error) {
	ctx, cancel := t.withTree(ctx)
	defer cancel()

	if err := t.humanAfterEffect.Acquire(ctx, 1); err != nil {
		return game.Pos{}, Trans{}, t.ctxErr(err)
	}
	defer t.humanAfterEffect.Release(1)
	if err := t.lock(ctx); err != nil {
		return game.Pos{}, Trans{}, err
	}

	focus := t.focus()
	switch l := t.linkOf(focus).(type) {
	case computedLink:
		defer t.unlock()
		return l.pos, t.advance(l.next), nil

	case computingLink:
		// the tree must stay available to the computation while we wait
		t.unlock()
		start := time.Now()
		res, err := l.future.wait(ctx)
		if err != nil {
			return game.Pos{}, Trans{}, t.ctxErr(err)
		}
		t.log.Warn().
			Str("bot", l.computation.Bot.Name()).
			Dur("elapsed", time.Since(start)).
			Msgf("slow bot %v", l.who)

		if err := t.lock(ctx); err != nil {
			return game.Pos{}, Trans{}, err
		}
		defer t.unlock()
		// the completion may have been grafted already
		if t.computing == focus && t.graft(res) {
			t.early[res.id] = struct{}{}
		}
		c, ok := t.linkOf(focus).(computedLink)
		if !ok || c.id != res.id {
			t.violation("computation %v at the focus was not grafted", res.id)
		}
		return c.pos, t.advance(c.next), nil
	}
	t.violation("bot turn requested at focus %v", t.linkOf(focus))
	return game.Pos{}, Trans{}, nil
}

// advance moves the focus past a computed bot turn and keeps the tree growing
// from there.
func (t *Tree) advance(next handle) Trans {
	t.setFocus(next)
	t.ensureFocusDiscovered()
	t.runNextOrDiscover()
	t.selfCheck()
	return t.transOf(next)
}
