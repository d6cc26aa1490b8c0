// Package turns precomputes bot turns of a Clonium game.
//
// While a human is thinking, a Tree expands every branch the human might take
// and computes, one computation at a time, what each bot would answer in each
// branch. Once the human commits a move all the other branches are dropped and
// the work already done for the chosen branch is kept. When a bot is to move
// its move is usually known already.
package turns

import (
	"context"
	"sync"

	"github.com/clonium/clonium/game"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Tree is the speculative tree of future turns rooted at the current position
// of a game (the focus).
type Tree struct {
	Config
	log zerolog.Logger

	// mu guards everything below. semaphore.Weighted serves waiters in FIFO
	// order, so completions, commits and requests are served fairly.
	mu *semaphore.Weighted
	// humanAfterEffect orders commits relative to each other and to bot turn
	// requests. It is always acquired before mu.
	humanAfterEffect *semaphore.Weighted
	workers          *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	bots map[game.PlayerID]game.Bot

	// memory related fields
	nodes    []node
	freelist []handle

	start     startLink
	ply       int // number of turns made before the focus
	unknowns  frontier
	scheduled frontier
	computing handle

	discarded int // stale computations dropped
	// computations grafted by a waiting RequestBotTurn before their own
	// completion came in
	early map[uuid.UUID]struct{}
}

// New creates a tree rooted at the given position. Players of the order that
// have no bot are humans.
func New(trans Trans, bots []game.Bot, conf Config) (*Tree, error) {
	if !conf.IsValid() {
		return nil, errors.Errorf("Invalid config %+v", conf)
	}
	if len(trans.Order) == 0 {
		return nil, errors.New("Cannot create a turn tree without players")
	}
	botMap := make(map[game.PlayerID]game.Bot, len(bots))
	for _, b := range bots {
		if !inOrder(trans.Order, b.PlayerID()) {
			return nil, errors.Errorf("Bot %v (%s) is not in the order %v", b.PlayerID(), b.Name(), trans.Order)
		}
		botMap[b.PlayerID()] = b
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &Tree{
		Config:           conf,
		log:              conf.Logger,
		mu:               semaphore.NewWeighted(1),
		humanAfterEffect: semaphore.NewWeighted(1),
		workers:          semaphore.NewWeighted(int64(conf.Workers)),
		ctx:              ctx,
		cancel:           cancel,
		bots:             botMap,
		nodes:            make([]node, 0, 1024),
		unknowns:         newFrontier(),
		scheduled:        newFrontier(),
		computing:        nilNode,
		early:            make(map[uuid.UUID]struct{}),
	}

	if trans.IsDecided() {
		t.start = startLink{next: t.alloc(trans, endLink{})}
		return t, nil
	}
	root := t.alloc(trans, unknownLink{depth: 0})
	t.start = startLink{next: root}
	t.unknowns.push(0, root)

	// nobody else can see the tree yet, the lock is only taken for form
	if err := t.lock(t.ctx); err != nil {
		return nil, err
	}
	t.discoverUnknowns()
	t.unlock()
	return t, nil
}

func inOrder(order []game.PlayerID, p game.PlayerID) bool {
	for _, o := range order {
		if o == p {
			return true
		}
	}
	return false
}

// Close stops the tree. Computations that have not started yet are dropped,
// computations already running are waited for and their results ignored.
func (t *Tree) Close() error {
	t.cancel()
	t.wg.Wait()
	return nil
}

// IsBot returns true if the player is played by a bot.
func (t *Tree) IsBot(p game.PlayerID) bool {
	_, ok := t.bots[p]
	return ok
}

func (t *Tree) lock(ctx context.Context) error {
	if err := t.mu.Acquire(ctx, 1); err != nil {
		return t.ctxErr(err)
	}
	if t.ctx.Err() != nil {
		t.mu.Release(1)
		return ErrClosed
	}
	return nil
}

func (t *Tree) unlock() { t.mu.Release(1) }

// view locks the tree for the public readers. It waits for the after-effect of
// the last commit, so a reader never sees the position before a committed move.
func (t *Tree) view() error {
	if err := t.humanAfterEffect.Acquire(t.ctx, 1); err != nil {
		return t.ctxErr(err)
	}
	if err := t.lock(t.ctx); err != nil {
		t.humanAfterEffect.Release(1)
		return err
	}
	return nil
}

func (t *Tree) unview() {
	t.unlock()
	t.humanAfterEffect.Release(1)
}

// ctxErr reports a closed tree as ErrClosed and anything else as is.
func (t *Tree) ctxErr(err error) error {
	if t.ctx.Err() != nil {
		return ErrClosed
	}
	return err
}

// withTree returns a context that is also cancelled when the tree is closed.
func (t *Tree) withTree(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(t.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (t *Tree) focus() handle { return t.start.next }

// Focus returns the current position. Like the other readers it waits for a
// pending commit or bot turn request.
func (t *Tree) Focus() (Trans, error) {
	if err := t.view(); err != nil {
		return Trans{}, err
	}
	defer t.unview()
	return t.transOf(t.focus()), nil
}

// setFocus makes next the new focus and frees everything that is not reachable from it.
func (t *Tree) setFocus(next handle) {
	old := t.focus()
	t.start = startLink{next: next}
	t.ply++
	t.cleanup(old, next)
}
