package turns

import (
	"fmt"
	"testing"
	"time"

	"github.com/clonium/clonium/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineBoard is an abstract game: every player always has the same number of
// moves, and the game is decided after a fixed number of turns.
type lineBoard struct {
	moves, length int
	path          []game.Pos
}

var _ game.Board = lineBoard{}

func (b lineBoard) Size() (int, int)                      { return b.moves, b.length }
func (b lineBoard) HasCell(pos game.Pos) bool             { return true }
func (b lineBoard) ChipAt(pos game.Pos) (game.Chip, bool) { return game.Chip{}, false }
func (b lineBoard) Players() []game.PlayerID              { return nil }
func (b lineBoard) IsAlive(p game.PlayerID) bool          { return true }

func (b lineBoard) PossOf(p game.PlayerID) []game.Pos {
	retVal := make([]game.Pos, b.moves)
	for i := range retVal {
		retVal[i] = game.Pos{X: i, Y: len(b.path)}
	}
	return retVal
}

func (b lineBoard) Apply(pos game.Pos, order []game.PlayerID) (game.Board, []game.PlayerID) {
	path := make([]game.Pos, len(b.path), len(b.path)+1)
	copy(path, b.path)
	b2 := lineBoard{moves: b.moves, length: b.length, path: append(path, pos)}
	if len(b2.path) >= b.length {
		return b2, []game.PlayerID{order[0]}
	}
	next := append(append([]game.PlayerID{}, order[1:]...), order[0])
	return b2, next
}

func (b lineBoard) Eq(other game.Board) bool {
	ob, ok := other.(lineBoard)
	if !ok || len(ob.path) != len(b.path) {
		return false
	}
	for i := range b.path {
		if b.path[i] != ob.path[i] {
			return false
		}
	}
	return true
}

func (b lineBoard) Clone() game.Board { return b }

func (b lineBoard) Format(s fmt.State, c rune) { fmt.Fprintf(s, "line%v", b.path) }

// gateBot answers with its first legal move once the test releases the call.
type gateBot struct {
	id    game.PlayerID
	calls chan *gateCall
	open  chan struct{} // closed: answer right away
}

type gateCall struct {
	board   game.Board
	order   []game.PlayerID
	release chan struct{}
}

func newGateBot(id game.PlayerID) *gateBot {
	return &gateBot{
		id:    id,
		calls: make(chan *gateCall, 64),
		open:  make(chan struct{}),
	}
}

func (b *gateBot) PlayerID() game.PlayerID { return b.id }
func (b *gateBot) Name() string            { return "gate" }

func (b *gateBot) MakeTurn(board game.Board, order []game.PlayerID) game.Pos {
	c := &gateCall{board: board, order: order, release: make(chan struct{})}
	select {
	case b.calls <- c:
	case <-b.open:
	}
	select {
	case <-c.release:
	case <-b.open:
	}
	return board.PossOf(b.id)[0]
}

// Open lets every pending and future call through.
func (b *gateBot) Open() {
	select {
	case <-b.open:
	default:
		close(b.open)
	}
}

func (b *gateBot) next(t *testing.T) *gateCall {
	t.Helper()
	select {
	case c := <-b.calls:
		return c
	case <-time.After(5 * time.Second):
		t.Fatalf("no computation requested from %v", b.id)
	}
	return nil
}

// firstBot always plays its first legal move.
type firstBot struct {
	id game.PlayerID
}

func (b firstBot) PlayerID() game.PlayerID { return b.id }
func (b firstBot) Name() string            { return "first" }
func (b firstBot) MakeTurn(board game.Board, order []game.PlayerID) game.Pos {
	return board.PossOf(b.id)[0]
}

func testConfig() Config {
	conf := DefaultConfig()
	conf.Workers = 4
	return conf
}

func newTestTree(t *testing.T, trans Trans, bots []game.Bot, conf Config) *Tree {
	t.Helper()
	tree, err := New(trans, bots, conf)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, b := range bots {
			if g, ok := b.(*gateBot); ok {
				g.Open()
			}
		}
		tree.Close()
	})
	return tree
}

// settle waits until the after-effect of the last commit is done.
func settle(t *testing.T, tree *Tree) {
	t.Helper()
	require.NoError(t, tree.humanAfterEffect.Acquire(tree.ctx, 1))
	tree.humanAfterEffect.Release(1)
}

// checkInvariants checks the structural invariants of the tree.
func checkInvariants(t *testing.T, tree *Tree) {
	t.Helper()
	require.NoError(t, tree.lock(tree.ctx))
	defer tree.unlock()

	reachable := make(map[handle]int) // distance from the focus
	var computing []handle
	var walk func(h handle, dist int)
	walk = func(h handle, dist int) {
		require.True(t, tree.nodes[h].valid, "node %d is reachable but free", h)
		_, seen := reachable[h]
		require.False(t, seen, "node %d is reachable twice", h)
		reachable[h] = dist

		l := tree.linkOf(h)
		if d, ok := depthOf(l); ok {
			assert.Equal(t, dist, d-tree.ply, "depth of node %d %v", h, l)
		}
		if l.kind() == BotComputing {
			computing = append(computing, h)
		}
		for _, kid := range tree.children(h) {
			walk(kid, dist+1)
		}
	}
	walk(tree.focus(), 0)

	assert.LessOrEqual(t, len(computing), 1, "computing nodes %v", computing)
	if len(computing) == 1 {
		assert.Equal(t, computing[0], tree.computing)
	} else {
		assert.False(t, tree.computing.isValid(), "slot holds %d", tree.computing)
	}
	assert.Equal(t, len(reachable), tree.liveNodes(), "leaked nodes")

	check := func(f frontier, kind Kind) {
		queued := make(map[handle]bool)
		for _, e := range f.entries() {
			_, ok := reachable[e.node]
			require.True(t, ok, "queued node %d is not in the tree", e.node)
			l := tree.linkOf(e.node)
			assert.Equal(t, kind, l.kind(), "queued node %d", e.node)
			d, _ := depthOf(l)
			assert.Equal(t, d, e.depth)
			assert.False(t, queued[e.node], "node %d queued twice", e.node)
			queued[e.node] = true
		}
		for h := range reachable {
			if tree.linkOf(h).kind() == kind {
				assert.True(t, queued[h], "%v node %d is not queued", kind, h)
			}
		}
	}
	check(tree.unknowns, Unknown)
	check(tree.scheduled, BotScheduled)
}
