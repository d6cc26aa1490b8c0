package turns

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/clonium/clonium/game"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(moves, length int, players ...game.PlayerID) Trans {
	return Trans{Board: lineBoard{moves: moves, length: length}, Order: players}
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	_, err := New(line(2, 5, 0, 1), nil, Config{})
	assert.Error(err, "invalid config")

	_, err = New(line(2, 5), nil, testConfig())
	assert.Error(err, "no players")

	_, err = New(line(2, 5, 0, 1), []game.Bot{firstBot{id: 3}}, testConfig())
	assert.Error(err, "bot not in the order")

	tree := newTestTree(t, line(2, 5, 0), nil, testConfig())
	s := tree.Snapshot()
	assert.Equal(End, s.Focus.Kind)
	assert.Equal(0, s.Unknowns)
	checkInvariants(t, tree)
}

func TestConfig(t *testing.T) {
	assert := assert.New(t)
	conf := DefaultConfig()
	assert.True(conf.IsValid())
	assert.Equal(100, conf.SoftMaxWidth)
	assert.Equal(5, conf.SoftMinDepth)
	assert.Equal(500, conf.SoftMaxUnknowns)

	conf.Workers = 0
	assert.False(conf.IsValid())
}

func TestDiscovery_Width(t *testing.T) {
	assert := assert.New(t)
	conf := testConfig()
	conf.SoftMaxWidth = 8
	conf.SoftMinDepth = 1
	tree := newTestTree(t, line(2, 100, 0, 1), nil, conf)

	// depth 1 is always explored, then expansion goes on until there are 8 leaves
	stats := tree.Stats()
	assert.Equal(8, stats.Width)
	assert.Equal(8, stats.Unknowns)
	assert.Equal(3, stats.Depth)
	assert.Equal(0, stats.Scheduled)
	assert.False(stats.Computing)
	assert.Equal(1+2+4+8, stats.Nodes)
	checkInvariants(t, tree)
}

func TestDiscovery_MinDepth(t *testing.T) {
	assert := assert.New(t)
	conf := testConfig()
	conf.SoftMaxWidth = 1
	conf.SoftMinDepth = 3
	tree := newTestTree(t, line(1, 100, 0, 1), nil, conf)

	// a single line is explored down to the minimum depth
	stats := tree.Stats()
	assert.Equal(4, stats.Depth)
	assert.Equal(1, stats.Width)
	assert.Equal(1, stats.Unknowns)
	checkInvariants(t, tree)
}

func TestDiscovery_SoftMaxUnknowns(t *testing.T) {
	assert := assert.New(t)
	conf := testConfig()
	conf.SoftMaxUnknowns = 3
	tree := newTestTree(t, line(2, 100, 0, 1), nil, conf)

	assert.Equal(3, tree.Stats().Unknowns)
	checkInvariants(t, tree)
}

func TestDiscovery_End(t *testing.T) {
	assert := assert.New(t)
	tree := newTestTree(t, line(2, 2, 0, 1), nil, testConfig())

	stats := tree.Stats()
	assert.Equal(-1, stats.Depth, "every branch ends")
	assert.Equal(4, stats.Width)
	assert.Equal(0, stats.Unknowns)

	s := tree.Snapshot()
	s.Focus.Walk(func(n NodeInfo) bool {
		if n.Depth == 2 {
			assert.Equal(End, n.Kind)
		}
		return true
	})
	checkInvariants(t, tree)
}

func TestDiscovery_SingleComputation(t *testing.T) {
	assert := assert.New(t)
	b := newGateBot(1)
	tree := newTestTree(t, line(3, 100, 0, 1), []game.Bot{b}, testConfig())

	// three bot turns below the root, one of them computing
	s := tree.Snapshot()
	assert.Equal(HumanOneOf, s.Focus.Kind)
	var computing, scheduled int
	for _, kid := range s.Focus.Children {
		switch kid.Kind {
		case BotComputing:
			computing++
		case BotScheduled:
			scheduled++
		}
	}
	assert.Equal(1, computing)
	assert.Equal(2, scheduled)
	assert.Equal(2, s.Scheduled)
	checkInvariants(t, tree)

	// completing computations one by one never runs two at once
	for i := 0; i < 3; i++ {
		c := b.next(t)
		close(c.release)
		checkInvariants(t, tree)
	}
	assert.Eventually(func() bool {
		for _, kid := range tree.Snapshot().Focus.Children {
			if kid.Kind != BotComputed {
				return false
			}
		}
		return true
	}, 5*time.Second, time.Millisecond)
	checkInvariants(t, tree)
}

func TestStaleDiscard(t *testing.T) {
	assert := assert.New(t)
	b := newGateBot(1)
	tree := newTestTree(t, line(2, 100, 0, 1), []game.Bot{b}, testConfig())
	b.next(t)

	before := tree.Snapshot()
	dump := tree.Dump()

	tree.onComputed(result{
		id:     uuid.New(),
		player: 1,
		pos:    game.Pos{X: 0, Y: 1},
		trans:  line(2, 100, 0, 1),
	})

	after := tree.Snapshot()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("stale completion changed the tree (-before +after):\n%s", diff)
	}
	assert.Equal(dump, tree.Dump())
	assert.Equal(1, tree.Stats().Discarded)
	checkInvariants(t, tree)
}

func TestGivenHumanTurn_Narrows(t *testing.T) {
	assert := assert.New(t)
	conf := testConfig()
	conf.SoftMaxWidth = 8
	conf.SoftMinDepth = 1
	tree := newTestTree(t, line(2, 100, 0, 1), nil, conf)

	trans, ok := tree.GivenHumanTurn(game.Pos{X: 1, Y: 0})
	require.True(t, ok)
	assert.True(trans.Board.Eq(lineBoard{moves: 2, length: 100, path: []game.Pos{{X: 1, Y: 0}}}))
	assert.Equal([]game.PlayerID{1, 0}, trans.Order)

	settle(t, tree)
	s := tree.Snapshot()
	assert.Equal(1, s.Ply)
	assert.Equal(HumanOneOf, s.Focus.Kind)
	assert.Equal(game.PlayerID(1), s.Focus.Player)

	focus, err := tree.Focus()
	require.NoError(t, err)
	assert.True(focus.Board.Eq(trans.Board))

	// the other branch is gone and the kept one grows again up to the limits
	stats := tree.Stats()
	assert.Equal(8, stats.Width)
	assert.Equal(1+2+4+8, stats.Nodes)
	checkInvariants(t, tree)
}

func TestGivenHumanTurn_ReadersSeeCommit(t *testing.T) {
	assert := assert.New(t)
	tree := newTestTree(t, line(2, 100, 0, 1), nil, testConfig())

	for ply := 0; ply < 20; ply++ {
		trans, ok := tree.GivenHumanTurn(game.Pos{X: ply % 2, Y: ply})
		require.True(t, ok, "ply %d", ply)

		focus, err := tree.Focus()
		require.NoError(t, err)
		assert.True(focus.Board.Eq(trans.Board), "ply %d: focus %v, committed %v", ply, focus.Board, trans.Board)
		assert.Equal(trans.Order, focus.Order)

		s := tree.Snapshot()
		assert.Equal(ply+1, s.Ply)
		assert.Equal(HumanOneOf, s.Focus.Kind)
		assert.Equal(trans.Order, s.Focus.Order)
		assert.True(strings.HasPrefix(tree.Dump(), fmt.Sprintf("ply = %d\n", ply+1)))
	}
	checkInvariants(t, tree)
}

func TestGivenHumanTurn_Illegal(t *testing.T) {
	assert := assert.New(t)
	tree := newTestTree(t, line(2, 100, 0, 1), nil, testConfig())
	before := tree.Snapshot()

	_, ok := tree.GivenHumanTurn(game.Pos{X: 5, Y: 0})
	assert.False(ok)
	_, ok = tree.GivenHumanTurn(game.Pos{X: 0, Y: 3})
	assert.False(ok)

	if diff := cmp.Diff(before, tree.Snapshot()); diff != "" {
		t.Errorf("rejected move changed the tree (-before +after):\n%s", diff)
	}

	// the lock is released after a rejection
	_, ok = tree.GivenHumanTurn(game.Pos{X: 0, Y: 0})
	assert.True(ok)
	settle(t, tree)
	checkInvariants(t, tree)
}

func TestGivenHumanTurn_End(t *testing.T) {
	assert := assert.New(t)
	tree := newTestTree(t, line(2, 1, 0), nil, testConfig())

	trans, ok := tree.GivenHumanTurn(game.Pos{X: 1, Y: 0})
	require.True(t, ok)
	assert.Equal([]game.PlayerID{0}, trans.Order)
	s := tree.Snapshot()
	assert.Equal(End, s.Focus.Kind)
	assert.Equal(1, s.Ply)

	_, ok = tree.GivenHumanTurn(game.Pos{X: 7, Y: 1})
	assert.False(ok)
	checkInvariants(t, tree)
}

func TestGivenHumanTurn_Reseed(t *testing.T) {
	assert := assert.New(t)
	b := newGateBot(1)
	conf := testConfig()
	conf.SoftMaxWidth = 4
	conf.SoftMinDepth = 0
	tree := newTestTree(t, line(2, 100, 0, 1), []game.Bot{b}, conf)

	// finish the bot turns after both human moves
	close(b.next(t).release)
	close(b.next(t).release)
	require.Eventually(t, func() bool {
		s := tree.Snapshot()
		return s.Focus.Children[0].Kind == BotComputed && s.Focus.Children[1].Kind == BotComputed
	}, 5*time.Second, time.Millisecond)
	checkInvariants(t, tree)

	_, ok := tree.GivenHumanTurn(game.Pos{X: 0, Y: 0})
	require.True(t, ok)
	settle(t, tree)
	checkInvariants(t, tree)

	s := tree.Snapshot()
	assert.Equal(BotComputed, s.Focus.Kind)
	assert.Equal(1, s.Ply)
}

func TestRequestBotTurn(t *testing.T) {
	assert := assert.New(t)
	b := newGateBot(1)
	tree := newTestTree(t, line(2, 100, 0, 1), []game.Bot{b}, testConfig())

	// the first answer is grafted, the second one is computing
	close(b.next(t).release)
	c := b.next(t)
	_, ok := tree.GivenHumanTurn(game.Pos{X: 1, Y: 0})
	require.True(t, ok)

	// the computation is still blocked
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err := tree.RequestBotTurn(ctx)
	assert.Equal(context.DeadlineExceeded, err)

	close(c.release)
	pos, trans, err := tree.RequestBotTurn(context.Background())
	require.NoError(t, err)
	assert.Equal(game.Pos{X: 0, Y: 1}, pos)
	assert.Equal([]game.PlayerID{0, 1}, trans.Order)

	s := tree.Snapshot()
	assert.Equal(2, s.Ply)
	assert.Equal(HumanOneOf, s.Focus.Kind)
	checkInvariants(t, tree)
}

func TestRequestBotTurn_Violation(t *testing.T) {
	tree := newTestTree(t, line(2, 100, 0, 1), []game.Bot{firstBot{id: 1}}, testConfig())

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*InvariantError)
		require.True(t, ok, "%v", r)
		assert.Contains(t, err.Error(), "bot turn requested")
		assert.Contains(t, err.Dump, "Human.OneOf(Player0)")
	}()
	tree.RequestBotTurn(context.Background())
}

func TestClose(t *testing.T) {
	assert := assert.New(t)
	b := newGateBot(1)
	tree, err := New(line(2, 100, 1, 0), []game.Bot{b}, testConfig())
	require.NoError(t, err)
	b.next(t)

	errc := make(chan error)
	go func() {
		_, _, err := tree.RequestBotTurn(context.Background())
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	b.Open()
	tree.Close()
	select {
	case err := <-errc:
		// the computation may have been grafted before the tree was closed
		if err != nil {
			assert.Equal(ErrClosed, err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("request did not return after close")
	}

	_, ok := tree.GivenHumanTurn(game.Pos{})
	assert.False(ok)
	_, _, err = tree.RequestBotTurn(context.Background())
	assert.Equal(ErrClosed, err)
	assert.Equal(Stats{}, tree.Stats())
}

func TestDumpAndDot(t *testing.T) {
	assert := assert.New(t)
	tree := newTestTree(t, line(2, 2, 0, 1), []game.Bot{firstBot{id: 1}}, testConfig())
	require.Eventually(t, func() bool { return tree.Stats().Depth == -1 }, 5*time.Second, time.Millisecond)

	dump := tree.Dump()
	assert.True(strings.HasPrefix(dump, "ply = 0\nStart:\n"))
	assert.Contains(dump, "Human.OneOf(Player0)")
	assert.Contains(dump, "Bot.Computed(Player1")
	assert.Contains(dump, "End")
	assert.Contains(dump, "computing = nil")

	dot, err := tree.ToDot()
	require.NoError(t, err)
	assert.Contains(dot, "digraph G")
	assert.Contains(dot, "n0->n1")
}
