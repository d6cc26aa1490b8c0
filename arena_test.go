package clonium

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clonium/clonium/game"
	board "github.com/clonium/clonium/game/clonium"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_BotMinTime(t *testing.T) {
	st := State{
		Board: board.MustParse("30 . 31"),
		Bots:  map[game.PlayerID]string{0: "level", 1: "level"},
		Order: []game.PlayerID{0, 1},
	}
	g, err := NewAsyncGame(st, testConfig())
	require.NoError(t, err)
	defer g.Close()

	a := NewArena(g, nil, testConfig())
	a.BotMinTime = 50 * time.Millisecond
	start := time.Now()
	winner, plies, err := a.Play(context.Background())
	require.NoError(t, err)
	assert.True(t, time.Since(start) >= a.BotMinTime)
	assert.Equal(t, game.PlayerID(1), winner)
	assert.Equal(t, 2, plies)
}

func TestArena_NoHumanInput(t *testing.T) {
	st := State{Board: board.MustParse("10 . 11"), Order: []game.PlayerID{0, 1}}
	g, err := NewSimpleGame(st, testConfig())
	require.NoError(t, err)

	_, _, err = NewArena(g, nil, testConfig()).Play(context.Background())
	assert.Error(t, err)
}

func TestPlayMany(t *testing.T) {
	assert := assert.New(t)
	conf := testConfig()
	stats, err := PlayMany(context.Background(), 6, 3, func(i int) (*Arena, error) {
		b, err := board.Spawn(board.Square(5), 2)
		if err != nil {
			return nil, err
		}
		st := State{
			Board: b,
			Bots:  map[game.PlayerID]string{0: "random", 1: "chips"},
			Order: []game.PlayerID{0, 1},
		}
		c := conf
		c.Seed = int64(i)
		g, err := NewAsyncGame(st, c)
		if err != nil {
			return nil, err
		}
		a := NewArena(g, nil, c)
		a.MaxPlies = 200
		return a, nil
	})
	require.NoError(t, err)
	assert.Len(stats.Records, 6)

	var wins int
	for _, w := range stats.Wins {
		wins += w
	}
	var finished int
	for _, r := range stats.Records {
		if r.Winner != game.NoPlayer {
			finished++
		}
		assert.True(r.Plies > 0)
	}
	assert.Equal(finished, wins)
}

func TestPlayMany_Error(t *testing.T) {
	_, err := PlayMany(context.Background(), 3, 0, func(i int) (*Arena, error) {
		return nil, ErrGameEnded
	})
	assert.Error(t, err)
}

func TestStatistics(t *testing.T) {
	assert := assert.New(t)
	s := NewStatistics()
	s.Record(1, game.NoPlayer, 200)
	s.Record(0, 1, 12)
	s.Record(2, 1, 30)

	assert.InDelta(2.0/3.0, s.WinRate(1), 1e-9)
	assert.Equal(0.0, s.WinRate(0))

	var buf bytes.Buffer
	require.NoError(t, s.WriteCSV(&buf))
	assert.Equal("game,winner,plies\n0,1,12\n1,,200\n2,1,30\n", buf.String())

	filename := filepath.Join(t.TempDir(), "stats.csv")
	require.NoError(t, s.Dump(filename))
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(buf.String(), string(data))
}
