// Package bot provides simple Clonium bots.
//
// Every bot is a pure function of the board and the order, which lets a
// computation be repeated or discarded without changing the outcome of a game.
package bot

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/chewxy/math32"
	"github.com/clonium/clonium/game"
	"github.com/pkg/errors"
	"gorgonia.org/vecf32"
)

var (
	_ game.Bot = RandomPicker{}
	_ game.Bot = Greedy{}
	_ game.Bot = Slow{}
)

// RandomPicker picks one of its chips at random. The pick is derived from a
// hash of the board so the same position always yields the same move.
type RandomPicker struct {
	ID   game.PlayerID
	Seed int64
}

func (b RandomPicker) PlayerID() game.PlayerID { return b.ID }
func (b RandomPicker) Name() string            { return "random" }

func (b RandomPicker) MakeTurn(board game.Board, order []game.PlayerID) game.Pos {
	poss := board.PossOf(b.ID)
	if len(poss) == 0 {
		panic(errors.Errorf("%v has no moves", b.ID))
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%d%v", b.Seed, board)
	return poss[h.Sum64()%uint64(len(poss))]
}

// Greedy looks one move ahead and picks the move that maximizes a weighted
// sum of the bot's chip count and level sum minus those of its opponents.
type Greedy struct {
	ID     game.PlayerID
	Chips  float32 // weight of the chip count
	Levels float32 // weight of the level sum
	name   string
}

// LevelMaximizer maximizes the level sum.
func LevelMaximizer(id game.PlayerID) Greedy {
	return Greedy{ID: id, Levels: 1, name: "level"}
}

// ChipCountMaximizer maximizes the number of chips.
func ChipCountMaximizer(id game.PlayerID) Greedy {
	return Greedy{ID: id, Chips: 1, name: "chips"}
}

func (b Greedy) PlayerID() game.PlayerID { return b.ID }

func (b Greedy) Name() string {
	if b.name == "" {
		return "greedy"
	}
	return b.name
}

func (b Greedy) MakeTurn(board game.Board, order []game.PlayerID) game.Pos {
	poss := board.PossOf(b.ID)
	if len(poss) == 0 {
		panic(errors.Errorf("%v has no moves", b.ID))
	}
	chips := make([]float32, len(poss))
	levels := make([]float32, len(poss))
	for i, pos := range poss {
		next, _ := board.Apply(pos, order)
		chips[i], levels[i] = b.balance(next, order)
	}
	vecf32.Scale(chips, b.Chips)
	vecf32.Scale(levels, b.Levels)
	vecf32.Add(chips, levels)
	return poss[argmax(chips)]
}

// balance returns own minus opponents' chip counts and level sums.
func (b Greedy) balance(board game.Board, order []game.PlayerID) (chips, levels float32) {
	for _, p := range order {
		s := game.StatOf(board, p)
		sign := float32(-1)
		if p == b.ID {
			sign = 1
		}
		chips += sign * float32(s.Chips)
		levels += sign * float32(s.Levels)
	}
	return
}

// argmax returns the first index of the greatest value. NaNs are never picked.
func argmax(a []float32) int {
	best := math32.Inf(-1)
	var retVal int
	for i, v := range a {
		if math32.IsNaN(v) {
			continue
		}
		if v > best {
			best = v
			retVal = i
		}
	}
	return retVal
}

// Slow delays another bot. It is handy for demos and for exercising the
// precomputation with realistic latencies.
type Slow struct {
	game.Bot
	Delay time.Duration
}

func (b Slow) MakeTurn(board game.Board, order []game.PlayerID) game.Pos {
	time.Sleep(b.Delay)
	return b.Bot.MakeTurn(board, order)
}

// ByName creates a bot from its name: "random", "level" or "chips".
func ByName(name string, id game.PlayerID, seed int64) (game.Bot, error) {
	switch name {
	case "random":
		return RandomPicker{ID: id, Seed: seed}, nil
	case "level":
		return LevelMaximizer(id), nil
	case "chips":
		return ChipCountMaximizer(id), nil
	}
	return nil, errors.Errorf("Unknown bot %q", name)
}
