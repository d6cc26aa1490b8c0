package clonium

import (
	"strconv"
	"strings"

	"github.com/clonium/clonium/game"
	"github.com/pkg/errors"
)

// Square creates an empty n×n board.
func Square(n int) *Board { return newBoard(n, n) }

// Tower creates the 8×8 board with cut corners and a hollow centre.
func Tower() *Board {
	b := Square(8)
	b.SymmetricRemove(0, 0)
	b.SymmetricRemove(3, 3)
	return b
}

// Spawn places one level 3 chip for each of the n players near the corners
// of the board, going clockwise from the top left.
func Spawn(b *Board, n int) (*Board, error) {
	w, h := b.Size()
	corners := []game.Pos{
		{X: 1, Y: 1},
		{X: w - 2, Y: 1},
		{X: w - 2, Y: h - 2},
		{X: 1, Y: h - 2},
	}
	if n < 1 || n > len(corners) {
		return nil, errors.Errorf("Cannot spawn %d players, expected between 1 and %d", n, len(corners))
	}
	if w < 3 || h < 3 {
		return nil, errors.Errorf("Board of size %dx%d is too small to spawn players", w, h)
	}
	b2 := b.clone()
	for i := 0; i < n; i++ {
		chip := game.Chip{Player: game.PlayerID(i), Level: 3}
		if err := b2.Set(corners[i], chip); err != nil {
			return nil, errors.WithMessagef(err, "Unable to spawn player %d", i)
		}
	}
	return b2, nil
}

// Parse reads a board from whitespace separated tokens, one line per row:
//	#   a hole
//	.   an empty cell
//	LP  a chip of level L owned by player P, e.g. "31"
func Parse(s string) (*Board, error) {
	var rows [][]string
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		if len(rows) > 0 && len(tokens) != len(rows[0]) {
			return nil, errors.Errorf("Row %d has %d cells, expected %d", len(rows), len(tokens), len(rows[0]))
		}
		rows = append(rows, tokens)
	}
	if len(rows) == 0 {
		return nil, errors.New("Empty board")
	}

	b := newBoard(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, tok := range row {
			pos := game.Pos{X: x, Y: y}
			switch tok {
			case "#":
				b.Remove(pos)
			case ".":
			default:
				if len(tok) < 2 {
					return nil, errors.Errorf("Unable to parse cell %q at %v", tok, pos)
				}
				level, err := strconv.Atoi(tok[:1])
				if err != nil {
					return nil, errors.WithMessagef(err, "Unable to parse level of cell %q at %v", tok, pos)
				}
				player, err := strconv.Atoi(tok[1:])
				if err != nil {
					return nil, errors.WithMessagef(err, "Unable to parse player of cell %q at %v", tok, pos)
				}
				if err := b.Set(pos, game.Chip{Player: game.PlayerID(player), Level: game.Level(level)}); err != nil {
					return nil, err
				}
			}
		}
	}
	return b, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Board {
	b, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return b
}
