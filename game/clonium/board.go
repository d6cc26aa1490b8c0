package clonium

import (
	"fmt"
	"sort"

	"github.com/clonium/clonium/game"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
	"gorgonia.org/tensor/native"
)

// Cell is the content of a board cell. A chip is packed as (player+1)<<8 | level.
type Cell int32

const (
	Hole  Cell = -1
	Empty Cell = 0
)

func chipCell(c game.Chip) Cell {
	return Cell((int32(c.Player)+1)<<8 | int32(c.Level))
}

// Chip unpacks the chip stored in the cell.
func (c Cell) Chip() (game.Chip, bool) {
	if c <= Empty {
		return game.Chip{}, false
	}
	return game.Chip{
		Player: game.PlayerID(c>>8) - 1,
		Level:  game.Level(c & 0xff),
	}, true
}

func (c Cell) Format(s fmt.State, r rune) {
	switch c {
	case Hole:
		fmt.Fprint(s, " ")
	case Empty:
		fmt.Fprint(s, "□")
	default:
		chip, _ := c.Chip()
		fmt.Fprintf(s, "%v", chip)
	}
}

var directions = [...]game.Pos{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

var _ game.Board = &Board{}

// Board is a Clonium board. Once handed out through the game.Board interface a
// Board is never modified; Apply works on a copy.
type Board struct {
	data *tensor.Dense
	it   [][]Cell
}

func newBoard(width, height int) *Board {
	backing := make([]Cell, width*height)
	data := tensor.New(tensor.WithShape(height, width), tensor.WithBacking(backing))
	iter, err := native.Matrix(data)
	if err != nil {
		panic(err)
	}
	it := iter.([][]Cell)
	return &Board{
		data: data,
		it:   it,
	}
}

// NewEmpty creates a width×height board without chips or holes.
func NewEmpty(width, height int) *Board { return newBoard(width, height) }

func (b *Board) Format(s fmt.State, c rune) {
	switch c {
	case 's', 'v':
		for _, row := range b.it {
			fmt.Fprint(s, "⎢ ")
			for _, col := range row {
				fmt.Fprintf(s, "%v ", col)
			}
			fmt.Fprint(s, "⎥\n")
		}
	}
}

func (b *Board) Size() (width, height int) {
	sh := b.data.Shape()
	return sh[1], sh[0]
}

func (b *Board) inBounds(pos game.Pos) bool {
	w, h := b.Size()
	return pos.X >= 0 && pos.Y >= 0 && pos.X < w && pos.Y < h
}

func (b *Board) HasCell(pos game.Pos) bool {
	return b.inBounds(pos) && b.it[pos.Y][pos.X] != Hole
}

func (b *Board) ChipAt(pos game.Pos) (game.Chip, bool) {
	if !b.inBounds(pos) {
		return game.Chip{}, false
	}
	return b.it[pos.Y][pos.X].Chip()
}

func (b *Board) Players() []game.PlayerID {
	seen := make(map[game.PlayerID]struct{})
	var retVal []game.PlayerID
	for _, c := range b.data.Data().([]Cell) {
		if chip, ok := c.Chip(); ok {
			if _, ok := seen[chip.Player]; !ok {
				seen[chip.Player] = struct{}{}
				retVal = append(retVal, chip.Player)
			}
		}
	}
	sort.Slice(retVal, func(i, j int) bool { return retVal[i] < retVal[j] })
	return retVal
}

func (b *Board) PossOf(p game.PlayerID) []game.Pos {
	var retVal []game.Pos
	for y, row := range b.it {
		for x, c := range row {
			if chip, ok := c.Chip(); ok && chip.Player == p {
				retVal = append(retVal, game.Pos{X: x, Y: y})
			}
		}
	}
	return retVal
}

func (b *Board) IsAlive(p game.PlayerID) bool {
	for _, c := range b.data.Data().([]Cell) {
		if chip, ok := c.Chip(); ok && chip.Player == p {
			return true
		}
	}
	return false
}

// Apply increments the chip at pos. It panics with a game.MoveError when the
// chip does not belong to the current player.
func (b *Board) Apply(pos game.Pos, order []game.PlayerID) (game.Board, []game.PlayerID) {
	if len(order) == 0 {
		panic("Cannot apply a move without players")
	}
	player := order[0]
	if chip, ok := b.ChipAt(pos); !ok || chip.Player != player {
		panic(game.MoveError{Player: player, Pos: pos})
	}
	b2 := b.clone()
	b2.inc(pos)
	return b2, game.ShiftOrder(b2, order)
}

func (b *Board) inc(pos game.Pos) {
	chip, _ := b.ChipAt(pos)
	chip.Level++
	b.setChip(pos, chip)
	if chip.Level < game.MaxLevel {
		return
	}
	for b.wave() && len(b.Players()) > 1 {
	}
}

// wave explodes every chip that reached MaxLevel at once. Each exploding chip
// empties its cell and adds a level to every orthogonal neighbour cell, which
// is taken over by the exploding player. Neighbours that are holes or outside
// the board lose the piece. Returns false when nothing exploded.
//
// Holes and the board edge absorb pieces, so a chain reaction always settles.
// inc stops the chain as soon as a single player is left, which may leave
// unstable chips on a decided board.
func (b *Board) wave() bool {
	type explosion struct {
		center game.Pos
		player game.PlayerID
	}
	var explosions []explosion
	for y, row := range b.it {
		for x, c := range row {
			if chip, ok := c.Chip(); ok && chip.Level >= game.MaxLevel {
				explosions = append(explosions, explosion{game.Pos{X: x, Y: y}, chip.Player})
			}
		}
	}
	if len(explosions) == 0 {
		return false
	}
	for _, e := range explosions {
		b.it[e.center.Y][e.center.X] = Empty
	}
	for _, e := range explosions {
		for _, d := range directions {
			n := e.center.Add(d)
			if !b.HasCell(n) {
				continue // fallout
			}
			chip, _ := b.ChipAt(n)
			b.setChip(n, game.Chip{Player: e.player, Level: chip.Level + 1})
		}
	}
	return true
}

func (b *Board) setChip(pos game.Pos, chip game.Chip) {
	b.it[pos.Y][pos.X] = chipCell(chip)
}

// Set places a chip on an existing cell. It is meant for setting a board up
// before it is shared.
func (b *Board) Set(pos game.Pos, chip game.Chip) error {
	if !b.HasCell(pos) {
		return game.MoveError{Player: chip.Player, Pos: pos}
	}
	if chip.Level < game.MinLevel || chip.Level >= game.MaxLevel {
		return errors.Errorf("Invalid level %d for a chip at %v", chip.Level, pos)
	}
	b.setChip(pos, chip)
	return nil
}

// Remove turns the cell at pos into a hole.
func (b *Board) Remove(pos game.Pos) {
	if b.inBounds(pos) {
		b.it[pos.Y][pos.X] = Hole
	}
}

// SymmetricRemove removes the cell at (x, y) together with its mirror images
// along both axes.
func (b *Board) SymmetricRemove(x, y int) {
	w, h := b.Size()
	b.Remove(game.Pos{X: x, Y: y})
	b.Remove(game.Pos{X: w - 1 - x, Y: y})
	b.Remove(game.Pos{X: x, Y: h - 1 - y})
	b.Remove(game.Pos{X: w - 1 - x, Y: h - 1 - y})
}

func (b *Board) clone() *Board {
	sh := b.data.Shape()

	b2 := newBoard(sh[1], sh[0])
	raw2 := b2.data.Data().([]Cell)
	raw := b.data.Data().([]Cell)
	copy(raw2, raw)
	return b2
}

func (b *Board) Clone() game.Board { return b.clone() }

func (b *Board) Eq(other game.Board) bool {
	ob, ok := other.(*Board)
	if !ok {
		return false
	}
	if !ob.data.Shape().Eq(b.data.Shape()) {
		return false
	}
	raw := b.data.Data().([]Cell)
	raw2 := ob.data.Data().([]Cell)
	for i := range raw {
		if raw[i] != raw2[i] {
			return false
		}
	}
	return true
}
