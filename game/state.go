package game

import (
	"fmt"
)

// PlayerID identifies a player on the board. IDs start at 0.
type PlayerID int32

const NoPlayer PlayerID = -1

var superscripts = [...]string{"⁰", "¹", "²", "³", "⁴", "⁵", "⁶", "⁷", "⁸", "⁹"}

func (p PlayerID) Format(s fmt.State, c rune) {
	switch c {
	case 'v': // used in debug
		if p == NoPlayer {
			fmt.Fprint(s, "None")
			return
		}
		fmt.Fprintf(s, "Player%d", int32(p))
	case 's': // used in board rendering
		if p < 0 || int(p) >= len(superscripts) {
			fmt.Fprint(s, "·")
			return
		}
		fmt.Fprint(s, superscripts[p])
	case 'd':
		fmt.Fprintf(s, "%d", int32(p))
	}
}

// Level is the level of a chip. A chip on a settled board has a level in [1, 3];
// a chip reaching MaxLevel explodes, unless its owner is the only player left.
type Level int32

const (
	MinLevel Level = 1
	MaxLevel Level = 4
)

// Pos is a cell position. X is the column, Y is the row; (0, 0) is the top left.
type Pos struct {
	X, Y int
}

func (p Pos) Add(other Pos) Pos { return Pos{p.X + other.X, p.Y + other.Y} }

func (p Pos) Eq(other Pos) bool { return p.X == other.X && p.Y == other.Y }

// Less orders positions row major.
func (p Pos) Less(other Pos) bool {
	if p.Y != other.Y {
		return p.Y < other.Y
	}
	return p.X < other.X
}

func (p Pos) Format(s fmt.State, c rune) { fmt.Fprintf(s, "(%d, %d)", p.X, p.Y) }

// Chip is a stack of a player's pieces sitting on a cell.
type Chip struct {
	Player PlayerID
	Level  Level
}

func (c Chip) Format(s fmt.State, r rune) {
	fmt.Fprintf(s, "%d%s", int32(c.Level), superscript(c.Player))
}

func superscript(p PlayerID) string {
	if p < 0 || int(p) >= len(superscripts) {
		return "?"
	}
	return superscripts[p]
}

// PlayerMove is a tuple indicating the player and the position of the chip to be incremented.
type PlayerMove struct {
	Player PlayerID
	Pos
}

// Eq returns true if both are equal
func (p PlayerMove) Eq(other PlayerMove) bool {
	return p.Player == other.Player && p.Pos.Eq(other.Pos)
}

func (p PlayerMove) Format(s fmt.State, c rune) { fmt.Fprintf(s, "%v@%v", p.Player, p.Pos) }

// Board is an immutable snapshot of a game board. Implementations must be safe
// for concurrent reads since snapshots are shared between the scheduler and
// bot computations.
type Board interface {
	Size() (width, height int) // returns the board size
	HasCell(Pos) bool          // is there a cell (not a hole) at the position?
	ChipAt(Pos) (Chip, bool)   // returns the chip at the position, if any

	Players() []PlayerID     // players with at least one chip, ascending
	PossOf(PlayerID) []Pos   // legal moves of the player: positions of its chips, row major
	IsAlive(p PlayerID) bool // has the player any chip left?

	// Apply increments the chip at pos, resolves explosions and returns the
	// resulting board together with the next order. The receiver is not modified.
	Apply(pos Pos, order []PlayerID) (Board, []PlayerID)

	// generics
	Eq(other Board) bool
	Clone() Board
	fmt.Formatter
}

// Bot is a non-human player. MakeTurn may be slow; it must be a pure function
// of its arguments and must return one of board.PossOf(PlayerID()).
type Bot interface {
	PlayerID() PlayerID
	Name() string
	MakeTurn(board Board, order []PlayerID) Pos
}

// IsDecided returns true when at most one player remains in the order.
func IsDecided(order []PlayerID) bool { return len(order) <= 1 }

// ShiftOrder moves the current player to the back and drops every player
// that has no chips left on the board.
func ShiftOrder(b Board, order []PlayerID) []PlayerID {
	if len(order) == 0 {
		return nil
	}
	retVal := make([]PlayerID, 0, len(order))
	for _, p := range order[1:] {
		if b.IsAlive(p) {
			retVal = append(retVal, p)
		}
	}
	if b.IsAlive(order[0]) {
		retVal = append(retVal, order[0])
	}
	return retVal
}

// Stat is the number of chips and the sum of their levels for a player.
type Stat struct {
	Chips  int
	Levels int
}

// StatOf computes the Stat of a player on the board.
func StatOf(b Board, p PlayerID) Stat {
	var s Stat
	for _, pos := range b.PossOf(p) {
		if chip, ok := b.ChipAt(pos); ok {
			s.Chips++
			s.Levels += int(chip.Level)
		}
	}
	return s
}

// Contains returns true if pos is one of poss.
func Contains(poss []Pos, pos Pos) bool {
	for _, p := range poss {
		if p.Eq(pos) {
			return true
		}
	}
	return false
}
