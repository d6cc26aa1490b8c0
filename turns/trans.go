package turns

import (
	"fmt"

	"github.com/clonium/clonium/game"
)

// Trans is an immutable snapshot of the game: the board and the order of the
// players still alive, the player to move first.
type Trans struct {
	Board game.Board
	Order []game.PlayerID
}

// Player returns the player to move.
func (t Trans) Player() game.PlayerID {
	if len(t.Order) == 0 {
		return game.NoPlayer
	}
	return t.Order[0]
}

func (t Trans) IsDecided() bool { return game.IsDecided(t.Order) }

// Apply makes the move of the current player.
func (t Trans) Apply(pos game.Pos) Trans {
	board, order := t.Board.Apply(pos, t.Order)
	return Trans{Board: board, Order: order}
}

// Moves returns the legal moves of the current player.
func (t Trans) Moves() []game.Pos { return t.Board.PossOf(t.Player()) }

func (t Trans) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "order %v\n%v", t.Order, t.Board)
}
