package game

import "fmt"

// MoveError is returned (or panicked with) when a move is not legal for the player.
type MoveError PlayerMove

func (err MoveError) Error() string {
	return fmt.Sprintf("Unable to make %v", PlayerMove(err))
}
