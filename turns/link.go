package turns

import (
	"fmt"

	"github.com/clonium/clonium/game"
	"github.com/google/uuid"
)

// Kind is the state of a node of the turn tree.
type Kind byte

const (
	End          Kind = iota // the game is decided
	Unknown                  // not expanded yet
	HumanOneOf               // a human turn, one child per legal move
	BotComputed              // a bot turn whose move is known
	BotComputing             // a bot turn being computed
	BotScheduled             // a bot turn waiting for the computation slot
)

func (k Kind) String() string {
	switch k {
	case End:
		return "End"
	case Unknown:
		return "Unknown"
	case HumanOneOf:
		return "Human.OneOf"
	case BotComputed:
		return "Bot.Computed"
	case BotComputing:
		return "Bot.Computing"
	case BotScheduled:
		return "Bot.Scheduled"
	}
	return "UNKNOWN KIND"
}

// IsTemporal returns true for leaves that will be expanded or resolved later.
func (k Kind) IsTemporal() bool {
	return k == Unknown || k == BotComputing || k == BotScheduled
}

// link is what a node currently knows about the turn that follows its Trans.
// Replacing the link of a node is the only way the tree changes.
type link interface {
	kind() Kind
	player() game.PlayerID
}

// startLink points at the focus: the node of the current, committed position.
type startLink struct {
	next handle
}

type endLink struct{}

type unknownLink struct {
	depth int
}

type humanLink struct {
	who   game.PlayerID
	moves []game.Pos // legal moves in board order
	nexts map[game.Pos]handle
}

type computedLink struct {
	who  game.PlayerID
	pos  game.Pos
	next handle
	id   uuid.UUID
}

type computingLink struct {
	who         game.PlayerID
	depth       int
	computation *Computation
	future      *future
}

type scheduledLink struct {
	who         game.PlayerID
	depth       int
	computation *Computation
}

func (endLink) kind() Kind       { return End }
func (unknownLink) kind() Kind   { return Unknown }
func (humanLink) kind() Kind     { return HumanOneOf }
func (computedLink) kind() Kind  { return BotComputed }
func (computingLink) kind() Kind { return BotComputing }
func (scheduledLink) kind() Kind { return BotScheduled }

func (endLink) player() game.PlayerID         { return game.NoPlayer }
func (unknownLink) player() game.PlayerID     { return game.NoPlayer }
func (l humanLink) player() game.PlayerID     { return l.who }
func (l computedLink) player() game.PlayerID  { return l.who }
func (l computingLink) player() game.PlayerID { return l.who }
func (l scheduledLink) player() game.PlayerID { return l.who }

// depthOf returns the ply stored in depth carrying links.
func depthOf(l link) (int, bool) {
	switch l := l.(type) {
	case unknownLink:
		return l.depth, true
	case computingLink:
		return l.depth, true
	case scheduledLink:
		return l.depth, true
	}
	return 0, false
}

func (l endLink) Format(s fmt.State, c rune)     { fmt.Fprint(s, "End") }
func (l unknownLink) Format(s fmt.State, c rune) { fmt.Fprintf(s, "Unknown(depth = %d)", l.depth) }
func (l humanLink) Format(s fmt.State, c rune)   { fmt.Fprintf(s, "Human.OneOf(%v)", l.who) }
func (l computedLink) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "Bot.Computed(%v, %v, %v)", l.who, l.pos, l.id)
}
func (l computingLink) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "Bot.Computing(%v, depth = %d, %v)", l.who, l.depth, l.computation.ID)
}
func (l scheduledLink) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "Bot.Scheduled(%v, depth = %d, %v)", l.who, l.depth, l.computation.ID)
}
