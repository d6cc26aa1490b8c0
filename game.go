// Package clonium plays games of Clonium between humans and bots.
//
// A Game keeps track of the board, the players still alive and whose turn it
// is. AsyncGame precomputes bot turns while humans think, SimpleGame computes
// them on demand.
package clonium

import (
	"context"
	"math/rand"

	"github.com/clonium/clonium/bot"
	"github.com/clonium/clonium/game"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	ErrNotHumanTurn = errors.New("Not a human's turn")
	ErrNotBotTurn   = errors.New("Not a bot's turn")
	ErrGameEnded    = errors.New("Game has ended")
)

// Game is a game in progress.
type Game interface {
	Board() game.Board
	Players() []game.PlayerID // every player of the game, in turn order, dead ones included
	Order() []game.PlayerID   // players still alive, the current player first
	CurrentPlayer() game.PlayerID
	IsBot(p game.PlayerID) bool
	IsEnd() bool
	PossibleTurns() []game.Pos
	Stat() map[game.PlayerID]game.Stat // dead players are absent
	LastTurn() (game.Pos, bool)

	// HumanTurn makes the move of the current player, who must be a human.
	HumanTurn(pos game.Pos) error
	// BotTurn makes the move of the current player, who must be a bot.
	BotTurn(ctx context.Context) (game.Pos, error)

	Close() error
}

// State is everything needed to start a game.
type State struct {
	Board game.Board
	Bots  map[game.PlayerID]string // bot names, see bot.ByName. The other players are humans.
	Order []game.PlayerID          // nil means shuffled
}

// Winner returns the last player alive, if the game has ended with one.
func Winner(g Game) (game.PlayerID, bool) {
	order := g.Order()
	if !g.IsEnd() || len(order) != 1 {
		return game.NoPlayer, false
	}
	return order[0], true
}

// players is the bookkeeping shared by AsyncGame and SimpleGame.
type players struct {
	board   game.Board
	all     []game.PlayerID
	bots    map[game.PlayerID]game.Bot
	current game.PlayerID

	lastTurn    game.Pos
	hasLastTurn bool
}

func makePlayers(st State, seed int64) (players, error) {
	if st.Board == nil {
		return players{}, errors.New("No board")
	}
	onBoard := st.Board.Players()
	order := st.Order
	if order == nil {
		order = append([]game.PlayerID{}, onBoard...)
		r := rand.New(rand.NewSource(seed))
		r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	} else {
		order = append([]game.PlayerID{}, order...)
		if !sameSet(order, onBoard) {
			return players{}, errors.Errorf("Order %v is incomplete: the board has %v", order, onBoard)
		}
	}
	if len(order) == 0 {
		return players{}, errors.New("A game should have players")
	}

	bots := make(map[game.PlayerID]game.Bot, len(st.Bots))
	for id, name := range st.Bots {
		b, err := bot.ByName(name, id, seed+int64(id))
		if err != nil {
			return players{}, err
		}
		bots[id] = b
	}
	retVal := players{
		board: st.Board,
		all:   order,
		bots:  bots,
	}
	for _, p := range order {
		if retVal.board.IsAlive(p) {
			retVal.current = p
			break
		}
	}
	for id := range bots {
		if !lo.Contains(order, id) {
			return players{}, errors.Errorf("Bot %v is not on the board", id)
		}
	}
	return retVal, nil
}

func sameSet(a, b []game.PlayerID) bool {
	return len(a) == len(b) && len(lo.Uniq(a)) == len(a) && lo.Every(a, b) && lo.Every(b, a)
}

func (g *players) Board() game.Board            { return g.board }
func (g *players) Players() []game.PlayerID     { return append([]game.PlayerID{}, g.all...) }
func (g *players) CurrentPlayer() game.PlayerID { return g.current }
func (g *players) PossibleTurns() []game.Pos    { return g.board.PossOf(g.current) }
func (g *players) LastTurn() (game.Pos, bool)   { return g.lastTurn, g.hasLastTurn }
func (g *players) IsBot(p game.PlayerID) bool {
	_, ok := g.bots[p]
	return ok
}

// Order lists the players alive, starting from the current one.
func (g *players) Order() []game.PlayerID {
	start := indexOf(g.all, g.current)
	retVal := make([]game.PlayerID, 0, len(g.all))
	for i := range g.all {
		p := g.all[(start+i)%len(g.all)]
		if g.board.IsAlive(p) {
			retVal = append(retVal, p)
		}
	}
	return retVal
}

func (g *players) IsEnd() bool { return game.IsDecided(g.Order()) }

func (g *players) Stat() map[game.PlayerID]game.Stat {
	retVal := make(map[game.PlayerID]game.Stat, len(g.all))
	for _, p := range g.all {
		if g.board.IsAlive(p) {
			retVal[p] = game.StatOf(g.board, p)
		}
	}
	return retVal
}

func (g *players) botList() []game.Bot {
	retVal := make([]game.Bot, 0, len(g.bots))
	for _, p := range g.all {
		if b, ok := g.bots[p]; ok {
			retVal = append(retVal, b)
		}
	}
	return retVal
}

// checkTurn returns an error if the current player may not make a move of the given kind.
func (g *players) checkTurn(byBot bool) error {
	if g.IsEnd() {
		return ErrGameEnded
	}
	if g.IsBot(g.current) != byBot {
		if byBot {
			return ErrNotBotTurn
		}
		return ErrNotHumanTurn
	}
	return nil
}

// makeTurn records the move of the current player. board and order are the
// position after the move as computed elsewhere; they must agree with the game.
func (g *players) makeTurn(pos game.Pos, board game.Board, order []game.PlayerID) error {
	g.lastTurn, g.hasLastTurn = pos, true
	g.board = board
	g.current = g.nextPlayer()
	if len(order) == 0 || order[0] != g.current {
		return errors.Errorf("Order %v after %v disagrees with the current player %v", order, pos, g.current)
	}
	return nil
}

func (g *players) nextPlayer() game.PlayerID {
	start := indexOf(g.all, g.current)
	for i := 1; i <= len(g.all); i++ {
		p := g.all[(start+i)%len(g.all)]
		if g.board.IsAlive(p) {
			return p
		}
	}
	return g.current
}

func indexOf(order []game.PlayerID, p game.PlayerID) int {
	for i, o := range order {
		if o == p {
			return i
		}
	}
	return 0
}
