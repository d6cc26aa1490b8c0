package clonium

import (
	"context"

	"github.com/clonium/clonium/game"
	"github.com/clonium/clonium/turns"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// AsyncGame is a Game whose bot turns are precomputed by a turns.Tree.
type AsyncGame struct {
	players
	tree *turns.Tree
	log  zerolog.Logger
}

var _ Game = &AsyncGame{}

// NewAsyncGame starts a game. The tree starts working right away.
func NewAsyncGame(st State, conf Config) (*AsyncGame, error) {
	if !conf.IsValid() {
		return nil, errors.Errorf("Invalid config %+v", conf)
	}
	p, err := makePlayers(st, conf.Seed)
	if err != nil {
		return nil, err
	}
	tconf := conf.Turns
	tconf.Logger = conf.Logger.With().Str("component", "turns").Logger()
	start := turns.Trans{Board: p.board, Order: p.Order()}
	tree, err := turns.New(start, p.botList(), tconf)
	if err != nil {
		return nil, errors.WithMessage(err, "Unable to create the turn tree")
	}
	g := &AsyncGame{
		players: p,
		tree:    tree,
		log:     conf.Logger,
	}
	g.log.Info().Interface("order", p.all).Msg("new async game")
	return g, nil
}

func (g *AsyncGame) HumanTurn(pos game.Pos) error {
	if err := g.checkTurn(false); err != nil {
		return err
	}
	if !game.Contains(g.PossibleTurns(), pos) {
		return game.MoveError{Player: g.current, Pos: pos}
	}
	trans, ok := g.tree.GivenHumanTurn(pos)
	if !ok {
		return errors.Errorf("Turn tree rejected %v of %v", pos, g.current)
	}
	return g.makeTurn(pos, trans.Board, trans.Order)
}

func (g *AsyncGame) BotTurn(ctx context.Context) (game.Pos, error) {
	if err := g.checkTurn(true); err != nil {
		return game.Pos{}, err
	}
	pos, trans, err := g.tree.RequestBotTurn(ctx)
	if err != nil {
		return game.Pos{}, err
	}
	if !game.Contains(g.PossibleTurns(), pos) {
		return game.Pos{}, game.MoveError{Player: g.current, Pos: pos}
	}
	return pos, g.makeTurn(pos, trans.Board, trans.Order)
}

// Stats returns the statistics of the underlying turn tree.
func (g *AsyncGame) Stats() turns.Stats { return g.tree.Stats() }

// Tree returns the underlying turn tree, for diagnosis.
func (g *AsyncGame) Tree() *turns.Tree { return g.tree }

func (g *AsyncGame) Close() error { return g.tree.Close() }
