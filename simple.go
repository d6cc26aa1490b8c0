package clonium

import (
	"context"

	"github.com/clonium/clonium/game"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// SimpleGame is a Game that computes bot turns only when asked to.
type SimpleGame struct {
	players
	log zerolog.Logger
}

var _ Game = &SimpleGame{}

func NewSimpleGame(st State, conf Config) (*SimpleGame, error) {
	if !conf.IsValid() {
		return nil, errors.Errorf("Invalid config %+v", conf)
	}
	p, err := makePlayers(st, conf.Seed)
	if err != nil {
		return nil, err
	}
	g := &SimpleGame{players: p, log: conf.Logger}
	g.log.Info().Interface("order", p.all).Msg("new simple game")
	return g, nil
}

func (g *SimpleGame) HumanTurn(pos game.Pos) error {
	if err := g.checkTurn(false); err != nil {
		return err
	}
	return g.apply(pos)
}

// BotTurn runs the bot in the background so that ctx can interrupt the wait.
func (g *SimpleGame) BotTurn(ctx context.Context) (game.Pos, error) {
	if err := g.checkTurn(true); err != nil {
		return game.Pos{}, err
	}
	b := g.bots[g.current]
	board, order := g.board, g.Order()
	ch := make(chan game.Pos, 1)
	go func() { ch <- b.MakeTurn(board, order) }()

	select {
	case pos := <-ch:
		return pos, g.apply(pos)
	case <-ctx.Done():
		return game.Pos{}, ctx.Err()
	}
}

func (g *SimpleGame) apply(pos game.Pos) error {
	if !game.Contains(g.PossibleTurns(), pos) {
		return game.MoveError{Player: g.current, Pos: pos}
	}
	board, order := g.board.Apply(pos, g.Order())
	return g.makeTurn(pos, board, order)
}

func (g *SimpleGame) Close() error { return nil }
