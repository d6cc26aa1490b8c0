package clonium

import (
	"context"
	"time"

	"github.com/clonium/clonium/game"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// HumanInput supplies the moves of human players.
type HumanInput interface {
	HumanTurn(ctx context.Context, g Game) (game.Pos, error)
}

// HumanInputFunc is a function that is a HumanInput.
type HumanInputFunc func(ctx context.Context, g Game) (game.Pos, error)

func (f HumanInputFunc) HumanTurn(ctx context.Context, g Game) (game.Pos, error) { return f(ctx, g) }

// Arena drives a game until it ends.
type Arena struct {
	Game  Game
	Human HumanInput // may be nil if every player is a bot

	// config
	BotMinTime time.Duration
	MaxPlies   int // 0 means no limit

	// OnTurn is called after every move, OnEnd once the game is over or stopped.
	OnTurn func(p game.PlayerID, pos game.Pos)
	OnEnd  func(winner game.PlayerID, plies int)

	log zerolog.Logger
}

func NewArena(g Game, human HumanInput, conf Config) *Arena {
	return &Arena{
		Game:       g,
		Human:      human,
		BotMinTime: conf.BotMinTime.Duration,
		log:        conf.Logger,
	}
}

// Play plays the game and returns the winner, or game.NoPlayer if the game
// was stopped at MaxPlies.
func (a *Arena) Play(ctx context.Context) (winner game.PlayerID, plies int, err error) {
	g := a.Game
	for !g.IsEnd() {
		if a.MaxPlies > 0 && plies >= a.MaxPlies {
			a.log.Info().Int("plies", plies).Msg("stopped playing")
			a.ended(game.NoPlayer, plies)
			return game.NoPlayer, plies, nil
		}
		p := g.CurrentPlayer()
		var pos game.Pos
		if g.IsBot(p) {
			if pos, err = a.botTurn(ctx); err != nil {
				return game.NoPlayer, plies, errors.WithMessagef(err, "Turn %d of %v", plies, p)
			}
		} else {
			if a.Human == nil {
				return game.NoPlayer, plies, errors.Errorf("No input for human %v", p)
			}
			if pos, err = a.Human.HumanTurn(ctx, g); err != nil {
				return game.NoPlayer, plies, errors.WithMessagef(err, "Turn %d of %v", plies, p)
			}
			if err = g.HumanTurn(pos); err != nil {
				return game.NoPlayer, plies, errors.WithMessagef(err, "Turn %d of %v", plies, p)
			}
		}
		plies++
		a.log.Debug().Int("ply", plies).Msgf("%v played %v", p, pos)
		if a.OnTurn != nil {
			a.OnTurn(p, pos)
		}
	}
	winner, _ = Winner(g)
	a.log.Info().Int("plies", plies).Msgf("game ended: %v won", winner)
	a.ended(winner, plies)
	return winner, plies, nil
}

func (a *Arena) ended(winner game.PlayerID, plies int) {
	if a.OnEnd != nil {
		a.OnEnd(winner, plies)
	}
}

func (a *Arena) botTurn(ctx context.Context) (game.Pos, error) {
	minTime := time.NewTimer(a.BotMinTime)
	defer minTime.Stop()
	pos, err := a.Game.BotTurn(ctx)
	if err != nil {
		return pos, err
	}
	select {
	case <-minTime.C:
	case <-ctx.Done():
		return pos, ctx.Err()
	}
	return pos, nil
}

// PlayMany plays games made by newGame, at most parallel at a time, and
// collects the results. Every game is closed once played.
func PlayMany(ctx context.Context, n, parallel int, newGame func(i int) (*Arena, error)) (*Statistics, error) {
	stats := NewStatistics()
	eg, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		eg.SetLimit(parallel)
	}
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			a, err := newGame(i)
			if err != nil {
				return errors.WithMessagef(err, "Unable to start game %d", i)
			}
			defer a.Game.Close()
			winner, plies, err := a.Play(ctx)
			if err != nil {
				return errors.WithMessagef(err, "Game %d", i)
			}
			stats.Record(i, winner, plies)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}
