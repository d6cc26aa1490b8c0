package main

import (
	"net/http"

	"github.com/clonium/clonium/game"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Encoder streams the moves of the games being played to websocket clients.
type Encoder struct {
	move chan move
	info chan info
	log  zerolog.Logger
}

type move struct {
	Game   int           `json:"game"`
	Player game.PlayerID `json:"player"`
	X      int           `json:"x"`
	Y      int           `json:"y"`
}

type info struct {
	Game   int           `json:"game"`
	Winner game.PlayerID `json:"winner"`
	Plies  int           `json:"plies"`
}

var upgrader = websocket.Upgrader{} // use default options

func NewEncoder(log zerolog.Logger) *Encoder {
	return &Encoder{
		move: make(chan move, 64),
		info: make(chan info, 8),
		log:  log,
	}
}

func (enc *Encoder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		enc.log.Error().Err(err).Msg("upgrade")
		return
	}
	defer c.Close()
	for {
		var v interface{}
		select {
		case m := <-enc.move:
			v = m
		case i := <-enc.info:
			v = i
		case <-r.Context().Done():
			return
		}
		if err := c.WriteJSON(v); err != nil {
			enc.log.Debug().Err(err).Msg("write")
			return
		}
	}
}

// Move publishes a move. Up to 64 moves wait for a client, the oldest first;
// once they are queued further moves are dropped.
func (enc *Encoder) Move(gameNumber int, p game.PlayerID, pos game.Pos) {
	select {
	case enc.move <- move{Game: gameNumber, Player: p, X: pos.X, Y: pos.Y}:
	default:
	}
}

// Ended publishes the outcome of a game. Up to 8 outcomes wait for a client.
func (enc *Encoder) Ended(gameNumber int, winner game.PlayerID, plies int) {
	select {
	case enc.info <- info{Game: gameNumber, Winner: winner, Plies: plies}:
	default:
	}
}
