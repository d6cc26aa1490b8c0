// Package gtp speaks a text protocol modelled on the Go Text Protocol to drive
// a Clonium game: one command per line in, "= result" or "? error" out.
package gtp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/clonium/clonium"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Engine struct {
	g clonium.Game

	known map[string]Command

	ch  chan string
	ret chan string

	// Timeout bounds genmove. 0 means no limit.
	Timeout       time.Duration
	name, version string
	log           zerolog.Logger
}

func New(g clonium.Game, name, version string, known map[string]Command) *Engine {
	if known == nil {
		known = StandardLib()
	}
	return &Engine{
		g:       g,
		known:   known,
		name:    name,
		version: version,
		log:     zerolog.Nop(),
	}
}

// WithLogger sets the logger of the engine.
func (e *Engine) WithLogger(l zerolog.Logger) *Engine {
	e.log = l
	return e
}

// Start runs the engine until input is closed or "quit" is received. Every
// command gets exactly one reply on output; output is closed when the engine stops.
func (e *Engine) Start() (input chan<- string, output <-chan string) {
	e.ch = make(chan string)
	e.ret = make(chan string)
	go e.start()
	return e.ch, e.ret
}

func (e *Engine) Game() clonium.Game { return e.g }

func (e *Engine) start() {
	defer close(e.ret)
	for cmd := range e.ch {
		id, x, args, err := e.parse(cmd)
		if x == nil && err == nil {
			continue
		}
		if err != nil {
			e.ret <- handleErr(id, err)
			continue
		}
		id, result, err := x.Do(id, args, e)
		e.log.Debug().Str("cmd", cmd).Err(err).Msg("gtp")
		e.ret <- handleResult(id, result, err)
		if _, ok := x.(quitter); ok {
			return
		}
	}
}

func (e *Engine) context() (context.Context, context.CancelFunc) {
	if e.Timeout > 0 {
		return context.WithTimeout(context.Background(), e.Timeout)
	}
	return context.WithCancel(context.Background())
}

// refer to this
// https://www.lysator.liu.se/%7Egunnar/gtp/gtp2-spec-draft2/gtp2-spec.html#SECTION00030000000000000000
func (e *Engine) parse(cmd string) (id int, x Command, args []string, err error) {
	cmd = preprocess(cmd)
	tokens := strings.Fields(cmd)
	if len(tokens) == 0 {
		return -1, nil, nil, nil
	}
	if id, err = strconv.Atoi(tokens[0]); err == nil {
		// we've consumed ID
		tokens = tokens[1:]
	} else {
		// set err to nil because ID is optional
		err = nil
		id = -1
	}

	if len(tokens) == 0 {
		return id, nil, nil, nil // an ID alone is ignored
	}

	var ok bool
	if x, ok = e.known[tokens[0]]; !ok {
		return id, nil, nil, errors.Errorf("Unknown command %q", tokens[0])
	}
	if len(tokens) > 1 {
		args = tokens[1:]
	}
	return
}

func preprocess(a string) string {
	if i := strings.IndexByte(a, '#'); i >= 0 {
		a = a[:i]
	}
	return strings.ToLower(strings.TrimSpace(a))
}

func handleErr(id int, err error) string {
	if id != -1 {
		return fmt.Sprintf("? %d %v\n\n", id, err)
	}
	return fmt.Sprintf("? %v\n\n", err)
}

func handleResult(id int, result string, err error) string {
	if err != nil {
		return handleErr(id, err)
	}

	if id != -1 {
		return fmt.Sprintf("= %d %v\n\n", id, result)
	}
	return fmt.Sprintf("= %v\n\n", result)
}
