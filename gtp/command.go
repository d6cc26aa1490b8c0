package gtp

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/clonium/clonium/game"
	"github.com/clonium/clonium/turns"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type Command interface {
	Do(id int, args []string, e *Engine) (int, string, error)
}

type stdlib func(e *Engine) string

type stdlib2 func(e *Engine, args []string) (string, error)

func (f stdlib) Do(id int, args []string, e *Engine) (int, string, error) {
	str := f(e)
	return id, str, nil
}

func (f stdlib2) Do(id int, args []string, e *Engine) (int, string, error) {
	str, err := f(e, args)
	return id, str, err
}

// quitter stops the engine after replying.
type quitter struct{}

func (quitter) Do(id int, args []string, e *Engine) (int, string, error) { return id, "", nil }

func protocolVersion(e *Engine) string { return "2" }
func name(e *Engine) string            { return e.name }
func version(e *Engine) string         { return e.version }

func listCommands(e *Engine) string {
	cmds := make([]string, 0, len(e.known))
	for c := range e.known {
		cmds = append(cmds, c)
	}
	sort.Strings(cmds)
	return strings.Join(cmds, "\n")
}

func showboard(e *Engine) string { return fmt.Sprintf("\n%v", e.g.Board()) }

func order(e *Engine) string { return joinPlayers(e.g.Order()) }

func stat(e *Engine) string {
	var buf bytes.Buffer
	st := e.g.Stat()
	for i, p := range e.g.Order() {
		if i > 0 {
			buf.WriteByte('\n')
		}
		s := st[p]
		fmt.Fprintf(&buf, "%d %d %d", p, s.Chips, s.Levels)
	}
	return buf.String()
}

func knownCommand(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"known_command\"")
	}
	if _, ok := e.known[args[0]]; ok {
		return "true", nil
	}
	return "false", nil
}

func play(e *Engine, args []string) (string, error) {
	if len(args) < 2 {
		return "", errors.New("Not enough arguments for \"play\"")
	}
	pos, err := parsePos(args[0], args[1])
	if err != nil {
		return "", err
	}
	if err := e.g.HumanTurn(pos); err != nil {
		return "", errors.WithMessage(err, "Illegal move")
	}
	return "", nil
}

func genmove(e *Engine, args []string) (string, error) {
	ctx, cancel := e.context()
	defer cancel()
	pos, err := e.g.BotTurn(ctx)
	if err != nil {
		return "", errors.WithMessage(err, "Unable to generate move")
	}
	return fmt.Sprintf("%d %d", pos.X, pos.Y), nil
}

func dump(e *Engine, args []string) (string, error) {
	t, ok := e.g.(interface{ Tree() *turns.Tree })
	if !ok {
		return "", errors.New("The game has no turn tree")
	}
	if len(args) > 0 && args[0] == "dot" {
		return t.Tree().ToDot()
	}
	return "\n" + t.Tree().Dump(), nil
}

func parsePos(x, y string) (game.Pos, error) {
	px, err := strconv.Atoi(x)
	if err != nil {
		return game.Pos{}, errors.WithMessage(err, "Unable to parse the column")
	}
	py, err := strconv.Atoi(y)
	if err != nil {
		return game.Pos{}, errors.WithMessage(err, "Unable to parse the row")
	}
	return game.Pos{X: px, Y: py}, nil
}

func joinPlayers(ps []game.PlayerID) string {
	strs := lo.Map(ps, func(p game.PlayerID, _ int) string { return strconv.Itoa(int(p)) })
	return strings.Join(strs, " ")
}

func StandardLib() map[string]Command {
	return map[string]Command{
		"protocol_version": stdlib(protocolVersion),
		"name":             stdlib(name),
		"version":          stdlib(version),
		"list_commands":    stdlib(listCommands),
		"quit":             quitter{},
		"showboard":        stdlib(showboard),
		"order":            stdlib(order),
		"stat":             stdlib(stat),

		"known_command": stdlib2(knownCommand),
		"play":          stdlib2(play),
		"genmove":       stdlib2(genmove),
		"dump":          stdlib2(dump),
	}
}
