package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"

	"github.com/clonium/clonium"
	"github.com/clonium/clonium/game"
	board "github.com/clonium/clonium/game/clonium"
	"github.com/clonium/clonium/gtp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	configFile = flag.String("config", "", "TOML config file")
	size       = flag.Int("size", 0, "side of a square board, 0 for the tower board")
	nPlayers   = flag.Int("players", 4, "number of players, 1 to 4")
	bots       = flag.String("bots", "", "bots as id:name pairs, e.g. \"1:random,2:level\". Players without a bot are humans.")
	human      = flag.Bool("human", false, "play against the bots over the text protocol on stdin/stdout")
	games      = flag.Int("games", 1, "number of bot-only games to play")
	maxPlies   = flag.Int("maxplies", 1000, "stop a bot-only game after this many turns")
	statsFile  = flag.String("stats", "", "write the results of bot-only games to this CSV file")
	dotFile    = flag.String("dot", "", "write the turn tree of the last game in DOT format to this file")
	httpAddr   = flag.String("http", "", "serve a websocket feed of the moves at this address, e.g. :8080")
	verbose    = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, logger); err != nil {
		logger.Fatal().Msgf("%+v", err)
	}
}

func run(ctx context.Context, logger zerolog.Logger) error {
	conf := clonium.DefaultConfig()
	if *configFile != "" {
		var err error
		if conf, err = clonium.LoadConfig(*configFile); err != nil {
			return err
		}
	}
	conf.Logger = logger

	st, err := makeState()
	if err != nil {
		return err
	}
	if *human {
		return playHuman(st, conf)
	}
	return playBots(ctx, st, conf, logger)
}

func makeState() (clonium.State, error) {
	b := board.Tower()
	if *size > 0 {
		b = board.Square(*size)
	}
	b, err := board.Spawn(b, *nPlayers)
	if err != nil {
		return clonium.State{}, err
	}
	botMap, err := parseBots(*bots)
	if err != nil {
		return clonium.State{}, err
	}
	return clonium.State{Board: b, Bots: botMap}, nil
}

func parseBots(s string) (map[game.PlayerID]string, error) {
	retVal := make(map[game.PlayerID]string)
	if s == "" {
		return retVal, nil
	}
	for _, pair := range strings.Split(s, ",") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			return nil, errors.Errorf("Unable to parse bot %q: expected id:name", pair)
		}
		id, err := strconv.Atoi(strings.TrimSpace(kv[0]))
		if err != nil {
			return nil, errors.WithMessagef(err, "Unable to parse the id of bot %q", pair)
		}
		retVal[game.PlayerID(id)] = strings.TrimSpace(kv[1])
	}
	return retVal, nil
}

func playHuman(st clonium.State, conf clonium.Config) error {
	g, err := clonium.NewAsyncGame(st, conf)
	if err != nil {
		return err
	}
	defer g.Close()

	e := gtp.New(g, "clonium", "1", nil).WithLogger(conf.Logger)
	ch, ret := e.Start()
	fmt.Printf("order: %v\n%v", g.Players(), g.Board())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		ch <- scanner.Text()
		reply, ok := <-ret
		if !ok {
			break
		}
		fmt.Print(reply)
	}
	if err := scanner.Err(); err != nil {
		return errors.WithStack(err)
	}
	return writeDot(g)
}

func playBots(ctx context.Context, st clonium.State, conf clonium.Config, logger zerolog.Logger) error {
	for _, p := range st.Board.Players() {
		if _, ok := st.Bots[p]; !ok {
			st.Bots[p] = "random"
		}
	}

	var enc *Encoder
	if *httpAddr != "" {
		enc = NewEncoder(logger)
		mux := http.NewServeMux()
		mux.Handle("/ws", enc)
		go func() {
			logger.Info().Msgf("ws://localhost%s/ws", *httpAddr)
			if err := http.ListenAndServe(*httpAddr, mux); err != nil {
				logger.Error().Err(err).Msg("http")
			}
		}()
	}

	stats, err := clonium.PlayMany(ctx, *games, runtime.NumCPU(), func(i int) (*clonium.Arena, error) {
		c := conf
		c.Seed = conf.Seed + int64(i)
		c.Logger = logger.With().Int("game", i).Logger()
		g, err := clonium.NewAsyncGame(st, c)
		if err != nil {
			return nil, err
		}
		a := clonium.NewArena(g, nil, c)
		a.MaxPlies = *maxPlies
		a.OnEnd = func(winner game.PlayerID, plies int) {
			if enc != nil {
				enc.Ended(i, winner, plies)
			}
			if i == *games-1 {
				if err := writeDot(g); err != nil {
					c.Logger.Error().Err(err).Msg("dot")
				}
			}
		}
		if enc != nil {
			a.OnTurn = func(p game.PlayerID, pos game.Pos) { enc.Move(i, p, pos) }
		}
		return a, nil
	})
	if err != nil {
		return err
	}

	for _, p := range st.Board.Players() {
		logger.Info().Msgf("%v (%s) won %.1f%%", p, st.Bots[p], 100*stats.WinRate(p))
	}
	if *statsFile != "" {
		if err := stats.Dump(*statsFile); err != nil {
			return errors.WithMessage(err, "Unable to write the statistics")
		}
	} else if err := stats.WriteCSV(os.Stdout); err != nil {
		return err
	}
	return nil
}

func writeDot(g *clonium.AsyncGame) error {
	if *dotFile == "" {
		return nil
	}
	dot, err := g.Tree().ToDot()
	if err != nil {
		return errors.WithMessage(err, "Unable to render the turn tree")
	}
	return errors.WithStack(os.WriteFile(*dotFile, []byte(dot), 0644))
}
