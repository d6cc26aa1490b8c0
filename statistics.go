package clonium

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/clonium/clonium/game"
)

// Record is the outcome of one game.
type Record struct {
	Game   int
	Winner game.PlayerID // NoPlayer if the game was stopped
	Plies  int
}

// Statistics collects the outcomes of games. It is safe for concurrent use.
type Statistics struct {
	sync.Mutex
	Records []Record
	Wins    map[game.PlayerID]int
}

func NewStatistics() *Statistics {
	return &Statistics{
		Records: make([]Record, 0, 64),
		Wins:    make(map[game.PlayerID]int),
	}
}

func (s *Statistics) Record(gameNumber int, winner game.PlayerID, plies int) {
	s.Lock()
	defer s.Unlock()
	s.Records = append(s.Records, Record{Game: gameNumber, Winner: winner, Plies: plies})
	if winner != game.NoPlayer {
		s.Wins[winner]++
	}
}

// WinRate is the share of recorded games the player won.
func (s *Statistics) WinRate(p game.PlayerID) float64 {
	s.Lock()
	defer s.Unlock()
	if len(s.Records) == 0 {
		return 0
	}
	return float64(s.Wins[p]) / float64(len(s.Records))
}

// WriteCSV writes one line per game, ordered by game number.
func (s *Statistics) WriteCSV(w io.Writer) error {
	s.Lock()
	records := append([]Record{}, s.Records...)
	s.Unlock()
	sort.Slice(records, func(i, j int) bool { return records[i].Game < records[j].Game })

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"game", "winner", "plies"}); err != nil {
		return err
	}
	for _, r := range records {
		winner := ""
		if r.Winner != game.NoPlayer {
			winner = strconv.Itoa(int(r.Winner))
		}
		if err := cw.Write([]string{strconv.Itoa(r.Game), winner, strconv.Itoa(r.Plies)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Dump writes the statistics to a CSV file.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.WriteCSV(f)
}
