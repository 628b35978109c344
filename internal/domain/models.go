package domain

import (
	"fmt"
	"sort"
	"time"
)

// Player identity is the numeric id. Names change and are informational only.
type Player struct {
	ID        uint64
	Name      string
	Character Character
}

func (p Player) Key() uint64 {
	return p.ID
}

func (p Player) Equal(other Player) bool {
	return p.ID == other.ID
}

type Side uint8

const (
	Player1 Side = iota + 1
	Player2
)

func (s Side) String() string {
	switch s {
	case Player1:
		return "P1"
	case Player2:
		return "P2"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

type Match struct {
	Floor      Floor
	Timestamp  time.Time // UTC
	Players    [2]Player
	WinnerSide Side
}

func (m Match) Winner() Player {
	if m.WinnerSide == Player2 {
		return m.Players[1]
	}
	return m.Players[0]
}

func (m Match) Loser() Player {
	if m.WinnerSide == Player2 {
		return m.Players[0]
	}
	return m.Players[1]
}

// MatchKey identifies a real match regardless of which page it was read from.
type MatchKey struct {
	Timestamp int64
	Player1   uint64
	Player2   uint64
}

func (m Match) Key() MatchKey {
	return MatchKey{
		Timestamp: m.Timestamp.Unix(),
		Player1:   m.Players[0].ID,
		Player2:   m.Players[1].ID,
	}
}

func (m Match) Equal(other Match) bool {
	return m.Key() == other.Key()
}

// MatchSet deduplicates matches by MatchKey. The first match seen for a key is kept.
type MatchSet struct {
	items map[MatchKey]Match
}

func NewMatchSet() *MatchSet {
	return &MatchSet{items: make(map[MatchKey]Match)}
}

// Add reports whether m was not already present.
func (s *MatchSet) Add(m Match) bool {
	k := m.Key()
	if _, ok := s.items[k]; ok {
		return false
	}
	s.items[k] = m
	return true
}

func (s *MatchSet) Contains(m Match) bool {
	_, ok := s.items[m.Key()]
	return ok
}

func (s *MatchSet) Len() int {
	return len(s.items)
}

// Slice returns the matches newest first, ties broken by player ids.
func (s *MatchSet) Slice() []Match {
	out := make([]Match, 0, len(s.items))
	for _, m := range s.items {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key(), out[j].Key()
		if a.Timestamp != b.Timestamp {
			return a.Timestamp > b.Timestamp
		}
		if a.Player1 != b.Player1 {
			return a.Player1 < b.Player1
		}
		return a.Player2 < b.Player2
	})
	return out
}

type User struct {
	ID      string
	Name    string
	Comment string
}
