package domain

import "encoding/json"

// GameMode selects how rounds are chosen and resolved.
type GameMode string

const (
	// ModeRoundByRound resolves one round at a time with a results screen between rounds.
	ModeRoundByRound GameMode = "round-by-round"
	// ModeDeck pre-commits an ordered board per round and resolves all rounds at once.
	ModeDeck GameMode = "deck"
)

// Side identifies which duellist a board or score belongs to.
type Side string

const (
	SidePlayer   Side = "player"
	SideOpponent Side = "opponent"
)

// Winner records the resolved outcome of a round or a whole game.
type Winner string

const (
	WinnerPlayer   Winner = "player"
	WinnerOpponent Winner = "opponent"
	WinnerTie      Winner = "tie"
)

// Position is a terminal grid coordinate. Informational only; the core
// never derives anything from it.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Board is an opaque board reference. The core reads only ID and Size;
// grid contents travel untouched in Payload for the editor/validator
// collaborators.
type Board struct {
	ID      string          `json:"id"`
	Size    int             `json:"boardSize"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	out := *b
	if b.Payload != nil {
		out.Payload = append(json.RawMessage(nil), b.Payload...)
	}
	return &out
}

// RoundEntry is one slot in the round-history log. An entry is partial
// while either board is unset; it is complete once both boards and the
// winner are set. Entries are appended at the next index or replaced in
// place, never deleted or reordered.
type RoundEntry struct {
	Round                 int       `json:"round"`
	PlayerBoard           *Board    `json:"playerBoard,omitempty"`
	OpponentBoard         *Board    `json:"opponentBoard,omitempty"`
	Winner                Winner    `json:"winner,omitempty"`
	PlayerPoints          int       `json:"playerPoints,omitempty"`
	OpponentPoints        int       `json:"opponentPoints,omitempty"`
	PlayerFinalPosition   *Position `json:"playerFinalPosition,omitempty"`
	OpponentFinalPosition *Position `json:"opponentFinalPosition,omitempty"`
}

// Clone returns a deep copy of the entry.
func (e RoundEntry) Clone() RoundEntry {
	out := e
	out.PlayerBoard = e.PlayerBoard.Clone()
	out.OpponentBoard = e.OpponentBoard.Clone()
	if e.PlayerFinalPosition != nil {
		p := *e.PlayerFinalPosition
		out.PlayerFinalPosition = &p
	}
	if e.OpponentFinalPosition != nil {
		p := *e.OpponentFinalPosition
		out.OpponentFinalPosition = &p
	}
	return out
}

// PlayerStats aggregates lifetime results across games for a profile.
type PlayerStats struct {
	Games  int `json:"games"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// UserProfile identifies the local player. It survives ResetGame.
type UserProfile struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Stats PlayerStats `json:"stats"`
}

// Opponent describes the remote player as the local client knows them.
type Opponent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GameState is the single object serialized into the link. It is owned
// by the state container and replaced wholesale on every mutation.
type GameState struct {
	Profile       UserProfile  `json:"userProfile"`
	Opponent      *Opponent    `json:"opponent,omitempty"`
	GameID        string       `json:"gameId,omitempty"`
	CreatorID     string       `json:"creatorId,omitempty"`
	Mode          GameMode     `json:"gameMode,omitempty"`
	BoardSize     int          `json:"boardSize,omitempty"`
	RoundHistory  []RoundEntry `json:"roundHistory"`
	PlayerDeck    []Board      `json:"playerSelectedDeck,omitempty"`
	OpponentDeck  []Board      `json:"opponentSelectedDeck,omitempty"`
	PhaseOverride *Phase       `json:"phaseOverride,omitempty"`

	// Checksum is reset to empty on any mutation and recomputed only by
	// the codec at serialization time.
	Checksum string `json:"checksum,omitempty"`
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	if s.Opponent != nil {
		o := *s.Opponent
		out.Opponent = &o
	}
	if s.RoundHistory != nil {
		out.RoundHistory = make([]RoundEntry, len(s.RoundHistory))
		for i, e := range s.RoundHistory {
			out.RoundHistory[i] = e.Clone()
		}
	}
	out.PlayerDeck = cloneBoards(s.PlayerDeck)
	out.OpponentDeck = cloneBoards(s.OpponentDeck)
	if s.PhaseOverride != nil {
		p := s.PhaseOverride.Clone()
		out.PhaseOverride = &p
	}
	return &out
}

func cloneBoards(boards []Board) []Board {
	if boards == nil {
		return nil
	}
	out := make([]Board, len(boards))
	for i, b := range boards {
		c := b
		if b.Payload != nil {
			c.Payload = append(json.RawMessage(nil), b.Payload...)
		}
		out[i] = c
	}
	return out
}
