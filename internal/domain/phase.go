package domain

// PhaseKind discriminates the Phase union.
type PhaseKind string

const (
	// PhaseGameModeSelection means no game mode has been chosen yet.
	PhaseGameModeSelection PhaseKind = "game-mode-selection"
	// PhaseOpponentSelection means a mode exists but no opponent is set.
	PhaseOpponentSelection PhaseKind = "opponent-selection"
	// PhaseDeckSelection means deck mode is waiting on at least one deck.
	PhaseDeckSelection PhaseKind = "deck-selection"
	// PhaseBoardSelection means the player must pick a board for Round.
	PhaseBoardSelection PhaseKind = "board-selection"
	// PhaseWaitingForOpponent means the player's board is in and the
	// opponent's is not.
	PhaseWaitingForOpponent PhaseKind = "waiting-for-opponent"
	// PhaseRoundResults shows the resolved entry for the round that just
	// completed. Leaving it has no verb: selecting the next round's board
	// grows the log and derivation moves on by itself.
	PhaseRoundResults PhaseKind = "round-results"
	// PhaseAllRoundsResults shows every resolved entry at once (deck mode).
	PhaseAllRoundsResults PhaseKind = "all-rounds-results"
	// PhaseGameOver carries the overall winner from summed scores.
	PhaseGameOver PhaseKind = "game-over"
)

// Override-only kinds. These cannot be derived from the log and appear
// only via GameState.PhaseOverride.
const (
	PhaseProfileSetup       PhaseKind = "profile-setup"
	PhaseOpponentManagement PhaseKind = "opponent-management"
	PhaseDeckManagement     PhaseKind = "deck-management"
	PhaseTutorial           PhaseKind = "tutorial"
	PhaseShareResults       PhaseKind = "share-results"
)

// Phase is the discriminated UI-relevant state. Only the fields that
// the Kind calls for are set; everything else stays zero.
type Phase struct {
	Kind    PhaseKind    `json:"kind"`
	Round   int          `json:"round,omitempty"`
	Result  *RoundEntry  `json:"result,omitempty"`
	Results []RoundEntry `json:"results,omitempty"`
	Winner  Winner       `json:"winner,omitempty"`
}

// Clone returns a deep copy of the phase.
func (p Phase) Clone() Phase {
	out := p
	if p.Result != nil {
		r := p.Result.Clone()
		out.Result = &r
	}
	if p.Results != nil {
		out.Results = make([]RoundEntry, len(p.Results))
		for i, e := range p.Results {
			out.Results[i] = e.Clone()
		}
	}
	return out
}

// DerivePhase computes the phase from the state. Total and pure: the
// same state always maps to the same phase, and nothing is cached. The
// override wins, then session prerequisites, then the mode-specific
// reading of the log.
func DerivePhase(s *GameState, totalRounds int) Phase {
	if s.PhaseOverride != nil {
		return s.PhaseOverride.Clone()
	}
	if s.Mode == "" {
		return Phase{Kind: PhaseGameModeSelection}
	}
	if s.Opponent == nil {
		return Phase{Kind: PhaseOpponentSelection}
	}
	if s.Mode == ModeDeck {
		return deriveDeckPhase(s, totalRounds)
	}
	return deriveRoundPhase(s, totalRounds)
}

func deriveDeckPhase(s *GameState, totalRounds int) Phase {
	if len(s.PlayerDeck) < totalRounds || len(s.OpponentDeck) < totalRounds {
		return Phase{Kind: PhaseDeckSelection}
	}
	if AllComplete(s.RoundHistory, totalRounds) {
		results := make([]RoundEntry, totalRounds)
		for i := 0; i < totalRounds; i++ {
			results[i] = s.RoundHistory[i].Clone()
		}
		return Phase{Kind: PhaseAllRoundsResults, Results: results}
	}
	// Decks are in but resolution has not run; deck mode resolves all
	// rounds atomically, so there is no intermediate per-round phase.
	return Phase{Kind: PhaseDeckSelection}
}

func deriveRoundPhase(s *GameState, totalRounds int) Phase {
	cur := CurrentRound(s)
	if cur > totalRounds {
		return Phase{Kind: PhaseGameOver, Winner: OverallWinner(s)}
	}

	idx := cur - 1
	if idx >= len(s.RoundHistory) {
		// No slot for the current round yet. Either the log is empty, or
		// CurrentRound advanced past a round that just completed and the
		// player has not acted on the next one.
		if idx >= 1 && IsRoundComplete(s.RoundHistory[idx-1]) {
			result := s.RoundHistory[idx-1].Clone()
			return Phase{Kind: PhaseRoundResults, Round: cur - 1, Result: &result}
		}
		return Phase{Kind: PhaseBoardSelection, Round: cur}
	}

	entry := s.RoundHistory[idx]
	switch {
	case entry.PlayerBoard == nil:
		return Phase{Kind: PhaseBoardSelection, Round: cur}
	case entry.OpponentBoard == nil:
		return Phase{Kind: PhaseWaitingForOpponent, Round: cur}
	case entry.Winner == "":
		// Both boards in, resolution pending. The player has nothing left
		// to submit for this round.
		return Phase{Kind: PhaseWaitingForOpponent, Round: cur}
	default:
		result := entry.Clone()
		return Phase{Kind: PhaseRoundResults, Round: cur, Result: &result}
	}
}

// OverallWinner computes the game winner from summed scores: strictly
// higher total wins, equality is a tie.
func OverallWinner(s *GameState) Winner {
	p, o := PlayerScore(s), OpponentScore(s)
	switch {
	case p > o:
		return WinnerPlayer
	case o > p:
		return WinnerOpponent
	default:
		return WinnerTie
	}
}

// AllComplete reports whether rounds 1..totalRounds are all complete.
func AllComplete(history []RoundEntry, totalRounds int) bool {
	if len(history) < totalRounds {
		return false
	}
	for i := 0; i < totalRounds; i++ {
		if !IsRoundComplete(history[i]) {
			return false
		}
	}
	return true
}
