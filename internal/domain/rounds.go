package domain

// IsRoundComplete reports whether both boards are set and the winner has
// been resolved. Partial entries and unresolved entries are incomplete.
func IsRoundComplete(e RoundEntry) bool {
	return e.PlayerBoard != nil && e.OpponentBoard != nil && e.Winner != ""
}

// CurrentRound returns the 1-based round a new action should target.
// The log is the only input: an empty log targets round 1, a log whose
// last entry is complete targets the next (not yet created) slot, and a
// log whose last entry is partial targets that slot. Callers use the
// result to pick a write index; no counter is ever stored.
func CurrentRound(s *GameState) int {
	n := len(s.RoundHistory)
	if n == 0 {
		return 1
	}
	if IsRoundComplete(s.RoundHistory[n-1]) {
		return n + 1
	}
	return n
}

// PlayerScore sums the player's points across the log. Absent points
// count as zero. Recomputed on every call, never cached.
func PlayerScore(s *GameState) int {
	total := 0
	for _, e := range s.RoundHistory {
		total += e.PlayerPoints
	}
	return total
}

// OpponentScore sums the opponent's points across the log.
func OpponentScore(s *GameState) int {
	total := 0
	for _, e := range s.RoundHistory {
		total += e.OpponentPoints
	}
	return total
}

// PlayerSelectedBoard returns the player's board for the in-progress
// round, or nil when no round is pending selection. This is how "which
// board is currently pending" is recovered without a dedicated field.
func PlayerSelectedBoard(s *GameState) *Board {
	if e := pendingEntry(s); e != nil {
		return e.PlayerBoard
	}
	return nil
}

// OpponentSelectedBoard returns the opponent's board for the in-progress
// round, or nil when no round is pending selection.
func OpponentSelectedBoard(s *GameState) *Board {
	if e := pendingEntry(s); e != nil {
		return e.OpponentBoard
	}
	return nil
}

// pendingEntry returns the entry at CurrentRound-1 if it exists and is
// still partial.
func pendingEntry(s *GameState) *RoundEntry {
	idx := CurrentRound(s) - 1
	if idx < 0 || idx >= len(s.RoundHistory) {
		return nil
	}
	if IsRoundComplete(s.RoundHistory[idx]) {
		return nil
	}
	return &s.RoundHistory[idx]
}

// Replay describes an incoming link that targets a round the local log
// already shows as resolved. The fields feed the "round already
// completed" message the consumer must show instead of applying the
// link.
type Replay struct {
	Round        int
	OpponentName string
}

// IsRoundReplayed reports whether round r is already complete in the
// given log.
func IsRoundReplayed(history []RoundEntry, r int) bool {
	idx := r - 1
	if idx < 0 || idx >= len(history) {
		return false
	}
	return IsRoundComplete(history[idx])
}

// DetectReplay runs the staleness check for an incoming link claiming
// round incomingRound is still pending. On a positive result the caller
// must refuse to apply the incoming state and keep the local log
// unchanged; a completed entry is never overwritten with a partial one.
func DetectReplay(local *GameState, incomingRound int) (Replay, bool) {
	if !IsRoundReplayed(local.RoundHistory, incomingRound) {
		return Replay{}, false
	}
	name := ""
	if local.Opponent != nil {
		name = local.Opponent.Name
	}
	return Replay{Round: incomingRound, OpponentName: name}, true
}
