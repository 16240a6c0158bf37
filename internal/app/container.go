package app

import (
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"

	"linkduel/internal/domain"
)

// Container owns the single GameState for one client and exposes the
// mutation surface. Every mutation builds a brand-new state, clears the
// checksum so the codec recomputes it, and clears any transient phase
// override. Mutators never fail: malformed input is a caller contract
// violation and is left unchecked by design.
//
// There is no locking here. The container lives on one client's event
// loop; the only writer is that client, and the remote player is a
// separate process reached by pasting links.
type Container struct {
	totalRounds int
	state       *domain.GameState
}

// View is the read snapshot handed to the UI layer: the state plus every
// derived value, recomputed on each call so nothing can drift from the
// log.
type View struct {
	State                 *domain.GameState
	Phase                 domain.Phase
	CurrentRound          int
	PlayerScore           int
	OpponentScore         int
	PlayerSelectedBoard   *domain.Board
	OpponentSelectedBoard *domain.Board
}

// NewContainer wraps an initial state. A nil initial state starts a
// fresh game with an anonymous profile.
func NewContainer(initial *domain.GameState, totalRounds int) *Container {
	if totalRounds <= 0 {
		totalRounds = domain.DefaultTotalRounds
	}
	if initial == nil {
		initial = NewGameState(domain.UserProfile{ID: uuid.NewString()}, nil, "")
	}
	return &Container{totalRounds: totalRounds, state: initial}
}

// NewGameState builds a fresh state for the given identity. The game id
// is short and URL-friendly; the creator is the local profile.
func NewGameState(profile domain.UserProfile, opponent *domain.Opponent, mode domain.GameMode) *domain.GameState {
	return &domain.GameState{
		Profile:      profile,
		Opponent:     opponent,
		GameID:       shortuuid.New(),
		CreatorID:    profile.ID,
		Mode:         mode,
		RoundHistory: []domain.RoundEntry{},
	}
}

// State returns the current state.
func (c *Container) State() *domain.GameState { return c.state }

// TotalRounds returns the per-game round count.
func (c *Container) TotalRounds() int { return c.totalRounds }

// View derives the full UI snapshot from the current state.
func (c *Container) View() View {
	return View{
		State:                 c.state,
		Phase:                 domain.DerivePhase(c.state, c.totalRounds),
		CurrentRound:          domain.CurrentRound(c.state),
		PlayerScore:           domain.PlayerScore(c.state),
		OpponentScore:         domain.OpponentScore(c.state),
		PlayerSelectedBoard:   domain.PlayerSelectedBoard(c.state),
		OpponentSelectedBoard: domain.OpponentSelectedBoard(c.state),
	}
}

// SelectBoard writes the given side's board into the current round's
// slot, creating the slot when it does not exist yet. Selecting the
// board for round 1 pins the game's board size.
func (c *Container) SelectBoard(side domain.Side, board domain.Board) (*domain.GameState, []Event) {
	next := c.beginMutation()
	cur := domain.CurrentRound(next)
	idx := cur - 1

	if idx >= len(next.RoundHistory) {
		next.RoundHistory = append(next.RoundHistory, domain.RoundEntry{Round: cur})
	}
	entry := &next.RoundHistory[idx]
	if side == domain.SideOpponent {
		entry.OpponentBoard = board.Clone()
	} else {
		entry.PlayerBoard = board.Clone()
	}

	if cur == 1 && next.BoardSize == 0 {
		next.BoardSize = board.Size
	}

	c.state = next
	return next, []Event{{
		Kind:    EventBoardSelected,
		Payload: BoardSelectedPayload{Side: side, Round: cur, Board: board},
	}}
}

// CompleteRound reconciles a resolved round into the log: the entry at
// result.Round is replaced wholesale when it exists (the receiver may
// only have seen the opponent's half) and appended otherwise. When this
// write completes the final round, the profile's aggregate stats are
// updated in the same state transition, because derivation jumps
// straight to game-over and no later hook would run.
func (c *Container) CompleteRound(result domain.RoundEntry) (*domain.GameState, []Event) {
	next := c.beginMutation()
	wasOver := domain.AllComplete(next.RoundHistory, c.totalRounds)

	idx := result.Round - 1
	if idx >= 0 && idx < len(next.RoundHistory) {
		next.RoundHistory[idx] = result.Clone()
	} else {
		next.RoundHistory = append(next.RoundHistory, result.Clone())
	}

	events := []Event{{
		Kind:    EventRoundCompleted,
		Payload: RoundCompletedPayload{Round: result.Round, Winner: result.Winner},
	}}
	events = append(events, c.settleIfOver(next, wasOver)...)

	c.state = next
	return next, events
}

// CompleteAllRounds replaces the whole log with the resolved results
// (deck mode) and settles aggregate stats atomically.
func (c *Container) CompleteAllRounds(results []domain.RoundEntry) (*domain.GameState, []Event) {
	next := c.beginMutation()
	wasOver := domain.AllComplete(next.RoundHistory, c.totalRounds)

	next.RoundHistory = make([]domain.RoundEntry, len(results))
	for i, r := range results {
		next.RoundHistory[i] = r.Clone()
	}

	events := c.settleIfOver(next, wasOver)
	c.state = next
	return next, events
}

// ResetGame produces a fresh state preserving only the local profile.
func (c *Container) ResetGame() (*domain.GameState, []Event) {
	next := NewGameState(c.state.Profile, nil, "")
	c.state = next
	return next, []Event{{Kind: EventGameReset, Payload: GameResetPayload{GameID: next.GameID}}}
}

// LoadState adopts a freshly decoded state wholesale. Consumers run the
// staleness guard before calling this; LoadState itself never inspects
// what it replaces.
func (c *Container) LoadState(s *domain.GameState) (*domain.GameState, []Event) {
	next := s.Clone()
	c.state = next
	return next, []Event{{Kind: EventStateLoaded, Payload: StateLoadedPayload{GameID: next.GameID}}}
}

// beginMutation clones the state and applies the clearing every mutation
// shares: the checksum goes stale and any UI-only phase override drops.
func (c *Container) beginMutation() *domain.GameState {
	next := c.state.Clone()
	next.Checksum = ""
	next.PhaseOverride = nil
	return next
}

// settleIfOver bumps the profile's aggregate stats exactly once, on the
// transition into the all-rounds-complete condition.
func (c *Container) settleIfOver(next *domain.GameState, wasOver bool) []Event {
	if wasOver || !domain.AllComplete(next.RoundHistory, c.totalRounds) {
		return nil
	}

	winner := domain.OverallWinner(next)
	next.Profile.Stats.Games++
	switch winner {
	case domain.WinnerPlayer:
		next.Profile.Stats.Wins++
	case domain.WinnerOpponent:
		next.Profile.Stats.Losses++
	default:
		next.Profile.Stats.Ties++
	}

	return []Event{{
		Kind: EventGameOver,
		Payload: GameOverPayload{
			Winner:        winner,
			PlayerScore:   domain.PlayerScore(next),
			OpponentScore: domain.OpponentScore(next),
		},
	}}
}
