package app

import "linkduel/internal/domain"

// EventKind identifies events emitted by container mutations, for the UI
// shell and the notifier to react to.
type EventKind string

const (
	EventBoardSelected  EventKind = "board_selected"
	EventRoundCompleted EventKind = "round_completed"
	EventGameOver       EventKind = "game_over"
	EventGameReset      EventKind = "game_reset"
	EventStateLoaded    EventKind = "state_loaded"
)

// Event is an app event with its payload.
type Event struct {
	Kind    EventKind
	Payload any
}

type BoardSelectedPayload struct {
	Side  domain.Side
	Round int
	Board domain.Board
}

type RoundCompletedPayload struct {
	Round  int
	Winner domain.Winner
}

type GameOverPayload struct {
	Winner        domain.Winner
	PlayerScore   int
	OpponentScore int
}

type GameResetPayload struct {
	GameID string
}

type StateLoadedPayload struct {
	GameID string
}
