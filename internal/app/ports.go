package app

import (
	"context"

	"linkduel/internal/domain"
)

// BoardValidator is the external move-sequence legality checker. The
// container never inspects board contents; a UI shell runs this before
// handing a board to SelectBoard.
type BoardValidator interface {
	ValidateBoard(board domain.Board) error
}

// OpponentEngine produces opponent moves. The production implementation
// is the model-inference client; internal/bot ships a practice stand-in.
type OpponentEngine interface {
	ChooseBoard(ctx context.Context, state *domain.GameState) (domain.Board, error)
	ResolveRound(ctx context.Context, round int, player, opponent domain.Board) (domain.RoundEntry, error)
}

// Clipboard abstracts the host clipboard for share-link copying.
type Clipboard interface {
	WriteText(text string) error
}
