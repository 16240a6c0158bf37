// Package bot is the practice stand-in for the real model-inference
// opponent: it picks boards and resolves rounds with a seeded rng so a
// single client can walk the whole protocol loop locally.
package bot

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"linkduel/internal/domain"
)

// Agent implements app.OpponentEngine for practice games.
type Agent struct {
	rng *rand.Rand
}

// NewAgent constructs an agent with the provided rng or a time-seeded
// default.
func NewAgent(rng *rand.Rand) *Agent {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Agent{rng: rng}
}

// ChooseBoard fabricates an opponent board matching the game's pinned
// board size (or the default when none is pinned yet).
func (a *Agent) ChooseBoard(ctx context.Context, state *domain.GameState) (domain.Board, error) {
	size := state.BoardSize
	if size < domain.MinBoardSize {
		size = 4
	}
	round := domain.CurrentRound(state)
	return domain.Board{
		ID:   fmt.Sprintf("bot-r%d-%04x", round, a.rng.Intn(0x10000)),
		Size: size,
	}, nil
}

// ResolveRound produces a resolved entry for the two boards. Points are
// random but consistent with the winner, which is all the protocol core
// ever reads.
func (a *Agent) ResolveRound(ctx context.Context, round int, player, opponent domain.Board) (domain.RoundEntry, error) {
	pp := a.rng.Intn(4)
	op := a.rng.Intn(4)

	winner := domain.WinnerTie
	switch {
	case pp > op:
		winner = domain.WinnerPlayer
	case op > pp:
		winner = domain.WinnerOpponent
	}

	size := player.Size
	if size < domain.MinBoardSize {
		size = domain.MinBoardSize
	}

	return domain.RoundEntry{
		Round:                 round,
		PlayerBoard:           player.Clone(),
		OpponentBoard:         opponent.Clone(),
		Winner:                winner,
		PlayerPoints:          pp,
		OpponentPoints:        op,
		PlayerFinalPosition:   &domain.Position{Row: a.rng.Intn(size), Col: a.rng.Intn(size)},
		OpponentFinalPosition: &domain.Position{Row: a.rng.Intn(size), Col: a.rng.Intn(size)},
	}, nil
}
