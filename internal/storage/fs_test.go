package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkduel/internal/domain"
)

func TestFSRoundTrip(t *testing.T) {
	fs := NewFS(t.TempDir())

	state := &domain.GameState{
		Profile: domain.UserProfile{ID: "user-1", Name: "Avery"},
		GameID:  "game-1",
		Mode:    domain.ModeRoundByRound,
		RoundHistory: []domain.RoundEntry{
			{
				Round:          1,
				PlayerBoard:    &domain.Board{ID: "b1", Size: 4},
				OpponentBoard:  &domain.Board{ID: "b2", Size: 4},
				Winner:         domain.WinnerPlayer,
				PlayerPoints:   2,
				OpponentPoints: 1,
			},
		},
	}

	require.NoError(t, fs.Save(state))

	loaded, err := fs.Load("game-1")
	require.NoError(t, err)
	assert.Equal(t, state, loaded)

	ids, err := fs.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"game-1"}, ids)
}

func TestFSSaveRejectsMissingGameID(t *testing.T) {
	fs := NewFS(t.TempDir())
	assert.Error(t, fs.Save(nil))
	assert.Error(t, fs.Save(&domain.GameState{}))
}

func TestFSLoadMissing(t *testing.T) {
	fs := NewFS(t.TempDir())
	_, err := fs.Load("nope")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileFragmentEmptyBeforeFirstWrite(t *testing.T) {
	f := NewFileFragment(filepath.Join(t.TempDir(), "state", "fragment"))

	frag, err := f.Fragment()
	require.NoError(t, err)
	assert.Empty(t, frag)
}

func TestFileFragmentReplaceIsWholesale(t *testing.T) {
	f := NewFileFragment(filepath.Join(t.TempDir(), "fragment"))

	require.NoError(t, f.Replace("token-one"))
	require.NoError(t, f.Replace("token-two"))

	frag, err := f.Fragment()
	require.NoError(t, err)
	assert.Equal(t, "token-two", frag, "only the latest token survives")
}
