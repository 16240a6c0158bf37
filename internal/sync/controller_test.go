package sync

import (
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkduel/internal/codec"
	"linkduel/internal/domain"
)

// fakeStore is an in-memory address bar recording every replace.
type fakeStore struct {
	mu       stdsync.Mutex
	fragment string
	writes   []string
	readErr  error
	writeErr error
}

func (f *fakeStore) Fragment() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fragment, f.readErr
}

func (f *fakeStore) Replace(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.fragment = token
	f.writes = append(f.writes, token)
	return nil
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeStore) lastWrite() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return ""
	}
	return f.writes[len(f.writes)-1]
}

type fakeClipboard struct {
	mu   stdsync.Mutex
	text string
}

func (f *fakeClipboard) WriteText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	return nil
}

func stateWithGameID(id string) *domain.GameState {
	return &domain.GameState{
		Profile:      domain.UserProfile{ID: "user-1", Name: "Avery"},
		Opponent:     &domain.Opponent{ID: "opp-1", Name: "Quinn"},
		GameID:       id,
		Mode:         domain.ModeRoundByRound,
		RoundHistory: []domain.RoundEntry{},
	}
}

func TestMountEmptyFragmentIsNewGame(t *testing.T) {
	store := &fakeStore{}

	var gotState *domain.GameState
	called := false
	c := NewController(store, Options{
		OnState: func(s *domain.GameState) { gotState = s; called = true },
	})

	require.True(t, c.IsLoading())
	c.Mount()

	assert.False(t, c.IsLoading())
	assert.True(t, called)
	assert.Nil(t, gotState)
	assert.NoError(t, c.Err())
}

func TestMountAdoptsValidFragment(t *testing.T) {
	token, err := codec.Encode(stateWithGameID("game-42"))
	require.NoError(t, err)
	store := &fakeStore{fragment: token}

	c := NewController(store, Options{})
	c.Mount()

	require.NoError(t, c.Err())
	require.NotNil(t, c.GameState())
	assert.Equal(t, "game-42", c.GameState().GameID)
}

func TestMountPublishesDecodeError(t *testing.T) {
	store := &fakeStore{fragment: "garbage-token"}

	var gotErr error
	c := NewController(store, Options{
		OnError: func(err error) { gotErr = err },
	})
	c.Mount()

	require.Error(t, gotErr)
	assert.Error(t, c.Err())
	// Decode failure falls back to "no game", not a crash or a stale state.
	assert.Nil(t, c.GameState())
}

func TestHandleFragmentMatchesMountBehavior(t *testing.T) {
	store := &fakeStore{}
	c := NewController(store, Options{})
	c.Mount()

	token, err := codec.Encode(stateWithGameID("game-7"))
	require.NoError(t, err)

	c.HandleFragment(token)
	require.NotNil(t, c.GameState())
	assert.Equal(t, "game-7", c.GameState().GameID)

	c.HandleFragment("corrupted")
	assert.Error(t, c.Err())
}

func TestUpdateURLDebounceCoalesces(t *testing.T) {
	store := &fakeStore{}
	c := NewController(store, Options{Debounce: 40 * time.Millisecond})
	defer c.Close()

	c.UpdateURL(stateWithGameID("first"))
	c.UpdateURL(stateWithGameID("second"))
	c.UpdateURL(stateWithGameID("third"))

	time.Sleep(120 * time.Millisecond)

	require.Equal(t, 1, store.writeCount(), "three rapid updates must land as one write")

	decoded, err := codec.Decode(store.lastWrite())
	require.NoError(t, err)
	assert.Equal(t, "third", decoded.GameID, "the last state wins")
}

func TestUpdateURLImmediateCancelsPending(t *testing.T) {
	store := &fakeStore{}
	c := NewController(store, Options{Debounce: 40 * time.Millisecond})
	defer c.Close()

	c.UpdateURL(stateWithGameID("debounced"))
	require.NoError(t, c.UpdateURLImmediate(stateWithGameID("urgent")))

	time.Sleep(120 * time.Millisecond)

	require.Equal(t, 1, store.writeCount(), "debounced write must not fire after immediate")

	decoded, err := codec.Decode(store.lastWrite())
	require.NoError(t, err)
	assert.Equal(t, "urgent", decoded.GameID)
}

func TestCloseCancelsPendingWrite(t *testing.T) {
	store := &fakeStore{}
	c := NewController(store, Options{Debounce: 40 * time.Millisecond})

	c.UpdateURL(stateWithGameID("doomed"))
	c.Close()

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 0, store.writeCount(), "no write may land after Close")

	c.UpdateURL(stateWithGameID("ignored"))
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 0, store.writeCount())

	assert.ErrorIs(t, c.UpdateURLImmediate(stateWithGameID("ignored")), ErrClosed)
}

func TestEncodeFailureKeepsLocalState(t *testing.T) {
	store := &fakeStore{}

	var gotErr error
	c := NewController(store, Options{
		OnError: func(err error) { gotErr = err },
	})

	// A state invalid for encoding: nil is the one input Encode refuses.
	err := c.UpdateURLImmediate(nil)
	require.Error(t, err)
	require.Error(t, gotErr)
	assert.Equal(t, 0, store.writeCount())
}

func TestShareURL(t *testing.T) {
	c := NewController(&fakeStore{}, Options{ShareBaseURL: "https://duel.example/play"})

	url, err := c.ShareURL(stateWithGameID("game-9"))
	require.NoError(t, err)
	require.Contains(t, url, "https://duel.example/play#")

	decoded, err := codec.Decode(url[len("https://duel.example/play#"):])
	require.NoError(t, err)
	assert.Equal(t, "game-9", decoded.GameID)
}

func TestCopyShareURL(t *testing.T) {
	c := NewController(&fakeStore{}, Options{ShareBaseURL: "https://duel.example/play"})
	clip := &fakeClipboard{}

	done := make(chan error, 1)
	c.CopyShareURL(stateWithGameID("game-3"), clip, func(err error) { done <- err })

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("copy callback never fired")
	}

	clip.mu.Lock()
	defer clip.mu.Unlock()
	assert.Contains(t, clip.text, "https://duel.example/play#")
}

func TestWriteFailureSurfacesError(t *testing.T) {
	store := &fakeStore{writeErr: errors.New("address bar unavailable")}

	var gotErr error
	c := NewController(store, Options{OnError: func(err error) { gotErr = err }})

	err := c.UpdateURLImmediate(stateWithGameID("game-1"))
	require.Error(t, err)
	assert.Error(t, gotErr)
}
