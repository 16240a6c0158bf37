// Package sync owns the serialized side of the protocol: it is the only
// component that reads or writes the URL fragment. State flows in from
// the container as whole values; tokens flow out through a FragmentStore
// that replaces, never pushes, so browser history cannot resurrect a
// previous round.
package sync

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"linkduel/internal/codec"
	"linkduel/internal/domain"
)

// DefaultDebounce is the coalescing window for UpdateURL.
const DefaultDebounce = 300 * time.Millisecond

// ErrClosed is returned for writes after Close.
var ErrClosed = errors.New("sync controller is closed")

// FragmentStore is the address bar seen through an interface: one slot
// holding the current token. Replace must not create history entries.
type FragmentStore interface {
	Fragment() (string, error)
	Replace(token string) error
}

// Clipboard abstracts the host clipboard for CopyShareURL.
type Clipboard interface {
	WriteText(text string) error
}

// Options configures a Controller.
type Options struct {
	// Debounce is the UpdateURL coalescing window. Zero means DefaultDebounce.
	Debounce time.Duration
	// ShareBaseURL prefixes share links, e.g. "https://linkduel.example/play".
	ShareBaseURL string
	// OnState is invoked when a decoded state is adopted (mount or
	// external change).
	OnState func(*domain.GameState)
	// OnError is invoked with user-presentable failures (decode or
	// encode). The local state survives an encode failure; only sharing
	// is affected.
	OnError func(error)
	Logger  zerolog.Logger
}

// Controller debounces local writes to the fragment store and reacts to
// externally arriving fragments. All suspension happens in the single
// debounce timer; there is exactly one pending write slot and a newer
// write always replaces it.
type Controller struct {
	store FragmentStore
	opts  Options

	mu      sync.Mutex
	timer   *time.Timer
	pending *domain.GameState
	state   *domain.GameState
	lastErr error
	loading bool
	closed  bool
}

// NewController wires a controller to a fragment store.
func NewController(store FragmentStore, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Controller{store: store, opts: opts, loading: true}
}

// Mount performs the one-shot initial read. An empty fragment means a
// new game (nil state, no error); a present fragment is decoded and
// either adopted or surfaced as an error.
func (c *Controller) Mount() {
	frag, err := c.store.Fragment()
	if err != nil {
		c.adopt(nil, fmt.Errorf("read fragment: %w", err))
		return
	}
	if frag == "" {
		c.adopt(nil, nil)
		return
	}
	c.decodeAndAdopt(frag)
}

// HandleFragment processes an externally changed fragment: browser
// back/forward or a link pasted into the running client. Identical to
// mount handling.
func (c *Controller) HandleFragment(frag string) {
	if frag == "" {
		c.adopt(nil, nil)
		return
	}
	c.decodeAndAdopt(frag)
}

func (c *Controller) decodeAndAdopt(frag string) {
	state, err := codec.Decode(frag)
	if err != nil {
		c.opts.Logger.Warn().Err(err).Msg("incoming fragment rejected")
		c.adopt(nil, fmt.Errorf("could not read game link: %w", err))
		return
	}
	c.opts.Logger.Debug().Str("game_id", state.GameID).Msg("adopted incoming state")
	c.adopt(state, nil)
}

func (c *Controller) adopt(state *domain.GameState, err error) {
	c.mu.Lock()
	c.loading = false
	c.lastErr = err
	if err == nil {
		c.state = state
	}
	c.mu.Unlock()

	if err != nil {
		if c.opts.OnError != nil {
			c.opts.OnError(err)
		}
		return
	}
	if c.opts.OnState != nil {
		c.opts.OnState(state)
	}
}

// GameState returns the last adopted state, nil when none.
func (c *Controller) GameState() *domain.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the last mount/adopt error.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// IsLoading reports whether the initial mount read has happened yet.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// UpdateURL schedules a debounced write of the state. Rapid successive
// calls coalesce: the pending slot is replaced and the timer restarted,
// so exactly one write lands with the last state.
func (c *Controller) UpdateURL(state *domain.GameState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.pending = state.Clone()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.opts.Debounce, c.flushPending)
}

// UpdateURLImmediate writes the state now, cancelling any pending
// debounced write. Used for transitions where losing the final state to
// a cancelled timer would be wrong.
func (c *Controller) UpdateURLImmediate(state *domain.GameState) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
	c.state = state.Clone()
	c.mu.Unlock()

	return c.write(state)
}

func (c *Controller) flushPending() {
	c.mu.Lock()
	state := c.pending
	c.pending = nil
	c.timer = nil
	if c.closed || state == nil {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.mu.Unlock()

	_ = c.write(state)
}

func (c *Controller) write(state *domain.GameState) error {
	token, err := codec.Encode(state)
	if err != nil {
		// Local play continues on an unencodable state; only sharing broke.
		c.opts.Logger.Error().Err(err).Msg("encode failed, url not updated")
		if c.opts.OnError != nil {
			c.opts.OnError(fmt.Errorf("could not update game link: %w", err))
		}
		return err
	}
	if err := c.store.Replace(token); err != nil {
		c.opts.Logger.Error().Err(err).Msg("fragment write failed")
		if c.opts.OnError != nil {
			c.opts.OnError(fmt.Errorf("could not update game link: %w", err))
		}
		return err
	}
	return nil
}

// ShareURL encodes the state into a full shareable link.
func (c *Controller) ShareURL(state *domain.GameState) (string, error) {
	token, err := codec.Encode(state)
	if err != nil {
		return "", fmt.Errorf("could not build share link: %w", err)
	}
	return c.opts.ShareBaseURL + "#" + token, nil
}

// CopyShareURL places the share link on the clipboard, fire-and-forget.
// The protocol never waits on it; done (optional) receives the outcome.
func (c *Controller) CopyShareURL(state *domain.GameState, clip Clipboard, done func(error)) {
	go func() {
		url, err := c.ShareURL(state)
		if err == nil {
			err = clip.WriteText(url)
		}
		if done != nil {
			done(err)
		}
	}()
}

// Close cancels any pending debounced write. Nothing is written after
// Close returns; a view that unmounted must not touch the URL again.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
}
