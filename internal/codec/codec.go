// Package codec turns a GameState into the URL-safe token the players
// paste to each other, and back. Encoding is deterministic for a given
// logical state; decoding is all-or-nothing with corruption detection.
// The checksum catches accidental damage (truncation in a chat box, a
// mangled character) only. It is not tamper-proofing.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/flate"

	"linkduel/internal/domain"
)

// DefaultMaxTokenLength bounds the encoded token. Messaging apps start
// truncating URLs well before common address-bar limits, so the cap is
// conservative.
const DefaultMaxTokenLength = 8192

var (
	ErrNilState         = errors.New("cannot encode nil state")
	ErrTokenTooLarge    = errors.New("encoded token exceeds length limit")
	ErrEmptyToken       = errors.New("empty token")
	ErrCorruptToken     = errors.New("token is corrupted")
	ErrChecksumMismatch = errors.New("token checksum mismatch")
	ErrInvalidState     = errors.New("decoded state failed validation")
)

// Encode serializes the state into a compressed base64url token with the
// checksum embedded. The input is not modified.
func Encode(state *domain.GameState) (string, error) {
	return EncodeWithLimit(state, DefaultMaxTokenLength)
}

// EncodeWithLimit is Encode with an explicit token length cap. A limit
// of zero or less disables the cap.
func EncodeWithLimit(state *domain.GameState, limit int) (string, error) {
	if state == nil {
		return "", ErrNilState
	}

	clone := state.Clone()
	clone.Checksum = ""
	payload, err := json.Marshal(clone)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}

	clone.Checksum = checksumOf(payload)
	stamped, err := json.Marshal(clone)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}

	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("init compressor: %w", err)
	}
	if _, err := zw.Write(stamped); err != nil {
		return "", fmt.Errorf("compress state: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress state: %w", err)
	}

	token := base64.RawURLEncoding.EncodeToString(buf.Bytes())
	if limit > 0 && len(token) > limit {
		return "", fmt.Errorf("%w: %d > %d", ErrTokenTooLarge, len(token), limit)
	}
	return token, nil
}

// Decode parses a token back into a GameState. Surrounding whitespace
// and a leading '#' are tolerated, since tokens arrive pasted. Any
// structural problem, decompression failure, or checksum mismatch
// returns an error and no state; there is no partial success.
func Decode(token string) (*domain.GameState, error) {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "#")
	if token == "" {
		return nil, ErrEmptyToken
	}

	// Strict decoding rejects flipped trailing bits instead of silently
	// mapping two different tokens to the same bytes.
	compressed, err := base64.RawURLEncoding.Strict().DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptToken, err)
	}

	zr := flate.NewReader(bytes.NewReader(compressed))
	stamped, err := io.ReadAll(zr)
	if cerr := zr.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptToken, err)
	}

	var state domain.GameState
	dec := json.NewDecoder(bytes.NewReader(stamped))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptToken, err)
	}

	claimed := state.Checksum
	state.Checksum = ""
	payload, err := json.Marshal(&state)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptToken, err)
	}
	if claimed == "" || claimed != checksumOf(payload) {
		return nil, ErrChecksumMismatch
	}

	if err := validate(&state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	state.Checksum = claimed
	return &state, nil
}

func checksumOf(payload []byte) string {
	return strconv.FormatUint(xxhash.Sum64(payload), 16)
}

// validate rejects states that no well-behaved client could have
// produced, before they reach the container.
func validate(s *domain.GameState) error {
	switch s.Mode {
	case "", domain.ModeRoundByRound, domain.ModeDeck:
	default:
		return fmt.Errorf("unknown game mode %q", s.Mode)
	}

	if s.BoardSize != 0 && s.BoardSize < domain.MinBoardSize {
		return fmt.Errorf("board size %d below minimum", s.BoardSize)
	}

	for i, e := range s.RoundHistory {
		if e.Round != i+1 {
			return fmt.Errorf("round history not contiguous at index %d (round %d)", i, e.Round)
		}
		if e.PlayerPoints < 0 || e.OpponentPoints < 0 {
			return fmt.Errorf("round %d has negative points", e.Round)
		}
		switch e.Winner {
		case "", domain.WinnerPlayer, domain.WinnerOpponent, domain.WinnerTie:
		default:
			return fmt.Errorf("round %d has unknown winner %q", e.Round, e.Winner)
		}
		if e.Winner != "" && (e.PlayerBoard == nil || e.OpponentBoard == nil) {
			return fmt.Errorf("round %d resolved without both boards", e.Round)
		}
	}
	return nil
}
