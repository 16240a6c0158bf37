// Package storage provides the local-disk collaborators of the
// protocol: a per-game backup store and the file that stands in for the
// address bar in the CLI client.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"linkduel/internal/domain"
)

// FS backs up game states as JSON files under a directory, one file per
// game id. The backup is a convenience snapshot, never the source of
// truth; the link stays authoritative.
type FS struct{ dir string }

// NewFS creates a store rooted at dir.
func NewFS(dir string) *FS { return &FS{dir: dir} }

func (s *FS) pathFor(gameID string) string {
	return filepath.Join(s.dir, "games", strings.TrimSpace(gameID)+".json")
}

// Save writes a snapshot of the state keyed by its game id.
func (s *FS) Save(state *domain.GameState) error {
	if state == nil || state.GameID == "" {
		return errors.New("invalid state: missing game id")
	}
	target := s.pathFor(state.GameID)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}

// Load reads the snapshot for a game id. A missing snapshot returns
// os.ErrNotExist.
func (s *FS) Load(gameID string) (*domain.GameState, error) {
	data, err := os.ReadFile(s.pathFor(gameID))
	if err != nil {
		return nil, err
	}
	var state domain.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// List returns the game ids with a stored snapshot.
func (s *FS) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, "games"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}
