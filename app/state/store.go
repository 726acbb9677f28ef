package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrInvariant marks conditions the engine contracts make unreachable.
// Seeing it in production is a defect, not a recoverable condition.
var ErrInvariant = errors.New("state: invariant violation")

type Store interface {
	Load() State
	Save(State) error
}

var _ Store = (*FileStore)(nil)

// FileStore persists the state as a single JSON document. Writes go to
// a temporary file that is renamed over the previous document, so an
// interrupted write leaves the prior state readable.
type FileStore struct {
	path             string
	fallbackCooldown int64 // seconds
}

func NewFileStore(path string, fallbackCooldown int64) *FileStore {
	return &FileStore{
		path:             path,
		fallbackCooldown: fallbackCooldown,
	}
}

// Load reads the persisted state. A missing, unreadable, or corrupt
// document yields the zero-valued default; the first eligible entry is
// then never blocked by cooldown.
func (s *FileStore) Load() State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("State file unreadable, starting fresh", "path", s.path, "error", err)
		}
		return State{}
	}

	var doc struct {
		LastGUID      string `json:"last_guid"`
		LastActionAt  int64  `json:"last_dl_ts"`
		CooldownUntil *int64 `json:"cooldown_until"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("State file corrupt, starting fresh", "path", s.path, "error", err)
		return State{}
	}

	loaded := State{
		LastGUID:     doc.LastGUID,
		LastActionAt: doc.LastActionAt,
	}

	switch {
	case doc.CooldownUntil == nil:
		// Documents written before cooldown tracking only carry the
		// last action time; reconstruct the legacy fixed cooldown.
		if doc.LastActionAt > 0 {
			loaded.CooldownUntil = doc.LastActionAt + s.fallbackCooldown
		}
	case *doc.CooldownUntil < 0:
		slog.Warn("State file carries negative cooldown, starting fresh", "path", s.path, "cooldown_until", *doc.CooldownUntil)
		return State{}
	default:
		loaded.CooldownUntil = *doc.CooldownUntil
	}

	return loaded
}

// Save atomically replaces the persisted document with st.
func (s *FileStore) Save(st State) error {
	if st.CooldownUntil < 0 {
		return fmt.Errorf("%w: negative cooldown_until %d", ErrInvariant, st.CooldownUntil)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}
