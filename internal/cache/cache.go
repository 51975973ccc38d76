// Package cache persists a single forecast snapshot to local storage.
// Caching is best-effort throughout: every read or write failure is logged
// and swallowed, never surfaced to the caller.
package cache

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dwd-pollen/internal/domain"
)

// Manager reads and writes the single-slot snapshot file. Staleness is
// judged purely by the file's modification time, independent of the update
// timestamps embedded in the payload.
type Manager struct {
	path     string
	duration time.Duration
	logger   *slog.Logger
	clock    clockwork.Clock
}

// NewManager creates a snapshot manager for the given file path and
// retention window.
func NewManager(path string, duration time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		path:     path,
		duration: duration,
		logger:   logger,
		clock:    clockwork.NewRealClock(),
	}
}

// SetClock swaps the staleness time source. Tests pass a fake clock; nil
// resets to real time.
func (m *Manager) SetClock(c clockwork.Clock) {
	if c == nil {
		m.clock = clockwork.NewRealClock()
		return
	}
	m.clock = c
}

// Path returns the snapshot file location.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the snapshot if it exists, is younger than the retention
// window, and parses cleanly. The second return value reports usability;
// a missing, stale, or malformed snapshot is not an error.
func (m *Manager) Load() (domain.Snapshot, bool) {
	info, err := os.Stat(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("cache stat failed", "path", m.path, "error", err)
		}
		return domain.Snapshot{}, false
	}

	if age := m.clock.Now().Sub(info.ModTime()); age > m.duration {
		m.logger.Debug("cache expired", "path", m.path, "age", age)
		return domain.Snapshot{}, false
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		m.logger.Warn("cache read failed", "path", m.path, "error", err)
		return domain.Snapshot{}, false
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		m.logger.Warn("cache contains malformed snapshot", "path", m.path, "error", err)
		return domain.Snapshot{}, false
	}
	if len(snap.Data) == 0 {
		return domain.Snapshot{}, false
	}

	m.logger.Debug("loaded snapshot from cache", "path", m.path, "last_update", snap.LastUpdate)
	return snap, true
}

// Save writes the snapshot, creating parent directories as needed. Failures
// are logged and swallowed so they never abort an otherwise-successful
// update.
func (m *Manager) Save(snap domain.Snapshot) {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		m.logger.Warn("cache dir create failed", "path", m.path, "error", err)
		return
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		m.logger.Warn("cache marshal failed", "error", err)
		return
	}

	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		m.logger.Warn("cache write failed", "path", m.path, "error", err)
		return
	}
	m.logger.Debug("saved snapshot to cache", "path", m.path)
}

// DefaultPath returns the per-user snapshot location, typically
// ~/.cache/dwd-pollen/pollen_data.json on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dwd-pollen", "pollen_data.json"), nil
}
