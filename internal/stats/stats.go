// Package stats reads per-player statistics and advancements files and
// normalizes statistics across save-format schema versions.
package stats

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bramblefox/mcstats-companion/internal/player"
)

// Degraded reasons. An empty reason means the data was read cleanly.
const (
	DegradedMissing    = "missing"
	DegradedUnreadable = "unreadable"
	DegradedMalformed  = "malformed"
)

// Result is the outcome of loading one player's statistics. Degraded carries
// the reason the data is empty; it is collapsed to plain empty objects at the
// serialization boundary so consumers of the output see {} either way.
type Result struct {
	Merged   map[string]any
	Source   map[string]any
	Degraded string
}

// OK reports whether the statistics were read cleanly.
func (r Result) OK() bool { return r.Degraded == "" }

// Advancements is the outcome of loading one player's advancements.
type Advancements struct {
	Data     map[string]any
	Degraded string
}

// OK reports whether the advancements were read cleanly.
func (a Advancements) OK() bool { return a.Degraded == "" }

// Reader loads statistics and advancements from a server directory.
type Reader struct {
	serverDir string
	logger    *slog.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) { r.logger = logger }
}

// NewReader creates a Reader rooted at the server directory.
func NewReader(serverDir string, opts ...ReaderOption) *Reader {
	r := &Reader{
		serverDir: serverDir,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// degraded classifies a read error into a Degraded reason.
func degraded(err error) string {
	if errors.Is(err, os.ErrNotExist) {
		return DegradedMissing
	}
	return DegradedUnreadable
}

// Load reads and merges one player's statistics file. Never fails: any
// problem degrades to empty maps with the reason recorded and a warning
// logged.
func (r *Reader) Load(key player.Key) Result {
	path := filepath.Join(r.serverDir, "world", "stats", key.String()+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		reason := degraded(err)
		if reason != DegradedMissing {
			r.logger.Warn("stats file unreadable", "uuid", key.Short(), "error", err)
		}
		return Result{Merged: map[string]any{}, Source: map[string]any{}, Degraded: reason}
	}

	var source map[string]any
	if err := json.Unmarshal(data, &source); err != nil {
		r.logger.Warn("stats file malformed", "uuid", key.Short(), "error", err)
		return Result{Merged: map[string]any{}, Source: map[string]any{}, Degraded: DegradedMalformed}
	}

	return Result{Merged: MergeCategories(source), Source: source}
}

// LoadAdvancements reads one player's advancements file. Never fails; any
// problem degrades to an empty map with the reason recorded.
func (r *Reader) LoadAdvancements(key player.Key) Advancements {
	path := filepath.Join(r.serverDir, "world", "advancements", key.String()+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		reason := degraded(err)
		if reason != DegradedMissing {
			r.logger.Warn("advancements file unreadable", "uuid", key.Short(), "error", err)
		}
		return Advancements{Data: map[string]any{}, Degraded: reason}
	}

	var adv map[string]any
	if err := json.Unmarshal(data, &adv); err != nil {
		r.logger.Warn("advancements file malformed", "uuid", key.Short(), "error", err)
		return Advancements{Data: map[string]any{}, Degraded: DegradedMalformed}
	}

	// The DataVersion marker is save-format metadata, not an advancement.
	delete(adv, "DataVersion")
	return Advancements{Data: adv}
}
