// Package output writes the reconciled per-player documents and the player
// list snapshot that seeds the next run.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bramblefox/mcstats-companion/internal/player"
)

// Filenames under the output root.
const (
	playerDataDir   = "playerdata"
	statsFileName   = "stats.json"
	playersFileName = "players.json"
)

// PlayerDocument is the flat per-player JSON document consumed by static
// site generators. Degraded statistics and advancements appear as empty
// objects here; the reason is only carried internally.
type PlayerDocument struct {
	Stats        map[string]any `json:"stats"`
	StatsSource  map[string]any `json:"stats_source"`
	Advancements map[string]any `json:"advancements"`
	Data         *player.Record `json:"data"`
}

// Writer persists run outputs under a root directory.
type Writer struct {
	root   string
	logger *slog.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) { w.logger = logger }
}

// NewWriter creates a Writer rooted at the output directory.
func NewWriter(root string, opts ...WriterOption) *Writer {
	w := &Writer{
		root:   root,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// PlayerDir returns the output directory for one player, keyed by the short
// form.
func (w *Writer) PlayerDir(uuidShort string) string {
	return filepath.Join(w.root, playerDataDir, uuidShort)
}

// WritePlayer writes one player's stats.json atomically.
func (w *Writer) WritePlayer(uuidShort string, doc *PlayerDocument) error {
	path := filepath.Join(w.PlayerDir(uuidShort), statsFileName)
	if err := writeJSONAtomic(path, doc); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteList writes the players.json snapshot atomically.
func (w *Writer) WriteList(list player.List) error {
	path := filepath.Join(w.root, playersFileName)
	if err := writeJSONAtomic(path, list); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadList reads the prior run's players.json to use as the reconciliation
// baseline. A missing file yields an empty list; a corrupt file degrades to
// an empty list with a warning, so a damaged snapshot never poisons a run.
func (w *Writer) LoadList() player.List {
	path := filepath.Join(w.root, playersFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("player list unreadable, starting fresh", "path", path, "error", err)
		}
		return nil
	}

	var list player.List
	if err := json.Unmarshal(data, &list); err != nil {
		w.logger.Warn("player list corrupt, starting fresh", "path", path, "error", err)
		return nil
	}
	return list
}
