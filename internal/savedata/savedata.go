// Package savedata reads per-player fields from a Minecraft server's
// on-disk save files: playerdata .dat files, the whitelist, and the ban list.
package savedata

import (
	"compress/gzip"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bramblefox/mcstats-companion/internal/player"
)

// ErrNoData indicates the player has no save-data file.
var ErrNoData = errors.New("savedata: no data file")

// Field names extracted from a player .dat file. firstPlayed/lastPlayed are
// Bukkit millisecond timestamps; ticksLived is game ticks; Time is the
// vanilla age counter.
const (
	fieldTime        = "Time"
	fieldFirstPlayed = "firstPlayed"
	fieldLastPlayed  = "lastPlayed"
	fieldTicksLived  = "ticksLived"
)

// PlayerData holds the decoded fields consumed from a save file.
// Fields are version-dependent; an absent field is nil, not an error.
type PlayerData struct {
	Time        *int64
	FirstPlayed *int64
	LastPlayed  *int64
	TicksLived  *int64
}

// Reader reads save data from a server directory.
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

// playerDataDir returns the playerdata directory of the main world.
func (r *Reader) playerDataDir() string {
	return filepath.Join(r.serverDir, "world", "playerdata")
}

// ListKeys lists all player keys with a save-data file, sorted. Files whose
// name is not a canonical hyphenated key (backups, .dat_old) are skipped.
func (r *Reader) ListKeys() ([]player.Key, error) {
	dir := r.playerDataDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list playerdata %q: %w", dir, err)
	}

	keys := make([]player.Key, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(e.Name(), ".dat")
		if !ok {
			continue
		}
		key, err := player.ParseKey(name)
		if err != nil {
			r.logger.Debug("skipping non-canonical playerdata file", "file", e.Name())
			continue
		}
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys, nil
}

// Read decodes the consumed fields from a player's save-data file.
// Returns ErrNoData when the file does not exist; a corrupt file is an error.
func (r *Reader) Read(key player.Key) (*PlayerData, error) {
	path := filepath.Join(r.playerDataDir(), key.String()+".dat")

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompress %q: %w", path, err)
	}
	defer gz.Close()

	want := map[string]bool{
		fieldTime:        true,
		fieldFirstPlayed: true,
		fieldLastPlayed:  true,
		fieldTicksLived:  true,
	}
	fields, err := extractFields(gz, want)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}

	pd := &PlayerData{}
	if v, ok := fields[fieldTime]; ok {
		pd.Time = &v
	}
	if v, ok := fields[fieldFirstPlayed]; ok {
		pd.FirstPlayed = &v
	}
	if v, ok := fields[fieldLastPlayed]; ok {
		pd.LastPlayed = &v
	}
	if v, ok := fields[fieldTicksLived]; ok {
		pd.TicksLived = &v
	}
	return pd, nil
}
