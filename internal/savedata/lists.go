package savedata

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/bramblefox/mcstats-companion/internal/player"
)

// listEntry is one entry of whitelist.json or banned-players.json.
// Both carry more fields; only the key is consumed.
type listEntry struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// readKeySet reads a JSON key-list file into a set of short keys.
// A missing file yields an empty set; a malformed file degrades to an empty
// set with a warning. Entries with invalid keys are skipped.
func (r *Reader) readKeySet(filename string) map[string]bool {
	path := filepath.Join(r.serverDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("key list unreadable", "file", filename, "error", err)
		}
		return map[string]bool{}
	}

	var entries []listEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		r.logger.Warn("key list malformed", "file", filename, "error", err)
		return map[string]bool{}
	}

	set := make(map[string]bool, len(entries))
	for _, e := range entries {
		key, err := player.ParseKey(e.UUID)
		if err != nil {
			r.logger.Warn("key list entry invalid", "file", filename, "uuid", e.UUID)
			continue
		}
		set[key.Short()] = true
	}
	return set
}

// Whitelist returns the set of whitelisted short keys from whitelist.json.
// Empty when the server has no whitelist.
func (r *Reader) Whitelist() map[string]bool {
	return r.readKeySet("whitelist.json")
}

// Banned returns the set of banned short keys from banned-players.json.
func (r *Reader) Banned() map[string]bool {
	return r.readKeySet("banned-players.json")
}
