package player

import "time"

// NameRecord is one observed display name at one point in time.
// DetectedAt is Unix milliseconds.
type NameRecord struct {
	Name       string `json:"name"`
	DetectedAt int64  `json:"detectedAt"`
}

// NameHistory is the ordered rename history of a player. The entry at
// index 0 is treated as the current name by the record builder. A history is
// never empty once the player has been observed at least once.
type NameHistory []NameRecord

// Current returns the current display name, or "" for an empty history.
func (h NameHistory) Current() string {
	if len(h) == 0 {
		return ""
	}
	return h[0].Name
}

// Normalize removes consecutive duplicate names, preserving order.
// Baselines written by older runs may contain adjacent repeats.
func (h NameHistory) Normalize() NameHistory {
	if len(h) < 2 {
		return h
	}
	out := NameHistory{h[0]}
	for _, r := range h[1:] {
		if r.Name != out[len(out)-1].Name {
			out = append(out, r)
		}
	}
	return out
}

// MergeHistory combines a previously recorded history with a freshly
// resolved name.
//
// A non-empty existing history is authoritative and returned unchanged, even
// when fresh differs from every recorded name. This means rename tracking
// never grows past the first recorded entry; prior runs' snapshots are
// carried forward verbatim. Kept for compatibility with snapshots produced
// by earlier versions. See DESIGN.md.
//
// With no existing history and a non-nil fresh name, the result is a
// single-entry history stamped at now. With neither, the result is nil and
// the player cannot be reconciled.
func MergeHistory(existing NameHistory, fresh *string, now time.Time) NameHistory {
	if len(existing) > 0 {
		return existing
	}
	if fresh == nil || *fresh == "" {
		return nil
	}
	return NameHistory{{Name: *fresh, DetectedAt: now.UnixMilli()}}
}
