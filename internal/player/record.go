package player

// Record is the reconciled identity and activity record for one player.
// Timestamps are Unix milliseconds, TimeLived is seconds.
type Record struct {
	UUID       string      `json:"uuid"`
	UUIDShort  string      `json:"uuid_short"`
	PlayerName string      `json:"playername"`
	Names      NameHistory `json:"names"`
	Seen       int64       `json:"seen,omitempty"`
	TimeStart  int64       `json:"time_start,omitempty"`
	TimeLast   int64       `json:"time_last,omitempty"`
	TimeLived  int64       `json:"time_lived,omitempty"`
	LastUpdate int64       `json:"lastUpdate"`
	Banned     bool        `json:"banned"`
}

// List is the persisted player list from a run, used as the next run's
// reconciliation baseline.
type List []Record

// HistoryFor returns the recorded name history for the given short key,
// normalized, or nil if the player is not in the list.
func (l List) HistoryFor(uuidShort string) NameHistory {
	for i := range l {
		if l[i].UUIDShort == uuidShort {
			return l[i].Names.Normalize()
		}
	}
	return nil
}
