// Package app assembles per-player records and orchestrates batch runs.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bramblefox/mcstats-companion/internal/player"
	"github.com/bramblefox/mcstats-companion/internal/savedata"
	"github.com/bramblefox/mcstats-companion/internal/stats"
)

// SaveReader reads decoded save-data fields. Implemented by savedata.Reader.
type SaveReader interface {
	Read(key player.Key) (*savedata.PlayerData, error)
}

// NameResolver resolves a current display name. Implemented by
// identity.Resolver.
type NameResolver interface {
	Resolve(ctx context.Context, key player.Key) *string
}

// StatsReader loads statistics and advancements. Implemented by stats.Reader.
type StatsReader interface {
	Load(key player.Key) stats.Result
	LoadAdvancements(key player.Key) stats.Advancements
}

// AssetFetcher downloads player assets. Implemented by assets.Fetcher.
type AssetFetcher interface {
	FetchAll(ctx context.Context, key player.Key, destDir string) error
}

// Outcome is a completed per-player reconciliation. A nil *Outcome means
// Absent: no record is producible for that key this run.
type Outcome struct {
	Record       *player.Record
	Stats        stats.Result
	Advancements stats.Advancements
}

// Builder assembles one player's record: save-data extraction, identity
// resolution, history merge, statistics, advancements, and assets.
// The record is owned by the Builder during construction and handed to the
// caller on return.
type Builder struct {
	saves    SaveReader
	resolver NameResolver
	stats    StatsReader

	assets   AssetFetcher        // optional
	assetDir func(string) string // player asset dir by short key

	baseline player.List
	banned   map[string]bool
	logger   *slog.Logger
	now      func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBaseline sets the prior run's persisted player list.
func WithBaseline(list player.List) BuilderOption {
	return func(b *Builder) { b.baseline = list }
}

// WithBanned sets the banned short-key set.
func WithBanned(banned map[string]bool) BuilderOption {
	return func(b *Builder) { b.banned = banned }
}

// WithAssets enables asset fetching, placing files in assetDir(shortKey).
func WithAssets(f AssetFetcher, assetDir func(uuidShort string) string) BuilderOption {
	return func(b *Builder) {
		b.assets = f
		b.assetDir = assetDir
	}
}

// WithBuilderLogger sets the logger.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// WithBuilderClock sets the time source (for testing).
func WithBuilderClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a Builder.
func NewBuilder(saves SaveReader, resolver NameResolver, statsReader StatsReader, opts ...BuilderOption) *Builder {
	b := &Builder{
		saves:    saves,
		resolver: resolver,
		stats:    statsReader,
		banned:   map[string]bool{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build reconciles one player. Returns nil (Absent) when the save data is
// missing or corrupt, or when no identity can be established at all. Every
// other sub-fetch degrades without invalidating the record.
func (b *Builder) Build(ctx context.Context, key player.Key) *Outcome {
	short := key.Short()

	pd, err := b.saves.Read(key)
	if err != nil {
		if errors.Is(err, savedata.ErrNoData) {
			b.logger.Debug("no save data", "uuid", short)
		} else {
			b.logger.Warn("save data unreadable", "uuid", short, "error", err)
		}
		return nil
	}

	existing := b.baseline.HistoryFor(short)

	var fresh *string
	if len(existing) == 0 {
		fresh = b.resolver.Resolve(ctx, key)
	}

	now := b.now()
	history := player.MergeHistory(existing, fresh, now)
	if history == nil {
		b.logger.Warn("no identity for player, skipping", "uuid", short)
		return nil
	}

	record := &player.Record{
		UUID:       key.String(),
		UUIDShort:  short,
		PlayerName: history.Current(),
		Names:      history,
		LastUpdate: now.UnixMilli(),
		Banned:     b.banned[short],
	}
	if pd.FirstPlayed != nil {
		record.TimeStart = *pd.FirstPlayed
	}
	if pd.LastPlayed != nil {
		record.TimeLast = *pd.LastPlayed
		record.Seen = *pd.LastPlayed
	}
	if pd.TicksLived != nil {
		record.TimeLived = *pd.TicksLived / 20
	}

	st := b.stats.Load(key)
	if !st.OK() {
		b.logger.Warn("statistics degraded", "uuid", short, "reason", st.Degraded)
	}
	adv := b.stats.LoadAdvancements(key)
	if !adv.OK() {
		b.logger.Warn("advancements degraded", "uuid", short, "reason", adv.Degraded)
	}

	if b.assets != nil {
		if err := b.assets.FetchAll(ctx, key, b.assetDir(short)); err != nil {
			b.logger.Warn("asset fetch failed", "uuid", short, "error", err)
		}
	}

	return &Outcome{Record: record, Stats: st, Advancements: adv}
}
