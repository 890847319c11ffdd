package app

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/bramblefox/mcstats-companion/internal/output"
	"github.com/bramblefox/mcstats-companion/internal/player"
)

// KeyLister lists all known player keys. Implemented by savedata.Reader.
type KeyLister interface {
	ListKeys() ([]player.Key, error)
}

// DocumentWriter persists run outputs. Implemented by output.Writer.
type DocumentWriter interface {
	WritePlayer(uuidShort string, doc *output.PlayerDocument) error
	WriteList(list player.List) error
}

// Summary reports the result of a batch run.
type Summary struct {
	Total    int
	Resolved int
	Absent   int
}

// Runner iterates all known player keys, builds each record, and persists
// the outputs. Per-player work runs on a bounded worker pool; each player's
// pipeline is independent, so a failure never aborts the batch.
type Runner struct {
	keys      KeyLister
	builder   *Builder
	writer    DocumentWriter
	workers   int
	whitelist map[string]bool // empty = no filter
	logger    *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithWhitelist restricts the run to whitelisted short keys.
func WithWhitelist(set map[string]bool) RunnerOption {
	return func(r *Runner) { r.whitelist = set }
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a Runner.
func NewRunner(keys KeyLister, builder *Builder, writer DocumentWriter, opts ...RunnerOption) *Runner {
	r := &Runner{
		keys:    keys,
		builder: builder,
		writer:  writer,
		workers: 4,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reconciles every known player and writes the player list snapshot.
// Returns an error only when the key listing or the final snapshot write
// fails; per-player failures are counted as Absent.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	keys, err := r.keys.ListKeys()
	if err != nil {
		return Summary{}, err
	}
	if len(r.whitelist) > 0 {
		filtered := keys[:0]
		for _, key := range keys {
			if r.whitelist[key.Short()] {
				filtered = append(filtered, key)
			}
		}
		keys = filtered
	}

	r.logger.Info("run started", "players", len(keys), "workers", r.workers)

	var (
		mu      sync.Mutex
		records player.List
		absent  int
	)

	work := make(chan player.Key)
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range work {
				if rec := r.process(ctx, key); rec != nil {
					mu.Lock()
					records = append(records, *rec)
					mu.Unlock()
				} else {
					mu.Lock()
					absent++
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for _, key := range keys {
		select {
		case work <- key:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	// Deterministic snapshot order regardless of worker interleaving.
	sort.Slice(records, func(i, j int) bool {
		return records[i].UUIDShort < records[j].UUIDShort
	})
	if err := r.writer.WriteList(records); err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(keys), Resolved: len(records), Absent: absent}
	r.logger.Info("run finished",
		"total", summary.Total,
		"resolved", summary.Resolved,
		"absent", summary.Absent,
	)
	return summary, nil
}

// process builds and persists one player. Returns the record, or nil when
// the player is Absent.
func (r *Runner) process(ctx context.Context, key player.Key) *player.Record {
	outcome := r.builder.Build(ctx, key)
	if outcome == nil {
		return nil
	}

	// The Degraded reason is internal; the document carries plain objects.
	doc := &output.PlayerDocument{
		Stats:        outcome.Stats.Merged,
		StatsSource:  outcome.Stats.Source,
		Advancements: outcome.Advancements.Data,
		Data:         outcome.Record,
	}
	if err := r.writer.WritePlayer(outcome.Record.UUIDShort, doc); err != nil {
		// The record still counts: data persistence failure must not drop
		// the player from the snapshot.
		r.logger.Error("player document write failed",
			"uuid", outcome.Record.UUIDShort,
			"error", err,
		)
	}
	return outcome.Record
}
