// Package identity resolves a player's current display name via a throttled
// third-party lookup service.
package identity

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bramblefox/mcstats-companion/internal/player"
)

// SessionServerURL is the well-known public session server profile endpoint.
const SessionServerURL = "https://sessionserver.mojang.com/session/minecraft/profile/"

// lookupTimeout bounds a single external lookup.
const lookupTimeout = 30 * time.Second

// Gate serializes outbound lookups. Implemented by gate.Gate.
type Gate interface {
	Acquire(ctx context.Context) error
	Release(success bool)
}

// NameCache is an optional persistent cache of resolved names.
// Implemented by store.Store. A miss is ("", zero, nil).
type NameCache interface {
	GetName(ctx context.Context, uuidShort string) (name string, resolvedAt time.Time, err error)
	PutName(ctx context.Context, uuidShort, name string, resolvedAt time.Time) error
}

// profile is the upstream profile response. Only the name field is consumed.
type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Resolver resolves player keys to display names. Resolve never returns an
// error to its caller; absence of a name is a valid, expected outcome.
type Resolver struct {
	gate        Gate
	client      *http.Client
	apiHost     string // alternate identity-service base URL; "" = session server
	defaultName string
	cache       NameCache
	cacheTTL    time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) { r.client = client }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithCache enables the persistent name cache. Entries older than ttl are
// ignored and re-resolved.
func WithCache(cache NameCache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = cache
		r.cacheTTL = ttl
	}
}

// WithClock sets the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// New creates a Resolver. apiHost selects an alternate identity service
// (looked up by short key); when empty, the public session server is used
// (looked up by hyphenated key). defaultName, when non-empty, is returned on
// any lookup failure.
func New(g Gate, apiHost, defaultName string, opts ...Option) *Resolver {
	r := &Resolver{
		gate:        g,
		client:      &http.Client{Timeout: lookupTimeout},
		apiHost:     apiHost,
		defaultName: defaultName,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// lookupURL builds the profile lookup URL for a key.
func (r *Resolver) lookupURL(key player.Key) string {
	if r.apiHost != "" {
		return r.apiHost + key.Short()
	}
	return SessionServerURL + key.String()
}

// Resolve returns the player's current display name, or the configured
// default on failure, or nil when neither is available. It waits on the
// gate for as long as the gate allows; a gate timeout counts as a failure.
func (r *Resolver) Resolve(ctx context.Context, key player.Key) *string {
	short := key.Short()

	if r.cache != nil {
		name, resolvedAt, err := r.cache.GetName(ctx, short)
		switch {
		case err != nil:
			r.logger.Warn("name cache read failed", "uuid", short, "error", err)
		case name != "" && r.now().Sub(resolvedAt) < r.cacheTTL:
			r.logger.Debug("name resolved from cache", "uuid", short, "name", name)
			return &name
		}
	}

	if err := r.gate.Acquire(ctx); err != nil {
		r.logger.Warn("identity lookup gate not acquired", "uuid", short, "error", err)
		return r.fallback()
	}

	name, ok := r.fetch(ctx, key)
	r.gate.Release(ok)
	if !ok {
		return r.fallback()
	}

	if r.cache != nil {
		if err := r.cache.PutName(ctx, short, name, r.now()); err != nil {
			r.logger.Warn("name cache write failed", "uuid", short, "error", err)
		}
	}
	return &name
}

// fetch performs one profile lookup. ok is false on any network error,
// non-2xx status, or an explicitly-empty profile (key unknown upstream).
func (r *Resolver) fetch(ctx context.Context, key player.Key) (name string, ok bool) {
	url := r.lookupURL(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		r.logger.Warn("identity lookup request invalid", "error", err)
		return "", false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("identity lookup failed", "uuid", key.Short(), "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		r.logger.Warn("identity lookup rejected", "uuid", key.Short(), "status", resp.StatusCode)
		return "", false
	}

	var p profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		// 204-style empty body: the key is unknown upstream.
		if err == io.EOF {
			r.logger.Debug("profile not found upstream", "uuid", key.Short())
			return "", false
		}
		r.logger.Warn("identity lookup malformed response", "uuid", key.Short(), "error", err)
		return "", false
	}
	if p.Name == "" {
		r.logger.Debug("profile empty upstream", "uuid", key.Short())
		return "", false
	}

	r.logger.Debug("name resolved", "uuid", key.Short(), "name", p.Name)
	return p.Name, true
}

// fallback returns the configured default name, or nil if none is set.
func (r *Resolver) fallback() *string {
	if r.defaultName == "" {
		return nil
	}
	name := r.defaultName
	return &name
}
