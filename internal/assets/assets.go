// Package assets downloads avatar, body, and skin renders for a player from
// one of two providers: a configured alternate skin service or a public
// renderer.
package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/bramblefox/mcstats-companion/internal/player"
)

// DefaultRendererURL is the public renderer used when no skin service is
// configured.
const DefaultRendererURL = "https://crafatar.com"

// Fallback skins served when a player has no custom skin. The choice is
// deterministic per player so re-runs produce identical assets.
const (
	fallbackSteve = "MHF_Steve"
	fallbackAlex  = "MHF_Alex"
)

// Output filenames, fixed per player directory.
const (
	AvatarFile = "avatar.png"
	BodyFile   = "body.png"
	SkinFile   = "skin.png"
)

// downloadTimeout bounds a single asset download.
const downloadTimeout = 30 * time.Second

// NameResolver resolves the current display name for the skin-service
// provider. Implemented by identity.Resolver.
type NameResolver interface {
	Resolve(ctx context.Context, key player.Key) *string
}

// Config configures the asset pipeline.
type Config struct {
	// SkinServer is the base URL of an alternate skin service. When empty,
	// assets come from the public renderer instead.
	SkinServer string
	// RendererURL overrides the public renderer base URL.
	RendererURL string
	// DownloadsPerSecond throttles image downloads across all players.
	// Zero means 4/s.
	DownloadsPerSecond float64
}

// DownloadResult records the outcome of one asset download for logging.
// Downloads are best-effort: a failed download does not fail the pipeline.
type DownloadResult struct {
	Name   string
	Status int
	Err    error
}

// OK reports whether the download succeeded.
func (r DownloadResult) OK() bool {
	return r.Err == nil && r.Status == http.StatusOK
}

// Fetcher downloads player assets.
type Fetcher struct {
	cfg      Config
	client   *http.Client
	resolver NameResolver
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// New creates a Fetcher. resolver is required only for the skin-service
// provider and may be nil otherwise.
func New(cfg Config, resolver NameResolver, opts ...Option) *Fetcher {
	if cfg.RendererURL == "" {
		cfg.RendererURL = DefaultRendererURL
	}
	if cfg.DownloadsPerSecond <= 0 {
		cfg.DownloadsPerSecond = 4
	}
	f := &Fetcher{
		cfg:      cfg,
		client:   &http.Client{Timeout: downloadTimeout},
		resolver: resolver,
		limiter:  rate.NewLimiter(rate.Limit(cfg.DownloadsPerSecond), 1),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll downloads the three assets for a player into destDir. It fails
// only on directory creation or on the skin-service profile lookup;
// individual downloads are best-effort and logged.
func (f *Fetcher) FetchAll(ctx context.Context, key player.Key, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}

	var urls map[string]string
	if f.cfg.SkinServer != "" {
		hash, err := f.lookupSkinHash(ctx, key)
		if err != nil {
			return err
		}
		urls = f.skinServerURLs(hash)
	} else {
		urls = f.rendererURLs(key)
	}

	for _, name := range []string{AvatarFile, BodyFile, SkinFile} {
		res := f.download(ctx, urls[name], filepath.Join(destDir, name))
		res.Name = name
		if !res.OK() {
			f.logger.Warn("asset download failed",
				"uuid", key.Short(),
				"asset", res.Name,
				"status", res.Status,
				"error", res.Err,
			)
		}
	}
	return nil
}

// lookupSkinHash resolves the player's name and fetches the skin descriptor
// from the configured skin service.
func (f *Fetcher) lookupSkinHash(ctx context.Context, key player.Key) (string, error) {
	name := f.resolver.Resolve(ctx, key)
	if name == nil {
		return "", fmt.Errorf("skin service: no name for %s", key.Short())
	}

	url := f.cfg.SkinServer + "/profiles/" + *name

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("skin profile request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("skin profile lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("skin profile lookup: status %d", resp.StatusCode)
	}

	var descriptor struct {
		SkinHash string `json:"skinHash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&descriptor); err != nil {
		return "", fmt.Errorf("skin profile decode: %w", err)
	}
	if descriptor.SkinHash == "" {
		return "", fmt.Errorf("skin profile for %s has no skin hash", key.Short())
	}
	return descriptor.SkinHash, nil
}

// skinServerURLs derives asset URLs from the service's path templates.
func (f *Fetcher) skinServerURLs(hash string) map[string]string {
	base := f.cfg.SkinServer
	return map[string]string{
		AvatarFile: base + "/avatars/" + hash + "?size=64",
		BodyFile:   base + "/renders/body/" + hash,
		SkinFile:   base + "/skins/" + hash,
	}
}

// rendererURLs derives asset URLs directly from the player key.
func (f *Fetcher) rendererURLs(key player.Key) map[string]string {
	base := f.cfg.RendererURL
	id := key.String()
	fallback := DefaultSkin(key)
	return map[string]string{
		AvatarFile: base + "/avatars/" + id + "?size=64&overlay&default=" + fallback,
		BodyFile:   base + "/renders/body/" + id + "?scale=6&overlay&default=" + fallback,
		SkinFile:   base + "/skins/" + id + "?default=" + fallback,
	}
}

// DefaultSkin picks the fallback skin for a player, stable across runs:
// an even FNV hash of the short key maps to Steve, odd to Alex.
func DefaultSkin(key player.Key) string {
	h := fnv.New32a()
	h.Write([]byte(key.Short()))
	if h.Sum32()%2 == 0 {
		return fallbackSteve
	}
	return fallbackAlex
}

// download fetches one URL into a file.
func (f *Fetcher) download(ctx context.Context, url, dest string) DownloadResult {
	if err := f.limiter.Wait(ctx); err != nil {
		return DownloadResult{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return DownloadResult{Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return DownloadResult{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return DownloadResult{Status: resp.StatusCode}
	}

	out, err := os.Create(dest)
	if err != nil {
		return DownloadResult{Status: resp.StatusCode, Err: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return DownloadResult{Status: resp.StatusCode, Err: err}
	}
	return DownloadResult{Status: resp.StatusCode}
}
