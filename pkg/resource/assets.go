// pkg/resource/assets.go
package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/opd-ai/go-orrery/pkg/config"
	"github.com/opd-ai/go-orrery/pkg/logging"
	"github.com/opd-ai/go-orrery/pkg/metrics"
)

// maxAssetBytes caps a single texture download.
const maxAssetBytes = 16 << 20

// AssetState is the load state of one texture key.
type AssetState int

const (
	AssetPending AssetState = iota
	AssetReady
	AssetFailed
)

func (s AssetState) String() string {
	switch s {
	case AssetPending:
		return "pending"
	case AssetReady:
		return "ready"
	case AssetFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Appearance is what a renderer needs to draw a texture key.
type Appearance struct {
	Key   string
	Tint  string // #rrggbb
	State AssetState
}

// Fetcher retrieves the raw bytes of a texture.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// placeholderTints are used until a texture loads, and forever if it fails.
var placeholderTints = map[string]string{
	"sun":            "#ffb347",
	"mercury":        "#9e9e9e",
	"venus":          "#e6c07b",
	"earth":          "#3b7dd8",
	"earth_specular": "#202020",
	"earth_normal":   "#8080ff",
	"mars":           "#c1440e",
	"jupiter":        "#d8ca9d",
	"saturn":         "#e3d9a5",
	"saturn_ring":    "#bfae82",
}

type assetEntry struct {
	state AssetState
	tint  string
	err   error
}

// Registry tracks texture loads. Rendering never blocks on it: keys that
// are not ready draw with a placeholder tint.
type Registry struct {
	mu          sync.RWMutex
	entries     map[string]*assetEntry
	defaultTint string
	fetcher     Fetcher
	manager     *Manager
	logger      *logging.Logger
}

// NewRegistry creates a registry. fetcher may be nil, in which case every
// key stays on its placeholder.
func NewRegistry(defaultTint string, fetcher Fetcher, manager *Manager, logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	if defaultTint == "" {
		defaultTint = "#808080"
	}
	return &Registry{
		entries:     make(map[string]*assetEntry),
		defaultTint: defaultTint,
		fetcher:     fetcher,
		manager:     manager,
		logger:      logger,
	}
}

// Load starts background fetches for keys not yet requested. It returns
// once the fetches are scheduled; use Wait or poll Appearance for results.
func (r *Registry) Load(ctx context.Context, keys ...string) error {
	if r.fetcher == nil || r.manager == nil {
		return nil
	}

	var errs []error
	for _, key := range keys {
		if key == "" {
			continue
		}
		r.mu.Lock()
		if _, ok := r.entries[key]; ok {
			r.mu.Unlock()
			continue
		}
		r.entries[key] = &assetEntry{state: AssetPending}
		r.mu.Unlock()

		err := r.manager.Go(ctx, "asset:"+key, func(ctx context.Context) {
			r.fetch(ctx, key)
		})
		if err != nil {
			r.finish(key, "", err)
			errs = append(errs, fmt.Errorf("schedule %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) fetch(ctx context.Context, key string) {
	data, err := r.fetcher.Fetch(ctx, key)
	if err != nil {
		r.finish(key, "", err)
		return
	}
	tint, err := averageTint(data)
	if err != nil {
		r.finish(key, "", fmt.Errorf("decode %s: %w", key, err))
		return
	}
	r.finish(key, tint, nil)
}

func (r *Registry) finish(key, tint string, err error) {
	r.mu.Lock()
	entry, ok := r.entries[key]
	if !ok {
		entry = &assetEntry{}
		r.entries[key] = entry
	}
	if err != nil {
		entry.state = AssetFailed
		entry.err = err
	} else {
		entry.state = AssetReady
		entry.tint = tint
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn(context.Background(), "texture unavailable, using placeholder", "texture", key, "error", err)
		return
	}
	r.logger.Debug(context.Background(), "texture loaded", "texture", key, "tint", tint)
}

// Appearance returns the tint to draw key with. Unknown, pending and
// failed keys fall back to the placeholder for the key, then the default.
func (r *Registry) Appearance(key string) Appearance {
	r.mu.RLock()
	entry, ok := r.entries[key]
	var state AssetState
	var tint string
	if ok {
		state, tint = entry.state, entry.tint
	}
	r.mu.RUnlock()

	if ok && state == AssetReady {
		return Appearance{Key: key, Tint: tint, State: AssetReady}
	}
	if !ok {
		state = AssetPending
	}
	return Appearance{Key: key, Tint: r.placeholder(key), State: state}
}

func (r *Registry) placeholder(key string) string {
	if tint, ok := placeholderTints[strings.ToLower(key)]; ok {
		return tint
	}
	return r.defaultTint
}

// Err returns the failure recorded for key, if any.
func (r *Registry) Err(key string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.entries[key]; ok {
		return entry.err
	}
	return nil
}

// Pending returns the number of requested keys that have not settled.
func (r *Registry) Pending() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.entries {
		if e.state == AssetPending {
			n++
		}
	}
	return n
}

// Wait blocks until no key is pending or ctx is done.
func (r *Registry) Wait(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for r.Pending() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// TextureKeys lists every texture key referenced by cfg, sorted and
// de-duplicated.
func TextureKeys(cfg *config.GameConfig) []string {
	seen := make(map[string]struct{})
	add := func(key string) {
		if key != "" {
			seen[key] = struct{}{}
		}
	}
	add(cfg.Star.Texture)
	for _, p := range cfg.Planets {
		add(p.Texture)
		add(p.SpecularMap)
		add(p.NormalMap)
		if p.Ring != nil {
			add(p.Ring.Texture)
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// MaxTexturePixels bounds the decoded size of a fetched texture.
const MaxTexturePixels = 8192 * 8192

// averageTint decodes a PNG or JPEG and returns its mean colour, sampling
// at most about 64x64 pixels. Headers claiming more than MaxTexturePixels
// are rejected before any pixel data is allocated.
func averageTint(data []byte) (string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxTexturePixels {
		return "", fmt.Errorf("image dimensions %dx%d out of range", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	b := img.Bounds()
	if b.Empty() {
		return "", fmt.Errorf("empty image")
	}
	stepX := max(1, b.Dx()/64)
	stepY := max(1, b.Dy()/64)

	var sr, sg, sb, n uint64
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			sr += uint64(cr >> 8)
			sg += uint64(cg >> 8)
			sb += uint64(cb >> 8)
			n++
		}
	}
	return fmt.Sprintf("#%02x%02x%02x", sr/n, sg/n, sb/n), nil
}

// HTTPFetcher downloads textures from BaseURL through a circuit breaker.
type HTTPFetcher struct {
	baseURL  string
	client   *http.Client
	timeout  time.Duration
	breaker  *Breaker
	recorder metrics.AssetRecorder
}

// NewHTTPFetcher creates a fetcher. Keys without an extension get ".jpg".
// recorder may be nil.
func NewHTTPFetcher(baseURL string, env *config.EnvironmentConfig, breaker *Breaker, recorder metrics.AssetRecorder) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{},
		timeout:  env.AssetTimeout,
		breaker:  breaker,
		recorder: recorder,
	}
}

// URL returns the address key is fetched from.
func (f *HTTPFetcher) URL(key string) string {
	name := key
	if path.Ext(name) == "" {
		name += ".jpg"
	}
	return f.baseURL + "/" + url.PathEscape(name)
}

// Fetch downloads key.
func (f *HTTPFetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	var data []byte
	err := f.breaker.Execute(ctx, func() error {
		var err error
		data, err = f.get(ctx, key)
		return err
	})

	if f.recorder != nil {
		result := metrics.ResultOK
		switch {
		case errors.Is(err, ErrCircuitOpen):
			result = metrics.ResultCircuitOpen
		case err != nil:
			result = metrics.ResultError
		}
		f.recorder.AssetFetched(result, time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (f *HTTPFetcher) get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", key, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}
