// Package feed overlays read-only ICS subscriptions next to the user's
// own events: fetch with HTTP caching, parse, expand recurrences into
// concrete occurrences. It also exports the user's events as iCalendar.
package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	appLog "studycal/internal/log"
	"studycal/internal/slot"
)

// Source is a single ICS subscription.
type Source struct {
	// ID is an internal identifier (config feed ID).
	ID string
	// Name is a human-friendly label.
	Name string
	// URL is the ICS endpoint.
	URL string
}

// FetchResult is the outcome of fetching a single source.
type FetchResult struct {
	Source    Source
	Body      []byte // ICS payload, fresh or cached
	FromCache bool   // true when the cached body was reused
}

// cacheEntry is the per-URL cache record persisted through the slot
// store: HTTP validators plus the last good body.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Body         []byte    `json:"body"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher fetches ICS feeds honoring ETag / Last-Modified, with the cache
// kept in the same durable slot store as the rest of the application
// state.
type Fetcher struct {
	client *http.Client
	cache  slot.Store
}

// NewFetcher creates a Fetcher caching into the given slot store.
func NewFetcher(cache slot.Store, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		cache:  cache,
	}
}

// FetchAll fetches every source. Sources that fail without a cached
// fallback are logged and collected into the error slice; the result
// slice only holds sources that produced a body.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, []error) {
	results := make([]FetchResult, 0, len(sources))
	errs := make([]error, 0)

	for _, src := range sources {
		res, err := f.FetchOne(ctx, src)
		if err != nil {
			errs = append(errs, err)
			appLog.Error("feed fetch failed", err, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		results = append(results, res)
	}

	return results, errs
}

// FetchOne fetches a single source, falling back to the cached body on
// network errors and non-OK statuses.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, errors.New("feed: source URL is empty")
	}

	key := cacheKey(src.URL)
	cached := f.loadCache(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if cached.ETag != "" {
		req.Header.Set("If-None-Match", cached.ETag)
	}
	if cached.LastModified != "" {
		req.Header.Set("If-Modified-Since", cached.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cached.Body) > 0 {
			appLog.Warn("feed fetch network error, using cached body", "id", src.ID, "url", redactURL(src.URL))
			return FetchResult{Source: src, Body: cached.Body, FromCache: true}, nil
		}
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return FetchResult{}, readErr
		}

		f.saveCache(key, cacheEntry{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			Body:         body,
			UpdatedAt:    time.Now().UTC(),
		})

		appLog.Info("feed fetch success", "id", src.ID, "url", redactURL(src.URL), "bytes", len(body))
		return FetchResult{Source: src, Body: body}, nil

	case http.StatusNotModified:
		if len(cached.Body) == 0 {
			return FetchResult{}, errors.New("feed: 304 Not Modified but no cached body")
		}
		appLog.Debug("feed not modified, using cache", "id", src.ID)
		return FetchResult{Source: src, Body: cached.Body, FromCache: true}, nil

	default:
		if len(cached.Body) > 0 {
			appLog.Warn("feed fetch non-OK, using cached body", "id", src.ID, "status", resp.StatusCode)
			return FetchResult{Source: src, Body: cached.Body, FromCache: true}, nil
		}
		return FetchResult{}, errors.New(resp.Status)
	}
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "feed.cache." + hex.EncodeToString(sum[:8])
}

func (f *Fetcher) loadCache(key string) cacheEntry {
	var entry cacheEntry
	data, ok, err := f.cache.Read(key)
	if err != nil || !ok {
		return entry
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return cacheEntry{}
	}
	return entry
}

func (f *Fetcher) saveCache(key string, entry cacheEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		appLog.Error("feed cache encode failed", err, "key", key)
		return
	}
	if err := f.cache.Write(key, data); err != nil {
		appLog.Error("feed cache save failed", err, "key", key)
	}
}

// redactURL hides sensitive parts of a subscription URL in logs; private
// feeds commonly embed tokens in the path or query.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := -1
	for idx := 0; idx+2 < len(u); idx++ {
		if u[idx:idx+3] == "://" {
			i = idx + 3
			break
		}
	}
	if i == -1 {
		return "ics://...(redacted)"
	}

	j := i
	for j < len(u) && u[j] != '/' {
		j++
	}
	return u[:j] + redactedSuffix
}
