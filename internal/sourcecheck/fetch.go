package sourcecheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"irishgrants/internal/config"
	"irishgrants/internal/logger"
)

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("too many redirects")
		}
		return nil
	},
}

// retryDelays are the waits between attempts on 429/5xx responses.
var retryDelays = []time.Duration{2 * time.Second, 4 * time.Second}

type cacheEntry struct {
	body         []byte
	etag         string
	lastModified string
	fetchedAt    time.Time
}

// pageCache keeps the last body per URL so unchanged pages are answered with 304.
type pageCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

var cache = &pageCache{entries: make(map[string]*cacheEntry)}

type retryableError struct {
	StatusCode int
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable HTTP status %d", e.StatusCode)
}

// fetch returns the page body and whether it changed since the previous fetch.
func (c *pageCache) fetch(ctx context.Context, rawURL string) ([]byte, bool, error) {
	var lastErr error
	for attempt := 0; attempt <= len(retryDelays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			case <-time.After(retryDelays[attempt-1]):
			}
		}

		body, changed, err := c.doFetch(ctx, rawURL)
		if err == nil {
			return body, changed, nil
		}
		lastErr = err
		var re *retryableError
		if !errors.As(err, &re) {
			return nil, false, err
		}
		logger.Warn("sourcecheck: retrying", map[string]interface{}{
			"url": rawURL, "attempt": attempt + 1, "error": err.Error(),
		})
	}
	return nil, false, fmt.Errorf("all retries exhausted: %w", lastErr)
}

func (c *pageCache) doFetch(ctx context.Context, rawURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", config.Cfg.UserAgent)
	req.Header.Set("Accept-Language", "en-IE,en;q=0.9")

	c.mu.RLock()
	entry, cached := c.entries[rawURL]
	c.mu.RUnlock()
	if cached {
		if entry.etag != "" {
			req.Header.Set("If-None-Match", entry.etag)
		}
		if entry.lastModified != "" {
			req.Header.Set("If-Modified-Since", entry.lastModified)
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached {
		return entry.body, false, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 504) {
		return nil, false, &retryableError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, false, err
	}

	changed := !cached || string(entry.body) != string(body)
	c.mu.Lock()
	c.entries[rawURL] = &cacheEntry{
		body:         body,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		fetchedAt:    time.Now(),
	}
	c.mu.Unlock()
	return body, changed, nil
}
