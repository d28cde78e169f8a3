// Package linkcheck verifies that the official grant pages linked from the
// site still respond.
package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"irishgrants/internal/config"
	"irishgrants/internal/logger"
	"irishgrants/internal/metrics"
	"irishgrants/internal/models"
	sentryutil "irishgrants/internal/sentry"
)

// Target is one URL to check. ID is the grant id, or "source:<host>" for
// content sources. VerifiedOn is the day the page was last read for the
// site's content, used to pick an archived copy when the link breaks.
type Target struct {
	ID         string
	URL        string
	VerifiedOn string
}

// Result is the outcome of checking one target.
type Result struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"status_code"`
	CheckedAt  string `json:"checked_at"`
	WaybackURL string `json:"wayback_url,omitempty"`
}

var (
	statusCache sync.Map // map[string]Result

	runMu   sync.Mutex
	lastRun time.Time
	broken  []Result
	total   int
)

var client = &http.Client{
	Timeout: 10 * time.Second,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return http.ErrUseLastResponse
		}
		return nil
	},
}

// Targets builds the check list from the grant catalogue and the content
// metadata's sources and last full update.
func Targets(grants []models.Grant, md models.ContentMetadata) []Target {
	var out []Target
	for _, g := range grants {
		if g.OfficialURL != "" {
			out = append(out, Target{ID: g.ID, URL: g.OfficialURL, VerifiedOn: md.LastFullUpdate})
		}
	}
	for _, s := range md.Sources {
		u, err := url.Parse(s)
		if err != nil || u.Host == "" {
			continue
		}
		out = append(out, Target{ID: "source:" + u.Host, URL: s, VerifiedOn: md.LastFullUpdate})
	}
	return out
}

// ApplyStatus returns copies of grants with the cached link results patched on.
func ApplyStatus(grants []models.Grant) []models.Grant {
	out := make([]models.Grant, len(grants))
	for i, g := range grants {
		if v, ok := statusCache.Load(g.ID); ok {
			r := v.(Result)
			g.LinkVerified = r.OK
			g.LinkCheckedAt = r.CheckedAt
			g.ArchivedURL = r.WaybackURL
		}
		out[i] = g
	}
	return out
}

// CheckLink verifies if a URL responds with a 2xx/3xx status using HEAD.
// Some government sites reject HEAD, so a 405 is retried as GET.
func CheckLink(ctx context.Context, rawURL string) (ok bool, statusCode int) {
	status, err := request(ctx, http.MethodHead, rawURL)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = request(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		return false, 0
	}
	return status >= 200 && status < 400, status
}

func request(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", config.Cfg.UserAgent)
	req.Header.Set("Accept-Language", "en-IE,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// CheckAll checks every target (max 5 concurrent) and returns the number of broken links.
// Broken links are looked up in the Wayback Machine so an editor has a fallback to point to.
func CheckAll(ctx context.Context, targets []Target) int {
	today := time.Now().Format("2006-01-02")

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed []Result
	sem := make(chan struct{}, 5)

	for _, t := range targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ok, status := CheckLink(ctx, t.URL)
			res := Result{ID: t.ID, URL: t.URL, OK: ok, StatusCode: status, CheckedAt: today}
			if ok {
				statusCache.Store(t.ID, res)
				return
			}

			if snapshot, found := ArchivedCopy(ctx, t.URL, t.VerifiedOn); found {
				res.WaybackURL = snapshot
			}
			statusCache.Store(t.ID, res)

			mu.Lock()
			failed = append(failed, res)
			mu.Unlock()

			logger.Warn("linkcheck: broken", map[string]interface{}{
				"id": t.ID, "url": t.URL, "status": status, "wayback": res.WaybackURL,
			})
			sentryutil.CaptureMessage(
				"Broken link: "+t.ID,
				sentryutil.LevelWarning(),
				map[string]string{
					"component": "linkcheck",
					"id":        t.ID,
					"url":       t.URL,
					"status":    fmt.Sprintf("%d", status),
				},
			)
		}(t)
	}
	wg.Wait()

	runMu.Lock()
	lastRun = time.Now()
	broken = failed
	total = len(targets)
	runMu.Unlock()

	metrics.SetBrokenLinks(len(failed))
	logger.Info("linkcheck: completed", map[string]interface{}{"broken": len(failed), "total": len(targets)})
	return len(failed)
}

// Summary reports the last run for the health and admin endpoints.
func Summary() map[string]interface{} {
	runMu.Lock()
	defer runMu.Unlock()
	details := make([]Result, len(broken))
	copy(details, broken)
	last := ""
	if !lastRun.IsZero() {
		last = lastRun.UTC().Format(time.RFC3339)
	}
	return map[string]interface{}{
		"total":          total,
		"broken":         len(broken),
		"last_run":       last,
		"broken_details": details,
	}
}

// LastRun is the completion time of the most recent check, zero if none ran.
func LastRun() time.Time {
	runMu.Lock()
	defer runMu.Unlock()
	return lastRun
}
