// Package sourcecheck confirms that each grant's official page still
// advertises the maximum amount shown on the site.
package sourcecheck

import (
	"context"
	"fmt"
	"sync"
	"time"

	"irishgrants/internal/logger"
	"irishgrants/internal/metrics"
	"irishgrants/internal/models"
	sentryutil "irishgrants/internal/sentry"
)

const (
	StateVerified    = "verified"
	StateMismatch    = "mismatch"
	StateUnreachable = "unreachable"
)

// Result is the verification outcome for one grant.
type Result struct {
	GrantID   string    `json:"grant_id"`
	URL       string    `json:"url"`
	State     string    `json:"state"`
	Expected  int       `json:"expected"`
	Found     []int     `json:"found,omitempty"`
	Changed   bool      `json:"page_changed"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

var (
	mu      sync.RWMutex
	results = make(map[string]Result)
)

// Verify fetches one official page and compares its amounts with g.MaxAmount.
func Verify(ctx context.Context, g models.Grant) Result {
	res := Result{GrantID: g.ID, URL: g.OfficialURL, Expected: g.MaxAmount, CheckedAt: time.Now()}

	body, changed, err := cache.fetch(ctx, g.OfficialURL)
	if err != nil {
		res.State = StateUnreachable
		res.Error = err.Error()
		return res
	}
	res.Changed = changed

	text, err := Text(body)
	if err != nil {
		res.State = StateUnreachable
		res.Error = fmt.Sprintf("parse: %v", err)
		return res
	}
	res.Found = Amounts(text)
	res.State = StateMismatch
	for _, a := range res.Found {
		if a == g.MaxAmount {
			res.State = StateVerified
			break
		}
	}
	return res
}

// RunCheck verifies every grant with a fixed euro maximum.
// Grants funded as a share of fees (MaxAmount 0) are skipped.
func RunCheck(ctx context.Context, grants []models.Grant) []Result {
	var out []Result
	mismatches := 0
	for _, g := range grants {
		if g.MaxAmount <= 0 || g.OfficialURL == "" {
			continue
		}
		res := Verify(ctx, g)
		out = append(out, res)

		mu.Lock()
		results[g.ID] = res
		mu.Unlock()

		switch res.State {
		case StateMismatch:
			mismatches++
			logger.Warn("sourcecheck: amount not found on official page", map[string]interface{}{
				"grant_id": g.ID, "expected": g.MaxAmount, "found": res.Found,
			})
			sentryutil.CaptureMessage(
				"Official page no longer shows advertised amount: "+g.ID,
				sentryutil.LevelWarning(),
				map[string]string{"component": "sourcecheck", "grant_id": g.ID, "url": g.OfficialURL},
			)
		case StateUnreachable:
			logger.Warn("sourcecheck: page unreachable", map[string]interface{}{
				"grant_id": g.ID, "url": g.OfficialURL, "error": res.Error,
			})
		}
	}

	metrics.SetSourceMismatches(mismatches)
	logger.Info("sourcecheck: completed", map[string]interface{}{"checked": len(out), "mismatches": mismatches})
	return out
}

// Results returns the latest result per grant id.
func Results() map[string]Result {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]Result, len(results))
	for k, v := range results {
		out[k] = v
	}
	return out
}

// ApplyStatus returns copies of grants annotated with the latest verification.
func ApplyStatus(grants []models.Grant) []models.Grant {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]models.Grant, len(grants))
	for i, g := range grants {
		if r, ok := results[g.ID]; ok {
			g.SourceVerified = r.State == StateVerified
			g.SourceNote = r.State + " " + r.CheckedAt.Format("2006-01-02")
		}
		out[i] = g
	}
	return out
}
