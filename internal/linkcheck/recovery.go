package linkcheck

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"irishgrants/internal/config"
	"irishgrants/internal/logger"

	json "github.com/goccy/go-json"
)

type waybackResponse struct {
	ArchivedSnapshots struct {
		Closest struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
			Timestamp string `json:"timestamp"`
			Status    string `json:"status"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

// waybackAPI is swapped out in tests.
var waybackAPI = "https://archive.org/wayback/available"

var waybackClient = &http.Client{
	Timeout: 10 * time.Second,
}

// ArchivedCopy finds the Wayback Machine snapshot of an official grant page
// closest to verifiedOn (YYYY-MM-DD), the day the site's figures were last
// checked against it. Only snapshots archived with HTTP 200 count, so a copy
// of an error page is never offered in place of the scheme's terms.
func ArchivedCopy(ctx context.Context, rawURL, verifiedOn string) (string, bool) {
	q := url.Values{"url": {rawURL}}
	if day, err := time.Parse("2006-01-02", verifiedOn); err == nil {
		q.Set("timestamp", day.Format("20060102"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, waybackAPI+"?"+q.Encode(), nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", config.Cfg.UserAgent)

	resp, err := waybackClient.Do(req)
	if err != nil {
		logger.Warn("linkcheck: archive lookup failed", map[string]interface{}{
			"url": rawURL, "error": err.Error(),
		})
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var wb waybackResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&wb); err != nil {
		return "", false
	}
	snap := wb.ArchivedSnapshots.Closest
	if !snap.Available || snap.URL == "" || snap.Status != "200" {
		return "", false
	}
	// the API reports http:// snapshot links; the archive serves them over TLS
	return strings.Replace(snap.URL, "http://", "https://", 1), true
}
