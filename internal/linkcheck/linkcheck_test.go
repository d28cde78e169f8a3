package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"irishgrants/internal/config"
	"irishgrants/internal/models"
)

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/get-only", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckLink(t *testing.T) {
	srv := newSite(t)
	ctx := context.Background()

	if ok, code := CheckLink(ctx, srv.URL+"/ok"); !ok || code != 200 {
		t.Errorf("/ok = %v %d", ok, code)
	}
	if ok, code := CheckLink(ctx, srv.URL+"/gone"); ok || code != 404 {
		t.Errorf("/gone = %v %d", ok, code)
	}
	if ok, _ := CheckLink(ctx, srv.URL+"/get-only"); !ok {
		t.Error("/get-only should pass after GET retry")
	}
	if ok, code := CheckLink(ctx, "http://127.0.0.1:1/unreachable"); ok || code != 0 {
		t.Errorf("unreachable = %v %d", ok, code)
	}
}

func TestCheckAllAndApplyStatus(t *testing.T) {
	srv := newSite(t)
	var askedFor string
	wayback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		askedFor = r.URL.Query().Get("timestamp")
		fmt.Fprintf(w, `{"archived_snapshots":{"closest":{"available":true,"url":"http://web.archive.org/web/20260930/%s","timestamp":"20260930","status":"200"}}}`, r.URL.Query().Get("url"))
	}))
	defer wayback.Close()
	waybackAPI = wayback.URL

	grants := []models.Grant{
		{ID: "seai-ev-grant", OfficialURL: srv.URL + "/ok"},
		{ID: "seai-home-charger-grant", OfficialURL: srv.URL + "/gone"},
		{ID: "no-link"},
	}
	md := models.ContentMetadata{LastFullUpdate: "2026-10-01", Sources: []string{"https://springboardcourses.ie", "::bad"}}
	targets := Targets(grants, md)
	if len(targets) != 3 {
		t.Fatalf("targets = %+v", targets)
	}
	if targets[2].ID != "source:springboardcourses.ie" {
		t.Errorf("source target id = %q", targets[2].ID)
	}

	if n := CheckAll(context.Background(), targets[:2]); n != 1 {
		t.Fatalf("broken = %d, want 1", n)
	}

	applied := ApplyStatus(grants)
	if !applied[0].LinkVerified || applied[1].LinkVerified {
		t.Errorf("applied = %+v", applied)
	}
	if applied[0].LinkCheckedAt == "" {
		t.Error("LinkCheckedAt not set")
	}
	if applied[0].ArchivedURL != "" || !strings.HasPrefix(applied[1].ArchivedURL, "https://web.archive.org/web/20260930/") {
		t.Errorf("archived urls = %q, %q", applied[0].ArchivedURL, applied[1].ArchivedURL)
	}
	if askedFor != "20261001" {
		t.Errorf("archive lookup timestamp = %q, want the last verification day", askedFor)
	}
	if grants[0].LinkVerified {
		t.Error("ApplyStatus modified its input")
	}

	sum := Summary()
	details := sum["broken_details"].([]Result)
	if len(details) != 1 || !strings.HasPrefix(details[0].WaybackURL, "https://web.archive.org/") {
		t.Errorf("summary = %+v", sum)
	}
	if LastRun().IsZero() {
		t.Error("LastRun not recorded")
	}
}

func TestArchivedCopyRejectsErrorSnapshots(t *testing.T) {
	wayback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"archived_snapshots":{"closest":{"available":true,"url":"http://web.archive.org/web/2026/x","timestamp":"20260101","status":"404"}}}`)
	}))
	defer wayback.Close()
	old := waybackAPI
	waybackAPI = wayback.URL
	defer func() { waybackAPI = old }()

	if u, ok := ArchivedCopy(context.Background(), "https://www.seai.ie/gone", ""); ok {
		t.Errorf("a 404 snapshot should not be offered, got %q", u)
	}
}

func TestAdminLinksHandlerRequiresKey(t *testing.T) {
	config.Cfg.AdminAPIKey = "k"
	defer func() { config.Cfg.AdminAPIKey = "" }()

	rec := httptest.NewRecorder()
	AdminLinksHandler(rec, httptest.NewRequest("GET", "/api/admin/links", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	AdminLinksHandler(rec, httptest.NewRequest("GET", "/api/admin/links?key=k", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "broken") {
		t.Fatalf("with key: %d %s", rec.Code, rec.Body.String())
	}
}
