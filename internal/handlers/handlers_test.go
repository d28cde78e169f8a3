package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"irishgrants/internal/catalog"
	"irishgrants/internal/config"
	"irishgrants/internal/guides"
	"irishgrants/internal/models"

	json "github.com/goccy/go-json"
)

func TestMain(m *testing.M) {
	config.Cfg = config.Config{
		BaseURL:  "https://irishgrants.test",
		SiteName: "Irish Grants Hub",
	}
	if err := catalog.Load(); err != nil {
		panic(err)
	}
	if err := guides.LoadAll("../../content/guides"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func get(t *testing.T, h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestHomeHandler(t *testing.T) {
	w := get(t, HomeHandler, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"SEAI EV Grant", "Springboard+", "/ireland/county-cork/ev-grants/", `"@type": "Organization"`} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestHomeHandler_UnknownPath(t *testing.T) {
	w := get(t, HomeHandler, "/no-such-page")
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "noindex") {
		t.Error("404 page should be noindex")
	}
}

func TestGrantsHandler_EveryGrantHasAPage(t *testing.T) {
	for _, g := range catalog.Grants() {
		w := get(t, GrantsHandler, g.Path)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", g.Path, w.Code)
			continue
		}
		if !strings.Contains(w.Body.String(), htmlEscape(g.Name)) {
			t.Errorf("%s: page does not name the grant", g.Path)
		}
	}
}

func TestGrantsHandler_Categories(t *testing.T) {
	ev := get(t, GrantsHandler, "/grants/ev")
	if ev.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", ev.Code)
	}
	if !strings.Contains(ev.Body.String(), "tier-hit") {
		t.Error("EV category page should show the tier table")
	}
	edu := get(t, GrantsHandler, "/grants/education/")
	if edu.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", edu.Code)
	}
	if !strings.Contains(edu.Body.String(), "Human Capital Initiative") {
		t.Error("education page should list HCI")
	}
}

func TestGrantsHandler_EVGrantEmbedsEstimator(t *testing.T) {
	w := get(t, GrantsHandler, "/grants/ev/seai-ev-grant?county=Galway")
	body := w.Body.String()
	if !strings.Contains(body, `id="estimator"`) {
		t.Fatal("SEAI EV grant page should embed the estimator")
	}
	if !strings.Contains(body, `<option value="Galway" selected>`) {
		t.Error("county query should preselect Galway")
	}
}

func TestGrantsHandler_Unknown(t *testing.T) {
	w := get(t, GrantsHandler, "/grants/ev/unknown")
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
}

func TestCountyHandler(t *testing.T) {
	w := get(t, CountyHandler, "/ireland/county-cork/ev-grants/")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "EV Grants in Cork, Ireland") {
		t.Error("missing county heading")
	}
	if !strings.Contains(body, `<option value="Cork" selected>`) {
		t.Error("estimator should preselect the county")
	}
	if !strings.Contains(body, `"@type": "FAQPage"`) {
		t.Error("missing FAQ structured data")
	}

	edu := get(t, CountyHandler, "/ireland/county-cork/education-grants")
	if edu.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", edu.Code)
	}
	if !strings.Contains(edu.Body.String(), "University College Cork") {
		t.Error("education page should list local colleges")
	}
}

func TestCountyHandler_NotFound(t *testing.T) {
	for _, path := range []string{
		"/ireland/county-atlantis/ev-grants/",
		"/ireland/county-cork/",
		"/ireland/county-cork/housing-grants/",
	} {
		if w := get(t, CountyHandler, path); w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, w.Code)
		}
	}
}

func TestGuideHandlers(t *testing.T) {
	w := get(t, GuideListHandler, "/guides")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/guides/how-to-apply-seai-ev-grant") {
		t.Error("guide list should link every guide")
	}

	filtered := get(t, GuideListHandler, "/guides?cat=education").Body.String()
	if strings.Contains(filtered, "/guides/how-to-apply-seai-ev-grant") {
		t.Error("education filter should hide EV guides")
	}

	page := get(t, GuideListHandler, "/guides/springboard-vs-hci")
	if page.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", page.Code)
	}
	if !strings.Contains(page.Body.String(), "<table>") {
		t.Error("markdown table should be rendered")
	}

	if w := get(t, GuidePageHandler, "/guides/nope"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestAboutPages(t *testing.T) {
	if w := get(t, AboutHandler, "/about"); w.Code != http.StatusOK {
		t.Errorf("about: expected 200, got %d", w.Code)
	}
	w := get(t, ProvidersHandler, "/about/grant-providers")
	if w.Code != http.StatusOK {
		t.Fatalf("providers: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Higher Education Authority") {
		t.Error("providers page should list the HEA")
	}
}

func TestCountiesAPIHandler(t *testing.T) {
	w := get(t, CountiesAPIHandler, "/api/counties")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var counties []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &counties); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(counties) != 26 {
		t.Errorf("Expected 26 counties, got %d", len(counties))
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("open data endpoints should allow CORS")
	}
}

func TestGrantsAPIHandler(t *testing.T) {
	w := get(t, GrantsAPIHandler, "/api/grants?category=ev")
	var result struct {
		Grants []map[string]interface{} `json:"grants"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(result.Grants) != 2 {
		t.Fatalf("Expected 2 EV grants, got %d", len(result.Grants))
	}
	for _, g := range result.Grants {
		if g["category"] != "ev" {
			t.Errorf("unexpected category %v", g["category"])
		}
	}
}

func TestDeadlinesAPIHandler(t *testing.T) {
	w := get(t, DeadlinesAPIHandler, "/api/deadlines")
	var ds []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &ds); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(ds) != len(catalog.Deadlines()) {
		t.Errorf("Expected %d deadlines, got %d", len(catalog.Deadlines()), len(ds))
	}
	for _, d := range ds {
		if d["status"] == "" {
			t.Errorf("deadline %v has no status", d["grant"])
		}
	}
}

func TestOpenDataPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/grants", nil)
	w := httptest.NewRecorder()
	GrantsAPIHandler(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", w.Code)
	}
}

func TestCalendarHandler(t *testing.T) {
	w := get(t, CalendarHandler, "/api/deadlines.ics")
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Fatalf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(body, "END:VCALENDAR\r\n") {
		t.Error("calendar is not wrapped in VCALENDAR")
	}
	if strings.Contains(body, "SEAI EV Grant") {
		t.Error("ongoing schemes have no date and should not be exported")
	}
	for _, line := range strings.Split(body, "\r\n") {
		if len(line) > 75 {
			t.Errorf("unfolded line of %d octets: %q", len(line), line)
		}
	}
}

func TestICSEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"HCI; Pillar 1, Graduate\nConversion", `HCI\; Pillar 1\, Graduate\nConversion`},
		{"Springboard+\r\nNext intake", `Springboard+\nNext intake`},
		{"Old Mac\rline", `Old Mac\nline`},
		{`C:\path`, `C:\\path`},
	}
	for _, tt := range tests {
		if got := icsEscape(tt.in); got != tt.want {
			t.Errorf("icsEscape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestICSLineFolds(t *testing.T) {
	long := "DESCRIPTION:" + strings.Repeat("Dún Laoghaire–Rathdown Springboard+ course ", 6)
	var sb strings.Builder
	icsLine(&sb, long)
	out := sb.String()
	if !strings.HasSuffix(out, "\r\n") {
		t.Fatal("line should end with CRLF")
	}
	physical := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	if len(physical) < 2 {
		t.Fatalf("expected folding, got %d line(s)", len(physical))
	}
	for i, l := range physical {
		if len(l) > 75 {
			t.Errorf("line %d is %d octets", i, len(l))
		}
		if i > 0 && !strings.HasPrefix(l, " ") {
			t.Errorf("continuation line %d does not start with a space", i)
		}
		if !utf8.ValidString(l) {
			t.Errorf("line %d splits a UTF-8 sequence", i)
		}
	}
	if unfolded := strings.ReplaceAll(strings.TrimSuffix(out, "\r\n"), "\r\n ", ""); unfolded != long {
		t.Errorf("unfolding does not restore the line:\n%q", unfolded)
	}

	sb.Reset()
	icsLine(&sb, "VERSION:2.0")
	if sb.String() != "VERSION:2.0\r\n" {
		t.Errorf("short line = %q", sb.String())
	}
}

func TestHealthHandler(t *testing.T) {
	w := get(t, HealthHandler, "/api/health")
	var result map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if result["status"] != "ok" {
		t.Error("Health status should be ok")
	}
}

func TestStatusHandler(t *testing.T) {
	w := get(t, StatusHandler, "/api/status")
	var result map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if result["grants"].(float64) != 4 {
		t.Errorf("Expected 4 grants, got %v", result["grants"])
	}
	if _, ok := result["links"].(map[string]interface{}); !ok {
		t.Error("status should include the link check summary")
	}
}

func TestSitemapHandler(t *testing.T) {
	w := get(t, SitemapHandler, "/sitemap.xml")
	body := w.Body.String()
	if !strings.Contains(body, "https://irishgrants.test/ireland/county-wicklow/education-grants/") {
		t.Error("sitemap should include county pages")
	}
	if !strings.Contains(body, "https://irishgrants.test/guides/top-ev-cars-ireland") {
		t.Error("sitemap should include guides")
	}
	if strings.Contains(body, calculatorPath) {
		t.Error("the noindex calculator must not be in the sitemap")
	}
}

func TestRobotsTxtHandler(t *testing.T) {
	w := get(t, RobotsTxtHandler, "/robots.txt")
	if !strings.Contains(w.Body.String(), "Sitemap: https://irishgrants.test/sitemap.xml") {
		t.Error("robots.txt should point at the sitemap")
	}
}

func TestNotFoundHandler_API(t *testing.T) {
	w := get(t, NotFoundHandler, "/api/nothing")
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		t.Error("API 404 should be JSON")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"45m", "45m"},
		{"3h20m", "3h 20m"},
		{"50h", "2d 2h"},
	}
	for _, tt := range tests {
		d, _ := time.ParseDuration(tt.in)
		if got := formatDuration(d); got != tt.want {
			t.Errorf("formatDuration(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusBadge(t *testing.T) {
	upcoming := statusBadge(models.Deadline{Status: models.StatusUpcoming, ClosingSoon: true, DaysLeft: 5})
	if !strings.Contains(upcoming, ">Upcoming<") || !strings.Contains(upcoming, ">Soon!<") {
		t.Errorf("upcoming badge = %q", upcoming)
	}
	closed := statusBadge(models.Deadline{Status: models.StatusClosed, ClosingSoon: true, DaysLeft: 5})
	if strings.Contains(closed, "Soon!") || !strings.Contains(closed, ">Closed<") {
		t.Errorf("closed badge = %q", closed)
	}
	if open := statusBadge(models.Deadline{Status: models.StatusOpen}); strings.Contains(open, "Soon!") {
		t.Errorf("open badge = %q", open)
	}
}
