package handlers

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"irishgrants/internal/catalog"
	"irishgrants/internal/deadlines"
	"irishgrants/internal/linkcheck"
	"irishgrants/internal/models"
	"irishgrants/internal/sourcecheck"
)

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "86400")
}

// openDataPreflight answers CORS preflight and rejects anything but GET.
// It returns false when the request has been fully handled.
func openDataPreflight(w http.ResponseWriter, r *http.Request) bool {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return false
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// GrantsAPIHandler returns the grant catalogue annotated with the latest link
// and source checks. GET /api/grants[?category=ev]
func GrantsAPIHandler(w http.ResponseWriter, r *http.Request) {
	if !openDataPreflight(w, r) {
		return
	}
	var grants []models.Grant
	if cat := r.URL.Query().Get("category"); cat != "" {
		grants = catalog.GrantsByCategory(cat)
	} else {
		grants = catalog.Grants()
	}
	grants = sourcecheck.ApplyStatus(linkcheck.ApplyStatus(grants))

	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, map[string]interface{}{
		"grants":   grants,
		"metadata": catalog.Metadata(),
	})
}

// CountiesAPIHandler returns the 26 counties with their page links.
// GET /api/counties
func CountiesAPIHandler(w http.ResponseWriter, r *http.Request) {
	if !openDataPreflight(w, r) {
		return
	}
	type countyOut struct {
		models.County
		EVPath        string `json:"ev_path"`
		EducationPath string `json:"education_path"`
	}
	cs := catalog.Counties()
	out := make([]countyOut, 0, len(cs))
	for _, c := range cs {
		out = append(out, countyOut{
			County:        c,
			EVPath:        countyPath(c, countyEV),
			EducationPath: countyPath(c, countyEducation),
		})
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	writeJSON(w, out)
}

// DeadlinesAPIHandler returns every deadline with its current status.
// GET /api/deadlines
func DeadlinesAPIHandler(w http.ResponseWriter, r *http.Request) {
	if !openDataPreflight(w, r) {
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=600")
	writeJSON(w, deadlines.ApplyStatus(catalog.Deadlines(), time.Now()))
}

// CalendarHandler exports dated deadlines as iCalendar events with reminders
// a week and a day before. GET /api/deadlines.ics
func CalendarHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	now := time.Now()
	stamp := now.UTC().Format("20060102T150405Z")
	host := siteHost()

	var sb strings.Builder
	icsLine(&sb, "BEGIN:VCALENDAR")
	icsLine(&sb, "VERSION:2.0")
	icsLine(&sb, "PRODID:-//"+siteName()+"//EN")
	icsLine(&sb, "CALSCALE:GREGORIAN")
	icsLine(&sb, "METHOD:PUBLISH")

	for _, d := range deadlines.ApplyStatus(catalog.Deadlines(), now) {
		if d.Status == models.StatusClosed {
			continue
		}
		day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(d.ApplicationDeadline), deadlines.Dublin)
		if err != nil {
			continue
		}
		date := day.Format("20060102")
		icsLine(&sb, "BEGIN:VEVENT")
		icsLine(&sb, "UID:" + d.GrantID + "-" + date + "@" + host)
		icsLine(&sb, "DTSTAMP:" + stamp)
		icsLine(&sb, "DTSTART;VALUE=DATE:" + date)
		icsLine(&sb, "DTEND;VALUE=DATE:" + day.AddDate(0, 0, 1).Format("20060102"))
		icsLine(&sb, "SUMMARY:Deadline: " + icsEscape(d.Grant))
		icsLine(&sb, "DESCRIPTION:" + icsEscape("Last day to apply for "+d.Grant+". Next intake: "+d.NextIntake+"."))
		for _, trig := range []struct{ trigger, label string }{{"-P7D", "in 7 days"}, {"-P1D", "tomorrow"}} {
			icsLine(&sb, "BEGIN:VALARM")
			icsLine(&sb, "TRIGGER:" + trig.trigger)
			icsLine(&sb, "ACTION:DISPLAY")
			icsLine(&sb, "DESCRIPTION:" + icsEscape(d.Grant+" closes "+trig.label))
			icsLine(&sb, "END:VALARM")
		}
		icsLine(&sb, "END:VEVENT")
	}
	icsLine(&sb, "END:VCALENDAR")

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="grant-deadlines.ics"`)
	w.Write([]byte(sb.String()))
}

var icsReplacer = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

func icsEscape(s string) string {
	return icsReplacer.Replace(s)
}

// icsMaxLine is the longest content line allowed before folding, in octets.
const icsMaxLine = 75

// icsLine writes one content line, folding it into 75-octet pieces joined by
// CRLF plus a space. Folds never split a UTF-8 sequence.
func icsLine(sb *strings.Builder, line string) {
	limit := icsMaxLine
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		sb.WriteString(line[:cut])
		sb.WriteString("\r\n ")
		line = line[cut:]
		// the leading space counts toward the next line
		limit = icsMaxLine - 1
	}
	sb.WriteString(line)
	sb.WriteString("\r\n")
}
