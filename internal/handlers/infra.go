package handlers

import (
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"irishgrants/internal/catalog"
	"irishgrants/internal/config"
	"irishgrants/internal/deadlines"
	"irishgrants/internal/guides"
	"irishgrants/internal/linkcheck"
	"irishgrants/internal/sourcecheck"
)

var startTime = time.Now()

// HealthHandler is the liveness probe.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// StatusHandler reports uptime, background checks and the estimate count.
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startTime)

	mismatches := 0
	sources := sourcecheck.Results()
	for _, res := range sources {
		if res.State == sourcecheck.StateMismatch {
			mismatches++
		}
	}

	writeJSON(w, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(uptime.Seconds()),
		"uptime_human":   formatDuration(uptime),
		"estimates":      estimateCount(r.Context()),
		"grants":         len(catalog.Grants()),
		"guides":         len(guides.GetAll()),
		"last_update":    catalog.Metadata().LastFullUpdate,
		"links":          linkcheck.Summary(),
		"sources": map[string]interface{}{
			"checked":    len(sources),
			"mismatches": mismatches,
		},
		"deadlines": deadlines.Snapshot(),
	})
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h >= 24 {
		return strconv.Itoa(h/24) + "d " + strconv.Itoa(h%24) + "h"
	}
	if h > 0 {
		return strconv.Itoa(h) + "h " + strconv.Itoa(m) + "m"
	}
	return strconv.Itoa(m) + "m"
}

// ---------- Sitemap ----------

type siteURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name  `xml:"urlset"`
	XMLNS   string    `xml:"xmlns,attr"`
	URLs    []siteURL `xml:"url"`
}

// SitemapHandler lists every indexable page. The calculator is noindex and
// left out.
func SitemapHandler(w http.ResponseWriter, r *http.Request) {
	baseURL := config.Cfg.BaseURL
	updated := catalog.Metadata().LastFullUpdate

	urls := []siteURL{
		{Loc: baseURL + "/", LastMod: updated, ChangeFreq: "weekly", Priority: "1.0"},
		{Loc: baseURL + "/grants/ev", LastMod: updated, ChangeFreq: "weekly", Priority: "0.9"},
		{Loc: baseURL + "/grants/education", LastMod: updated, ChangeFreq: "weekly", Priority: "0.9"},
	}
	for _, g := range catalog.Grants() {
		urls = append(urls, siteURL{Loc: baseURL + g.Path, LastMod: updated, ChangeFreq: "weekly", Priority: "0.9"})
	}
	for _, c := range catalog.Counties() {
		urls = append(urls,
			siteURL{Loc: baseURL + countyPath(c, countyEV), LastMod: updated, ChangeFreq: "monthly", Priority: "0.6"},
			siteURL{Loc: baseURL + countyPath(c, countyEducation), LastMod: updated, ChangeFreq: "monthly", Priority: "0.6"},
		)
	}
	urls = append(urls, siteURL{Loc: baseURL + "/guides", ChangeFreq: "weekly", Priority: "0.7"})
	for _, g := range guides.GetAll() {
		urls = append(urls, siteURL{
			Loc:        baseURL + "/guides/" + g.Slug,
			LastMod:    g.Modified().Format("2006-01-02"),
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}
	urls = append(urls,
		siteURL{Loc: baseURL + "/about", ChangeFreq: "yearly", Priority: "0.4"},
		siteURL{Loc: baseURL + "/about/grant-providers", ChangeFreq: "yearly", Priority: "0.4"},
		siteURL{Loc: baseURL + "/contact", ChangeFreq: "yearly", Priority: "0.3"},
	)

	sitemap := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	enc.Encode(sitemap)
}

// RobotsTxtHandler serves robots.txt with the sitemap link.
func RobotsTxtHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write([]byte("User-agent: *\nAllow: /\nDisallow: /api/\nDisallow: /metrics\nDisallow: " + calculatorPath + "?\n\nSitemap: " + config.Cfg.BaseURL + "/sitemap.xml\n"))
}
