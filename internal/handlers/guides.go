package handlers

import (
	"net/http"
	"strings"
	"time"

	"irishgrants/internal/guides"
	"irishgrants/internal/jsonld"
)

func formatGuideDate(t time.Time) string {
	return t.Format("2 January 2006")
}

var guideCategories = []string{"ev", "education"}

func guideCardHTML(g guides.Guide) string {
	excerpt := g.Description
	if len(excerpt) > 160 {
		excerpt = excerpt[:157] + "..."
	}
	badge := "badge"
	if g.Category == "education" {
		badge += " badge--education"
	}
	return `<article class="card"><a href="/guides/` + htmlEscape(g.Slug) + `" class="guide-card-link">` +
		`<div class="guide-meta"><span class="` + badge + `">` + htmlEscape(categoryLabel(g.Category)) + `</span>` +
		`<time datetime="` + g.Date.Format("2006-01-02") + `">` + formatGuideDate(g.Date) + `</time></div>` +
		`<h3>` + htmlEscape(g.Title) + `</h3>` +
		`<p>` + htmlEscape(excerpt) + `</p>` +
		`<span class="guide-cta">Read the guide &rarr;</span></a></article>`
}

// GuideListHandler serves GET /guides, optionally filtered with ?cat=.
func GuideListHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/guides" && r.URL.Path != "/guides/" {
		GuidePageHandler(w, r)
		return
	}
	cat := r.URL.Query().Get("cat")
	var list []guides.Guide
	if cat != "" {
		list = guides.GetByCategory(cat)
	} else {
		list = guides.GetAll()
	}

	title := "Grant Guides"
	desc := "Step-by-step guides to Irish EV and education grants: how to apply, what to watch out for and how the schemes compare."
	trail := []jsonld.Link{{Name: "Home", Path: "/"}, {Name: "Guides", Path: "/guides"}}

	var sb strings.Builder
	sb.WriteString(`<div class="container">` + breadcrumbHTML(trail))
	sb.WriteString(`<section class="hero" style="padding-top:16px"><h1>` + title + `</h1><p>` + desc + `</p></section>`)

	sb.WriteString(`<nav class="pills" style="justify-content:center;margin-bottom:28px" aria-label="Filter by category">`)
	active := ""
	if cat == "" {
		active = ` style="background:var(--green);color:#fff"`
	}
	sb.WriteString(`<a href="/guides" class="pill"` + active + `>All</a>`)
	for _, c := range guideCategories {
		active = ""
		if cat == c {
			active = ` style="background:var(--green);color:#fff"`
		}
		sb.WriteString(`<a href="/guides?cat=` + c + `" class="pill"` + active + `>` + categoryLabel(c) + `</a>`)
	}
	sb.WriteString(`</nav>`)

	if len(list) == 0 {
		sb.WriteString(`<p style="text-align:center;color:var(--ink-50);padding:40px 0">No guides in this category yet.</p>`)
	} else {
		sb.WriteString(`<div class="card-grid">`)
		for _, g := range list {
			sb.WriteString(guideCardHTML(g))
		}
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)

	items := make([]jsonld.Link, 0, len(list))
	for _, g := range list {
		items = append(items, jsonld.Link{Name: g.Title, Path: "/guides/" + g.Slug})
	}
	writePage(w, page{
		Title:       title + " | " + siteName(),
		Description: desc,
		Path:        "/guides",
		CSS:         guideCSS(),
		Body:        sb.String(),
		JSONLD: []interface{}{
			jsonld.NewCollection(site(), title, desc, "/guides", items),
			jsonld.NewBreadcrumbs(site(), trail),
		},
	})
}

// GuidePageHandler serves GET /guides/{slug}.
func GuidePageHandler(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/guides/"), "/")
	if r.URL.Path == "/guides/" {
		GuideListHandler(w, r)
		return
	}
	g := guides.GetBySlug(slug)
	if g == nil {
		NotFoundHandler(w, r)
		return
	}

	var related []guides.Guide
	for _, rg := range guides.GetByCategory(g.Category) {
		if rg.Slug != g.Slug {
			related = append(related, rg)
		}
	}
	if len(related) > 4 {
		related = related[:4]
	}

	path := "/guides/" + g.Slug
	trail := []jsonld.Link{{Name: "Home", Path: "/"}, {Name: "Guides", Path: "/guides"}, {Name: g.Title, Path: path}}

	var sb strings.Builder
	sb.WriteString(`<div class="container">` + breadcrumbHTML(trail))
	sb.WriteString(`<div class="guide-layout"><article>`)
	badge := "badge"
	if g.Category == "education" {
		badge += " badge--education"
	}
	sb.WriteString(`<header style="margin-bottom:24px"><span class="` + badge + `">` + htmlEscape(categoryLabel(g.Category)) + `</span>`)
	sb.WriteString(`<h1 style="font-size:1.8rem;margin:8px 0 12px">` + htmlEscape(g.Title) + `</h1>`)
	sb.WriteString(`<div class="guide-meta"><time datetime="` + g.Date.Format("2006-01-02") + `">` + formatGuideDate(g.Date) + `</time>`)
	if g.Modified().After(g.Date) {
		sb.WriteString(` &middot; updated ` + formatGuideDate(g.Modified()))
	}
	if g.Author != "" {
		sb.WriteString(` &middot; ` + htmlEscape(g.Author))
	}
	sb.WriteString(`</div></header>`)
	sb.WriteString(`<div class="guide-content">` + g.HTMLContent + `</div>`)
	sb.WriteString(`</article>`)

	if len(related) > 0 {
		sb.WriteString(`<aside class="guide-sidebar"><h3>Related guides</h3>`)
		for _, rg := range related {
			sb.WriteString(`<a href="/guides/` + htmlEscape(rg.Slug) + `" class="sidebar-link">` + htmlEscape(rg.Title) +
				`<span>` + formatGuideDate(rg.Date) + `</span></a>`)
		}
		sb.WriteString(`<a href="/guides" class="guide-cta">All guides &rarr;</a></aside>`)
	}
	sb.WriteString(`</div></div>`)

	writePage(w, page{
		Title:       g.Title + " | " + siteName(),
		Description: g.Description,
		Path:        path,
		CSS:         guideCSS(),
		Body:        sb.String(),
		JSONLD: []interface{}{
			jsonld.NewArticle(site(), g.Title, g.Description, path, g.Date.Format("2006-01-02"), g.Modified().Format("2006-01-02")),
			jsonld.NewBreadcrumbs(site(), trail),
		},
	})
}

func guideCSS() string {
	return `
.guide-card-link{display:block;color:inherit}
.guide-card-link:hover{text-decoration:none}
.guide-meta{display:flex;align-items:center;gap:10px;margin-bottom:10px;font-size:.78rem;color:var(--ink-50)}
.guide-cta{font-size:.82rem;font-weight:600;color:var(--green-mid)}
.guide-layout{display:grid;grid-template-columns:1fr 260px;gap:32px;align-items:start;padding-bottom:32px}
.guide-content{font-size:.95rem;line-height:1.75}
.guide-content h2{font-size:1.3rem;margin:28px 0 12px;padding-bottom:6px;border-bottom:1px solid var(--ink-15)}
.guide-content p,.guide-content ul,.guide-content ol{margin-bottom:14px}
.guide-content ul,.guide-content ol{padding-left:24px}
.guide-content table{width:100%;border-collapse:collapse;margin:16px 0;font-size:.88rem}
.guide-content th,.guide-content td{padding:8px 12px;border:1px solid var(--ink-15);text-align:left}
.guide-content th{background:var(--ink-05)}
.guide-sidebar{position:sticky;top:70px}
.guide-sidebar h3{font-size:1rem;margin-bottom:12px}
.sidebar-link{display:block;padding:10px 12px;border-radius:var(--radius);margin-bottom:6px;font-size:.85rem;color:var(--ink)}
.sidebar-link:hover{background:var(--ink-05);text-decoration:none}
.sidebar-link span{display:block;font-size:.75rem;color:var(--ink-50)}
@media(max-width:780px){.guide-layout{grid-template-columns:1fr}}
`
}
