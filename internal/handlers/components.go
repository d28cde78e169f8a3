package handlers

import (
	"strconv"
	"strings"
	"time"

	"irishgrants/internal/catalog"
	"irishgrants/internal/deadlines"
	"irishgrants/internal/models"
)

// categoryLabel is the display name of a grant category.
func categoryLabel(cat string) string {
	switch cat {
	case "ev":
		return "EV Grants"
	case "education":
		return "Education Grants"
	}
	return cat
}

func grantCardHTML(g models.Grant) string {
	badge := "badge"
	if g.Category == "education" {
		badge += " badge--education"
	}
	return `<article class="card"><span class="` + badge + `">` + htmlEscape(categoryLabel(g.Category)) + `</span>` +
		`<h3 style="margin-top:8px"><a href="` + g.Path + `">` + htmlEscape(g.Name) + `</a></h3>` +
		`<p>` + htmlEscape(g.Summary) + `</p>` +
		`<p style="margin-top:10px"><strong>` + htmlEscape(g.Amount) + `</strong> &middot; ` + htmlEscape(g.Provider) + `</p>` +
		`</article>`
}

// deadlinesHTML renders the deadline table for the given grant ids, or all
// deadlines when no id is given.
func deadlinesHTML(now time.Time, grantIDs ...string) string {
	want := make(map[string]bool, len(grantIDs))
	for _, id := range grantIDs {
		want[id] = true
	}
	var rows []models.Deadline
	for _, d := range deadlines.ApplyStatus(catalog.Deadlines(), now) {
		if len(want) == 0 || want[d.GrantID] {
			rows = append(rows, d)
		}
	}
	if len(rows) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<section class="section"><h2>Application deadlines</h2>`)
	sb.WriteString(`<table class="data"><thead><tr><th>Grant</th><th>Deadline</th><th>Next intake</th><th>Status</th></tr></thead><tbody>`)
	for _, d := range rows {
		sb.WriteString(`<tr><td>` + htmlEscape(d.Grant) + `</td><td>` + htmlEscape(d.ApplicationDeadline) + `</td><td>` +
			htmlEscape(d.NextIntake) + `</td><td>` + statusBadge(d) + `</td></tr>`)
	}
	sb.WriteString(`</tbody></table>`)
	sb.WriteString(`<p style="font-size:.8rem;color:var(--ink-50)">Last updated ` + htmlEscape(rows[0].LastUpdated) + `. Dates are set by the grant provider and can change.</p>`)
	sb.WriteString(`</section>`)
	return sb.String()
}

// statusBadge shows the declared status, plus a "Soon!" marker for deadlines
// within the closing-soon window. Closed schemes get no marker.
func statusBadge(d models.Deadline) string {
	var badge string
	switch d.Status {
	case models.StatusClosed:
		return `<span class="badge badge--closed">Closed</span>`
	case models.StatusUpcoming:
		badge = `<span class="badge badge--education">Upcoming</span>`
	default:
		badge = `<span class="badge">` + htmlEscape(d.Status) + `</span>`
	}
	if d.ClosingSoon {
		title := "Soon!"
		if d.DaysLeft > 0 {
			title = "Deadline in " + strconv.Itoa(d.DaysLeft) + " days"
		}
		badge += ` <span class="badge badge--soon" title="` + title + `">Soon!</span>`
	}
	return badge
}

// verificationHTML shows when the content was last checked and against which sources.
func verificationHTML(now time.Time) string {
	md := catalog.Metadata()
	var sb strings.Builder
	sb.WriteString(`<section class="section"><div class="card"><h3>Content verification and updates</h3>`)
	sb.WriteString(`<p>Last full review: <strong>` + displayDate(md.LastFullUpdate) + `</strong>`)
	sb.WriteString(` &middot; Next scheduled review: <strong>` + displayDate(md.NextScheduledUpdate) + `</strong>`)
	if next, err := time.ParseInLocation("2006-01-02", md.NextScheduledUpdate, deadlines.Dublin); err == nil {
		if days := int(next.Sub(now).Hours() / 24); days >= 0 && days <= 30 {
			sb.WriteString(` <span class="badge badge--soon">Soon</span>`)
		}
	}
	sb.WriteString(`</p><p>Verified by ` + htmlEscape(md.VerifiedBy) + `. Sources:</p><ul style="margin:6px 0 0 20px">`)
	for _, src := range md.Sources {
		label := strings.TrimPrefix(strings.TrimPrefix(src, "https://"), "www.")
		sb.WriteString(`<li><a href="` + htmlEscape(src) + `" rel="noopener" target="_blank">` + htmlEscape(label) + `</a></li>`)
	}
	sb.WriteString(`</ul><p class="notice">Grant amounts, deadlines and eligibility rules can change. Always check the official website before you apply.</p>`)
	sb.WriteString(`</div></section>`)
	return sb.String()
}

// displayDate turns YYYY-MM-DD into the Irish day/month/year form.
func displayDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return htmlEscape(s)
	}
	return t.Format("02/01/2006")
}

// countyPillsHTML links every county to its page for the given kind
// ("ev-grants" or "education-grants").
func countyPillsHTML(title, kind string) string {
	var sb strings.Builder
	sb.WriteString(`<section class="section"><h2>` + htmlEscape(title) + `</h2>`)
	byProvince := catalog.CountiesByProvince()
	for _, prov := range []string{"Leinster", "Munster", "Connacht", "Ulster"} {
		cs := byProvince[prov]
		if len(cs) == 0 {
			continue
		}
		sb.WriteString(`<h3 style="margin:14px 0 8px">` + prov + `</h3><div class="pills">`)
		for _, c := range cs {
			sb.WriteString(`<a class="pill" href="/ireland/` + c.Slug + `/` + kind + `/">` + htmlEscape(c.Name) + `</a>`)
		}
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</section>`)
	return sb.String()
}

func coursesHTML(kind, title string) string {
	courses := catalog.Courses(kind)
	if len(courses) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<section class="section"><h2>` + htmlEscape(title) + `</h2><div class="card-grid">`)
	for _, c := range courses {
		sb.WriteString(`<article class="card"><h3>` + htmlEscape(c.Name) + `</h3>`)
		sb.WriteString(`<p>` + htmlEscape(c.Institution) + ` &middot; ` + htmlEscape(c.Duration) + ` &middot; ` + htmlEscape(c.Level) + `</p>`)
		sb.WriteString(`<p style="margin-top:6px">Typical salary: <strong>` + htmlEscape(c.SalaryRange) + `</strong></p>`)
		if len(c.EmploymentProspects) > 0 {
			sb.WriteString(`<p style="margin-top:6px;font-size:.82rem">` + htmlEscape(strings.Join(c.EmploymentProspects, ", ")) + `</p>`)
		}
		sb.WriteString(`</article>`)
	}
	sb.WriteString(`</div></section>`)
	return sb.String()
}

func listHTML(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<ul style="margin:8px 0 0 20px">`)
	for _, it := range items {
		sb.WriteString(`<li>` + htmlEscape(it) + `</li>`)
	}
	sb.WriteString(`</ul>`)
	return sb.String()
}

func stepsHTML(steps []models.Step) string {
	if len(steps) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<ol style="margin:8px 0 0 20px">`)
	for _, s := range steps {
		sb.WriteString(`<li style="margin-bottom:8px"><strong>` + htmlEscape(s.Title) + `</strong><br>` + htmlEscape(s.Description) + `</li>`)
	}
	sb.WriteString(`</ol>`)
	return sb.String()
}
