package handlers

import (
	"net/http"
	"strings"
	"time"

	"irishgrants/internal/catalog"
	"irishgrants/internal/estimator"
	"irishgrants/internal/jsonld"
	"irishgrants/internal/models"
)

const (
	countyEV        = "ev-grants"
	countyEducation = "education-grants"
)

// CountyHandler serves /ireland/{slug}/ev-grants/ and
// /ireland/{slug}/education-grants/.
func CountyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/ireland/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		NotFoundHandler(w, r)
		return
	}
	c := catalog.CountyBySlug(parts[0])
	if c == nil {
		NotFoundHandler(w, r)
		return
	}
	switch parts[1] {
	case countyEV:
		countyEVPage(w, r, *c)
	case countyEducation:
		countyEducationPage(w, r, *c)
	default:
		NotFoundHandler(w, r)
	}
}

func countyPath(c models.County, kind string) string {
	return "/ireland/" + c.Slug + "/" + kind + "/"
}

func countyEVFAQs(c models.County) []models.FAQ {
	max := estimator.FormatEuro(float64(estimator.MaxGrant()))
	return []models.FAQ{
		{
			Question: "Is the SEAI EV grant different in " + c.Name + "?",
			Answer:   "No. The SEAI grant is a national scheme, so buyers in " + c.Name + " get the same amounts as anywhere in Ireland, up to " + max + " for a new car.",
		},
		{
			Question: "How do I claim the EV grant in " + c.Name + "?",
			Answer:   "Buy a new eligible car from a dealer registered with SEAI. The dealer applies for the grant with you and deducts it from the price at the point of sale.",
		},
		{
			Question: "Can I get a home charger grant in " + c.Name + "?",
			Answer:   "Yes. Homeowners in " + c.Name + " can claim the SEAI home charger grant when an SEAI-registered electrician installs the charger.",
		},
	}
}

func countyEducationFAQs(c models.County) []models.FAQ {
	faqs := []models.FAQ{
		{
			Question: "Can I study a funded course in " + c.Name + "?",
			Answer:   "Yes. Springboard+ and HCI courses run in colleges across Ireland, and many are offered online or in blended format so you can study from " + c.Name + ".",
		},
		{
			Question: "Who can apply for Springboard+ in " + c.Name + "?",
			Answer:   "Unemployed people, people returning to work and, for most courses, people in employment. Residency and prior qualification rules apply nationally.",
		},
	}
	if len(c.EducationProviders) > 0 {
		faqs = append(faqs, models.FAQ{
			Question: "Which colleges near " + c.Name + " offer funded courses?",
			Answer:   strings.Join(c.EducationProviders, ", ") + " regularly list Springboard+ or HCI funded courses.",
		})
	}
	return faqs
}

func countyTrail(c models.County, kind string) []jsonld.Link {
	label := "EV Grants in " + c.Name
	cat := "/grants/ev"
	catName := "EV Grants"
	if kind == countyEducation {
		label = "Education Grants in " + c.Name
		cat = "/grants/education"
		catName = "Education Grants"
	}
	return []jsonld.Link{
		{Name: "Home", Path: "/"},
		{Name: catName, Path: cat},
		{Name: label, Path: countyPath(c, kind)},
	}
}

func countyEVPage(w http.ResponseWriter, r *http.Request, c models.County) {
	path := countyPath(c, countyEV)
	trail := countyTrail(c, countyEV)
	faqs := countyEVFAQs(c)
	max := estimator.FormatEuro(float64(estimator.MaxGrant()))

	var sb strings.Builder
	sb.WriteString(`<div class="page-content">` + breadcrumbHTML(trail))
	sb.WriteString(`<section class="hero" style="text-align:left;padding-top:16px"><h1>EV Grants in ` + htmlEscape(c.Name) + `, Ireland</h1>`)
	sb.WriteString(`<p>Get up to <strong>` + max + `</strong> towards a new electric car. The grants are national, and this page covers what they mean for buyers in ` + htmlEscape(c.Name) + `.</p></section>`)

	sb.WriteString(`<div class="card-grid">`)
	for _, id := range []string{"seai-ev-grant", "seai-home-charger-grant"} {
		if g := catalog.GrantByID(id); g != nil {
			sb.WriteString(grantCardHTML(*g))
		}
	}
	sb.WriteString(`</div>`)

	st := estimator.New(c.Name)
	sb.WriteString(`<section class="section"><h2>Estimate your grant</h2>` + estimatorWidget(st) + `</section>`)
	sb.WriteString(`<section class="section"><h2>Finding an installer in ` + htmlEscape(c.Name) + `</h2>`)
	sb.WriteString(`<p>Home chargers must be installed by an SEAI-registered electrician for the charger grant to be paid. ` +
		`Search the SEAI register for installers working in ` + htmlEscape(c.Name) + ` and ask for a quote that includes the grant.</p></section>`)
	sb.WriteString(deadlinesHTML(time.Now(), "seai-ev-grant", "seai-home-charger-grant"))
	sb.WriteString(faqHTML("EV grants in "+c.Name+": frequently asked questions", faqs))
	sb.WriteString(`<p><a href="` + countyPath(c, countyEducation) + `">Education grants in ` + htmlEscape(c.Name) + ` &rarr;</a></p>`)
	sb.WriteString(`</div>`)

	writePage(w, page{
		Title:       c.Name + " EV Grants - SEAI Support & Local Installers | " + siteName(),
		Description: "How to claim EV grants in " + c.Name + ", Ireland: SEAI grants up to " + max + ", the home charger grant and local installers.",
		Path:        path,
		CSS:         estimatorCSS(),
		Body:        sb.String(),
		JSONLD:      []interface{}{jsonld.NewFAQPage(faqs), jsonld.NewBreadcrumbs(site(), trail)},
	})
}

func countyEducationPage(w http.ResponseWriter, r *http.Request, c models.County) {
	path := countyPath(c, countyEducation)
	trail := countyTrail(c, countyEducation)
	faqs := countyEducationFAQs(c)

	var sb strings.Builder
	sb.WriteString(`<div class="page-content">` + breadcrumbHTML(trail))
	sb.WriteString(`<section class="hero" style="text-align:left;padding-top:16px"><h1>Education Grants in ` + htmlEscape(c.Name) + `, Ireland</h1>`)
	sb.WriteString(`<p>Springboard+ and the Human Capital Initiative fund courses for people in ` + htmlEscape(c.Name) + ` who want to upskill or change career.</p></section>`)

	sb.WriteString(`<div class="card-grid">`)
	for _, g := range catalog.GrantsByCategory("education") {
		sb.WriteString(grantCardHTML(g))
	}
	sb.WriteString(`</div>`)

	if len(c.EducationProviders) > 0 {
		sb.WriteString(`<section class="section"><h2>Colleges near ` + htmlEscape(c.Name) + `</h2>` + listHTML(c.EducationProviders) + `</section>`)
	}
	sb.WriteString(coursesHTML("springboard", "Example funded courses"))
	sb.WriteString(deadlinesHTML(time.Now(), "springboard-plus", "human-capital-initiative"))
	sb.WriteString(faqHTML("Education grants in "+c.Name+": frequently asked questions", faqs))
	sb.WriteString(`<p><a href="` + countyPath(c, countyEV) + `">EV grants in ` + htmlEscape(c.Name) + ` &rarr;</a></p>`)
	sb.WriteString(`</div>`)

	writePage(w, page{
		Title:       c.Name + " Education Grants - Springboard+ Courses & Local Colleges | " + siteName(),
		Description: "How to get funded education in " + c.Name + ", Ireland: Springboard+ courses, HCI funding and local colleges.",
		Path:        path,
		Body:        sb.String(),
		JSONLD:      []interface{}{jsonld.NewFAQPage(faqs), jsonld.NewBreadcrumbs(site(), trail)},
	})
}
