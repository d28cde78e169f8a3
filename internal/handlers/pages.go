package handlers

import (
	"net/http"
	"strings"
	"time"

	"irishgrants/internal/catalog"
	"irishgrants/internal/estimator"
	"irishgrants/internal/guides"
	"irishgrants/internal/jsonld"
	"irishgrants/internal/linkcheck"
	"irishgrants/internal/models"
	"irishgrants/internal/sourcecheck"
)

var homeFAQs = []models.FAQ{
	{
		Question: "Are these grants really free?",
		Answer:   "Most are either free or heavily subsidised. SEAI EV grants are paid through the dealer at the point of sale, while Springboard+ and HCI courses are funded at 90 to 100 percent of fees. Check the terms of each grant.",
	},
	{
		Question: "How long does the application process take?",
		Answer:   "It varies by grant. SEAI EV grants are usually approved within 2 to 4 weeks, education grants can take 4 to 8 weeks. Each guide has a step-by-step timeline.",
	},
	{
		Question: "Can I apply for multiple grants at once?",
		Answer:   "Yes. You can, for example, claim the SEAI EV grant and the home charger grant together. Our guides explain which combinations are allowed.",
	},
	{
		Question: "What if I'm not eligible for a grant?",
		Answer:   "Each guide lists the eligibility rules in full. Where you don't qualify we point to alternatives or to what would make you eligible later.",
	},
}

// HomeHandler serves GET /.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundHandler(w, r)
		return
	}
	var sb strings.Builder
	sb.WriteString(`<section class="hero"><div class="container"><h1>Your Guide to Irish Government Grants</h1>`)
	sb.WriteString(`<p>Clear, trustworthy information about EV grants and education funding in Ireland. Find out what you can claim and how to apply.</p>`)
	sb.WriteString(`<p style="margin-top:20px"><a class="btn" href="/grants/ev">EV Grants</a> <a class="btn btn-outline" href="/grants/education">Education Grants</a></p>`)
	sb.WriteString(`</div></section>`)

	sb.WriteString(`<div class="container">`)
	sb.WriteString(`<section class="section"><h2>Popular grant guides</h2><div class="card-grid">`)
	for _, g := range catalog.Grants() {
		sb.WriteString(grantCardHTML(g))
	}
	sb.WriteString(`</div></section>`)

	sb.WriteString(`<section class="section"><div class="card" style="display:flex;gap:20px;align-items:center;flex-wrap:wrap">`)
	sb.WriteString(`<div style="flex:1;min-width:240px"><h2>How much is your EV grant?</h2><p>Enter the price of the car and see the SEAI grant and what you pay after it.</p></div>`)
	sb.WriteString(`<a class="btn" href="` + calculatorPath + `">Open the calculator</a>`)
	if n := estimateCount(r.Context()); n > 0 {
		sb.WriteString(`<p style="width:100%;font-size:.82rem;color:var(--ink-50)">` + formatCount(n) + ` estimates calculated so far.</p>`)
	}
	sb.WriteString(`</div></section>`)

	sb.WriteString(countyPillsHTML("Browse grants by county", "ev-grants"))
	if gs := guides.GetAll(); len(gs) > 0 {
		sb.WriteString(`<section class="section"><h2>Latest guides</h2><div class="card-grid">`)
		for i, g := range gs {
			if i == 3 {
				break
			}
			sb.WriteString(guideCardHTML(g))
		}
		sb.WriteString(`</div></section>`)
	}
	sb.WriteString(faqHTML("Frequently asked questions", homeFAQs))
	sb.WriteString(`</div>`)

	writePage(w, page{
		Title:       siteName() + " - EV & Education Grants in Ireland",
		Description: "Independent guides to Irish government grants: the SEAI EV grant, home charger grant, Springboard+ and the Human Capital Initiative.",
		Path:        "/",
		CSS:         guideCSS(),
		Body:        sb.String(),
		JSONLD:      []interface{}{jsonld.NewOrganization(site()), jsonld.NewFAQPage(homeFAQs)},
	})
}

func formatCount(n int64) string {
	s := estimator.FormatEuro(float64(n))
	return strings.TrimPrefix(s, "€")
}

// GrantsHandler serves everything under /grants/: the two category pages and
// one page per grant in the catalogue, matched on the grant's path.
func GrantsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch path {
	case "/grants/ev":
		categoryPage(w, r, "ev")
		return
	case "/grants/education":
		categoryPage(w, r, "education")
		return
	}
	for _, g := range catalog.Grants() {
		if g.Path == path {
			grantPage(w, r, g)
			return
		}
	}
	NotFoundHandler(w, r)
}

func categoryPage(w http.ResponseWriter, r *http.Request, cat string) {
	now := time.Now()
	grants := catalog.GrantsByCategory(cat)
	path := "/grants/" + cat
	trail := []jsonld.Link{{Name: "Home", Path: "/"}, {Name: categoryLabel(cat), Path: path}}

	var title, intro, desc string
	var ids []string
	for _, g := range grants {
		ids = append(ids, g.ID)
	}
	if cat == "ev" {
		title = "EV Grants in Ireland"
		intro = "SEAI supports the switch to electric with a purchase grant of up to " + estimator.FormatEuro(float64(estimator.MaxGrant())) +
			" and a home charger grant. Here is what is available and how to claim it."
		desc = "Electric vehicle grants in Ireland: the SEAI EV purchase grant and the home charger grant, with amounts, eligibility and how to apply."
	} else {
		title = "Education Grants in Ireland"
		intro = "Springboard+ and the Human Capital Initiative fund courses in skills that Irish employers need, often at no cost to you."
		desc = "Funded upskilling in Ireland: Springboard+ and Human Capital Initiative courses, eligibility, deadlines and how to apply."
	}

	var sb strings.Builder
	sb.WriteString(`<div class="container">` + breadcrumbHTML(trail))
	sb.WriteString(`<section class="hero"><h1>` + title + `</h1><p>` + htmlEscape(intro) + `</p></section>`)
	sb.WriteString(`<section class="section"><div class="card-grid">`)
	for _, g := range grants {
		sb.WriteString(grantCardHTML(g))
	}
	sb.WriteString(`</div></section>`)
	if cat == "ev" {
		sb.WriteString(`<section class="section"><h2>EV grant amounts by price</h2>`)
		sb.WriteString(tierTableHTML(estimator.DefaultPrice))
		sb.WriteString(`<p><a class="btn" href="` + calculatorPath + `">Calculate your grant</a></p></section>`)
		sb.WriteString(countyPillsHTML("EV grants by county", "ev-grants"))
	} else {
		sb.WriteString(coursesHTML("springboard", "Example Springboard+ courses"))
		sb.WriteString(countyPillsHTML("Education grants by county", "education-grants"))
	}
	sb.WriteString(deadlinesHTML(now, ids...))
	sb.WriteString(verificationHTML(now))
	sb.WriteString(`</div>`)

	items := make([]jsonld.Link, 0, len(grants))
	for _, g := range grants {
		items = append(items, jsonld.Link{Name: g.Name, Path: g.Path})
	}
	writePage(w, page{
		Title:       title + " | " + siteName(),
		Description: desc,
		Path:        path,
		Body:        sb.String(),
		JSONLD: []interface{}{
			jsonld.NewCollection(site(), title, desc, path, items),
			jsonld.NewBreadcrumbs(site(), trail),
		},
	})
}

func grantPage(w http.ResponseWriter, r *http.Request, g models.Grant) {
	now := time.Now()
	annotated := sourcecheck.ApplyStatus(linkcheck.ApplyStatus([]models.Grant{g}))
	g = annotated[0]
	catPath := "/grants/" + g.Category
	trail := []jsonld.Link{
		{Name: "Home", Path: "/"},
		{Name: categoryLabel(g.Category), Path: catPath},
		{Name: g.Name, Path: g.Path},
	}

	var sb strings.Builder
	sb.WriteString(`<div class="page-content">` + breadcrumbHTML(trail))
	sb.WriteString(`<section class="hero" style="text-align:left;padding-top:16px"><h1>` + htmlEscape(g.Name) + `</h1>`)
	sb.WriteString(`<p>` + htmlEscape(g.Summary) + `</p></section>`)

	sb.WriteString(`<div class="card-grid">`)
	sb.WriteString(`<div class="card"><h3>Amount</h3><p>` + htmlEscape(g.Amount) + `</p></div>`)
	sb.WriteString(`<div class="card"><h3>Processing time</h3><p>` + htmlEscape(g.ProcessingTime) + `</p></div>`)
	sb.WriteString(`<div class="card"><h3>Provider</h3><p>` + htmlEscape(g.Provider) + `</p></div>`)
	sb.WriteString(`</div>`)

	if g.ID == "seai-ev-grant" {
		st := estimator.New(r.URL.Query().Get("county"))
		sb.WriteString(`<section class="section"><h2>Estimate your grant</h2>` + estimatorWidget(st) + `</section>`)
		sb.WriteString(`<section class="section"><h2>Grant amounts</h2>` + tierTableHTML(st.VehiclePrice) + evExamplesHTML() + `</section>`)
	}
	if len(g.Eligibility) > 0 {
		sb.WriteString(`<section class="section"><h2>Who is eligible</h2>` + listHTML(g.Eligibility) + `</section>`)
	}
	if len(g.Steps) > 0 {
		sb.WriteString(`<section class="section"><h2>How to apply</h2>` + stepsHTML(g.Steps) + `</section>`)
	}
	switch g.ID {
	case "springboard-plus":
		sb.WriteString(coursesHTML("springboard", "Example Springboard+ courses"))
	case "human-capital-initiative":
		sb.WriteString(coursesHTML("hci", "Example HCI courses"))
	}
	sb.WriteString(deadlinesHTML(now, g.ID))

	sb.WriteString(`<section class="section"><h2>Official source</h2><p><a href="` + htmlEscape(g.OfficialURL) + `" rel="noopener" target="_blank">` + htmlEscape(g.OfficialURL) + `</a></p>`)
	if g.LinkCheckedAt != "" {
		state := "responding"
		if !g.LinkVerified {
			state = "not responding"
		}
		sb.WriteString(`<p style="font-size:.8rem;color:var(--ink-50)">Link checked ` + htmlEscape(g.LinkCheckedAt) + `: ` + state + `.`)
		if !g.LinkVerified && g.ArchivedURL != "" {
			sb.WriteString(` <a href="` + htmlEscape(g.ArchivedURL) + `" rel="noopener nofollow" target="_blank">View the archived copy</a>.`)
		}
		sb.WriteString(`</p>`)
	}
	if g.SourceVerified {
		sb.WriteString(`<p style="font-size:.8rem;color:var(--ink-50)">Amount confirmed on the official page (` + htmlEscape(g.SourceNote) + `).</p>`)
	}
	sb.WriteString(`</section>`)

	sb.WriteString(faqHTML(g.Name+": frequently asked questions", g.FAQs))
	sb.WriteString(verificationHTML(now))
	sb.WriteString(`</div>`)

	md := catalog.Metadata()
	css := ""
	if g.ID == "seai-ev-grant" {
		css = estimatorCSS()
	}
	ld := []interface{}{
		jsonld.NewArticle(site(), g.Name, g.Summary, g.Path, md.LastFullUpdate, md.LastFullUpdate),
		jsonld.NewBreadcrumbs(site(), trail),
	}
	if len(g.FAQs) > 0 {
		ld = append(ld, jsonld.NewFAQPage(g.FAQs))
	}
	writePage(w, page{
		Title:       g.Name + " - " + g.Amount + " | " + siteName(),
		Description: g.Summary,
		Path:        g.Path,
		CSS:         css,
		Body:        sb.String(),
		JSONLD:      ld,
	})
}

// AboutHandler serves GET /about.
func AboutHandler(w http.ResponseWriter, r *http.Request) {
	trail := []jsonld.Link{{Name: "Home", Path: "/"}, {Name: "About", Path: "/about"}}
	var sb strings.Builder
	sb.WriteString(`<div class="page-content">` + breadcrumbHTML(trail))
	sb.WriteString(`<section class="hero" style="text-align:left"><h1>About ` + htmlEscape(siteName()) + `</h1>`)
	sb.WriteString(`<p>We explain Irish government grants in plain English so that you can see what you are entitled to and apply with confidence.</p></section>`)
	sb.WriteString(`<section class="section"><h2>What we do</h2>`)
	sb.WriteString(`<p>Every guide is written from the official scheme rules and checked against the provider's website. ` +
		`Links to official pages are tested automatically, and the grant amounts we quote are compared with the amounts published by the provider.</p></section>`)
	sb.WriteString(`<section class="section"><h2>What we are not</h2>`)
	sb.WriteString(`<p>We are an independent information website. We are not a government body and we do not process applications. ` +
		`We are not affiliated with SEAI, the HEA or any grant provider.</p>`)
	sb.WriteString(`<p style="margin-top:10px"><a href="/about/grant-providers">Read about the grant providers</a> or <a href="/contact">get in touch</a>.</p></section>`)
	sb.WriteString(verificationHTML(time.Now()))
	sb.WriteString(`</div>`)

	writePage(w, page{
		Title:       "About Us | " + siteName(),
		Description: "Who we are and how we keep our Irish grant guides accurate and up to date.",
		Path:        "/about",
		Body:        sb.String(),
		JSONLD:      []interface{}{jsonld.NewOrganization(site()), jsonld.NewBreadcrumbs(site(), trail)},
	})
}

type provider struct {
	Name        string
	URL         string
	Description string
	Grants      []string
}

var providers = []provider{
	{
		Name:        "Sustainable Energy Authority of Ireland (SEAI)",
		URL:         "https://www.seai.ie",
		Description: "Runs the electric vehicle purchase grant and the home charger grant on behalf of the Department of the Environment, Climate and Communications.",
		Grants:      []string{"seai-ev-grant", "seai-home-charger-grant"},
	},
	{
		Name:        "Higher Education Authority (HEA)",
		URL:         "https://hea.ie",
		Description: "Manages Springboard+ and the Human Capital Initiative, funding courses in areas with skills shortages.",
		Grants:      []string{"springboard-plus", "human-capital-initiative"},
	},
	{
		Name:        "Citizens Information",
		URL:         "https://www.citizensinformation.ie",
		Description: "Independent public information on rights and entitlements, including grants and supports.",
	},
}

// ProvidersHandler serves GET /about/grant-providers.
func ProvidersHandler(w http.ResponseWriter, r *http.Request) {
	trail := []jsonld.Link{{Name: "Home", Path: "/"}, {Name: "About", Path: "/about"}, {Name: "Grant Providers", Path: "/about/grant-providers"}}
	var sb strings.Builder
	sb.WriteString(`<div class="page-content">` + breadcrumbHTML(trail))
	sb.WriteString(`<section class="hero" style="text-align:left"><h1>Grant providers in Ireland</h1>`)
	sb.WriteString(`<p>The public bodies behind the grants we cover, and where to find their official information.</p></section>`)
	for _, p := range providers {
		sb.WriteString(`<section class="card" style="margin-bottom:16px"><h2 style="font-size:1.2rem">` + htmlEscape(p.Name) + `</h2>`)
		sb.WriteString(`<p>` + htmlEscape(p.Description) + `</p>`)
		sb.WriteString(`<p><a href="` + p.URL + `" rel="noopener" target="_blank">` + p.URL + `</a></p>`)
		for _, id := range p.Grants {
			if g := catalog.GrantByID(id); g != nil {
				sb.WriteString(`<p>&rarr; <a href="` + g.Path + `">` + htmlEscape(g.Name) + `</a> (` + htmlEscape(g.Amount) + `)</p>`)
			}
		}
		sb.WriteString(`</section>`)
	}
	sb.WriteString(`</div>`)

	writePage(w, page{
		Title:       "Grant Providers | " + siteName(),
		Description: "SEAI, the HEA and the other Irish bodies that fund EV and education grants.",
		Path:        "/about/grant-providers",
		Body:        sb.String(),
		JSONLD:      []interface{}{jsonld.NewBreadcrumbs(site(), trail)},
	})
}
