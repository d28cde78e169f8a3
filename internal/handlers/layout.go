package handlers

import (
	"net/http"
	"strings"

	"irishgrants/internal/config"
	"irishgrants/internal/jsonld"
	"irishgrants/internal/models"
)

// page is everything writePage needs to render a full HTML document.
type page struct {
	Title       string
	Description string
	Path        string // drives the active nav link, and the canonical URL unless Canonical is set
	Canonical   string
	CSS         string
	Head        string
	Body        string
	JSONLD      []interface{}
	NoIndex     bool
}

func siteName() string {
	if config.Cfg.SiteName == "" {
		return "Irish Grants Hub"
	}
	return config.Cfg.SiteName
}

// siteHost is the base URL without its scheme, for printed material.
func siteHost() string {
	h := strings.TrimPrefix(config.Cfg.BaseURL, "https://")
	return strings.TrimSuffix(strings.TrimPrefix(h, "http://"), "/")
}

func site() jsonld.Site {
	return jsonld.Site{Name: siteName(), BaseURL: config.Cfg.BaseURL}
}

// SharedMetaTags returns common SEO meta tags for a page.
func SharedMetaTags(title, description, canonicalPath string) string {
	base := strings.TrimRight(config.Cfg.BaseURL, "/")
	title = htmlEscape(title)
	description = htmlEscape(description)
	return `<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>` + title + `</title>
<meta name="description" content="` + description + `">
<meta name="robots" content="index, follow">
<meta property="og:type" content="website">
<meta property="og:locale" content="en_IE">
<meta property="og:url" content="` + base + canonicalPath + `">
<meta property="og:title" content="` + title + `">
<meta property="og:description" content="` + description + `">
<meta property="og:image" content="` + base + `/og-image.png">
<meta property="og:site_name" content="` + htmlEscape(siteName()) + `">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="` + title + `">
<meta name="twitter:description" content="` + description + `">
<link rel="canonical" href="` + base + canonicalPath + `">
<link rel="icon" type="image/png" sizes="32x32" href="/favicon-32x32.png">
<meta name="theme-color" content="#166534">`
}

// SharedCSS returns CSS for the layout components shared by every page.
func SharedCSS() string {
	return `
:root{--ink:#1C1C1F;--ink-75:#404045;--ink-50:#76767C;--ink-15:#D4D4D7;--ink-05:#F0F0F1;--white:#FAFAF7;--cream:#F4F3EE;--sand:#EAE8E0;--green:#166534;--green-mid:#228B4A;--green-light:#E9F5ED;--blue:#1E40AF;--blue-light:#E6EEF8;--amber:#92400E;--amber-light:#FEF3C7;--red:#B91C1C;--radius:6px;--radius-lg:10px;--shadow-card:0 1px 3px rgba(0,0,0,0.05),0 4px 16px rgba(0,0,0,0.04);--max-w:1080px;--gutter:24px}
*{margin:0;padding:0;box-sizing:border-box}
body{font-family:-apple-system,'Segoe UI',Roboto,sans-serif;background:var(--white);color:var(--ink);min-height:100vh;font-size:15px;line-height:1.65;-webkit-font-smoothing:antialiased}
h1,h2,h3{font-weight:700;line-height:1.25}
a{color:var(--green-mid);text-decoration:none}a:hover{text-decoration:underline}
.container{max-width:var(--max-w);margin:0 auto;padding:0 var(--gutter)}
.page-content{max-width:780px;margin:0 auto;padding:0 var(--gutter)}
.site-header{background:#fff;border-bottom:1px solid var(--ink-15);position:sticky;top:0;z-index:100}
.header-inner{display:flex;align-items:center;justify-content:space-between;height:58px}
.logo{display:flex;align-items:center;gap:8px;color:var(--ink);font-weight:700}
.logo:hover{text-decoration:none}
.logo-mark{width:28px;height:28px;background:var(--green);border-radius:6px;display:flex;align-items:center;justify-content:center;color:#fff;font-size:14px}
.main-nav{display:flex;gap:20px}
.nav-link{font-size:.88rem;color:var(--ink-50)}
.nav-link:hover{color:var(--green);text-decoration:none}
.nav-link.active{color:var(--green);font-weight:600}
.hero{padding:56px 0 40px;text-align:center}
.hero h1{font-size:clamp(1.7rem,4vw,2.5rem);margin-bottom:12px}
.hero p{color:var(--ink-75);max-width:640px;margin:0 auto;font-size:1.05rem}
.section{padding:36px 0}
.section h2{font-size:1.5rem;margin-bottom:14px}
.card-grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(240px,1fr));gap:18px}
.card{background:#fff;border:1px solid var(--ink-15);border-radius:var(--radius-lg);padding:20px;box-shadow:var(--shadow-card)}
.card h3{font-size:1.05rem;margin-bottom:6px}
.card p{font-size:.9rem;color:var(--ink-75)}
.badge{display:inline-block;padding:2px 10px;border-radius:12px;font-size:.72rem;font-weight:600;color:#fff;background:var(--green)}
.badge--education{background:var(--blue)}
.badge--closed{background:var(--red)}
.badge--soon{background:var(--amber)}
.btn{display:inline-block;padding:11px 22px;border-radius:var(--radius);background:var(--green);color:#fff;font-weight:600;border:none;cursor:pointer;font-size:.95rem}
.btn:hover{background:var(--green-mid);text-decoration:none}
.btn-outline{background:#fff;color:var(--green);border:1px solid var(--green)}
.breadcrumb{font-size:.82rem;color:var(--ink-50);margin:20px 0}
.breadcrumb span{margin:0 4px}
.faq details{border-bottom:1px solid var(--ink-15);padding:12px 0}
.faq summary{cursor:pointer;font-weight:600}
.faq p{margin-top:8px;color:var(--ink-75)}
.pills{display:flex;flex-wrap:wrap;gap:8px}
.pill{display:inline-block;padding:6px 14px;border-radius:20px;font-size:.82rem;background:var(--ink-05);color:var(--ink-75)}
.pill:hover{background:var(--green-light);color:var(--green);text-decoration:none}
table.data{width:100%;border-collapse:collapse;font-size:.9rem;margin:12px 0}
table.data th,table.data td{padding:8px 12px;border:1px solid var(--ink-15);text-align:left}
table.data th{background:var(--ink-05)}
.notice{background:var(--amber-light);border-left:3px solid var(--amber);padding:12px 16px;border-radius:0 var(--radius) var(--radius) 0;font-size:.88rem;margin:16px 0}
.site-footer{background:var(--cream);border-top:1px solid var(--sand);padding:32px 0 24px;margin-top:48px;text-align:center}
.footer-nav{display:flex;justify-content:center;gap:16px;flex-wrap:wrap;margin-bottom:16px}
.footer-nav a{font-size:.82rem;color:var(--ink-50)}
.footer-disclaimer{font-size:.75rem;color:var(--ink-50);max-width:720px;margin:0 auto;font-style:italic}
@media(max-width:640px){.main-nav{gap:12px}.nav-link{font-size:.8rem}}
`
}

// SharedGTMHead returns the consent-gated GTM loader, or nothing when GTM is off.
func SharedGTMHead() string {
	if config.Cfg.GTMID == "" {
		return ""
	}
	return `<script>window.dataLayer=window.dataLayer||[];var __GTM_ID__='` + config.Cfg.GTMID + `';
function loadGTM(){if(window._gtmLoaded)return;window._gtmLoaded=true;(function(w,d,s,l,i){w[l]=w[l]||[];w[l].push({'gtm.start':new Date().getTime(),event:'gtm.js'});var f=d.getElementsByTagName(s)[0],j=d.createElement(s);j.async=true;j.src='https://www.googletagmanager.com/gtm.js?id='+i;f.parentNode.insertBefore(j,f)})(window,document,'script','dataLayer',__GTM_ID__)}
if(localStorage.getItem('cookie_consent')==='accepted'){loadGTM()}</script>`
}

var navLinks = []struct {
	Path  string
	Label string
}{
	{"/grants/ev", "EV Grants"},
	{"/grants/education", "Education Grants"},
	{"/tools/ev-grant-calculator", "Calculator"},
	{"/guides", "Guides"},
	{"/about", "About"},
	{"/contact", "Contact"},
}

// SharedHeader returns the site header. activePath marks the current section.
func SharedHeader(activePath string) string {
	var sb strings.Builder
	sb.WriteString(`<header class="site-header"><div class="container header-inner">`)
	sb.WriteString(`<a href="/" class="logo" aria-label="` + htmlEscape(siteName()) + ` home">`)
	sb.WriteString(`<div class="logo-mark">IG</div><span>` + htmlEscape(siteName()) + `</span></a>`)
	sb.WriteString(`<nav class="main-nav" aria-label="Main navigation">`)
	for _, l := range navLinks {
		active := ""
		if activePath == l.Path || strings.HasPrefix(activePath, l.Path+"/") {
			active = " active"
		}
		sb.WriteString(`<a href="` + l.Path + `" class="nav-link` + active + `">` + l.Label + `</a>`)
	}
	sb.WriteString(`</nav></div></header>`)
	return sb.String()
}

// SharedFooter returns the site footer with the independence disclaimer.
func SharedFooter() string {
	return `<footer class="site-footer" role="contentinfo"><div class="container">` +
		`<nav class="footer-nav" aria-label="Footer navigation">` +
		`<a href="/grants/ev">EV Grants</a>` +
		`<a href="/grants/education">Education Grants</a>` +
		`<a href="/tools/ev-grant-calculator">EV Grant Calculator</a>` +
		`<a href="/guides">Guides</a>` +
		`<a href="/about">About</a>` +
		`<a href="/about/grant-providers">Grant Providers</a>` +
		`<a href="/contact">Contact</a>` +
		`</nav>` +
		`<p class="footer-disclaimer">` + htmlEscape(siteName()) + ` is an independent information website. ` +
		`We are not affiliated with SEAI, the HEA or any government body. Always check the official source before you apply.</p>` +
		`</div></footer>`
}

// SharedCookieBanner returns the cookie consent banner.
func SharedCookieBanner() string {
	if config.Cfg.GTMID == "" {
		return ""
	}
	return `<div id="cookieBanner" style="display:none;position:fixed;bottom:0;left:0;right:0;background:#fff;border-top:1px solid var(--ink-15);padding:14px 24px;z-index:1000">` +
		`<div class="container" style="display:flex;gap:12px;align-items:center;flex-wrap:wrap">` +
		`<span style="flex:1;font-size:.85rem">We use analytics cookies only with your consent.</span>` +
		`<button class="btn" onclick="setConsent('accepted')">Accept</button>` +
		`<button class="btn btn-outline" onclick="setConsent('rejected')">Reject</button>` +
		`</div></div>` +
		`<script>function setConsent(v){localStorage.setItem('cookie_consent',v);document.getElementById('cookieBanner').style.display='none';if(v==='accepted')loadGTM()}` +
		`if(!localStorage.getItem('cookie_consent')){document.getElementById('cookieBanner').style.display='block'}</script>`
}

// breadcrumbHTML renders a visible trail; the last link is the current page.
func breadcrumbHTML(trail []jsonld.Link) string {
	var sb strings.Builder
	sb.WriteString(`<nav class="breadcrumb" aria-label="Breadcrumb">`)
	for i, l := range trail {
		if i > 0 {
			sb.WriteString(`<span>&rsaquo;</span>`)
		}
		if i == len(trail)-1 {
			sb.WriteString(htmlEscape(l.Name))
		} else {
			sb.WriteString(`<a href="` + l.Path + `">` + htmlEscape(l.Name) + `</a>`)
		}
	}
	sb.WriteString(`</nav>`)
	return sb.String()
}

// faqHTML renders FAQs as native disclosure widgets.
func faqHTML(title string, faqs []models.FAQ) string {
	if len(faqs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<section class="section faq"><h2>` + htmlEscape(title) + `</h2>`)
	for _, f := range faqs {
		sb.WriteString(`<details><summary>` + htmlEscape(f.Question) + `</summary><p>` + htmlEscape(f.Answer) + `</p></details>`)
	}
	sb.WriteString(`</section>`)
	return sb.String()
}

func writePage(w http.ResponseWriter, p page) {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en-IE\">\n<head>\n")
	canonical := p.Path
	if p.Canonical != "" {
		canonical = p.Canonical
	}
	meta := SharedMetaTags(p.Title, p.Description, canonical)
	if p.NoIndex {
		meta = strings.Replace(meta, `content="index, follow"`, `content="noindex, follow"`, 1)
	}
	sb.WriteString(meta)
	sb.WriteString("\n" + SharedGTMHead())
	sb.WriteString("\n<style>" + SharedCSS() + p.CSS + "</style>\n")
	sb.WriteString(p.Head)
	for _, v := range p.JSONLD {
		sb.WriteString(jsonld.Script(v))
	}
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(SharedHeader(p.Path))
	sb.WriteString("\n<main>\n")
	sb.WriteString(p.Body)
	sb.WriteString("\n</main>\n")
	sb.WriteString(SharedFooter())
	sb.WriteString(SharedCookieBanner())
	sb.WriteString("\n</body>\n</html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(sb.String()))
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
