// Package jsonld builds schema.org structured data for search engines.
package jsonld

import (
	"strings"

	"irishgrants/internal/models"

	json "github.com/goccy/go-json"
)

const schemaContext = "https://schema.org"

// Site identifies the publisher on every document.
type Site struct {
	Name    string
	BaseURL string
}

func (s Site) url(path string) string {
	return strings.TrimRight(s.BaseURL, "/") + path
}

type thing struct {
	Type string `json:"@type"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

type answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

type question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer answer `json:"acceptedAnswer"`
}

type FAQPage struct {
	Context    string     `json:"@context"`
	Type       string     `json:"@type"`
	MainEntity []question `json:"mainEntity"`
}

func NewFAQPage(faqs []models.FAQ) FAQPage {
	p := FAQPage{Context: schemaContext, Type: "FAQPage"}
	for _, f := range faqs {
		p.MainEntity = append(p.MainEntity, question{
			Type:           "Question",
			Name:           f.Question,
			AcceptedAnswer: answer{Type: "Answer", Text: f.Answer},
		})
	}
	return p
}

type imageObject struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

type publisher struct {
	Type string      `json:"@type"`
	Name string      `json:"name"`
	Logo imageObject `json:"logo"`
}

type webPageRef struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
}

type Article struct {
	Context          string     `json:"@context"`
	Type             string     `json:"@type"`
	Headline         string     `json:"headline"`
	Description      string     `json:"description"`
	Author           thing      `json:"author"`
	Publisher        publisher  `json:"publisher"`
	DatePublished    string     `json:"datePublished"`
	DateModified     string     `json:"dateModified"`
	MainEntityOfPage webPageRef `json:"mainEntityOfPage"`
}

// NewArticle describes a page at path. Dates are YYYY-MM-DD.
func NewArticle(site Site, title, description, path, published, modified string) Article {
	return Article{
		Context:     schemaContext,
		Type:        "Article",
		Headline:    title,
		Description: description,
		Author:      thing{Type: "Organization", Name: site.Name},
		Publisher: publisher{
			Type: "Organization",
			Name: site.Name,
			Logo: imageObject{Type: "ImageObject", URL: site.url("/logo.png")},
		},
		DatePublished:    published,
		DateModified:     modified,
		MainEntityOfPage: webPageRef{Type: "WebPage", ID: site.url(path)},
	}
}

type Organization struct {
	Context     string `json:"@context"`
	Type        string `json:"@type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Logo        string `json:"logo"`
}

func NewOrganization(site Site) Organization {
	return Organization{
		Context:     schemaContext,
		Type:        "Organization",
		Name:        site.Name,
		Description: "Your trusted guide to understanding and applying for grants in Ireland",
		URL:         site.url("/"),
		Logo:        site.url("/logo.png"),
	}
}

type offer struct {
	Type          string `json:"@type"`
	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
}

type quantitativeValue struct {
	Type        string `json:"@type"`
	UnitCode    string `json:"unitCode"`
	MinValue    int    `json:"minValue"`
	MaxValue    int    `json:"maxValue"`
	Description string `json:"description"`
}

type WebApplication struct {
	Context             string            `json:"@context"`
	Type                string            `json:"@type"`
	Name                string            `json:"name"`
	Description         string            `json:"description"`
	URL                 string            `json:"url"`
	ApplicationCategory string            `json:"applicationCategory"`
	OperatingSystem     string            `json:"operatingSystem"`
	Offers              offer             `json:"offers"`
	Provider            thing             `json:"provider"`
	Result              quantitativeValue `json:"result"`
}

// NewCalculator describes the grant calculator. minGrant and maxGrant bound
// the estimate it can return.
func NewCalculator(site Site, path string, minGrant, maxGrant int) WebApplication {
	return WebApplication{
		Context:             schemaContext,
		Type:                "WebApplication",
		Name:                "EV Grant Calculator Ireland",
		Description:         "Estimate the SEAI grant for an electric vehicle from its price.",
		URL:                 site.url(path),
		ApplicationCategory: "FinanceApplication",
		OperatingSystem:     "Web Browser",
		Offers:              offer{Type: "Offer", Price: "0", PriceCurrency: "EUR"},
		Provider:            thing{Type: "Organization", Name: site.Name, URL: site.url("/")},
		Result: quantitativeValue{
			Type:        "QuantitativeValue",
			UnitCode:    "EUR",
			MinValue:    minGrant,
			MaxValue:    maxGrant,
			Description: "Estimated EV grant amount",
		},
	}
}

type listItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item,omitempty"`
	URL      string `json:"url,omitempty"`
}

type itemList struct {
	Type            string     `json:"@type"`
	ItemListElement []listItem `json:"itemListElement"`
}

// Link is a named page used by breadcrumbs and collections.
type Link struct {
	Name string
	Path string
}

type BreadcrumbList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	ItemListElement []listItem `json:"itemListElement"`
}

func NewBreadcrumbs(site Site, trail []Link) BreadcrumbList {
	b := BreadcrumbList{Context: schemaContext, Type: "BreadcrumbList"}
	for i, l := range trail {
		b.ItemListElement = append(b.ItemListElement, listItem{
			Type: "ListItem", Position: i + 1, Name: l.Name, Item: site.url(l.Path),
		})
	}
	return b
}

type CollectionPage struct {
	Context     string   `json:"@context"`
	Type        string   `json:"@type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	MainEntity  itemList `json:"mainEntity"`
}

func NewCollection(site Site, name, description, path string, items []Link) CollectionPage {
	c := CollectionPage{
		Context:     schemaContext,
		Type:        "CollectionPage",
		Name:        name,
		Description: description,
		URL:         site.url(path),
		MainEntity:  itemList{Type: "ItemList"},
	}
	for i, l := range items {
		c.MainEntity.ItemListElement = append(c.MainEntity.ItemListElement, listItem{
			Type: "ListItem", Position: i + 1, Name: l.Name, URL: site.url(l.Path),
		})
	}
	return c
}

// Script renders v inside a JSON-LD script tag. The encoder escapes <, > and &
// so text content cannot close the tag early.
func Script(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return `<script type="application/ld+json">` + "\n" + string(data) + "\n</script>\n"
}
