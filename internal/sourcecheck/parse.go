package sourcecheck

import (
	"bytes"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

var amountRegex = regexp.MustCompile(`(?:€|EUR)\s?([0-9]{1,3}(?:,[0-9]{3})+|[0-9]+)`)

// skipped elements never contribute visible text
var skipped = map[string]bool{"script": true, "style": true, "noscript": true, "template": true}

// VisibleText returns the text a reader would see, one block per line.
func VisibleText(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return sb.String(), nil
}

// PDFText returns the plain text of every readable page of a PDF document.
// Some official schemes publish their terms only as PDF.
func PDFText(body []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// Text picks the extractor from the body's content type.
func Text(body []byte) (string, error) {
	if http.DetectContentType(body) == "application/pdf" {
		return PDFText(body)
	}
	return VisibleText(body)
}

// Amounts extracts distinct euro amounts from text, largest first.
func Amounts(text string) []int {
	seen := make(map[int]bool)
	var out []int
	for _, m := range amountRegex.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
