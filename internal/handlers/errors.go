package handlers

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

// NotFoundHandler serves a styled 404 page or a JSON error for API routes.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSONStatus(w, http.StatusNotFound, map[string]string{"error": "endpoint not found"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	writeErrorPage(w, "404", "Page not found", "The page you are looking for does not exist or has moved.")
}

// InternalErrorHandler serves a styled 500 page or a JSON error for API routes.
func InternalErrorHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	writeErrorPage(w, "500", "Something went wrong", "Please try again in a moment.")
}

// writeErrorPage renders the error body. The caller has already written the status.
func writeErrorPage(w http.ResponseWriter, code, title, message string) {
	body := `<section class="hero"><div class="container">` +
		`<p style="font-size:4.5rem;font-weight:800;color:var(--green);line-height:1">` + code + `</p>` +
		`<h1>` + htmlEscape(title) + `</h1><p>` + htmlEscape(message) + `</p>` +
		`<p style="margin-top:24px"><a class="btn" href="/">Back to home</a> ` +
		`<a class="btn btn-outline" href="/tools/ev-grant-calculator">EV grant calculator</a></p>` +
		`</div></section>`
	writePage(w, page{
		Title:       title + " | " + siteName(),
		Description: message,
		Path:        "/",
		Body:        body,
		NoIndex:     true,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
