// Package middleware wraps the site mux: panic recovery, security headers,
// compression and per-route request metrics.
package middleware

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"irishgrants/internal/config"
	"irishgrants/internal/logger"
	"irishgrants/internal/metrics"

	"github.com/getsentry/sentry-go"
)

const recoveryPage = `<!DOCTYPE html><html lang="en-IE"><head><meta charset="UTF-8">` +
	`<meta name="robots" content="noindex"><title>Something went wrong | %s</title></head>` +
	`<body style="font-family:system-ui,sans-serif;max-width:560px;margin:80px auto;padding:0 20px;color:#1a2e22">` +
	`<h1>Something went wrong</h1><p>We could not load this page. The error has been reported.</p>` +
	`<p>You can still use the <a href="/tools/ev-grant-calculator">EV grant calculator</a> or go back to the <a href="/">home page</a>.</p>` +
	`</body></html>`

// Recovery turns a panic into a 500, reports it to Sentry and answers API
// callers with JSON and browsers with a plain error page.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			route := RouteLabel(r.URL.Path)
			logger.Error("panic recovered", map[string]interface{}{
				"route":  route,
				"method": r.Method,
				"panic":  fmt.Sprint(err),
				"stack":  string(debug.Stack()),
			})
			hub := sentry.GetHubFromContext(r.Context())
			if hub == nil {
				hub = sentry.CurrentHub().Clone()
			}
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("route", route)
				scope.SetTag("method", r.Method)
				scope.SetLevel(sentry.LevelFatal)
				hub.RecoverWithContext(r.Context(), err)
			})
			hub.Flush(2 * time.Second)

			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				io.WriteString(w, `{"ok":false,"error":"internal error"}`)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, recoveryPage, config.Cfg.SiteName)
		}()
		next.ServeHTTP(w, r)
	})
}

// ContentSecurityPolicy allows third-party origins only for the integrations
// that are configured: Google Tag Manager when GTM_ID is set and Cloudflare
// Turnstile when TURNSTILE_SITE_KEY is set.
func ContentSecurityPolicy(cfg config.Config) string {
	script := []string{"'self'", "'unsafe-inline'"}
	img := []string{"'self'", "data:"}
	connect := []string{"'self'"}
	var frame []string

	if cfg.GTMID != "" {
		script = append(script, "https://*.googletagmanager.com")
		img = append(img, "https://*.googletagmanager.com", "https://*.google-analytics.com")
		connect = append(connect, "https://*.google-analytics.com", "https://*.analytics.google.com", "https://*.googletagmanager.com")
		frame = append(frame, "https://www.googletagmanager.com")
	}
	if cfg.TurnstileSiteKey != "" {
		script = append(script, "https://challenges.cloudflare.com")
		connect = append(connect, "https://challenges.cloudflare.com")
		frame = append(frame, "https://challenges.cloudflare.com")
	}
	if len(frame) == 0 {
		frame = []string{"'none'"}
	}

	return "default-src 'self'; " +
		"script-src " + strings.Join(script, " ") + "; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src " + strings.Join(img, " ") + "; " +
		"font-src 'self'; " +
		"connect-src " + strings.Join(connect, " ") + "; " +
		"frame-src " + strings.Join(frame, " ") + "; " +
		"form-action 'self'; " +
		"frame-ancestors 'none'"
}

// SecurityHeaders adds security headers to every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")
		h.Set("Content-Security-Policy", ContentSecurityPolicy(config.Cfg))
		next.ServeHTTP(w, r)
	})
}

// Gzip compresses responses for clients that accept it. /metrics is left
// alone because promhttp negotiates its own compression, and PDF quotes are
// already compressed.
func Gzip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead || r.URL.Path == "/metrics" || r.URL.Path == "/api/estimate/report" ||
			!strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzip.NewWriter(w)
		defer gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		w.Header().Del("Content-Length")
		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, Writer: gz}, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g *gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

// Metrics counts requests per route and status code.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		metrics.IncreaseHTTPRequests(RouteLabel(r.URL.Path), sw.status)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// routes are the fixed paths served by the mux.
var routes = map[string]bool{
	"/":                          true,
	"/grants/ev":                 true,
	"/grants/education":          true,
	"/tools/ev-grant-calculator": true,
	"/guides":                    true,
	"/about":                     true,
	"/about/grant-providers":     true,
	"/contact":                   true,
	"/sitemap.xml":               true,
	"/robots.txt":                true,
	"/metrics":                   true,
	"/api/estimate":              true,
	"/api/estimate/report":       true,
	"/api/estimator/reduce":      true,
	"/api/estimator/tiers":       true,
	"/api/grants":                true,
	"/api/counties":              true,
	"/api/deadlines":             true,
	"/api/deadlines.ics":         true,
	"/api/contact":               true,
	"/api/health":                true,
	"/api/status":                true,
	"/api/admin/links":           true,
	"/api/admin/sources":         true,
	"/api/admin/deadline-alerts": true,
}

// RouteLabel maps a request path to a label from a fixed set. County, grant
// and guide pages share one label per page kind; anything else is "other".
func RouteLabel(path string) string {
	p := path
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	if routes[p] {
		return p
	}

	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for _, s := range parts {
		if s == "" {
			return "other"
		}
	}
	switch {
	case len(parts) == 3 && parts[0] == "ireland" && strings.HasPrefix(parts[1], "county-"):
		switch parts[2] {
		case "ev-grants":
			return "/ireland/{county}/ev-grants"
		case "education-grants":
			return "/ireland/{county}/education-grants"
		}
	case len(parts) == 3 && parts[0] == "grants" && (parts[1] == "ev" || parts[1] == "education"):
		return "/grants/{category}/{grant}"
	case len(parts) == 2 && parts[0] == "guides":
		return "/guides/{slug}"
	}
	return "other"
}
