package linkcheck

import (
	"net/http"

	"irishgrants/internal/config"

	json "github.com/goccy/go-json"
)

// AdminLinksHandler serves GET /api/admin/links.
// Protected by ADMIN_API_KEY (query param "key" or header "X-Admin-Key").
func AdminLinksHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !checkAdminKey(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(Summary())
}

func checkAdminKey(r *http.Request) bool {
	key := config.Cfg.AdminAPIKey
	if key == "" {
		return true // no key configured = open access (dev mode)
	}
	if r.URL.Query().Get("key") == key {
		return true
	}
	return r.Header.Get("X-Admin-Key") == key
}
