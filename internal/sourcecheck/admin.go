package sourcecheck

import (
	"net/http"

	"irishgrants/internal/config"

	json "github.com/goccy/go-json"
)

// AdminSourcesHandler serves GET /api/admin/sources.
// Protected by ADMIN_API_KEY (query param "key" or header "X-Admin-Key").
func AdminSourcesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	key := config.Cfg.AdminAPIKey
	if key != "" && r.URL.Query().Get("key") != key && r.Header.Get("X-Admin-Key") != key {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(Results())
}
