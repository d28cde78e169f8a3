package deadlines

import (
	"net/http"

	"irishgrants/internal/config"

	json "github.com/goccy/go-json"
)

// AdminAlertsHandler serves GET /api/admin/deadline-alerts.
// Protected by ADMIN_API_KEY (query param "key" or header "X-Admin-Key").
func AdminAlertsHandler(w http.ResponseWriter, r *http.Request) {
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
	json.NewEncoder(w).Encode(map[string]interface{}{
		"alerts":   GetAlerts(),
		"statuses": Snapshot(),
	})
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
