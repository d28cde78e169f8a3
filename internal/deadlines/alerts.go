package deadlines

import (
	"sync"
	"time"
)

const maxAlerts = 100

// Alert records a deadline changing state.
type Alert struct {
	Grant     string    `json:"grant"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
	Urgency   string    `json:"urgency"`
}

var (
	alertsMu  sync.Mutex
	alerts    []Alert
	alertHook func(Alert)
)

// OnAlert registers fn to be called for every new alert. Pass nil to remove it.
func OnAlert(fn func(Alert)) {
	alertsMu.Lock()
	alertHook = fn
	alertsMu.Unlock()
}

// AddAlert appends an alert to the ring buffer (max 100).
func AddAlert(a Alert) {
	alertsMu.Lock()
	alerts = append(alerts, a)
	if len(alerts) > maxAlerts {
		alerts = alerts[len(alerts)-maxAlerts:]
	}
	hook := alertHook
	alertsMu.Unlock()

	if hook != nil {
		hook(a)
	}
}

// GetAlerts returns a copy of recent alerts (newest first).
func GetAlerts() []Alert {
	alertsMu.Lock()
	defer alertsMu.Unlock()
	result := make([]Alert, len(alerts))
	for i, a := range alerts {
		result[len(alerts)-1-i] = a
	}
	return result
}

func resetAlerts() {
	alertsMu.Lock()
	alerts = nil
	alertsMu.Unlock()
}
