// Package deadlines evaluates grant application windows against the clock
// and keeps the latest result for each deadline in memory.
package deadlines

import (
	"sync"
	"time"
	_ "time/tzdata"

	"irishgrants/internal/models"
)

var statusCache sync.Map // map[string]Status, keyed by Deadline.Grant

// Dublin is the zone deadlines are expressed in.
var Dublin = loadDublin()

func loadDublin() *time.Location {
	loc, err := time.LoadLocation("Europe/Dublin")
	if err != nil {
		return time.UTC
	}
	return loc
}

// Status is the evaluated state of one deadline.
type Status struct {
	Status      string    `json:"status"`
	ClosingSoon bool      `json:"closing_soon"`
	DaysLeft    int       `json:"days_left,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplyStatus returns copies of ds with cached statuses patched on.
// Deadlines that have not been checked yet are evaluated on the spot.
func ApplyStatus(ds []models.Deadline, now time.Time) []models.Deadline {
	out := make([]models.Deadline, len(ds))
	for i, d := range ds {
		st, ok := GetStatus(d.Grant)
		if !ok {
			st = Evaluate(d, now)
		}
		d.Status = st.Status
		d.ClosingSoon = st.ClosingSoon
		d.DaysLeft = st.DaysLeft
		d.Reason = st.Reason
		d.CheckedAt = st.UpdatedAt
		out[i] = d
	}
	return out
}

func GetStatus(grant string) (Status, bool) {
	v, ok := statusCache.Load(grant)
	if !ok {
		return Status{}, false
	}
	return v.(Status), true
}

// SetStatus stores a status and raises an alert when it differs from the previous one.
func SetStatus(grant string, st Status) {
	old, had := GetStatus(grant)
	statusCache.Store(grant, st)
	if had && (old.Status != st.Status || old.ClosingSoon != st.ClosingSoon) {
		AddAlert(Alert{
			Grant:     grant,
			OldStatus: label(old),
			NewStatus: label(st),
			Reason:    st.Reason,
			Timestamp: st.UpdatedAt,
			Urgency:   alertUrgency(st),
		})
	}
}

func label(st Status) string {
	if st.ClosingSoon {
		return st.Status + " (closing soon)"
	}
	return st.Status
}

func alertUrgency(st Status) string {
	switch {
	case st.Status == models.StatusClosed:
		return "high"
	case st.ClosingSoon:
		return "medium"
	default:
		return "low"
	}
}

// Snapshot lists every cached status.
func Snapshot() map[string]Status {
	out := make(map[string]Status)
	statusCache.Range(func(k, v interface{}) bool {
		out[k.(string)] = v.(Status)
		return true
	})
	return out
}

func resetCache() {
	statusCache.Range(func(k, _ interface{}) bool {
		statusCache.Delete(k)
		return true
	})
}
