package deadlines

import (
	"fmt"
	"math"
	"strings"
	"time"

	"irishgrants/internal/logger"
	"irishgrants/internal/models"
)

// SoonWindow is how close a deadline must be to count as closing soon.
const SoonWindow = 30

// RunCheck evaluates all deadlines and stores the results.
func RunCheck(ds []models.Deadline, now time.Time) {
	closed, soon := 0, 0
	for _, d := range ds {
		st := Evaluate(d, now)
		SetStatus(d.Grant, st)
		if st.Status == models.StatusClosed {
			closed++
		}
		if st.ClosingSoon {
			soon++
		}
	}

	logger.Info("deadline check completed", map[string]interface{}{
		"checked":      len(ds),
		"closed":       closed,
		"closing_soon": soon,
	})
}

// Evaluate applies the rules in priority order:
// ongoing schemes keep their declared status, passed dates close,
// dates within SoonWindow days are flagged closing soon under their declared status.
func Evaluate(d models.Deadline, now time.Time) Status {
	st := Status{Status: declared(d), UpdatedAt: now}

	raw := strings.TrimSpace(d.ApplicationDeadline)
	if raw == "" || strings.EqualFold(raw, models.Ongoing) {
		st.Reason = "Applications accepted year-round"
		return st
	}

	day, err := time.ParseInLocation("2006-01-02", raw, Dublin)
	if err != nil {
		st.Reason = "Unrecognised deadline " + raw
		return st
	}
	// a deadline date stays open until the end of that day
	end := day.AddDate(0, 0, 1)

	if !now.Before(end) {
		st.Status = models.StatusClosed
		st.Reason = "Deadline passed: " + day.Format("02/01/2006")
		return st
	}

	daysLeft := int(math.Ceil(end.Sub(now).Hours() / 24))
	st.DaysLeft = daysLeft
	if daysLeft <= SoonWindow {
		// the declared status stands; a scheme can close early or not open yet
		st.ClosingSoon = true
		switch st.Status {
		case models.StatusClosed:
			st.Reason = fmt.Sprintf("Closed early, deadline in %d days", daysLeft)
		case models.StatusUpcoming:
			st.Reason = fmt.Sprintf("Not open yet, deadline in %d days", daysLeft)
		default:
			st.Reason = fmt.Sprintf("Closes in %d days", daysLeft)
		}
	}
	return st
}

func declared(d models.Deadline) string {
	switch d.Status {
	case models.StatusOpen, models.StatusClosed, models.StatusUpcoming:
		return d.Status
	}
	return models.StatusOpen
}

// NextMidnight returns the start of the next day in Dublin.
func NextMidnight(now time.Time) time.Time {
	local := now.In(Dublin)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, Dublin)
}
