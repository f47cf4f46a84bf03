package views

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/tgienger/daybook/internal/db"
	"github.com/tgienger/daybook/internal/models"
	"github.com/tgienger/daybook/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// Session is the logged-in user shared by the views
type Session struct {
	DB        *db.DB
	User      models.User
	WeekStart time.Weekday
	Now       func() time.Time
}

// errMsg carries a failed command back into Update
type errMsg struct{ err error }

// userMessage turns an access layer error into a status line
func userMessage(err error) string {
	switch {
	case errors.Is(err, db.ErrConflict):
		return "Already exists"
	case errors.Is(err, db.ErrNotFound):
		return "Not found"
	case errors.Is(err, db.ErrInvalid):
		return strings.TrimPrefix(err.Error(), db.ErrInvalid.Error()+": ")
	case errors.Is(err, db.ErrStorageUnavailable):
		return "Storage unavailable, try again"
	}
	return err.Error()
}

// Input layouts accepted for due dates
var dueInputLayouts = []string{"2006-01-02 15:04", "2006-01-02"}

// parseDueInput parses a due date typed by the user; empty means no due date.
// A bare date is due at the end of that day.
func parseDueInput(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueInputLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, time.Local)
		}
		return &t, nil
	}
	return nil, fmt.Errorf("due date must look like 2024-03-05 or 2024-03-05 14:30")
}

func formatDueInput(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dueInputLayouts[0])
}

// parseEstimate parses minutes; empty means no estimate
func parseEstimate(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("estimate must be a number of minutes")
	}
	return &n, nil
}

func formatEstimate(m *int) string {
	if m == nil {
		return ""
	}
	return strconv.Itoa(*m)
}

// dueLabel renders a short relative due label
func dueLabel(due *time.Time, now time.Time) string {
	if due == nil {
		return ""
	}
	if due.Year() == now.Year() {
		return due.Format("Jan 2 15:04")
	}
	return due.Format("Jan 2 2006")
}

// helpLine renders "key desc • key desc" from bindings
func helpLine(s *styles.Styles, bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, s.HelpKey.Render(h.Key)+" "+s.HelpDesc.Render(h.Desc))
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

// startOfWeek returns midnight of the first day of the week containing t
func startOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	offset := (int(t.Weekday()) - int(weekStart) + 7) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}
