package models

import (
	"fmt"
	"strings"
	"time"
)

// User represents a registered account
type User struct {
	ID           int64
	Name         string
	PasswordHash string
	Email        string
}

// Group represents a named collection of users with one leader
type Group struct {
	ID        int64
	Name      string
	LeaderID  int64
	CreatedAt time.Time
}

// GroupMember is one row of the group membership relation
type GroupMember struct {
	GroupID  int64
	UserID   int64
	UserName string // populated when listing members
}

// Priority is the ordinal importance of a task. The zero value is unset
// and stands for medium.
type Priority int

const (
	PriorityUnset Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

// OrDefault returns medium for an unset priority
func (p Priority) OrDefault() Priority {
	if p == PriorityUnset {
		return PriorityMedium
	}
	return p
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "medium"
	}
}

// ParsePriority accepts "low", "medium", "high" or their first letter
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "low":
		return PriorityLow, nil
	case "", "m", "medium":
		return PriorityMedium, nil
	case "h", "high":
		return PriorityHigh, nil
	}
	return PriorityMedium, fmt.Errorf("unknown priority %q", s)
}

// Task represents a personal task owned by one user
type Task struct {
	ID              int64
	UserID          int64
	Title           string
	Note            string
	Done            bool
	Priority        Priority
	EstimateMinutes *int       // nil if not estimated
	DueAt           *time.Time // nil if the task has no due date
	CreatedAt       time.Time
}

func (t Task) Completed() bool { return t.Done }

func (t Task) Deadline() (time.Time, bool) {
	if t.DueAt == nil {
		return time.Time{}, false
	}
	return *t.DueAt, true
}

// GroupTask represents a task belonging to a group, optionally assigned to a member
type GroupTask struct {
	ID              int64
	GroupID         int64
	AssigneeID      *int64 // nil if unassigned
	CreatorID       int64
	Title           string
	Note            string
	Done            bool
	Priority        Priority
	EstimateMinutes *int
	DueAt           *time.Time
	CreatedAt       time.Time
}

func (t GroupTask) Completed() bool { return t.Done }

func (t GroupTask) Deadline() (time.Time, bool) {
	if t.DueAt == nil {
		return time.Time{}, false
	}
	return *t.DueAt, true
}

// TaskInput holds the editable fields of a task
type TaskInput struct {
	Title           string
	Note            string
	Done            bool
	Priority        Priority
	EstimateMinutes *int
	DueAt           *time.Time
}

// YearMonth identifies one calendar month
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses the "YYYY-MM" form
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// First returns midnight of the first day of the month in loc
func (ym YearMonth) First(loc *time.Location) time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, loc)
}

// Days returns the number of days in the month
func (ym YearMonth) Days() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether t falls inside the month
func (ym YearMonth) Contains(t time.Time) bool {
	return t.Year() == ym.Year && t.Month() == ym.Month
}

func (ym YearMonth) Next() YearMonth {
	return MonthOf(ym.First(time.UTC).AddDate(0, 1, 0))
}

func (ym YearMonth) Prev() YearMonth {
	return MonthOf(ym.First(time.UTC).AddDate(0, -1, 0))
}
