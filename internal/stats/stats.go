// Package stats classifies tasks as completed, overdue or upcoming.
package stats

import "time"

// Class is the statistics bucket of a single task
type Class int

const (
	Completed Class = iota
	Overdue
	Upcoming
)

func (c Class) String() string {
	switch c {
	case Completed:
		return "completed"
	case Overdue:
		return "overdue"
	default:
		return "upcoming"
	}
}

// Trackable is implemented by personal and group tasks
type Trackable interface {
	Completed() bool
	Deadline() (time.Time, bool)
}

// Classify places a task into exactly one class relative to now.
// Done wins over any due date; an undated open task is upcoming.
func Classify(t Trackable, now time.Time) Class {
	if t.Completed() {
		return Completed
	}
	if due, ok := t.Deadline(); ok && due.Before(now) {
		return Overdue
	}
	return Upcoming
}

// Summary holds the per-class counts of a task set
type Summary struct {
	Completed int
	Overdue   int
	Upcoming  int
}

// Summarize counts tasks per class
func Summarize[T Trackable](tasks []T, now time.Time) Summary {
	var s Summary
	for _, t := range tasks {
		switch Classify(t, now) {
		case Completed:
			s.Completed++
		case Overdue:
			s.Overdue++
		case Upcoming:
			s.Upcoming++
		}
	}
	return s
}

func (s Summary) Total() int {
	return s.Completed + s.Overdue + s.Upcoming
}

// PercentComplete returns completed/total*100, or 0 for an empty set
func (s Summary) PercentComplete() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(total) * 100
}

// Add combines two summaries
func (s Summary) Add(o Summary) Summary {
	return Summary{
		Completed: s.Completed + o.Completed,
		Overdue:   s.Overdue + o.Overdue,
		Upcoming:  s.Upcoming + o.Upcoming,
	}
}
