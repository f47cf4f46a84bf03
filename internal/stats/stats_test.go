package stats

import (
	"math"
	"testing"
	"time"

	"github.com/tgienger/daybook/internal/models"
)

func dueIn(now time.Time, d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestSummarize_Scenario(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.Local)
	tasks := []models.Task{
		{Title: "done", Done: true, DueAt: dueIn(now, -48*time.Hour)},
		{Title: "yesterday", DueAt: dueIn(now, -24*time.Hour)},
		{Title: "tomorrow", DueAt: dueIn(now, 24*time.Hour)},
	}

	s := Summarize(tasks, now)
	if s != (Summary{Completed: 1, Overdue: 1, Upcoming: 1}) {
		t.Fatalf("Summarize = %+v", s)
	}
	if got := s.PercentComplete(); math.Abs(got-33.333) > 0.01 {
		t.Errorf("PercentComplete = %f, want ~33.3", got)
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task models.Task
		want Class
	}{
		{"done without due", models.Task{Done: true}, Completed},
		{"done and overdue", models.Task{Done: true, DueAt: dueIn(now, -time.Hour)}, Completed},
		{"open past due", models.Task{DueAt: dueIn(now, -time.Second)}, Overdue},
		{"open due exactly now", models.Task{DueAt: dueIn(now, 0)}, Upcoming},
		{"open future", models.Task{DueAt: dueIn(now, time.Hour)}, Upcoming},
		{"open undated", models.Task{}, Upcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.task, now); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize_TotalsForEveryNow(t *testing.T) {
	base := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	var tasks []models.GroupTask
	for i := 0; i < 20; i++ {
		task := models.GroupTask{Done: i%4 == 0}
		if i%3 != 0 {
			task.DueAt = dueIn(base, time.Duration(i-10)*time.Hour)
		}
		tasks = append(tasks, task)
	}

	for h := -15; h <= 15; h++ {
		s := Summarize(tasks, base.Add(time.Duration(h)*time.Hour))
		if s.Total() != len(tasks) {
			t.Errorf("now %+dh: total %d, want %d", h, s.Total(), len(tasks))
		}
	}
}

func TestSummary_Empty(t *testing.T) {
	s := Summarize([]models.Task{}, time.Now())
	if s.Total() != 0 || s.PercentComplete() != 0 {
		t.Errorf("empty summary = %+v, %f%%", s, s.PercentComplete())
	}
}

func TestSummary_Add(t *testing.T) {
	a := Summary{Completed: 1, Overdue: 2, Upcoming: 3}
	b := Summary{Completed: 4, Overdue: 0, Upcoming: 1}
	if got := a.Add(b); got != (Summary{Completed: 5, Overdue: 2, Upcoming: 4}) {
		t.Errorf("Add = %+v", got)
	}
	if got := a.Add(b).PercentComplete(); math.Abs(got-45.4545) > 0.01 {
		t.Errorf("PercentComplete = %f", got)
	}
}
