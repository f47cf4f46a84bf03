// Package calendar groups dated tasks into per-day buckets for the month
// and week views.
package calendar

import (
	"errors"
	"sort"
	"time"

	"github.com/tgienger/daybook/internal/db"
	"github.com/tgienger/daybook/internal/models"
)

const (
	// Unassigned labels a group task with no assignee
	Unassigned = "unassigned"
	// Unknown labels a group task whose assignee no longer resolves to a user
	Unknown = "unknown"
)

// Entry is the display form of one task inside a bucket
type Entry struct {
	TaskID   int64
	Title    string
	Done     bool
	Note     string
	Assignee string // empty for personal tasks
	Due      time.Time
	Group    bool
}

// Month maps day-of-month to that day's entries. Days without tasks are absent.
type Month map[int][]Entry

// Days returns the days that have entries, in ascending order
func (m Month) Days() []int {
	days := make([]int, 0, len(m))
	for d := range m {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// Week holds seven daily buckets, index 0 being the first day of the week
type Week struct {
	Start time.Time
	Days  [7][]Entry
}

// Source lists the dated tasks a Builder buckets
type Source interface {
	ListTasksForOwnerMonth(ownerID int64, ym models.YearMonth) ([]models.Task, error)
	ListGroupTasksForGroupMonth(groupID int64, ym models.YearMonth) ([]models.GroupTask, error)
	ListGroupTasksForAssigneeMonth(assigneeID int64, ym models.YearMonth) ([]models.GroupTask, error)
	ListTasksForOwnerRange(ownerID int64, from, to time.Time) ([]models.Task, error)
	ListGroupTasksForAssigneeRange(assigneeID int64, from, to time.Time) ([]models.GroupTask, error)
}

// NameResolver maps a user ID to a display name, returning db.ErrNotFound
// for unknown users
type NameResolver interface {
	UserName(id int64) (string, error)
}

// Builder produces month and week buckets from a Source
type Builder struct {
	src   Source
	names NameResolver
}

func NewBuilder(src Source, names NameResolver) *Builder {
	return &Builder{src: src, names: names}
}

// UserMonth buckets the user's personal tasks and the group tasks assigned
// to the user for ym
func (b *Builder) UserMonth(userID int64, ym models.YearMonth) (Month, error) {
	tasks, err := b.src.ListTasksForOwnerMonth(userID, ym)
	if err != nil {
		return nil, err
	}
	groupTasks, err := b.src.ListGroupTasksForAssigneeMonth(userID, ym)
	if err != nil {
		return nil, err
	}

	entries, err := b.entries(tasks, groupTasks)
	if err != nil {
		return nil, err
	}
	return bucketMonth(ym, entries), nil
}

// GroupMonth buckets a group's tasks for ym
func (b *Builder) GroupMonth(groupID int64, ym models.YearMonth) (Month, error) {
	groupTasks, err := b.src.ListGroupTasksForGroupMonth(groupID, ym)
	if err != nil {
		return nil, err
	}

	entries, err := b.entries(nil, groupTasks)
	if err != nil {
		return nil, err
	}
	return bucketMonth(ym, entries), nil
}

// UserWeek buckets the seven days starting at the midnight of start
func (b *Builder) UserWeek(userID int64, start time.Time) (*Week, error) {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	end := start.AddDate(0, 0, 7)

	tasks, err := b.src.ListTasksForOwnerRange(userID, start, end)
	if err != nil {
		return nil, err
	}
	groupTasks, err := b.src.ListGroupTasksForAssigneeRange(userID, start, end)
	if err != nil {
		return nil, err
	}

	entries, err := b.entries(tasks, groupTasks)
	if err != nil {
		return nil, err
	}
	return bucketWeek(start, entries), nil
}

// entries converts both task kinds to entries merged by due time. Undated
// tasks are dropped. Assignee names are cached for the duration of the call.
func (b *Builder) entries(tasks []models.Task, groupTasks []models.GroupTask) ([]Entry, error) {
	var personal, group []Entry
	for _, t := range tasks {
		if t.DueAt == nil {
			continue
		}
		personal = append(personal, Entry{
			TaskID: t.ID,
			Title:  t.Title,
			Done:   t.Done,
			Note:   t.Note,
			Due:    *t.DueAt,
		})
	}

	cache := newNameCache(b.names)
	for _, t := range groupTasks {
		if t.DueAt == nil {
			continue
		}
		name, err := cache.label(t.AssigneeID)
		if err != nil {
			return nil, err
		}
		group = append(group, Entry{
			TaskID:   t.ID,
			Title:    t.Title,
			Done:     t.Done,
			Note:     t.Note,
			Assignee: name,
			Due:      *t.DueAt,
			Group:    true,
		})
	}

	return merge(personal, group), nil
}

// merge interleaves two due-ordered lists, taking from a on ties
func merge(a, b []Entry) []Entry {
	out := make([]Entry, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if b[j].Due.Before(a[i].Due) {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func bucketMonth(ym models.YearMonth, entries []Entry) Month {
	m := Month{}
	for _, e := range entries {
		if !ym.Contains(e.Due) {
			continue
		}
		m[e.Due.Day()] = append(m[e.Due.Day()], e)
	}
	return m
}

func bucketWeek(start time.Time, entries []Entry) *Week {
	w := &Week{Start: start}
	for _, e := range entries {
		due := time.Date(e.Due.Year(), e.Due.Month(), e.Due.Day(), 0, 0, 0, 0, start.Location())
		offset := int(due.Sub(start).Hours()+12) / 24
		if due.Before(start) || offset < 0 || offset > 6 {
			continue
		}
		w.Days[offset] = append(w.Days[offset], e)
	}
	return w
}

// nameCache memoizes assignee labels for one bucketing pass
type nameCache struct {
	names NameResolver
	seen  map[int64]string
}

func newNameCache(names NameResolver) *nameCache {
	return &nameCache{names: names, seen: map[int64]string{}}
}

func (c *nameCache) label(id *int64) (string, error) {
	if id == nil {
		return Unassigned, nil
	}
	if name, ok := c.seen[*id]; ok {
		return name, nil
	}

	name, err := c.names.UserName(*id)
	switch {
	case errors.Is(err, db.ErrNotFound):
		name = Unknown
	case err != nil:
		return "", err
	}
	c.seen[*id] = name
	return name, nil
}
