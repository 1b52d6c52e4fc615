package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Board is the top-level aggregate: a named, ordered collection of columns.
// The whole nested document is loaded and persisted as one unit.
type Board struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Owner   string   `json:"owner,omitempty"`
	Columns []Column `json:"columns"`
}

// Column is a named, ordered collection of tasks inside a board.
type Column struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Tasks []Task `json:"tasks"`
}

// Task is a work item inside a column.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Subtasks    []Subtask `json:"subtasks"`
}

// Subtask is a checklist item inside a task.
type Subtask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

func newID() string { return uuid.NewString() }

// Normalize replaces nil nested sequences with empty ones. Column, task and
// subtask lists are always present in responses and persisted documents.
func (b *Board) Normalize() {
	if b.Columns == nil {
		b.Columns = []Column{}
	}
	for i := range b.Columns {
		col := &b.Columns[i]
		if col.Tasks == nil {
			col.Tasks = []Task{}
		}
		for j := range col.Tasks {
			if col.Tasks[j].Subtasks == nil {
				col.Tasks[j].Subtasks = []Subtask{}
			}
		}
	}
}

// Column returns a pointer to the column with the given id, or nil.
// Collections are small, so a linear scan is fine.
func (b *Board) Column(id string) *Column {
	for i := range b.Columns {
		if b.Columns[i].ID == id {
			return &b.Columns[i]
		}
	}
	return nil
}

// Task returns a pointer to the task with the given id, or nil.
func (c *Column) Task(id string) *Task {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return &c.Tasks[i]
		}
	}
	return nil
}

// StatusSet is the accepted set of task lifecycle labels.
type StatusSet []string

// DefaultStatuses returns the stock label set.
func DefaultStatuses() StatusSet {
	return StatusSet{"To do", "Doing", "Done"}
}

// ParseStatuses builds a StatusSet from a comma-separated list, falling back
// to the defaults when the input holds no labels.
func ParseStatuses(raw string) StatusSet {
	var set StatusSet
	for _, label := range strings.Split(raw, ",") {
		if label = strings.TrimSpace(label); label != "" {
			set = append(set, label)
		}
	}
	if len(set) == 0 {
		return DefaultStatuses()
	}
	return set
}

// Contains reports whether label is an accepted status.
func (s StatusSet) Contains(label string) bool {
	for _, v := range s {
		if v == label {
			return true
		}
	}
	return false
}

// validateStatus accepts empty labels: the source model defaults status to
// the empty string, only set labels must come from the configured set.
func (s StatusSet) validateStatus(label string) error {
	if label == "" || s.Contains(label) {
		return nil
	}
	return ValidationError{Field: "status", Reason: "unknown status label " + strconv.Quote(label)}
}
