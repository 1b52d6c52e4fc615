package domain

import "errors"

// Lookup failures below the board level. The board-level miss is reported by
// the storage layer.
var (
	ErrColumnNotFound = errors.New("column not found")
	ErrTaskNotFound   = errors.New("task not found")
)

// ValidationError reports a rejected field on a write request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string { return e.Field + ": " + e.Reason }

// ColumnSeed describes a column to be created inside a board. Every entity
// built from a seed gets a fresh server-side identifier.
type ColumnSeed struct {
	Name  string     `json:"name"`
	Tasks []TaskSeed `json:"tasks"`
}

// TaskSeed describes a task to be created inside a column.
type TaskSeed struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	Subtasks    []SubtaskSeed `json:"subtasks"`
}

// SubtaskSeed describes a subtask to be created inside a task.
// IsCompleted defaults to false when omitted.
type SubtaskSeed struct {
	Title       string `json:"title"`
	IsCompleted *bool  `json:"isCompleted"`
}

// NewBoard constructs a board aggregate with fresh identifiers at every
// level. The name is required; columns may be empty.
func NewBoard(name, owner string, columns []ColumnSeed, statuses StatusSet) (Board, error) {
	if name == "" {
		return Board{}, ValidationError{Field: "name", Reason: "required"}
	}
	b := Board{ID: newID(), Name: name, Owner: owner, Columns: []Column{}}
	for _, seed := range columns {
		col, err := newColumn(seed, statuses)
		if err != nil {
			return Board{}, err
		}
		b.Columns = append(b.Columns, col)
	}
	return b, nil
}

func newColumn(seed ColumnSeed, statuses StatusSet) (Column, error) {
	col := Column{ID: newID(), Name: seed.Name, Tasks: []Task{}}
	for _, ts := range seed.Tasks {
		task, err := newTask(ts, statuses)
		if err != nil {
			return Column{}, err
		}
		col.Tasks = append(col.Tasks, task)
	}
	return col, nil
}

func newTask(seed TaskSeed, statuses StatusSet) (Task, error) {
	if err := statuses.validateStatus(seed.Status); err != nil {
		return Task{}, err
	}
	task := Task{
		ID:          newID(),
		Title:       seed.Title,
		Description: seed.Description,
		Status:      seed.Status,
		Subtasks:    []Subtask{},
	}
	for _, ss := range seed.Subtasks {
		task.Subtasks = append(task.Subtasks, newSubtask(ss))
	}
	return task, nil
}

func newSubtask(seed SubtaskSeed) Subtask {
	sub := Subtask{ID: newID(), Title: seed.Title}
	if seed.IsCompleted != nil {
		sub.IsCompleted = *seed.IsCompleted
	}
	return sub
}

// BoardUpdate is the partial-update payload for a board. A non-empty name
// replaces the current one; an absent or empty name leaves it unchanged.
// NewColumns are appended, then ColumnsToRemove is filtered out, in that
// order. Removal ids without a match are ignored.
type BoardUpdate struct {
	Name            *string      `json:"name"`
	NewColumns      []ColumnSeed `json:"newColumns"`
	ColumnsToRemove []string     `json:"columnsToRemove"`
}

// ApplyUpdate mutates the board in place per the update payload.
func (b *Board) ApplyUpdate(u BoardUpdate, statuses StatusSet) error {
	if u.Name != nil && *u.Name != "" {
		b.Name = *u.Name
	}
	for _, seed := range u.NewColumns {
		col, err := newColumn(seed, statuses)
		if err != nil {
			return err
		}
		b.Columns = append(b.Columns, col)
	}
	if len(u.ColumnsToRemove) > 0 {
		remove := make(map[string]struct{}, len(u.ColumnsToRemove))
		for _, id := range u.ColumnsToRemove {
			remove[id] = struct{}{}
		}
		kept := b.Columns[:0]
		for _, col := range b.Columns {
			if _, gone := remove[col.ID]; !gone {
				kept = append(kept, col)
			}
		}
		b.Columns = kept
	}
	return nil
}

// AddTask appends a freshly built task to the column and returns it.
func (c *Column) AddTask(seed TaskSeed, statuses StatusSet) (Task, error) {
	task, err := newTask(seed, statuses)
	if err != nil {
		return Task{}, err
	}
	c.Tasks = append(c.Tasks, task)
	return task, nil
}

// RemoveTask deletes the task with the given id from the column. It reports
// whether a task was actually removed.
func (c *Column) RemoveTask(id string) bool {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			c.Tasks = append(c.Tasks[:i], c.Tasks[i+1:]...)
			return true
		}
	}
	return false
}

// TaskPatch is the partial-update payload for a task. Pointer fields
// distinguish "absent" from "explicitly set": a present title or description
// is applied verbatim, so an empty string clears the field. A present status
// must come from the configured label set. Subtasks, when present, replace
// the whole sequence; SubtasksToRemove is filtered afterwards.
type TaskPatch struct {
	Title            *string       `json:"title"`
	Description      *string       `json:"description"`
	Status           *string       `json:"status"`
	Subtasks         []SubtaskSeed `json:"subtasks"`
	SubtasksToRemove []string      `json:"subtasksToRemove"`
}

// ApplyPatch mutates the task in place per the patch payload.
func (t *Task) ApplyPatch(p TaskPatch, statuses StatusSet) error {
	if p.Status != nil {
		if err := statuses.validateStatus(*p.Status); err != nil {
			return err
		}
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Subtasks != nil {
		replaced := make([]Subtask, 0, len(p.Subtasks))
		for _, seed := range p.Subtasks {
			replaced = append(replaced, newSubtask(seed))
		}
		t.Subtasks = replaced
	}
	if len(p.SubtasksToRemove) > 0 {
		remove := make(map[string]struct{}, len(p.SubtasksToRemove))
		for _, id := range p.SubtasksToRemove {
			remove[id] = struct{}{}
		}
		kept := t.Subtasks[:0]
		for _, sub := range t.Subtasks {
			if _, gone := remove[sub.ID]; !gone {
				kept = append(kept, sub)
			}
		}
		t.Subtasks = kept
	}
	return nil
}

// SubtaskMerge carries the fields merged onto an existing subtask by
// position. Nil fields leave the current value alone.
type SubtaskMerge struct {
	Title       *string `json:"title"`
	IsCompleted *bool   `json:"isCompleted"`
}

// SubtaskPatch is the payload of the subtask route. Status, when present,
// updates the parent task (the observed contract of the route, kept as-is).
// Subtasks are merged positionally: entry i patches the existing subtask at
// index i, a shorter patch leaves the tail untouched and entries beyond the
// existing sequence are ignored. This is deliberately index-keyed, unlike
// the id-keyed handling everywhere else.
type SubtaskPatch struct {
	Status   *string        `json:"status"`
	Subtasks []SubtaskMerge `json:"subtasks"`
}

// ApplySubtaskPatch mutates the task in place per the subtask patch.
func (t *Task) ApplySubtaskPatch(p SubtaskPatch, statuses StatusSet) error {
	if p.Status != nil {
		if err := statuses.validateStatus(*p.Status); err != nil {
			return err
		}
		t.Status = *p.Status
	}
	for i := range t.Subtasks {
		if i >= len(p.Subtasks) {
			break
		}
		merge := p.Subtasks[i]
		if merge.Title != nil {
			t.Subtasks[i].Title = *merge.Title
		}
		if merge.IsCompleted != nil {
			t.Subtasks[i].IsCompleted = *merge.IsCompleted
		}
	}
	return nil
}
