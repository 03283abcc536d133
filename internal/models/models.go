package models

import "time"

// View selects one of the predefined smart filters for task listing.
type View string

const (
	ViewToday     View = "today"
	ViewUpcoming  View = "upcoming"
	ViewCompleted View = "completed"
	ViewAll       View = "all"
)

// IconInbox marks the single default project that cannot be deleted.
const IconInbox = "inbox"

// Project groups tasks and carries a manual sort position.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	SortOrder int64     `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// Task represents a single to-do item. ProjectID is nil for unassigned tasks
// and DueAt holds a plain calendar date (YYYY-MM-DD) when set.
type Task struct {
	ID        string    `json:"id"`
	ProjectID *string   `json:"project_id"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	Completed bool      `json:"completed"`
	Priority  int64     `json:"priority"`
	DueAt     *string   `json:"due_at"`
	SortOrder int64     `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag labels tasks. Names are unique and case-sensitive as stored.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskTag links a task to a tag.
type TaskTag struct {
	TaskID string `json:"task_id"`
	TagID  string `json:"tag_id"`
}

// TaskFilter describes what the caller wants listed. ProjectID, when set,
// overrides the smart view and returns every task of that project regardless
// of completion. Today is the caller's current calendar date (YYYY-MM-DD),
// computed once per request rather than per row.
type TaskFilter struct {
	View      View
	ProjectID *string
	Search    string
	Today     string
	TagIDs    []string
}
