package sqlite

import (
	"context"
	"fmt"
	"strings"

	"taskdesk/internal/models"
)

// clause is one typed predicate of the task query, always parameterized.
type clause struct {
	expr string
	args []any
}

const (
	orderManual = "sort_order ASC, created_at ASC"
	orderByDue  = "(due_at IS NULL) ASC, due_at ASC, sort_order ASC, created_at ASC"
)

// buildTaskQuery translates a filter descriptor into predicate clauses plus
// the ORDER BY expression. The composition rules:
//   - a project scope overrides the smart view entirely and applies no
//     completion or date filter (the caller splits done/open client-side);
//   - today matches tasks due exactly on the caller-supplied date;
//   - upcoming matches tasks due strictly after that date OR undated ones;
//   - search is a case-insensitive substring match on title or notes;
//   - every requested tag must be attached (superset, not overlap).
func buildTaskQuery(f models.TaskFilter) ([]clause, string) {
	var clauses []clause

	if f.ProjectID != nil {
		clauses = append(clauses, clause{expr: "project_id = ?", args: []any{*f.ProjectID}})
	} else {
		switch f.View {
		case models.ViewToday:
			clauses = append(clauses,
				clause{expr: "completed = 0"},
				clause{expr: "due_at = ?", args: []any{f.Today}})
		case models.ViewUpcoming:
			clauses = append(clauses,
				clause{expr: "completed = 0"},
				clause{expr: "(due_at IS NULL OR due_at > ?)", args: []any{f.Today}})
		case models.ViewCompleted:
			clauses = append(clauses, clause{expr: "completed = 1"})
		}
	}

	if q := strings.TrimSpace(f.Search); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		clauses = append(clauses, clause{
			expr: "(LOWER(title) LIKE ? OR LOWER(notes) LIKE ?)",
			args: []any{pattern, pattern},
		})
	}

	for _, tagID := range f.TagIDs {
		clauses = append(clauses, clause{
			expr: "EXISTS (SELECT 1 FROM task_tags WHERE task_id = tasks.id AND tag_id = ?)",
			args: []any{tagID},
		})
	}

	order := orderByDue
	if f.ProjectID != nil {
		order = orderManual
	}
	return clauses, order
}

// ListTasks returns the tasks matching the filter in view order. No matches
// yields an empty slice, never an error.
func (s *Store) ListTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	clauses, order := buildTaskQuery(f)

	query := `SELECT id, project_id, title, notes, completed, priority, due_at, sort_order, created_at, updated_at FROM tasks`
	var args []any
	if len(clauses) > 0 {
		exprs := make([]string, len(clauses))
		for i, c := range clauses {
			exprs[i] = c.expr
			args = append(args, c.args...)
		}
		query += " WHERE " + strings.Join(exprs, " AND ")
	}
	query += " ORDER BY " + order

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Notes, &t.Completed, &t.Priority, &t.DueAt, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
