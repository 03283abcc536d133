package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"taskdesk/internal/models"
)

// Columns whitelisted for UpdateTask patches, keyed by patch field name.
var taskPatchColumns = map[string]string{
	"title":      "title",
	"notes":      "notes",
	"priority":   "priority",
	"due_at":     "due_at",
	"project_id": "project_id",
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	var t models.Task
	err := s.db.QueryRowContext(ctx, `SELECT id, project_id, title, notes, completed, priority, due_at, sort_order, created_at, updated_at
        FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.ProjectID, &t.Title, &t.Notes, &t.Completed, &t.Priority, &t.DueAt, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task: %w", ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// CreateTask inserts a new open task at the end of the project's manual order.
func (s *Store) CreateTask(ctx context.Context, title string, projectID *string) (models.Task, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return models.Task{}, fmt.Errorf("task title must not be empty")
	}

	next, err := s.nextSortOrder(ctx, projectID)
	if err != nil {
		return models.Task{}, err
	}

	id := uuid.NewString()
	now := fmtTime(nowUTC())
	_, err = s.db.ExecContext(ctx, `INSERT INTO tasks(id, project_id, title, notes, completed, priority, due_at, sort_order, created_at, updated_at)
        VALUES(?, ?, ?, '', 0, 0, NULL, ?, ?, ?)`, id, projectID, trimmed, next, now, now)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(ctx, id)
}

func (s *Store) nextSortOrder(ctx context.Context, projectID *string) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order)+1, 0) FROM tasks WHERE project_id IS ?`, projectID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("task sort order: %w", err)
	}
	return next, nil
}

// UpdateTask applies a sparse patch. Only whitelisted fields are written;
// updated_at is refreshed even when the patch is otherwise empty. A nil value
// clears a nullable column (due_at, project_id).
func (s *Store) UpdateTask(ctx context.Context, id string, changes map[string]any) (models.Task, error) {
	sets := make([]string, 0, len(changes)+1)
	args := make([]any, 0, len(changes)+2)

	for field, col := range taskPatchColumns {
		value, ok := changes[field]
		if !ok {
			continue
		}
		if field == "title" {
			title, _ := value.(string)
			title = strings.TrimSpace(title)
			if title == "" {
				return models.Task{}, fmt.Errorf("task title must not be empty")
			}
			value = title
		}
		sets = append(sets, col+" = ?")
		args = append(args, value)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, fmtTime(nowUTC()), id)

	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, fmt.Errorf("task: %w", ErrNotFound)
	}
	return s.GetTask(ctx, id)
}

// ToggleTaskCompleted flips the completion flag. The manual sort position is
// kept so a reopened task returns to its old place.
func (s *Store) ToggleTaskCompleted(ctx context.Context, id string, completed bool) (models.Task, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET completed = ?, updated_at = ? WHERE id = ?`,
		completed, fmtTime(nowUTC()), id)
	if err != nil {
		return models.Task{}, fmt.Errorf("toggle task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, fmt.Errorf("task: %w", ErrNotFound)
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task; its tag links cascade away with it.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task: %w", ErrNotFound)
	}
	return nil
}

// ReorderTasks rewrites sort_order to each id's position in orderedIDs, as one
// transaction. Every row write is guarded by a project_id check (IS, so a nil
// projectID matches unassigned tasks); ids outside the project are silently
// left alone.
func (s *Store) ReorderTasks(ctx context.Context, projectID *string, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	now := fmtTime(nowUTC())
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i, id := range orderedIDs {
			if _, err := tx.ExecContext(ctx, `UPDATE tasks SET sort_order = ?, updated_at = ?
                WHERE id = ? AND project_id IS ?`, int64(i), now, id, projectID); err != nil {
				return fmt.Errorf("reorder task %s: %w", id, err)
			}
		}
		return nil
	})
}
