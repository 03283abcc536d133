package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"taskdesk/internal/models"
)

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Store) findTagByName(ctx context.Context, name string) (models.Tag, error) {
	var t models.Tag
	// Exact match; tag names are case-sensitive as stored.
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE name = ?`, name).Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tag{}, fmt.Errorf("tag: %w", ErrNotFound)
	}
	if err != nil {
		return models.Tag{}, fmt.Errorf("find tag: %w", err)
	}
	return t, nil
}

// EnsureTag returns the tag with the given name, creating it on first use.
// If the insert loses a race and hits the UNIQUE constraint, the winner's
// row is fetched instead of surfacing the conflict.
func (s *Store) EnsureTag(ctx context.Context, name string) (models.Tag, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return models.Tag{}, fmt.Errorf("tag name must not be empty")
	}

	tag, err := s.findTagByName(ctx, trimmed)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.Tag{}, err
	}

	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO tags(id, name) VALUES(?, ?)`, id, trimmed); err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return s.findTagByName(ctx, trimmed)
		}
		return models.Tag{}, fmt.Errorf("insert tag: %w", err)
	}
	return models.Tag{ID: id, Name: trimmed}, nil
}

// DeleteTag removes a tag; its task links cascade away with it.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("tag: %w", ErrNotFound)
	}
	return nil
}

// AttachTagToTask links a tag to a task. Attaching an already attached tag is
// a silent no-op.
func (s *Store) AttachTagToTask(ctx context.Context, taskID, tagID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO task_tags(task_id, tag_id) VALUES(?, ?)`, taskID, tagID)
	if err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

// DetachTagFromTask removes the link; detaching a non-attached tag is a
// silent no-op.
func (s *Store) DetachTagFromTask(ctx context.Context, taskID, tagID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?`, taskID, tagID)
	if err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}
	return nil
}

// ListTaskTags returns the tags attached to one task, ordered by name.
func (s *Store) ListTaskTags(ctx context.Context, taskID string) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.name FROM tags t
        JOIN task_tags tt ON t.id = tt.tag_id
        WHERE tt.task_id = ? ORDER BY t.name ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list task tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
