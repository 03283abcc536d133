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

// inboxName is the display name given to the lazily created default project.
const inboxName = "Inbox"

// ListProjects retrieves all projects in manual order.
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color, icon, sort_order, created_at
        FROM projects ORDER BY sort_order ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Icon, &p.SortOrder, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject fetches a single project by id.
func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	var p models.Project
	err := s.db.QueryRowContext(ctx, `SELECT id, name, color, icon, sort_order, created_at
        FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Color, &p.Icon, &p.SortOrder, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, fmt.Errorf("project: %w", ErrNotFound)
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// CreateProject persists a new project at the end of the manual order.
// A case-insensitive name collision never fails; the stored name gets a
// " (2)", " (3)", ... suffix until it is free.
func (s *Store) CreateProject(ctx context.Context, name, color, icon string) (models.Project, error) {
	base := strings.TrimSpace(name)
	if base == "" {
		return models.Project{}, fmt.Errorf("project name must not be empty")
	}

	final := base
	for n := 2; ; n++ {
		taken, err := s.projectNameTaken(ctx, final)
		if err != nil {
			return models.Project{}, err
		}
		if !taken {
			break
		}
		final = fmt.Sprintf("%s (%d)", base, n)
	}

	var next int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order)+1, 0) FROM projects`).Scan(&next); err != nil {
		return models.Project{}, fmt.Errorf("project sort order: %w", err)
	}

	id := uuid.NewString()
	now := nowUTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO projects(id, name, color, icon, sort_order, created_at)
        VALUES(?, ?, ?, ?, ?, ?)`, id, final, color, icon, next, fmtTime(now))
	if err != nil {
		return models.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return s.GetProject(ctx, id)
}

func (s *Store) projectNameTaken(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE LOWER(name) = LOWER(?)`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check project name: %w", err)
	}
	return count > 0, nil
}

// RenameProject changes a project's name. Unlike CreateProject it does not
// disambiguate duplicates, so two projects can end up with the same name.
func (s *Store) RenameProject(ctx context.Context, id, name string) (models.Project, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return models.Project{}, fmt.Errorf("project name must not be empty")
	}

	res, err := s.db.ExecContext(ctx, `UPDATE projects SET name = ? WHERE id = ?`, trimmed, id)
	if err != nil {
		return models.Project{}, fmt.Errorf("rename project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Project{}, err
	}
	if affected == 0 {
		return models.Project{}, fmt.Errorf("project: %w", ErrNotFound)
	}
	return s.GetProject(ctx, id)
}

// EnsureInbox returns the inbox project, creating it on first access.
func (s *Store) EnsureInbox(ctx context.Context) (models.Project, error) {
	var p models.Project
	err := s.db.QueryRowContext(ctx, `SELECT id, name, color, icon, sort_order, created_at
        FROM projects WHERE icon = ? OR LOWER(name) = LOWER(?) LIMIT 1`, models.IconInbox, inboxName).
		Scan(&p.ID, &p.Name, &p.Color, &p.Icon, &p.SortOrder, &p.CreatedAt)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, fmt.Errorf("find inbox: %w", err)
	}
	return s.CreateProject(ctx, inboxName, "", models.IconInbox)
}

// DeleteProjectMoveToInbox removes a project, first reassigning its tasks to
// the inbox. Reassignment and deletion are one transaction: either every task
// moves and the row is gone, or nothing changes. Deleting the inbox itself
// fails with ErrProtectedProject.
func (s *Store) DeleteProjectMoveToInbox(ctx context.Context, id string) error {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if p.Icon == models.IconInbox || strings.EqualFold(p.Name, models.IconInbox) {
		return ErrProtectedProject
	}

	inbox, err := s.EnsureInbox(ctx)
	if err != nil {
		return err
	}

	now := fmtTime(nowUTC())
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET project_id = ?, updated_at = ?
            WHERE project_id = ?`, inbox.ID, now, id); err != nil {
			return fmt.Errorf("reassign tasks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}
