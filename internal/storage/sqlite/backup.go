package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"taskdesk/internal/models"
)

// BackupVersion is the single bundle format this codec reads and writes.
const BackupVersion = 1

// Bundle is the portable backup document. Row field names follow the storage
// column names (snake_case); the codec is the translation boundary between
// the store and the file format.
type Bundle struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Projects   []models.Project `json:"projects"`
	Tasks      []models.Task    `json:"tasks"`
	Tags       []models.Tag     `json:"tags"`
	TaskTags   []models.TaskTag `json:"task_tags"`
}

// ExportBundle snapshots the whole store into a bundle document.
func (s *Store) ExportBundle(ctx context.Context) (Bundle, error) {
	b := Bundle{
		Version:    BackupVersion,
		ExportedAt: nowUTC(),
		Projects:   []models.Project{},
		Tasks:      []models.Task{},
		Tags:       []models.Tag{},
		TaskTags:   []models.TaskTag{},
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		return Bundle{}, err
	}
	b.Projects = append(b.Projects, projects...)

	rows, err := s.db.QueryContext(ctx, `SELECT id, project_id, title, notes, completed, priority, due_at, sort_order, created_at, updated_at
        FROM tasks ORDER BY created_at ASC`)
	if err != nil {
		return Bundle{}, fmt.Errorf("export tasks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Notes, &t.Completed, &t.Priority, &t.DueAt, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return Bundle{}, fmt.Errorf("scan task: %w", err)
		}
		b.Tasks = append(b.Tasks, t)
	}
	if err := rows.Err(); err != nil {
		return Bundle{}, err
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		return Bundle{}, err
	}
	b.Tags = append(b.Tags, tags...)

	linkRows, err := s.db.QueryContext(ctx, `SELECT task_id, tag_id FROM task_tags`)
	if err != nil {
		return Bundle{}, fmt.Errorf("export task tags: %w", err)
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var link models.TaskTag
		if err := linkRows.Scan(&link.TaskID, &link.TagID); err != nil {
			return Bundle{}, fmt.Errorf("scan task tag: %w", err)
		}
		b.TaskTags = append(b.TaskTags, link)
	}
	return b, linkRows.Err()
}

// ImportBundle merges a bundle into the store. Every row is upserted by its
// primary identity, so importing the same bundle twice is a no-op on the
// second pass. Rows missing their identity or display field are skipped.
// The merge is one transaction; any storage failure rolls the whole import
// back and leaves the store untouched.
func (s *Store) ImportBundle(ctx context.Context, b Bundle) error {
	if b.Version != BackupVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrBackupVersion, b.Version, BackupVersion)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, p := range b.Projects {
			if p.ID == "" || p.Name == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO projects(id, name, color, icon, sort_order, created_at)
                VALUES(?, ?, ?, ?, ?, ?)
                ON CONFLICT(id) DO UPDATE SET name = excluded.name, color = excluded.color,
                    icon = excluded.icon, sort_order = excluded.sort_order, created_at = excluded.created_at`,
				p.ID, p.Name, p.Color, p.Icon, p.SortOrder, fmtTime(p.CreatedAt)); err != nil {
				return fmt.Errorf("import project %s: %w", p.ID, err)
			}
		}
		for _, t := range b.Tasks {
			if t.ID == "" || t.Title == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(id, project_id, title, notes, completed, priority, due_at, sort_order, created_at, updated_at)
                VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
                ON CONFLICT(id) DO UPDATE SET project_id = excluded.project_id, title = excluded.title,
                    notes = excluded.notes, completed = excluded.completed, priority = excluded.priority,
                    due_at = excluded.due_at, sort_order = excluded.sort_order,
                    created_at = excluded.created_at, updated_at = excluded.updated_at`,
				t.ID, t.ProjectID, t.Title, t.Notes, t.Completed, t.Priority, t.DueAt, t.SortOrder, fmtTime(t.CreatedAt), fmtTime(t.UpdatedAt)); err != nil {
				return fmt.Errorf("import task %s: %w", t.ID, err)
			}
		}
		for _, tag := range b.Tags {
			if tag.ID == "" || tag.Name == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO tags(id, name) VALUES(?, ?)
                ON CONFLICT(id) DO UPDATE SET name = excluded.name`, tag.ID, tag.Name); err != nil {
				return fmt.Errorf("import tag %s: %w", tag.ID, err)
			}
		}
		for _, link := range b.TaskTags {
			if link.TaskID == "" || link.TagID == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO task_tags(task_id, tag_id) VALUES(?, ?)`, link.TaskID, link.TagID); err != nil {
				return fmt.Errorf("import task tag: %w", err)
			}
		}
		return nil
	})
}

// ExportToFile writes the bundle document as indented JSON.
func (s *Store) ExportToFile(ctx context.Context, path string) error {
	b, err := s.ExportBundle(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	return nil
}

// ImportFromFile reads and merges a bundle document. The confirm callback is
// invoked before anything is written because the merge overwrites matching
// ids irreversibly; a declining callback aborts quietly with no error.
func (s *Store) ImportFromFile(ctx context.Context, path string, confirm func() bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read bundle: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("decode bundle: %w", err)
	}
	if confirm != nil && !confirm() {
		s.logger.Info("import declined")
		return nil
	}
	return s.ImportBundle(ctx, b)
}
