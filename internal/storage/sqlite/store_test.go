package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"taskdesk/internal/models"
)

// newTestStore opens an isolated store backed by a temp-dir database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "test.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateProject(t *testing.T, s *Store, name string) models.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), name, "", "")
	if err != nil {
		t.Fatalf("create project %q: %v", name, err)
	}
	return p
}

func mustCreateTask(t *testing.T, s *Store, title string, projectID *string) models.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), title, projectID)
	if err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return task
}

func mustPatchTask(t *testing.T, s *Store, id string, changes map[string]any) models.Task {
	t.Helper()
	task, err := s.UpdateTask(context.Background(), id, changes)
	if err != nil {
		t.Fatalf("patch task %s: %v", id, err)
	}
	return task
}

func taskIDs(tasks []models.Task) []string {
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return ids
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("", nil); err == nil {
		t.Fatal("expected error for empty database path")
	}
}
