package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"taskdesk/internal/models"
)

// seedBackupFixture fills a store with a project, tagged tasks and links.
func seedBackupFixture(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()

	project := mustCreateProject(t, store, "Work")
	task := mustCreateTask(t, store, "export me", &project.ID)
	mustPatchTask(t, store, task.ID, map[string]any{"due_at": "2026-09-10", "notes": "with notes"})
	mustCreateTask(t, store, "plain", &project.ID)

	tag, err := store.EnsureTag(ctx, "keep")
	if err != nil {
		t.Fatalf("ensure tag: %v", err)
	}
	if err := store.AttachTagToTask(ctx, task.ID, tag.ID); err != nil {
		t.Fatalf("attach: %v", err)
	}
}

// snapshot captures everything comparable about the store's contents.
func snapshot(t *testing.T, store *Store) Bundle {
	t.Helper()
	b, err := store.ExportBundle(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	return b
}

func bundlesEqual(a, b Bundle) bool {
	return reflect.DeepEqual(a.Projects, b.Projects) &&
		reflect.DeepEqual(a.Tasks, b.Tasks) &&
		reflect.DeepEqual(a.Tags, b.Tags) &&
		reflect.DeepEqual(a.TaskTags, b.TaskTags)
}

func TestBackupRoundTrip(t *testing.T) {
	source := newTestStore(t)
	seedBackupFixture(t, source)

	bundle := snapshot(t, source)
	if bundle.Version != BackupVersion {
		t.Fatalf("version = %d, want %d", bundle.Version, BackupVersion)
	}

	target := newTestStore(t)
	if err := target.ImportBundle(context.Background(), bundle); err != nil {
		t.Fatalf("import: %v", err)
	}

	if got := snapshot(t, target); !bundlesEqual(bundle, got) {
		t.Errorf("round trip diverged:\nexported: %+v\nimported: %+v", bundle, got)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	source := newTestStore(t)
	seedBackupFixture(t, source)
	bundle := snapshot(t, source)

	target := newTestStore(t)
	for i := 0; i < 2; i++ {
		if err := target.ImportBundle(context.Background(), bundle); err != nil {
			t.Fatalf("import #%d: %v", i+1, err)
		}
	}

	if got := snapshot(t, target); !bundlesEqual(bundle, got) {
		t.Error("importing twice changed the store")
	}
}

func TestImportRejectsWrongVersion(t *testing.T) {
	store := newTestStore(t)
	seedBackupFixture(t, store)
	before := snapshot(t, store)

	err := store.ImportBundle(context.Background(), Bundle{Version: 99})
	if !errors.Is(err, ErrBackupVersion) {
		t.Fatalf("got %v, want ErrBackupVersion", err)
	}

	if got := snapshot(t, store); !bundlesEqual(before, got) {
		t.Error("failed import modified the store")
	}
}

func TestImportSkipsRowsMissingIdentity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bundle := Bundle{
		Version: BackupVersion,
		Projects: []models.Project{
			{ID: "", Name: "no id"},
			{ID: "p1", Name: ""},
			{ID: "p2", Name: "kept"},
		},
		Tasks: []models.Task{
			{ID: "", Title: "no id"},
			{ID: "t1", Title: ""},
			{ID: "t2", Title: "kept", ProjectID: strPtr("p2")},
		},
		Tags: []models.Tag{
			{ID: "", Name: "no id"},
			{ID: "g1", Name: "kept"},
		},
		TaskTags: []models.TaskTag{
			{TaskID: "", TagID: "g1"},
			{TaskID: "t2", TagID: "g1"},
		},
	}

	if err := store.ImportBundle(ctx, bundle); err != nil {
		t.Fatalf("import: %v", err)
	}

	got := snapshot(t, store)
	if len(got.Projects) != 1 || got.Projects[0].ID != "p2" {
		t.Errorf("projects = %+v, want only p2", got.Projects)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].ID != "t2" {
		t.Errorf("tasks = %+v, want only t2", got.Tasks)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != "g1" {
		t.Errorf("tags = %+v, want only g1", got.Tags)
	}
	if len(got.TaskTags) != 1 || got.TaskTags[0].TaskID != "t2" {
		t.Errorf("task_tags = %+v, want only t2-g1", got.TaskTags)
	}
}

func TestImportRollsBackOnStorageError(t *testing.T) {
	store := newTestStore(t)
	seedBackupFixture(t, store)
	before := snapshot(t, store)

	// The orphan task violates the project foreign key, which must abort
	// the whole merge including the valid rows before it.
	bundle := Bundle{
		Version: BackupVersion,
		Projects: []models.Project{
			{ID: "fresh", Name: "Fresh"},
		},
		Tasks: []models.Task{
			{ID: "orphan", Title: "dangling", ProjectID: strPtr("no-such-project")},
		},
	}

	if err := store.ImportBundle(context.Background(), bundle); err == nil {
		t.Fatal("expected storage error for dangling project reference")
	}

	if got := snapshot(t, store); !bundlesEqual(before, got) {
		t.Error("partial import survived the rollback")
	}
}

func TestExportImportFiles(t *testing.T) {
	source := newTestStore(t)
	seedBackupFixture(t, source)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "backup.json")
	if err := source.ExportToFile(ctx, path); err != nil {
		t.Fatalf("export to file: %v", err)
	}

	target := newTestStore(t)

	// Declining the confirmation leaves the store untouched and is no error.
	declined := false
	if err := target.ImportFromFile(ctx, path, func() bool { declined = true; return false }); err != nil {
		t.Fatalf("declined import: %v", err)
	}
	if !declined {
		t.Fatal("confirm callback was not invoked")
	}
	if got := snapshot(t, target); len(got.Projects) != 0 {
		t.Error("declined import wrote data")
	}

	if err := target.ImportFromFile(ctx, path, func() bool { return true }); err != nil {
		t.Fatalf("import from file: %v", err)
	}
	if got := snapshot(t, target); !bundlesEqual(snapshot(t, source), got) {
		t.Error("file round trip diverged")
	}
}

func strPtr(s string) *string { return &s }
