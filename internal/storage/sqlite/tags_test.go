package sqlite

import (
	"context"
	"errors"
	"testing"
)

func TestEnsureTagIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.EnsureTag(ctx, "Work")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	second, err := store.EnsureTag(ctx, "Work")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("same name produced two tags: %q vs %q", first.ID, second.ID)
	}

	// Names are case-sensitive as stored, so a different casing is a
	// different tag.
	lower, err := store.EnsureTag(ctx, "work")
	if err != nil {
		t.Fatalf("ensure lowercase: %v", err)
	}
	if lower.ID == first.ID {
		t.Error("case-insensitive match collapsed distinct tags")
	}

	trimmed, err := store.EnsureTag(ctx, "  Work  ")
	if err != nil {
		t.Fatalf("ensure trimmed: %v", err)
	}
	if trimmed.ID != first.ID {
		t.Error("trimming did not normalize the lookup")
	}
}

func TestEnsureTagRejectsEmptyName(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"", "  "} {
		if _, err := store.EnsureTag(context.Background(), name); err == nil {
			t.Errorf("ensure %q: expected validation error", name)
		}
	}
}

func TestAttachDetachAreIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := mustCreateProject(t, store, "Work")
	task := mustCreateTask(t, store, "tagged", &project.ID)
	tag, err := store.EnsureTag(ctx, "urgent")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := store.AttachTagToTask(ctx, task.ID, tag.ID); err != nil {
			t.Fatalf("attach #%d: %v", i+1, err)
		}
	}
	tags, err := store.ListTaskTags(ctx, task.ID)
	if err != nil {
		t.Fatalf("list task tags: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("double attach left %d links, want 1", len(tags))
	}

	for i := 0; i < 2; i++ {
		if err := store.DetachTagFromTask(ctx, task.ID, tag.ID); err != nil {
			t.Fatalf("detach #%d: %v", i+1, err)
		}
	}
	tags, err = store.ListTaskTags(ctx, task.ID)
	if err != nil {
		t.Fatalf("list task tags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("detach left %d links, want 0", len(tags))
	}
}

func TestDeleteTagCascadesLinks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := mustCreateProject(t, store, "Work")
	task := mustCreateTask(t, store, "tagged", &project.ID)
	tag, err := store.EnsureTag(ctx, "urgent")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := store.AttachTagToTask(ctx, task.ID, tag.ID); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if err := store.DeleteTag(ctx, tag.ID); err != nil {
		t.Fatalf("delete tag: %v", err)
	}
	tags, err := store.ListTaskTags(ctx, task.ID)
	if err != nil {
		t.Fatalf("list task tags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("tag links survived tag deletion: %d", len(tags))
	}

	if err := store.DeleteTag(ctx, tag.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}
