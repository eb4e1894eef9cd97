package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/georgeshao/sdstudio/internal/storage"
)

func setupTestStore(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "sqlite_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		if removeErr := os.RemoveAll(tempDir); removeErr != nil {
			t.Logf("Failed to remove temp dir: %v", removeErr)
		}
		t.Fatalf("Failed to create store: %v", err)
	}

	cleanup := func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Logf("Failed to close store: %v", closeErr)
		}
		if removeErr := os.RemoveAll(tempDir); removeErr != nil {
			t.Logf("Failed to remove temp dir: %v", removeErr)
		}
	}

	return store, cleanup
}

func putGenerations(t *testing.T, index *IndexStore, projectID string, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		genID := fmt.Sprintf("gen-%02d", i)
		rec := &storage.GenerationRecord{
			ProjectID:    projectID,
			GenerationID: genID,
			Input:        []byte(`{"steps":50}`),
			ObjectKeys:   []string{storage.ObjectKey(projectID, genID, "a"), storage.ObjectKey(projectID, genID, "b")},
		}
		if err := index.PutGeneration(ctx, rec); err != nil {
			t.Fatalf("PutGeneration failed: %v", err)
		}
	}
}

func TestGenerationRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	index := store.Index("generations")
	putGenerations(t, index, "p1", 1)

	page, err := index.QueryGenerations(ctx, storage.GenerationQuery{ProjectID: "p1", Limit: 10})
	if err != nil {
		t.Fatalf("QueryGenerations failed: %v", err)
	}
	if len(page.Records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(page.Records))
	}

	rec := page.Records[0]
	if string(rec.Input) != `{"steps":50}` {
		t.Errorf("Input mismatch: got %s", rec.Input)
	}
	if len(rec.ObjectKeys) != 2 || rec.ObjectKeys[0] != "p1/gen-00/a.png" {
		t.Errorf("ObjectKeys mismatch: got %v", rec.ObjectKeys)
	}
	if page.NextToken != "" {
		t.Errorf("Expected no next token, got %s", page.NextToken)
	}
}

func TestGenerationPagination(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	index := store.Index("generations")
	putGenerations(t, index, "p1", 5)
	putGenerations(t, index, "p2", 2)

	first, err := index.QueryGenerations(ctx, storage.GenerationQuery{ProjectID: "p1", Limit: 3})
	if err != nil {
		t.Fatalf("QueryGenerations failed: %v", err)
	}
	if len(first.Records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(first.Records))
	}
	if first.NextToken != "gen-02" {
		t.Errorf("Expected next token gen-02, got %q", first.NextToken)
	}

	second, err := index.QueryGenerations(ctx, storage.GenerationQuery{ProjectID: "p1", Limit: 3, After: first.NextToken})
	if err != nil {
		t.Fatalf("QueryGenerations failed: %v", err)
	}
	if len(second.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(second.Records))
	}
	if second.Records[0].GenerationID != "gen-03" {
		t.Errorf("Expected gen-03 first, got %s", second.Records[0].GenerationID)
	}
	if second.NextToken != "" {
		t.Errorf("Expected no next token, got %q", second.NextToken)
	}
}

func TestTablesAreIsolated(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	putGenerations(t, store.Index("table-a"), "p1", 2)

	page, err := store.Index("table-b").QueryGenerations(ctx, storage.GenerationQuery{ProjectID: "p1", Limit: 10})
	if err != nil {
		t.Fatalf("QueryGenerations failed: %v", err)
	}
	if len(page.Records) != 0 {
		t.Errorf("Expected 0 records, got %d", len(page.Records))
	}
}

func TestDeleteGeneration(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	index := store.Index("generations")
	putGenerations(t, index, "p1", 2)

	if err := index.DeleteGeneration(ctx, "p1", "gen-00"); err != nil {
		t.Fatalf("DeleteGeneration failed: %v", err)
	}
	// Deleting again is not an error.
	if err := index.DeleteGeneration(ctx, "p1", "gen-00"); err != nil {
		t.Fatalf("Second DeleteGeneration failed: %v", err)
	}

	page, err := index.QueryGenerations(ctx, storage.GenerationQuery{ProjectID: "p1", Limit: 10})
	if err != nil {
		t.Fatalf("QueryGenerations failed: %v", err)
	}
	if len(page.Records) != 1 || page.Records[0].GenerationID != "gen-01" {
		t.Errorf("Expected only gen-01 to remain, got %d records", len(page.Records))
	}
}

func TestSettingsStore(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	settings := store.Settings()

	if err := settings.Save(ctx, "region", "us-east-1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := settings.Save(ctx, "region", "eu-west-1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	values, err := settings.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if values["region"] != "eu-west-1" {
		t.Errorf("Region mismatch: got %s", values["region"])
	}
	if len(values) != 1 {
		t.Errorf("Expected 1 setting, got %d", len(values))
	}
}
