package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
	"github.com/secmon-lab/guidebook/pkg/repository/firestore"
	"github.com/secmon-lab/guidebook/pkg/repository/memory"
	"github.com/secmon-lab/guidebook/pkg/repository/sqlite"
)

type repoFactory struct {
	name string
	new  func(t *testing.T) interfaces.Repository
}

func factories() []repoFactory {
	return []repoFactory{
		{name: "Memory", new: newMemoryRepository},
		{name: "SQLite", new: newSQLiteRepository},
		{name: "Firestore", new: newFirestoreRepository},
	}
}

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newSQLiteRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	ctx := context.Background()
	repo, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "guidebook.db"))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close(ctx))
	})
	return repo
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	ctx := context.Background()
	prefix := "test_" + uuid.NewString()
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close(ctx))
	})
	return repo
}

// newID returns a unique id so that suites do not collide on shared backends
func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
