package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/guidebook/pkg/cli/config"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topics.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadTopicCatalog(t *testing.T) {
	t.Run("valid catalog", func(t *testing.T) {
		path := writeFile(t, `
[[topic]]
name = "Learning to Code"

[[topic]]
name = "Public Speaking"
`)
		catalog, err := config.LoadTopicCatalog(path)
		gt.NoError(t, err).Required()
		gt.Value(t, catalog.Topics()).Equal([]string{"Learning to Code", "Public Speaking"})
	})

	t.Run("empty catalog", func(t *testing.T) {
		path := writeFile(t, `title = "nothing"`)
		_, err := config.LoadTopicCatalog(path)
		gt.Error(t, err).Is(config.ErrEmptyCatalog)
	})

	t.Run("duplicate topics", func(t *testing.T) {
		path := writeFile(t, `
[[topic]]
name = "Same"

[[topic]]
name = "Same"
`)
		_, err := config.LoadTopicCatalog(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("broken TOML", func(t *testing.T) {
		path := writeFile(t, `[[topic]`)
		_, err := config.LoadTopicCatalog(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadTopicCatalog(filepath.Join(t.TempDir(), "none.toml"))
		gt.Value(t, err).NotNil()
	})

	t.Run("default without path", func(t *testing.T) {
		catalog, err := config.NewCatalogForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, catalog.Topics()).Equal(model.DefaultTopics)
	})
}
