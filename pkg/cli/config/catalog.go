package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Catalog holds the path of an optional TOML topic catalog
type Catalog struct {
	path string
}

// catalogFile is the TOML layout of a topic catalog:
//
//	[[topic]]
//	name = "Building Confidence"
type catalogFile struct {
	Topics []catalogTopic `toml:"topic"`
}

type catalogTopic struct {
	Name string `toml:"name"`
}

// Flags returns CLI flags for catalog configuration
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "topic-catalog",
			Usage:       "TOML file listing guide topics (default: built-in topics)",
			Sources:     cli.EnvVars("GUIDEBOOK_TOPIC_CATALOG"),
			Destination: &c.path,
		},
	}
}

// Configure loads the catalog file, or the built-in catalog when no path is set
func (c *Catalog) Configure() (*model.TopicCatalog, error) {
	if c.path == "" {
		return model.DefaultTopicCatalog(), nil
	}
	return LoadTopicCatalog(c.path)
}

// LoadTopicCatalog loads a topic catalog from a TOML file
func LoadTopicCatalog(path string) (*model.TopicCatalog, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read topic catalog", goerr.V(ConfigPathKey, path))
	}

	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML topic catalog", goerr.V(ConfigPathKey, path))
	}
	if len(file.Topics) == 0 {
		return nil, goerr.Wrap(ErrEmptyCatalog, "no [[topic]] entries", goerr.V(ConfigPathKey, path))
	}

	names := make([]string, len(file.Topics))
	for i, t := range file.Topics {
		names[i] = t.Name
	}

	catalog, err := model.NewTopicCatalog(names)
	if err != nil {
		return nil, goerr.Wrap(err, "topic catalog validation failed", goerr.V(ConfigPathKey, path))
	}
	return catalog, nil
}
