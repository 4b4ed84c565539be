package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultTopics is the built-in topic catalog
var DefaultTopics = []string{
	"Building Your Club",
	"Getting Certifications and Courses",
	"Building Confidence",
	"Recognizing Healthy Relationships",
	"Saving Your First $1,000",
	"Improving Communication Skills",
}

// TopicCatalog is the ordered list of topics a guide can be generated for.
// A topic is addressed either by its index or by its exact name.
type TopicCatalog struct {
	topics []string
}

// NewTopicCatalog builds a catalog. Names must be non-empty and unique.
func NewTopicCatalog(topics []string) (*TopicCatalog, error) {
	if len(topics) == 0 {
		return nil, goerr.New("topic catalog is empty")
	}
	seen := make(map[string]bool, len(topics))
	for i, t := range topics {
		if t == "" {
			return nil, goerr.New("topic name is empty", goerr.V("index", i))
		}
		if seen[t] {
			return nil, goerr.New("duplicate topic name", goerr.V("topic", t))
		}
		seen[t] = true
	}
	return &TopicCatalog{topics: slices.Clone(topics)}, nil
}

// DefaultTopicCatalog returns the catalog of DefaultTopics
func DefaultTopicCatalog() *TopicCatalog {
	return &TopicCatalog{topics: slices.Clone(DefaultTopics)}
}

// Name returns the topic at index
func (c *TopicCatalog) Name(index int) (string, bool) {
	if index < 0 || index >= len(c.topics) {
		return "", false
	}
	return c.topics[index], true
}

// Index returns the index of name, or -1
func (c *TopicCatalog) Index(name string) int {
	return slices.Index(c.topics, name)
}

// Topics returns a copy of all topic names in order
func (c *TopicCatalog) Topics() []string {
	return slices.Clone(c.topics)
}

// Len returns the number of topics
func (c *TopicCatalog) Len() int {
	return len(c.topics)
}
