package types

import "fmt"

// ResourceKind identifies a free-text resource guide
type ResourceKind string

const (
	ResourceKindMentorship   ResourceKind = "mentorship"
	ResourceKindMentorSearch ResourceKind = "mentor-search"
	ResourceKindScholarship  ResourceKind = "scholarship"
)

// AllResourceKinds returns all valid resource kinds
func AllResourceKinds() []ResourceKind {
	return []ResourceKind{
		ResourceKindMentorship,
		ResourceKindMentorSearch,
		ResourceKindScholarship,
	}
}

// IsValid checks if the resource kind is valid
func (k ResourceKind) IsValid() bool {
	switch k {
	case ResourceKindMentorship, ResourceKindMentorSearch, ResourceKindScholarship:
		return true
	default:
		return false
	}
}

// String returns the string representation of the resource kind
func (k ResourceKind) String() string {
	return string(k)
}

// ParseResourceKind parses a string into a ResourceKind
func ParseResourceKind(s string) (ResourceKind, error) {
	kind := ResourceKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid resource kind: %s", s)
	}
	return kind, nil
}
