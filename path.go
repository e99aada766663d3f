package envssm

import (
	"fmt"
	"strings"
)

// DefaultDelimiter separates the segments of a hierarchical parameter name.
const DefaultDelimiter = "/"

// PathSpec is the caller-facing description of a store location.
// An empty Delimiter defers to Options.PathDelimiter and then to DefaultDelimiter.
type PathSpec struct {
	Path      string `json:"path"`
	Delimiter string `json:"delimiter,omitempty"`
}

// Path is a normalized store location. The zero value is not valid; build one
// with NewPath or ParsePath.
type Path struct {
	path      string
	delimiter string
}

// NewPath returns a Path using delimiter, or DefaultDelimiter when delimiter is empty.
func NewPath(path, delimiter string) Path {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return Path{path: path, delimiter: delimiter}
}

// Path returns the location string.
func (p Path) Path() string { return p.path }

// Delimiter returns the segment separator. It is never empty for a constructed Path.
func (p Path) Delimiter() string { return p.delimiter }

// String implements fmt.Stringer.
func (p Path) String() string {
	return fmt.Sprintf("%s (delimiter %q)", p.path, p.delimiter)
}

// hierarchical reports whether the store can list p directly by path.
func (p Path) hierarchical() bool {
	return p.delimiter == DefaultDelimiter && strings.HasPrefix(p.path, DefaultDelimiter)
}

// ParsePath normalizes v into a Path. Accepted shapes are a bare string,
// a Path, a PathSpec (or pointer to one) and a decoded JSON object with a
// string "path" and an optional string "delimiter".
//
// The effective delimiter is the record's own delimiter, then delimiter,
// then DefaultDelimiter.
func ParsePath(v any, delimiter string) (Path, error) {
	switch p := v.(type) {
	case string:
		return NewPath(p, delimiter), nil
	case Path:
		if p.delimiter == "" {
			return NewPath(p.path, delimiter), nil
		}
		return p, nil
	case PathSpec:
		return NewPath(p.Path, firstNonEmpty(p.Delimiter, delimiter)), nil
	case *PathSpec:
		if p == nil {
			break
		}
		return NewPath(p.Path, firstNonEmpty(p.Delimiter, delimiter)), nil
	case map[string]any:
		path, ok := p["path"].(string)
		if !ok {
			break
		}
		own, _ := p["delimiter"].(string)
		return NewPath(path, firstNonEmpty(own, delimiter)), nil
	}
	return Path{}, fmt.Errorf("%w: got %T", ErrInvalidPath, v)
}

// ParsePaths normalizes every element of vs with ParsePath.
func ParsePaths(vs []any, delimiter string) ([]Path, error) {
	paths := make([]Path, 0, len(vs))
	for i, v := range vs {
		p, err := ParsePath(v, delimiter)
		if err != nil {
			return nil, fmt.Errorf("path %d: %w", i, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
