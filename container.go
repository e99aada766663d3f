package envssm

import (
	"maps"
	"slices"
	"strings"
)

// Container is the read-only result of Load.
type Container struct {
	source map[string]any
}

// NewContainer wraps a copy of source.
func NewContainer(source map[string]any) *Container {
	return &Container{source: cloneTree(source)}
}

// Get returns a Coercion for key. Top-level keys are matched first; when
// none matches, a dotted key walks into nested maps ("db.password").
// Exact matches win over matches that differ only in case, so "PASSWORD"
// finds a store parameter named "password" unless a "PASSWORD" key exists.
// An empty key wraps the whole merged map.
func (c *Container) Get(key string) Coercion {
	if key == "" {
		return NewCoercion(key, c.Source())
	}
	value, _ := c.lookup(key)
	return NewCoercion(key, cloneValue(value))
}

// Has reports whether key resolves to a value.
func (c *Container) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Keys returns the sorted top-level keys.
func (c *Container) Keys() []string {
	return slices.Sorted(maps.Keys(c.source))
}

// Source returns a deep copy of the merged map.
func (c *Container) Source() map[string]any {
	return cloneTree(c.source)
}

// Flatten returns every leaf keyed by its dotted path, rendered as a string.
func (c *Container) Flatten() map[string]string {
	flat := make(map[string]string)
	flattenInto(flat, "", c.source)
	return flat
}

func (c *Container) lookup(key string) (any, bool) {
	if value, ok := matchKey(c.source, key); ok {
		return value, true
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}
	var node any = c.source
	for _, segment := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		if node, ok = matchKey(m, segment); !ok {
			return nil, false
		}
	}
	return node, true
}

// matchKey prefers an exact match and falls back to the first key, in sorted
// order, that equals key ignoring case.
func matchKey(m map[string]any, key string) (any, bool) {
	if value, ok := m[key]; ok {
		return value, true
	}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if strings.EqualFold(k, key) {
			return m[k], true
		}
	}
	return nil, false
}

func flattenInto(flat map[string]string, prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			flattenInto(flat, key, child)
			continue
		}
		if v != nil {
			flat[key] = stringify(v)
		}
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneTree(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}
