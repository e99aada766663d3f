package envssm

import (
	"fmt"

	"dario.cat/mergo"
)

// merge deep-merges sources into a new tree. Later sources win: scalars
// overwrite, maps are unioned recursively. Callers pass only the sources
// that are enabled, lowest precedence first.
func merge(sources ...map[string]any) (map[string]any, error) {
	merged := make(map[string]any)
	for i, src := range sources {
		if err := mergo.Merge(&merged, cloneTree(src), mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging source %d: %w", i, err)
		}
	}
	return merged, nil
}

// stringTree lifts a flat string map into a tree.
func stringTree(m map[string]string) map[string]any {
	tree := make(map[string]any, len(m))
	for k, v := range m {
		tree[k] = v
	}
	return tree
}

// cloneTree copies every nested map and slice so merging never aliases a source.
func cloneTree(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}
