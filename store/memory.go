package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// DefaultPageSize is the page size of a Memory store when PageSize is zero.
const DefaultPageSize = 10

// Memory is an in-process Client backed by a map. It pages results in name
// order, which makes it useful for examples, tests and local development.
type Memory struct {
	// PageSize bounds the number of results per page.
	PageSize int

	mu     sync.RWMutex
	values map[string]string
}

var _ Client = (*Memory)(nil)

// NewMemory returns a Memory store holding values.
func NewMemory(values map[string]string) *Memory {
	return &Memory{values: maps.Clone(values)}
}

// Put stores value under name.
func (m *Memory) Put(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[name] = value
}

// GetParametersByPath returns parameters strictly nested under path.
func (m *Memory) GetParametersByPath(ctx context.Context, path, nextToken string) (ParametersPage, error) {
	if err := ctx.Err(); err != nil {
		return ParametersPage{}, err
	}
	prefix := strings.TrimSuffix(path, "/") + "/"
	names := m.names(func(name string) bool { return strings.HasPrefix(name, prefix) })

	window, next, err := m.page(names, nextToken)
	if err != nil {
		return ParametersPage{}, err
	}
	return ParametersPage{Parameters: m.lookup(window), NextToken: next}, nil
}

// DescribeParameters returns the names beginning with prefix.
func (m *Memory) DescribeParameters(ctx context.Context, prefix, nextToken string) (MetadataPage, error) {
	if err := ctx.Err(); err != nil {
		return MetadataPage{}, err
	}
	names := m.names(func(name string) bool { return strings.HasPrefix(name, prefix) })

	window, next, err := m.page(names, nextToken)
	if err != nil {
		return MetadataPage{}, err
	}
	return MetadataPage{Names: window, NextToken: next}, nil
}

// GetParameters returns the named parameters; unknown names are reported as invalid.
func (m *Memory) GetParameters(ctx context.Context, names []string) (ParametersBatch, error) {
	if err := ctx.Err(); err != nil {
		return ParametersBatch{}, err
	}
	if len(names) > MaxBatchSize {
		return ParametersBatch{}, fmt.Errorf("%d names exceeds batch size %d", len(names), MaxBatchSize)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var batch ParametersBatch
	for _, name := range names {
		value, ok := m.values[name]
		if !ok {
			batch.InvalidParameters = append(batch.InvalidParameters, name)
			continue
		}
		batch.Parameters = append(batch.Parameters, Parameter{Name: name, Value: String(value)})
	}
	return batch, nil
}

func (m *Memory) names(keep func(string) bool) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for name := range m.values {
		if keep(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func (m *Memory) lookup(names []string) []Parameter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	params := make([]Parameter, 0, len(names))
	for _, name := range names {
		if value, ok := m.values[name]; ok {
			params = append(params, Parameter{Name: name, Value: String(value)})
		}
	}
	return params
}

// page slices names from the offset encoded in token.
func (m *Memory) page(names []string, token string) ([]string, string, error) {
	size := m.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	start := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 || n > len(names) {
			return nil, "", fmt.Errorf("invalid next token %q", token)
		}
		start = n
	}
	end := min(start+size, len(names))
	next := ""
	if end < len(names) {
		next = strconv.Itoa(end)
	}
	return names[start:end], next, nil
}
