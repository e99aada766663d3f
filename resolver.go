package envssm

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/byu-oit/env-ssm/internal/logger"
	"github.com/byu-oit/env-ssm/store"
)

// Resolver fetches parameters from a store and flattens them into a tree.
//
// Store failures never escape a Resolver: a path that cannot be listed is
// logged at debug level and contributes nothing, so parameters are optional
// by default.
type Resolver struct {
	client store.Client
	log    zerolog.Logger
}

// NewResolver returns a Resolver reading from client and logging to log.
func NewResolver(client store.Client, log zerolog.Logger) *Resolver {
	return &Resolver{
		client: client,
		log:    logger.Component(log, "ssm-loader"),
	}
}

// taggedParameter remembers which Path produced a parameter so the relative
// key can be computed during flattening.
type taggedParameter struct {
	store.Parameter
	source Path
}

// Resolve queries every path concurrently and returns the flattened tree.
// Parameters are applied in path order, then page order, then batch order,
// so the result is deterministic. The only error is ctx.Err() when the
// context ended before all paths were resolved.
func (r *Resolver) Resolve(ctx context.Context, paths []Path) (map[string]any, error) {
	r.log.Debug().Int("paths", len(paths)).Msg("checking parameter store for parameters")

	results := make([][]taggedParameter, len(paths))
	var g errgroup.Group
	for i, p := range paths {
		// a zero Path carries no delimiter
		p = NewPath(p.path, p.delimiter)
		g.Go(func() error {
			if p.hierarchical() {
				results[i] = r.fetchByPath(ctx, p)
			} else {
				results[i] = r.fetchByPrefix(ctx, p)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree := make(map[string]any)
	for _, params := range results {
		for _, param := range params {
			r.assign(tree, param)
		}
	}
	return tree, nil
}

// fetchByPath pages through a recursive list-by-path request.
func (r *Resolver) fetchByPath(ctx context.Context, p Path) []taggedParameter {
	var (
		params []taggedParameter
		token  string
	)
	for {
		page, err := r.client.GetParametersByPath(ctx, p.path, token)
		if err != nil {
			r.log.Debug().Err(err).Str("path", p.path).Msg("cannot resolve path from parameter store")
			return nil
		}
		params = appendTagged(params, page.Parameters, p)
		if page.NextToken == "" {
			return params
		}
		token = page.NextToken
	}
}

// fetchByPrefix describes every name beginning with the path, then fetches
// the values in concurrent batches of store.MaxBatchSize.
func (r *Resolver) fetchByPrefix(ctx context.Context, p Path) []taggedParameter {
	names, err := r.describe(ctx, p)
	if err != nil {
		r.log.Debug().Err(err).Str("path", p.path).Msg("cannot resolve parameter metadata from parameter store")
		return nil
	}
	if len(names) == 0 {
		return nil
	}

	batches := slices.Collect(slices.Chunk(names, store.MaxBatchSize))
	results := make([][]taggedParameter, len(batches))
	var g errgroup.Group
	for i, batch := range batches {
		g.Go(func() error {
			out, err := r.client.GetParameters(ctx, batch)
			if err != nil {
				r.log.Debug().Err(err).Str("path", p.path).Msg("cannot resolve parameter values from parameter store")
				return nil
			}
			if len(out.InvalidParameters) > 0 {
				r.log.Debug().Strs("names", out.InvalidParameters).Msg("invalid parameter names")
			}
			results[i] = appendTagged(nil, out.Parameters, p)
			return nil
		})
	}
	_ = g.Wait()

	var params []taggedParameter
	for _, batch := range results {
		params = append(params, batch...)
	}
	return params
}

func (r *Resolver) describe(ctx context.Context, p Path) ([]string, error) {
	var (
		names []string
		token string
	)
	for {
		page, err := r.client.DescribeParameters(ctx, p.path, token)
		if err != nil {
			return nil, err
		}
		names = append(names, page.Names...)
		if page.NextToken == "" {
			return names, nil
		}
		token = page.NextToken
	}
}

func (r *Resolver) assign(tree map[string]any, param taggedParameter) {
	if param.Value == nil {
		r.log.Debug().Str("name", param.Name).Msg("skipping parameter without a value")
		return
	}
	key := relativeKey(param.Name, param.source)
	if deepSet(tree, key, *param.Value) {
		r.log.Warn().Str("name", param.Name).Str("key", key).Msg("parameter overwrites an existing key")
	}
}

func appendTagged(dst []taggedParameter, params []store.Parameter, source Path) []taggedParameter {
	for _, param := range params {
		if param.Name == "" {
			continue
		}
		dst = append(dst, taggedParameter{Parameter: param, source: source})
	}
	return dst
}

// relativeKey turns a parameter name into a dotted key relative to source.
// A name equal to the path keeps only its last segment; otherwise the path
// and one delimiter are stripped and the remaining segments joined with ".".
//
//	relativeKey("/app/stg/db/password", NewPath("/app/stg", "/")) == "db.password"
func relativeKey(name string, source Path) string {
	if name == source.path {
		segments := strings.Split(name, source.delimiter)
		return segments[len(segments)-1]
	}
	rest := strings.TrimPrefix(name, source.path)
	rest = strings.TrimPrefix(rest, source.delimiter)
	return strings.Join(strings.Split(rest, source.delimiter), ".")
}

// deepSet assigns value at the dotted key inside tree, creating intermediate
// maps as needed. Empty segments are ignored. The last write wins: a leaf
// standing where a map is needed is replaced, and so is a map standing where
// the leaf goes. deepSet reports whether anything was overwritten.
func deepSet(tree map[string]any, key string, value any) bool {
	segments := strings.FieldsFunc(key, func(r rune) bool { return r == '.' })
	if len(segments) == 0 {
		return false
	}

	overwrote := false
	node := tree
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			if _, exists := node[segment]; exists {
				overwrote = true
			}
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}

	last := segments[len(segments)-1]
	if _, exists := node[last]; exists {
		overwrote = true
	}
	node[last] = value
	return overwrote
}
