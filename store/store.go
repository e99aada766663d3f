// Package store defines the contract between the resolver and a remote
// hierarchical parameter store.
//
// The resolver only ever issues three kinds of request: list by path prefix
// (recursive), describe by name prefix, and get by explicit names. An empty
// NextToken means the listing is complete.
package store

//go:generate mockgen -source=store.go -destination=../internal/mock/store_mock.go -package=mock

import "context"

// MaxBatchSize is the largest number of names a single GetParameters call accepts.
const MaxBatchSize = 10

// Parameter is one name/value pair returned by the store. Value is nil when
// the store reported the name without a value.
type Parameter struct {
	Name  string
	Value *string
}

// ParametersPage is one page of a list-by-path response.
type ParametersPage struct {
	Parameters []Parameter
	NextToken  string
}

// MetadataPage is one page of a describe-by-prefix response. Only names are carried.
type MetadataPage struct {
	Names     []string
	NextToken string
}

// ParametersBatch is the response to a get-by-names request.
type ParametersBatch struct {
	Parameters        []Parameter
	InvalidParameters []string
}

// Client is a parameter store.
type Client interface {
	// GetParametersByPath lists every parameter nested under path, decrypted.
	GetParametersByPath(ctx context.Context, path, nextToken string) (ParametersPage, error)
	// DescribeParameters lists the names of parameters that begin with prefix.
	DescribeParameters(ctx context.Context, prefix, nextToken string) (MetadataPage, error)
	// GetParameters fetches at most MaxBatchSize parameters by name, decrypted.
	GetParameters(ctx context.Context, names []string) (ParametersBatch, error)
}

// String returns a pointer to v. Handy when building Parameters by hand.
func String(v string) *string {
	return &v
}
