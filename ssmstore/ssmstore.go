// Package ssmstore adapts AWS Systems Manager Parameter Store to store.Client.
//
// Every read asks for decrypted values and list-by-path is always recursive.
//
//	client, err := ssmstore.NewDefault(ctx, config.WithRegion("us-west-2"))
//	if err != nil {
//	    return err
//	}
//	cfg, err := envssm.Load(ctx, envssm.Options{Store: client, Paths: envssm.Paths("/app/stg")})
package ssmstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/byu-oit/env-ssm/store"
)

// API is the subset of *ssm.Client used by Client.
type API interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
	DescribeParameters(ctx context.Context, params *ssm.DescribeParametersInput, optFns ...func(*ssm.Options)) (*ssm.DescribeParametersOutput, error)
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// Client implements store.Client on top of the SSM API.
type Client struct {
	api API
}

var _ store.Client = (*Client)(nil)

// New wraps an existing SSM API implementation.
func New(api API) *Client {
	return &Client{api: api}
}

// NewFromConfig builds a Client from an AWS config.
func NewFromConfig(cfg aws.Config, optFns ...func(*ssm.Options)) *Client {
	return New(ssm.NewFromConfig(cfg, optFns...))
}

// NewDefault loads the default AWS configuration chain (environment, shared
// config files, instance role) and builds a Client from it.
func NewDefault(ctx context.Context, optFns ...func(*config.LoadOptions) error) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewFromConfig(cfg), nil
}

// GetParametersByPath implements store.Client.
func (c *Client) GetParametersByPath(ctx context.Context, path, nextToken string) (store.ParametersPage, error) {
	out, err := c.api.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
		NextToken:      token(nextToken),
	})
	if err != nil {
		return store.ParametersPage{}, fmt.Errorf("get parameters by path %q: %w", path, err)
	}
	return store.ParametersPage{
		Parameters: convert(out.Parameters),
		NextToken:  aws.ToString(out.NextToken),
	}, nil
}

// DescribeParameters implements store.Client with a Name BeginsWith filter.
func (c *Client) DescribeParameters(ctx context.Context, prefix, nextToken string) (store.MetadataPage, error) {
	out, err := c.api.DescribeParameters(ctx, &ssm.DescribeParametersInput{
		ParameterFilters: []types.ParameterStringFilter{{
			Key:    aws.String("Name"),
			Option: aws.String("BeginsWith"),
			Values: []string{prefix},
		}},
		NextToken: token(nextToken),
	})
	if err != nil {
		return store.MetadataPage{}, fmt.Errorf("describe parameters %q: %w", prefix, err)
	}

	names := make([]string, 0, len(out.Parameters))
	for _, meta := range out.Parameters {
		if name := aws.ToString(meta.Name); name != "" {
			names = append(names, name)
		}
	}
	return store.MetadataPage{Names: names, NextToken: aws.ToString(out.NextToken)}, nil
}

// GetParameters implements store.Client.
func (c *Client) GetParameters(ctx context.Context, names []string) (store.ParametersBatch, error) {
	if len(names) > store.MaxBatchSize {
		return store.ParametersBatch{}, fmt.Errorf("get parameters: %d names exceeds batch size %d", len(names), store.MaxBatchSize)
	}
	out, err := c.api.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          names,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return store.ParametersBatch{}, fmt.Errorf("get parameters: %w", err)
	}
	return store.ParametersBatch{
		Parameters:        convert(out.Parameters),
		InvalidParameters: out.InvalidParameters,
	}, nil
}

func convert(params []types.Parameter) []store.Parameter {
	out := make([]store.Parameter, 0, len(params))
	for _, p := range params {
		out = append(out, store.Parameter{Name: aws.ToString(p.Name), Value: p.Value})
	}
	return out
}

func token(t string) *string {
	if t == "" {
		return nil
	}
	return aws.String(t)
}
