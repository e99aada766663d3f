package envssm

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/byu-oit/env-ssm/internal/logger"
	"github.com/byu-oit/env-ssm/tfvars"
)

// loadProcessEnv returns a copy of the environ snapshot.
func loadProcessEnv(environ map[string]string, log zerolog.Logger) map[string]any {
	l := logger.Component(log, "process-loader")
	l.Debug().
		Int("variables", len(environ)).
		Msg("adding process environment variables")
	return stringTree(maps.Clone(environ))
}

// loadDotenv reads a dotenv file. A missing file yields an empty map.
func loadDotenv(path string, log zerolog.Logger) (map[string]any, error) {
	l := logger.Component(log, "dotenv-loader")
	l.Debug().Str("file", path).Msg("checking for local .env file")

	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.Debug().Str("file", path).Msg("cannot resolve .env file path")
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("reading .env file %q: %w", path, err)
	}
	return stringTree(vars), nil
}

// loadTfvars reads a tfvars file. A missing file yields an empty map.
func loadTfvars(path string, log zerolog.Logger) (map[string]any, error) {
	l := logger.Component(log, "tfvars-loader")
	l.Debug().Str("file", path).Msg("checking for local .tfvars file")

	vars, err := tfvars.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.Debug().Str("file", path).Msg("cannot resolve .tfvars file path")
			return map[string]any{}, nil
		}
		return nil, err
	}
	return vars, nil
}
