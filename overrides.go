package envssm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Environment variables that override zero-valued Options fields.
const (
	PathsKey         = "ENV_SSM_PATHS"
	PathDelimiterKey = "ENV_SSM_PATH_DELIMITER"
	ProcessEnvKey    = "ENV_SSM_PROCESS_ENV"
	DotenvKey        = "ENV_SSM_DOTENV"
	TfvarKey         = "ENV_SSM_TFVAR"
)

// overrides mirrors the ENV_SSM_* variables. Pointer fields distinguish an
// unset variable from an empty one.
type overrides struct {
	Paths         string  `env:"ENV_SSM_PATHS"`
	PathDelimiter string  `env:"ENV_SSM_PATH_DELIMITER"`
	ProcessEnv    *bool   `env:"ENV_SSM_PROCESS_ENV"`
	Dotenv        *string `env:"ENV_SSM_DOTENV"`
	Tfvar         *string `env:"ENV_SSM_TFVAR"`
}

// parseOverrides reads the ENV_SSM_* variables from environ.
func parseOverrides(environ map[string]string) (overrides, error) {
	var o overrides
	if err := env.ParseWithOptions(&o, env.Options{Environment: environ}); err != nil {
		return overrides{}, fmt.Errorf("%w: %w", ErrInvalidOverride, err)
	}
	return o, nil
}

// parsePathsOverride decodes ENV_SSM_PATHS. A value starting with "[" is a
// JSON array of path strings and records, "{" a single JSON record, anything
// else a comma separated list of path strings.
//
//	ENV_SSM_PATHS=/app/stg,/shared
//	ENV_SSM_PATHS=[{"path":"app.stg","delimiter":"."},"/shared"]
func parsePathsOverride(raw, delimiter string) ([]Path, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return nil, nil
	case strings.HasPrefix(raw, "["):
		var list []any
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOverride, PathsKey, err)
		}
		paths, err := ParsePaths(list, delimiter)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOverride, PathsKey, err)
		}
		return paths, nil
	case strings.HasPrefix(raw, "{"):
		var record map[string]any
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOverride, PathsKey, err)
		}
		p, err := ParsePath(record, delimiter)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOverride, PathsKey, err)
		}
		return []Path{p}, nil
	}

	var paths []Path
	for _, part := range splitList(raw) {
		paths = append(paths, NewPath(part, delimiter))
	}
	return paths, nil
}
