package envssm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/byu-oit/env-ssm/internal/logger"
	"github.com/byu-oit/env-ssm/store"
)

// DefaultDotenv is the dotenv file read when Options.Dotenv is left at its zero value.
const DefaultDotenv = ".env"

// Options configures Load. Every field is optional; zero values defer to the
// ENV_SSM_* environment overrides and then to the documented defaults.
type Options struct {
	// Paths lists the store locations to query, lowest precedence first.
	Paths []PathSpec
	// PathDelimiter applies to paths that do not carry their own delimiter.
	PathDelimiter string
	// Store is the parameter store. Nil disables remote fetching.
	Store store.Client
	// ProcessEnv includes Environ as the highest-precedence source. Defaults to true.
	ProcessEnv *bool
	// Dotenv selects the dotenv file. Defaults to ".env" in WorkDir.
	Dotenv FileSource
	// Tfvar selects the tfvars file. Disabled by default.
	Tfvar FileSource
	// Environ replaces the process environment snapshot.
	Environ map[string]string
	// WorkDir anchors relative file paths. Defaults to the working directory.
	WorkDir string
	// Logger receives debug output. Defaults to a console logger enabled by DEBUG=env-ssm.
	Logger *zerolog.Logger
}

// FileSource selects an optional local file. The zero value defers to the
// environment override and then to the default for that source.
type FileSource struct {
	path     string
	disabled bool
}

// NoFile disables a file source.
var NoFile = FileSource{disabled: true}

// File selects the file at path. Relative paths resolve against Options.WorkDir.
func File(path string) FileSource {
	return FileSource{path: path}
}

func (f FileSource) isZero() bool {
	return f.path == "" && !f.disabled
}

// Bool returns a pointer to v, for Options.ProcessEnv.
func Bool(v bool) *bool {
	return &v
}

// Paths builds PathSpecs from bare path strings.
func Paths(paths ...string) []PathSpec {
	specs := make([]PathSpec, 0, len(paths))
	for _, p := range paths {
		specs = append(specs, PathSpec{Path: p})
	}
	return specs
}

// resolvedOptions is the normalized form of Options for one Load call.
type resolvedOptions struct {
	paths      []Path
	store      store.Client
	processEnv bool
	dotenv     string
	tfvar      string
	environ    map[string]string
	log        zerolog.Logger
}

func resolveOptions(opts Options) (resolvedOptions, error) {
	environ := opts.Environ
	if environ == nil {
		environ = EnvironMap(os.Environ())
	}

	var log zerolog.Logger
	if opts.Logger != nil {
		log = *opts.Logger
	} else {
		log = logger.FromEnviron(environ, os.Stderr)
	}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return resolvedOptions{}, fmt.Errorf("resolving working directory: %w", err)
		}
		workDir = wd
	}

	ov, err := parseOverrides(environ)
	if err != nil {
		return resolvedOptions{}, err
	}

	delimiter := firstNonEmpty(opts.PathDelimiter, ov.PathDelimiter, DefaultDelimiter)

	var paths []Path
	explicit := len(opts.Paths) > 0
	if explicit {
		for i, spec := range opts.Paths {
			p, err := ParsePath(spec, delimiter)
			if err != nil {
				return resolvedOptions{}, fmt.Errorf("path %d: %w", i, err)
			}
			paths = append(paths, p)
		}
	} else {
		paths, err = parsePathsOverride(ov.Paths, delimiter)
		if err != nil {
			return resolvedOptions{}, err
		}
	}
	for i, p := range paths {
		if strings.TrimSpace(p.path) == "" {
			return resolvedOptions{}, fmt.Errorf("path %d: %w: empty path", i, ErrInvalidPath)
		}
	}

	switch {
	case opts.Store == nil && explicit:
		return resolvedOptions{}, ErrNoStore
	case opts.Store == nil && len(paths) > 0:
		log.Debug().Int("paths", len(paths)).Msg("parameter store disabled, ignoring " + PathsKey)
		paths = nil
	case opts.Store != nil && len(paths) == 0:
		return resolvedOptions{}, ErrNoPaths
	}

	processEnv := true
	switch {
	case opts.ProcessEnv != nil:
		processEnv = *opts.ProcessEnv
	case ov.ProcessEnv != nil:
		processEnv = *ov.ProcessEnv
	}

	dotenv := opts.Dotenv
	if dotenv.isZero() {
		dotenv = File(DefaultDotenv)
		if ov.Dotenv != nil {
			dotenv = ParseFileSource(*ov.Dotenv)
		}
	}

	tfvar := opts.Tfvar
	if tfvar.isZero() {
		tfvar = NoFile
		if ov.Tfvar != nil {
			tfvar = ParseFileSource(*ov.Tfvar)
		}
	}

	return resolvedOptions{
		paths:      paths,
		store:      opts.Store,
		processEnv: processEnv,
		dotenv:     absPath(workDir, dotenv),
		tfvar:      absPath(workDir, tfvar),
		environ:    environ,
		log:        log,
	}, nil
}

// ParseFileSource interprets a textual file setting such as ENV_SSM_DOTENV.
// An empty value or "false" disables the file; anything else names it.
func ParseFileSource(v string) FileSource {
	if v == "" || strings.EqualFold(v, "false") {
		return NoFile
	}
	return File(v)
}

func absPath(workDir string, f FileSource) string {
	if f.disabled || f.path == "" {
		return ""
	}
	if filepath.IsAbs(f.path) {
		return f.path
	}
	return filepath.Join(workDir, f.path)
}

// EnvironMap converts KEY=VALUE pairs, as returned by os.Environ, into a map
// suitable for Options.Environ.
func EnvironMap(kv []string) map[string]string {
	m := make(map[string]string, len(kv))
	for _, e := range kv {
		if k, v, ok := strings.Cut(e, "="); ok {
			m[k] = v
		}
	}
	return m
}

// Load resolves every configured source and merges them into a Container.
// Precedence from lowest to highest is store, dotenv, tfvars, process
// environment; disabled sources are skipped.
//
// Store failures and missing files are logged and treated as empty. Other
// file errors, malformed options and a cancelled ctx fail the whole call.
//
//	cfg, err := envssm.Load(ctx, envssm.Options{
//	    Store: client,
//	    Paths: envssm.Paths("/app/stg"),
//	})
//	if err != nil {
//	    return err
//	}
//	port, err := cfg.Get("PORT").Default("8080").AsPortNumber()
func Load(ctx context.Context, opts Options) (*Container, error) {
	ro, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	var dotenv, tfvar map[string]any
	if ro.dotenv != "" {
		if dotenv, err = loadDotenv(ro.dotenv, ro.log); err != nil {
			return nil, err
		}
	}
	if ro.tfvar != "" {
		if tfvar, err = loadTfvars(ro.tfvar, ro.log); err != nil {
			return nil, err
		}
	}

	var sources []map[string]any
	if ro.store != nil {
		remote, err := NewResolver(ro.store, ro.log).Resolve(ctx, ro.paths)
		if err != nil {
			return nil, err
		}
		sources = append(sources, remote)
	}
	if dotenv != nil {
		sources = append(sources, dotenv)
	}
	if tfvar != nil {
		sources = append(sources, tfvar)
	}
	if ro.processEnv {
		sources = append(sources, loadProcessEnv(ro.environ, ro.log))
	}

	merged, err := merge(sources...)
	if err != nil {
		return nil, err
	}
	return &Container{source: merged}, nil
}
