package envssm

import "errors"

// Resolution errors returned by Load.
var (
	// ErrInvalidPath indicates a path expression that is neither a string nor
	// a {path, delimiter} record.
	ErrInvalidPath = errors.New("input must be a path string or {path, delimiter} record")
	// ErrInvalidOverride indicates a malformed ENV_SSM_* environment override.
	ErrInvalidOverride = errors.New("invalid environment override")
	// ErrNoPaths indicates a store client was supplied without any path to query.
	ErrNoPaths = errors.New("no parameter store paths configured")
	// ErrNoStore indicates paths were supplied explicitly while the store is disabled.
	ErrNoStore = errors.New("paths given but no parameter store client configured")
)

// Coercion errors returned by the Coercion As methods.
var (
	ErrMissingRequired = errors.New("missing required environment variable")
	ErrInvalidBool     = errors.New("invalid boolean value")
	ErrInvalidNumber   = errors.New("invalid number value")
	ErrInvalidPort     = errors.New("invalid port number")
	ErrInvalidJSON     = errors.New("invalid JSON object")
	ErrInvalidEnum     = errors.New("invalid value")
	ErrInvalidURL      = errors.New("invalid URL string")
	// ErrInvalidValue wraps failures of the extended parsers (durations, UUIDs, keys, ...).
	ErrInvalidValue = errors.New("cannot parse value")
)
