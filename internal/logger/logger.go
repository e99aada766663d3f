// Package logger builds the zerolog loggers used by env-ssm.
//
// Library code never writes logs unless the caller hands in a logger or the
// DEBUG environment variable names the "env-ssm" namespace, mirroring the
// convention of debug-style namespaced logging:
//
//	DEBUG=env-ssm      enable
//	DEBUG=env-ssm/*    enable
//	DEBUG=*,-env-ssm   everything except env-ssm
//
// Every component logs with a "component" field so a single logger can be
// filtered per loader.
package logger

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// Namespace is the root namespace matched against DEBUG.
const Namespace = "env-ssm"

// DebugKey is the environment variable holding the namespace patterns.
const DebugKey = "DEBUG"

// New returns a JSON logger writing to w at the given level with a timestamp
// on every entry.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().
		Timestamp().
		Logger()
}

// NewConsole returns a human-readable logger for terminals.
func NewConsole(w io.Writer, level zerolog.Level) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}, level)
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// FromEnviron returns a debug-level console logger writing to w when the
// DEBUG value in environ enables the env-ssm namespace, and a Nop logger otherwise.
func FromEnviron(environ map[string]string, w io.Writer) zerolog.Logger {
	if !Enabled(environ[DebugKey], Namespace) {
		return Nop()
	}
	return NewConsole(w, zerolog.DebugLevel)
}

// Component returns a child of l tagged with the given component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", Namespace+"/"+name).Logger()
}

// Enabled reports whether namespace is switched on by the comma or space separated patterns in value. A leading "-"
// excludes a pattern; "*" matches any run of characters.
func Enabled(value, namespace string) bool {
	enabled := false
	for _, pattern := range strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' '
	}) {
		exclude := strings.HasPrefix(pattern, "-")
		pattern = strings.TrimPrefix(pattern, "-")
		if !matches(pattern, namespace) {
			continue
		}
		if exclude {
			return false
		}
		enabled = true
	}
	return enabled
}

// matches treats pattern as a glob over namespace. "ns/*" style patterns
// also match the bare namespace.
func matches(pattern, namespace string) bool {
	quoted := regexp.QuoteMeta(pattern)
	re, err := regexp.Compile("^" + strings.ReplaceAll(quoted, `\*`, ".*") + "$")
	if err != nil {
		return false
	}
	return re.MatchString(namespace) || re.MatchString(namespace+"/")
}
