package envssm

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Coercion wraps one configuration value and converts it on demand.
//
// Required and Default return modified copies, so a Coercion can be shared
// and reused; the As methods never change the underlying container.
//
//	port, err := cfg.Get("PORT").Default("8080").AsPortNumber()
type Coercion struct {
	key          string
	value        any
	required     bool
	defaultValue any
}

// NewCoercion wraps value under key.
func NewCoercion(key string, value any) Coercion {
	return Coercion{key: key, value: value}
}

// Key returns the name the value was looked up by.
func (c Coercion) Key() string { return c.key }

// Required marks the value as required.
func (c Coercion) Required() Coercion {
	return c.RequiredIf(true)
}

// RequiredIf marks the value as required when condition is true.
func (c Coercion) RequiredIf(condition bool) Coercion {
	c.required = condition
	return c
}

// Default sets the value used when the key is absent.
func (c Coercion) Default(value any) Coercion {
	c.defaultValue = value
	return c
}

// IsSet reports whether the key was present, ignoring any default.
func (c Coercion) IsSet() bool {
	return c.value != nil
}

// Raw returns the value after applying the default and the required check.
func (c Coercion) Raw() (any, error) {
	return c.resolve()
}

func (c Coercion) resolve() (any, error) {
	value := c.value
	if value == nil {
		value = c.defaultValue
	}
	if value == nil && c.required {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, c.key)
	}
	return value, nil
}

// AsString returns the value as a string. An absent, optional value yields "".
// Maps and slices are rendered as JSON.
func (c Coercion) AsString() (string, error) {
	value, err := c.resolve()
	if err != nil || value == nil {
		return "", err
	}
	return stringify(value), nil
}

// AsBool accepts native booleans and the strings "true" and "false" in any case.
func (c Coercion) AsBool() (bool, error) {
	value, err := c.resolve()
	if err != nil {
		return false, err
	}
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w for %s: %v", ErrInvalidBool, c.key, value)
}

// AsNumber parses the value as a float64.
func (c Coercion) AsNumber() (float64, error) {
	value, err := c.resolve()
	if err != nil {
		return 0, err
	}
	num, ok := toFloat(value)
	if !ok || math.IsNaN(num) {
		return 0, fmt.Errorf("%w for %s: %v", ErrInvalidNumber, c.key, value)
	}
	return num, nil
}

// AsPortNumber parses the value as a TCP/UDP port in [1, 65535].
func (c Coercion) AsPortNumber() (int, error) {
	num, err := c.AsNumber()
	if err != nil {
		return 0, err
	}
	if num < 1 || num > 65535 || num != math.Trunc(num) {
		return 0, fmt.Errorf("%w for %s: %v", ErrInvalidPort, c.key, strconv.FormatFloat(num, 'f', -1, 64))
	}
	return int(num), nil
}

// AsJSONObject returns maps and slices as they are and decodes strings as JSON.
func (c Coercion) AsJSONObject() (any, error) {
	value, err := c.resolve()
	if err != nil {
		return nil, err
	}
	if s, ok := value.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, fmt.Errorf("%w for %s: %s", ErrInvalidJSON, c.key, s)
		}
		return decoded, nil
	}
	if value != nil {
		switch reflect.TypeOf(value).Kind() {
		case reflect.Map, reflect.Slice, reflect.Struct:
			return value, nil
		}
	}
	return nil, fmt.Errorf("%w for %s: %v", ErrInvalidJSON, c.key, value)
}

// AsJSON decodes the value into target, which must be a pointer.
func (c Coercion) AsJSON(target any) error {
	value, err := c.AsJSONObject()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w for %s: %w", ErrInvalidJSON, c.key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w for %s: %w", ErrInvalidJSON, c.key, err)
	}
	return nil
}

// AsEnum returns the value if it is one of allowed.
func (c Coercion) AsEnum(allowed ...string) (string, error) {
	value, err := c.AsString()
	if err != nil {
		return "", err
	}
	if !slices.Contains(allowed, value) {
		return "", fmt.Errorf("%w for %s. Expected one of %s, but got: %s",
			ErrInvalidEnum, c.key, strings.Join(allowed, ", "), value)
	}
	return value, nil
}

// AsURLString returns the value after checking it is an absolute URL.
func (c Coercion) AsURLString() (string, error) {
	if _, err := c.AsURLObject(); err != nil {
		return "", err
	}
	return c.AsString()
}

// AsURLObject parses the value as an absolute URL.
func (c Coercion) AsURLObject() (*url.URL, error) {
	value, err := c.AsString()
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %s: %w", ErrInvalidURL, c.key, value, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w for %s: %s: missing scheme", ErrInvalidURL, c.key, value)
	}
	return u, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return v.String()
	}
	switch reflect.TypeOf(value).Kind() {
	case reflect.Map, reflect.Slice:
		if data, err := json.Marshal(value); err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(value)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case string:
		num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return num, err == nil
	case json.Number:
		num, err := v.Float64()
		return num, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	}
	return 0, false
}
