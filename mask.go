package envssm

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strings"
)

// mask returns a masked version of the secret string.
// It keeps the first 3 characters visible and replaces the rest with asterisks.
// For strings with 3 or fewer characters, all characters are replaced with asterisks.
//
// Examples:
//   - mask("") returns ""
//   - mask("abc") returns "***"
//   - mask("secret123") returns "sec******"
func mask(secret string) string {
	const keep = 3
	n := len(secret)
	if n <= keep {
		return strings.Repeat("*", n)
	}
	return secret[:keep] + strings.Repeat("*", n-keep)
}

// maskURLPassword replaces the password of a URL value with "***".
// Strings are only rewritten when they parse as a URL carrying a password.
func maskURLPassword(val any) any {
	switch u := val.(type) {
	case url.URL:
		return redactURL(&u)
	case *url.URL:
		if u == nil {
			return nil
		}
		return redactURL(u)
	case string:
		if !strings.Contains(u, "@") {
			return u
		}
		parsed, err := url.Parse(u)
		if err != nil || parsed.User == nil {
			return u
		}
		if _, ok := parsed.User.Password(); !ok {
			return u
		}
		return redactURL(parsed)
	default:
		return val
	}
}

func redactURL(u *url.URL) string {
	if u.User == nil {
		return u.String()
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return u.String()
	}
	masked := *u
	masked.User = url.UserPassword(u.User.Username(), "***")
	return masked.String()
}

// PrettyString returns a JSON rendering of a bound configuration struct with
// secret fields masked and URL passwords hidden.
//
//	cfg := &Config{Port: 8080, Password: "secret123"}
//	fmt.Println(envssm.PrettyString(cfg))
//	// {"PASSWORD": "sec******", "PORT": 8080}
func PrettyString(cfg any) string {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Sprintf("%T is not a struct", cfg)
	}

	b, err := json.MarshalIndent(buildSafeMap(rv), "", "  ")
	if err != nil {
		return fmt.Sprintf("error pretty-printing config: %v", err)
	}
	return string(b)
}

// buildSafeMap converts a struct into a map keyed like Bind reads it, with
// secret fields masked and nested structs preserved.
func buildSafeMap(val reflect.Value) map[string]any {
	typ := val.Type()
	out := make(map[string]any, typ.NumField())

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		fv := val.Field(i)

		if !fv.CanInterface() {
			continue
		}
		key := fieldKey(sf)

		switch {
		case sf.Tag.Get("secret") != "":
			out[key] = maskSecretField(fv)
		case fv.Kind() == reflect.Slice && !isCustomParsedType(fv.Type()):
			items := make([]any, fv.Len())
			for j := range fv.Len() {
				items[j] = maskURLPassword(fv.Index(j).Interface())
			}
			out[key] = items
		case isNestedStruct(fv.Type()):
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					out[key] = nil
					continue
				}
				fv = fv.Elem()
			}
			out[key] = buildSafeMap(fv)
		default:
			out[key] = maskURLPassword(fv.Interface())
		}
	}
	return out
}

func maskSecretField(fv reflect.Value) any {
	if fv.Kind() == reflect.Slice && !isCustomParsedType(fv.Type()) {
		items := make([]any, fv.Len())
		for i := range fv.Len() {
			if s, ok := fv.Index(i).Interface().(string); ok {
				items[i] = mask(s)
			} else {
				items[i] = "***"
			}
		}
		return items
	}
	if s, ok := fv.Interface().(string); ok {
		return mask(s)
	}
	return "***"
}

// Masked returns a copy of the merged tree in which the values under
// secretKeys are masked and passwords embedded in URLs are hidden.
// Secret keys are dotted paths; a key naming a subtree masks every leaf in it.
func (c *Container) Masked(secretKeys ...string) map[string]any {
	return maskTree(c.source, "", secretKeys, false)
}

// PrettyString renders Masked as indented JSON.
func (c *Container) PrettyString(secretKeys ...string) string {
	b, err := json.MarshalIndent(c.Masked(secretKeys...), "", "  ")
	if err != nil {
		return fmt.Sprintf("error pretty-printing config: %v", err)
	}
	return string(b)
}

func maskTree(tree map[string]any, prefix string, secretKeys []string, secret bool) map[string]any {
	out := make(map[string]any, len(tree))
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		isSecret := secret || slices.Contains(secretKeys, key)
		out[k] = maskValue(v, key, secretKeys, isSecret)
	}
	return out
}

func maskValue(v any, key string, secretKeys []string, secret bool) any {
	switch t := v.(type) {
	case map[string]any:
		return maskTree(t, key, secretKeys, secret)
	case []any:
		items := make([]any, len(t))
		for i, e := range t {
			items[i] = maskValue(e, key, secretKeys, secret)
		}
		return items
	case nil:
		return nil
	}
	if secret {
		if s, ok := v.(string); ok {
			return mask(s)
		}
		return "***"
	}
	return maskURLPassword(v)
}
