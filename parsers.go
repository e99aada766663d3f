package envssm

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding"
	"encoding/pem"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/mail"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"k8s.io/apimachinery/pkg/api/resource"
)

// ParserFunc takes the raw string and returns the parsed value or an error.
// The returned value must have exactly the type the parser was registered for.
type ParserFunc func(raw string) (any, error)

// registry of custom parsers; a parser registered for T also serves *T and,
// when registered for *T, serves T by dereferencing.
var (
	parsersMu sync.RWMutex
	parsers   = make(map[reflect.Type]ParserFunc)
)

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// RegisterParser lets users plug in custom type parsers used by As and Bind.
// It is safe to call concurrently with As and Bind.
func RegisterParser(typ reflect.Type, fn ParserFunc) {
	parsersMu.Lock()
	defer parsersMu.Unlock()
	parsers[typ] = fn
}

func lookupParser(t reflect.Type) (ParserFunc, bool) {
	parsersMu.RLock()
	defer parsersMu.RUnlock()
	fn, ok := parsers[t]
	return fn, ok
}

// As converts the value to T using the registered parsers, then
// encoding.TextUnmarshaler, then the basic kinds. An absent, optional value
// yields the zero T. A value that already has type T is returned as is.
//
//	level, err := envssm.As[slog.Level](cfg.Get("LOG_LEVEL").Default("info"))
func As[T any](c Coercion) (T, error) {
	var zero T
	value, err := c.resolve()
	if err != nil || value == nil {
		return zero, err
	}
	if typed, ok := value.(T); ok {
		return typed, nil
	}
	rv, err := parseString(stringify(value), reflect.TypeFor[T]())
	if err != nil {
		return zero, fmt.Errorf("%w for %s: %w", ErrInvalidValue, c.key, err)
	}
	return rv.Interface().(T), nil
}

// AsInt parses the value as a base-10 int.
func (c Coercion) AsInt() (int, error) { return As[int](c) }

// AsDuration parses the value with time.ParseDuration.
func (c Coercion) AsDuration() (time.Duration, error) { return As[time.Duration](c) }

// AsTime parses RFC 3339 timestamps or Unix seconds.
func (c Coercion) AsTime() (time.Time, error) { return As[time.Time](c) }

// AsUUID parses the value as a UUID.
func (c Coercion) AsUUID() (uuid.UUID, error) { return As[uuid.UUID](c) }

// AsDecimal parses the value as an exact decimal.
func (c Coercion) AsDecimal() (decimal.Decimal, error) { return As[decimal.Decimal](c) }

// AsQuantity parses Kubernetes resource units such as 250m or 1.5Gi.
func (c Coercion) AsQuantity() (resource.Quantity, error) { return As[resource.Quantity](c) }

// AsExpr compiles the value as an expr-lang expression.
func (c Coercion) AsExpr() (*vm.Program, error) { return As[*vm.Program](c) }

// AsStringSlice splits a comma separated value, trimming blanks. Native
// slices (from tfvars) are stringified element by element.
func (c Coercion) AsStringSlice() ([]string, error) {
	value, err := c.resolve()
	if err != nil || value == nil {
		return nil, err
	}
	if list, ok := value.([]any); ok {
		out := make([]string, 0, len(list))
		for _, e := range list {
			out = append(out, stringify(e))
		}
		return out, nil
	}
	return splitList(stringify(value)), nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseString converts raw into a value of type t.
func parseString(raw string, t reflect.Type) (reflect.Value, error) {
	if fn, ok := lookupParser(t); ok {
		v, err := fn(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	}

	if t.Kind() == reflect.Pointer {
		if fn, ok := lookupParser(t.Elem()); ok {
			v, err := fn(raw)
			if err != nil {
				return reflect.Value{}, err
			}
			ptr := reflect.New(t.Elem())
			ptr.Elem().Set(reflect.ValueOf(v))
			return ptr, nil
		}
	} else if fn, ok := lookupParser(reflect.PointerTo(t)); ok {
		v, err := fn(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v).Elem(), nil
	}

	if v, ok, err := parseText(raw, t); ok {
		return v, err
	}
	return parseScalar(raw, t)
}

// parseText handles any type whose pointer implements encoding.TextUnmarshaler.
func parseText(raw string, t reflect.Type) (reflect.Value, bool, error) {
	target := t
	if t.Kind() == reflect.Pointer {
		target = t.Elem()
	}
	if !reflect.PointerTo(target).Implements(textUnmarshalerType) {
		return reflect.Value{}, false, nil
	}
	ptr := reflect.New(target)
	if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
		return reflect.Value{}, true, fmt.Errorf("failed to unmarshal text: %w", err)
	}
	if t.Kind() == reflect.Pointer {
		return ptr, true, nil
	}
	return ptr.Elem(), true, nil
}

// parseScalar parses a string value into the basic kind of t.
func parseScalar(raw string, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetFloat(f)
	default:
		return reflect.Value{}, fmt.Errorf("unsupported type %s", t)
	}
	return v, nil
}

// isCustomParsedType reports whether t is parsed from a single string rather
// than walked as a nested struct.
func isCustomParsedType(t reflect.Type) bool {
	if _, ok := lookupParser(t); ok {
		return true
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if _, ok := lookupParser(t); ok {
		return true
	}
	if _, ok := lookupParser(reflect.PointerTo(t)); ok {
		return true
	}
	return reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func init() {
	RegisterParser(reflect.TypeFor[url.URL](), func(raw string) (any, error) {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
		}
		return *u, nil
	})

	RegisterParser(reflect.TypeFor[time.Duration](), func(raw string) (any, error) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		return d, nil
	})

	// RFC3339 first, Unix seconds as fallback
	RegisterParser(reflect.TypeFor[time.Time](), func(raw string) (any, error) {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return time.Unix(unix, 0), nil
		}
		return nil, fmt.Errorf("invalid time %q: must be RFC3339 format or Unix seconds", raw)
	})

	RegisterParser(reflect.TypeFor[slog.Level](), func(raw string) (any, error) {
		switch strings.ToLower(raw) {
		case "debug":
			return slog.LevelDebug, nil
		case "info":
			return slog.LevelInfo, nil
		case "warn", "warning":
			return slog.LevelWarn, nil
		case "error":
			return slog.LevelError, nil
		}
		if level, err := strconv.Atoi(raw); err == nil {
			return slog.Level(level), nil
		}
		return nil, fmt.Errorf("invalid slog level %q: must be debug|info|warn|error or integer", raw)
	})

	RegisterParser(reflect.TypeFor[*big.Int](), func(raw string) (any, error) {
		bi, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("invalid big.Int %q: must be base-10 integer", raw)
		}
		return bi, nil
	})

	RegisterParser(reflect.TypeFor[decimal.Decimal](), func(raw string) (any, error) {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", raw, err)
		}
		return d, nil
	})

	// net.IP is a []byte, so it needs an explicit parser
	RegisterParser(reflect.TypeFor[net.IP](), func(raw string) (any, error) {
		ip := net.ParseIP(raw)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address %q", raw)
		}
		return ip, nil
	})

	RegisterParser(reflect.TypeFor[*mail.Address](), func(raw string) (any, error) {
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid email address %q: %w", raw, err)
		}
		return addr, nil
	})

	RegisterParser(reflect.TypeFor[resource.Quantity](), func(raw string) (any, error) {
		q, err := resource.ParseQuantity(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid k8s quantity %q: %w", raw, err)
		}
		return q, nil
	})

	RegisterParser(reflect.TypeFor[uuid.UUID](), func(raw string) (any, error) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid UUID %q: %w", raw, err)
		}
		return id, nil
	})

	RegisterParser(reflect.TypeFor[*rsa.PrivateKey](), func(raw string) (any, error) {
		key, err := parsePrivateKey(raw, "RSA PRIVATE KEY", func(der []byte) (any, error) {
			return x509.ParsePKCS1PrivateKey(der)
		})
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("PKCS#8 key is not an RSA private key")
		}
		return rsaKey, nil
	})

	RegisterParser(reflect.TypeFor[*ecdsa.PrivateKey](), func(raw string) (any, error) {
		key, err := parsePrivateKey(raw, "EC PRIVATE KEY", func(der []byte) (any, error) {
			return x509.ParseECPrivateKey(der)
		})
		if err != nil {
			return nil, err
		}
		ecKey, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("PKCS#8 key is not an ECDSA private key")
		}
		return ecKey, nil
	})

	RegisterParser(reflect.TypeFor[*vm.Program](), func(raw string) (any, error) {
		program, err := expr.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to compile expression %q: %w", raw, err)
		}
		return program, nil
	})
}

// parsePrivateKey decodes a PEM block holding either the algorithm-specific
// blockType or a PKCS#8 "PRIVATE KEY".
func parsePrivateKey(raw, blockType string, parse func([]byte) (any, error)) (any, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, fmt.Errorf("invalid PEM format for private key")
	}
	switch block.Type {
	case blockType:
		key, err := parse(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", strings.ToLower(blockType), err)
		}
		return key, nil
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#8 private key: %w", err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("unsupported PEM block type %s", block.Type)
	}
}
