package envssm

import (
	"fmt"
	"reflect"
)

// Bind populates a configuration struct from a loaded Container.
//
// Fields are matched by struct tag:
//   - `env:"KEY"`: reads KEY from the container (dotted keys walk nested maps)
//   - `secret:"KEY"`: same as env, but the field is masked by PrettyString
//   - `default:"value"`: used when the key is absent and the field is zero
//   - `required:"true"`: fails with ErrMissingRequired when nothing is found
//
// Untagged fields fall back to the field name. A nested struct whose tag
// names a subtree (for example a store path "/app/db/host" flattened into
// "db.host") is bound from that subtree; untagged nested structs read from
// the same level as their parent. Slices are read from comma separated
// strings or from native lists.
//
//	type Config struct {
//	    Port     int    `env:"PORT" default:"8080"`
//	    Password string `secret:"PASSWORD" required:"true"`
//	    DB       struct {
//	        Host string `env:"host" default:"localhost"`
//	    } `env:"db"`
//	}
//
//	cfg, err := envssm.Bind(container, Config{})
func Bind[T any](c *Container, cfg T) (T, error) {
	rv := reflect.ValueOf(cfg)

	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
		err := bindStruct(c, rv.Elem())
		return cfg, err
	}

	if rv.Kind() == reflect.Struct {
		ptr := &cfg
		err := bindStruct(c, reflect.ValueOf(ptr).Elem())
		return cfg, err
	}

	var zero T
	return zero, fmt.Errorf("config must be struct or pointer to struct, got %T", cfg)
}

func bindStruct(c *Container, val reflect.Value) error {
	typ := val.Type()

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		fv := val.Field(i)

		if !fv.CanSet() {
			continue
		}

		tagged := sf.Tag.Get("env") != "" || sf.Tag.Get("secret") != ""
		key := fieldKey(sf)

		if isNestedStruct(fv.Type()) {
			scope := c
			if tagged {
				if sub, ok := c.Get(key).value.(map[string]any); ok {
					scope = &Container{source: sub}
				}
			}
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					fv.Set(reflect.New(fv.Type().Elem()))
				}
				fv = fv.Elem()
			}
			if err := bindStruct(scope, fv); err != nil {
				return err
			}
			continue
		}

		value := c.Get(key).value
		if value == nil {
			// keep values the caller set before binding
			if !fv.IsZero() {
				continue
			}
			if def := sf.Tag.Get("default"); def != "" {
				value = def
			}
		}
		if value == nil || value == "" {
			if sf.Tag.Get("required") == "true" {
				return fmt.Errorf("%w: %s", ErrMissingRequired, key)
			}
			continue
		}

		if err := setField(fv, value); err != nil {
			return fmt.Errorf("field %s: %w", sf.Name, err)
		}
	}

	return nil
}

func setField(fv reflect.Value, value any) error {
	if fv.Kind() == reflect.Slice && !isCustomParsedType(fv.Type()) {
		var parts []string
		if list, ok := value.([]any); ok {
			for _, e := range list {
				parts = append(parts, stringify(e))
			}
		} else {
			parts = splitList(stringify(value))
		}

		elemType := fv.Type().Elem()
		slice := reflect.MakeSlice(fv.Type(), 0, len(parts))
		for _, part := range parts {
			parsed, err := parseString(part, elemType)
			if err != nil {
				return err
			}
			slice = reflect.Append(slice, parsed)
		}
		fv.Set(slice)
		return nil
	}

	parsed, err := parseString(stringify(value), fv.Type())
	if err != nil {
		return err
	}
	fv.Set(parsed)
	return nil
}

// fieldKey returns the env or secret tag, falling back to the field name.
func fieldKey(sf reflect.StructField) string {
	if key := sf.Tag.Get("env"); key != "" {
		return key
	}
	if key := sf.Tag.Get("secret"); key != "" {
		return key
	}
	return sf.Name
}

func isNestedStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && !isCustomParsedType(t)
}
