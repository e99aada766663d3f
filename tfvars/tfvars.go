// Package tfvars reads Terraform variable definition files (*.tfvars).
//
// Only top-level attribute assignments are supported. Expressions are
// evaluated without variables or functions, so a file may contain literals,
// lists, maps and objects but no references.
//
//	region   = "us-west-2"
//	replicas = 3
//	tags     = { team = "platform" }
package tfvars

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ReadFile parses the tfvars file at path. Errors from os.ReadFile are
// returned wrapped, so errors.Is(err, fs.ErrNotExist) works for a missing file.
func ReadFile(path string) (map[string]any, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tfvars file %q: %w", path, err)
	}
	return Parse(src, path)
}

// Parse decodes tfvars source. Strings, numbers and booleans become strings;
// numbers keep their exact decimal text. Lists and tuples become []any and
// maps and objects become map[string]any, with numbers inside them decoded
// as json.Number. Null attributes are omitted.
func Parse(src []byte, filename string) (map[string]any, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", filename, diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", filename, diags)
	}

	vars := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating %s in %s: %w", name, filename, diags)
		}
		if val.IsNull() {
			continue
		}
		native, err := toNative(val)
		if err != nil {
			return nil, fmt.Errorf("converting %s in %s: %w", name, filename, err)
		}
		vars[name] = native
	}
	return vars, nil
}

func toNative(val cty.Value) (any, error) {
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	switch val.Type() {
	case cty.String:
		return val.AsString(), nil
	case cty.Number:
		return val.AsBigFloat().Text('f', -1), nil
	case cty.Bool:
		if val.True() {
			return "true", nil
		}
		return "false", nil
	}

	data, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
