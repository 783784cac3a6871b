// Package variables coerces and constrains caller-supplied variable
// values against their declared schema, applying defaults for missing
// optional variables.
package variables

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/AltairaLabs/promptpack-go/internal/schema"
)

// ValidationError reports a single variable's type or constraint
// failure. It always names the offending variable.
type ValidationError struct {
	Name   string
	Reason string
}

// Error returns the formatted validation failure message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("variables: %q: %s", e.Name, e.Reason)
}

func failf(name, format string, args ...any) error {
	return &ValidationError{Name: name, Reason: fmt.Sprintf(format, args...)}
}

// Validate coerces a raw value against the variable's declared type and
// checks its constraint rules. A nil value resolves to the default; a
// required variable with no default fails. A default satisfies a
// required variable even when the value is absent.
func Validate(decl *schema.Variable, value any) (any, error) {
	if value == nil {
		if decl.Required && decl.Default == nil {
			return nil, failf(decl.Name, "Required variable is missing")
		}
		return decl.Default, nil
	}

	coerced, err := coerce(decl, value)
	if err != nil {
		return nil, err
	}

	if decl.Validation != nil {
		if err := checkRules(decl, coerced); err != nil {
			return nil, err
		}
	}
	return coerced, nil
}

// ValidateAll resolves every declared variable through Validate and
// returns the resolved mapping. In strict mode a supplied key that
// matches no declaration fails; otherwise such keys are dropped.
func ValidateAll(decls []schema.Variable, values map[string]any, strict bool) (map[string]any, error) {
	if strict {
		declared := make(map[string]struct{}, len(decls))
		for _, d := range decls {
			declared[d.Name] = struct{}{}
		}
		supplied := make([]string, 0, len(values))
		for name := range values {
			supplied = append(supplied, name)
		}
		sort.Strings(supplied)
		for _, name := range supplied {
			if _, ok := declared[name]; !ok {
				return nil, failf(name, "Unknown variable")
			}
		}
	}

	resolved := make(map[string]any, len(decls))
	for i := range decls {
		value, err := Validate(&decls[i], values[decls[i].Name])
		if err != nil {
			return nil, err
		}
		resolved[decls[i].Name] = value
	}
	return resolved, nil
}

func coerce(decl *schema.Variable, value any) (any, error) {
	switch decl.Type {
	case "string":
		return coerceString(decl.Name, value)
	case "number":
		return coerceNumber(decl.Name, value)
	case "boolean":
		return coerceBoolean(decl.Name, value)
	case "object":
		if reflect.ValueOf(value).Kind() != reflect.Map {
			return nil, failf(decl.Name, "Expected object, got %T", value)
		}
		return value, nil
	case "array":
		switch reflect.ValueOf(value).Kind() {
		case reflect.Slice, reflect.Array:
			return value, nil
		}
		return nil, failf(decl.Name, "Expected array, got %T", value)
	}
	return value, nil
}

func coerceString(name string, value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		b, err := json.Marshal(value)
		if err != nil {
			return nil, failf(name, "Expected string, got %T", value)
		}
		return string(b), nil
	}
	return fmt.Sprintf("%v", value), nil
}

func coerceNumber(name string, value any) (any, error) {
	// A boolean must never satisfy "number".
	if _, isBool := value.(bool); isBool {
		return nil, failf(name, "Expected number, got bool")
	}

	if n, ok := value.(json.Number); ok {
		f, err := n.Float64()
		if err != nil {
			return nil, failf(name, "Expected number, got %q", n.String())
		}
		return f, nil
	}
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, failf(name, "Expected number, got string")
		}
		return f, nil
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return value, nil
	}
	return nil, failf(name, "Expected number, got %T", value)
}

func coerceBoolean(name string, value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
	}
	return nil, failf(name, "Expected boolean, got %T", value)
}

func checkRules(decl *schema.Variable, value any) error {
	rules := decl.Validation

	if s, isString := value.(string); isString {
		if rules.Pattern != nil {
			// Anchored at the start, matching the original prefix-match
			// semantics.
			re, err := regexp.Compile(`\A(?:` + *rules.Pattern + `)`)
			if err != nil {
				return failf(decl.Name, "Invalid pattern: %v", err)
			}
			if !re.MatchString(s) {
				return failf(decl.Name, "Value does not match pattern: %s", *rules.Pattern)
			}
		}

		length := utf8.RuneCountInString(s)
		if rules.MinLength != nil && length < *rules.MinLength {
			return failf(decl.Name, "String too short (min: %d)", *rules.MinLength)
		}
		if rules.MaxLength != nil && length > *rules.MaxLength {
			return failf(decl.Name, "String too long (max: %d)", *rules.MaxLength)
		}
	}

	if n, isNumber := numericValue(value); isNumber {
		if rules.Minimum != nil && n < *rules.Minimum {
			return failf(decl.Name, "Value below minimum: %v", *rules.Minimum)
		}
		if rules.Maximum != nil && n > *rules.Maximum {
			return failf(decl.Name, "Value above maximum: %v", *rules.Maximum)
		}
	}

	if rules.Enum != nil && !enumContains(rules.Enum, value) {
		return failf(decl.Name, "Value not in allowed values: %v", rules.Enum)
	}
	return nil
}

// numericValue extracts a float64 from any numeric kind. Booleans are
// never numeric.
func numericValue(v any) (float64, bool) {
	if _, isBool := v.(bool); isBool {
		return 0, false
	}
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// enumContains checks allow-list membership. Numeric candidates compare
// by value so 2 matches 2.0 regardless of the decoded Go type.
func enumContains(allowed []any, value any) bool {
	vn, vIsNum := numericValue(value)
	for _, item := range allowed {
		if an, aIsNum := numericValue(item); aIsNum && vIsNum {
			if an == vn {
				return true
			}
			continue
		}
		if reflect.DeepEqual(item, value) {
			return true
		}
	}
	return false
}
