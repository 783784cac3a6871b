// Package template renders prompt templates: {{variable}} substitution
// plus {{fragment:name}} resolution against an immutable fragment table.
// An Engine carries no mutable state and is safe for concurrent reuse.
package template

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// tokenPattern matches {{identifier}} and {{identifier:identifier}}.
var tokenPattern = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*(?::[a-zA-Z_][a-zA-Z0-9_]*)?)\}\}`)

const fragmentPrefix = "fragment:"

// maxFragmentDepth bounds nested fragment resolution so a malformed pack
// cannot exhaust the call stack even without a direct cycle.
const maxFragmentDepth = 100

// Error reports a failed render: an undefined reference in strict mode,
// or a fragment cycle.
type Error struct {
	msg string
}

// Error returns the render failure message.
func (e *Error) Error() string { return "template: " + e.msg }

func renderError(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Engine resolves templates against a fragment table.
type Engine struct {
	syntax    string
	fragments map[string]string
}

// New creates an engine for the given syntax descriptor and fragment
// table. The table is copied; later mutation of the input map does not
// affect the engine.
func New(syntax string, fragments map[string]string) *Engine {
	table := make(map[string]string, len(fragments))
	for name, body := range fragments {
		table[name] = body
	}
	return &Engine{syntax: syntax, fragments: table}
}

// Syntax returns the engine's syntax descriptor.
func (e *Engine) Syntax() string { return e.syntax }

// Render substitutes variables and resolves fragment references in a
// single left-to-right pass. In strict mode an undefined variable or
// fragment fails the render; otherwise the token is left verbatim.
func (e *Engine) Render(tmpl string, variables map[string]any, strict bool) (string, error) {
	return e.render(tmpl, variables, strict, nil)
}

// render does one substitution pass, recursing into fragment bodies.
// active is the stack of fragment names currently being resolved; it
// detects cycles and bounds depth.
func (e *Engine) render(tmpl string, variables map[string]any, strict bool, active []string) (string, error) {
	matches := tokenPattern.FindAllStringSubmatchIndex(tmpl, -1)
	if len(matches) == 0 {
		return tmpl, nil
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		out.WriteString(tmpl[last:m[0]])
		token := tmpl[m[0]:m[1]]
		key := tmpl[m[2]:m[3]]
		last = m[1]

		if name, isFragment := strings.CutPrefix(key, fragmentPrefix); isFragment {
			resolved, err := e.resolveFragment(name, variables, strict, active)
			if err != nil {
				return "", err
			}
			if resolved == nil {
				out.WriteString(token)
				continue
			}
			out.WriteString(*resolved)
			continue
		}

		value, ok := variables[key]
		if !ok {
			if strict {
				return "", renderError("Undefined variable: %s", key)
			}
			out.WriteString(token)
			continue
		}
		out.WriteString(formatValue(value))
	}
	out.WriteString(tmpl[last:])
	return out.String(), nil
}

// resolveFragment renders a fragment body against the same variables and
// strictness. A nil result with nil error means the fragment is
// undefined in non-strict mode and the caller keeps the token verbatim.
func (e *Engine) resolveFragment(name string, variables map[string]any, strict bool, active []string) (*string, error) {
	body, ok := e.fragments[name]
	if !ok {
		if strict {
			return nil, renderError("Undefined fragment: %s", name)
		}
		return nil, nil
	}

	for _, inProgress := range active {
		if inProgress == name {
			return nil, renderError("fragment cycle detected: %s", strings.Join(append(active, name), " -> "))
		}
	}
	if len(active) >= maxFragmentDepth {
		return nil, renderError("fragment depth exceeds %d: %s", maxFragmentDepth, name)
	}

	resolved, err := e.render(body, variables, strict, append(active, name))
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

// ExtractVariables returns the plain variable names referenced by a
// template, deduplicated in first-appearance order. Fragment references
// are excluded and fragment bodies are not descended into.
func (e *Engine) ExtractVariables(tmpl string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range tokenPattern.FindAllStringSubmatch(tmpl, -1) {
		key := m[1]
		if strings.Contains(key, ":") {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, key)
	}
	return names
}

// ExtractFragments returns the fragment names referenced by a template,
// deduplicated in first-appearance order, without descending into
// fragment bodies.
func (e *Engine) ExtractFragments(tmpl string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range tokenPattern.FindAllStringSubmatch(tmpl, -1) {
		name, isFragment := strings.CutPrefix(m[1], fragmentPrefix)
		if !isFragment {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// MissingFragments returns the referenced fragment names absent from the
// engine's table, in first-appearance order.
func (e *Engine) MissingFragments(tmpl string) []string {
	var missing []string
	for _, name := range e.ExtractFragments(tmpl) {
		if _, ok := e.fragments[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// formatValue turns a substituted value into template text: nil becomes
// empty, booleans render lowercase, composites render as JSON, and other
// scalars take their natural string form.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(val)
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case json.Number:
		return val.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		if s, err := jsonText(v); err == nil {
			return s
		}
	}
	return fmt.Sprintf("%v", v)
}

// jsonText serializes a composite value with ", " and ": " separators.
// Map keys are sorted: Go maps carry no insertion order, so sorting is
// the only deterministic choice.
func jsonText(v any) (string, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			s, err := jsonText(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			b, err := json.Marshal(v)
			return string(b), err
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			s, err := jsonText(rv.MapIndex(k).Interface())
			if err != nil {
				return "", err
			}
			parts = append(parts, strconv.Quote(k.String())+": "+s)
		}
		return "{" + strings.Join(parts, ", ") + "}", nil

	default:
		b, err := json.Marshal(v)
		return string(b), err
	}
}
