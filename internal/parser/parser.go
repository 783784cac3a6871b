// Package parser turns raw JSON text into a validated schema.Pack, or a
// structured error report. A pack is either fully valid or not
// constructed at all.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/AltairaLabs/promptpack-go/internal/schema"
)

// ParseError reports a malformed pack document. Violations is populated
// on schema-constraint failures, one record per violated field, so a
// caller can surface every problem at once.
type ParseError struct {
	msg        string
	cause      error
	Violations []schema.FieldViolation
}

// Error returns the human-readable parse failure message.
func (e *ParseError) Error() string { return e.msg }

// Unwrap returns the underlying cause, if any.
func (e *ParseError) Unwrap() error { return e.cause }

func syntaxError(err error) *ParseError {
	return &ParseError{msg: fmt.Sprintf("parser: Invalid JSON: %v", err), cause: err}
}

func validationError(violations []schema.FieldViolation) *ParseError {
	return &ParseError{
		msg:        fmt.Sprintf("parser: pack validation failed: %d error(s)", len(violations)),
		Violations: violations,
	}
}

// Parse decodes and validates a pack from raw JSON bytes.
func Parse(data []byte) (*schema.Pack, error) {
	var pack schema.Pack

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&pack); err != nil {
		if v, ok := decodeViolation(err); ok {
			return nil, validationError([]schema.FieldViolation{v})
		}
		return nil, syntaxError(err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = errors.New("extra data after JSON value")
		}
		return nil, syntaxError(err)
	}

	if violations := pack.Validate(); len(violations) > 0 {
		return nil, validationError(violations)
	}
	return &pack, nil
}

// ParseString decodes and validates a pack from a JSON string.
func ParseString(content string) (*schema.Pack, error) {
	return Parse([]byte(content))
}

// ParseFile decodes and validates a pack from a JSON file. A missing
// path reports fs.ErrNotExist; any other read failure is wrapped into a
// ParseError.
func ParseFile(path string) (*schema.Pack, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("parser: pack file not found: %q: %w", path, err)
		}
		return nil, &ParseError{msg: fmt.Sprintf("parser: read %q: %v", path, err), cause: err}
	}
	return Parse(b)
}

// decodeViolation maps decode errors that are really schema violations
// (unknown fields, wrong value types) onto a structured record. JSON
// syntax errors are not violations and fall through to the caller.
func decodeViolation(err error) (schema.FieldViolation, bool) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		var path []string
		if typeErr.Field != "" {
			path = strings.Split(typeErr.Field, ".")
		}
		return schema.FieldViolation{
			Path:    path,
			Message: fmt.Sprintf("expected %s, got JSON %s", typeErr.Type, typeErr.Value),
			Rule:    "type_error",
		}, true
	}

	// encoding/json exposes unknown-field rejection only as a formatted
	// error string.
	msg := err.Error()
	const marker = `json: unknown field `
	if strings.HasPrefix(msg, marker) {
		field := strings.Trim(strings.TrimPrefix(msg, marker), `"`)
		return schema.FieldViolation{
			Path:    []string{field},
			Message: fmt.Sprintf("unknown field %q", field),
			Rule:    "unknown_field",
		}, true
	}

	return schema.FieldViolation{}, false
}
