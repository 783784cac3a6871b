package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldViolation is one structural constraint failure, addressable by
// field path so a caller can report every violation at once.
type FieldViolation struct {
	Path    []string `json:"loc"`
	Message string   `json:"msg"`
	Rule    string   `json:"type"`
}

// String renders the violation as "path.to.field: message".
func (v FieldViolation) String() string {
	return strings.Join(v.Path, ".") + ": " + v.Message
}

var (
	packIDPattern     = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	promptIDPattern   = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
	identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	langCodePattern   = regexp.MustCompile(`^[a-z]{2}$`)
	mediaTagPattern   = regexp.MustCompile(`^[a-z0-9_]+$`)
	semverPattern     = regexp.MustCompile(`^v?(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)
)

var packValidate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()

	// Report JSON field names in violation paths, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	patterns := map[string]*regexp.Regexp{
		"packid":       packIDPattern,
		"promptid":     promptIDPattern,
		"identifier":   identifierPattern,
		"langcode":     langCodePattern,
		"mediatag":     mediaTagPattern,
		"semver_loose": semverPattern,
	}
	for tag, re := range patterns {
		pattern := re
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return pattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("schema: register validation %q: %v", tag, err))
		}
	}
	return v
}

// Validate checks every field-level constraint on the pack and returns
// all violations found. An empty result means the pack is structurally
// valid.
func (p *Pack) Validate() []FieldViolation {
	err := packValidate.Struct(p)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldViolation{{
			Path:    []string{},
			Message: err.Error(),
			Rule:    "invalid",
		}}
	}

	out := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldViolation{
			Path:    splitNamespace(fe.Namespace()),
			Message: violationMessage(fe),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// splitNamespace turns a validator namespace such as
// "Pack.prompts[support].variables[0].name" into path segments,
// dropping the leading root struct name.
func splitNamespace(ns string) []string {
	var segs []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			segs = append(segs, cur.String())
			cur.Reset()
		}
	}

	for _, r := range ns {
		switch r {
		case '.', '[', ']':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	if len(segs) > 0 {
		segs = segs[1:]
	}
	return segs
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		default:
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.Join(strings.Fields(fe.Param()), ", "))
	case "eq":
		return fmt.Sprintf("must equal %q", fe.Param())
	case "packid":
		return `must match pattern ^[a-z][a-z0-9-]*$`
	case "promptid":
		return `must match pattern ^[a-z][a-z0-9_-]*$`
	case "identifier":
		return `must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$`
	case "langcode":
		return `must be a two-letter language code`
	case "mediatag":
		return `must match pattern ^[a-z0-9_]+$`
	case "semver_loose":
		return "must be a semantic version (optionally prefixed with v)"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
