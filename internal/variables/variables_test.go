package variables

import (
	"strings"
	"testing"

	"github.com/AltairaLabs/promptpack-go/internal/schema"
)

func strPtr(s string) *string     { return &s }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestValidateRequiredMissing(t *testing.T) {
	t.Parallel()

	decl := &schema.Variable{Name: "topic", Type: "string", Required: true}

	_, err := Validate(decl, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "Required variable is missing") {
		t.Fatalf("got %q", err.Error())
	}
}

func TestValidateRequiredWithDefault(t *testing.T) {
	t.Parallel()

	decl := &schema.Variable{Name: "tone", Type: "string", Required: true, Default: "neutral"}

	got, err := Validate(decl, nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got != "neutral" {
		t.Fatalf("got %v want %q", got, "neutral")
	}
}

func TestValidateOptionalMissing(t *testing.T) {
	t.Parallel()

	decl := &schema.Variable{Name: "extra", Type: "string"}

	got, err := Validate(decl, nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got != nil {
		t.Fatalf("got %v want nil", got)
	}
}

func TestCoerceString(t *testing.T) {
	t.Parallel()

	decl := &schema.Variable{Name: "v", Type: "string"}

	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"passthrough", "hello", "hello"},
		{"bool", true, "true"},
		{"float", 1.5, "1.5"},
		{"whole float", 3.0, "3"},
		{"int", 7, "7"},
		{"slice", []any{"a", 1.0}, `["a",1]`},
		{"map", map[string]any{"k": "v"}, `{"k":"v"}`},
	}
	for _, tc := range cases {
		got, err := Validate(decl, tc.value)
		if err != nil {
			t.Fatalf("%s: Validate: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v want %q", tc.name, got, tc.want)
		}
	}
}

func TestCoerceNumber(t *testing.T) {
	t.Parallel()

	decl := &schema.Variable{Name: "v", Type: "number"}

	if got, err := Validate(decl, 4.25); err != nil || got != 4.25 {
		t.Fatalf("float: got %v, %v", got, err)
	}
	if got, err := Validate(decl, 12); err != nil || got != 12 {
		t.Fatalf("int: got %v, %v", got, err)
	}
	if got, err := Validate(decl, "42"); err != nil || got != 42.0 {
		t.Fatalf("numeric string: got %v, %v", got, err)
	}
	if got, err := Validate(decl, " 2.5 "); err != nil || got != 2.5 {
		t.Fatalf("padded string: got %v, %v", got, err)
	}

	if _, err := Validate(decl, "not a number"); err == nil {
		t.Fatalf("text string: expected error")
	}
	if _, err := Validate(decl, true); err == nil {
		t.Fatalf("bool: expected error, booleans are not numbers")
	}
}

func TestCoerceBoolean(t *testing.T) {
	t.Parallel()

	decl := &schema.Variable{Name: "v", Type: "boolean"}

	trueIn := []any{true, "true", "True", "1", "yes"}
	for _, in := range trueIn {
		got, err := Validate(decl, in)
		if err != nil {
			t.Fatalf("%v: Validate: %v", in, err)
		}
		if got != true {
			t.Fatalf("%v: got %v want true", in, got)
		}
	}

	falseIn := []any{false, "false", "0", "no", "NO"}
	for _, in := range falseIn {
		got, err := Validate(decl, in)
		if err != nil {
			t.Fatalf("%v: Validate: %v", in, err)
		}
		if got != false {
			t.Fatalf("%v: got %v want false", in, got)
		}
	}

	if _, err := Validate(decl, 1); err == nil {
		t.Fatalf("number: expected error")
	}
	if _, err := Validate(decl, "maybe"); err == nil {
		t.Fatalf("unrecognized string: expected error")
	}
}

func TestCoerceObjectAndArray(t *testing.T) {
	t.Parallel()

	obj := &schema.Variable{Name: "o", Type: "object"}
	if _, err := Validate(obj, map[string]any{"k": 1}); err != nil {
		t.Fatalf("object: %v", err)
	}
	if _, err := Validate(obj, "not an object"); err == nil {
		t.Fatalf("object from string: expected error")
	}

	arr := &schema.Variable{Name: "a", Type: "array"}
	if _, err := Validate(arr, []any{1, 2}); err != nil {
		t.Fatalf("array: %v", err)
	}
	if _, err := Validate(arr, map[string]any{}); err == nil {
		t.Fatalf("array from map: expected error")
	}
}

func TestPatternRule(t *testing.T) {
	t.Parallel()

	decl := &schema.Variable{
		Name: "code", Type: "string",
		Validation: &schema.VariableValidation{Pattern: strPtr(`[A-Z]{3}`)},
	}

	if _, err := Validate(decl, "ABC-rest"); err != nil {
		t.Fatalf("prefix match: %v", err)
	}
	if _, err := Validate(decl, "abc"); err == nil {
		t.Fatalf("mismatch: expected error")
	}

	bad := &schema.Variable{
		Name: "code", Type: "string",
		Validation: &schema.VariableValidation{Pattern: strPtr(`([`)},
	}
	if _, err := Validate(bad, "x"); err == nil || !strings.Contains(err.Error(), "Invalid pattern") {
		t.Fatalf("bad pattern: got %v", err)
	}
}

func TestLengthRules(t *testing.T) {
	t.Parallel()

	decl := &schema.Variable{
		Name: "s", Type: "string",
		Validation: &schema.VariableValidation{MinLength: intPtr(2), MaxLength: intPtr(4)},
	}

	if _, err := Validate(decl, "ok"); err != nil {
		t.Fatalf("in range: %v", err)
	}
	if _, err := Validate(decl, "x"); err == nil || !strings.Contains(err.Error(), "String too short (min: 2)") {
		t.Fatalf("short: got %v", err)
	}
	if _, err := Validate(decl, "too long"); err == nil || !strings.Contains(err.Error(), "String too long (max: 4)") {
		t.Fatalf("long: got %v", err)
	}

	// Length counts runes, not bytes.
	if _, err := Validate(decl, "héllo"); err == nil || !strings.Contains(err.Error(), "too long") {
		t.Fatalf("runes: got %v", err)
	}
	if _, err := Validate(decl, "héé"); err != nil {
		t.Fatalf("runes in range: %v", err)
	}
}

func TestNumericRangeRules(t *testing.T) {
	t.Parallel()

	decl := &schema.Variable{
		Name: "n", Type: "number",
		Validation: &schema.VariableValidation{Minimum: floatPtr(0), Maximum: floatPtr(10)},
	}

	if _, err := Validate(decl, 5); err != nil {
		t.Fatalf("in range: %v", err)
	}
	if _, err := Validate(decl, -1); err == nil || !strings.Contains(err.Error(), "Value below minimum") {
		t.Fatalf("below: got %v", err)
	}
	if _, err := Validate(decl, 11.5); err == nil || !strings.Contains(err.Error(), "Value above maximum") {
		t.Fatalf("above: got %v", err)
	}
}

func TestEnumRule(t *testing.T) {
	t.Parallel()

	decl := &schema.Variable{
		Name: "lvl", Type: "string",
		Validation: &schema.VariableValidation{Enum: []any{"low", "high"}},
	}
	if _, err := Validate(decl, "low"); err != nil {
		t.Fatalf("member: %v", err)
	}
	if _, err := Validate(decl, "medium"); err == nil || !strings.Contains(err.Error(), "Value not in allowed values") {
		t.Fatalf("non-member: got %v", err)
	}

	// Numeric enum members compare by value across Go types.
	num := &schema.Variable{
		Name: "n", Type: "number",
		Validation: &schema.VariableValidation{Enum: []any{1.0, 2.0}},
	}
	if _, err := Validate(num, 2); err != nil {
		t.Fatalf("int vs float member: %v", err)
	}
	if _, err := Validate(num, 3); err == nil {
		t.Fatalf("numeric non-member: expected error")
	}
}

func TestValidateAll(t *testing.T) {
	t.Parallel()

	decls := []schema.Variable{
		{Name: "topic", Type: "string", Required: true},
		{Name: "tone", Type: "string", Default: "neutral"},
	}

	resolved, err := ValidateAll(decls, map[string]any{"topic": "go"}, true)
	if err != nil {
		t.Fatalf("ValidateAll: %v", err)
	}
	if resolved["topic"] != "go" {
		t.Fatalf("topic: got %v", resolved["topic"])
	}
	if resolved["tone"] != "neutral" {
		t.Fatalf("tone default: got %v", resolved["tone"])
	}
}

func TestValidateAllUnknownKey(t *testing.T) {
	t.Parallel()

	decls := []schema.Variable{{Name: "topic", Type: "string"}}
	values := map[string]any{"topic": "go", "stray": 1}

	_, err := ValidateAll(decls, values, true)
	if err == nil {
		t.Fatalf("strict: expected error")
	}
	if !strings.Contains(err.Error(), "stray") || !strings.Contains(err.Error(), "Unknown variable") {
		t.Fatalf("strict: got %q", err.Error())
	}

	resolved, err := ValidateAll(decls, values, false)
	if err != nil {
		t.Fatalf("non-strict: %v", err)
	}
	if _, kept := resolved["stray"]; kept {
		t.Fatalf("non-strict: stray key survived")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Name: "topic", Reason: "Required variable is missing"}
	want := `variables: "topic": Required variable is missing`
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
}
