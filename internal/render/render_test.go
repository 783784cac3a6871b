package render

import (
	"strings"
	"testing"

	"github.com/AltairaLabs/promptpack-go/internal/schema"
)

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func testPack() *schema.Pack {
	return &schema.Pack{
		ID:      "demo",
		Name:    "Demo",
		Version: "1.0.0",
		TemplateEngine: schema.TemplateEngine{
			Version: "1.0",
			Syntax:  "{{variable}}",
		},
		Fragments: map[string]string{
			"tone": "Be {{style}}.",
		},
		Prompts: map[string]schema.Prompt{
			"summarize": {
				ID:             "summarize",
				Name:           "Summarize",
				Version:        "1.0.0",
				SystemTemplate: "{{fragment:tone}} Summarize {{topic}}.",
				Variables: []schema.Variable{
					{Name: "topic", Type: "string", Required: true},
					{Name: "style", Type: "string", Default: "brief"},
				},
				Parameters: &schema.Parameters{
					Temperature: floatPtr(0.7),
					MaxTokens:   intPtr(256),
				},
				Validators: []schema.Validator{
					{Type: schema.ValidatorMaxLength, Enabled: boolPtr(true), Params: map[string]any{"max_characters": 100.0}},
				},
				ModelOverrides: map[string]schema.ModelOverride{
					"tiny-model": {
						SystemTemplatePrefix: strPtr("[tiny] "),
						SystemTemplateSuffix: strPtr(" Keep it short."),
						Parameters:           &schema.Parameters{MaxTokens: intPtr(64)},
					},
					"alt-model": {
						SystemTemplate: strPtr("Alternative for {{topic}}."),
					},
				},
			},
		},
	}
}

func TestNewUnknownPrompt(t *testing.T) {
	t.Parallel()

	_, err := New(testPack(), "nope")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), `prompt "nope" not found`) {
		t.Fatalf("got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "summarize") {
		t.Fatalf("available prompts not listed: %q", err.Error())
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	r, err := New(testPack(), "summarize")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := r.FormatStrict(map[string]any{"topic": "compilers"})
	if err != nil {
		t.Fatalf("FormatStrict: %v", err)
	}
	want := "Be brief. Summarize compilers."
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFormatStrictMissingRequired(t *testing.T) {
	t.Parallel()

	r, err := New(testPack(), "summarize")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = r.FormatStrict(nil)
	if err == nil || !strings.Contains(err.Error(), "Required variable is missing") {
		t.Fatalf("got %v", err)
	}
}

func TestFormatStrictUnknownVariable(t *testing.T) {
	t.Parallel()

	r, err := New(testPack(), "summarize")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	values := map[string]any{"topic": "x", "stray": 1}
	if _, err := r.FormatStrict(values); err == nil {
		t.Fatalf("strict: expected error for unknown variable")
	}

	// Non-strict drops the stray key and renders cleanly.
	if _, err := r.Format(values); err != nil {
		t.Fatalf("non-strict: %v", err)
	}
}

func TestInputVariables(t *testing.T) {
	t.Parallel()

	r, err := New(testPack(), "summarize")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := r.InputVariables()
	if len(got) != 1 || got[0] != "topic" {
		t.Fatalf("got %v want [topic]", got)
	}
}

func TestSystemTemplateOverrides(t *testing.T) {
	t.Parallel()

	base, err := New(testPack(), "summarize")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := base.SystemTemplate(); !strings.HasPrefix(got, "{{fragment:tone}}") {
		t.Fatalf("base template: got %q", got)
	}

	wrapped, err := New(testPack(), "summarize", WithModel("tiny-model"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := wrapped.SystemTemplate()
	if !strings.HasPrefix(got, "[tiny] ") || !strings.HasSuffix(got, " Keep it short.") {
		t.Fatalf("wrapped template: got %q", got)
	}

	replaced, err := New(testPack(), "summarize", WithModel("alt-model"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := replaced.SystemTemplate(); got != "Alternative for {{topic}}." {
		t.Fatalf("replaced template: got %q", got)
	}

	unknown, err := New(testPack(), "summarize", WithModel("no-such-model"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if unknown.SystemTemplate() != base.SystemTemplate() {
		t.Fatalf("unknown model changed template")
	}
}

func TestParametersMerge(t *testing.T) {
	t.Parallel()

	base, err := New(testPack(), "summarize")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	params := base.Parameters()
	if params["temperature"] != 0.7 || params["max_tokens"] != 256 {
		t.Fatalf("base params: got %v", params)
	}

	tiny, err := New(testPack(), "summarize", WithModel("tiny-model"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	params = tiny.Parameters()
	if params["max_tokens"] != 64 {
		t.Fatalf("override max_tokens: got %v", params["max_tokens"])
	}
	if params["temperature"] != 0.7 {
		t.Fatalf("base temperature lost: got %v", params["temperature"])
	}
}

func TestMergeParameters(t *testing.T) {
	t.Parallel()

	base := &schema.Parameters{Temperature: floatPtr(1.0), TopP: floatPtr(0.9)}
	override := &schema.Parameters{Temperature: floatPtr(0.2)}

	merged := MergeParameters(base, override)
	if *merged.Temperature != 0.2 {
		t.Fatalf("Temperature: got %v", *merged.Temperature)
	}
	if merged.TopP == nil || *merged.TopP != 0.9 {
		t.Fatalf("TopP: got %v", merged.TopP)
	}

	if merged := MergeParameters(nil, override); *merged.Temperature != 0.2 {
		t.Fatalf("nil base: got %v", *merged.Temperature)
	}
	if merged := MergeParameters(base, nil); *merged.Temperature != 1.0 {
		t.Fatalf("nil override: got %v", *merged.Temperature)
	}
}

func TestValidatorsAndTools(t *testing.T) {
	t.Parallel()

	pack := testPack()
	pack.Tools = map[string]schema.Tool{
		"lookup": {Name: "lookup", Description: "look up a thing"},
	}
	prompt := pack.Prompts["summarize"]
	prompt.Tools = []string{"lookup"}
	pack.Prompts["summarize"] = prompt

	r, err := New(pack, "summarize")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if vs := r.Validators(); len(vs) != 1 || vs[0].Type != schema.ValidatorMaxLength {
		t.Fatalf("Validators: got %v", vs)
	}
	if tools := r.Tools(); len(tools) != 1 || tools[0].Name != "lookup" {
		t.Fatalf("Tools: got %v", tools)
	}
	if r.PromptID() != "summarize" {
		t.Fatalf("PromptID: got %q", r.PromptID())
	}
}
