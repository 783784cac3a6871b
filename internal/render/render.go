// Package render binds a pack prompt to the template engine and the
// variable validator, producing ready-to-send prompt text with
// model-specific overrides applied.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AltairaLabs/promptpack-go/internal/schema"
	"github.com/AltairaLabs/promptpack-go/internal/template"
	"github.com/AltairaLabs/promptpack-go/internal/variables"
)

// Renderer resolves one prompt of a pack. It holds only immutable state
// and is safe for concurrent reuse.
type Renderer struct {
	pack   *schema.Pack
	prompt *schema.Prompt
	name   string
	engine *template.Engine
	model  string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithModel selects a target model so its overrides apply.
func WithModel(name string) Option {
	return func(r *Renderer) { r.model = name }
}

// New builds a renderer for the named prompt. An unknown prompt name
// fails, listing the prompts the pack does define.
func New(pack *schema.Pack, promptName string, opts ...Option) (*Renderer, error) {
	prompt, ok := pack.Prompt(promptName)
	if !ok {
		available := make([]string, 0, len(pack.Prompts))
		for name := range pack.Prompts {
			available = append(available, name)
		}
		sort.Strings(available)
		return nil, fmt.Errorf("render: prompt %q not found in pack %q (available: %s)",
			promptName, pack.ID, strings.Join(available, ", "))
	}

	r := &Renderer{
		pack:   pack,
		prompt: prompt,
		name:   promptName,
		engine: template.New(pack.TemplateEngine.Syntax, pack.Fragments),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// PromptID returns the resolved prompt's id.
func (r *Renderer) PromptID() string { return r.prompt.ID }

// InputVariables returns the names a caller must supply: declared
// variables that are required and carry no default, in declaration
// order.
func (r *Renderer) InputVariables() []string {
	var names []string
	for _, v := range r.prompt.Variables {
		if v.Required && v.Default == nil {
			names = append(names, v.Name)
		}
	}
	return names
}

// SystemTemplate returns the prompt's system template with any
// model-specific override applied. A full replacement wins; otherwise
// prefix and suffix wrap the base template.
func (r *Renderer) SystemTemplate() string {
	base := r.prompt.SystemTemplate
	override, ok := r.override()
	if !ok {
		return base
	}
	if override.SystemTemplate != nil {
		return *override.SystemTemplate
	}

	var prefix, suffix string
	if override.SystemTemplatePrefix != nil {
		prefix = *override.SystemTemplatePrefix
	}
	if override.SystemTemplateSuffix != nil {
		suffix = *override.SystemTemplateSuffix
	}
	return prefix + base + suffix
}

// Format validates the supplied variables (dropping unknown keys),
// applies defaults, and renders the effective system template. Undefined
// references render verbatim.
func (r *Renderer) Format(values map[string]any) (string, error) {
	return r.format(values, false)
}

// FormatStrict is Format with strict semantics: unknown supplied
// variables and undefined template references fail.
func (r *Renderer) FormatStrict(values map[string]any) (string, error) {
	return r.format(values, true)
}

func (r *Renderer) format(values map[string]any, strict bool) (string, error) {
	resolved := values
	if len(r.prompt.Variables) > 0 {
		var err error
		resolved, err = variables.ValidateAll(r.prompt.Variables, values, strict)
		if err != nil {
			return "", err
		}
	}
	return r.engine.Render(r.SystemTemplate(), resolved, strict)
}

// Parameters returns the prompt's sampling parameters with the selected
// model's overrides merged per field.
func (r *Renderer) Parameters() map[string]any {
	merged := r.prompt.Parameters
	if override, ok := r.override(); ok && override.Parameters != nil {
		m := MergeParameters(merged, override.Parameters)
		merged = &m
	}
	if merged == nil {
		return map[string]any{}
	}

	params := make(map[string]any)
	if merged.Temperature != nil {
		params["temperature"] = *merged.Temperature
	}
	if merged.MaxTokens != nil {
		params["max_tokens"] = *merged.MaxTokens
	}
	if merged.TopP != nil {
		params["top_p"] = *merged.TopP
	}
	if merged.TopK != nil {
		params["top_k"] = *merged.TopK
	}
	if merged.FrequencyPenalty != nil {
		params["frequency_penalty"] = *merged.FrequencyPenalty
	}
	if merged.PresencePenalty != nil {
		params["presence_penalty"] = *merged.PresencePenalty
	}
	return params
}

// Validators returns the prompt's declared guardrails.
func (r *Renderer) Validators() []schema.Validator {
	return r.prompt.Validators
}

// Tools returns the tools exposed to the prompt after tool-policy
// filtering.
func (r *Renderer) Tools() []schema.Tool {
	return r.pack.ToolsForPrompt(r.name)
}

func (r *Renderer) override() (*schema.ModelOverride, bool) {
	if r.model == "" || r.prompt.ModelOverrides == nil {
		return nil, false
	}
	o, ok := r.prompt.ModelOverrides[r.model]
	if !ok {
		return nil, false
	}
	return &o, true
}

// MergeParameters merges override onto base, field by field. Each
// override field is independently nullable and independently replaces
// its base counterpart; the merge is order-independent across fields.
func MergeParameters(base, override *schema.Parameters) schema.Parameters {
	var merged schema.Parameters
	if base != nil {
		merged = *base
	}
	if override == nil {
		return merged
	}
	if override.Temperature != nil {
		merged.Temperature = override.Temperature
	}
	if override.MaxTokens != nil {
		merged.MaxTokens = override.MaxTokens
	}
	if override.TopP != nil {
		merged.TopP = override.TopP
	}
	if override.TopK != nil {
		merged.TopK = override.TopK
	}
	if override.FrequencyPenalty != nil {
		merged.FrequencyPenalty = override.FrequencyPenalty
	}
	if override.PresencePenalty != nil {
		merged.PresencePenalty = override.PresencePenalty
	}
	return merged
}
