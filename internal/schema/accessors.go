package schema

// Prompt returns the named prompt, if present.
func (p *Pack) Prompt(name string) (*Prompt, bool) {
	if p == nil {
		return nil, false
	}
	pr, ok := p.Prompts[name]
	if !ok {
		return nil, false
	}
	return &pr, true
}

// Tool returns the named tool from the pack's tool table, if present.
func (p *Pack) Tool(name string) (*Tool, bool) {
	if p == nil || p.Tools == nil {
		return nil, false
	}
	t, ok := p.Tools[name]
	if !ok {
		return nil, false
	}
	return &t, true
}

// Fragment returns the named fragment body, if present.
func (p *Pack) Fragment(name string) (string, bool) {
	if p == nil || p.Fragments == nil {
		return "", false
	}
	f, ok := p.Fragments[name]
	return f, ok
}

// ToolsForPrompt resolves the prompt's declared tool names against the
// pack's tool table, in declaration order. Names on the prompt's
// tool-policy blocklist are excluded; dangling names resolve to nothing
// and are silently dropped.
func (p *Pack) ToolsForPrompt(promptName string) []Tool {
	pr, ok := p.Prompt(promptName)
	if !ok || len(pr.Tools) == 0 || p.Tools == nil {
		return nil
	}

	blocked := make(map[string]struct{})
	if pr.ToolPolicy != nil {
		for _, name := range pr.ToolPolicy.Blocklist {
			blocked[name] = struct{}{}
		}
	}

	var tools []Tool
	for _, name := range pr.Tools {
		if _, skip := blocked[name]; skip {
			continue
		}
		t, ok := p.Tools[name]
		if !ok {
			continue
		}
		tools = append(tools, t)
	}
	return tools
}

// Variable returns the first declared variable with the given name, in
// declaration order.
func (p *Prompt) Variable(name string) (*Variable, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Variables {
		if p.Variables[i].Name == name {
			return &p.Variables[i], true
		}
	}
	return nil, false
}

// IsEnabled reports whether the validator should run. The field has no
// default; pack validation rejects documents that omit it.
func (v *Validator) IsEnabled() bool {
	return v != nil && v.Enabled != nil && *v.Enabled
}

// Tool-policy defaults applied when the pack omits the field.
const (
	defaultToolChoice          = "auto"
	defaultMaxRounds           = 5
	defaultMaxToolCallsPerTurn = 10
)

// Choice returns the configured tool_choice mode, defaulting to "auto".
func (t *ToolPolicy) Choice() string {
	if t == nil || t.ToolChoice == "" {
		return defaultToolChoice
	}
	return t.ToolChoice
}

// Rounds returns the configured max_rounds, defaulting to 5.
func (t *ToolPolicy) Rounds() int {
	if t == nil || t.MaxRounds == 0 {
		return defaultMaxRounds
	}
	return t.MaxRounds
}

// CallsPerTurn returns the configured max_tool_calls_per_turn,
// defaulting to 10.
func (t *ToolPolicy) CallsPerTurn() int {
	if t == nil || t.MaxToolCallsPerTurn == 0 {
		return defaultMaxToolCallsPerTurn
	}
	return t.MaxToolCallsPerTurn
}
