// Package toolbind attaches invokable handlers to a pack's tool
// definitions. The core never executes tools itself; this adapter is the
// seam where a host framework supplies the execution side.
package toolbind

import (
	"context"
	"fmt"
	"sort"

	"github.com/AltairaLabs/promptpack-go/internal/schema"
)

// Handler executes one tool call.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// BoundTool pairs a tool definition with an optional handler.
type BoundTool struct {
	tool    schema.Tool
	handler Handler
}

// Name returns the tool's name.
func (b *BoundTool) Name() string { return b.tool.Name }

// Description returns the tool's description.
func (b *BoundTool) Description() string { return b.tool.Description }

// ParameterSchema returns the tool's JSON-Schema-shaped parameter spec,
// if any.
func (b *BoundTool) ParameterSchema() *schema.ToolParameters { return b.tool.Parameters }

// Invoke runs the bound handler. A tool without a handler fails; wiring
// one up is the host's responsibility.
func (b *BoundTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	if b.handler == nil {
		return "", fmt.Errorf("toolbind: tool %q: no handler configured", b.tool.Name)
	}
	return b.handler(ctx, args)
}

// Bind matches tools to handlers. With a prompt name, only the tools
// that prompt exposes (after tool-policy filtering) are bound, in
// declaration order; with an empty name the whole tool table is bound in
// name order. Tools without a matching handler are still returned and
// fail at Invoke time.
func Bind(pack *schema.Pack, promptName string, handlers map[string]Handler) []*BoundTool {
	var tools []schema.Tool
	if promptName != "" {
		tools = pack.ToolsForPrompt(promptName)
	} else {
		names := make([]string, 0, len(pack.Tools))
		for name := range pack.Tools {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			tools = append(tools, pack.Tools[name])
		}
	}

	bound := make([]*BoundTool, 0, len(tools))
	for _, t := range tools {
		bound = append(bound, &BoundTool{tool: t, handler: handlers[t.Name]})
	}
	return bound
}
