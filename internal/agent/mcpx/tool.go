package mcpx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/mcp-go/mcp"
)

// caller is the subset of Provider the adapter needs. Tests substitute a
// recorder here.
type caller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// providerTool exposes one MCP tool through the chat-model tool interface.
type providerTool struct {
	def      mcp.Tool
	provider caller
}

var _ tool.InvokableTool = (*providerTool)(nil)

// AdaptTools wraps the given MCP tool descriptors so the chat model can
// bind and invoke them like native tools.
func AdaptTools(p *Provider, defs []mcp.Tool) []tool.BaseTool {
	out := make([]tool.BaseTool, 0, len(defs))
	for _, def := range defs {
		out = append(out, &providerTool{def: def, provider: p})
	}
	return out
}

func (t *providerTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	raw, err := t.def.InputSchema.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal input schema for %q: %w", t.def.Name, err)
	}
	var openAPI openapi3.Schema
	if err := json.Unmarshal(raw, &openAPI); err != nil {
		return nil, fmt.Errorf("convert input schema for %q: %w", t.def.Name, err)
	}
	return &schema.ToolInfo{
		Name:        t.def.Name,
		Desc:        t.def.Description,
		ParamsOneOf: schema.NewParamsOneOfByOpenAPIV3(&openAPI),
	}, nil
}

func (t *providerTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	args := map[string]any{}
	if argumentsInJSON != "" {
		if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
			return "", fmt.Errorf("parse arguments for %q: %w", t.def.Name, err)
		}
	}
	return t.provider.CallTool(ctx, t.def.Name, args)
}
