// Package mcpx connects to an external tool provider over the Model
// Context Protocol. The provider runs as a subprocess speaking MCP on
// stdio; each request gets its own connection so a wedged provider can
// never poison more than one turn.
package mcpx

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/frankie-agent/server/internal/agent/model"
	logx "github.com/frankie-agent/server/pkg/logger"
)

// Provider is a live MCP session with the tool-provider subprocess.
type Provider struct {
	id     string
	client *client.Client
	tools  []mcp.Tool
}

// Connect launches the provider subprocess and performs the MCP handshake.
// The caller bounds ctx; a timeout here means the subprocess is abandoned
// and the error returned for the caller to degrade on.
func Connect(ctx context.Context, cfg model.ProviderConfig) (*Provider, error) {
	env := []string{"GITHUB_PERSONAL_ACCESS_TOKEN=" + cfg.GithubToken}
	c, err := client.NewStdioMCPClient(cfg.Command, env, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("spawn tool provider: %w", err)
	}

	id := "frankie-" + uuid.NewString()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: id, Version: "1.0.0"}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("initialize tool provider: %w", err)
	}

	listed, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("list provider tools: %w", err)
	}

	logx.Info().Str("provider_id", id).Int("tools", len(listed.Tools)).Msg("tool provider connected")
	return &Provider{id: id, client: c, tools: listed.Tools}, nil
}

// ID returns the per-connection client identity.
func (p *Provider) ID() string { return p.id }

// Tools returns the provider's advertised tool descriptors.
func (p *Provider) Tools() []mcp.Tool { return p.tools }

// CallTool invokes a provider tool and flattens its text content.
func (p *Provider) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := p.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call tool %q: %w", name, err)
	}

	text := flattenContent(result.Content)
	if result.IsError {
		return "", fmt.Errorf("tool %q reported an error: %s", name, text)
	}
	return text, nil
}

// Close shuts down the subprocess. Safe to call more than once; the
// underlying transport tolerates repeated closes.
func (p *Provider) Close() error {
	return p.client.Close()
}

func flattenContent(contents []mcp.Content) string {
	var out string
	for _, c := range contents {
		if tc, ok := mcp.AsTextContent(c); ok {
			if out != "" {
				out += "\n"
			}
			out += tc.Text
		}
	}
	return out
}
