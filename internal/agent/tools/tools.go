package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

const (
	ToolArxivSearch   = "arxivSearch"
	ToolRedditSearch  = "redditSearcher"
	ToolGithubSearch  = "githubSearchEnrich"
	ToolExecutePython = "executePython"
)

// GetSearchTools returns the external-search connectors exposed to the
// search capability node.
func GetSearchTools() []tool.BaseTool {
	return []tool.BaseTool{
		createArxivSearchTool(),
		createRedditSearchTool(),
		createGithubSearchTool(),
	}
}

// GetCodeTools returns the sandboxed-execution connectors exposed to the
// code capability node.
func GetCodeTools() []tool.BaseTool {
	return []tool.BaseTool{
		createExecutePythonTool(),
		createGithubSearchTool(),
	}
}

// GetToolInfos resolves the descriptors for a tool set.
func GetToolInfos(ctx context.Context, ts []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// InvokeByName runs the named tool with raw JSON arguments. Unknown names
// are reported as errors for the caller to surface; they never panic.
func InvokeByName(ctx context.Context, ts []tool.BaseTool, name, argsJSON string) (string, error) {
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return "", fmt.Errorf("tool info: %w", err)
		}
		if info.Name != name {
			continue
		}
		inv, ok := t.(tool.InvokableTool)
		if !ok {
			return "", fmt.Errorf("tool %q is not invokable", name)
		}
		return inv.InvokableRun(ctx, argsJSON)
	}
	return "", fmt.Errorf("unknown tool %q", name)
}
