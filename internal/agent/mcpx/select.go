package mcpx

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/frankie-agent/server/internal/agent/model"
)

// SelectTools narrows a provider's advertised tools to the bounded set the
// model is allowed to see. Exact allowlist names win in allowlist order,
// then name-substring pattern matches fill the remainder, hard-capped at
// cfg.MaxTools.
func SelectTools(available []mcp.Tool, cfg model.ToolSelectionConfig) []mcp.Tool {
	if cfg.MaxTools <= 0 {
		return nil
	}

	byName := make(map[string]mcp.Tool, len(available))
	for _, t := range available {
		byName[t.Name] = t
	}

	selected := make([]mcp.Tool, 0, cfg.MaxTools)
	taken := make(map[string]bool, cfg.MaxTools)

	for _, name := range cfg.Allowlist {
		if len(selected) == cfg.MaxTools {
			return selected
		}
		if t, ok := byName[name]; ok && !taken[name] {
			selected = append(selected, t)
			taken[name] = true
		}
	}

	for _, t := range available {
		if len(selected) == cfg.MaxTools {
			return selected
		}
		if taken[t.Name] {
			continue
		}
		for _, pattern := range cfg.Patterns {
			if pattern != "" && strings.Contains(t.Name, pattern) {
				selected = append(selected, t)
				taken[t.Name] = true
				break
			}
		}
	}

	return selected
}
