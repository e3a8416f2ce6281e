package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/google/go-github/v69/github"

	logx "github.com/frankie-agent/server/pkg/logger"
)

const (
	githubMaxRepos      = 5
	githubReadmePreview = 1200
)

// GithubSearchInput is the argument shape for the repository search connector.
type GithubSearchInput struct {
	Query string `json:"query"`
}

func newGithubClient() *github.Client {
	c := github.NewClient(nil)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		c = c.WithAuthToken(token)
	}
	return c
}

func createGithubSearchTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGithubSearch,
			Desc: "Searches GitHub repositories matching the query and enriches the top results with README previews.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "The search query for GitHub repositories.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *GithubSearchInput) (string, error) {
			if strings.TrimSpace(in.Query) == "" {
				return "", fmt.Errorf("query is required")
			}

			client := newGithubClient()
			result, _, err := client.Search.Repositories(ctx, in.Query, &github.SearchOptions{
				Sort:        "stars",
				Order:       "desc",
				ListOptions: github.ListOptions{PerPage: githubMaxRepos},
			})
			if err != nil {
				return "", fmt.Errorf("github search: %w", err)
			}

			var md strings.Builder
			md.WriteString("# GitHub Repository Search Results\n\n")
			for i, repo := range result.Repositories {
				md.WriteString(fmt.Sprintf("## %d. %s\n", i+1, repo.GetFullName()))
				if desc := repo.GetDescription(); desc != "" {
					md.WriteString(fmt.Sprintf("**Description:** %s\n\n", desc))
				}
				md.WriteString(fmt.Sprintf("- **Stars:** %d\n", repo.GetStargazersCount()))
				md.WriteString(fmt.Sprintf("- **Language:** %s\n", repo.GetLanguage()))
				md.WriteString(fmt.Sprintf("- **URL:** [%s](%s)\n\n", repo.GetHTMLURL(), repo.GetHTMLURL()))

				preview := readmePreview(ctx, client, repo.GetOwner().GetLogin(), repo.GetName())
				if preview != "" {
					md.WriteString("**README preview:**\n\n")
					md.WriteString("```\n" + preview + "\n```\n\n")
				}
			}
			if len(result.Repositories) == 0 {
				md.WriteString("No repositories matched the query.\n")
			}
			logx.Debug().Str("tool", ToolGithubSearch).Int("repos", len(result.Repositories)).Msg("github search completed")
			return md.String(), nil
		},
	)
}

// readmePreview fetches a truncated README body. Failures degrade to an
// empty preview rather than failing the whole search.
func readmePreview(ctx context.Context, client *github.Client, owner, name string) string {
	if owner == "" || name == "" {
		return ""
	}
	readme, _, err := client.Repositories.GetReadme(ctx, owner, name, nil)
	if err != nil {
		return ""
	}
	content, err := readme.GetContent()
	if err != nil {
		return ""
	}
	content = strings.TrimSpace(content)
	if len(content) > githubReadmePreview {
		content = content[:githubReadmePreview] + "..."
	}
	return content
}
