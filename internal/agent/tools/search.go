package tools

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	logx "github.com/frankie-agent/server/pkg/logger"
)

var searchHTTPClient = &http.Client{Timeout: 20 * time.Second}

// SearchInput is the shared argument shape for the generic search connectors.
type SearchInput struct {
	Query string `json:"query"`
}

// ===================================
// arXiv search
// ===================================

type arxivFeed struct {
	Entries []struct {
		Title   string `xml:"title"`
		Summary string `xml:"summary"`
		ID      string `xml:"id"`
		Authors []struct {
			Name string `xml:"name"`
		} `xml:"author"`
	} `xml:"entry"`
}

func createArxivSearchTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolArxivSearch,
			Desc: "Performs an arXiv.org search for academic papers matching the query.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "The search query for academic papers.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *SearchInput) (string, error) {
			if strings.TrimSpace(in.Query) == "" {
				return "", fmt.Errorf("query is required")
			}

			endpoint := "https://export.arxiv.org/api/query?search_query=all:" +
				url.QueryEscape(in.Query) + "&start=0&max_results=10"
			body, err := fetch(ctx, endpoint, nil)
			if err != nil {
				return "", fmt.Errorf("arxiv request: %w", err)
			}

			var feed arxivFeed
			if err := xml.Unmarshal(body, &feed); err != nil {
				return "", fmt.Errorf("arxiv response parse: %w", err)
			}

			var md strings.Builder
			md.WriteString("# arXiv Search Results\n\n")
			for i, e := range feed.Entries {
				authors := make([]string, 0, len(e.Authors))
				for _, a := range e.Authors {
					authors = append(authors, a.Name)
				}
				md.WriteString(fmt.Sprintf("## %d. %s\n", i+1, strings.TrimSpace(e.Title)))
				md.WriteString(fmt.Sprintf("**Authors:** %s\n\n", strings.Join(authors, ", ")))
				md.WriteString(fmt.Sprintf("**Abstract:** %s\n\n", strings.TrimSpace(e.Summary)))
				md.WriteString(fmt.Sprintf("**Link:** [View Paper](%s)\n\n", e.ID))
			}
			if len(feed.Entries) == 0 {
				md.WriteString("No papers matched the query.\n")
			}
			logx.Debug().Str("tool", ToolArxivSearch).Int("entries", len(feed.Entries)).Msg("arxiv search completed")
			return md.String(), nil
		},
	)
}

// ===================================
// Reddit search
// ===================================

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Subreddit  string  `json:"subreddit"`
				Score      int     `json:"score"`
				URL        string  `json:"url"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func createRedditSearchTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolRedditSearch,
			Desc: "Searches Reddit for the given query and returns relevant posts.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "The search query for Reddit posts.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *SearchInput) (string, error) {
			if strings.TrimSpace(in.Query) == "" {
				return "", fmt.Errorf("query is required")
			}

			endpoint := "https://www.reddit.com/search.json?limit=10&q=" + url.QueryEscape(in.Query)
			body, err := fetch(ctx, endpoint, map[string]string{"User-Agent": "frankie-agent/1.0"})
			if err != nil {
				return "", fmt.Errorf("reddit request: %w", err)
			}

			var listing redditListing
			if err := json.Unmarshal(body, &listing); err != nil {
				return "", fmt.Errorf("reddit response parse: %w", err)
			}

			var md strings.Builder
			md.WriteString("# Reddit Search Results\n\n")
			for _, child := range listing.Data.Children {
				post := child.Data
				created := time.Unix(int64(post.CreatedUTC), 0).UTC().Format("2006-01-02 15:04:05 UTC")
				md.WriteString(fmt.Sprintf("## %s\n", post.Title))
				md.WriteString(fmt.Sprintf("- **Subreddit:** %s\n", post.Subreddit))
				md.WriteString(fmt.Sprintf("- **Score:** %d\n", post.Score))
				md.WriteString(fmt.Sprintf("- **Created:** %s\n", created))
				md.WriteString(fmt.Sprintf("- **URL:** [Link](%s)\n\n", post.URL))
			}
			if len(listing.Data.Children) == 0 {
				md.WriteString("No posts matched the query.\n")
			}
			logx.Debug().Str("tool", ToolRedditSearch).Int("posts", len(listing.Data.Children)).Msg("reddit search completed")
			return md.String(), nil
		},
	)
}

func fetch(ctx context.Context, endpoint string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := searchHTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}
