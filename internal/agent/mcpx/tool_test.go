package mcpx

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCaller struct {
	name string
	args map[string]any
	out  string
}

func (r *recordingCaller) CallTool(_ context.Context, name string, args map[string]any) (string, error) {
	r.name = name
	r.args = args
	return r.out, nil
}

func fileContentsTool() mcp.Tool {
	return mcp.NewTool("get_file_contents",
		mcp.WithDescription("Read a file from a repository."),
		mcp.WithString("owner", mcp.Required()),
		mcp.WithString("repo", mcp.Required()),
		mcp.WithString("path", mcp.Required()),
	)
}

func TestProviderToolInfo(t *testing.T) {
	pt := &providerTool{def: fileContentsTool()}

	info, err := pt.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "get_file_contents", info.Name)
	assert.Equal(t, "Read a file from a repository.", info.Desc)
	require.NotNil(t, info.ParamsOneOf)
}

func TestProviderToolInvokableRun(t *testing.T) {
	caller := &recordingCaller{out: "# README\ncontents"}
	pt := &providerTool{def: fileContentsTool(), provider: caller}

	out, err := pt.InvokableRun(context.Background(), `{"owner":"cloudwego","repo":"eino","path":"README.md"}`)
	require.NoError(t, err)
	assert.Equal(t, "# README\ncontents", out)
	assert.Equal(t, "get_file_contents", caller.name)
	assert.Equal(t, "cloudwego", caller.args["owner"])
	assert.Equal(t, "README.md", caller.args["path"])
}

func TestProviderToolEmptyArguments(t *testing.T) {
	caller := &recordingCaller{out: "ok"}
	pt := &providerTool{def: mcp.NewTool("ping"), provider: caller}

	out, err := pt.InvokableRun(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Empty(t, caller.args)
}
