package graph

import (
	"context"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/frankie-agent/server/internal/agent/graph/prompts"
	"github.com/frankie-agent/server/internal/agent/model"
	"github.com/frankie-agent/server/internal/agent/tools"
	"github.com/frankie-agent/server/internal/core/errx"
	logx "github.com/frankie-agent/server/pkg/logger"
)

// toolNode is the shared implementation behind the search and code nodes:
// the same dispatch loop parameterized by node name and tool set. The model
// decides whether to call tools; results come back as tool-role messages and
// the router hands control to the chat node to react to them.
type toolNode struct {
	name      string
	chatModel einomodel.ToolCallingChatModel
	toolSet   []tool.BaseTool
}

func NewSearchToolsNode(chatModel einomodel.ToolCallingChatModel) Node {
	return &toolNode{name: NodeSearchTools, chatModel: chatModel, toolSet: tools.GetSearchTools()}
}

func NewCodeToolsNode(chatModel einomodel.ToolCallingChatModel) Node {
	return &toolNode{name: NodeCodeTools, chatModel: chatModel, toolSet: tools.GetCodeTools()}
}

// newToolNode is the test seam: any name and tool set.
func newToolNode(name string, chatModel einomodel.ToolCallingChatModel, toolSet []tool.BaseTool) Node {
	return &toolNode{name: name, chatModel: chatModel, toolSet: toolSet}
}

func (n *toolNode) Name() string { return n.name }

func (n *toolNode) Run(ctx context.Context, state *model.ConversationState) (model.NodeResult, error) {
	infos, err := tools.GetToolInfos(ctx, n.toolSet)
	if err != nil {
		return model.NodeResult{}, errx.NewKind(errx.KindToolFailure, err, "resolve tool descriptors")
	}
	bound, err := n.chatModel.WithTools(infos)
	if err != nil {
		return model.NodeResult{}, errx.NewKind(errx.KindToolFailure, err, "bind tools")
	}

	persona, err := prompts.RenderPersona(ctx, time.Now())
	if err != nil {
		return model.NodeResult{}, errx.NewKind(errx.KindExecFailure, err, "persona prompt")
	}
	messages := make([]*schema.Message, 0, len(state.Messages)+1)
	messages = append(messages, schema.SystemMessage(persona))
	messages = append(messages, state.Messages...)

	out, err := bound.Generate(ctx, messages)
	if err != nil {
		return model.NodeResult{}, errx.NewKind(errx.KindExecFailure, err, "tool-capable completion")
	}

	// Direct answer, no tool use requested.
	if len(out.ToolCalls) == 0 {
		return assistantUpdate(out.Content), nil
	}

	result := model.NodeResult{Messages: []*schema.Message{out}}
	for _, call := range out.ToolCalls {
		text, invokeErr := tools.InvokeByName(ctx, n.toolSet, call.Function.Name, call.Function.Arguments)
		if invokeErr != nil {
			logx.Warn().Err(invokeErr).Str("tool", call.Function.Name).Str("node", n.name).Msg("tool invocation failed")
			text = toolError(call.Function.Name, invokeErr)
		}
		result.Messages = append(result.Messages, schema.ToolMessage(text, call.ID))
	}
	return result, nil
}

// toolError formats a structured failure the model can read and recover
// from. It is a message, never a propagated error.
func toolError(toolName string, err error) string {
	return fmt.Sprintf("TOOL_ERROR|%s|%v", toolName, err)
}
