// Package research runs the GitHub research capability. It delegates the
// whole tool-use loop to a bounded react agent built over the lease's
// provider tools instead of hand-rolling tool dispatch.
package research

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/frankie-agent/server/internal/agent/graph/prompts"
	"github.com/frankie-agent/server/internal/agent/lease"
	"github.com/frankie-agent/server/internal/agent/model"
	logx "github.com/frankie-agent/server/pkg/logger"
)

const (
	timeoutReply = "The research took too long and was stopped before it could finish. Try narrowing the request."
	errorReply   = "The research agent ran into a problem while using its tools and could not complete the request."
)

// Adapter wraps the react agent behind the capability-node contract.
type Adapter struct {
	maxSteps int
}

func New(maxSteps int) *Adapter {
	return &Adapter{maxSteps: maxSteps}
}

// Run executes the research agent over the conversation transcript. It
// never returns an error: every failure mode resolves to a deterministic
// assistant message so the turn terminates (the router ends on assistant).
func (a *Adapter) Run(ctx context.Context, state *model.ConversationState, l *lease.Lease) model.NodeResult {
	if len(l.ProviderTools) == 0 {
		logx.Warn().Str("lease_id", l.ID).Msg("research requested but no provider tools available")
		return assistantResult(model.FailureMarker)
	}

	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: l.ChatModel,
		ToolsConfig:      compose.ToolsNodeConfig{Tools: l.ProviderTools},
		MaxStep:          a.maxSteps,
	})
	if err != nil {
		logx.Error().Err(err).Str("lease_id", l.ID).Msg("failed to build research agent")
		return assistantResult(errorReply)
	}

	messages := make([]*schema.Message, 0, len(state.Messages)+1)
	messages = append(messages, schema.SystemMessage(prompts.ResearchSystem()))
	messages = append(messages, state.Messages...)

	out, err := agent.Generate(ctx, messages)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			logx.Warn().Err(err).Str("lease_id", l.ID).Msg("research agent timed out")
			return assistantResult(timeoutReply)
		}
		logx.Error().Err(err).Str("lease_id", l.ID).Msg("research agent failed")
		return assistantResult(errorReply)
	}

	if out == nil || out.Content == "" {
		return assistantResult(model.FailureMarker)
	}
	return assistantResult(out.Content)
}

func assistantResult(content string) model.NodeResult {
	return model.NodeResult{Messages: []*schema.Message{schema.AssistantMessage(content, nil)}}
}
