package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/frankie-agent/server/internal/agent/graph/prompts"
	"github.com/frankie-agent/server/internal/agent/model"
	"github.com/frankie-agent/server/internal/agent/userinfo"
	"github.com/frankie-agent/server/internal/core/errx"
)

// Node is one capability: it reads the state and returns a partial update.
// Nodes never mutate the state directly; the engine merges their result.
type Node interface {
	Name() string
	Run(ctx context.Context, state *model.ConversationState) (model.NodeResult, error)
}

// ================ chat ================

// chatNode answers with the persona system prompt plus the full transcript.
type chatNode struct {
	chatModel einomodel.BaseChatModel
}

func NewChatNode(chatModel einomodel.BaseChatModel) Node {
	return &chatNode{chatModel: chatModel}
}

func (n *chatNode) Name() string { return NodeChatbot }

func (n *chatNode) Run(ctx context.Context, state *model.ConversationState) (model.NodeResult, error) {
	persona, err := prompts.RenderPersona(ctx, time.Now())
	if err != nil {
		return model.NodeResult{}, errx.NewKind(errx.KindExecFailure, err, "persona prompt")
	}

	messages := make([]*schema.Message, 0, len(state.Messages)+1)
	messages = append(messages, schema.SystemMessage(persona))
	messages = append(messages, state.Messages...)

	out, err := n.chatModel.Generate(ctx, messages)
	if err != nil {
		return model.NodeResult{}, errx.NewKind(errx.KindExecFailure, err, "chat completion")
	}
	return assistantUpdate(out.Content), nil
}

// ================ clarify ================

// clarifyNode asks exactly one follow-up question about an ambiguous message.
type clarifyNode struct {
	chatModel einomodel.BaseChatModel
}

func NewClarifyNode(chatModel einomodel.BaseChatModel) Node {
	return &clarifyNode{chatModel: chatModel}
}

func (n *clarifyNode) Name() string { return NodeClarify }

func (n *clarifyNode) Run(ctx context.Context, state *model.ConversationState) (model.NodeResult, error) {
	var latest string
	if last := state.LastMessage(); last != nil {
		latest = last.Content
	}
	prior := transcriptText(state.Messages[:max(0, len(state.Messages)-1)])

	out, err := n.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(prompts.RenderClarify(prior, latest)),
	})
	if err != nil {
		return model.NodeResult{}, errx.NewKind(errx.KindExecFailure, err, "clarification")
	}
	return assistantUpdate(out.Content), nil
}

// ================ time ================

// timeNode reports the user-local time and records when it was checked.
type timeNode struct {
	info *userinfo.Provider
}

func NewTimeNode(info *userinfo.Provider) Node {
	return &timeNode{info: info}
}

func (n *timeNode) Name() string { return NodeTime }

func (n *timeNode) Run(_ context.Context, state *model.ConversationState) (model.NodeResult, error) {
	reply, checkedAt := n.info.LocalTime(state.Profile["timezone"])
	res := assistantUpdate(reply)
	res.ProfileDelta = map[string]string{"last_time_check": checkedAt}
	return res, nil
}

// ================ profile ================

// profileNode asks for the first missing profile attribute, or acknowledges
// a complete profile so the turn still terminates on an assistant message.
type profileNode struct{}

func NewProfileNode() Node { return &profileNode{} }

func (n *profileNode) Name() string { return NodeProfile }

func (n *profileNode) Run(_ context.Context, state *model.ConversationState) (model.NodeResult, error) {
	if state.Profile["name"] == "" {
		return assistantUpdate("Before we go further, what should I call you?"), nil
	}
	if state.Profile["timezone"] == "" {
		return assistantUpdate("What timezone are you in? It helps me answer time-related questions."), nil
	}
	return assistantUpdate(fmt.Sprintf(
		"I already have everything I need: you're %s in %s.",
		state.Profile["name"], state.Profile["timezone"],
	)), nil
}

// ================ terminal ================

// endNode appends the end marker. No model call.
type endNode struct{}

func NewEndNode() Node { return &endNode{} }

func (n *endNode) Name() string { return NodeEnd }

func (n *endNode) Run(_ context.Context, _ *model.ConversationState) (model.NodeResult, error) {
	return assistantUpdate(model.EndMarker), nil
}

// ================ func ================

// funcNode adapts a plain function to the Node contract. The research
// capability is wired this way: it needs the request's lease, which the
// caller closes over.
type funcNode struct {
	name string
	fn   func(ctx context.Context, state *model.ConversationState) (model.NodeResult, error)
}

func NewFuncNode(name string, fn func(ctx context.Context, state *model.ConversationState) (model.NodeResult, error)) Node {
	return &funcNode{name: name, fn: fn}
}

func (n *funcNode) Name() string { return n.name }

func (n *funcNode) Run(ctx context.Context, state *model.ConversationState) (model.NodeResult, error) {
	return n.fn(ctx, state)
}

// ================ helpers ================

func assistantUpdate(content string) model.NodeResult {
	return model.NodeResult{Messages: []*schema.Message{schema.AssistantMessage(content, nil)}}
}

func transcriptText(msgs []*schema.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		if m == nil || m.Content == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	return strings.TrimSpace(b.String())
}
