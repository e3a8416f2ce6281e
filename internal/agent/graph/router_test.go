package graph

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"

	"github.com/frankie-agent/server/internal/agent/model"
)

// stubClassifier returns a fixed label. When failIfCalled is set, any call
// fails the test: some routing rules must never reach the classifier.
type stubClassifier struct {
	t            *testing.T
	label        string
	failIfCalled bool
	calls        int
}

func (s *stubClassifier) Classify(_ context.Context, _ string) string {
	s.calls++
	if s.failIfCalled {
		s.t.Fatal("classifier must not be invoked for this state")
	}
	return s.label
}

func testRouterContext(c Classifier) RouterContext {
	return RouterContext{
		Classifier: c,
		IntentMap: map[string]string{
			"chit_chat":       NodeChatbot,
			"search":          NodeSearchTools,
			"code":            NodeCodeTools,
			"github_research": NodeGithubResearch,
			"time":            NodeTime,
		},
		FallbackNode: NodeClarify,
	}
}

func stateWith(msgs ...*schema.Message) *model.ConversationState {
	s := model.NewConversationState()
	s.Messages = append(s.Messages, msgs...)
	return s
}

func TestRouteEmptyTranscript(t *testing.T) {
	rc := testRouterContext(&stubClassifier{t: t, failIfCalled: true})
	assert.Equal(t, NodeChatbot, Route(context.Background(), rc, model.NewConversationState()))
}

func TestRouteAssistantTailTerminates(t *testing.T) {
	rc := testRouterContext(&stubClassifier{t: t, failIfCalled: true})

	cases := []string{
		"Sure, here's what I found.",
		"",
		model.EndMarker,
	}
	for _, content := range cases {
		state := stateWith(
			schema.UserMessage("what time is it?"),
			schema.AssistantMessage(content, nil),
		)
		assert.Equal(t, NodeEnd, Route(context.Background(), rc, state),
			"assistant tail %q must terminate the turn", content)
	}
}

func TestRouteFailureMarkerShortCircuit(t *testing.T) {
	rc := testRouterContext(&stubClassifier{t: t, failIfCalled: true})

	state := stateWith(
		schema.UserMessage("analyze this repo"),
		schema.AssistantMessage(model.FailureMarker, nil),
	)
	assert.Equal(t, NodeEnd, Route(context.Background(), rc, state))
}

func TestRouteToolTailReturnsToChat(t *testing.T) {
	rc := testRouterContext(&stubClassifier{t: t, failIfCalled: true})

	state := stateWith(
		schema.UserMessage("run this code"),
		schema.AssistantMessage("", []schema.ToolCall{{ID: "call-1"}}),
		schema.ToolMessage("42", "call-1"),
	)
	assert.Equal(t, NodeChatbot, Route(context.Background(), rc, state))
}

func TestRouteBlankUserSkipsClassifier(t *testing.T) {
	classifier := &stubClassifier{t: t, failIfCalled: true}
	rc := testRouterContext(classifier)

	for _, content := range []string{"", "   ", "\n\t"} {
		state := stateWith(schema.UserMessage(content))
		assert.Equal(t, NodeChatbot, Route(context.Background(), rc, state))
	}
	assert.Zero(t, classifier.calls)
}

func TestRouteByIntent(t *testing.T) {
	t.Run("mapped intent selects its node", func(t *testing.T) {
		classifier := &stubClassifier{t: t, label: "search"}
		rc := testRouterContext(classifier)

		state := stateWith(schema.UserMessage("find papers about raft"))
		assert.Equal(t, NodeSearchTools, Route(context.Background(), rc, state))
		assert.Equal(t, 1, classifier.calls)
	})

	t.Run("unmapped intent falls back to clarification", func(t *testing.T) {
		classifier := &stubClassifier{t: t, label: "other"}
		rc := testRouterContext(classifier)

		state := stateWith(schema.UserMessage("hmm"))
		assert.Equal(t, NodeClarify, Route(context.Background(), rc, state))
	})
}
