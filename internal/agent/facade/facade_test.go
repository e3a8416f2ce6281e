package facade

import (
	"context"
	"errors"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankie-agent/server/internal/agent/checkpoint"
	"github.com/frankie-agent/server/internal/agent/lease"
	"github.com/frankie-agent/server/internal/agent/model"
)

type fixedModel struct {
	reply string
	err   error
}

func (m *fixedModel) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *fixedModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (m *fixedModel) WithTools(_ []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return m, nil
}

type fakeLeaser struct {
	lease    *lease.Lease
	err      error
	released int
}

func (f *fakeLeaser) Acquire(_ context.Context) (*lease.Lease, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lease, nil
}

func (f *fakeLeaser) Release(_ *lease.Lease) { f.released++ }

func testFacade(leaser Leaser) *Facade {
	intents := model.IntentConfig{
		Labels:        []string{"chit_chat", "github_research", "other"},
		FallbackLabel: "other",
		NodeMapping: map[string]string{
			"chit_chat":       "chatbot",
			"github_research": "github_research",
		},
		FallbackNode: "clarify",
	}
	conv := model.ConversationConfig{MaxTransitions: 8, AgentMaxSteps: 4}
	timeouts := model.TimeoutConfig{
		LLMRequest:  time.Second,
		APIRequest:  2 * time.Second,
		ErrorReport: 100 * time.Millisecond,
	}
	return New(leaser, checkpoint.NewMemoryStore(), intents, conv, timeouts)
}

func TestInvokeDegradedLeaseStillSucceeds(t *testing.T) {
	// A lease with zero provider tools: research degrades to the fixed
	// failure message, but the turn completes and the release still runs.
	leaser := &fakeLeaser{lease: &lease.Lease{
		ID:              "lease-d",
		ChatModel:       &fixedModel{reply: "unused"},
		ClassifierModel: &fixedModel{reply: `{"intent": "github_research"}`},
	}}

	resp := testFacade(leaser).Invoke(context.Background(), "conv-degraded", "analyze cloudwego/eino")

	assert.True(t, resp.Success)
	assert.Equal(t, model.FailureMarker, resp.Message)
	assert.Equal(t, 1, leaser.released, "release runs exactly once")

	require.NotEmpty(t, resp.History)
	assert.Equal(t, "user", resp.History[0].Role)
	assert.Equal(t, model.EndMarker, resp.History[len(resp.History)-1].Content)
}

func TestInvokeExecutionTimeout(t *testing.T) {
	leaser := &fakeLeaser{lease: &lease.Lease{
		ID:              "lease-e",
		ChatModel:       &fixedModel{err: context.DeadlineExceeded},
		ClassifierModel: &fixedModel{reply: `{"intent": "chit_chat"}`},
	}}

	resp := testFacade(leaser).Invoke(context.Background(), "conv-timeout", "hello?")

	assert.False(t, resp.Success)
	assert.Equal(t, timeoutFallback, resp.Message,
		"the explanation model also fails, so the hardcoded timeout copy is used")
	assert.Equal(t, 1, leaser.released, "release runs even when execution fails")

	require.Len(t, resp.History, 2, "the user message plus the explanation")
	assert.Equal(t, "user", resp.History[0].Role)
	assert.Equal(t, "hello?", resp.History[0].Content)
	assert.Equal(t, "assistant", resp.History[1].Role)
	assert.Equal(t, timeoutFallback, resp.History[1].Content)
}

func TestInvokeGenericFailureCopy(t *testing.T) {
	leaser := &fakeLeaser{lease: &lease.Lease{
		ID:              "lease-g",
		ChatModel:       &fixedModel{err: errors.New("quota exceeded")},
		ClassifierModel: &fixedModel{reply: `{"intent": "chit_chat"}`},
	}}

	resp := testFacade(leaser).Invoke(context.Background(), "conv-generic", "hello?")

	assert.False(t, resp.Success)
	assert.Equal(t, genericFallback, resp.Message)
	assert.Equal(t, 1, leaser.released)
}

// failThenReplyModel errors on its first call and answers afterwards: the
// turn fails, but the failure-explanation call succeeds.
type failThenReplyModel struct {
	fixedModel
	calls int
}

func (m *failThenReplyModel) Generate(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	m.calls++
	if m.calls == 1 {
		return nil, errors.New("upstream hiccup")
	}
	return m.fixedModel.Generate(ctx, in, opts...)
}

func TestInvokeSynthesizedFailureExplanation(t *testing.T) {
	chat := &failThenReplyModel{fixedModel: fixedModel{reply: "Sorry, I hit a snag; please try again."}}
	leaser := &fakeLeaser{lease: &lease.Lease{
		ID:              "lease-x",
		ChatModel:       chat,
		ClassifierModel: &fixedModel{reply: `{"intent": "chit_chat"}`},
	}}

	resp := testFacade(leaser).Invoke(context.Background(), "conv-x", "do the thing")

	assert.False(t, resp.Success)
	assert.Equal(t, "Sorry, I hit a snag; please try again.", resp.Message,
		"the synthesized explanation is used when the bounded call works")
	assert.Equal(t, 2, chat.calls)
}

func TestInvokeAcquireFailure(t *testing.T) {
	leaser := &fakeLeaser{err: errors.New("no credentials")}

	resp := testFacade(leaser).Invoke(context.Background(), "conv-acquire", "hi")

	assert.False(t, resp.Success)
	assert.Equal(t, genericFallback, resp.Message, "no model is available to synthesize copy")
	require.Len(t, resp.History, 1, "only the explanation, nothing was executed")
	assert.Equal(t, genericFallback, resp.History[0].Content)
	assert.Zero(t, leaser.released, "nothing to release when acquisition fails")
}

func TestInvokeSuccessExtractsLastAssistantReply(t *testing.T) {
	leaser := &fakeLeaser{lease: &lease.Lease{
		ID:              "lease-s",
		ChatModel:       &fixedModel{reply: "Hey! I'm Frankie."},
		ClassifierModel: &fixedModel{reply: `{"intent": "chit_chat"}`},
	}}

	resp := testFacade(leaser).Invoke(context.Background(), "conv-ok", "hi there")

	assert.True(t, resp.Success)
	assert.Equal(t, "Hey! I'm Frankie.", resp.Message, "the end marker is never surfaced as the reply")
	assert.Equal(t, 1, leaser.released)
}
