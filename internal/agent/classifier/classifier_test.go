package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"

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

func testIntentConfig() model.IntentConfig {
	return model.IntentConfig{
		Labels:        []string{"chit_chat", "search", "code", "other"},
		FallbackLabel: "other",
	}
}

func classify(t *testing.T, m einomodel.BaseChatModel, text string) string {
	t.Helper()
	c := New(m, testIntentConfig(), 5*time.Second)
	return c.Classify(context.Background(), text)
}

func TestClassifyPlainJSON(t *testing.T) {
	got := classify(t, &fixedModel{reply: `{"intent": "search"}`}, "find papers on raft")
	assert.Equal(t, "search", got)
}

func TestClassifyFencedJSON(t *testing.T) {
	reply := "```json\n{\"intent\": \"code\"}\n```"
	got := classify(t, &fixedModel{reply: reply}, "run this snippet")
	assert.Equal(t, "code", got)
}

func TestClassifyJSONEmbeddedInProse(t *testing.T) {
	reply := `The classification is {"intent": "chit_chat"} based on the message.`
	got := classify(t, &fixedModel{reply: reply}, "hello!")
	assert.Equal(t, "chit_chat", got)
}

func TestClassifyUnknownLabelCoercedToFallback(t *testing.T) {
	got := classify(t, &fixedModel{reply: `{"intent": "pizza"}`}, "order food")
	assert.Equal(t, "other", got)
}

func TestClassifyGarbageFallsBack(t *testing.T) {
	for _, reply := range []string{"hello", "", `{"intent": ""}`, `{"label": "search"}`, "{broken"} {
		got := classify(t, &fixedModel{reply: reply}, "anything")
		assert.Equal(t, "other", got, "reply %q must coerce to fallback", reply)
	}
}

func TestClassifyModelErrorFallsBack(t *testing.T) {
	got := classify(t, &fixedModel{err: errors.New("boom")}, "anything")
	assert.Equal(t, "other", got)
}

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"intent\":\"a\"}\n```": `{"intent":"a"}`,
		"```\n{\"intent\":\"a\"}\n```":     `{"intent":"a"}`,
		`prefix {"intent":"a"} suffix`:     `{"intent":"a"}`,
		"no braces here":                   "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, extractJSON(raw), "raw: %q", raw)
	}
}
