package classifier

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/frankie-agent/server/internal/agent/graph/prompts"
	"github.com/frankie-agent/server/internal/agent/model"
	logx "github.com/frankie-agent/server/pkg/logger"
)

// IntentClassifier labels the latest user utterance with one symbolic intent
// from the configured vocabulary. It never returns an arbitrary string: any
// parse failure, missing field, or out-of-vocabulary label collapses to the
// configured fallback label.
type IntentClassifier struct {
	chatModel einomodel.BaseChatModel
	labels    map[string]struct{}
	fallback  string
	prompt    string
	timeout   time.Duration
}

func New(chatModel einomodel.BaseChatModel, cfg model.IntentConfig, timeout time.Duration) *IntentClassifier {
	labels := make(map[string]struct{}, len(cfg.Labels))
	for _, l := range cfg.Labels {
		labels[strings.TrimSpace(l)] = struct{}{}
	}
	return &IntentClassifier{
		chatModel: chatModel,
		labels:    labels,
		fallback:  cfg.FallbackLabel,
		prompt:    prompts.RenderIntent(cfg.Labels, cfg.FallbackLabel),
		timeout:   timeout,
	}
}

// Classify issues one bounded model call and maps the reply to a known label.
func (c *IntentClassifier) Classify(ctx context.Context, text string) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(c.prompt),
		schema.UserMessage("User message: " + text),
	})
	if err != nil {
		logx.Error().Err(err).Msg("intent classification call failed")
		return c.fallback
	}
	if out == nil {
		logx.Warn().Msg("intent classification returned nil message")
		return c.fallback
	}

	intent, ok := parseIntent(out.Content)
	if !ok {
		logx.Warn().Str("raw", snippet(out.Content)).Msg("unparseable intent reply")
		return c.fallback
	}
	if _, known := c.labels[intent]; !known {
		logx.Warn().Str("intent", intent).Msg("unrecognized intent label coerced to fallback")
		return c.fallback
	}
	return intent
}

// parseIntent extracts {"intent": "..."} from the model output. Fenced code
// blocks are stripped first; otherwise the first '{' to the last '}' is
// treated as the JSON body.
func parseIntent(raw string) (string, bool) {
	body := extractJSON(raw)
	if body == "" {
		return "", false
	}
	var payload struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return "", false
	}
	intent := strings.TrimSpace(payload.Intent)
	if intent == "" {
		return "", false
	}
	return intent, true
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if idx := strings.Index(raw, "```"); idx >= 0 {
		rest := raw[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			raw = rest[:end]
		} else {
			raw = rest
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
