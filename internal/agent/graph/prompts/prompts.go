package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/persona_prompt.txt
var personaPrompt string

//go:embed template/intent_prompt.txt
var intentPrompt string

//go:embed template/clarify_prompt.txt
var clarifyPrompt string

//go:embed template/research_prompt.txt
var researchPrompt string

// RenderPersona renders the chat persona prompt with the current timestamp
// injected at call time, wrapped through the Eino prompt component so prompt
// callbacks fire.
func RenderPersona(ctx context.Context, now time.Time) (string, error) {
	content := strings.NewReplacer(
		"{current_datetime}", now.Format("2006-01-02 15:04:05"),
	).Replace(personaPrompt)

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("persona prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("persona prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// RenderIntent builds the classification instruction for the configured
// vocabulary. The fallback label closes the "none of the above" branch.
func RenderIntent(labels []string, fallbackLabel string) string {
	quoted := make([]string, 0, len(labels))
	for _, l := range labels {
		quoted = append(quoted, fmt.Sprintf("%q", l))
	}
	return strings.NewReplacer(
		"{intent_labels}", strings.Join(quoted, ", "),
		"{fallback_label}", fallbackLabel,
	).Replace(intentPrompt)
}

// RenderClarify frames the prior turns and the ambiguous latest message so
// the model asks exactly one follow-up question.
func RenderClarify(conversation, userMessage string) string {
	if strings.TrimSpace(conversation) == "" {
		conversation = "(no previous conversation)"
	}
	return strings.NewReplacer(
		"{conversation}", conversation,
		"{user_message}", userMessage,
	).Replace(clarifyPrompt)
}

// ResearchSystem returns the system prompt for the GitHub research agent.
func ResearchSystem() string {
	return researchPrompt
}
