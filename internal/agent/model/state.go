package model

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

const (
	// EndMarker is appended by the terminal node. It stays in the persisted
	// transcript but is excluded from the reply shown to the user.
	EndMarker = "(Conversation ended.)"

	// FailureMarker is the deterministic fallback emitted when a capability
	// cannot handle the request or the transition guard trips. The router
	// treats a (user, FailureMarker) tail as a hard stop.
	FailureMarker = "I am not equipped to handle this task with the functions at my disposal."

	// NoResponseFallback is returned when a finished transcript contains no
	// assistant message at all.
	NoResponseFallback = "Your request was processed but no response was generated."
)

// ConversationState is the unit of graph execution: the ordered transcript
// plus the user profile. Messages are append-only within a turn; insertion
// order is conversation order and the last message drives routing.
type ConversationState struct {
	Messages []*schema.Message `json:"messages"`
	Profile  map[string]string `json:"profile,omitempty"`
}

// NewConversationState returns an empty state for a first-contact conversation.
func NewConversationState() *ConversationState {
	return &ConversationState{
		Messages: []*schema.Message{},
		Profile:  map[string]string{},
	}
}

// LastMessage returns the most recent message, or nil on an empty transcript.
func (s *ConversationState) LastMessage() *schema.Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// Apply merges a node's partial update into the state.
func (s *ConversationState) Apply(res NodeResult) {
	s.Messages = append(s.Messages, res.Messages...)
	if len(res.ProfileDelta) > 0 {
		if s.Profile == nil {
			s.Profile = map[string]string{}
		}
		for k, v := range res.ProfileDelta {
			s.Profile[k] = v
		}
	}
}

// NodeResult is the partial state update returned by a capability node:
// new messages plus an optional profile delta.
type NodeResult struct {
	Messages     []*schema.Message
	ProfileDelta map[string]string
}

// HistoryEntry is the wire form of one transcript message.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SerializeHistory flattens the transcript into (role, content) pairs.
func SerializeHistory(msgs []*schema.Message) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		out = append(out, HistoryEntry{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// LastAssistantReply scans the transcript backward for the latest assistant
// message, skipping the end-of-turn marker. Returns NoResponseFallback when
// the transcript holds no assistant content.
func LastAssistantReply(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil || m.Role != schema.Assistant {
			continue
		}
		if m.Content == EndMarker || strings.TrimSpace(m.Content) == "" {
			continue
		}
		return m.Content
	}
	return NoResponseFallback
}
