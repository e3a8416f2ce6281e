package model

import "context"

// CheckpointStore persists ConversationState snapshots keyed by conversation
// id. The conversation graph owns the checkpoint exclusively: read before
// execution, written after every node transition. Load returns (nil, nil)
// when no checkpoint exists for the id.
type CheckpointStore interface {
	Load(ctx context.Context, conversationID string) (*ConversationState, error)
	Save(ctx context.Context, conversationID string, state *ConversationState) error
}
