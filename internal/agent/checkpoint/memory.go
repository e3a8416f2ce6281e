package checkpoint

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/frankie-agent/server/internal/agent/model"
)

// MemoryStore keeps checkpoints in process memory. Snapshots are stored as
// JSON so callers never share mutable message slices with the store.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: map[string][]byte{}}
}

func (m *MemoryStore) Load(_ context.Context, conversationID string) (*model.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.states[conversationID]
	if !ok {
		return nil, nil
	}
	var state model.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *MemoryStore) Save(_ context.Context, conversationID string, state *model.ConversationState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.states[conversationID] = b
	m.mu.Unlock()
	return nil
}

var _ model.CheckpointStore = (*MemoryStore)(nil)
