package research

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankie-agent/server/internal/agent/lease"
	"github.com/frankie-agent/server/internal/agent/model"
)

func TestRunWithoutProviderToolsDegrades(t *testing.T) {
	state := model.NewConversationState()
	state.Messages = append(state.Messages, schema.UserMessage("what's in cloudwego/eino?"))

	res := New(4).Run(context.Background(), state, &lease.Lease{ID: "lease-1"})

	require.Len(t, res.Messages, 1)
	assert.Equal(t, schema.Assistant, res.Messages[0].Role)
	assert.Equal(t, model.FailureMarker, res.Messages[0].Content,
		"no tools means the capability reports itself as not equipped")
}
