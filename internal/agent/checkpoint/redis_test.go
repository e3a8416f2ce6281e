package checkpoint

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankie-agent/server/internal/agent/model"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreLoadMissing(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)

	state, err := store.Load(context.Background(), "nope")
	require.NoError(t, err, "a missing checkpoint is not an error")
	assert.Nil(t, state)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	state := model.NewConversationState()
	state.Messages = append(state.Messages,
		schema.UserMessage("hello"),
		schema.AssistantMessage("hi, I'm Frankie", nil),
	)
	state.Profile["timezone"] = "Asia/Bangkok"

	require.NoError(t, store.Save(ctx, "conv-1", state))

	loaded, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, schema.User, loaded.Messages[0].Role)
	assert.Equal(t, "hi, I'm Frankie", loaded.Messages[1].Content)
	assert.Equal(t, "Asia/Bangkok", loaded.Profile["timezone"])
}

func TestRedisStoreSetsTTL(t *testing.T) {
	store, mr := newTestStore(t, 15*time.Minute)

	require.NoError(t, store.Save(context.Background(), "conv-ttl", model.NewConversationState()))
	assert.Equal(t, 15*time.Minute, mr.TTL("conversation:conv-ttl:state"))
}

func TestMemoryStoreSnapshotsAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	state := model.NewConversationState()
	state.Messages = append(state.Messages, schema.UserMessage("one"))
	require.NoError(t, store.Save(ctx, "conv-m", state))

	// Mutating the original must not change the stored snapshot.
	state.Messages = append(state.Messages, schema.UserMessage("two"))

	loaded, err := store.Load(ctx, "conv-m")
	require.NoError(t, err)
	assert.Len(t, loaded.Messages, 1)
}
