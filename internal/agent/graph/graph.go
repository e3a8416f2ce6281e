// Package graph drives one conversation turn: route the current state to a
// capability node, run it, merge its update, checkpoint, repeat until the
// terminal node fires or the transition guard trips.
package graph

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/frankie-agent/server/internal/agent/model"
	logx "github.com/frankie-agent/server/pkg/logger"
)

// Engine executes conversation turns. One engine is built per request so
// its nodes can hold that request's leased model clients.
type Engine struct {
	store          model.CheckpointStore
	router         RouterContext
	nodes          map[string]Node
	maxTransitions int
}

func NewEngine(store model.CheckpointStore, router RouterContext, nodes []Node, maxTransitions int) *Engine {
	byName := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byName[n.Name()] = n
	}
	return &Engine{
		store:          store,
		router:         router,
		nodes:          byName,
		maxTransitions: maxTransitions,
	}
}

// Execute loads (or initializes) the conversation, appends the user message
// and iterates router→node→merge→checkpoint until the terminal node has run.
// The iteration count is bounded: when the guard trips, the deterministic
// failure message is appended and the state returned, never an endless loop.
func (e *Engine) Execute(ctx context.Context, conversationID, userMessage string) (*model.ConversationState, error) {
	state, err := e.store.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = model.NewConversationState()
	}

	state.Messages = append(state.Messages, schema.UserMessage(userMessage))
	e.persist(ctx, conversationID, state)

	for transition := 0; transition < e.maxTransitions; transition++ {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		target := Route(ctx, e.router, state)
		node, ok := e.nodes[target]
		if !ok {
			logx.Error().Str("node", target).Str("conversation_id", conversationID).Msg("router selected an unregistered node")
			state.Apply(failureUpdate())
			e.persist(ctx, conversationID, state)
			return state, nil
		}

		logx.Debug().
			Str("conversation_id", conversationID).
			Int("transition", transition).
			Str("node", target).
			Msg("executing node")

		result, err := node.Run(ctx, state)
		if err != nil {
			return state, err
		}
		state.Apply(result)
		e.persist(ctx, conversationID, state)

		if target == NodeEnd {
			return state, nil
		}
	}

	logx.Warn().
		Str("conversation_id", conversationID).
		Int("max_transitions", e.maxTransitions).
		Msg("transition guard tripped, ending turn with failure message")
	state.Apply(failureUpdate())
	e.persist(ctx, conversationID, state)
	return state, nil
}

// persist checkpoints the state. Storage failures are logged, not fatal: a
// checkpoint blip must not discard an otherwise complete reply.
func (e *Engine) persist(ctx context.Context, conversationID string, state *model.ConversationState) {
	if err := e.store.Save(ctx, conversationID, state); err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("checkpoint save failed")
	}
}

func failureUpdate() model.NodeResult {
	return model.NodeResult{Messages: []*schema.Message{schema.AssistantMessage(model.FailureMarker, nil)}}
}
