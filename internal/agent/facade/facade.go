// Package facade is the single entry point for one conversation turn. It
// walks a fixed stage order (acquire resources, build the engine, execute,
// extract the reply, release) and always produces a Response, even when a
// stage fails.
package facade

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/frankie-agent/server/internal/agent/classifier"
	"github.com/frankie-agent/server/internal/agent/graph"
	"github.com/frankie-agent/server/internal/agent/lease"
	"github.com/frankie-agent/server/internal/agent/model"
	"github.com/frankie-agent/server/internal/agent/research"
	"github.com/frankie-agent/server/internal/agent/userinfo"
	"github.com/frankie-agent/server/internal/core/errx"
	logx "github.com/frankie-agent/server/pkg/logger"
)

const (
	timeoutFallback = "Sorry, the request timed out before it could finish. Please try again."
	genericFallback = "Sorry, something went wrong while processing your request. Please try again."
)

// Response is what the caller gets for every invocation: a flag, the reply
// text, and the serialized transcript. A failed turn still carries a
// human-readable message.
type Response struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	History []model.HistoryEntry `json:"history"`
}

// Leaser acquires and releases per-request resources. *lease.Manager is the
// production implementation.
type Leaser interface {
	Acquire(ctx context.Context) (*lease.Lease, error)
	Release(l *lease.Lease)
}

var _ Leaser = (*lease.Manager)(nil)

// Facade orchestrates turns over shared, request-independent collaborators.
type Facade struct {
	leases   Leaser
	store    model.CheckpointStore
	info     *userinfo.Provider
	intents  model.IntentConfig
	conv     model.ConversationConfig
	timeouts model.TimeoutConfig
}

func New(
	leases Leaser,
	store model.CheckpointStore,
	intents model.IntentConfig,
	conv model.ConversationConfig,
	timeouts model.TimeoutConfig,
) *Facade {
	return &Facade{
		leases:   leases,
		store:    store,
		info:     userinfo.New(),
		intents:  intents,
		conv:     conv,
		timeouts: timeouts,
	}
}

// Invoke runs one turn. Resources are acquired fresh, released on every
// path, and failures resolve to a user-facing message rather than an error:
// the caller always has something to show.
func (f *Facade) Invoke(ctx context.Context, conversationID, message string) Response {
	l, err := f.leases.Acquire(ctx)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("resource acquisition failed")
		return failedResponse(f.explainFailure(ctx, nil, err), nil)
	}
	defer f.leases.Release(l)

	engine := f.buildEngine(l)

	execCtx, cancel := context.WithTimeout(ctx, f.timeouts.APIRequest)
	defer cancel()

	state, err := engine.Execute(execCtx, conversationID, message)
	var history []model.HistoryEntry
	if state != nil {
		history = model.SerializeHistory(state.Messages)
	}
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("turn execution failed")
		return failedResponse(f.explainFailure(ctx, l, err), history)
	}

	return Response{
		Success: true,
		Message: model.LastAssistantReply(state.Messages),
		History: history,
	}
}

// buildEngine assembles the per-request node set around the leased clients.
func (f *Facade) buildEngine(l *lease.Lease) *graph.Engine {
	intentClassifier := classifier.New(l.ClassifierModel, f.intents, f.timeouts.LLMRequest)
	researcher := research.New(f.conv.AgentMaxSteps)

	nodes := []graph.Node{
		graph.NewChatNode(l.ChatModel),
		graph.NewClarifyNode(l.ChatModel),
		graph.NewSearchToolsNode(l.ChatModel),
		graph.NewCodeToolsNode(l.ChatModel),
		graph.NewTimeNode(f.info),
		graph.NewProfileNode(),
		graph.NewEndNode(),
		graph.NewFuncNode(graph.NodeGithubResearch, func(ctx context.Context, state *model.ConversationState) (model.NodeResult, error) {
			return researcher.Run(ctx, state, l), nil
		}),
	}

	router := graph.RouterContext{
		Classifier:   intentClassifier,
		IntentMap:    f.intents.NodeMapping,
		FallbackNode: f.intents.FallbackNode,
	}
	return graph.NewEngine(f.store, router, nodes, f.conv.MaxTransitions)
}

// explainFailure turns an internal error into user-facing copy. It tries a
// short, separately bounded model call first; if no model is available or
// the call fails, it falls back to hardcoded category-specific copy.
func (f *Facade) explainFailure(ctx context.Context, l *lease.Lease, cause error) string {
	fallback := genericFallback
	category := "an internal error"
	if isTimeout(cause) {
		fallback = timeoutFallback
		category = "a timeout while processing the request"
	}

	if l == nil || l.ChatModel == nil {
		return fallback
	}

	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeouts.ErrorReport)
	defer cancel()

	out, err := l.ChatModel.Generate(reportCtx, []*schema.Message{
		schema.SystemMessage("You are a helpful assistant. In one or two short sentences, apologize to the user and explain that their request failed because of " + category + ". Do not include technical details."),
	})
	if err != nil || out == nil || strings.TrimSpace(out.Content) == "" {
		logx.Warn().Err(err).Msg("failure explanation call failed, using hardcoded copy")
		return fallback
	}
	return out.Content
}

// failedResponse closes the transcript with the explanation message so the
// caller still sees a coherent (user, assistant) exchange.
func failedResponse(message string, history []model.HistoryEntry) Response {
	history = append(history, model.HistoryEntry{Role: string(schema.Assistant), Content: message})
	return Response{Success: false, Message: message, History: history}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errx.KindOf(err) == errx.KindExecTimeout
}
