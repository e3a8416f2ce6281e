package graph

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/frankie-agent/server/internal/agent/model"
	logx "github.com/frankie-agent/server/pkg/logger"
)

// Node names. The intent→node mapping is configuration; these constants are
// the targets the built-in routing rules and the engine registry use.
const (
	NodeChatbot        = "chatbot"
	NodeSearchTools    = "search_tools"
	NodeCodeTools      = "code_tools"
	NodeGithubResearch = "github_research"
	NodeTime           = "time"
	NodeProfile        = "profile"
	NodeClarify        = "clarify"
	NodeEnd            = "end"
)

// Classifier labels a user utterance with one symbolic intent.
type Classifier interface {
	Classify(ctx context.Context, text string) string
}

// RouterContext carries everything Route needs, passed explicitly on every
// call. The router itself holds no state between evaluations.
type RouterContext struct {
	Classifier   Classifier
	IntentMap    map[string]string
	FallbackNode string
}

// Route picks the next node from the current state. Rules 1-4 are fixed
// invariants evaluated before the configurable intent mapping:
//
//  1. empty transcript → chat node
//  2. (user, assistant failure marker) tail → terminal, never re-enter a
//     capability that just failed
//  3. last message is assistant → terminal, nothing left to act on
//  4. last message is tool output → chat node, the model reacts to it
//
// Only then is the user text classified and mapped; unknown intents land on
// the configured fallback node.
func Route(ctx context.Context, rc RouterContext, state *model.ConversationState) string {
	msgs := state.Messages
	if len(msgs) == 0 {
		return NodeChatbot
	}

	last := msgs[len(msgs)-1]
	if len(msgs) >= 2 &&
		msgs[len(msgs)-2].Role == schema.User &&
		last.Role == schema.Assistant &&
		last.Content == model.FailureMarker {
		return NodeEnd
	}

	switch last.Role {
	case schema.Assistant:
		return NodeEnd
	case schema.Tool:
		return NodeChatbot
	}

	text := strings.TrimSpace(last.Content)
	if text == "" {
		return NodeChatbot
	}

	intent := rc.Classifier.Classify(ctx, text)
	if node, ok := rc.IntentMap[intent]; ok {
		logx.Debug().Str("intent", intent).Str("node", node).Msg("routed by intent")
		return node
	}
	logx.Debug().Str("intent", intent).Str("node", rc.FallbackNode).Msg("unmapped intent, using fallback node")
	return rc.FallbackNode
}
