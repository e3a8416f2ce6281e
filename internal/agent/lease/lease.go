// Package lease manages per-request resources: the chat-model clients and
// the external tool-provider connection. Every request acquires a fresh
// lease and releases it when done, so no request can inherit another's
// wedged provider or stale client.
package lease

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/frankie-agent/server/internal/agent/mcpx"
	"github.com/frankie-agent/server/internal/agent/model"
	"github.com/frankie-agent/server/internal/core/errx"
	logx "github.com/frankie-agent/server/pkg/logger"
)

// Config aggregates everything the manager needs to build a lease.
type Config struct {
	APIKey        string
	BaseURL       string
	Chat          model.ChatModelConfig
	Classifier    model.ClassifierModelConfig
	Provider      model.ProviderConfig
	ToolSelection model.ToolSelectionConfig
	Timeouts      model.TimeoutConfig
}

// Lease holds the per-request resources. ProviderTools is empty when the
// provider is disabled or its handshake failed; execution proceeds with
// zero external tools in that case.
type Lease struct {
	ID              string
	ChatModel       einomodel.ToolCallingChatModel
	ClassifierModel einomodel.BaseChatModel
	Provider        *mcpx.Provider
	ProviderTools   []tool.BaseTool

	released atomic.Bool
}

// Manager builds and tears down leases.
type Manager struct {
	cfg Config

	// releaseHook observes every completed release. Tests use it to assert
	// the exactly-once guarantee.
	releaseHook func(*Lease)
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// SetReleaseHook registers an observer called after each release completes.
func (m *Manager) SetReleaseHook(hook func(*Lease)) { m.releaseHook = hook }

// Acquire builds the request's model clients and, when a credential is
// configured, connects the tool provider. Model-client failure is fatal;
// provider failure only degrades the lease to zero tools.
func (m *Manager) Acquire(ctx context.Context) (*Lease, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  m.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if m.cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = m.cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, errx.NewKind(errx.KindFatalSetup, err, "error creating Gemini client")
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       m.cfg.Chat.Model,
		Temperature: &m.cfg.Chat.Temperature,
		MaxTokens:   &m.cfg.Chat.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		return nil, errx.NewKind(errx.KindFatalSetup, err, "error creating chat model")
	}

	classifierModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       m.cfg.Classifier.Model,
		Temperature: &m.cfg.Classifier.Temperature,
		MaxTokens:   &m.cfg.Classifier.MaxTokens,
	})
	if err != nil {
		return nil, errx.NewKind(errx.KindFatalSetup, err, "error creating classifier model")
	}

	l := &Lease{
		ID:              uuid.NewString(),
		ChatModel:       chatModel,
		ClassifierModel: classifierModel,
	}

	if m.cfg.Provider.GithubToken == "" {
		logx.Debug().Str("lease_id", l.ID).Msg("no provider credential, running without external tools")
		return l, nil
	}

	initCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeouts.MCPInit)
	defer cancel()

	provider, err := mcpx.Connect(initCtx, m.cfg.Provider)
	if err != nil {
		logx.Warn().Err(err).Str("lease_id", l.ID).Msg("tool provider unavailable, degrading to zero tools")
		return l, nil
	}

	selected := mcpx.SelectTools(provider.Tools(), m.cfg.ToolSelection)
	l.Provider = provider
	l.ProviderTools = mcpx.AdaptTools(provider, selected)
	logx.Info().Str("lease_id", l.ID).Int("tools", len(selected)).Msg("lease acquired with provider tools")
	return l, nil
}

// Release tears the lease down. Idempotent: only the first call does work.
// Provider shutdown is raced against the cleanup timeout; a wedged
// subprocess is abandoned with a warning, never an error.
func (m *Manager) Release(l *Lease) {
	if l == nil || !l.released.CompareAndSwap(false, true) {
		return
	}

	if l.Provider != nil {
		done := make(chan error, 1)
		go func() { done <- l.Provider.Close() }()

		select {
		case err := <-done:
			if err != nil {
				logx.Warn().Err(err).Str("lease_id", l.ID).Msg("tool provider close reported an error")
			}
		case <-time.After(m.cfg.Timeouts.MCPCleanup):
			logx.Warn().
				Str("lease_id", l.ID).
				Dur("timeout", m.cfg.Timeouts.MCPCleanup).
				Msg("tool provider did not shut down in time, abandoning")
		}
	}

	if m.releaseHook != nil {
		m.releaseHook(l)
	}
	logx.Debug().Str("lease_id", l.ID).Msg("lease released")
}
