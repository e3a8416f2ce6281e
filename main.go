package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/frankie-agent/server/internal/agent/checkpoint"
	"github.com/frankie-agent/server/internal/agent/facade"
	"github.com/frankie-agent/server/internal/agent/lease"
	"github.com/frankie-agent/server/internal/agent/model"
	"github.com/frankie-agent/server/internal/core"
	logx "github.com/frankie-agent/server/pkg/logger"
	pkgredis "github.com/frankie-agent/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the agent, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Chat          model.ChatModelConfig
	Classifier    model.ClassifierModelConfig
	Intents       model.IntentConfig
	Provider      model.ProviderConfig
	ToolSelection model.ToolSelectionConfig
	Timeouts      model.TimeoutConfig
	Conversation  model.ConversationConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.FromEnv()})

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	fmt.Println("Connected to Redis successfully")

	leases := lease.NewManager(lease.Config{
		APIKey:        envCfg.APIKey,
		BaseURL:       envCfg.BaseURL,
		Chat:          envCfg.Chat,
		Classifier:    envCfg.Classifier,
		Provider:      envCfg.Provider,
		ToolSelection: envCfg.ToolSelection,
		Timeouts:      envCfg.Timeouts,
	})
	store := checkpoint.NewRedisStore(rdb, envCfg.Conversation.TTL)
	agent := facade.New(leases, store, envCfg.Intents, envCfg.Conversation, envCfg.Timeouts)

	testQueries := []struct {
		description string
		query       string
	}{
		{
			description: "Initial greeting",
			query:       "Hey Frankie, how's it going?",
		},
		{
			description: "Time lookup",
			query:       "What time is it for me right now?",
		},
		{
			description: "Repository research",
			query:       "What does the cloudwego/eino repository do? Check its README.",
		},
		{
			description: "Follow-up with thanks",
			query:       "Thanks, that's all I needed.",
		},
	}

	conversationID := "demo-conversation-1"

	for i, test := range testQueries {
		fmt.Printf("\nTest %d: %s\n", i+1, test.description)
		fmt.Printf("Query: %q\n", test.query)
		fmt.Println("Processing...")

		response := agent.Invoke(ctx, conversationID, test.query)
		fmt.Printf("Success: %v\n", response.Success)
		fmt.Printf("Response %d: %s\n", i+1, response.Message)
		fmt.Printf("Transcript length: %d\n", len(response.History))
		fmt.Println("────────────────────────────────────────────")

		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("All conversation turns completed.")
}
