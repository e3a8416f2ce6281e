package model

import "time"

// ================ Config ================

type ChatModelConfig struct {
	Model       string  `envconfig:"CHAT_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"CHAT_TEMPERATURE" default:"0.4"`
}

type ClassifierModelConfig struct {
	Model       string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.0-flash-lite"`
	MaxTokens   int     `envconfig:"CLASSIFIER_MAX_TOKENS" default:"200"`
	Temperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0.1"`
}

// TimeoutConfig bounds every suspension point in a request. Each site is
// individually catchable; a slow collaborator degrades the reply, it never
// hangs the request.
type TimeoutConfig struct {
	LLMRequest  time.Duration `envconfig:"LLM_REQUEST_TIMEOUT" default:"300s"`
	MCPInit     time.Duration `envconfig:"MCP_INIT_TIMEOUT" default:"90s"`
	MCPCleanup  time.Duration `envconfig:"MCP_CLEANUP_TIMEOUT" default:"20s"`
	APIRequest  time.Duration `envconfig:"API_REQUEST_TIMEOUT" default:"120s"`
	ErrorReport time.Duration `envconfig:"ERROR_REPORT_TIMEOUT" default:"8s"`
}

// IntentConfig carries the classification vocabulary and the intent→node
// mapping. The mapping is configuration data; the router's pre-mapping rules
// (assistant tail ends the turn, prior failure ends the turn) are not.
type IntentConfig struct {
	Labels        []string          `envconfig:"INTENT_LABELS" default:"chit_chat,search,code,github_research,time,profile,other"`
	FallbackLabel string            `envconfig:"INTENT_FALLBACK_LABEL" default:"other"`
	NodeMapping   map[string]string `envconfig:"INTENT_NODE_MAPPING" default:"chit_chat:chatbot,search:search_tools,code:code_tools,github_research:github_research,time:time,profile:profile"`
	FallbackNode  string            `envconfig:"FALLBACK_NODE" default:"clarify"`
}

// ProviderConfig describes how the external tool-provider subprocess is
// launched. An empty GithubToken disables the provider entirely; the request
// then runs with zero external tools.
type ProviderConfig struct {
	GithubToken string   `envconfig:"GITHUB_TOKEN"`
	Command     string   `envconfig:"MCP_COMMAND" default:"docker"`
	Args        []string `envconfig:"MCP_ARGS" default:"run,-i,--rm,-e,GITHUB_PERSONAL_ACCESS_TOKEN,ghcr.io/github/github-mcp-server"`
}

// ToolSelectionConfig bounds the provider tool set handed to the model:
// exact names first, pattern matches fill, hard cap on the total.
type ToolSelectionConfig struct {
	Allowlist []string `envconfig:"MCP_TOOL_ALLOWLIST" default:"get_file_contents"`
	Patterns  []string `envconfig:"MCP_TOOL_PATTERNS" default:"search,list"`
	MaxTools  int      `envconfig:"MCP_TOOL_CAP" default:"8"`
}

type ConversationConfig struct {
	TTL            time.Duration `envconfig:"CONVERSATION_TTL" default:"15m"`
	MaxTransitions int           `envconfig:"GRAPH_MAX_TRANSITIONS" default:"12"`
	AgentMaxSteps  int           `envconfig:"AGENT_MAX_STEPS" default:"8"`
}
