package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI models and
// any OpenAI-compatible endpoint (Ollama's /v1 API included).
type OpenAIProvider struct {
	client *openai.Client
	name   string
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		name:   "openai",
		config: config,
	}, nil
}

// NewOllamaProvider creates a provider talking to a local Ollama server
// through its OpenAI-compatible API. No API key is needed.
func NewOllamaProvider(config Config) (*OpenAIProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}

	clientConfig := openai.DefaultConfig("ollama") // Ollama ignores the key
	clientConfig.BaseURL = baseURL

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		name:   "ollama",
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Lightweight API call; also surfaces key problems early
	_, err := p.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s API check failed: %v\n", p.name, err)
		return false
	}
	return true
}

// Narrate generates a narration using the Chat Completions API
func (p *OpenAIProvider) Narrate(ctx context.Context, req NarrateRequest) (*NarrateResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Report, req.Documents)
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a careful assistant that narrates claimcheck reports with strict adherence to the document allowlist.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3, // Lower temperature for more focused, factual output
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	narration := strings.TrimSpace(resp.Choices[0].Message.Content)

	mentioned := mentionedDocuments(narration, req.Documents)

	// CRITICAL: the allowlist check runs on everything document-shaped in
	// the narration, not just allowlisted hits
	if p.config.StrictAllowlist {
		if leak := findAllowlistLeak(narration, req.Documents); leak != "" {
			return nil, fmt.Errorf("ALLOWLIST LEAK: narration mentioned unchecked document: %s", leak)
		}
	}

	return &NarrateResponse{
		Narration:          narration,
		MentionedDocuments: mentioned,
		Model:              model,
		TokensUsed:         resp.Usage.TotalTokens,
	}, nil
}
