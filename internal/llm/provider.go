package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bistro/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// GitHubModelsURL is the OpenAI-compatible endpoint of GitHub Models
const GitHubModelsURL = "https://models.inference.ai.azure.com"

// ErrDisabled is returned by New when no provider is configured
var ErrDisabled = errors.New("llm provider disabled")

// Chat message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a chat history
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer sends a single prompt and returns the model's text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Chatter continues a multi-turn chat
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// ImageDescriber answers a prompt about one image
type ImageDescriber interface {
	DescribeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Provider is everything a configured model backend offers
type Provider interface {
	Completer
	Chatter
	ImageDescriber
}

// ModelCompleter adapts a langchaingo model
type ModelCompleter struct {
	model         llms.Model
	maxTokens     int
	chatMaxTokens int
	temperature   float64
}

// NewModelCompleter wraps model. Classification needs short, stable
// answers so temperature is zero.
func NewModelCompleter(model llms.Model) *ModelCompleter {
	return &ModelCompleter{model: model, maxTokens: 16, chatMaxTokens: 500, temperature: 0}
}

// Complete implements Completer
func (c *ModelCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithMaxTokens(c.maxTokens),
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	return out, nil
}

// Chat implements Chatter
func (c *ModelCompleter) Chat(ctx context.Context, messages []Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		var msgType llms.ChatMessageType
		switch msg.Role {
		case RoleSystem:
			msgType = llms.ChatMessageTypeSystem
		case RoleAssistant:
			msgType = llms.ChatMessageTypeAI
		case RoleUser:
			msgType = llms.ChatMessageTypeHuman
		default:
			return "", fmt.Errorf("unsupported message role: %s", msg.Role)
		}
		content = append(content, llms.TextParts(msgType, msg.Content))
	}
	return c.generate(ctx, content, c.chatMaxTokens, 0.7)
}

// DescribeImage implements ImageDescriber
func (c *ModelCompleter) DescribeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	content := []llms.MessageContent{{
		Role: llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{
			llms.TextPart(prompt),
			llms.BinaryPart(mimeType, image),
		},
	}}
	return c.generate(ctx, content, 32, c.temperature)
}

func (c *ModelCompleter) generate(ctx context.Context, content []llms.MessageContent, maxTokens int, temperature float64) (string, error) {
	resp, err := c.model.GenerateContent(ctx, content,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in model response")
	}
	return resp.Choices[0].Content, nil
}

// New builds the provider selected by cfg.Provider
func New(cfg config.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, ErrDisabled
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		return newOpenAI(cfg.Model, cfg.APIKey, cfg.BaseURL)
	case "github":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GITHUB_TOKEN environment variable is required for GitHub Models")
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = GitHubModelsURL
		}
		return newOpenAI(cfg.Model, cfg.APIKey, baseURL)
	case "azure":
		return NewAzureCompleter(cfg.Endpoint, cfg.APIKey, cfg.Deployment)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

func newOpenAI(model, token, baseURL string) (*ModelCompleter, error) {
	opts := []openai.Option{
		openai.WithModel(model),
		openai.WithToken(token),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI model: %w", err)
	}
	return NewModelCompleter(client), nil
}

// Ping checks the completer answers a trivial prompt
func Ping(ctx context.Context, c Completer) error {
	_, err := c.Complete(ctx, "Hello, are you working? Please respond with a short answer.")
	return err
}
