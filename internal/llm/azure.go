package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
)

// AzureCompleter calls a chat deployment on Azure OpenAI
type AzureCompleter struct {
	client         *azopenai.Client
	deploymentName string
	temperature    float32
	maxTokens      int32
	chatMaxTokens  int32
}

// NewAzureCompleter creates a completer for an Azure OpenAI deployment
func NewAzureCompleter(endpoint, apiKey, deploymentName string) (*AzureCompleter, error) {
	if endpoint == "" || apiKey == "" || deploymentName == "" {
		return nil, fmt.Errorf("Azure OpenAI configuration missing: ensure AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY, and AZURE_OPENAI_DEPLOYMENT_NAME are set")
	}

	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientWithKeyCredential(endpoint, keyCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}

	return &AzureCompleter{
		client:         client,
		deploymentName: deploymentName,
		temperature:    0,
		maxTokens:      16,
		chatMaxTokens:  500,
	}, nil
}

// Complete implements Completer
func (c *AzureCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, []azopenai.ChatRequestMessageClassification{
		&azopenai.ChatRequestUserMessage{
			Content: azopenai.NewChatRequestUserMessageContent(prompt),
		},
	}, c.maxTokens, c.temperature)
}

// Chat implements Chatter
func (c *AzureCompleter) Chat(ctx context.Context, messages []Message) (string, error) {
	chatMessages := make([]azopenai.ChatRequestMessageClassification, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			chatMessages[i] = &azopenai.ChatRequestSystemMessage{
				Content: azopenai.NewChatRequestSystemMessageContent(msg.Content),
			}
		case RoleUser:
			chatMessages[i] = &azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent(msg.Content),
			}
		case RoleAssistant:
			chatMessages[i] = &azopenai.ChatRequestAssistantMessage{
				Content: azopenai.NewChatRequestAssistantMessageContent(msg.Content),
			}
		default:
			return "", fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}
	return c.complete(ctx, chatMessages, c.chatMaxTokens, 0.7)
}

// DescribeImage implements ImageDescriber. The image travels inline as
// a data URL.
func (c *AzureCompleter) DescribeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	parts := []azopenai.ChatCompletionRequestMessageContentPartClassification{
		&azopenai.ChatCompletionRequestMessageContentPartText{Text: to.Ptr(prompt)},
		&azopenai.ChatCompletionRequestMessageContentPartImage{
			ImageURL: &azopenai.ChatCompletionRequestMessageContentPartImageURL{URL: to.Ptr(dataURL)},
		},
	}
	return c.complete(ctx, []azopenai.ChatRequestMessageClassification{
		&azopenai.ChatRequestUserMessage{
			Content: azopenai.NewChatRequestUserMessageContent(parts),
		},
	}, 32, c.temperature)
}

func (c *AzureCompleter) complete(ctx context.Context, messages []azopenai.ChatRequestMessageClassification, maxTokens int32, temperature float32) (string, error) {
	resp, err := c.client.GetChatCompletions(ctx, azopenai.ChatCompletionsOptions{
		Messages:       messages,
		MaxTokens:      to.Ptr(maxTokens),
		Temperature:    to.Ptr(temperature),
		DeploymentName: to.Ptr(c.deploymentName),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("Azure OpenAI completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from Azure OpenAI")
	}
	if resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("empty response from Azure OpenAI")
	}
	return *resp.Choices[0].Message.Content, nil
}
