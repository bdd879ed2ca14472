package generator

import (
	"context"
	"errors"
	"fmt"

	"messengerbots/internal/core/domain"

	"github.com/revrost/go-openrouter"
)

var errNoChoices = errors.New("no choices in completion")

type OpenRouterClient interface {
	CreateChatCompletion(ctx context.Context,
		request openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

// OpenRouter generates chat replies through the OpenRouter completion API.
type OpenRouter struct {
	client       OpenRouterClient
	systemPrompt string
}

func NewOpenRouterClient(apiKey string) *openrouter.Client {
	return openrouter.NewClient(
		apiKey,
		openrouter.WithXTitle("messengerbots"),
	)
}

func NewOpenRouter(client OpenRouterClient, systemPrompt string) *OpenRouter {
	return &OpenRouter{
		client:       client,
		systemPrompt: systemPrompt,
	}
}

// GenerateFromPrompt sends the system prompt followed by prompts. The model of the last prompt is used.
func (c *OpenRouter) GenerateFromPrompt(
	ctx context.Context, prompts []domain.Prompt) (domain.ModelResponse, error) {
	if len(prompts) == 0 {
		return domain.ModelResponse{}, domain.ErrEmptyPrompt
	}

	messages := make([]openrouter.ChatCompletionMessage, 0, len(prompts)+1)
	messages = append(messages, openrouter.ChatCompletionMessage{
		Role: openrouter.ChatMessageRoleSystem,
		Content: openrouter.Content{
			Text: c.systemPrompt,
		},
	})

	for _, prompt := range prompts {
		role := openrouter.ChatMessageRoleUser
		if prompt.Author == domain.System {
			role = openrouter.ChatMessageRoleAssistant
		}

		messages = append(messages, openrouter.ChatCompletionMessage{
			Role: role,
			Content: openrouter.Content{
				Text: prompt.Prompt,
			},
		})
	}

	ccr := openrouter.ChatCompletionRequest{
		Messages: messages,
		Model:    prompts[len(prompts)-1].Model.Identifier,
	}

	resp, err := c.client.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return domain.ModelResponse{}, fmt.Errorf("openrouter API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return domain.ModelResponse{}, fmt.Errorf("openrouter API error: %w", errNoChoices)
	}

	return domain.ModelResponse{
		Response: resp.Choices[0].Message.Content.Text,
		Metadata: domain.ResponseMetadata{
			Model:            resp.Model,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
