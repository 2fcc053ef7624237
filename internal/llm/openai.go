// Package llm generates the optional narrative section of the report from
// the computed analysis. The pipeline runs without it when no API key is
// configured.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"airmet/internal/analyze"
	"airmet/internal/logger"
)

const systemPrompt = "You are an environmental data analyst. Given daily weather and " +
	"air quality statistics for one city, write a short markdown interpretation " +
	"(three to five paragraphs, no headings). Describe the notable summaries and the " +
	"strongest weather-pollutant correlations, and state plainly when a correlation " +
	"is weak or based on few observations. Do not invent values that are not in the data."

// OpenAIClient handles OpenAI API interactions
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey, model string, log *logger.Logger) *OpenAIClient {
	if log == nil {
		log = logger.Global()
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log.WithComponent("llm"),
	}
}

// Narrative generates the interpretation section for the analysis result.
func (c *OpenAIClient) Narrative(ctx context.Context, result *analyze.Result) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("OpenAI client not initialized")
	}

	prompt, err := c.BuildPrompt(result)
	if err != nil {
		return "", err
	}

	reqCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(
		reqCtx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   2000,
			Temperature: 0.3,
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	narrative := resp.Choices[0].Message.Content
	c.log.Infof("Generated narrative with %d characters", len(narrative))
	return narrative, nil
}

// BuildPrompt constructs the user prompt from the analysis JSON.
func (c *OpenAIClient) BuildPrompt(result *analyze.Result) (string, error) {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal analysis result: %w", err)
	}
	return fmt.Sprintf("City: %s\nPeriod: %s to %s\n\nAnalysis results (JSON):\n%s\n",
		result.City, result.StartDate, result.EndDate, payload), nil
}
