package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sudipbhatta12/political-app-sub000/internal/models"
	"github.com/sudipbhatta12/political-app-sub000/internal/sentiment"
)

// NarrativeInput is the structured data a narrator summarizes.
type NarrativeInput struct {
	Date         time.Time
	Overall      sentiment.Stats
	TotalSources int
	// TopSummaries is limited to the most active groups by the caller.
	TopSummaries []models.ReportSourceSummary
}

// Narrative is the summary text tagged with where it came from, so callers
// can tell an AI narrative from a synthesized one without a side channel.
type Narrative struct {
	Text   string
	Source models.SummarySource
}

// Narrator produces a natural-language report narrative. Implementations
// are treated as unreliable: any failure falls back to the algorithmic
// summary and never fails report generation.
type Narrator interface {
	Summarize(ctx context.Context, input NarrativeInput) (string, error)
}

const narrativeSystemPrompt = `You are a political media analyst. Given one day's ` +
	`aggregated social-media sentiment figures for candidates, parties and news outlets, ` +
	`write a short neutral narrative summary.

Rules:
- One paragraph, 3 to 5 sentences
- Mention the overall sentiment balance and the most discussed sources
- Use the provided percentages; do not invent numbers
- Plain text only, no markdown`

// OpenAINarrator asks an OpenAI-compatible chat model for the narrative.
type OpenAINarrator struct {
	client *openai.Client
	model  string
}

// Ensure OpenAINarrator implements Narrator
var _ Narrator = (*OpenAINarrator)(nil)

// NewOpenAINarrator creates a narrator using the given API key and model.
func NewOpenAINarrator(apiKey, model string) *OpenAINarrator {
	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &OpenAINarrator{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Summarize makes a single completion attempt; retry policy is the
// caller's concern (there is none, by contract).
func (n *OpenAINarrator) Summarize(ctx context.Context, input NarrativeInput) (string, error) {
	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: narrativeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildNarrativePrompt(input)},
		},
		MaxTokens:   400,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("chat completion returned empty narrative")
	}
	return text, nil
}

func buildNarrativePrompt(input NarrativeInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Date: %s\n", input.Date.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Posts analyzed: %d across %d sources, %d comments total\n",
		input.Overall.PostCount, input.TotalSources, input.Overall.TotalComments)
	fmt.Fprintf(&sb, "Overall sentiment: %.1f%% positive, %.1f%% negative, %.1f%% neutral\n\n",
		input.Overall.AvgPositive, input.Overall.AvgNegative, input.Overall.AvgNeutral)

	sb.WriteString("Most active sources:\n")
	for _, s := range input.TopSummaries {
		fmt.Fprintf(&sb, "- %s (%s): %d posts, %d comments, %.1f%% positive / %.1f%% negative\n",
			s.SourceName, s.SourceType, s.PostCount, s.CommentCount, s.AvgPositive, s.AvgNegative)
	}

	return sb.String()
}
