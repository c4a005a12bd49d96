package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
)

// reviewTimeout bounds the oracle call; expiry is treated as an oracle
// failure and aborts the merge.
const reviewTimeout = 30 * time.Second

const reviewSystemPrompt = `You are a code and work-product reviewer for a project management tool.
Given a task and the content submitted against it, judge how well the submission fulfils the task.
Respond with a JSON object only, no prose: {"score": <integer 0-100>, "feedback": "<2-3 sentence review>"}`

// OpenAIReviewer scores submissions with an OpenAI chat completion. The API
// key is per project and supplied on every call; a client is built per call
// so no credential outlives the request.
type OpenAIReviewer struct {
	Model string
}

func NewOpenAIReviewer(model string) *OpenAIReviewer {
	return &OpenAIReviewer{Model: model}
}

type reviewVerdict struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Review implements the oracle contract: quota/auth/parse failures all
// surface as errors so the caller can abort the merge.
func (r *OpenAIReviewer) Review(ctx context.Context, apiKey, title, description, content string) (models.AIReview, error) {
	if apiKey == "" {
		return models.AIReview{}, errors.New("project has no AI review credential configured")
	}

	ctx, cancel := context.WithTimeout(ctx, reviewTimeout)
	defer cancel()

	client := openai.NewClient(option.WithAPIKey(apiKey))
	prompt := fmt.Sprintf("Task title: %s\nTask description: %s\nSubmitted content: %s",
		title, description, content)

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(reviewSystemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return models.AIReview{}, fmt.Errorf("review request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return models.AIReview{}, errors.New("review response contained no choices")
	}

	verdict, err := parseVerdict(completion.Choices[0].Message.Content)
	if err != nil {
		return models.AIReview{}, err
	}

	return models.AIReview{
		Feedback: verdict.Feedback,
		Score:    verdict.Score,
		PassedAI: models.Passed(verdict.Score),
	}, nil
}

// parseVerdict extracts the JSON verdict, tolerating markdown fences some
// models wrap around JSON output.
func parseVerdict(raw string) (reviewVerdict, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var verdict reviewVerdict
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil {
		return reviewVerdict{}, fmt.Errorf("failed to parse review response: %w", err)
	}
	if verdict.Score < 0 || verdict.Score > 100 {
		return reviewVerdict{}, fmt.Errorf("review score %d out of range", verdict.Score)
	}
	return verdict, nil
}
