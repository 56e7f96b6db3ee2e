package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// AIService drafts tasks from free text with an OpenAI chat model.
type AIService struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

type GeneratedTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []string   `json:"tags"`
}

// NewAIService returns nil when apiKey is empty. baseURL overrides the API
// endpoint when set.
func NewAIService(apiKey, baseURL string) *AIService {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
		now:    time.Now,
	}
}

const taskPrompt = `You extract actionable project tasks from text.

Current time: %s

Text:
%s

Respond with a JSON array only, no prose. Each element:
{
  "title": "short task title",
  "description": "details",
  "priority": "low" | "medium" | "high",
  "due_date": "ISO 8601 timestamp such as 2025-10-28T23:59:59Z, or null when no deadline is stated",
  "tags": ["lowercase", "labels"]
}

Resolve relative deadlines ("tomorrow", "next week") against the current time.
Return [] when the text contains no tasks.`

// GenerateTasksFromText asks the model for tasks described in text.
func (s *AIService) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(taskPrompt, s.now().Format(time.RFC3339), text),
			},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return tasks, nil
}

// stripCodeFence removes a surrounding markdown code fence, which models
// add despite being asked not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
