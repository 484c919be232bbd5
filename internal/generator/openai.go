package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"quizcraft/internal/domain"
)

// OpenAISource generates questions through the OpenAI chat completion API.
type OpenAISource struct {
	client *openai.Client
	model  string
}

// NewOpenAISource builds a source for the given API key. An empty model
// falls back to GPT-4o.
func NewOpenAISource(apiKey, model string) *OpenAISource {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAISource{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

const systemPrompt = `You are an expert quiz question generator. Generate one unique and challenging multiple choice question with exactly 4 answer options and one correct answer.

Output your response exactly in the following JSON format, with no additional text or explanations:

{
  "question": "Your unique and challenging question here",
  "answers": ["First option", "Second option", "Third option", "Fourth option"],
  "correct_answer": "The full text of the correct answer"
}

Rules:
1. Provide four answer choices without labeling them.
2. "correct_answer" must be verbatim-equal to exactly one entry of "answers".
3. Incorrect options should be plausible but clearly wrong.
4. Ensure the JSON is properly formatted with no extra characters.`

// Generate requests one question for the topic, avoiding the prompts listed
// in existing.
func (s *OpenAISource) Generate(ctx context.Context, topic string, existing []string) (domain.Question, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(topic, existing)},
		},
		MaxTokens:   300,
		Temperature: 0.8,
	})
	if err != nil {
		return domain.Question{}, fmt.Errorf("generate question: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Question{}, fmt.Errorf("generate question: empty completion")
	}
	question, err := ParseQuestion([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		return domain.Question{}, fmt.Errorf("generate question: %w", err)
	}
	return question, nil
}

func buildUserPrompt(topic string, existing []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate a quiz question about: %s\n", topic)
	if len(existing) > 0 {
		sb.WriteString("\nThe question must be different from all of these already-used questions:\n")
		for _, prompt := range existing {
			fmt.Fprintf(&sb, "- %s\n", prompt)
		}
	}
	return sb.String()
}

// questionPayload mirrors the JSON contract the model is instructed to emit.
type questionPayload struct {
	Question      string   `json:"question"`
	Answers       []string `json:"answers"`
	CorrectAnswer string   `json:"correct_answer"`
}

// ParseQuestion decodes a model completion into a validated question.
// Markdown code fences around the JSON are tolerated.
func ParseQuestion(raw []byte) (domain.Question, error) {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var payload questionPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return domain.Question{}, fmt.Errorf("parse completion: %w", err)
	}
	question := domain.Question{
		Prompt:        payload.Question,
		Options:       payload.Answers,
		CorrectAnswer: payload.CorrectAnswer,
	}
	if err := question.Validate(); err != nil {
		return domain.Question{}, err
	}
	return question, nil
}
