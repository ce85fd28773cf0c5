package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/example/studybot/pkg/models"
)

const systemPrompt = `You are an expert academic tutor. Your task is to evaluate a student's answer for a quiz question.
Carefully compare the "Student's Answer" to the "Reference Answer" in the context of the "Quiz Question".
Determine the correctness of the student's answer. The verdict must be one of these exact options: ["correct", "partial", "incorrect"].
Provide concise, constructive feedback. Explain why the answer is correct or incorrect, highlighting key concepts the student missed or misunderstood.
Your final output must be a single, valid JSON object with two keys: "verdict" and "feedback". Do not include any other text outside of the JSON structure.`

// Grader evaluates learner answers against reference answers through an
// OpenAI-compatible chat completion endpoint (DeepSeek by default). The
// resulting quality signal is consumed by the review workflow like any
// other; the core never depends on how the judgment was produced.
type Grader struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// New creates a grader client for the given endpoint.
func New(apiKey, baseURL, model string) (*Grader, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("DEEPSEEK_API_KEY is not set")
	}
	return &Grader{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Message represents a message in the chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the chat completion API
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
}

// ResponseFormat constrains the completion output shape
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatResponse represents a response from the chat completion API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Evaluation is the structured grading result.
type Evaluation struct {
	Quality  models.Quality
	Feedback string
}

type verdictPayload struct {
	Verdict  string `json:"verdict"`
	Feedback string `json:"feedback"`
}

// Grade compares a learner's answer with the reference answer and maps the
// model's verdict onto a review quality signal.
func (g *Grader) Grade(ctx context.Context, question, referenceAnswer, learnerAnswer string) (*Evaluation, error) {
	userPrompt := fmt.Sprintf(
		"**Quiz Question:**\n%s\n\n**Reference Answer:**\n%s\n\n**Student's Answer:**\n%s",
		question, referenceAnswer, learnerAnswer,
	)

	request := ChatRequest{
		Model: g.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		Temperature:    0.2,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewBuffer(requestData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	var payload verdictPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse verdict JSON: %v", err)
	}

	quality, err := models.ParseQuality(payload.Verdict)
	if err != nil {
		return nil, fmt.Errorf("model returned unexpected verdict %q", payload.Verdict)
	}
	return &Evaluation{Quality: quality, Feedback: payload.Feedback}, nil
}
