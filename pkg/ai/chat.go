package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const chatProvider = "chat-completions"

// ChatConfig configures an OpenAI-compatible chat completions backend
// (Groq, OpenAI, AI gateways).
type ChatConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// ChatClient is a minimal client for chat completion calls used for LLM analysis
type ChatClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	client      *http.Client
}

// NewChatClient creates a chat completions client.
func NewChatClient(cfg ChatConfig) *ChatClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatClient{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}
}

// ChatMessage is one message of the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat asks the backend for a JSON object answer
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Model returns the configured model name.
func (c *ChatClient) Model() string {
	return c.model
}

// Complete sends the prompt and returns the assistant content.
func (c *ChatClient) Complete(ctx context.Context, p Prompt) (string, error) {
	reqBody := ChatRequest{
		Model:       c.model,
		Temperature: c.temperature,
	}
	if p.System != "" {
		reqBody.Messages = append(reqBody.Messages, ChatMessage{Role: "system", Content: p.System})
	}
	reqBody.Messages = append(reqBody.Messages, ChatMessage{Role: "user", Content: p.User})
	if p.Schema != nil {
		reqBody.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeAPIError(chatProvider, resp)
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return cr.Choices[0].Message.Content, nil
}
