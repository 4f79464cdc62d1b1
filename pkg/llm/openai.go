package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI talks to any OpenAI compatible chat-completions endpoint. The
// gateway provider is the same client pointed at a custom URL with extra
// sampling parameters.
type OpenAI struct {
	apiKey      string
	url         string
	client      *http.Client
	model       string
	temperature float64
	topP        *float64
	topK        *int
	name        string
}

func NewOpenAI(apiKey string) *OpenAI {
	return NewOpenAIWithModel(apiKey, "gpt-4o")
}

func NewOpenAIWithModel(apiKey, model string) *OpenAI {
	return &OpenAI{
		apiKey: apiKey,
		url:    openAIURL,
		client: &http.Client{Timeout: DefaultTimeout},
		model:  model,
		name:   "OpenAI",
	}
}

// NewGateway creates a client for an LLM gateway at url that speaks the
// chat-completions protocol with bearer auth.
func NewGateway(url, apiKey, model string, timeout time.Duration) *OpenAI {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	topP := 1.0
	topK := 50
	return &OpenAI{
		apiKey:      apiKey,
		url:         url,
		client:      &http.Client{Timeout: timeout},
		model:       model,
		temperature: 0.01,
		topP:        &topP,
		topK:        &topK,
		name:        "LLM gateway",
	}
}

func (o *OpenAI) Chat(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]string{{
			"role":    "user",
			"content": prompt,
		}},
		"max_tokens":  maxTokens,
		"temperature": o.temperature,
	}
	if o.topP != nil {
		body["top_p"] = *o.topP
	}
	if o.topK != nil {
		body["top_k"] = *o.topK
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", o.apiKey))

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%s API error (status %d): %s", o.name, resp.StatusCode, string(respBytes))
	}

	var openaiResp struct {
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &openaiResp); err != nil {
		return "", fmt.Errorf("decode %s response: %w", o.name, err)
	}
	if openaiResp.Error.Message != "" {
		return "", fmt.Errorf("%s API error: %s", o.name, openaiResp.Error.Message)
	}
	if len(openaiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", o.name)
	}
	if openaiResp.Choices[0].Message.Content == nil {
		return "", ErrNoContent
	}
	return *openaiResp.Choices[0].Message.Content, nil
}

// GetModel returns the model being used by this client
func (o *OpenAI) GetModel() string {
	return o.model
}
