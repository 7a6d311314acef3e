package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content interface{} `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatClient calls an OpenAI-compatible chat completions endpoint
// (GLM, DeepSeek and OpenAI all speak this format).
type ChatClient struct {
	apiURL         string
	apiKey         string
	model          string
	supportsVision bool
	httpClient     *http.Client
}

func NewChatClient(apiURL, apiKey, model string, supportsVision bool) *ChatClient {
	return &ChatClient{
		apiURL:         apiURL,
		apiKey:         apiKey,
		model:          model,
		supportsVision: supportsVision,
		httpClient:     &http.Client{},
	}
}

func (c *ChatClient) Send(ctx context.Context, prompt string, attachment *Attachment) (string, error) {
	if attachment != nil && attachment.Text != "" {
		prompt += "\n\nDocument text (" + attachment.Filename + "):\n" + attachment.Text
	}

	var userContent interface{} = prompt
	if c.supportsVision && attachment.IsImage() {
		dataURL := fmt.Sprintf("data:%s;base64,%s", attachment.MimeType, base64.StdEncoding.EncodeToString(attachment.Data))
		userContent = []chatContentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &chatImageURL{URL: dataURL, Detail: "auto"}},
		}
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: userContent}},
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(c.model, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("AI API error: status %d", resp.StatusCode)
	}

	var completion chatResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("malformed AI response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("no response from AI")
	}

	var content string
	switch v := completion.Choices[0].Message.Content.(type) {
	case string:
		content = v
	case nil:
		return "", errors.New("no response from AI")
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to extract content from AI response")
		}
		content = string(b)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("empty response from AI")
	}
	return content, nil
}
