package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChatSender posts a message to a staff chat room
type ChatSender interface {
	Post(ctx context.Context, text string) error
}

// ChatWebhookSender posts {"text": ...} to an incoming-webhook URL (Slack and
// compatible services accept this shape).
type ChatWebhookSender struct {
	url    string
	client *http.Client
}

func NewChatWebhookSender(url string, timeout time.Duration) *ChatWebhookSender {
	return &ChatWebhookSender{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Text string `json:"text"`
}

func (s *ChatWebhookSender) Post(ctx context.Context, text string) error {
	payload, err := json.Marshal(chatMessage{Text: text})
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post chat message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("chat webhook returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
