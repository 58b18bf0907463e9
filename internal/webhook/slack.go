package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Slack posts press notifications to a Slack incoming webhook
type Slack struct {
	client     *http.Client
	webhookURL string
}

// NewSlack creates a new Slack webhook notifier
func NewSlack(webhookURL string) *Slack {
	return &Slack{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
	}
}

// SlackBlock represents a Slack Block Kit block
type SlackBlock struct {
	Type   string         `json:"type"`
	Text   *SlackTextObj  `json:"text,omitempty"`
	Fields []SlackTextObj `json:"fields,omitempty"`
}

// SlackTextObj represents a Slack text object
type SlackTextObj struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// SlackAttachment represents a Slack attachment (for colored sidebar)
type SlackAttachment struct {
	Color  string       `json:"color"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackPayload represents the webhook payload
type SlackPayload struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// TaskPressed sends a press notification to Slack
func (s *Slack) TaskPressed(ctx context.Context, ev PressEvent) error {
	blocks := []SlackBlock{
		{
			Type: "header",
			Text: &SlackTextObj{
				Type:  "plain_text",
				Text:  fmt.Sprintf(":hourglass: Chore pending: %s", ev.TaskName),
				Emoji: true,
			},
		},
		{
			Type: "section",
			Fields: []SlackTextObj{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Assigned to:*\n%s", ev.AssignedTo)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Category:*\n%s", ev.Category)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Confirmation:*\n`%s`", ev.ConfirmationID)},
			},
		},
	}

	payload := SlackPayload{
		Attachments: []SlackAttachment{
			{
				Color:  "#FFFF00", // Yellow, matching the pending state
				Blocks: blocks,
			},
		},
	}

	return s.send(ctx, payload)
}

func (s *Slack) send(ctx context.Context, payload SlackPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
