package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Discord posts press notifications to a Discord webhook
type Discord struct {
	client     *http.Client
	webhookURL string
}

// NewDiscord creates a new Discord webhook notifier
func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
	}
}

// DiscordEmbed represents a Discord embed object
type DiscordEmbed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedField represents a field in a Discord embed
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter represents the footer of a Discord embed
type EmbedFooter struct {
	Text string `json:"text"`
}

// DiscordPayload represents the webhook payload
type DiscordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

// TaskPressed sends a press notification to Discord
func (d *Discord) TaskPressed(ctx context.Context, ev PressEvent) error {
	embed := DiscordEmbed{
		Title: fmt.Sprintf("⏳ Chore pending: %s", ev.TaskName),
		Color: 0xFFFF00, // Yellow, matching the pending state
		Fields: []EmbedField{
			{Name: "Assigned to", Value: ev.AssignedTo, Inline: true},
			{Name: "Category", Value: ev.Category, Inline: true},
			{Name: "Confirmation", Value: fmt.Sprintf("`%s`", ev.ConfirmationID), Inline: false},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Footer:    &EmbedFooter{Text: "choresheet"},
	}

	payload := DiscordPayload{
		Embeds: []DiscordEmbed{embed},
	}

	return d.send(ctx, payload)
}

func (d *Discord) send(ctx context.Context, payload DiscordPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
