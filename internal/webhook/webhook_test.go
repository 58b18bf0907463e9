package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEvent = PressEvent{
	TaskName:       "Feed the dog",
	AssignedTo:     "sam",
	Category:       "Pets",
	ConfirmationID: "CONFIRM_FEED_THE_DOG",
}

func captureServer(t *testing.T, status int, captured *[]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		*captured = body
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSlackTaskPressed(t *testing.T) {
	var body []byte
	srv := captureServer(t, http.StatusOK, &body)

	s := NewSlack(srv.URL)
	require.NoError(t, s.TaskPressed(context.Background(), testEvent))

	var payload SlackPayload
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Attachments, 1)

	att := payload.Attachments[0]
	assert.Equal(t, "#FFFF00", att.Color)
	require.Len(t, att.Blocks, 2)
	assert.Equal(t, "header", att.Blocks[0].Type)
	assert.Contains(t, att.Blocks[0].Text.Text, "Feed the dog")

	fields := att.Blocks[1].Fields
	require.Len(t, fields, 3)
	assert.Contains(t, fields[0].Text, "sam")
	assert.Contains(t, fields[1].Text, "Pets")
	assert.Contains(t, fields[2].Text, "CONFIRM_FEED_THE_DOG")
}

func TestSlackTaskPressed_ServerError(t *testing.T) {
	var body []byte
	srv := captureServer(t, http.StatusInternalServerError, &body)

	s := NewSlack(srv.URL)
	err := s.TaskPressed(context.Background(), testEvent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestDiscordTaskPressed(t *testing.T) {
	var body []byte
	srv := captureServer(t, http.StatusNoContent, &body)

	d := NewDiscord(srv.URL)
	require.NoError(t, d.TaskPressed(context.Background(), testEvent))

	var payload DiscordPayload
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Embeds, 1)

	embed := payload.Embeds[0]
	assert.Contains(t, embed.Title, "Feed the dog")
	assert.Equal(t, 0xFFFF00, embed.Color)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "sam", embed.Fields[0].Value)
	assert.Equal(t, "Pets", embed.Fields[1].Value)
	assert.Contains(t, embed.Fields[2].Value, "CONFIRM_FEED_THE_DOG")
}

func TestMultiFansOut(t *testing.T) {
	var slackBody, discordBody []byte
	slackSrv := captureServer(t, http.StatusOK, &slackBody)
	discordSrv := captureServer(t, http.StatusNoContent, &discordBody)

	m := Multi{NewSlack(slackSrv.URL), NewDiscord(discordSrv.URL)}
	require.NoError(t, m.TaskPressed(context.Background(), testEvent))

	assert.NotEmpty(t, slackBody)
	assert.NotEmpty(t, discordBody)
}

func TestMultiJoinsErrors(t *testing.T) {
	var okBody, failBody []byte
	okSrv := captureServer(t, http.StatusOK, &okBody)
	failSrv := captureServer(t, http.StatusBadRequest, &failBody)

	m := Multi{NewSlack(okSrv.URL), NewSlack(failSrv.URL)}
	err := m.TaskPressed(context.Background(), testEvent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.NotEmpty(t, okBody, "healthy notifier still receives the event")
}
