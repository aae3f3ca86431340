package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/stretchr/testify/require"
)

// fakeUpstream serves a fixed chat-completion reply and records the last
// request payload.
func fakeUpstream(t *testing.T, reply string) (*httptest.Server, *chatRequest) {
	t.Helper()
	last := &chatRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(last))

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": reply}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, last
}

func TestModerateVerdict(t *testing.T) {
	srv, last := fakeUpstream(t, `{"isBlurred": true, "reason": "graphic detail", "severity": "high"}`)
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})

	verdict := c.Moderate(context.Background(), "some troubling content")
	require.True(t, verdict.IsBlurred)
	require.Equal(t, "graphic detail", verdict.Reason)
	require.Equal(t, domain.SeverityHigh, verdict.Severity)

	require.Len(t, last.Messages, 2)
	require.Equal(t, RoleSystem, last.Messages[0].Role)
	require.Equal(t, "some troubling content", last.Messages[1].Content)
}

func TestModerateStripsCodeFences(t *testing.T) {
	srv, _ := fakeUpstream(t, "```json\n{\"isBlurred\": true, \"reason\": \"x\", \"severity\": \"low\"}\n```")
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})

	verdict := c.Moderate(context.Background(), "content")
	require.True(t, verdict.IsBlurred)
	require.Equal(t, domain.SeverityLow, verdict.Severity)
}

func TestModerateFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})

	verdict := c.Moderate(context.Background(), "content")
	require.False(t, verdict.IsBlurred)
	require.Equal(t, domain.SeverityNone, verdict.Severity)
}

func TestModerateFailsOpenOnGarbage(t *testing.T) {
	srv, _ := fakeUpstream(t, "I cannot classify this.")
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})

	verdict := c.Moderate(context.Background(), "content")
	require.False(t, verdict.IsBlurred)
	require.Equal(t, domain.SeverityNone, verdict.Severity)
}

func TestCompanionResponsePerPostType(t *testing.T) {
	srv, last := fakeUpstream(t, "That sounds heavy. I'm glad you said it out loud.")
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})

	reply := c.CompanionResponse(context.Background(), "rough week", []string{"Stress", "Work"}, domain.PostTypeVent)
	require.Equal(t, "That sounds heavy. I'm glad you said it out loud.", reply)
	require.Contains(t, last.Messages[1].Content, "Stress, Work")
	require.Contains(t, last.Messages[1].Content, "rough week")
	ventSystem := last.Messages[0].Content

	_ = c.CompanionResponse(context.Background(), "I got the job!", nil, domain.PostTypeFlex)
	require.NotEqual(t, ventSystem, last.Messages[0].Content, "vent and flex use different instructions")
}

func TestCompanionResponseFallback(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0", APIKey: "test-key", Timeout: 50 * time.Millisecond})

	reply := c.CompanionResponse(context.Background(), "rough week", nil, domain.PostTypeVent)
	require.Equal(t, ventFallback, reply)

	reply = c.CompanionResponse(context.Background(), "small win", nil, domain.PostTypeFlex)
	require.Equal(t, flexFallback, reply)
}

func TestDisabledClient(t *testing.T) {
	c := NewClient(Config{})
	require.False(t, c.Enabled())

	verdict := c.Moderate(context.Background(), "anything")
	require.False(t, verdict.IsBlurred)

	require.Equal(t, ventFallback, c.CompanionResponse(context.Background(), "x", nil, domain.PostTypeVent))
	require.Equal(t, journalFallback, c.JournalResponse(context.Background(), "x"))
	require.Equal(t, chatFallback, c.ChatReply(context.Background(), nil, "hi"))
}

func TestChatReplyTrimsHistory(t *testing.T) {
	srv, last := fakeUpstream(t, "I'm listening.")
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})

	history := make([]Message, 0, 100)
	for i := 0; i < 100; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		history = append(history, Message{Role: role, Content: "turn"})
	}

	reply := c.ChatReply(context.Background(), history, "are you there?")
	require.Equal(t, "I'm listening.", reply)
	// system + trimmed history + new message
	require.Len(t, last.Messages, 1+maxChatHistory+1)
	require.Equal(t, "are you there?", last.Messages[len(last.Messages)-1].Content)
}
