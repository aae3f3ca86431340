package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/athena-forum/athena/internal/athena/ai"
	"github.com/stretchr/testify/require"
)

// echoUpstream replies with the number of non-system messages it received,
// making history growth observable.
func echoUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []ai.Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": fmt.Sprintf("turns:%d", len(req.Messages)-1)}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newChatService(t *testing.T) *ChatService {
	t.Helper()
	srv := echoUpstream(t)
	return &ChatService{
		AI: ai.NewClient(ai.Config{BaseURL: srv.URL, APIKey: "test-key"}),
	}
}

func TestChatValidation(t *testing.T) {
	svc := newChatService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, "wanderer#4821", "   ")
	require.ErrorIs(t, err, ErrContentRequired)

	_, err = svc.Send(ctx, "wanderer#4821", strings.Repeat("x", maxChatMessageLen+1))
	require.ErrorIs(t, err, ErrContentTooLong)
}

func TestChatConversationGrows(t *testing.T) {
	svc := newChatService(t)
	ctx := context.Background()

	reply, err := svc.Send(ctx, "wanderer#4821", "hello")
	require.NoError(t, err)
	require.Equal(t, "turns:1", reply)

	reply, err = svc.Send(ctx, "wanderer#4821", "how are you")
	require.NoError(t, err)
	require.Equal(t, "turns:3", reply, "prior user+assistant turns are replayed")

	history := svc.History("wanderer#4821")
	require.Len(t, history, 4)
	require.Equal(t, ai.RoleUser, history[0].Role)
	require.Equal(t, "hello", history[0].Content)
	require.Equal(t, ai.RoleAssistant, history[1].Role)
}

func TestChatConversationsAreIsolated(t *testing.T) {
	svc := newChatService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, "wanderer#4821", "mine")
	require.NoError(t, err)

	reply, err := svc.Send(ctx, "stranger#1111", "theirs")
	require.NoError(t, err)
	require.Equal(t, "turns:1", reply, "a fresh user starts a fresh conversation")
}

func TestChatClear(t *testing.T) {
	svc := newChatService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, "wanderer#4821", "hello")
	require.NoError(t, err)
	require.NotEmpty(t, svc.History("wanderer#4821"))

	svc.Clear("wanderer#4821")
	require.Empty(t, svc.History("wanderer#4821"))

	reply, err := svc.Send(ctx, "wanderer#4821", "fresh start")
	require.NoError(t, err)
	require.Equal(t, "turns:1", reply)
}

func TestChatTTLExpiry(t *testing.T) {
	svc := newChatService(t)
	svc.TTL = 10 * time.Millisecond
	ctx := context.Background()

	_, err := svc.Send(ctx, "wanderer#4821", "hello")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	require.Empty(t, svc.History("wanderer#4821"))

	reply, err := svc.Send(ctx, "wanderer#4821", "anyone there")
	require.NoError(t, err)
	require.Equal(t, "turns:1", reply, "expired conversation restarts")
}

func TestChatCapacityEviction(t *testing.T) {
	svc := newChatService(t)
	svc.MaxEntries = 2
	ctx := context.Background()

	_, err := svc.Send(ctx, "first#0001", "one")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = svc.Send(ctx, "second#0002", "two")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = svc.Send(ctx, "third#0003", "three")
	require.NoError(t, err)

	require.Empty(t, svc.History("first#0001"), "oldest conversation evicted at capacity")
	require.NotEmpty(t, svc.History("second#0002"))
	require.NotEmpty(t, svc.History("third#0003"))
}

func TestChatTruncatesLongConversations(t *testing.T) {
	svc := newChatService(t)
	ctx := context.Background()

	for i := 0; i < maxConversationTurns; i++ {
		_, err := svc.Send(ctx, "wanderer#4821", "again")
		require.NoError(t, err)
	}
	require.Len(t, svc.History("wanderer#4821"), maxConversationTurns)
}

func TestChatFallbackOnUpstreamFailure(t *testing.T) {
	svc := &ChatService{
		AI: ai.NewClient(ai.Config{BaseURL: "http://127.0.0.1:0", APIKey: "test-key", Timeout: 50 * time.Millisecond}),
	}

	reply, err := svc.Send(context.Background(), "wanderer#4821", "hello")
	require.NoError(t, err)
	require.NotEmpty(t, reply, "canned fallback instead of an error")

	// The fallback turn is still part of the transcript.
	require.Len(t, svc.History("wanderer#4821"), 2)
}
