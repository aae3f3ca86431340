package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/athena-forum/athena/internal/athena/domain"
)

func TestChatRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.doJSON(t, http.MethodPost, "/v1/chat", map[string]string{"message": "hi"}, nil)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestChatSendHistoryAndClear(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "wanderer", "1234", domain.RoleUser)
	cookie := ts.sessionCookie(t, user)

	// The AI client is disabled, so the companion answers with its fallback,
	// but the transcript still grows.
	code, env := ts.doJSON(t, http.MethodPost, "/v1/chat", map[string]string{
		"message": "I had a rough day",
	}, cookie)
	require.Equal(t, http.StatusOK, code)

	var reply string
	dataField(t, env, "reply", &reply)
	require.NotEmpty(t, reply)

	code, env = ts.doJSON(t, http.MethodGet, "/v1/chat", nil, cookie)
	require.Equal(t, http.StatusOK, code)

	var messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	dataField(t, env, "messages", &messages)
	require.Len(t, messages, 2)
	require.Equal(t, "user", messages[0].Role)
	require.Equal(t, "I had a rough day", messages[0].Content)
	require.Equal(t, "assistant", messages[1].Role)

	code, _ = ts.doJSON(t, http.MethodDelete, "/v1/chat", nil, cookie)
	require.Equal(t, http.StatusOK, code)

	code, env = ts.doJSON(t, http.MethodGet, "/v1/chat", nil, cookie)
	require.Equal(t, http.StatusOK, code)
	dataField(t, env, "messages", &messages)
	require.Empty(t, messages)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "wanderer", "1234", domain.RoleUser)
	cookie := ts.sessionCookie(t, user)

	code, _ := ts.doJSON(t, http.MethodPost, "/v1/chat", map[string]string{"message": "  "}, cookie)
	require.Equal(t, http.StatusBadRequest, code)
}
