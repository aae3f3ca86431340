package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/athena-forum/athena/internal/athena/domain"
)

type entryJSONShape struct {
	ID      string `json:"id"`
	UserTag string `json:"userTag"`
	Content string `json:"content"`
	Mood    int    `json:"mood"`
}

func TestJournalRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.doJSON(t, http.MethodGet, "/v1/journal", nil, nil)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestJournalCreateAndList(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "wanderer", "1234", domain.RoleUser)
	cookie := ts.sessionCookie(t, user)

	code, env := ts.doJSON(t, http.MethodPost, "/v1/journal", map[string]any{
		"content": "today was heavy but I made it through",
		"mood":    3,
	}, cookie)
	require.Equal(t, http.StatusCreated, code)

	var entry entryJSONShape
	dataField(t, env, "entry", &entry)
	require.NotEmpty(t, entry.ID)
	require.Equal(t, 3, entry.Mood)

	code, env = ts.doJSON(t, http.MethodGet, "/v1/journal", nil, cookie)
	require.Equal(t, http.StatusOK, code)

	var total int
	dataField(t, env, "total", &total)
	require.Equal(t, 1, total)

	var hasEntryToday bool
	dataField(t, env, "hasEntryToday", &hasEntryToday)
	require.True(t, hasEntryToday)

	var prompt string
	dataField(t, env, "suggestedPrompt", &prompt)
	require.Contains(t, domain.JournalPrompts, prompt)
}

func TestJournalEntriesArePrivate(t *testing.T) {
	ts := newTestServer(t)
	author := ts.seedUser(t, "wanderer", "1234", domain.RoleUser)
	other := ts.seedUser(t, "stranger", "5678", domain.RoleUser)
	authorCookie := ts.sessionCookie(t, author)
	otherCookie := ts.sessionCookie(t, other)

	_, env := ts.doJSON(t, http.MethodPost, "/v1/journal", map[string]any{
		"content": "private thoughts",
	}, authorCookie)
	var entry entryJSONShape
	dataField(t, env, "entry", &entry)

	code, _ := ts.doJSON(t, http.MethodGet, "/v1/journal/"+entry.ID, nil, otherCookie)
	require.Equal(t, http.StatusForbidden, code)

	code, env = ts.doJSON(t, http.MethodGet, "/v1/journal", nil, otherCookie)
	require.Equal(t, http.StatusOK, code)
	var total int
	dataField(t, env, "total", &total)
	require.Equal(t, 0, total)

	code, _ = ts.doJSON(t, http.MethodDelete, "/v1/journal/"+entry.ID, nil, otherCookie)
	require.Equal(t, http.StatusForbidden, code)

	code, _ = ts.doJSON(t, http.MethodDelete, "/v1/journal/"+entry.ID, nil, authorCookie)
	require.Equal(t, http.StatusOK, code)
}

func TestJournalRejectsInvalidMood(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "wanderer", "1234", domain.RoleUser)
	cookie := ts.sessionCookie(t, user)

	code, _ := ts.doJSON(t, http.MethodPost, "/v1/journal", map[string]any{
		"content": "fine",
		"mood":    6,
	}, cookie)
	require.Equal(t, http.StatusBadRequest, code)
}
