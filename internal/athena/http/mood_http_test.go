package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/athena-forum/athena/internal/athena/domain"
)

func TestMoodCheckInAndHistory(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "wanderer", "1234", domain.RoleUser)
	cookie := ts.sessionCookie(t, user)

	code, env := ts.doJSON(t, http.MethodPost, "/v1/mood", map[string]any{
		"mood": 4,
		"note": "pretty good day",
	}, cookie)
	require.Equal(t, http.StatusOK, code)

	var entry entryJSONShape
	dataField(t, env, "entry", &entry)
	require.Equal(t, 4, entry.Mood)

	var updated bool
	dataField(t, env, "updated", &updated)
	require.False(t, updated)

	// Second check-in the same day replaces the first.
	code, env = ts.doJSON(t, http.MethodPost, "/v1/mood", map[string]any{"mood": 2}, cookie)
	require.Equal(t, http.StatusOK, code)
	dataField(t, env, "updated", &updated)
	require.True(t, updated)

	code, env = ts.doJSON(t, http.MethodGet, "/v1/mood", nil, cookie)
	require.Equal(t, http.StatusOK, code)

	var checkedInToday bool
	dataField(t, env, "checkedInToday", &checkedInToday)
	require.True(t, checkedInToday)

	var entries []entryJSONShape
	dataField(t, env, "entries", &entries)
	require.Len(t, entries, 1)
	require.Equal(t, 2, entries[0].Mood)

	// Today's entry carries its display label.
	var todayLabel string
	dataField(t, env, "todayLabel", &todayLabel)
	require.Equal(t, "Low", todayLabel)
}

func TestMoodRejectsOutOfRange(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "wanderer", "1234", domain.RoleUser)
	cookie := ts.sessionCookie(t, user)

	for _, mood := range []int{0, -1, 6} {
		code, _ := ts.doJSON(t, http.MethodPost, "/v1/mood", map[string]any{"mood": mood}, cookie)
		require.Equal(t, http.StatusBadRequest, code, "mood %d", mood)
	}
}

func TestStreakAdvancesThroughActivity(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "wanderer", "1234", domain.RoleUser)
	cookie := ts.sessionCookie(t, user)

	code, env := ts.doJSON(t, http.MethodGet, "/v1/streak", nil, cookie)
	require.Equal(t, http.StatusOK, code)
	var streak struct {
		CurrentStreak int `json:"currentStreak"`
		NextMilestone int `json:"nextMilestone"`
	}
	dataField(t, env, "streak", &streak)
	require.Equal(t, 0, streak.CurrentStreak)
	require.Equal(t, 7, streak.NextMilestone)

	// A mood check-in counts as activity.
	code, _ = ts.doJSON(t, http.MethodPost, "/v1/mood", map[string]any{"mood": 3}, cookie)
	require.Equal(t, http.StatusOK, code)

	code, env = ts.doJSON(t, http.MethodGet, "/v1/streak", nil, cookie)
	require.Equal(t, http.StatusOK, code)
	dataField(t, env, "streak", &streak)
	require.Equal(t, 1, streak.CurrentStreak)

	// Explicit advance the same day is a no-op.
	code, env = ts.doJSON(t, http.MethodPost, "/v1/streak", nil, cookie)
	require.Equal(t, http.StatusOK, code)
	var changed bool
	dataField(t, env, "changed", &changed)
	require.False(t, changed)
}
