package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/athena-forum/athena/internal/athena/domain"
)

func TestProfileRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.doJSON(t, http.MethodGet, "/v1/profile", nil, nil)
	require.Equal(t, http.StatusUnauthorized, code)
	require.False(t, env.Success)
}

func TestProfileAggregatesOwnActivity(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "wanderer", "1234", domain.RoleUser)
	cookie := ts.sessionCookie(t, user)

	code, env := ts.doJSON(t, http.MethodPost, "/v1/posts", map[string]any{
		"content":  "made it through a rough week",
		"postType": "flex",
		"tags":     []string{"Win"},
	}, cookie)
	require.Equal(t, http.StatusCreated, code)

	var created postJSONShape
	dataField(t, env, "post", &created)

	other := ts.seedUser(t, "listener", "5678", domain.RoleUser)
	otherCookie := ts.sessionCookie(t, other)
	code, _ = ts.doJSON(t, http.MethodPost, "/v1/posts/"+created.ID+"/reactions",
		map[string]any{"kind": "hug"}, otherCookie)
	require.Equal(t, http.StatusOK, code)

	code, _ = ts.doJSON(t, http.MethodPost, "/v1/mood",
		map[string]any{"mood": 4, "note": "steady"}, cookie)
	require.Equal(t, http.StatusOK, code)

	code, _ = ts.doJSON(t, http.MethodPost, "/v1/journal",
		map[string]any{"content": "slept properly for once"}, cookie)
	require.Equal(t, http.StatusCreated, code)

	code, env = ts.doJSON(t, http.MethodGet, "/v1/profile", nil, cookie)
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)

	var profileUser struct {
		FullTag  string `json:"fullTag"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	dataField(t, env, "user", &profileUser)
	require.Equal(t, "wanderer#1234", profileUser.FullTag)
	require.Equal(t, "wanderer", profileUser.Username)
	require.Equal(t, domain.RoleUser, profileUser.Role)

	var posts []postJSONShape
	dataField(t, env, "posts", &posts)
	require.Len(t, posts, 1)
	require.Equal(t, created.ID, posts[0].ID)
	require.Equal(t, 1, posts[0].Reactions.Hugs)

	var moodEntries []struct {
		Mood int    `json:"mood"`
		Note string `json:"note"`
	}
	dataField(t, env, "moodEntries", &moodEntries)
	require.Len(t, moodEntries, 1)
	require.Equal(t, 4, moodEntries[0].Mood)

	var journalEntries []struct {
		Content string `json:"content"`
	}
	dataField(t, env, "journalEntries", &journalEntries)
	require.Len(t, journalEntries, 1)

	var stats struct {
		TotalPosts          int      `json:"totalPosts"`
		TotalHugs           int      `json:"totalHugs"`
		TotalHighFives      int      `json:"totalHighFives"`
		TotalJournalEntries int      `json:"totalJournalEntries"`
		TotalMoodCheckins   int      `json:"totalMoodCheckins"`
		AverageMood         *float64 `json:"averageMood"`
		CurrentStreak       int      `json:"currentStreak"`
		LongestStreak       int      `json:"longestStreak"`
	}
	dataField(t, env, "stats", &stats)
	require.Equal(t, 1, stats.TotalPosts)
	require.Equal(t, 1, stats.TotalHugs)
	require.Equal(t, 0, stats.TotalHighFives)
	require.Equal(t, 1, stats.TotalJournalEntries)
	require.Equal(t, 1, stats.TotalMoodCheckins)
	require.NotNil(t, stats.AverageMood)
	require.InDelta(t, 4.0, *stats.AverageMood, 0.001)
	require.GreaterOrEqual(t, stats.CurrentStreak, 1)
	require.GreaterOrEqual(t, stats.LongestStreak, stats.CurrentStreak)
}

func TestProfileEmptyForNewUser(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "newcomer", "0001", domain.RoleUser)
	cookie := ts.sessionCookie(t, user)

	code, env := ts.doJSON(t, http.MethodGet, "/v1/profile", nil, cookie)
	require.Equal(t, http.StatusOK, code)

	var stats struct {
		TotalPosts  int      `json:"totalPosts"`
		AverageMood *float64 `json:"averageMood"`
	}
	dataField(t, env, "stats", &stats)
	require.Equal(t, 0, stats.TotalPosts)
	require.Nil(t, stats.AverageMood)
}
