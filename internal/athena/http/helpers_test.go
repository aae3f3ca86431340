package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/athena-forum/athena/internal/athena/ai"
	"github.com/athena-forum/athena/internal/athena/domain"
	httpapi "github.com/athena-forum/athena/internal/athena/http"
	"github.com/athena-forum/athena/internal/athena/service"
	"github.com/athena-forum/athena/internal/athena/session"
	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/athena-forum/athena/internal/athena/store/drivers/sqlite"
	"github.com/athena-forum/athena/pkg/idx"
)

// testServer wires the full router against a fresh migrated sqlite store
// and serves it over httptest, so requests take the same path production
// traffic does, middleware included.
type testServer struct {
	URL      string
	Store    store.Store
	Sessions *session.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "athena_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sessions, err := session.NewManager([]byte("test-session-secret"), time.Hour, false)
	require.NoError(t, err)

	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: "Athena",
		RPID:          "localhost",
		RPOrigins:     []string{"http://localhost"},
	})
	require.NoError(t, err)

	// No API key: moderation and companion features run in fallback mode.
	aiClient := ai.NewClient(ai.Config{})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	streak := &service.StreakService{Store: st}

	router := httpapi.NewRouter("test", st, sessions, logger)
	router.AuthService = &service.AuthService{Store: st, WebAuthn: wa, ChallengeTTL: time.Minute}
	router.StreakService = streak
	router.PostService = &service.PostService{Store: st, AI: aiClient, Streak: streak}
	router.JournalService = &service.JournalService{Store: st, AI: aiClient, Streak: streak}
	router.MoodService = &service.MoodService{Store: st, Streak: streak}
	router.BlogService = &service.BlogService{Store: st}
	router.ChatService = &service.ChatService{AI: aiClient}
	router.ProfileService = &service.ProfileService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{URL: srv.URL, Store: st, Sessions: sessions}
}

// seedUser inserts a user with one credential directly through the store.
func (ts *testServer) seedUser(t *testing.T, username, discriminator, role string) domain.User {
	t.Helper()
	handle := uuid.New()
	u := domain.User{
		ID:            idx.New().String(),
		Username:      username,
		Discriminator: discriminator,
		FullTag:       username + "#" + discriminator,
		Role:          role,
		Handle:        handle[:],
		Credentials: []webauthn.Credential{{
			ID:        []byte(username + "-cred"),
			PublicKey: []byte("test-public-key"),
		}},
	}
	require.NoError(t, ts.Store.Users().CreateUser(context.Background(), u))
	return u
}

// sessionCookie seals a signed-in session for the given user, the same way
// a completed login ceremony would.
func (ts *testServer) sessionCookie(t *testing.T, u domain.User) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, ts.Sessions.Set(rec, session.Data{User: &domain.SessionUser{
		FullTag:  u.FullTag,
		Username: u.Username,
		Role:     u.Role,
	}}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

// envelope mirrors the JSON wrapper every endpoint responds with.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// doJSON issues a request with an optional JSON body and session cookie and
// decodes the response envelope.
func (ts *testServer) doJSON(t *testing.T, method, path string, body any, cookie *http.Cookie) (int, envelope) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

// dataField unmarshals one named field out of an envelope's data object.
func dataField(t *testing.T, env envelope, field string, dst any) {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &m))
	raw, ok := m[field]
	require.True(t, ok, "data field %q missing", field)
	require.NoError(t, json.Unmarshal(raw, dst))
}
