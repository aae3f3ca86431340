package http

import (
	"net/http"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/service"
	"github.com/athena-forum/athena/internal/athena/session"
	"github.com/athena-forum/athena/pkg/httpx"
	"github.com/athena-forum/athena/pkg/slogx"
)

// AuthHandler drives the passkey ceremonies. Ceremony state is server-side;
// the browser only ever holds a sealed cookie with an opaque handle.
type AuthHandler struct {
	AuthService *service.AuthService
	Sessions    *session.Manager
}

type registerOptionsRequest struct {
	Username string `json:"username"`
}

// HandleRegisterOptions starts registration: validates the username,
// allocates a tag, and returns the credential creation options.
func (h *AuthHandler) HandleRegisterOptions(w http.ResponseWriter, r *http.Request) {
	var req registerOptionsRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	opts, err := h.AuthService.BeginRegistration(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.Sessions.Set(w, session.Data{ChallengeHandle: opts.ChallengeHandle}); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]any{
		"options": opts.Options,
		"fullTag": opts.FullTag,
	})
}

// HandleRegisterVerify completes registration and signs the new user in.
func (h *AuthHandler) HandleRegisterVerify(w http.ResponseWriter, r *http.Request) {
	data, err := h.Sessions.Get(r)
	if err != nil || data.ChallengeHandle == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Your session challenge expired. Please start again.")
		return
	}

	user, err := h.AuthService.FinishRegistration(r.Context(), data.ChallengeHandle, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.Sessions.Set(w, session.Data{User: &user}); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("user registered", "user", user.FullTag)
	httpx.WriteData(w, http.StatusOK, map[string]any{"user": user})
}

// HandleLoginOptions starts a discoverable login ceremony.
func (h *AuthHandler) HandleLoginOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.AuthService.BeginLogin(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.Sessions.Set(w, session.Data{ChallengeHandle: opts.ChallengeHandle}); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]any{"options": opts.Options})
}

// HandleLoginVerify completes login and establishes the session.
func (h *AuthHandler) HandleLoginVerify(w http.ResponseWriter, r *http.Request) {
	data, err := h.Sessions.Get(r)
	if err != nil || data.ChallengeHandle == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Your session challenge expired. Please start again.")
		return
	}

	user, err := h.AuthService.FinishLogin(r.Context(), data.ChallengeHandle, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.Sessions.Set(w, session.Data{User: &user}); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("user logged in", "user", user.FullTag)
	httpx.WriteData(w, http.StatusOK, map[string]any{"user": user})
}

// HandleLogout destroys the session cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w)
	httpx.WriteData(w, http.StatusOK, map[string]any{"loggedOut": true})
}

// HandleMe returns the signed-in user's profile with their streak view.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	tag, _ := httpx.UserTagFromCtx(r.Context())

	user, err := h.AuthService.Me(r.Context(), tag)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, profileOf(user))
}

// profileOf trims a user down to its public profile. Credentials and the
// WebAuthn handle never leave the server.
func profileOf(u domain.User) map[string]any {
	return map[string]any{
		"fullTag":   u.FullTag,
		"username":  u.Username,
		"role":      u.Role,
		"streak":    service.ViewStreak(u.Streak, time.Now()),
		"createdAt": u.CreatedAt,
	}
}
