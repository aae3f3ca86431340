// Package session manages the stateless, sealed session cookie. The cookie
// value is an XChaCha20-Poly1305 sealed JSON payload, so the server keeps no
// session table: possession of an unexpired, authentic cookie is the session.
package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/pkg/cryptox"
)

const (
	// CookieName is the single cookie the service sets.
	CookieName = "athena_session"

	// DefaultTTL bounds how long a sealed cookie is accepted.
	DefaultTTL = 7 * 24 * time.Hour
)

// ErrNoSession reports a missing, expired, or unreadable session cookie.
var ErrNoSession = errors.New("session: no valid session")

// Data is the sealed cookie payload. Either field may be set on its own:
// a login ceremony in progress has only ChallengeHandle, an authenticated
// browser has only User, and adding a second passkey while logged in has both.
type Data struct {
	User            *domain.SessionUser `json:"user,omitempty"`
	ChallengeHandle string              `json:"challengeHandle,omitempty"`
	IssuedAt        time.Time           `json:"issuedAt"`
}

// Manager seals and opens the session cookie.
type Manager struct {
	sealer *cryptox.Sealer
	ttl    time.Duration
	secure bool
}

// NewManager builds a Manager from the session secret. Set secure for
// deployments served over HTTPS so the cookie carries the Secure attribute.
func NewManager(secret []byte, ttl time.Duration, secure bool) (*Manager, error) {
	sealer, err := cryptox.NewSealer(secret)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{sealer: sealer, ttl: ttl, secure: secure}, nil
}

// Get opens the session cookie on the request. Returns ErrNoSession when the
// cookie is absent, tampered with, or older than the TTL.
func (m *Manager) Get(r *http.Request) (Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Data{}, ErrNoSession
	}

	plaintext, err := m.sealer.Open(cookie.Value)
	if err != nil {
		return Data{}, ErrNoSession
	}

	var data Data
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return Data{}, ErrNoSession
	}
	if time.Since(data.IssuedAt) > m.ttl {
		return Data{}, ErrNoSession
	}
	return data, nil
}

// Set seals data and writes the cookie on the response. IssuedAt is stamped
// here so callers never have to.
func (m *Manager) Set(w http.ResponseWriter, data Data) error {
	data.IssuedAt = time.Now().UTC()

	plaintext, err := json.Marshal(data)
	if err != nil {
		return err
	}
	sealed, err := m.sealer.Seal(plaintext)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sealed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
