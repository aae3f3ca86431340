package domain

import "time"

// LoginChallenge holds pending WebAuthn ceremony state server-side. The
// session cookie carries only the opaque handle; the challenge itself never
// leaves the server. A challenge is consumed (deleted) the first time it is
// read back, so a second verification attempt against it fails.
type LoginChallenge struct {
	Handle      string // fingerprint of the random key carried in the sealed cookie
	SessionData []byte // serialized webauthn.SessionData
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
