package domain

import (
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

// Roles a user can hold. Admins can author blog posts; everything else is
// the same for both.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            string
	Username      string // lowercased, 2-20 chars of [a-z0-9_]
	Discriminator string // four digits
	FullTag       string // username#NNNN, unique and immutable
	Role          string
	Handle        []byte // opaque WebAuthn user handle (16 random bytes)
	Credentials   []webauthn.Credential
	Streak        Streak
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// WebAuthnID implements webauthn.User.
func (u User) WebAuthnID() []byte { return u.Handle }

// WebAuthnName implements webauthn.User.
func (u User) WebAuthnName() string { return u.FullTag }

// WebAuthnDisplayName implements webauthn.User.
func (u User) WebAuthnDisplayName() string { return u.Username }

// WebAuthnCredentials implements webauthn.User.
func (u User) WebAuthnCredentials() []webauthn.Credential { return u.Credentials }

// SessionUser is the identity slice carried in the session cookie.
type SessionUser struct {
	FullTag  string `json:"fullTag"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Streak tracks consecutive calendar days with at least one qualifying
// activity. LastActiveDate is nil until the first activity ever.
type Streak struct {
	CurrentStreak  int
	LongestStreak  int
	LastActiveDate *time.Time
}
