package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/athena-forum/athena/pkg/cryptox"
	"github.com/athena-forum/athena/pkg/idx"
	"github.com/athena-forum/athena/pkg/slogx"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
)

var (
	// ErrInvalidUsername reports a username outside 2-20 chars of [a-z0-9_].
	ErrInvalidUsername = errors.New("invalid_username")

	// ErrTagTaken reports a full tag already claimed by another user.
	ErrTagTaken = errors.New("tag_taken")

	// ErrNoFreeDiscriminator reports discriminator allocation exhausting its
	// retry budget for a popular username.
	ErrNoFreeDiscriminator = errors.New("no_free_discriminator")

	// ErrChallengeExpired reports a missing, already-used, or expired
	// ceremony challenge. The client should restart the flow.
	ErrChallengeExpired = errors.New("challenge_expired")

	// ErrUnknownCredential reports an assertion from a credential no account
	// owns.
	ErrUnknownCredential = errors.New("unknown_credential")

	// ErrVerificationFailed is the single generic failure for every other
	// verification problem. Which step failed is deliberately not revealed.
	ErrVerificationFailed = errors.New("verification_failed")
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{2,20}$`)

const (
	discriminatorAttempts = 50
	defaultChallengeTTL   = 5 * time.Minute
)

// AuthService runs the passkey registration and login ceremonies. Pending
// ceremony state lives server-side in the challenges table; the caller holds
// only an opaque handle, carried in the sealed session cookie.
type AuthService struct {
	Store        store.Store
	WebAuthn     *webauthn.WebAuthn
	ChallengeTTL time.Duration
}

// registrationState is the challenge blob for a registration ceremony: the
// identity reserved for the new account plus the library's session data.
type registrationState struct {
	UserID        string               `json:"userId"`
	Username      string               `json:"username"`
	Discriminator string               `json:"discriminator"`
	Handle        []byte               `json:"handle"`
	Session       webauthn.SessionData `json:"session"`
}

// loginState is the challenge blob for a login ceremony.
type loginState struct {
	Session webauthn.SessionData `json:"session"`
}

// RegistrationOptions is returned from BeginRegistration.
type RegistrationOptions struct {
	Options *protocol.CredentialCreation
	FullTag string
	// ChallengeHandle goes into the sealed cookie, never the response body.
	ChallengeHandle string
}

// BeginRegistration validates the username, reserves a free discriminator,
// and starts the attestation ceremony.
func (s *AuthService) BeginRegistration(ctx context.Context, username string) (RegistrationOptions, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernamePattern.MatchString(username) {
		return RegistrationOptions{}, ErrInvalidUsername
	}

	discriminator, fullTag, err := s.allocateDiscriminator(ctx, username)
	if err != nil {
		return RegistrationOptions{}, err
	}

	handle := uuid.New()
	pending := domain.User{
		ID:            idx.New().String(),
		Username:      username,
		Discriminator: discriminator,
		FullTag:       fullTag,
		Role:          domain.RoleUser,
		Handle:        handle[:],
	}

	options, sessionData, err := s.WebAuthn.BeginRegistration(pending,
		webauthn.WithConveyancePreference(protocol.PreferNoAttestation),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			AuthenticatorAttachment: protocol.Platform,
			ResidentKey:             protocol.ResidentKeyRequirementPreferred,
			UserVerification:        protocol.VerificationPreferred,
		}),
	)
	if err != nil {
		return RegistrationOptions{}, fmt.Errorf("begin registration: %w", err)
	}

	challengeHandle, err := s.storeChallenge(ctx, registrationState{
		UserID:        pending.ID,
		Username:      pending.Username,
		Discriminator: pending.Discriminator,
		Handle:        pending.Handle,
		Session:       *sessionData,
	})
	if err != nil {
		return RegistrationOptions{}, err
	}

	return RegistrationOptions{
		Options:         options,
		FullTag:         fullTag,
		ChallengeHandle: challengeHandle,
	}, nil
}

// FinishRegistration consumes the challenge, verifies the attestation, and
// creates the account with its first credential.
func (s *AuthService) FinishRegistration(ctx context.Context, challengeHandle string, r *http.Request) (domain.SessionUser, error) {
	var state registrationState
	if err := s.consumeChallenge(ctx, challengeHandle, &state); err != nil {
		return domain.SessionUser{}, err
	}

	pending := domain.User{
		ID:            state.UserID,
		Username:      state.Username,
		Discriminator: state.Discriminator,
		FullTag:       state.Username + "#" + state.Discriminator,
		Role:          domain.RoleUser,
		Handle:        state.Handle,
	}

	credential, err := s.WebAuthn.FinishRegistration(pending, state.Session, r)
	if err != nil {
		slogx.FromContext(ctx).Info("registration attestation rejected", "error", err)
		return domain.SessionUser{}, ErrVerificationFailed
	}

	pending.Credentials = []webauthn.Credential{*credential}
	if err := s.Store.Users().CreateUser(ctx, pending); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.SessionUser{}, ErrTagTaken
		}
		return domain.SessionUser{}, fmt.Errorf("create user: %w", err)
	}

	return domain.SessionUser{
		FullTag:  pending.FullTag,
		Username: pending.Username,
		Role:     pending.Role,
	}, nil
}

// LoginOptions is returned from BeginLogin.
type LoginOptions struct {
	Options         *protocol.CredentialAssertion
	ChallengeHandle string
}

// BeginLogin starts a discoverable (usernameless) assertion ceremony. The
// allow-list is empty; the authenticator picks the credential.
func (s *AuthService) BeginLogin(ctx context.Context) (LoginOptions, error) {
	options, sessionData, err := s.WebAuthn.BeginDiscoverableLogin()
	if err != nil {
		return LoginOptions{}, fmt.Errorf("begin login: %w", err)
	}

	challengeHandle, err := s.storeChallenge(ctx, loginState{Session: *sessionData})
	if err != nil {
		return LoginOptions{}, err
	}

	return LoginOptions{Options: options, ChallengeHandle: challengeHandle}, nil
}

// FinishLogin consumes the challenge and verifies the assertion. An unknown
// credential gets its own error; every other verification failure collapses
// into ErrVerificationFailed, including a clone warning and a signature
// counter that did not advance.
func (s *AuthService) FinishLogin(ctx context.Context, challengeHandle string, r *http.Request) (domain.SessionUser, error) {
	var state loginState
	if err := s.consumeChallenge(ctx, challengeHandle, &state); err != nil {
		return domain.SessionUser{}, err
	}

	var owner domain.User
	credential, err := s.WebAuthn.FinishDiscoverableLogin(
		func(rawID, userHandle []byte) (webauthn.User, error) {
			u, err := s.Store.Users().GetUserByCredentialID(ctx, rawID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return nil, ErrUnknownCredential
				}
				return nil, err
			}
			owner = u
			return u, nil
		},
		state.Session, r)
	if err != nil {
		if errors.Is(err, ErrUnknownCredential) {
			return domain.SessionUser{}, ErrUnknownCredential
		}
		slogx.FromContext(ctx).Info("login assertion rejected", "error", err)
		return domain.SessionUser{}, ErrVerificationFailed
	}

	if credential.Authenticator.CloneWarning {
		slogx.FromContext(ctx).Warn("clone warning on credential", "user", owner.FullTag)
		return domain.SessionUser{}, ErrVerificationFailed
	}

	// Authenticators that do not implement a counter always report 0; the
	// strictly-increasing check only applies once a counter is in use.
	if credential.Authenticator.SignCount > 0 {
		err := s.Store.Users().UpdateCredentialSignCount(ctx, credential.ID, credential.Authenticator.SignCount)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				slogx.FromContext(ctx).Warn("signature counter did not advance", "user", owner.FullTag)
				return domain.SessionUser{}, ErrVerificationFailed
			}
			return domain.SessionUser{}, fmt.Errorf("update sign count: %w", err)
		}
	}

	return domain.SessionUser{
		FullTag:  owner.FullTag,
		Username: owner.Username,
		Role:     owner.Role,
	}, nil
}

// Me returns the full user record behind a session identity.
func (s *AuthService) Me(ctx context.Context, fullTag string) (domain.User, error) {
	return s.Store.Users().GetUserByTag(ctx, fullTag)
}

func (s *AuthService) allocateDiscriminator(ctx context.Context, username string) (string, string, error) {
	for i := 0; i < discriminatorAttempts; i++ {
		discriminator := fmt.Sprintf("%04d", 1000+rand.IntN(9000))
		fullTag := username + "#" + discriminator

		taken, err := s.Store.Users().TagExists(ctx, fullTag)
		if err != nil {
			return "", "", fmt.Errorf("check tag: %w", err)
		}
		if !taken {
			return discriminator, fullTag, nil
		}
	}
	return "", "", ErrNoFreeDiscriminator
}

func (s *AuthService) storeChallenge(ctx context.Context, state any) (string, error) {
	blob, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("marshal challenge: %w", err)
	}

	handle, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("challenge handle: %w", err)
	}

	ttl := s.ChallengeTTL
	if ttl <= 0 {
		ttl = defaultChallengeTTL
	}
	// Only the fingerprint touches storage; the raw handle lives in the
	// sealed cookie.
	err = s.Store.Challenges().CreateChallenge(ctx, domain.LoginChallenge{
		Handle:      cryptox.FingerprintToken(handle),
		SessionData: blob,
		ExpiresAt:   time.Now().UTC().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("store challenge: %w", err)
	}
	return handle, nil
}

func (s *AuthService) consumeChallenge(ctx context.Context, handle string, into any) error {
	if handle == "" {
		return ErrChallengeExpired
	}
	challenge, err := s.Store.Challenges().ConsumeChallenge(ctx, cryptox.FingerprintToken(handle))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrChallengeExpired
		}
		return fmt.Errorf("consume challenge: %w", err)
	}
	if err := json.Unmarshal(challenge.SessionData, into); err != nil {
		return ErrChallengeExpired
	}
	return nil
}
