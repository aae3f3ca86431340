package sqlite

import (
	"context"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/store"
)

type challengesRepo struct {
	q queryer
}

func (r *challengesRepo) CreateChallenge(ctx context.Context, c domain.LoginChallenge) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO login_challenges (handle, session_data, expires_at)
		 VALUES (?, ?, ?)`,
		c.Handle, c.SessionData, c.ExpiresAt.UTC())
	return mapConstraint(err)
}

// ConsumeChallenge returns the challenge for handle and removes it. The
// DELETE is the authoritative step: whoever deletes the row owns the
// challenge, and a concurrent consumer that loses the race gets
// store.ErrNotFound, so a handle can only ever complete one ceremony.
func (r *challengesRepo) ConsumeChallenge(ctx context.Context, handle string) (domain.LoginChallenge, error) {
	var (
		c         domain.LoginChallenge
		expiresAt time.Time
		createdAt time.Time
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT handle, session_data, expires_at, created_at
		 FROM login_challenges WHERE handle = ?`, handle).
		Scan(&c.Handle, &c.SessionData, &expiresAt, &createdAt)
	if err != nil {
		return domain.LoginChallenge{}, mapNotFound(err)
	}

	res, err := r.q.ExecContext(ctx,
		`DELETE FROM login_challenges WHERE handle = ?`, handle)
	if err != nil {
		return domain.LoginChallenge{}, err
	}
	if err := requireAffected(res); err != nil {
		return domain.LoginChallenge{}, err
	}

	c.ExpiresAt = expiresAt
	c.CreatedAt = createdAt
	if time.Now().UTC().After(c.ExpiresAt) {
		return domain.LoginChallenge{}, store.ErrNotFound
	}
	return c, nil
}

func (r *challengesRepo) DeleteExpiredChallenges(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM login_challenges WHERE expires_at < ?`, time.Now().UTC())
	return err
}
