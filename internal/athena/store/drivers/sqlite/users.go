package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

type usersRepo struct {
	q queryer
}

const userColumns = `id, username, discriminator, full_tag, role, handle,
	current_streak, longest_streak, last_active_at, created_at, updated_at`

func (r *usersRepo) GetUserByTag(ctx context.Context, fullTag string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE full_tag = ?`, fullTag)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Credentials, err = r.loadCredentials(ctx, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) GetUserByCredentialID(ctx context.Context, credentialID []byte) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.discriminator, u.full_tag, u.role, u.handle,
			u.current_streak, u.longest_streak, u.last_active_at, u.created_at, u.updated_at
		 FROM users u
		 JOIN credentials c ON c.user_id = u.id
		 WHERE c.id = ?`, credentialID)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Credentials, err = r.loadCredentials(ctx, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, username, discriminator, full_tag, role, handle,
			current_streak, longest_streak, last_active_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Discriminator, u.FullTag, u.Role, u.Handle,
		u.Streak.CurrentStreak, u.Streak.LongestStreak, mapOptionalTime(u.Streak.LastActiveDate))
	if err != nil {
		return mapConstraint(err)
	}

	for _, cred := range u.Credentials {
		if err := insertCredential(ctx, r.q, u.ID, cred); err != nil {
			return err
		}
	}
	return nil
}

func (r *usersRepo) TagExists(ctx context.Context, fullTag string) (bool, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE full_tag = ?`, fullTag).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *usersRepo) AddCredential(ctx context.Context, userID string, cred webauthn.Credential) error {
	return insertCredential(ctx, r.q, userID, cred)
}

func (r *usersRepo) UpdateCredentialSignCount(ctx context.Context, credentialID []byte, newCount uint32) error {
	// The guard makes the write a compare-and-swap: a counter that did not
	// strictly advance matches no rows.
	res, err := r.q.ExecContext(ctx,
		`UPDATE credentials SET sign_count = ? WHERE id = ? AND sign_count < ?`,
		newCount, credentialID, newCount)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var count int
		if err := r.q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM credentials WHERE id = ?`, credentialID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

func (r *usersRepo) UpdateStreak(ctx context.Context, fullTag string, s domain.Streak) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET current_streak = ?, longest_streak = ?, last_active_at = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE full_tag = ?`,
		s.CurrentStreak, s.LongestStreak, mapOptionalTime(s.LastActiveDate), fullTag)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) loadCredentials(ctx context.Context, userID string) ([]webauthn.Credential, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, public_key, sign_count, transports, attestation_type
		 FROM credentials WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []webauthn.Credential
	for rows.Next() {
		var (
			cred       webauthn.Credential
			transports string
		)
		if err := rows.Scan(&cred.ID, &cred.PublicKey, &cred.Authenticator.SignCount,
			&transports, &cred.AttestationType); err != nil {
			return nil, err
		}
		for _, t := range strings.Fields(transports) {
			cred.Transport = append(cred.Transport, protocol.AuthenticatorTransport(t))
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

func insertCredential(ctx context.Context, q queryer, userID string, cred webauthn.Credential) error {
	transports := make([]string, 0, len(cred.Transport))
	for _, t := range cred.Transport {
		transports = append(transports, string(t))
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO credentials (id, user_id, public_key, sign_count, transports, attestation_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cred.ID, userID, cred.PublicKey, cred.Authenticator.SignCount,
		strings.Join(transports, " "), cred.AttestationType)
	return mapConstraint(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u          domain.User
		lastActive sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
	)
	err := row.Scan(&u.ID, &u.Username, &u.Discriminator, &u.FullTag, &u.Role, &u.Handle,
		&u.Streak.CurrentStreak, &u.Streak.LongestStreak, &lastActive, &createdAt, &updatedAt)
	if err != nil {
		return domain.User{}, err
	}

	u.Streak.LastActiveDate = mapNullTimePtr(lastActive)
	u.CreatedAt = createdAt
	u.UpdatedAt = updatedAt
	return u, nil
}
