package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	internal_errors "github.com/foodbridge-dev/foodbridge/internal/errors"
	"github.com/foodbridge-dev/foodbridge/internal/live"
)

const uniqueViolation = "23505"

// =========================================================================
// Public Methods (satisfy the service storage interfaces)
// =========================================================================

// SaveUser inserts a new user record and returns its id. Unique-constraint
// violations are mapped to the duplicate_email/duplicate_username failures as
// a backstop for the racy check-then-insert at the service layer.
func (s *Storage) SaveUser(user domain.User) (domain.UserId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveUser(tx, user)
		return err
	})
	if err == nil {
		s.notify(live.TableUsers)
	}
	return id, err
}

// UserByEmail fetches a single user by email.
func (s *Storage) UserByEmail(email domain.Email) (domain.User, error) {
	return s.userWhere(s.db, "email = $1", email)
}

// UserById fetches a single user by id.
func (s *Storage) UserById(id domain.UserId) (domain.User, error) {
	return s.userWhere(s.db, "id = $1", id)
}

// IsUsernameTaken reports whether any user already holds the given name.
func (s *Storage) IsUsernameTaken(name string) (bool, error) {
	return s.exists(s.db, "SELECT EXISTS(SELECT 1 FROM users WHERE name = $1)", name)
}

// IsEmailTaken reports whether any user already holds the given email.
func (s *Storage) IsEmailTaken(email domain.Email) (bool, error) {
	return s.exists(s.db, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email)
}

// SetVerified marks a user as verified. Re-verifying is a no-op.
func (s *Storage) SetVerified(id domain.UserId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return s.setVerified(tx, id)
	})
	if err == nil {
		s.notify(live.TableUsers)
	}
	return err
}

// ToggleBlocked flips a user's blocked flag and returns the new value.
func (s *Storage) ToggleBlocked(id domain.UserId) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var blocked bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		blocked, err = s.toggleBlocked(tx, id)
		return err
	})
	if err == nil {
		s.notify(live.TableUsers)
	}
	return blocked, err
}

// IsUserBlocked checks a user's blocked flag directly against the database.
func (s *Storage) IsUserBlocked(id domain.UserId) (bool, error) {
	return s.exists(s.db, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND is_blocked)", id)
}

// BlockedUserIds returns the ids of all currently blocked users. Used to
// populate the in-memory blocked-user cache.
func (s *Storage) BlockedUserIds() ([]domain.UserId, error) {
	rows, err := s.db.Query("SELECT id FROM users WHERE is_blocked ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked users: %w", err)
	}
	defer rows.Close()

	var ids []domain.UserId
	for rows.Next() {
		var id domain.UserId
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan blocked user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blocked users: %w", err)
	}
	return ids, nil
}

// PendingUsers returns all non-admin users awaiting verification.
func (s *Storage) PendingUsers() ([]domain.User, error) {
	return s.users(s.db, "role <> 'ADMIN' AND NOT is_verified")
}

// AllUsers returns all non-admin users.
func (s *Storage) AllUsers() ([]domain.User, error) {
	return s.users(s.db, "role <> 'ADMIN'")
}

// EnsureAdmin creates the administrator account if it does not exist yet.
// The admin is pre-verified and never blocked.
func (s *Storage) EnsureAdmin(name string, email domain.Email, password domain.Password) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO users(name, email, password, role, is_verified, is_blocked)
			VALUES($1, $2, $3, 'ADMIN', TRUE, FALSE)
			ON CONFLICT (email) DO NOTHING`,
			name, email, password,
		)
		if err != nil {
			return fmt.Errorf("failed to ensure admin user: %w", err)
		}
		return nil
	})
}

// =========================================================================
// Internal Methods (Core Database Logic)
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) saveUser(q Querier, user domain.User) (domain.UserId, error) {
	var id domain.UserId
	err := q.QueryRow(`
		INSERT INTO users(name, email, password, role, is_verified, is_blocked)
		VALUES($1, $2, $3, $4, $5, $6) RETURNING id`,
		user.Name, user.Email, user.Password, user.Role, user.IsVerified, user.IsBlocked,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if strings.Contains(pqErr.Constraint, "email") {
				return -1, internal_errors.DuplicateEmail()
			}
			return -1, internal_errors.DuplicateUsername()
		}
		return -1, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Storage) userWhere(q Querier, where string, arg interface{}) (domain.User, error) {
	var user domain.User
	err := q.QueryRow(`
		SELECT id, name, email, password, role, is_verified, is_blocked, (created_at AT TIME ZONE 'utc')
		FROM users WHERE `+where, arg,
	).Scan(&user.Id, &user.Name, &user.Email, &user.Password, &user.Role, &user.IsVerified, &user.IsBlocked, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("User not found")
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *Storage) users(q Querier, where string) ([]domain.User, error) {
	rows, err := q.Query(`
		SELECT id, name, email, password, role, is_verified, is_blocked, (created_at AT TIME ZONE 'utc')
		FROM users WHERE ` + where + ` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.Id, &user.Name, &user.Email, &user.Password, &user.Role, &user.IsVerified, &user.IsBlocked, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (s *Storage) setVerified(q Querier, id domain.UserId) error {
	result, err := q.Exec("UPDATE users SET is_verified = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for verification: %w", err)
	}
	if rowsAffected == 0 {
		return internal_errors.NotFound("User not found for verification")
	}
	return nil
}

func (s *Storage) toggleBlocked(q Querier, id domain.UserId) (bool, error) {
	var blocked bool
	err := q.QueryRow("UPDATE users SET is_blocked = NOT is_blocked WHERE id = $1 RETURNING is_blocked", id).Scan(&blocked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, internal_errors.NotFound("User not found for block toggle")
		}
		return false, fmt.Errorf("failed to toggle block flag: %w", err)
	}
	return blocked, nil
}

func (s *Storage) exists(q Querier, query string, args ...interface{}) (bool, error) {
	var exists bool
	if err := q.QueryRow(query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to run existence check: %w", err)
	}
	return exists, nil
}
