package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// User is an account allowed to sign in.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `SELECT id, email, password_hash FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// InsertUser creates a user and reports whether a row was added. An existing
// email is left unchanged.
func (s *Store) InsertUser(ctx context.Context, email, passwordHash string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash) VALUES (?, ?)
		ON CONFLICT(email) DO NOTHING
	`, email, passwordHash)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows for user insert: %w", err)
	}
	return n > 0, nil
}
