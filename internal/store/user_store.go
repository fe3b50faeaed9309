package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spectrack/spectrack-go/internal/auth"
	"github.com/spectrack/spectrack-go/internal/models"
)

// CreateUser creates a new user with a hashed password.
func (s *Store) CreateUser(username, password, role string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	res, err := s.db.Exec(`
		INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, hash, role)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(id)
}

// GetUserByID fetches a user by ID.
func (s *Store) GetUserByID(id int64) (*models.User, error) {
	row := s.db.QueryRow(`
		SELECT id, username, password_hash, role, created_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername fetches a user by username.
func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	row := s.db.QueryRow(`
		SELECT id, username, password_hash, role, created_at
		FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// CountUsers returns the total number of registered users.
func (s *Store) CountUsers() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// CreateSession stores a new session token for a user.
func (s *Store) CreateSession(token string, userID int64, expiresAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt)
	return err
}

// GetUserBySessionToken resolves a session token to its user. Expired
// sessions are treated as not found.
func (s *Store) GetUserBySessionToken(token string) (*models.User, error) {
	row := s.db.QueryRow(`
		SELECT u.id, u.username, u.password_hash, u.role, u.created_at
		FROM users u JOIN sessions s ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > ?`, token, time.Now().UTC())
	return scanUser(row)
}

// DeleteSession removes a session token.
func (s *Store) DeleteSession(token string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// DeleteExpiredSessions clears out sessions past their expiry.
func (s *Store) DeleteExpiredSessions() error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	return err
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
