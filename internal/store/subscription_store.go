package store

import (
	"database/sql"
	"time"

	"github.com/spectrack/spectrack-go/internal/models"
)

// CreateSubscription registers a spec number for scheduled re-tracking.
// Subscribing to the same spec twice is a no-op.
func (s *Store) CreateSubscription(specNumber string) (*models.Subscription, error) {
	_, err := s.db.Exec(`
		INSERT INTO subscriptions (spec_number) VALUES (?)
		ON CONFLICT(spec_number) DO NOTHING`, specNumber)
	if err != nil {
		return nil, err
	}
	return s.GetSubscriptionBySpec(specNumber)
}

// GetSubscription fetches a subscription by ID, or nil if none exists.
func (s *Store) GetSubscription(id int64) (*models.Subscription, error) {
	row := s.db.QueryRow(`
		SELECT id, spec_number, created_at, last_checked_at
		FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

// GetSubscriptionBySpec fetches a subscription by its spec number, or nil if
// none exists.
func (s *Store) GetSubscriptionBySpec(specNumber string) (*models.Subscription, error) {
	row := s.db.QueryRow(`
		SELECT id, spec_number, created_at, last_checked_at
		FROM subscriptions WHERE spec_number = ?`, specNumber)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

// ListSubscriptions returns all subscriptions ordered by spec number.
func (s *Store) ListSubscriptions() ([]*models.Subscription, error) {
	rows, err := s.db.Query(`
		SELECT id, spec_number, created_at, last_checked_at
		FROM subscriptions ORDER BY spec_number ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// DeleteSubscription removes a subscription by ID.
func (s *Store) DeleteSubscription(id int64) error {
	_, err := s.db.Exec(`DELETE FROM subscriptions WHERE id = ?`, id)
	return err
}

// TouchSubscription records that a subscription was just checked.
func (s *Store) TouchSubscription(id int64) error {
	_, err := s.db.Exec(`
		UPDATE subscriptions SET last_checked_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	return err
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var sub models.Subscription
	var lastChecked sql.NullTime
	err := row.Scan(&sub.ID, &sub.SpecNumber, &sub.CreatedAt, &lastChecked)
	if err != nil {
		return nil, err
	}
	if lastChecked.Valid {
		sub.LastCheckedAt = &lastChecked.Time
	}
	return &sub, nil
}
