package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose the hash in API responses.
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
