package store

import "time"

// User is an account row on the edge server, distinct from the client-side
// session snapshot.
type User struct {
	ID           string    `json:"id"` // UUID
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	Name         string    `json:"name,omitempty"`
	Department   string    `json:"department,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
