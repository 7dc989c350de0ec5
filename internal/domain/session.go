package domain

import (
	"time"
)

// Session describes one conversation known to the backend for a user.
// Returned by the multi-session listing endpoint.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
