package domain

import "time"

// User is an account able to sign in and manage tickets.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
