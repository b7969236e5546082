package domain

import "time"

// ContactSubmission is an acknowledged contact form. It is not persisted.
type ContactSubmission struct {
	ID              string
	Name            string
	Email           string
	Company         string
	Phone           string
	ServiceInterest string
	Message         string
	SubmittedAt     time.Time
}
