package dto

// SubmissionResponse acknowledges an intake form with its receipt id.
type SubmissionResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
