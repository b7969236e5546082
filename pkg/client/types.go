package client

import "time"

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type SessionState struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user"`
}

type Ticket struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	Category      string    `json:"category"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	AssignedTo    *string   `json:"assignedTo"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TicketFilter mirrors the list query. Empty values and "all" are not filters.
type TicketFilter struct {
	Status   string
	Priority string
	Search   string
	Limit    int
	Offset   int
}

type NewTicket struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Priority      string  `json:"priority,omitempty"`
	Category      string  `json:"category"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	AssignedTo    *string `json:"assignedTo,omitempty"`
}

// StatusChange sets a ticket's status. A nil AssignedTo keeps the assignee, "" clears it.
type StatusChange struct {
	Status     string  `json:"status"`
	AssignedTo *string `json:"assignedTo,omitempty"`
}

// TicketPatch carries only the fields to change.
type TicketPatch struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Status        *string `json:"status,omitempty"`
	Priority      *string `json:"priority,omitempty"`
	Category      *string `json:"category,omitempty"`
	CustomerName  *string `json:"customerName,omitempty"`
	CustomerEmail *string `json:"customerEmail,omitempty"`
	AssignedTo    *string `json:"assignedTo,omitempty"`
}

type ContactForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Company         string `json:"company"`
	Phone           string `json:"phone,omitempty"`
	ServiceInterest string `json:"serviceInterest,omitempty"`
	Message         string `json:"message"`
}

type DemoRequestForm struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Company           string `json:"company"`
	Phone             string `json:"phone"`
	CompanySize       string `json:"companySize"`
	PrimaryInterest   string `json:"primaryInterest"`
	CurrentChallenges string `json:"currentChallenges"`
	PreferredTime     string `json:"preferredTime"`
}

// Receipt acknowledges an intake submission.
type Receipt struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// StatusCounts tallies tickets per status, the way the dashboard summary shows them.
func StatusCounts(tickets []Ticket) map[string]int {
	counts := map[string]int{"open": 0, "in-progress": 0, "resolved": 0, "closed": 0}
	for _, t := range tickets {
		counts[t.Status]++
	}
	return counts
}
