package models

import "time"

// Visitor is the structured data a guest supplies at registration.
type Visitor struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Company   string  `json:"company"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email,omitempty"`
}

// GuestSubmission is a guest book row without its document payload.
// Rows are write-once; the PDF is fetched separately.
type GuestSubmission struct {
	ID int64 `json:"id"`
	Visitor
	CreatedAt time.Time `json:"created_at"`
}
