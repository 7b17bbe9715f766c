package models

import "time"

// Form is a named document template. Content is opaque rich-text markup.
type Form struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Content   string      `json:"content"`
	CreatedBy int64       `json:"created_by"`
	UpdatedBy int64       `json:"updated_by"`
	Updater   *UserPublic `json:"updater,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
