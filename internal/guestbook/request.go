package guestbook

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/guestdesk/backend/internal/companies"
)

// CompanyInput accepts either {"name": "..."} or a plain JSON string.
type CompanyInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CompanyInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.Name)
	}
	type plain CompanyInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = CompanyInput(p)
	return nil
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name         string       `json:"name" validate:"required,max=255"`
	Surname      string       `json:"surname" validate:"required,max=255"`
	Acknowledged *bool        `json:"acknowledged"`
	GDPR         bool         `json:"gdpr"`
	Company      CompanyInput `json:"company"`
	Phone        string       `json:"phone" validate:"required,phone"`
	Email        *string      `json:"email" validate:"omitempty,email,max=255"`
	Signature    string       `json:"signature" validate:"required"`
	Locate       string       `json:"locate" validate:"required"`
	Header       string       `json:"header"`
}

// acknowledged defaults to true when the client omits it.
func (r *RegisterRequest) acknowledged() bool {
	return r.Acknowledged == nil || *r.Acknowledged
}

// normalize trims every free-text field and canonicalizes the company name so the
// guest book and the company directory agree. A blank email is treated as absent.
func (r *RegisterRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Surname = strings.TrimSpace(r.Surname)
	r.Company.Name = companies.NormalizeName(r.Company.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Locate = strings.TrimSpace(r.Locate)
	r.Header = strings.TrimSpace(r.Header)
	if r.Email != nil {
		e := strings.TrimSpace(*r.Email)
		if e == "" {
			r.Email = nil
		} else {
			r.Email = &e
		}
	}
}

// RegisterResponse acknowledges a stored registration.
type RegisterResponse struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
