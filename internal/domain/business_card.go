package domain

import "time"

// DefaultCardTemplate is used when the client does not pick one.
// Known templates: professional, modern, minimal.
const DefaultCardTemplate = "professional"

// BusinessCard is the single active profile card of a user.
type BusinessCard struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Website   *string   `json:"website"`
	Template  string    `json:"template"`
	QRCode    *string   `json:"qr_code"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BusinessCardInput is the body for POST /api/business-card.
type BusinessCardInput struct {
	Name     string  `json:"name"`
	Title    string  `json:"title"`
	Company  string  `json:"company"`
	Phone    string  `json:"phone"`
	Email    string  `json:"email"`
	Website  *string `json:"website"`
	Template string  `json:"template"`
}

// Validate applies the template default and checks required fields.
func (in *BusinessCardInput) Validate() error {
	if in.Template == "" {
		in.Template = DefaultCardTemplate
	}
	required := []struct{ field, value string }{
		{"name", in.Name},
		{"title", in.Title},
		{"company", in.Company},
		{"phone", in.Phone},
		{"email", in.Email},
	}
	for _, r := range required {
		if r.value == "" {
			return &ErrValidation{Field: r.field, Message: "required"}
		}
	}
	return nil
}
