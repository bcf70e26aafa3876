package domain

import "time"

// Activity types.
const (
	ActivityCall  = "call"
	ActivityEmail = "email"
	ActivityNote  = "note"
)

// IsValidActivityType reports whether t is call, email or note.
func IsValidActivityType(t string) bool {
	switch t {
	case ActivityCall, ActivityEmail, ActivityNote:
		return true
	}
	return false
}

// Activity is an immutable interaction logged against a lead.
type Activity struct {
	ID           string    `json:"id"`
	LeadID       string    `json:"lead_id"`
	ActivityType string    `json:"activity_type"`
	Content      string    `json:"content"`
	Outcome      *string   `json:"outcome"`  // calls: answered, missed, declined, callback_needed
	Duration     *int      `json:"duration"` // calls: minutes
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ActivityInput is the body for POST /api/activities.
type ActivityInput struct {
	LeadID       string  `json:"lead_id"`
	ActivityType string  `json:"activity_type"`
	Content      string  `json:"content"`
	Outcome      *string `json:"outcome"`
	Duration     *int    `json:"duration"`
}

// Validate checks the shape of the input. Lead ownership is checked by the service.
func (in *ActivityInput) Validate() error {
	if in.LeadID == "" {
		return &ErrValidation{Field: "lead_id", Message: "required"}
	}
	if !IsValidActivityType(in.ActivityType) {
		return &ErrValidation{Field: "activity_type", Message: "must be one of call, email, note"}
	}
	if in.Content == "" {
		return &ErrValidation{Field: "content", Message: "required"}
	}
	if in.Duration != nil && *in.Duration < 0 {
		return &ErrValidation{Field: "duration", Message: "must not be negative"}
	}
	return nil
}
