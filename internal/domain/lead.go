package domain

import "time"

// Kanban pipeline stages. A lead is always in exactly one of them.
const (
	StageNewLeads    = "New Leads"
	StageContacted   = "Contacted"
	StageFollowUp    = "Follow-up"
	StageNegotiation = "Negotiation"
	StageClosed      = "Closed"
)

// ValidStages lists the pipeline in board order.
var ValidStages = []string{StageNewLeads, StageContacted, StageFollowUp, StageNegotiation, StageClosed}

// IsValidStage reports whether s is one of the five pipeline stages.
func IsValidStage(s string) bool {
	for _, v := range ValidStages {
		if v == s {
			return true
		}
	}
	return false
}

// Lead priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// IsValidPriority reports whether p is high, medium or low.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Lead is a prospect tracked on the owner's pipeline.
type Lead struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Company         *string    `json:"company"`
	Phone           *string    `json:"phone"`
	Email           *string    `json:"email"`
	Address         *string    `json:"address"`
	Stage           string     `json:"stage"`
	Priority        string     `json:"priority"`
	Notes           *string    `json:"notes"`
	UserID          string     `json:"user_id"`
	CreatedAt       time.Time  `json:"created_at"`
	LastInteraction *time.Time `json:"last_interaction"`
}

// LeadInput is the body for POST /api/leads and PUT /api/leads/{id}.
// Update is a full replace, so omitted fields fall back to the create defaults.
type LeadInput struct {
	Name     string  `json:"name"`
	Company  *string `json:"company"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Stage    string  `json:"stage"`
	Priority string  `json:"priority"`
	Notes    *string `json:"notes"`
}

// ApplyDefaults fills stage and priority when the client left them empty.
func (in *LeadInput) ApplyDefaults() {
	if in.Stage == "" {
		in.Stage = StageNewLeads
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
}

// Validate checks the input after defaults have been applied.
func (in *LeadInput) Validate() error {
	if in.Name == "" {
		return &ErrValidation{Field: "name", Message: "required"}
	}
	if !IsValidStage(in.Stage) {
		return &ErrValidation{Message: "Invalid stage"}
	}
	if !IsValidPriority(in.Priority) {
		return &ErrValidation{Field: "priority", Message: "must be one of high, medium, low"}
	}
	return nil
}
