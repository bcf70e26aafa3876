package domain

// DashboardStats is returned by GET /api/dashboard/stats.
// TotalLeads always equals the sum of LeadsByStage.
type DashboardStats struct {
	TotalLeads       int64            `json:"total_leads"`
	LeadsByStage     map[string]int64 `json:"leads_by_stage"`
	ThisWeekCalls    int64            `json:"this_week_calls"`
	ThisWeekEmails   int64            `json:"this_week_emails"`
	RecentActivities []Activity       `json:"recent_activities"`
}

// SuccessResponse is the body of mutations that return no entity.
type SuccessResponse struct {
	Success bool `json:"success"`
}
