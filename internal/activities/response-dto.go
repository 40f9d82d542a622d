package activities

type PaginatedActivities struct {
	Activities []Activity `json:"activities"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}
