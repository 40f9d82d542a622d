package profiles

type ProfileListResponse struct {
	Profiles   []Profile `json:"profiles"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}
