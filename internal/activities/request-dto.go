package activities

type CreateActivityRequest struct {
	Title           string  `json:"title" binding:"required,min=3,max=200"`
	Slug            string  `json:"slug" binding:"omitempty,max=220"`
	Description     string  `json:"description" binding:"max=5000"`
	Category        string  `json:"category" binding:"required,max=50"`
	Location        string  `json:"location" binding:"max=255"`
	DurationMinutes int     `json:"duration_minutes" binding:"min=0"`
	PriceAdult      float64 `json:"price_adult" binding:"min=0"`
	PriceChild      float64 `json:"price_child" binding:"min=0"`
	PriceSenior     float64 `json:"price_senior" binding:"min=0"`
	Currency        string  `json:"currency" binding:"omitempty,len=3"`
	MaxParticipants int     `json:"max_participants" binding:"min=0"`
	IsActive        *bool   `json:"is_active"`
}

type UpdateActivityRequest struct {
	Title           *string  `json:"title" binding:"omitempty,min=3,max=200"`
	Description     *string  `json:"description" binding:"omitempty,max=5000"`
	Category        *string  `json:"category" binding:"omitempty,max=50"`
	Location        *string  `json:"location" binding:"omitempty,max=255"`
	DurationMinutes *int     `json:"duration_minutes" binding:"omitempty,min=0"`
	PriceAdult      *float64 `json:"price_adult" binding:"omitempty,min=0"`
	PriceChild      *float64 `json:"price_child" binding:"omitempty,min=0"`
	PriceSenior     *float64 `json:"price_senior" binding:"omitempty,min=0"`
	Currency        *string  `json:"currency" binding:"omitempty,len=3"`
	MaxParticipants *int     `json:"max_participants" binding:"omitempty,min=0"`
	IsActive        *bool    `json:"is_active"`
}

type ListQuery struct {
	Category        string `form:"category"`
	Search          string `form:"search"`
	Page            int    `form:"page"`
	Limit           int    `form:"limit"`
	IncludeInactive bool   `form:"-"`
}

// ImageUpload is a decoded multipart image
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
	AltText     string
}
