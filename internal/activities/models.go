package activities

import (
	"regexp"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v3"
)

const IDPrefix = "act_"

type Activity struct {
	ID              string          `json:"id" gorm:"type:varchar(64);primaryKey"`
	Title           string          `json:"title" gorm:"not null;size:200"`
	Slug            string          `json:"slug" gorm:"not null;size:220;uniqueIndex"`
	Description     string          `json:"description" gorm:"type:text"`
	Category        string          `json:"category" gorm:"size:50;index"`
	Location        string          `json:"location" gorm:"size:255"`
	DurationMinutes int             `json:"duration_minutes" gorm:"not null;default:0;check:duration_minutes >= 0"`
	PriceAdult      float64         `json:"price_adult" gorm:"type:decimal(10,2);not null;check:price_adult >= 0"`
	PriceChild      float64         `json:"price_child" gorm:"type:decimal(10,2);not null;default:0;check:price_child >= 0"`
	PriceSenior     float64         `json:"price_senior" gorm:"type:decimal(10,2);not null;default:0;check:price_senior >= 0"`
	Currency        string          `json:"currency" gorm:"type:varchar(3);not null"`
	MaxParticipants int             `json:"max_participants" gorm:"not null;default:0"`
	IsActive        bool            `json:"is_active" gorm:"not null"`
	Images          []ActivityImage `json:"images" gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Activity) TableName() string { return "activities" }

// Accepts reports whether a party of n fits; zero MaxParticipants means unlimited
func (a *Activity) Accepts(n int) bool {
	return a.MaxParticipants <= 0 || n <= a.MaxParticipants
}

type ActivityImage struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	ActivityID string    `json:"activity_id" gorm:"type:varchar(64);not null;index"`
	URL        string    `json:"url" gorm:"not null;size:1000"`
	Provider   string    `json:"provider" gorm:"not null;size:20"`
	ObjectKey  string    `json:"-" gorm:"not null;size:500"`
	AltText    string    `json:"alt_text" gorm:"size:255"`
	Position   int       `json:"position" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (ActivityImage) TableName() string { return "activity_images" }

func NewActivityID() string {
	return IDPrefix + shortuuid.New()
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title and joins its alphanumeric runs with hyphens
func Slugify(title string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
}
