package analytics

import "time"

type RevenueByCurrency struct {
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
}

type DailyBookingStat struct {
	Date     string  `json:"date"`
	Bookings int64   `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

type ActivityPerformance struct {
	ActivityID   string `json:"activity_id"`
	Title        string `json:"title"`
	Bookings     int64  `json:"bookings"`
	Participants int64  `json:"participants"`
}

type Dashboard struct {
	TotalBookings    int64                 `json:"total_bookings"`
	BookingsByStatus map[string]int64      `json:"bookings_by_status"`
	ConfirmedRevenue []RevenueByCurrency   `json:"confirmed_revenue"`
	RecentBookings   int64                 `json:"bookings_last_30_days"`
	DailyBookings    []DailyBookingStat    `json:"daily_bookings"`
	TopActivities    []ActivityPerformance `json:"top_activities"`
	TotalProfiles    int64                 `json:"total_profiles"`
	ProfilesByType   map[string]int64      `json:"profiles_by_type"`
	GeneratedAt      time.Time             `json:"generated_at"`
}
