package types

// Overview aggregates a user's whole log into headline numbers.
type Overview struct {
	TotalSessions  int     `json:"total_sessions"`
	TotalCatches   int     `json:"total_catches"`
	TotalLocations int     `json:"total_locations"`
	ReleasedCount  int     `json:"released_count"`
	KeptCount      int     `json:"kept_count"`
	TotalWeightKg  float64 `json:"total_weight_kg"`
	TotalHours     float64 `json:"total_hours"`
	// LastSessionDate and LastSessionLocation identify the most recent
	// session by date, then start time. Null when the user has no sessions.
	LastSessionDate     *Date   `json:"last_session_date"`
	LastSessionLocation *string `json:"last_session_location"`
}

// SpeciesStat aggregates the user's catches of one species.
// Weight aggregates are null when no catch of the species has a weight.
type SpeciesStat struct {
	Species       string   `json:"species"`
	Count         int      `json:"count"`
	AvgWeightKg   *float64 `json:"avg_weight_kg"`
	TotalWeightKg *float64 `json:"total_weight_kg"`
	ReleasedCount int      `json:"released_count"`
	KeptCount     int      `json:"kept_count"`
}

// LocationStat aggregates sessions and catches per owned location.
// Locations without sessions appear with zero counts.
type LocationStat struct {
	LocationID    string   `json:"location_id"`
	LocationName  string   `json:"location_name"`
	SessionsCount int      `json:"sessions_count"`
	CatchesCount  int      `json:"catches_count"`
	TotalHours    float64  `json:"total_hours"`
	AvgWeightKg   *float64 `json:"avg_weight_kg"`
}

// BaitStat aggregates the user's catches per non-empty bait value.
// SuccessRate is the bait's share of all the user's catches, in percent.
type BaitStat struct {
	Bait          string   `json:"bait"`
	Count         int      `json:"count"`
	AvgWeightKg   *float64 `json:"avg_weight_kg"`
	ReleasedCount int      `json:"released_count"`
	KeptCount     int      `json:"kept_count"`
	SuccessRate   float64  `json:"success_rate"`
}

// MonthlyStat buckets sessions and catches into one calendar month.
type MonthlyStat struct {
	// Month is the bucket in YYYY-MM form.
	Month         string  `json:"month"`
	SessionsCount int     `json:"sessions_count"`
	TotalHours    float64 `json:"total_hours"`
	CatchesCount  int     `json:"catches_count"`
	TotalWeightKg float64 `json:"total_weight_kg"`
}

// RecentActivity holds a user's latest sessions and catches.
type RecentActivity struct {
	RecentSessions []FishingSession `json:"recent_sessions"`
	RecentCatches  []Catch          `json:"recent_catches"`
}
