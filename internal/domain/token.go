package domain

import "time"

// Token is a tracked fan token from the fixed catalog.
// Immutable once seeded except for IsActive toggling; tokens are
// deactivated, never deleted.
type Token struct {
	Symbol            string   // unique key, e.g. "PSG"
	Name              string   // display name
	Team              string   // club / organisation behind the token
	League            string   // empty for base tokens
	Country           string   // empty when not applicable
	PriceFeedID       string   // external price-feed identifier
	CirculatingSupply *float64 // nil when unknown; used for market cap
	IsActive          bool
	CreatedAt         time.Time
}

// Exchange is a tracked trading venue.
type Exchange struct {
	Code     string // unique key, e.g. "binance"
	Name     string
	FeedID   string // identifier on the external price feed
	Priority int    // tie-break rank when venues report the same instant (1 = highest)
	IsActive bool
}
