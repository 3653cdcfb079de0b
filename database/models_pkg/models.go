package models

import "time"

// Vote choices
const (
	VoteBullish = "bullish"
	VoteBearish = "bearish"
)

// Alert kinds
const (
	AlertKindPrice     = "price"
	AlertKindSentiment = "sentiment"
)

// Sentiment represents the aggregate crowd sentiment for one token.
// Lazily created on first read or first vote, updated on every accepted
// vote, never deleted. Percentages default to 50/50 while TotalVotes is 0
// and always sum to 100.
//
// Rank is not persisted; it is the 1-based position when ordering all
// records by TotalVotes descending and is filled in by the repository.
type Sentiment struct {
	Address        string    `gorm:"primaryKey;size:80" json:"address"`
	BullishVotes   int64     `gorm:"not null" json:"bullishVotes"`
	BearishVotes   int64     `gorm:"not null" json:"bearishVotes"`
	TotalVotes     int64     `gorm:"not null;index" json:"totalVotes"`
	BullishPercent int       `gorm:"not null" json:"bullishPercent"`
	BearishPercent int       `gorm:"not null" json:"bearishPercent"`
	Rank           int       `gorm:"-" json:"rank"`
	LastUpdated    time.Time `gorm:"not null" json:"lastUpdated"`
}

// TableName specifies the table name for Sentiment
func (Sentiment) TableName() string {
	return "sentiments"
}

// Vote is an immutable record of one sentiment vote. The logical "current"
// vote per (user, token) is the most recent by timestamp. The composite
// index backs the 24h rate-limit query.
type Vote struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	TokenAddress string    `gorm:"size:80;not null;index:idx_votes_token_user_time,priority:1" json:"tokenAddress"`
	UserID       string    `gorm:"size:120;not null;index:idx_votes_token_user_time,priority:2" json:"userId"`
	Choice       string    `gorm:"size:10;not null" json:"vote"`
	Timestamp    time.Time `gorm:"not null;index:idx_votes_token_user_time,priority:3" json:"timestamp"`
}

// TableName specifies the table name for Vote
func (Vote) TableName() string {
	return "votes"
}

// WatchlistEntry marks one token as watched by one user
type WatchlistEntry struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string    `gorm:"size:120;not null;uniqueIndex:idx_watchlist_user_token,priority:1" json:"userId"`
	TokenAddress string    `gorm:"size:80;not null;uniqueIndex:idx_watchlist_user_token,priority:2" json:"tokenAddress"`
	AddedAt      time.Time `gorm:"not null" json:"addedAt"`
}

// TableName specifies the table name for WatchlistEntry
func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}

// Alert is a per-user alert preference for one token and kind (price or
// sentiment). Upserted by toggle actions.
type Alert struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string    `gorm:"size:120;not null;uniqueIndex:idx_alerts_user_token_kind,priority:1" json:"userId"`
	TokenAddress string    `gorm:"size:80;not null;uniqueIndex:idx_alerts_user_token_kind,priority:2" json:"tokenAddress"`
	Kind         string    `gorm:"size:12;not null;uniqueIndex:idx_alerts_user_token_kind,priority:3" json:"type"`
	Enabled      bool      `gorm:"not null" json:"enabled"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName specifies the table name for Alert
func (Alert) TableName() string {
	return "alerts"
}

// AlertHistoryEntry records one alert toggle. Append-only, never mutated.
// Symbol and name are snapshots of the token at toggle time so the history
// stays readable even if metadata changes upstream.
type AlertHistoryEntry struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string    `gorm:"size:120;not null;index" json:"userId"`
	TokenAddress string    `gorm:"size:80;not null" json:"tokenAddress"`
	TokenSymbol  string    `gorm:"size:32" json:"tokenSymbol,omitempty"`
	TokenName    string    `gorm:"size:120" json:"tokenName,omitempty"`
	Kind         string    `gorm:"size:12;not null" json:"type"`
	Action       string    `gorm:"size:12;not null" json:"action"` // enabled, disabled
	Timestamp    time.Time `gorm:"not null;index" json:"timestamp"`
}

// TableName specifies the table name for AlertHistoryEntry
func (AlertHistoryEntry) TableName() string {
	return "alert_history"
}
