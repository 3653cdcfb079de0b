package watchlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tonpulse/database"
	models "tonpulse/database/models_pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles database operations for user watchlists
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new watchlist repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add puts a token on the user's watchlist. Adding the same token twice is a
// no-op; uniqueness on (user, token) is enforced by the store.
func (r *Repository) Add(ctx context.Context, userID, tokenAddress string) error {
	if strings.TrimSpace(userID) == "" {
		return database.NewValidationError("userId", "is required")
	}
	if strings.TrimSpace(tokenAddress) == "" {
		return database.NewValidationError("tokenAddress", "is required")
	}

	entry := models.WatchlistEntry{
		UserID:       userID,
		TokenAddress: strings.ToLower(tokenAddress),
		AddedAt:      time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "token_address"}},
			DoNothing: true,
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("Add: %w", err)
	}
	return nil
}

// Remove deletes a token from the user's watchlist. Removing an absent entry
// is a no-op.
func (r *Repository) Remove(ctx context.Context, userID, tokenAddress string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token_address = ?", userID, strings.ToLower(tokenAddress)).
		Delete(&models.WatchlistEntry{}).Error
	if err != nil {
		return fmt.Errorf("Remove: %w", err)
	}
	return nil
}

// List returns the token addresses on the user's watchlist
func (r *Repository) List(ctx context.Context, userID string) ([]string, error) {
	var entries []models.WatchlistEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	addresses := make([]string, 0, len(entries))
	for _, e := range entries {
		addresses = append(addresses, e.TokenAddress)
	}
	return addresses, nil
}

// IsWatched reports whether the token is on the user's watchlist
func (r *Repository) IsWatched(ctx context.Context, userID, tokenAddress string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WatchlistEntry{}).
		Where("user_id = ? AND token_address = ?", userID, strings.ToLower(tokenAddress)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("IsWatched: %w", err)
	}
	return count > 0, nil
}
