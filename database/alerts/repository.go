package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tonpulse/database"
	models "tonpulse/database/models_pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Flags holds the enabled state of both alert kinds for one token
type Flags struct {
	Price     bool `json:"price"`
	Sentiment bool `json:"sentiment"`
}

// Repository handles database operations for alert preferences and history
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new alerts repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SetAlert upserts the (user, token, kind) preference and appends one history
// entry recording the toggle. Returns the history entry so callers can fan it
// out to notification channels.
func (r *Repository) SetAlert(ctx context.Context, userID, tokenAddress, kind string, enabled bool, tokenSymbol, tokenName string) (*models.AlertHistoryEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, database.NewValidationError("userId", "is required")
	}
	if strings.TrimSpace(tokenAddress) == "" {
		return nil, database.NewValidationError("tokenAddress", "is required")
	}
	if kind != models.AlertKindPrice && kind != models.AlertKindSentiment {
		return nil, database.NewValidationError("type", "must be price or sentiment")
	}

	now := time.Now().UTC()
	address := strings.ToLower(tokenAddress)

	alert := models.Alert{
		UserID:       userID,
		TokenAddress: address,
		Kind:         kind,
		Enabled:      enabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "token_address"}, {Name: "kind"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
		}).
		Create(&alert).Error
	if err != nil {
		return nil, fmt.Errorf("SetAlert: %w", err)
	}

	action := "disabled"
	if enabled {
		action = "enabled"
	}
	entry := models.AlertHistoryEntry{
		UserID:       userID,
		TokenAddress: address,
		TokenSymbol:  tokenSymbol,
		TokenName:    tokenName,
		Kind:         kind,
		Action:       action,
		Timestamp:    now,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("SetAlert: record history: %w", err)
	}

	return &entry, nil
}

// GetAlert reports whether the (user, token, kind) alert is enabled.
// Unset preferences read as disabled.
func (r *Repository) GetAlert(ctx context.Context, userID, tokenAddress, kind string) (bool, error) {
	var alert models.Alert
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token_address = ? AND kind = ?", userID, strings.ToLower(tokenAddress), kind).
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("GetAlert: %w", err)
	}
	return alert.Enabled, nil
}

// GetUserAlerts returns the enabled flags of every alert the user has
// configured, keyed by token address
func (r *Repository) GetUserAlerts(ctx context.Context, userID string) (map[string]Flags, error) {
	var list []models.Alert
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("GetUserAlerts: %w", err)
	}

	out := make(map[string]Flags, len(list))
	for _, a := range list {
		flags := out[a.TokenAddress]
		switch a.Kind {
		case models.AlertKindPrice:
			flags.Price = a.Enabled
		case models.AlertKindSentiment:
			flags.Sentiment = a.Enabled
		}
		out[a.TokenAddress] = flags
	}
	return out, nil
}

// GetAlertHistory returns the user's toggle history, newest first
func (r *Repository) GetAlertHistory(ctx context.Context, userID string, limit int) ([]models.AlertHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	var history []models.AlertHistoryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("GetAlertHistory: %w", err)
	}
	return history, nil
}
