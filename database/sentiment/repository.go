package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"tonpulse/database"
	models "tonpulse/database/models_pkg"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteCooldown is the minimum interval between two votes from the same user
// for the same token.
const VoteCooldown = 24 * time.Hour

// ErrAlreadyVoted is returned when the caller voted for the token within the
// cooldown window. This is a normal control-flow outcome, not a failure.
var ErrAlreadyVoted = errors.New("already voted for this token in the last 24 hours")

// ErrPermissionDenied is returned when the store rejects the write due to
// missing grants. Surfaced to the user as a configuration problem.
var ErrPermissionDenied = errors.New("database permissions not configured")

// Stats aggregates vote counts across all tracked tokens
type Stats struct {
	TotalVotes       int64 `json:"totalVotes24h"`
	BullishDominance int   `json:"bullishDominance"`
	TotalTokens      int   `json:"totalTokens"`
}

// Repository handles database operations for sentiment records and votes
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sentiment repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Default returns a fresh 50/50 sentiment record for a token
func Default(address string, now time.Time) models.Sentiment {
	return models.Sentiment{
		Address:        strings.ToLower(address),
		BullishPercent: 50,
		BearishPercent: 50,
		LastUpdated:    now,
	}
}

// Apply returns s with one vote of the given choice added and the derived
// fields recomputed. Percentages always sum to 100.
func Apply(s models.Sentiment, choice string, now time.Time) models.Sentiment {
	if choice == models.VoteBullish {
		s.BullishVotes++
	} else {
		s.BearishVotes++
	}
	s.TotalVotes = s.BullishVotes + s.BearishVotes
	s.BullishPercent = int(math.Round(float64(s.BullishVotes) / float64(s.TotalVotes) * 100))
	s.BearishPercent = 100 - s.BullishPercent
	s.LastUpdated = now
	return s
}

// CooldownRemaining returns how long the user must wait before voting again,
// zero when the cooldown has elapsed.
func CooldownRemaining(votedAt, now time.Time) time.Duration {
	remaining := VoteCooldown - now.Sub(votedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetSentiment returns the sentiment record for a token, lazily creating a
// default 50/50 record on first read.
func (r *Repository) GetSentiment(ctx context.Context, tokenAddress string) (*models.Sentiment, error) {
	address := strings.ToLower(tokenAddress)

	var s models.Sentiment
	err := r.db.WithContext(ctx).First(&s, "address = ?", address).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("GetSentiment: %w", err)
	}

	s = Default(address, time.Now().UTC())
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, fmt.Errorf("GetSentiment: init record: %w", err)
	}
	return &s, nil
}

// GetAllSentiments returns all sentiment records ordered by total votes
// descending, with Rank set to the 1-based position in that order. Ties keep
// the store's natural return order.
func (r *Repository) GetAllSentiments(ctx context.Context) ([]models.Sentiment, error) {
	var sentiments []models.Sentiment
	err := r.db.WithContext(ctx).Order("total_votes DESC").Find(&sentiments).Error
	if err != nil {
		return nil, fmt.Errorf("GetAllSentiments: %w", err)
	}

	for i := range sentiments {
		sentiments[i].Rank = i + 1
	}
	return sentiments, nil
}

// EnsureSentiments seeds default records for any tracked token that has none
func (r *Repository) EnsureSentiments(ctx context.Context, addresses []string) error {
	now := time.Now().UTC()
	for _, addr := range addresses {
		if strings.TrimSpace(addr) == "" {
			continue
		}
		s := Default(addr, now)
		var existing models.Sentiment
		err := r.db.WithContext(ctx).
			Where(models.Sentiment{Address: s.Address}).
			Attrs(s).
			FirstOrCreate(&existing).Error
		if err != nil {
			return fmt.Errorf("EnsureSentiments: %w", err)
		}
	}
	return nil
}

// GetUserVote returns the most recent vote for (token, user), or nil when the
// user never voted. Fails open (no vote) when the votes relation is missing.
func (r *Repository) GetUserVote(ctx context.Context, tokenAddress, userID string) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("token_address = ? AND user_id = ?", strings.ToLower(tokenAddress), strings.ToLower(userID)).
		Order("timestamp DESC").
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || database.IsMissingRelation(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetUserVote: %w", err)
	}
	return &vote, nil
}

// hasVotedRecently reports whether (token, user) has a vote inside the
// cooldown window
func (r *Repository) hasVotedRecently(ctx context.Context, tokenAddress, userID string) (bool, error) {
	cutoff := time.Now().UTC().Add(-VoteCooldown)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("token_address = ? AND user_id = ? AND timestamp >= ?", tokenAddress, userID, cutoff).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SubmitVote records one vote and updates the aggregate sentiment. The two
// writes commit atomically; a failed sentiment update must not leave a vote
// row behind, because that row would rate-limit the user for 24 hours
// without their vote counting.
//
// The rate-limit check stays outside the transaction; two concurrent votes
// from the same user can both pass it. Accepted weakness, carried over
// deliberately.
func (r *Repository) SubmitVote(ctx context.Context, tokenAddress, userID, choice string) (*models.Sentiment, error) {
	if strings.TrimSpace(tokenAddress) == "" {
		return nil, database.NewValidationError("tokenAddress", "is required")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, database.NewValidationError("userId", "is required")
	}
	if choice != models.VoteBullish && choice != models.VoteBearish {
		return nil, database.NewValidationError("vote", "must be bullish or bearish")
	}

	address := strings.ToLower(tokenAddress)
	user := strings.ToLower(userID)

	voted, err := r.hasVotedRecently(ctx, address, user)
	if err != nil {
		switch {
		case database.IsMissingRelation(err):
			// Fail open: treat a missing relation as "has not voted" so the
			// vote still goes through. Availability over strict enforcement.
			log.Printf("⚠️  Vote rate-limit check unavailable, allowing vote: %v", err)
		case database.IsPermissionDenied(err):
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		default:
			return nil, fmt.Errorf("SubmitVote: rate-limit check: %w", err)
		}
	}
	if voted {
		return nil, ErrAlreadyVoted
	}

	now := time.Now().UTC()
	vote := models.Vote{
		ID:           uuid.NewString(),
		TokenAddress: address,
		UserID:       user,
		Choice:       choice,
		Timestamp:    now,
	}

	var updated models.Sentiment
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&vote).Error; err != nil {
			return fmt.Errorf("record vote: %w", err)
		}

		var current models.Sentiment
		err := tx.First(&current, "address = ?", address).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("load sentiment: %w", err)
			}
			current = Default(address, now)
		}

		updated = Apply(current, choice, now)
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&updated).Error; err != nil {
			return fmt.Errorf("save sentiment: %w", err)
		}
		return nil
	})
	if err != nil {
		if database.IsPermissionDenied(err) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("SubmitVote: %w", err)
	}

	return &updated, nil
}

// AggregateStats computes total vote volume, bullish dominance and token
// count across all sentiment records. Dominance defaults to 50 when no votes
// exist.
func (r *Repository) AggregateStats(ctx context.Context) (Stats, error) {
	sentiments, err := r.GetAllSentiments(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{TotalTokens: len(sentiments), BullishDominance: 50}
	var bullish int64
	for _, s := range sentiments {
		stats.TotalVotes += s.TotalVotes
		bullish += s.BullishVotes
	}
	if stats.TotalVotes > 0 {
		stats.BullishDominance = int(math.Round(float64(bullish) / float64(stats.TotalVotes) * 100))
	}
	return stats, nil
}
