package sentiment

import (
	"context"
	"errors"
	"testing"

	models "tonpulse/database/models_pkg"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// The in-memory database lives on a single connection
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Sentiment{}, &models.Vote{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func countVotes(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Vote{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count votes: %v", err)
	}
	return count
}

func TestSubmitVoteRecordsVoteAndSentiment(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	s, err := repo.SubmitVote(ctx, "EQAAA", "user1", models.VoteBullish)
	if err != nil {
		t.Fatalf("SubmitVote returned error: %v", err)
	}

	if s.BullishVotes != 1 || s.TotalVotes != 1 {
		t.Errorf("counts = %d/%d, want 1/1", s.BullishVotes, s.TotalVotes)
	}
	if s.BullishPercent != 100 || s.BearishPercent != 0 {
		t.Errorf("percentages = %d/%d, want 100/0", s.BullishPercent, s.BearishPercent)
	}
	if got := countVotes(t, db); got != 1 {
		t.Errorf("vote rows = %d, want 1", got)
	}
}

func TestSubmitVoteCooldownRejectsSecondVote(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	if _, err := repo.SubmitVote(ctx, "EQAAA", "user1", models.VoteBullish); err != nil {
		t.Fatalf("first vote returned error: %v", err)
	}

	if _, err := repo.SubmitVote(ctx, "EQAAA", "user1", models.VoteBearish); !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("second vote error = %v, want ErrAlreadyVoted", err)
	}
	if got := countVotes(t, db); got != 1 {
		t.Errorf("vote rows = %d, want 1", got)
	}
}

func TestSubmitVoteOtherUserStillCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	repo.SubmitVote(ctx, "EQAAA", "user1", models.VoteBullish)
	s, err := repo.SubmitVote(ctx, "EQAAA", "user2", models.VoteBearish)
	if err != nil {
		t.Fatalf("SubmitVote returned error: %v", err)
	}

	if s.TotalVotes != 2 || s.BullishVotes != 1 || s.BearishVotes != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/2", s.BullishVotes, s.BearishVotes, s.TotalVotes)
	}
	if s.BullishPercent+s.BearishPercent != 100 {
		t.Errorf("percentages sum to %d, want 100", s.BullishPercent+s.BearishPercent)
	}
}

func TestSubmitVoteRollsBackVoteWhenSentimentWriteFails(t *testing.T) {
	db := newTestDB(t)

	// Fail every write to the sentiments table; the vote insert inside the
	// same transaction must not survive the rollback.
	failErr := errors.New("sentiments write refused")
	err := db.Callback().Create().Before("gorm:create").Register("refuse_sentiments", func(tx *gorm.DB) {
		if tx.Statement.Table == "sentiments" {
			tx.AddError(failErr)
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}

	repo := NewRepository(db)
	if _, err := repo.SubmitVote(context.Background(), "EQAAA", "user1", models.VoteBullish); err == nil {
		t.Fatal("expected SubmitVote to fail")
	}

	if got := countVotes(t, db); got != 0 {
		t.Errorf("vote rows = %d, want 0 after rollback", got)
	}
}

func TestGetSentimentLazilyCreatesDefault(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	s, err := repo.GetSentiment(ctx, "EQAAA")
	if err != nil {
		t.Fatalf("GetSentiment returned error: %v", err)
	}
	if s.BullishPercent != 50 || s.BearishPercent != 50 || s.TotalVotes != 0 {
		t.Errorf("got %d/%d with %d votes, want 50/50 with 0", s.BullishPercent, s.BearishPercent, s.TotalVotes)
	}

	// Second read returns the persisted record
	again, err := repo.GetSentiment(ctx, "EQAAA")
	if err != nil {
		t.Fatalf("GetSentiment returned error: %v", err)
	}
	if again.Address != s.Address {
		t.Errorf("address = %q, want %q", again.Address, s.Address)
	}
}

func TestGetAllSentimentsRanksByTotalVotes(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	repo.SubmitVote(ctx, "EQAAA", "user1", models.VoteBullish)
	repo.SubmitVote(ctx, "EQBBB", "user1", models.VoteBullish)
	repo.SubmitVote(ctx, "EQBBB", "user2", models.VoteBearish)

	all, err := repo.GetAllSentiments(ctx)
	if err != nil {
		t.Fatalf("GetAllSentiments returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d records, want 2", len(all))
	}
	if all[0].Address != "eqbbb" || all[0].Rank != 1 {
		t.Errorf("first = %s rank %d, want eqbbb rank 1", all[0].Address, all[0].Rank)
	}
	if all[1].Address != "eqaaa" || all[1].Rank != 2 {
		t.Errorf("second = %s rank %d, want eqaaa rank 2", all[1].Address, all[1].Rank)
	}
}
