package sentiment

import (
	"testing"
	"time"

	models "tonpulse/database/models_pkg"
)

func TestDefault(t *testing.T) {
	now := time.Now().UTC()
	s := Default("EQAbC", now)

	if s.Address != "eqabc" {
		t.Errorf("Address = %q, want lowercased %q", s.Address, "eqabc")
	}
	if s.BullishPercent != 50 || s.BearishPercent != 50 {
		t.Errorf("percentages = %d/%d, want 50/50", s.BullishPercent, s.BearishPercent)
	}
	if s.TotalVotes != 0 {
		t.Errorf("TotalVotes = %d, want 0", s.TotalVotes)
	}
}

func TestApply(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name        string
		start       models.Sentiment
		choice      string
		wantBullish int64
		wantBearish int64
		wantBullPct int
	}{
		{
			name:        "first bullish vote",
			start:       Default("eqabc", now),
			choice:      models.VoteBullish,
			wantBullish: 1,
			wantBearish: 0,
			wantBullPct: 100,
		},
		{
			name:        "first bearish vote",
			start:       Default("eqabc", now),
			choice:      models.VoteBearish,
			wantBullish: 0,
			wantBearish: 1,
			wantBullPct: 0,
		},
		{
			name: "two thirds bullish rounds to 67",
			start: models.Sentiment{
				Address:      "eqabc",
				BullishVotes: 1,
				BearishVotes: 1,
				TotalVotes:   2,
			},
			choice:      models.VoteBullish,
			wantBullish: 2,
			wantBearish: 1,
			wantBullPct: 67,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.start, tt.choice, now)

			if got.BullishVotes != tt.wantBullish {
				t.Errorf("BullishVotes = %d, want %d", got.BullishVotes, tt.wantBullish)
			}
			if got.BearishVotes != tt.wantBearish {
				t.Errorf("BearishVotes = %d, want %d", got.BearishVotes, tt.wantBearish)
			}
			if got.TotalVotes != tt.wantBullish+tt.wantBearish {
				t.Errorf("TotalVotes = %d, want %d", got.TotalVotes, tt.wantBullish+tt.wantBearish)
			}
			if got.BullishPercent != tt.wantBullPct {
				t.Errorf("BullishPercent = %d, want %d", got.BullishPercent, tt.wantBullPct)
			}
			if got.BullishPercent+got.BearishPercent != 100 {
				t.Errorf("percentages sum to %d, want 100", got.BullishPercent+got.BearishPercent)
			}
			if !got.LastUpdated.Equal(now) {
				t.Errorf("LastUpdated = %v, want %v", got.LastUpdated, now)
			}
		})
	}
}

func TestApplyPercentagesAlwaysSumTo100(t *testing.T) {
	now := time.Now().UTC()
	s := Default("eqabc", now)

	choices := []string{
		models.VoteBullish, models.VoteBearish, models.VoteBullish,
		models.VoteBullish, models.VoteBearish, models.VoteBullish,
		models.VoteBullish,
	}
	for i, choice := range choices {
		s = Apply(s, choice, now)
		if s.BullishPercent+s.BearishPercent != 100 {
			t.Fatalf("after vote %d: percentages sum to %d", i+1, s.BullishPercent+s.BearishPercent)
		}
	}

	if s.BullishVotes != 5 || s.BearishVotes != 2 || s.TotalVotes != 7 {
		t.Errorf("counts = %d/%d/%d, want 5/2/7", s.BullishVotes, s.BearishVotes, s.TotalVotes)
	}
}

func TestCooldownRemaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		votedAt time.Time
		want    time.Duration
	}{
		{
			name:    "just voted",
			votedAt: now,
			want:    VoteCooldown,
		},
		{
			name:    "halfway through",
			votedAt: now.Add(-12 * time.Hour),
			want:    12 * time.Hour,
		},
		{
			name:    "cooldown elapsed",
			votedAt: now.Add(-24 * time.Hour),
			want:    0,
		},
		{
			name:    "long past",
			votedAt: now.Add(-72 * time.Hour),
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CooldownRemaining(tt.votedAt, now); got != tt.want {
				t.Errorf("CooldownRemaining() = %v, want %v", got, tt.want)
			}
		})
	}
}
