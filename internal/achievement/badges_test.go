package achievement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/duodash/internal/achievement"
	"github.com/vytor/duodash/internal/models"
)

func findBadge(t *testing.T, badges []models.Badge, id string) models.Badge {
	t.Helper()
	for _, b := range badges {
		if b.ID == id {
			return b
		}
	}
	require.Failf(t, "badge not found", "id %s", id)
	return models.Badge{}
}

func TestBadges(t *testing.T) {
	stats := models.AchievementStats{
		MaxStreak:           30,
		MaxDailyXP:          1500,
		TotalDays:           120,
		TotalXP:             25000,
		StreakMilestones:    models.Milestones{7: "2024-01-07", 30: "2024-01-30"},
		DailyXPMilestones:   models.Milestones{500: "2024-02-01", 1000: "2024-02-03"},
		TotalDaysMilestones: models.Milestones{50: "2024-02-19", 100: "2024-04-09"},
		TotalXPMilestones:   models.Milestones{10000: "2024-03-01"},
	}

	badges := achievement.Badges(stats)
	require.Len(t, badges, 17)
	assert.Equal(t, 7, achievement.UnlockedCount(badges))

	streak30 := findBadge(t, badges, "streak30")
	assert.True(t, streak30.Unlocked)
	assert.Equal(t, 1.0, streak30.Progress)
	assert.Equal(t, "2024-01-30", streak30.UnlockedDate)
	assert.Equal(t, models.TierSilver, streak30.Tier)

	streak60 := findBadge(t, badges, "streak60")
	assert.False(t, streak60.Unlocked)
	assert.Equal(t, 0.5, streak60.Progress)
	assert.Empty(t, streak60.UnlockedDate)

	xp2000 := findBadge(t, badges, "xp2000")
	assert.Equal(t, 1500, xp2000.Current)
	assert.InDelta(t, 0.75, xp2000.Progress, 1e-9)

	days100 := findBadge(t, badges, "days100")
	assert.True(t, days100.Unlocked)
	assert.Equal(t, "2024-04-09", days100.UnlockedDate)

	total := findBadge(t, badges, "totalXp500000")
	assert.Equal(t, models.TierDiamond, total.Tier)
	assert.Equal(t, models.BadgeTotalXP, total.Category)
	assert.InDelta(t, 0.05, total.Progress, 1e-9)
}

func TestBadges_ZeroStats(t *testing.T) {
	badges := achievement.Badges(models.AchievementStats{})
	assert.Zero(t, achievement.UnlockedCount(badges))
	for _, b := range badges {
		assert.Zero(t, b.Progress, b.ID)
	}
}

func TestSummarizeWeek(t *testing.T) {
	p := models.UserProgress{
		WeeklyXPHistory: []models.XPPoint{
			{Date: "2024-03-04", XP: 10},
			{Date: "2024-03-05", XP: 0},
			{Date: "2024-03-06", XP: 30},
			{Date: "2024-03-07", IsFuture: true},
			{Date: "2024-03-08", IsFuture: true},
			{Date: "2024-03-09", IsFuture: true},
			{Date: "2024-03-10", IsFuture: true},
		},
		WeeklyTimeHistory: []models.TimePoint{
			{Date: "2024-03-04", Minutes: 5},
			{Date: "2024-03-05"},
			{Date: "2024-03-06", Minutes: 10, IsEstimated: true},
			{Date: "2024-03-07", IsFuture: true},
			{Date: "2024-03-08", IsFuture: true},
			{Date: "2024-03-09", IsFuture: true},
			{Date: "2024-03-10", IsFuture: true},
		},
	}

	assert.Equal(t, models.WeeklySummary{
		StartDate:   "2024-03-04",
		EndDate:     "2024-03-10",
		DaysLearned: 2,
		TotalXP:     40,
		TotalTime:   15,
		IsEstimated: true,
	}, achievement.SummarizeWeek(p))

	assert.Equal(t, models.WeeklySummary{}, achievement.SummarizeWeek(models.UserProgress{}))
}
