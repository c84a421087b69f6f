package models

// Milestones maps a threshold to the first date ("2006-01-02") it was reached.
type Milestones map[int]string

// AchievementStats is derived from a per-day XP series.
type AchievementStats struct {
	MaxStreak     int `json:"maxStreak"`
	CurrentStreak int `json:"currentStreak"`
	// CurrentStreakCapped is set when the backward walk hit its iteration bound.
	CurrentStreakCapped bool `json:"currentStreakCapped,omitempty"`
	MaxDailyXP          int  `json:"maxDailyXp"`
	TotalDays           int  `json:"totalDays"`
	TotalXP             int  `json:"totalXp"`

	StreakMilestones    Milestones `json:"streakMilestones"`
	DailyXPMilestones   Milestones `json:"dailyXpMilestones"`
	TotalDaysMilestones Milestones `json:"totalDaysMilestones"`
	TotalXPMilestones   Milestones `json:"totalXpMilestones"`
}

type BadgeCategory string

const (
	BadgeStreak    BadgeCategory = "streak"
	BadgeDailyXP   BadgeCategory = "dailyXp"
	BadgeTotalDays BadgeCategory = "totalDays"
	BadgeTotalXP   BadgeCategory = "totalXp"
)

type BadgeTier string

const (
	TierBronze   BadgeTier = "bronze"
	TierSilver   BadgeTier = "silver"
	TierGold     BadgeTier = "gold"
	TierPlatinum BadgeTier = "platinum"
	TierDiamond  BadgeTier = "diamond"
)

// Badge is the unlock state of one achievement.
type Badge struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Category     BadgeCategory `json:"category"`
	Tier         BadgeTier     `json:"tier"`
	Threshold    int           `json:"threshold"`
	Unit         string        `json:"unit"`
	Current      int           `json:"current"`
	Unlocked     bool          `json:"unlocked"`
	Progress     float64       `json:"progress"`
	UnlockedDate string        `json:"unlockedDate,omitempty"`
}

// WeeklySummary aggregates the elapsed days of the current natural week.
type WeeklySummary struct {
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	DaysLearned int    `json:"daysLearned"`
	TotalXP     int    `json:"totalXp"`
	TotalTime   int    `json:"totalTime"`
	IsEstimated bool   `json:"isEstimated"`
}
