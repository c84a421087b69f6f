package models

// LeagueUnavailable is the league name used when no tier could be resolved.
const LeagueUnavailable = "unavailable"

// LeagueTiers lists league names by tier index.
var LeagueTiers = [...]string{
	"Bronze", "Silver", "Gold", "Sapphire", "Ruby",
	"Emerald", "Amethyst", "Pearl", "Obsidian", "Diamond",
}

// League is the learner's leaderboard tier. TierIndex is -1 when unknown.
type League struct {
	Name      string `json:"name"`
	TierIndex int    `json:"tierIndex"`
}

type Course struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	XP               int    `json:"xp"`
	Crowns           int    `json:"crowns"`
	FromLanguage     string `json:"fromLanguage"`
	LearningLanguage string `json:"learningLanguage"`
}

// XPPoint is one day of a chart window. Label is a short "M/D" display form.
type XPPoint struct {
	Date     string `json:"date"`
	Label    string `json:"label"`
	XP       int    `json:"xp"`
	IsFuture bool   `json:"isFuture,omitempty"`
}

// TimePoint carries minutes studied for one day of a chart window.
// IsEstimated marks minutes derived from XP rather than measured.
type TimePoint struct {
	Date        string `json:"date"`
	Label       string `json:"label"`
	Minutes     int    `json:"time"`
	IsEstimated bool   `json:"isEstimated"`
	IsFuture    bool   `json:"isFuture,omitempty"`
}

// DayActivity is one recorded day of the full history.
type DayActivity struct {
	Date        string `json:"date"`
	XP          int    `json:"xp"`
	Minutes     *int   `json:"time,omitempty"`
	IsEstimated bool   `json:"isEstimated,omitempty"`
}

type TodaySnapshot struct {
	XPToday             int    `json:"xpToday"`
	LessonsToday        int    `json:"lessonsToday"`
	StreakExtendedToday bool   `json:"streakExtendedToday"`
	StreakExtendedTime  string `json:"streakExtendedTime,omitempty"`
}

// UserProgress is the canonical shape derived from a raw user record.
// It is built fresh on every normalization and never mutated afterwards.
type UserProgress struct {
	Streak              int      `json:"streak"`
	TotalXP             int      `json:"totalXp"`
	Gems                int      `json:"gems"`
	League              League   `json:"league"`
	Courses             []Course `json:"courses"`
	LearningLanguage    string   `json:"learningLanguage"`
	DailyGoal           int      `json:"dailyGoal"`
	AccountAgeDays      int      `json:"accountAgeDays"`
	CreationDateDisplay string   `json:"creationDateDisplay"`
	IsPlus              bool     `json:"isPlus"`

	// Rolling seven days ending today, oldest first.
	DailyXPHistory   []XPPoint   `json:"dailyXpHistory"`
	DailyTimeHistory []TimePoint `json:"dailyTimeHistory"`
	// Current natural week, Monday first.
	WeeklyXPHistory   []XPPoint   `json:"weeklyXpHistory"`
	WeeklyTimeHistory []TimePoint `json:"weeklyTimeHistory"`
	// One entry per recorded date, ascending.
	YearlyXPHistory []DayActivity `json:"yearlyXpHistory"`

	// HasRealTimeData is false when every minutes value was estimated from XP.
	HasRealTimeData bool `json:"hasRealTimeData"`

	EstimatedLearningMinutes int    `json:"estimatedLearningMinutes"`
	EstimatedLearningTime    string `json:"estimatedLearningTime"`

	Today TodaySnapshot `json:"today"`

	NumSessionsCompleted *int `json:"numSessionsCompleted,omitempty"`
	StreakFreezeCount    *int `json:"streakFreezeCount,omitempty"`
	WeeklyXP             *int `json:"weeklyXp,omitempty"`
}

// CoachSummary is the reduced subset of progress handed to the AI coach.
type CoachSummary struct {
	AccountAgeDays   int    `json:"accountAgeDays" validate:"gte=0"`
	IsPlus           bool   `json:"isPlus"`
	Streak           int    `json:"streak" validate:"gte=0"`
	TotalXP          int    `json:"totalXp" validate:"gte=0"`
	CourseCount      int    `json:"courseCount" validate:"gte=0"`
	LearningLanguage string `json:"learningLanguage" validate:"max=64"`
}

// Summary reduces progress to what the AI coach is allowed to see.
func (p UserProgress) Summary() CoachSummary {
	return CoachSummary{
		AccountAgeDays:   p.AccountAgeDays,
		IsPlus:           p.IsPlus,
		Streak:           p.Streak,
		TotalXP:          p.TotalXP,
		CourseCount:      len(p.Courses),
		LearningLanguage: p.LearningLanguage,
	}
}
