package achievement

import "github.com/vytor/duodash/internal/models"

const (
	unitDays = "days"
	unitXP   = "XP"
)

type badgeDef struct {
	id        string
	name      string
	category  models.BadgeCategory
	tier      models.BadgeTier
	threshold int
	unit      string
}

var catalog = []badgeDef{
	{"streak7", "First Spark", models.BadgeStreak, models.TierBronze, 7, unitDays},
	{"streak30", "Persistence", models.BadgeStreak, models.TierSilver, 30, unitDays},
	{"streak60", "Unbreakable", models.BadgeStreak, models.TierGold, 60, unitDays},
	{"streak100", "Hundred Day March", models.BadgeStreak, models.TierPlatinum, 100, unitDays},
	{"streak365", "No Days Off", models.BadgeStreak, models.TierDiamond, 365, unitDays},

	{"xp500", "Warming Up", models.BadgeDailyXP, models.TierBronze, 500, unitXP},
	{"xp1000", "Unstoppable", models.BadgeDailyXP, models.TierSilver, 1000, unitXP},
	{"xp2000", "A Thousand Miles a Day", models.BadgeDailyXP, models.TierGold, 2000, unitXP},
	{"xp5000", "Summit", models.BadgeDailyXP, models.TierDiamond, 5000, unitXP},

	{"days50", "Sailing the Sea of Study", models.BadgeTotalDays, models.TierBronze, 50, unitDays},
	{"days100", "Hundred Days Banked", models.BadgeTotalDays, models.TierSilver, 100, unitDays},
	{"days200", "Well Read", models.BadgeTotalDays, models.TierGold, 200, unitDays},
	{"days365", "A Year's Promise", models.BadgeTotalDays, models.TierPlatinum, 365, unitDays},

	{"totalXp10000", "Long March", models.BadgeTotalXP, models.TierBronze, 10000, unitXP},
	{"totalXp50000", "Fifty Thousand", models.BadgeTotalXP, models.TierSilver, 50000, unitXP},
	{"totalXp100000", "Hundred Thousand Strong", models.BadgeTotalXP, models.TierGold, 100000, unitXP},
	{"totalXp500000", "Language Master", models.BadgeTotalXP, models.TierDiamond, 500000, unitXP},
}

// Badges evaluates every badge in the catalog against stats, in catalog order.
func Badges(stats models.AchievementStats) []models.Badge {
	badges := make([]models.Badge, 0, len(catalog))
	for _, def := range catalog {
		current, milestones := progressFor(stats, def.category)
		b := models.Badge{
			ID:        def.id,
			Name:      def.name,
			Category:  def.category,
			Tier:      def.tier,
			Threshold: def.threshold,
			Unit:      def.unit,
			Current:   current,
			Unlocked:  current >= def.threshold,
			Progress:  float64(current) / float64(def.threshold),
		}
		if b.Progress > 1 {
			b.Progress = 1
		}
		if b.Unlocked {
			b.UnlockedDate = milestones[def.threshold]
		}
		badges = append(badges, b)
	}
	return badges
}

// UnlockedCount returns how many badges are unlocked.
func UnlockedCount(badges []models.Badge) int {
	n := 0
	for _, b := range badges {
		if b.Unlocked {
			n++
		}
	}
	return n
}

func progressFor(stats models.AchievementStats, category models.BadgeCategory) (int, models.Milestones) {
	switch category {
	case models.BadgeStreak:
		return stats.MaxStreak, stats.StreakMilestones
	case models.BadgeDailyXP:
		return stats.MaxDailyXP, stats.DailyXPMilestones
	case models.BadgeTotalDays:
		return stats.TotalDays, stats.TotalDaysMilestones
	case models.BadgeTotalXP:
		return stats.TotalXP, stats.TotalXPMilestones
	default:
		return 0, nil
	}
}
