package achievement

import "github.com/vytor/duodash/internal/models"

// SummarizeWeek totals the elapsed days of p's current natural week.
func SummarizeWeek(p models.UserProgress) models.WeeklySummary {
	var s models.WeeklySummary
	if n := len(p.WeeklyXPHistory); n > 0 {
		s.StartDate = p.WeeklyXPHistory[0].Date
		s.EndDate = p.WeeklyXPHistory[n-1].Date
	}

	for _, d := range p.WeeklyXPHistory {
		if d.IsFuture {
			continue
		}
		s.TotalXP += d.XP
		if d.XP > 0 {
			s.DaysLearned++
		}
	}
	for _, d := range p.WeeklyTimeHistory {
		if d.IsFuture {
			continue
		}
		s.TotalTime += d.Minutes
		if d.Minutes > 0 && d.IsEstimated {
			s.IsEstimated = true
		}
	}
	return s
}
