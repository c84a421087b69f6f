// Package achievement derives streaks, milestones and badges from a per-day
// XP series. Everything here is pure: the same series and clock always give
// the same result, and malformed input degrades to zero values.
package achievement

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/normalize"
)

const (
	dateLayout = "2006-01-02"

	// Upper bound on the backward walk that measures the current streak.
	maxStreakWalk = 3650
)

// DailyXP is one day of activity. Time is minutes, when known.
type DailyXP struct {
	Date string   `json:"date"`
	XP   float64  `json:"xp"`
	Time *float64 `json:"time,omitempty"`
}

type day struct {
	date time.Time
	key  string
	xp   float64
}

// Engine computes AchievementStats relative to "today" in a fixed zone.
type Engine struct {
	loc *time.Location
	now func() time.Time
}

type Option func(*Engine)

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an Engine. Without options it shares the normalizer's
// default reference zone and reads the wall clock.
func NewEngine(opts ...Option) *Engine {
	loc, _ := normalize.LoadLocation(normalize.DefaultTimeZone)
	e := &Engine{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute never fails; entries with an unreadable date or a non-finite XP
// value are ignored.
func (e *Engine) Compute(series []DailyXP) models.AchievementStats {
	return Compute(series, e.now(), e.loc)
}

// Compute derives AchievementStats from series with today taken from now in loc.
func Compute(series []DailyXP, now time.Time, loc *time.Location) models.AchievementStats {
	if loc == nil {
		loc = time.UTC
	}
	days, byKey := prepare(series)

	active := make([]day, 0, len(days))
	for _, d := range days {
		if d.xp > 0 {
			active = append(active, d)
		}
	}

	stats := models.AchievementStats{TotalDays: len(active)}

	streaks := newTracker(atLeast, StreakThresholds)
	stats.MaxStreak = longestStreak(active, streaks)

	y, m, dd := now.In(loc).Date()
	stats.CurrentStreak, stats.CurrentStreakCapped = currentStreak(byKey, time.Date(y, m, dd, 0, 0, 0, 0, time.UTC))

	dailyXP := newTracker(atLeast, DailyXPThresholds)
	var maxDaily float64
	for _, d := range days {
		maxDaily = math.Max(maxDaily, d.xp)
		dailyXP.observe(d.xp, d.key)
	}
	stats.MaxDailyXP = int(maxDaily)

	totalDays := newTracker(exactly, TotalDaysThresholds)
	totalXP := newTracker(atLeast, TotalXPThresholds)
	var running float64
	for i, d := range active {
		totalDays.observe(float64(i+1), d.key)
		running += d.xp
		totalXP.observe(running, d.key)
	}
	stats.TotalXP = int(running)

	stats.StreakMilestones = streaks.hits
	stats.DailyXPMilestones = dailyXP.hits
	stats.TotalDaysMilestones = totalDays.hits
	stats.TotalXPMilestones = totalXP.hits
	return stats
}

// prepare drops unreadable entries, sums duplicate dates and sorts ascending.
func prepare(series []DailyXP) ([]day, map[string]float64) {
	byKey := make(map[string]float64, len(series))
	dates := make(map[string]time.Time, len(series))
	for _, s := range series {
		if math.IsNaN(s.XP) || math.IsInf(s.XP, 0) {
			continue
		}
		t, ok := parseDate(s.Date)
		if !ok {
			continue
		}
		key := t.Format(dateLayout)
		byKey[key] += s.XP
		dates[key] = t
	}

	days := make([]day, 0, len(byKey))
	for key, xp := range byKey {
		days = append(days, day{date: dates[key], key: key, xp: xp})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })
	return days, byKey
}

func longestStreak(active []day, milestones *tracker) int {
	if len(active) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(active); i++ {
		if dayDiff(active[i-1].date, active[i].date) == 1 {
			run++
			milestones.observe(float64(run), active[i].key)
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// currentStreak walks back from today, or from yesterday when today has no
// XP yet.
func currentStreak(byKey map[string]float64, today time.Time) (int, bool) {
	d := today
	if byKey[d.Format(dateLayout)] <= 0 {
		d = d.AddDate(0, 0, -1)
	}
	streak := 0
	for i := 0; i < maxStreakWalk; i++ {
		if byKey[d.Format(dateLayout)] <= 0 {
			return streak, false
		}
		streak++
		d = d.AddDate(0, 0, -1)
	}
	return streak, true
}

func dayDiff(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// Calendar layouts tried in order; the second accepts "2024-1-5".
var dateLayouts = []string{dateLayout, "2006-1-2"}

// parseDate accepts "2006-01-02", "2006/01/02", unpadded "2006-1-2" and
// RFC 3339 timestamps, of which only the calendar date is kept.
func parseDate(s string) (time.Time, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "/", "-")
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
