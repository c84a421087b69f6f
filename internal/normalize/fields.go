package normalize

import (
	"fmt"
	"time"

	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/rawdata"
)

const (
	unknownDate           = "unknown"
	noLanguage            = "None"
	creationDisplayLayout = "January 2, 2006"

	// Assumed XP earned per minute when only XP is known.
	xpPerMinuteEstimate = 6
)

// source is one place a canonical value may come from.
type source[T any] func() (T, bool)

// firstOf tries sources in order and returns the first usable value.
func firstOf[T any](sources ...source[T]) (T, bool) {
	for _, s := range sources {
		if v, ok := s(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// number yields the first key that holds any number, zero included.
func number(rec rawdata.Record, keys ...string) source[int] {
	return func() (int, bool) {
		f, ok := rec.FirstFloat(keys...)
		return int(f), ok
	}
}

// nonZero treats a zero from s as absent.
func nonZero(s source[int]) source[int] {
	return func() (int, bool) {
		v, ok := s()
		return v, ok && v != 0
	}
}

func atPath(rec rawdata.Record, path ...string) source[int] {
	return func() (int, bool) {
		v, ok := rec.Path(path...)
		if !ok {
			return 0, false
		}
		f, ok := rawdata.Number(v)
		return int(f), ok
	}
}

func resolveStreak(rec rawdata.Record) int {
	v, _ := firstOf(number(rec, "site_streak"), number(rec, "streak"))
	return v
}

func resolveGems(rec rawdata.Record) int {
	v, _ := firstOf(
		nonZero(number(rec, "gemsTotalCount")),
		nonZero(number(rec, "totalGems")),
		nonZero(number(rec, "gems")),
		nonZero(atPath(rec, "tracking_properties", "gems")),
		nonZero(number(rec, "lingots")),
		nonZero(number(rec, "rupees")),
	)
	return v
}

func resolveDailyGoal(rec rawdata.Record) int {
	v, _ := firstOf(number(rec, "dailyGoal"), number(rec, "daily_goal"), number(rec, "xpGoal"))
	return v
}

// resolveTotalXP treats an explicit zero as absent: the upstream reports 0
// for accounts whose total lives only in per-language data.
func resolveTotalXP(rec rawdata.Record) int {
	v, _ := firstOf(
		nonZero(number(rec, "total_xp", "totalXp")),
		nonZero(func() (int, bool) { return sumPoints(rec.Records("languages")), true }),
		nonZero(func() (int, bool) { return sumPoints(entryValues(rec.Entries("language_data"))), true }),
		nonZero(func() (int, bool) { return sumPoints(rec.Records("courses")), true }),
	)
	return v
}

func sumPoints(items []rawdata.Record) int {
	total := 0
	for _, item := range items {
		if v, ok := item.FirstNonZero("points", "xp"); ok {
			total += int(v)
		}
	}
	return total
}

func entryValues(entries []rawdata.Entry) []rawdata.Record {
	out := make([]rawdata.Record, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

// currentLanguage returns the language-detail entry flagged as being learned.
func currentLanguage(rec rawdata.Record) (rawdata.Entry, bool) {
	for _, e := range rec.Entries("language_data") {
		if e.Value.Truthy("current_learning") {
			return e, true
		}
	}
	return rawdata.Entry{}, false
}

func resolveLeague(rec rawdata.Record) models.League {
	tier, ok := firstOf(
		func() (int, bool) {
			f, ok := rec.Float("tier")
			return int(f), ok && f >= 0 && f <= 10
		},
		atPath(rec, "trackingProperties", "league_tier"),
		atPath(rec, "trackingProperties", "leaderboard_league"),
		atPath(rec, "tracking_properties", "league_tier"),
		atPath(rec, "tracking_properties", "leaderboard_league"),
		func() (int, bool) {
			cur, ok := currentLanguage(rec)
			if !ok {
				return 0, false
			}
			return cur.Value.Int("tier")
		},
	)
	if !ok || tier < 0 || tier >= len(models.LeagueTiers) {
		return models.League{Name: models.LeagueUnavailable, TierIndex: -1}
	}
	return models.League{Name: models.LeagueTiers[tier], TierIndex: tier}
}

func resolveCreation(rec rawdata.Record, loc *time.Location) (time.Time, bool) {
	return firstOf(
		func() (time.Time, bool) {
			ts, ok := rec.FirstNonZero("creation_date", "creationDate")
			if !ok || ts < 0 {
				return time.Time{}, false
			}
			return fromUnixAuto(ts)
		},
		func() (time.Time, bool) {
			s, ok := rec.String("created")
			if !ok {
				return time.Time{}, false
			}
			return parseInstant(s, loc)
		},
	)
}

func resolvePlus(rec rawdata.Record) bool {
	if rec.Truthy("hasPlus") || rec.Truthy("hasSuper") || rec.Str("plusStatus") == "active" ||
		rec.Truthy("has_plus") || rec.Truthy("is_plus") ||
		rec.Truthy("has_item_premium_subscription") || rec.Truthy("has_item_immersive_subscription") {
		return true
	}
	if inv, ok := rec.Record("inventory"); ok {
		return inv.Truthy("premium_subscription") || inv.Truthy("super_subscription")
	}
	return false
}

func resolveLearningLanguage(rec rawdata.Record, courses []models.Course) string {
	firstCourse := func() (string, bool) {
		if len(courses) == 0 || courses[0].Title == "" {
			return "", false
		}
		return courses[0].Title, true
	}
	if _, ok := rec.Record("language_data"); ok {
		v, ok := firstOf(
			func() (string, bool) {
				cur, ok := currentLanguage(rec)
				if !ok {
					return "", false
				}
				return cur.Value.String("language_string")
			},
			firstCourse,
		)
		if ok {
			return v
		}
		return noLanguage
	}
	v, ok := firstOf(
		func() (string, bool) {
			cc, ok := rec.Record("currentCourse")
			if !ok {
				return "", false
			}
			return cc.String("title")
		},
		firstCourse,
	)
	if ok {
		return v
	}
	return noLanguage
}

// estimateLearningTime derives study time from visible course XP.
func estimateLearningTime(courses []models.Course) (int, string) {
	xp := 0
	for _, c := range courses {
		xp += c.XP
	}
	minutes := xp / xpPerMinuteEstimate
	return minutes, fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
