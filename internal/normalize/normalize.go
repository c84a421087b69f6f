// Package normalize turns a raw learning-platform user record into the
// canonical models.UserProgress.
//
// The upstream exposes overlapping fields whose presence depends on the
// endpoint and on the age of the account. Every canonical field is resolved
// through an ordered list of sources; the first source that yields a usable
// value wins. Nothing here performs I/O, and a Normalizer may be shared by
// concurrent callers.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/rawdata"
)

// ErrInvalidInput is returned when the raw record is not a JSON object.
var ErrInvalidInput = errors.New("invalid input")

const defaultCacheSize = 4096

type Normalizer struct {
	loc       *time.Location
	now       func() time.Time
	cacheSize int
	dates     *dateKeyCache
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLocation sets the reference time zone for date bucketing and "today".
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

// WithClock sets the source of the current instant.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// WithCacheSize bounds the date-key cache. Zero disables caching.
func WithCacheSize(size int) Option {
	return func(n *Normalizer) {
		n.cacheSize = size
	}
}

// New creates a Normalizer. Without options it buckets dates in Asia/Shanghai
// and reads the wall clock.
func New(opts ...Option) *Normalizer {
	loc, _ := LoadLocation(DefaultTimeZone)
	n := &Normalizer{loc: loc, now: time.Now, cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(n)
	}
	n.dates = newDateKeyCache(n.loc, n.cacheSize)
	return n
}

// Location returns the reference time zone.
func (n *Normalizer) Location() *time.Location { return n.loc }

// Now returns the current instant as seen by this Normalizer.
func (n *Normalizer) Now() time.Time { return n.now() }

// NormalizeJSON decodes data and normalizes it.
func (n *Normalizer) NormalizeJSON(data []byte) (models.UserProgress, error) {
	v, err := rawdata.Decode(data)
	if err != nil {
		return models.UserProgress{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return n.Normalize(v)
}

// Normalize builds a UserProgress from raw. raw is only read.
func (n *Normalizer) Normalize(raw any) (models.UserProgress, error) {
	rec, ok := rawdata.AsRecord(raw)
	if !ok {
		return models.UserProgress{}, fmt.Errorf("%w: expected object, got %s", ErrInvalidInput, describe(raw))
	}

	now := n.now()
	today := civilOf(now, n.loc)

	courses := resolveCourses(rec)
	hist := n.aggregateHistory(rec)
	created, createdOK := resolveCreation(rec, n.loc)

	p := models.UserProgress{
		Streak:           nonNegative(resolveStreak(rec)),
		TotalXP:          nonNegative(resolveTotalXP(rec)),
		Gems:             nonNegative(resolveGems(rec)),
		League:           resolveLeague(rec),
		Courses:          courses,
		LearningLanguage: resolveLearningLanguage(rec, courses),
		DailyGoal:        nonNegative(resolveDailyGoal(rec)),
		IsPlus:           resolvePlus(rec),
		HasRealTimeData:  hist.realTime,
	}

	p.CreationDateDisplay = unknownDate
	if createdOK {
		p.CreationDateDisplay = created.In(n.loc).Format(creationDisplayLayout)
		p.AccountAgeDays = nonNegative(daysBetween(civilOf(created, n.loc), today))
	}

	p.DailyXPHistory, p.DailyTimeHistory = hist.rollingWeek(today)
	p.WeeklyXPHistory, p.WeeklyTimeHistory = hist.naturalWeek(today)
	p.YearlyXPHistory = hist.yearly()

	p.EstimatedLearningMinutes, p.EstimatedLearningTime = estimateLearningTime(courses)
	p.Today = n.resolveToday(rec, hist, today)

	p.NumSessionsCompleted = optionalInt(rec, "numSessionsCompleted", "num_sessions_completed")
	p.StreakFreezeCount = optionalInt(rec, "streakFreezeCount", "num_item_streak_freeze")
	p.WeeklyXP = optionalInt(rec, "weeklyXp", "weekly_xp")

	return p, nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func optionalInt(rec rawdata.Record, keys ...string) *int {
	f, ok := rec.FirstFloat(keys...)
	if !ok {
		return nil
	}
	v := nonNegative(int(f))
	return &v
}
