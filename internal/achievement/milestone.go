package achievement

import "github.com/vytor/duodash/internal/models"

// Threshold sets, ascending.
var (
	StreakThresholds    = []int{7, 30, 60, 100, 365}
	DailyXPThresholds   = []int{500, 1000, 2000, 5000}
	TotalDaysThresholds = []int{50, 100, 200, 365}
	TotalXPThresholds   = []int{10000, 50000, 100000, 500000}
)

type compareMode int

const (
	atLeast compareMode = iota
	exactly
)

func (m compareMode) met(value float64, threshold int) bool {
	if m == exactly {
		return value == float64(threshold)
	}
	return value >= float64(threshold)
}

// tracker records the first date each threshold is met. A recorded threshold
// is never revisited.
type tracker struct {
	mode       compareMode
	thresholds []int
	hits       models.Milestones
}

func newTracker(mode compareMode, thresholds []int) *tracker {
	return &tracker{mode: mode, thresholds: thresholds, hits: make(models.Milestones)}
}

func (t *tracker) observe(value float64, date string) {
	for _, th := range t.thresholds {
		if _, done := t.hits[th]; done {
			continue
		}
		if t.mode.met(value, th) {
			t.hits[th] = date
		}
	}
}
