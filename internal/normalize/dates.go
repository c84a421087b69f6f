package normalize

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	dateLayout = "2006-01-02"

	// Creation timestamps below this are seconds, at or above it milliseconds.
	millisThreshold = 10_000_000_000

	// Unix milliseconds of 9999-12-31T23:59:59.999Z. Larger magnitudes are not dates.
	maxUnixMilli = 253402300799999

	// DefaultTimeZone is the reference zone for every date bucket.
	DefaultTimeZone = "Asia/Shanghai"
)

// LoadLocation resolves name, falling back to a fixed UTC+8 zone for the
// default reference zone when the tz database is unavailable.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	if name == DefaultTimeZone {
		return time.FixedZone("CST", 8*60*60), nil
	}
	return nil, fmt.Errorf("load time zone %q: %w", name, err)
}

// dateKeyCache memoizes instant -> calendar-date formatting in one location.
// Eviction is FIFO once max entries are held.
type dateKeyCache struct {
	mu    sync.Mutex
	loc   *time.Location
	ring  []int64
	next  int
	full  bool
	items map[int64]string
}

func newDateKeyCache(loc *time.Location, max int) *dateKeyCache {
	c := &dateKeyCache{loc: loc, items: make(map[int64]string)}
	if max > 0 {
		c.ring = make([]int64, max)
	}
	return c
}

func (c *dateKeyCache) key(t time.Time) string {
	ms := t.UnixMilli()

	c.mu.Lock()
	defer c.mu.Unlock()

	if k, ok := c.items[ms]; ok {
		return k
	}
	k := t.In(c.loc).Format(dateLayout)
	if len(c.ring) == 0 {
		return k
	}
	if c.full {
		delete(c.items, c.ring[c.next])
	}
	c.ring[c.next] = ms
	c.items[ms] = k
	c.next++
	if c.next == len(c.ring) {
		c.next = 0
		c.full = true
	}
	return k
}

func (c *dateKeyCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// civilDate is a calendar date with no zone attached.
type civilDate struct {
	year  int
	month time.Month
	day   int
}

func civilOf(t time.Time, loc *time.Location) civilDate {
	y, m, d := t.In(loc).Date()
	return civilDate{y, m, d}
}

func (d civilDate) addDays(n int) civilDate {
	t := time.Date(d.year, d.month, d.day+n, 0, 0, 0, 0, time.UTC)
	return civilDate{t.Year(), t.Month(), t.Day()}
}

func (d civilDate) key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

func (d civilDate) label() string {
	return fmt.Sprintf("%d/%d", int(d.month), d.day)
}

func (d civilDate) weekday() time.Weekday {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC).Weekday()
}

// start returns local midnight of d in loc.
func (d civilDate) start(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

func (d civilDate) after(o civilDate) bool {
	return d.key() > o.key()
}

// daysBetween counts whole calendar days from a to b, independent of DST.
func daysBetween(a, b civilDate) int {
	ta := time.Date(a.year, a.month, a.day, 0, 0, 0, 0, time.UTC)
	tb := time.Date(b.year, b.month, b.day, 0, 0, 0, 0, time.UTC)
	return int(tb.Sub(ta).Hours() / 24)
}

// parseCalendarDate accepts "2006-01-02" and "2006/01/02".
func parseCalendarDate(s string) (civilDate, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "/", "-")
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return civilDate{}, false
	}
	return civilDate{t.Year(), t.Month(), t.Day()}, true
}

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
	"January 2, 2006",
	dateLayout,
	"2006/01/02",
}

// parseInstant parses the date strings the upstream has been seen to send.
// Strings without a zone are read in loc.
func parseInstant(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// unixMilli converts ms to an instant, rejecting values outside years 1..9999
// in either direction.
func unixMilli(ms float64) (time.Time, bool) {
	if ms > maxUnixMilli || ms < -maxUnixMilli {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}

// unixSeconds converts sec to an instant with millisecond precision.
func unixSeconds(sec float64) (time.Time, bool) {
	return unixMilli(sec * 1000)
}

// fromUnixAuto interprets ts as seconds or milliseconds by magnitude.
func fromUnixAuto(ts float64) (time.Time, bool) {
	if ts < millisThreshold {
		return unixSeconds(ts)
	}
	return unixMilli(ts)
}
