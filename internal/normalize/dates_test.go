package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateKeyCache_EvictsOldestFirst(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	c := newDateKeyCache(loc, 2)

	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.Add(time.Hour)
	d := a.Add(2 * time.Hour)

	assert.Equal(t, "2024-01-01", c.key(a))
	assert.Equal(t, "2024-01-01", c.key(b))
	assert.Equal(t, 2, c.len())

	assert.Equal(t, "2024-01-01", c.key(d))
	assert.Equal(t, 2, c.len())
	_, kept := c.items[a.UnixMilli()]
	assert.False(t, kept, "oldest entry should be evicted")
	_, kept = c.items[d.UnixMilli()]
	assert.True(t, kept)
}

func TestDateKeyCache_Disabled(t *testing.T) {
	c := newDateKeyCache(time.UTC, 0)
	assert.Equal(t, "2024-02-29", c.key(time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 0, c.len())
}

func TestDateKeyCache_UsesLocation(t *testing.T) {
	c := newDateKeyCache(time.FixedZone("CST", 8*3600), 8)
	assert.Equal(t, "2024-03-02", c.key(time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)))
}

func TestParseCalendarDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "2024-03-05", want: "2024-03-05", ok: true},
		{in: "2024/03/05", want: "2024-03-05", ok: true},
		{in: "2024-03-05T10:00:00Z", want: "2024-03-05", ok: true},
		{in: "not-a-date", ok: false},
		{in: "", ok: false},
	}
	for _, tt := range tests {
		d, ok := parseCalendarDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, d.key())
		}
	}
}

func TestCivilDate(t *testing.T) {
	leap := civilDate{2024, time.February, 28}
	assert.Equal(t, "2024-02-29", leap.addDays(1).key())
	assert.Equal(t, "3/1", leap.addDays(2).label())
	assert.Equal(t, time.Thursday, leap.addDays(1).weekday())
	assert.Equal(t, 366, daysBetween(civilDate{2024, time.January, 1}, civilDate{2025, time.January, 1}))
	assert.True(t, civilDate{2024, time.March, 10}.after(civilDate{2024, time.March, 9}))
}

func TestFromUnixAuto(t *testing.T) {
	sec, ok := fromUnixAuto(1704067200)
	assert.True(t, ok)
	assert.Equal(t, int64(1704067200), sec.Unix())

	ms, ok := fromUnixAuto(1704067200000)
	assert.True(t, ok)
	assert.Equal(t, int64(1704067200), ms.Unix())

	last, ok := fromUnixAuto(maxUnixMilli)
	assert.True(t, ok)
	assert.Equal(t, 9999, last.UTC().Year())

	for _, ts := range []float64{maxUnixMilli + 1, 1e300, -1e300} {
		_, ok := fromUnixAuto(ts)
		assert.False(t, ok, "%g", ts)
	}
}
