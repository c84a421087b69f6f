package normalize

import (
	"math"
	"sort"
	"time"

	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/rawdata"
)

// XP per estimated minute when a calendar event carries no session time.
const xpPerEstimatedMinute = 3

type historyShape int

const (
	shapeNone historyShape = iota
	shapeSummaries
	shapeCalendar
	shapeLanguageCalendar
)

// calendarEvent is one timestamped XP gain from a calendar list.
type calendarEvent struct {
	at          time.Time
	improvement int
}

// history is the per-day aggregate built from exactly one input shape.
type history struct {
	shape     historyShape
	xp        map[string]int
	minutes   map[string]int
	estimated map[string]bool
	sessions  map[string]int
	extended  map[string]bool
	realTime  bool
	events    []calendarEvent
}

func newHistory() *history {
	return &history{
		xp:        make(map[string]int),
		minutes:   make(map[string]int),
		estimated: make(map[string]bool),
		sessions:  make(map[string]int),
		extended:  make(map[string]bool),
	}
}

// aggregateHistory buckets activity by calendar date in the reference zone.
// Summaries win over the flat calendar, which wins over per-language calendars.
func (n *Normalizer) aggregateHistory(rec rawdata.Record) *history {
	h := newHistory()

	if summaries := rec.Records("_xpSummaries"); len(summaries) > 0 {
		h.shape = shapeSummaries
		for _, s := range summaries {
			n.addSummary(h, s)
		}
		return h
	}

	if cal := rec.Records("calendar"); len(cal) > 0 {
		h.shape = shapeCalendar
		n.addEvents(h, calendarEvents(cal))
		return h
	}

	for _, e := range rec.Entries("language_data") {
		cal := e.Value.Records("calendar")
		if len(cal) == 0 {
			continue
		}
		h.shape = shapeLanguageCalendar
		n.addEvents(h, calendarEvents(cal))
	}
	return h
}

func (n *Normalizer) addSummary(h *history, s rawdata.Record) {
	key, ok := n.summaryKey(s)
	if !ok {
		return
	}

	gained, _ := s.FirstFloat("gainedXp", "gained_xp")
	xp := nonNegative(int(gained))
	h.xp[key] = xp

	seconds, _ := s.FirstFloat("totalSessionTime", "total_session_time")
	if minutes := int(math.Round(seconds / 60)); minutes > 0 {
		h.minutes[key] = minutes
		h.estimated[key] = false
		h.realTime = true
	} else {
		h.minutes[key] = ceilDiv(xp, xpPerEstimatedMinute)
		h.estimated[key] = true
	}

	if sessions, ok := s.FirstFloat("numSessions", "num_sessions"); ok {
		h.sessions[key] = nonNegative(int(sessions))
	}
	if extended, ok := s.FirstBool("streakExtended", "streak_extended"); ok {
		h.extended[key] = extended
	}
}

// summaryKey reads a numeric date as Unix seconds and a string date as a
// calendar date that already names the intended day.
func (n *Normalizer) summaryKey(s rawdata.Record) (string, bool) {
	v, ok := s.Get("date")
	if !ok {
		return "", false
	}
	if str, isString := v.(string); isString {
		d, ok := parseCalendarDate(str)
		if !ok {
			return "", false
		}
		return d.key(), true
	}
	sec, ok := rawdata.Number(v)
	if !ok {
		return "", false
	}
	at, ok := unixSeconds(sec)
	if !ok {
		return "", false
	}
	return n.dates.key(at), true
}

func calendarEvents(items []rawdata.Record) []calendarEvent {
	events := make([]calendarEvent, 0, len(items))
	for _, item := range items {
		ms, ok := item.Float("datetime")
		if !ok {
			continue
		}
		at, ok := unixMilli(ms)
		if !ok {
			continue
		}
		improvement, _ := item.Int("improvement")
		events = append(events, calendarEvent{
			at:          at,
			improvement: nonNegative(improvement),
		})
	}
	return events
}

// addEvents accumulates improvement per date. Minutes are always estimates.
func (n *Normalizer) addEvents(h *history, events []calendarEvent) {
	for _, ev := range events {
		key := n.dates.key(ev.at)
		h.xp[key] += ev.improvement
		h.minutes[key] += ceilDiv(ev.improvement, xpPerEstimatedMinute)
		h.estimated[key] = true
	}
	h.events = append(h.events, events...)
}

func (h *history) point(d civilDate) (models.XPPoint, models.TimePoint) {
	key := d.key()
	xp := models.XPPoint{Date: key, Label: d.label(), XP: h.xp[key]}
	tp := models.TimePoint{Date: key, Label: d.label(), Minutes: h.minutes[key], IsEstimated: h.estimated[key]}
	return xp, tp
}

// rollingWeek returns the seven days ending on today, oldest first.
func (h *history) rollingWeek(today civilDate) ([]models.XPPoint, []models.TimePoint) {
	xps := make([]models.XPPoint, 0, 7)
	times := make([]models.TimePoint, 0, 7)
	for i := 6; i >= 0; i-- {
		xp, tp := h.point(today.addDays(-i))
		xps = append(xps, xp)
		times = append(times, tp)
	}
	return xps, times
}

// naturalWeek returns Monday through Sunday of the week containing today.
// Days after today are flagged and carry no activity.
func (h *history) naturalWeek(today civilDate) ([]models.XPPoint, []models.TimePoint) {
	offset := (int(today.weekday()) + 6) % 7
	monday := today.addDays(-offset)

	xps := make([]models.XPPoint, 0, 7)
	times := make([]models.TimePoint, 0, 7)
	for i := 0; i < 7; i++ {
		d := monday.addDays(i)
		xp, tp := h.point(d)
		label := d.weekday().String()[:3]
		xp.Label, tp.Label = label, label
		if d.after(today) {
			xp.IsFuture, tp.IsFuture = true, true
			xp.XP, tp.Minutes, tp.IsEstimated = 0, 0, false
		}
		xps = append(xps, xp)
		times = append(times, tp)
	}
	return xps, times
}

// yearly returns one entry per recorded date, ascending.
func (h *history) yearly() []models.DayActivity {
	keys := make([]string, 0, len(h.xp))
	for k := range h.xp {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.DayActivity, 0, len(keys))
	for _, k := range keys {
		day := models.DayActivity{Date: k, XP: h.xp[k], IsEstimated: h.estimated[k]}
		if m, ok := h.minutes[k]; ok {
			day.Minutes = &m
		}
		out = append(out, day)
	}
	return out
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
