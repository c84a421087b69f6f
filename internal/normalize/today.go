package normalize

import (
	"time"

	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/rawdata"
)

const clockLayout = "15:04"

// dayWindow is the half-open interval [start, end) of one local day.
type dayWindow struct {
	start, end time.Time
}

func (w dayWindow) contains(t time.Time) bool {
	return !t.Before(w.start) && t.Before(w.end)
}

// dayActivity pairs the XP and lesson count read from one source.
type dayActivity struct {
	xp      int
	lessons int
}

type xpGain struct {
	at time.Time
	xp int
}

// xpGains reads the per-lesson gain list. Times are Unix seconds.
func xpGains(rec rawdata.Record) []xpGain {
	items := rec.Records("xpGains")
	gains := make([]xpGain, 0, len(items))
	for _, g := range items {
		sec, ok := g.Float("time")
		if !ok {
			continue
		}
		at, ok := unixSeconds(sec)
		if !ok {
			continue
		}
		xp, _ := g.Int("xp")
		gains = append(gains, xpGain{at: at, xp: nonNegative(xp)})
	}
	return gains
}

func (n *Normalizer) resolveToday(rec rawdata.Record, h *history, today civilDate) models.TodaySnapshot {
	w := dayWindow{start: today.start(n.loc), end: today.addDays(1).start(n.loc)}
	key := today.key()

	var todayEvents []calendarEvent
	for _, ev := range h.events {
		if w.contains(ev.at) {
			todayEvents = append(todayEvents, ev)
		}
	}
	var todayGains []xpGain
	for _, g := range xpGains(rec) {
		if w.contains(g.at) {
			todayGains = append(todayGains, g)
		}
	}

	activity, _ := firstOf(
		// An explicit zero falls through: the upstream reports 0 before its
		// counters catch up with lessons already listed below.
		func() (dayActivity, bool) {
			xp, ok := rec.FirstFloat("xp_today", "xpToday")
			return dayActivity{xp: int(xp), lessons: h.sessions[key]}, ok && int(xp) > 0
		},
		func() (dayActivity, bool) {
			lessons, ok := h.sessions[key]
			if !ok {
				lessons = len(todayEvents)
			}
			return dayActivity{xp: h.xp[key], lessons: lessons}, h.xp[key] > 0
		},
		func() (dayActivity, bool) {
			a := dayActivity{lessons: len(todayEvents)}
			for _, ev := range todayEvents {
				a.xp += ev.improvement
			}
			return a, a.xp > 0
		},
		func() (dayActivity, bool) {
			a := dayActivity{lessons: len(todayGains)}
			for _, g := range todayGains {
				a.xp += g.xp
			}
			return a, a.xp > 0
		},
	)

	extended, _ := firstOf(
		func() (bool, bool) { return rec.FirstBool("streak_extended_today", "streakExtendedToday") },
		func() (bool, bool) { v, ok := h.extended[key]; return v, ok },
	)

	snap := models.TodaySnapshot{
		XPToday:             nonNegative(activity.xp),
		LessonsToday:        nonNegative(activity.lessons),
		StreakExtendedToday: extended,
	}
	if extended {
		if at, ok := n.streakExtendedAt(rec, todayEvents, todayGains); ok {
			snap.StreakExtendedTime = at.In(n.loc).Format(clockLayout)
		}
	}
	return snap
}

// streakExtendedAt finds when today's streak extension happened. An unknown
// time is not an error.
func (n *Normalizer) streakExtendedAt(rec rawdata.Record, events []calendarEvent, gains []xpGain) (time.Time, bool) {
	return firstOf(
		func() (time.Time, bool) {
			v, ok := rec.Path("streakData", "currentStreak", "lastExtendedDate")
			if !ok {
				return time.Time{}, false
			}
			if s, isString := v.(string); isString {
				return parseInstant(s, n.loc)
			}
			ts, ok := rawdata.Number(v)
			if !ok || ts <= 0 {
				return time.Time{}, false
			}
			return fromUnixAuto(ts)
		},
		func() (time.Time, bool) {
			var earliest time.Time
			for _, ev := range events {
				if earliest.IsZero() || ev.at.Before(earliest) {
					earliest = ev.at
				}
			}
			return earliest, !earliest.IsZero()
		},
		func() (time.Time, bool) {
			var earliest time.Time
			for _, g := range gains {
				if earliest.IsZero() || g.at.Before(earliest) {
					earliest = g.at
				}
			}
			return earliest, !earliest.IsZero()
		},
	)
}
