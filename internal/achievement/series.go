package achievement

import (
	"math"

	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/rawdata"
)

// SeriesFromProgress extracts the full-year history of p.
func SeriesFromProgress(p models.UserProgress) []DailyXP {
	series := make([]DailyXP, 0, len(p.YearlyXPHistory))
	for _, d := range p.YearlyXPHistory {
		entry := DailyXP{Date: d.Date, XP: float64(d.XP)}
		if d.Minutes != nil {
			minutes := float64(*d.Minutes)
			entry.Time = &minutes
		}
		series = append(series, entry)
	}
	return series
}

// SeriesFromRaw reads a decoded JSON array of {date, xp, time?} objects.
// Items of the wrong shape are kept with a NaN XP so Compute drops them.
// ok is false when v is not an array.
func SeriesFromRaw(v any) ([]DailyXP, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	series := make([]DailyXP, 0, len(items))
	for _, item := range items {
		rec, isObject := rawdata.AsRecord(item)
		if !isObject {
			continue
		}
		entry := DailyXP{Date: rec.Str("date"), XP: math.NaN()}
		if xp, ok := rec.Float("xp"); ok {
			entry.XP = xp
		}
		if minutes, ok := rec.Float("time"); ok {
			entry.Time = &minutes
		}
		series = append(series, entry)
	}
	return series, true
}
