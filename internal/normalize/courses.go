package normalize

import (
	"strings"

	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/rawdata"
)

const defaultFromLanguage = "en"

// languageNames titles legacy entries that only carry a language code.
var languageNames = map[string]string{
	"ar":    "Arabic",
	"de":    "German",
	"el":    "Greek",
	"en":    "English",
	"es":    "Spanish",
	"fr":    "French",
	"he":    "Hebrew",
	"hi":    "Hindi",
	"it":    "Italian",
	"ja":    "Japanese",
	"ko":    "Korean",
	"nl-NL": "Dutch",
	"pl":    "Polish",
	"pt":    "Portuguese",
	"ru":    "Russian",
	"sv":    "Swedish",
	"tr":    "Turkish",
	"uk":    "Ukrainian",
	"vi":    "Vietnamese",
	"zh":    "Chinese",
	"zs":    "Chinese",
}

// resolveCourses prefers the explicit course list, merges legacy per-language
// entries that are not already present, and only falls back to the
// language-detail map when both yield nothing. First seen wins.
func resolveCourses(rec rawdata.Record) []models.Course {
	courses := make([]models.Course, 0)

	for _, c := range rec.Records("courses") {
		xp, _ := c.Int("xp")
		if xp <= 0 && !c.Truthy("current_learning") {
			continue
		}
		crowns, _ := c.Int("crowns")
		courses = append(courses, models.Course{
			ID:               c.Str("id"),
			Title:            c.Str("title"),
			XP:               nonNegative(xp),
			Crowns:           nonNegative(crowns),
			FromLanguage:     c.Str("fromLanguage"),
			LearningLanguage: c.Str("learningLanguage"),
		})
	}

	for _, l := range rec.Records("languages") {
		legacy, ok := legacyCourse(l)
		if !ok {
			continue
		}
		if !containsCourse(courses, legacy) {
			courses = append(courses, legacy)
		}
	}

	if len(courses) > 0 {
		return courses
	}

	for _, e := range rec.Entries("language_data") {
		if c, ok := languageDataCourse(e); ok {
			courses = append(courses, c)
		}
	}
	return courses
}

// legacyCourse reads one entry of the v1 "languages" array.
func legacyCourse(l rawdata.Record) (models.Course, bool) {
	xp, _ := firstOf(number(l, "points"), number(l, "xp"))
	if xp <= 0 && !l.Truthy("current_learning") {
		return models.Course{}, false
	}
	code := firstString(l, "language", "learningLanguage")
	title := firstString(l, "language_string", "title")
	if title == "" {
		title = languageNames[code]
	}
	crowns, _ := l.Int("crowns")
	from := firstString(l, "fromLanguage", "from_language")
	if from == "" {
		from = defaultFromLanguage
	}
	return models.Course{
		ID:               code,
		Title:            title,
		XP:               nonNegative(xp),
		Crowns:           nonNegative(crowns),
		FromLanguage:     from,
		LearningLanguage: code,
	}, true
}

func languageDataCourse(e rawdata.Entry) (models.Course, bool) {
	d := e.Value
	xp, _ := d.FirstNonZero("points", "level_progress")
	if xp <= 0 && !d.Truthy("current_learning") {
		return models.Course{}, false
	}

	crowns, _ := d.Int("crowns")
	if crowns == 0 {
		for _, skill := range d.Records("skills") {
			if v, ok := skill.FirstNonZero("levels_finished", "crowns", "finishedLevels"); ok {
				crowns += int(v)
			}
		}
	}

	learning := firstString(d, "learning_language")
	if learning == "" {
		learning = e.Key
	}
	from := firstString(d, "from_language")
	if from == "" {
		from = defaultFromLanguage
	}
	return models.Course{
		ID:               learning,
		Title:            d.Str("language_string"),
		XP:               nonNegative(int(xp)),
		Crowns:           nonNegative(crowns),
		FromLanguage:     from,
		LearningLanguage: learning,
	}, true
}

// containsCourse matches by title, by learning language, or by one id
// containing the other. Empty values never match.
func containsCourse(courses []models.Course, c models.Course) bool {
	for _, existing := range courses {
		if c.Title != "" && existing.Title == c.Title {
			return true
		}
		if c.LearningLanguage != "" && (existing.LearningLanguage == c.LearningLanguage || existing.ID == c.LearningLanguage) {
			return true
		}
		if c.ID != "" && existing.ID != "" && rawdata.ContainsFold(existing.ID, c.ID) {
			return true
		}
	}
	return false
}

func firstString(rec rawdata.Record, keys ...string) string {
	for _, k := range keys {
		if s, ok := rec.String(k); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
