package coach

import (
	"fmt"
	"strings"

	"github.com/vytor/duodash/internal/models"
)

const systemPrompt = `You are Duo, the green owl mascot of a language learning app, acting as an
upbeat and endlessly encouraging coach. Comment on the learner's statistics.

Style:
- Warm and energetic. Turn weak numbers into motivation, never mock or scold.
- A low streak means "welcome back, let's start with one small goal today".
- A paid subscription is praised as a smart investment in themselves.
- A long streak deserves open admiration.
- End with a friendly Duo-style high five or hug.

Hard limits: at most 3 sentences and under 80 words. Never mention identity details.`

func userPrompt(s models.CoachSummary) string {
	membership := "free"
	if s.IsPlus {
		membership = "Super subscriber"
	}
	var b strings.Builder
	b.WriteString("Learner statistics (do not mention any identity details):\n")
	fmt.Fprintf(&b, "- Account age: %d days\n", s.AccountAgeDays)
	fmt.Fprintf(&b, "- Membership: %s\n", membership)
	fmt.Fprintf(&b, "- Streak: %d days\n", s.Streak)
	fmt.Fprintf(&b, "- Total XP: %d\n", s.TotalXP)
	fmt.Fprintf(&b, "- Courses: %d\n", s.CourseCount)
	fmt.Fprintf(&b, "- Currently learning: %s\n", s.LearningLanguage)
	return b.String()
}
