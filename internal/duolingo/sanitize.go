package duolingo

import (
	"fmt"

	"github.com/vytor/duodash/internal/rawdata"
)

// sensitiveFields never leave the server.
var sensitiveFields = []string{
	"email", "phone", "googleId", "facebookId", "appleId", "twitterId",
	"username", "name", "fullname", "bio", "location", "profileCountry",
	"timezone", "betaStatus", "inviteURL", "privacySettings",
	"notificationSettings", "emailVerified", "hasPhoneNumber",
	"trackingProperties", "acquisitionSurveyReason", "canUseModerationTools",
	"hasObserver", "observedBy", "blockerUserIds", "blockedUserIds",
	"id", "user_id", "learnerContext", "picture", "avatar",
}

// Sanitize returns a copy of raw with identity data removed. Values the
// normalizer needs from trackingProperties are lifted to the top level
// first, and friend rankings keep their points but lose their names.
func Sanitize(raw rawdata.Record) rawdata.Record {
	out := raw.Clone()

	if tp, ok := raw.Record("trackingProperties"); ok {
		lift := func(from, to string, onlyIfAbsent bool) {
			v, ok := tp.Get(from)
			if !ok {
				return
			}
			if onlyIfAbsent && out.Truthy(to) {
				return
			}
			out[to] = v
		}
		lift("leaderboard_league", "tier", false)
		lift("total_session_time", "total_session_time", false)
		lift("gems", "gems", true)
		lift("num_sessions_completed", "numSessionsCompleted", false)
		lift("num_item_streak_freeze", "streakFreezeCount", false)
	}

	for _, field := range sensitiveFields {
		delete(out, field)
	}

	if friends := out.List("points_ranking_data"); friends != nil {
		anonymized := make([]any, 0, len(friends))
		for i, f := range friends {
			entry := map[string]any{
				"display_name": rankName(i),
				"rank":         i + 1,
			}
			if rec, ok := rawdata.AsRecord(f); ok {
				if points, ok := rec.Get("points_data"); ok {
					entry["points_data"] = points
				}
			}
			anonymized = append(anonymized, entry)
		}
		out["points_ranking_data"] = anonymized
	}
	return out
}

func rankName(idx int) string {
	if idx == 0 {
		return "You"
	}
	return fmt.Sprintf("User %d", idx+1)
}
