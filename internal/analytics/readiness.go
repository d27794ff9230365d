package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/phrazzld/prep-api/internal/domain"
)

const maxRecommendations = 4

// Readiness is the composite interview readiness score.
type Readiness struct {
	Score     int                `json:"score"`
	Breakdown ReadinessBreakdown `json:"breakdown"`
	Stats     ReadinessStats     `json:"stats"`
	Insights  ReadinessInsights  `json:"insights"`
}

// ReadinessBreakdown holds the weighted sub-scores. Their maxima are 40,
// 25, 20 and 15.
type ReadinessBreakdown struct {
	Accuracy    int `json:"accuracy"`
	Coverage    int `json:"coverage"`
	Consistency int `json:"consistency"`
	Depth       int `json:"depth"`
}

// ReadinessStats are the raw counts behind the score.
type ReadinessStats struct {
	TotalSessions     int `json:"total_sessions"`
	TotalQuestions    int `json:"total_questions"`
	AnsweredQuestions int `json:"answered_questions"`
	CorrectAnswers    int `json:"correct_answers"`
	PinnedQuestions   int `json:"pinned_questions"`
	AccuracyRate      int `json:"accuracy_rate"`
	UniqueRoles       int `json:"unique_roles"`
	UniqueFocusAreas  int `json:"unique_focus_areas"`
	RecentSessions    int `json:"recent_sessions"`
	WeekSessions      int `json:"week_sessions"`
}

// ReadinessInsights is the narrative derived from the score.
type ReadinessInsights struct {
	Level           string   `json:"level"`
	Message         string   `json:"message"`
	Recommendations []string `json:"recommendations"`
}

// CalculateReadiness scores sessions, whose questions must be populated,
// relative to now.
func CalculateReadiness(sessions []domain.Session, now time.Time) Readiness {
	if len(sessions) == 0 {
		return firstSessionReadiness()
	}

	var stats ReadinessStats
	stats.TotalSessions = len(sessions)

	roles := make(map[string]struct{})
	focusAreas := make(map[string]struct{})
	monthAgo := now.AddDate(0, 0, -30)
	weekAgo := now.AddDate(0, 0, -7)

	for _, s := range sessions {
		roles[s.Role] = struct{}{}
		for _, area := range s.FocusAreas {
			focusAreas[area] = struct{}{}
		}
		if !s.UpdatedAt.Before(monthAgo) {
			stats.RecentSessions++
		}
		if !s.UpdatedAt.Before(weekAgo) {
			stats.WeekSessions++
		}
		for i := range s.Questions {
			q := &s.Questions[i]
			stats.TotalQuestions++
			if q.IsAnswered() {
				stats.AnsweredQuestions++
			}
			if q.AnsweredCorrectly() {
				stats.CorrectAnswers++
			}
			if q.IsPinned {
				stats.PinnedQuestions++
			}
		}
	}
	stats.UniqueRoles = len(roles)
	stats.UniqueFocusAreas = len(focusAreas)

	accuracyRate := ratio(stats.CorrectAnswers, stats.AnsweredQuestions)
	stats.AccuracyRate = round(accuracyRate * 100)

	avgQuestions := ratio(stats.TotalQuestions, stats.TotalSessions)
	breakdown := ReadinessBreakdown{
		Accuracy:    round(accuracyRate * 40),
		Coverage:    min(stats.UniqueRoles*3, 15) + min(stats.UniqueFocusAreas*2, 10),
		Consistency: min(stats.WeekSessions*2, 10) + min(stats.RecentSessions, 10),
		Depth:       min(round(avgQuestions*0.8), 8) + min(round(float64(stats.PinnedQuestions)*0.7), 7),
	}

	score := min(breakdown.Accuracy+breakdown.Coverage+breakdown.Consistency+breakdown.Depth, 100)
	level, message := readinessLevel(score)

	return Readiness{
		Score:     score,
		Breakdown: breakdown,
		Stats:     stats,
		Insights: ReadinessInsights{
			Level:           level,
			Message:         message,
			Recommendations: readinessRecommendations(breakdown, stats),
		},
	}
}

func firstSessionReadiness() Readiness {
	return Readiness{
		Insights: ReadinessInsights{
			Level:   "Getting Started",
			Message: "Create your first practice session to start measuring your interview readiness.",
			Recommendations: []string{
				"Start a practice session for the role you are targeting.",
				"Answer the generated questions to build your accuracy score.",
				"Pin tricky questions so you can revisit them later.",
			},
		},
	}
}

func readinessLevel(score int) (string, string) {
	switch {
	case score >= 80:
		return "Interview Ready", "You are well prepared. Keep sharpening your answers with mock interviews."
	case score >= 60:
		return "Advanced", "Strong progress. Polish your weaker areas to become interview ready."
	case score >= 40:
		return "Intermediate", "You have a solid foundation. Improve accuracy and practice more often."
	case score >= 20:
		return "Developing", "You are building momentum. Keep practicing consistently."
	default:
		return "Getting Started", "Every expert started somewhere. Keep practicing to build your readiness."
	}
}

func readinessRecommendations(b ReadinessBreakdown, stats ReadinessStats) []string {
	recs := make([]string, 0, 7)

	if b.Accuracy < 25 {
		recs = append(recs, "Focus on accuracy: review the concept explanations for questions you missed.")
	}
	if b.Coverage < 15 {
		recs = append(recs, fmt.Sprintf(
			"Broaden your preparation: you have explored %d role(s) so far. Practice for more roles and focus areas.",
			stats.UniqueRoles))
	}
	if b.Consistency < 12 {
		recs = append(recs, "Practice more regularly: short sessions several times a week build lasting recall.")
		if stats.WeekSessions == 0 {
			recs = append(recs, "You have not practiced this week. Start a session today to get back on track.")
		}
	}
	if b.Depth < 10 {
		recs = append(recs, "Go deeper: work through more questions per session and pin the ones worth revisiting.")
	}
	if float64(stats.AnsweredQuestions) < float64(stats.TotalQuestions)*0.5 {
		recs = append(recs, fmt.Sprintf(
			"You have answered %d of %d questions. Answer more of them to get meaningful feedback.",
			stats.AnsweredQuestions, stats.TotalQuestions))
	}
	if stats.TotalSessions >= 5 {
		recs = append(recs, fmt.Sprintf(
			"Great commitment: %d practice sessions completed. Keep it up!", stats.TotalSessions))
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// ratio divides and returns 0 when den is 0.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func round(f float64) int {
	return int(math.Round(f))
}
