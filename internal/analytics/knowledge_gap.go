package analytics

import (
	"fmt"
	"sort"

	"github.com/phrazzld/prep-api/internal/domain"
)

const (
	weakThreshold      = 40
	strongThreshold    = 60
	maxRecommendedGaps = 3
)

// Strength bands.
const (
	LevelExpert     = "Expert"
	LevelProficient = "Proficient"
	LevelDeveloping = "Developing"
	LevelWeak       = "Weak"
	LevelCritical   = "Critical"
)

// DifficultyCounts is a histogram of question difficulty.
type DifficultyCounts struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// TopicStrength is the rollup for one topic. AccuracyRate and
// EngagementRate are whole percentages.
type TopicStrength struct {
	Topic          string           `json:"topic"`
	Total          int              `json:"total"`
	Answered       int              `json:"answered"`
	Correct        int              `json:"correct"`
	Pinned         int              `json:"pinned"`
	Difficulty     DifficultyCounts `json:"difficulty"`
	Roles          []string         `json:"roles"`
	FocusAreas     []string         `json:"focus_areas"`
	AccuracyRate   int              `json:"accuracy_rate"`
	EngagementRate int              `json:"engagement_rate"`
	StrengthScore  int              `json:"strength_score"`
	Level          string           `json:"level"`
	Color          string           `json:"color"`
	NeedsAttention bool             `json:"needs_attention"`
}

// FocusRecommendation suggests what to do about a weak topic.
type FocusRecommendation struct {
	Topic           string `json:"topic"`
	StrengthScore   int    `json:"strength_score"`
	Reason          string `json:"reason"`
	SuggestedAction string `json:"suggested_action"`
}

// GapMetadata summarises the analysed snapshot.
type GapMetadata struct {
	TotalSessions     int `json:"total_sessions"`
	TotalTopics       int `json:"total_topics"`
	TotalQuestions    int `json:"total_questions"`
	AnsweredQuestions int `json:"answered_questions"`
	WeakTopicCount    int `json:"weak_topic_count"`
	StrongTopicCount  int `json:"strong_topic_count"`
}

// KnowledgeGaps is the per-topic strength report. TopicStrengths is ordered
// weakest first.
type KnowledgeGaps struct {
	TopicStrengths   []TopicStrength       `json:"topic_strengths"`
	WeakTopics       []TopicStrength       `json:"weak_topics"`
	StrongTopics     []TopicStrength       `json:"strong_topics"`
	AverageStrength  int                   `json:"average_strength"`
	RecommendedFocus []FocusRecommendation `json:"recommended_focus"`
	Metadata         GapMetadata           `json:"metadata"`
}

type topicAccumulator struct {
	strength   TopicStrength
	roles      map[string]struct{}
	focusAreas map[string]struct{}
}

func (a *topicAccumulator) addRole(role string) {
	if _, ok := a.roles[role]; !ok {
		a.roles[role] = struct{}{}
		a.strength.Roles = append(a.strength.Roles, role)
	}
}

func (a *topicAccumulator) addFocusArea(area string) {
	if _, ok := a.focusAreas[area]; !ok {
		a.focusAreas[area] = struct{}{}
		a.strength.FocusAreas = append(a.strength.FocusAreas, area)
	}
}

// AnalyzeKnowledgeGaps groups every question of sessions by topic and scores
// each topic.
func AnalyzeKnowledgeGaps(sessions []domain.Session) KnowledgeGaps {
	result := KnowledgeGaps{
		TopicStrengths:   []TopicStrength{},
		WeakTopics:       []TopicStrength{},
		StrongTopics:     []TopicStrength{},
		RecommendedFocus: []FocusRecommendation{},
	}
	if len(sessions) == 0 {
		return result
	}

	groups := make(map[string]*topicAccumulator)
	var order []string

	for _, s := range sessions {
		for i := range s.Questions {
			q := &s.Questions[i]
			topic := q.Topic
			if topic == "" {
				topic = domain.DefaultTopic
			}

			acc, ok := groups[topic]
			if !ok {
				acc = &topicAccumulator{
					strength:   TopicStrength{Topic: topic, Roles: []string{}, FocusAreas: []string{}},
					roles:      make(map[string]struct{}),
					focusAreas: make(map[string]struct{}),
				}
				groups[topic] = acc
				order = append(order, topic)
			}

			ts := &acc.strength
			ts.Total++
			if q.IsAnswered() {
				ts.Answered++
			}
			if q.AnsweredCorrectly() {
				ts.Correct++
			}
			if q.IsPinned {
				ts.Pinned++
			}
			switch q.Difficulty {
			case domain.DifficultyEasy:
				ts.Difficulty.Easy++
			case domain.DifficultyHard:
				ts.Difficulty.Hard++
			default:
				ts.Difficulty.Medium++
			}
			acc.addRole(s.Role)
			for _, area := range s.FocusAreas {
				acc.addFocusArea(area)
			}
		}
	}

	totalStrength := 0
	for _, topic := range order {
		ts := scoreTopic(groups[topic].strength)
		totalStrength += ts.StrengthScore
		result.TopicStrengths = append(result.TopicStrengths, ts)
		result.Metadata.TotalQuestions += ts.Total
		result.Metadata.AnsweredQuestions += ts.Answered
	}

	sort.SliceStable(result.TopicStrengths, func(i, j int) bool {
		return result.TopicStrengths[i].StrengthScore < result.TopicStrengths[j].StrengthScore
	})

	for _, ts := range result.TopicStrengths {
		if ts.StrengthScore < weakThreshold {
			result.WeakTopics = append(result.WeakTopics, ts)
		}
		if ts.StrengthScore >= strongThreshold {
			result.StrongTopics = append(result.StrongTopics, ts)
		}
	}

	if n := len(result.TopicStrengths); n > 0 {
		result.AverageStrength = round(float64(totalStrength) / float64(n))
	}

	for i, ts := range result.WeakTopics {
		if i == maxRecommendedGaps {
			break
		}
		result.RecommendedFocus = append(result.RecommendedFocus, recommendFocus(ts))
	}

	result.Metadata.TotalSessions = len(sessions)
	result.Metadata.TotalTopics = len(result.TopicStrengths)
	result.Metadata.WeakTopicCount = len(result.WeakTopics)
	result.Metadata.StrongTopicCount = len(result.StrongTopics)
	return result
}

// scoreTopic fills in the derived fields of ts.
//
// The hard-question term scales overall topic accuracy by the share of hard
// questions rather than measuring accuracy on hard questions alone.
func scoreTopic(ts TopicStrength) TopicStrength {
	accuracyRate := ratio(ts.Correct, ts.Answered)
	engagementRate := ratio(ts.Answered, ts.Total)

	hardCorrectRate := 0.0
	if ts.Difficulty.Hard > 0 {
		hardCorrectRate = accuracyRate * ratio(ts.Difficulty.Hard, ts.Total)
	}

	accuracyScore := accuracyRate * 50
	engagementScore := engagementRate * 30
	masteryScore := (accuracyRate*0.7 + hardCorrectRate*0.3) * 20

	ts.AccuracyRate = round(accuracyRate * 100)
	ts.EngagementRate = round(engagementRate * 100)
	ts.StrengthScore = round(accuracyScore + engagementScore + masteryScore)
	ts.Level, ts.Color = strengthBand(ts.StrengthScore)
	ts.NeedsAttention = ts.StrengthScore < weakThreshold
	return ts
}

func strengthBand(score int) (string, string) {
	switch {
	case score >= 80:
		return LevelExpert, "#4caf50"
	case score >= 60:
		return LevelProficient, "#00bcd4"
	case score >= 40:
		return LevelDeveloping, "#ff9800"
	case score >= 20:
		return LevelWeak, "#ff5722"
	default:
		return LevelCritical, "#f44336"
	}
}

func recommendFocus(ts TopicStrength) FocusRecommendation {
	rec := FocusRecommendation{Topic: ts.Topic, StrengthScore: ts.StrengthScore}
	switch {
	case ts.Answered == 0:
		rec.Reason = fmt.Sprintf("You have not attempted any %s questions yet.", ts.Topic)
		rec.SuggestedAction = fmt.Sprintf("Start answering %s questions to measure your understanding.", ts.Topic)
	case ts.AccuracyRate < 50:
		rec.Reason = fmt.Sprintf("Low accuracy on %s: %d%% of answered questions were correct.", ts.Topic, ts.AccuracyRate)
		rec.SuggestedAction = fmt.Sprintf("Review the %s concept explanations and retry the questions you missed.", ts.Topic)
	default:
		rec.Reason = fmt.Sprintf("Limited practice on %s: %d of %d questions answered.", ts.Topic, ts.Answered, ts.Total)
		rec.SuggestedAction = fmt.Sprintf("Answer more %s questions to build confidence in this area.", ts.Topic)
	}
	return rec
}
