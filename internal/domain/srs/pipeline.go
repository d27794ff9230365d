package srs

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/domain"
)

// Attempt is one graded answer to a concept.
type Attempt struct {
	QuestionID *uuid.UUID
	IsCorrect  bool

	// UserAnswer and ExpectedAnswer feed the error classifier on a miss.
	// Leaving ExpectedAnswer empty skips classification.
	UserAnswer     string
	ExpectedAnswer string
}

// applyAttempt returns the record that results from attempt. prior is not
// modified. The derivations run in a fixed order: outcome counters, attempt
// history, schedule, mastery, priority (which reads the new mastery), and
// improvement (which reads the new history).
func applyAttempt(prior *domain.MistakePattern, attempt Attempt, now time.Time, params *Params) *domain.MistakePattern {
	next := prior.Clone()
	at := now

	if attempt.IsCorrect {
		next.CorrectCount++
		next.LastCorrectAt = &at
	} else {
		next.MistakeCount++
		next.LastMistakeAt = &at
		if attempt.ExpectedAnswer != "" {
			next.AddCommonError(ClassifyError(attempt.UserAnswer, attempt.ExpectedAnswer))
		}
	}

	next.RelatedQuestions = next.RelatedQuestions.Append(domain.AttemptRecord{
		QuestionID:  attempt.QuestionID,
		WasCorrect:  attempt.IsCorrect,
		AttemptedAt: now,
	})

	// The scheduler owns the streak.
	schedule := nextSchedule(ScheduleState{
		ReviewInterval:     next.ReviewInterval,
		EaseFactor:         next.EaseFactor,
		ConsecutiveCorrect: next.ConsecutiveCorrect,
		NextReviewAt:       next.NextReviewAt,
	}, params.QualityFor(attempt.IsCorrect), now, params)
	next.ReviewInterval = schedule.ReviewInterval
	next.ConsecutiveCorrect = schedule.ConsecutiveCorrect
	next.NextReviewAt = schedule.NextReviewAt
	next.EaseFactor = math.Min(params.MaxEaseFactor, math.Max(params.MinEaseFactor, schedule.EaseFactor))

	mastery := ClassifyMastery(MasteryInput{
		CorrectCount:       next.CorrectCount,
		MistakeCount:       next.MistakeCount,
		ConsecutiveCorrect: next.ConsecutiveCorrect,
	})
	next.MasteryLevel = mastery

	next.Priority = ClassifyPriority(PriorityInput{
		LastMistakeAt:      next.LastMistakeAt,
		MistakeCount:       next.MistakeCount,
		ConsecutiveCorrect: next.ConsecutiveCorrect,
		NextReviewAt:       next.NextReviewAt,
	}, mastery, now)

	improvement := CalculateImprovement(next.RelatedQuestions.Recent(params.ImprovementWindow))
	next.ImprovementScore = improvement.Score
	next.IsImproving = improvement.IsImproving

	next.UpdatedAt = now
	return next
}
