package srs

import (
	"math"
	"time"
)

// ScheduleState is the part of a concept record the scheduler owns.
type ScheduleState struct {
	ReviewInterval     int
	EaseFactor         float64
	ConsecutiveCorrect int
	NextReviewAt       time.Time
}

// clampQuality restricts q to the SM-2 range 0..5.
func clampQuality(q int) int {
	if q < 0 {
		return 0
	}
	if q > 5 {
		return 5
	}
	return q
}

// easeDelta is the SM-2 ease adjustment for quality q.
func easeDelta(q int) float64 {
	miss := float64(5 - q)
	return 0.1 - miss*(0.08+miss*0.02)
}

// nextSchedule applies one SM-2 review to state and returns the new state.
//
// A miss (quality below params.PassingQuality) resets the interval to one
// day and clears the streak; the ease factor is left alone. A hit extends
// the streak: the first hit schedules params.FirstInterval days, the second
// params.SecondInterval, later hits multiply the previous interval by the
// ease factor in effect before this review. After a hit the ease factor
// moves by the SM-2 delta and never drops below params.MinEaseFactor.
func nextSchedule(state ScheduleState, quality int, now time.Time, params *Params) ScheduleState {
	q := clampQuality(quality)
	next := state

	if q < params.PassingQuality {
		next.ReviewInterval = 1
		next.ConsecutiveCorrect = 0
	} else {
		next.ConsecutiveCorrect++
		switch next.ConsecutiveCorrect {
		case 1:
			next.ReviewInterval = params.FirstInterval
		case 2:
			next.ReviewInterval = params.SecondInterval
		default:
			next.ReviewInterval = int(math.Round(float64(state.ReviewInterval) * state.EaseFactor))
		}
		next.EaseFactor = math.Max(params.MinEaseFactor, state.EaseFactor+easeDelta(q))
	}

	if next.ReviewInterval < 1 {
		next.ReviewInterval = 1
	}
	next.NextReviewAt = now.AddDate(0, 0, next.ReviewInterval)
	return next
}
