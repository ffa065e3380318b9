// Package worker simulates hired workers: time-limited entities that pay a
// fixed point budget linearly over their lifetime.
//
// Only the numeric state lives here. Screen position and sprites belong to
// the rendering layer, which correlates with SimState by ID.
package worker

import (
	"time"

	"github.com/google/uuid"
)

// SimState is one worker's payout schedule.
type SimState struct {
	ID          uuid.UUID
	TotalBudget int64 // points paid over the whole lifetime
	PaidSoFar   int64 // never decreases, never exceeds TotalBudget
	CreatedAt   time.Time
	Lifetime    time.Duration
}

// Expired reports whether the worker's lifetime has run out at now.
func (w SimState) Expired(now time.Time) bool {
	return now.Sub(w.CreatedAt) >= w.Lifetime
}

// Remaining is the lifetime left at now, clamped to [0, Lifetime].
func (w SimState) Remaining(now time.Time) time.Duration {
	left := w.Lifetime - now.Sub(w.CreatedAt)
	if left < 0 {
		return 0
	}
	if left > w.Lifetime {
		return w.Lifetime
	}
	return left
}

// advance brings PaidSoFar up to the schedule at now and returns the points
// earned. The target is computed from the absolute creation time, so the
// cadence of calls does not change the total. On expiry the whole remainder
// is paid.
func (w *SimState) advance(now time.Time) (earned int64, expired bool) {
	elapsed := now.Sub(w.CreatedAt)
	lifeMs := w.Lifetime.Milliseconds()
	if elapsed >= w.Lifetime || lifeMs <= 0 {
		earned = w.TotalBudget - w.PaidSoFar
		w.PaidSoFar = w.TotalBudget
		return earned, true
	}
	if elapsed <= 0 {
		return 0, false
	}

	target := w.TotalBudget * elapsed.Milliseconds() / lifeMs
	if target <= w.PaidSoFar {
		return 0, false
	}
	earned = target - w.PaidSoFar
	w.PaidSoFar = target
	return earned, false
}
