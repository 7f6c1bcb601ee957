package engine

import (
	"errors"
	"fmt"
)

// CascadeQuota bounds how many carrier cascades may run within one frame.
//
// A list whose groups all have zero duration, played with loop enabled,
// would otherwise cascade forever inside a single frame. The render loop
// resets the quota before every frame.
type CascadeQuota struct {
	maxSteps int
	current  int
}

// NewCascadeQuota creates a quota with the given per-frame limit.
func NewCascadeQuota(maxSteps int) *CascadeQuota {
	return &CascadeQuota{maxSteps: maxSteps}
}

// Check counts one cascade step for an action list. It returns a
// CascadeExceededError once the limit is passed.
func (q *CascadeQuota) Check(actionListID string) error {
	q.current++
	if q.current > q.maxSteps {
		return &CascadeExceededError{
			ActionListID: actionListID,
			Steps:        q.current,
			Limit:        q.maxSteps,
		}
	}
	return nil
}

// Reset zeroes the step counter.
func (q *CascadeQuota) Reset() {
	q.current = 0
}

// Current returns the steps counted since the last reset.
func (q *CascadeQuota) Current() int {
	return q.current
}

// MaxSteps returns the per-frame limit.
func (q *CascadeQuota) MaxSteps() int {
	return q.maxSteps
}

// CascadeExceededError reports a cascade cut off by the quota. The carrier
// that hit the limit is removed without starting its next group.
type CascadeExceededError struct {
	ActionListID string
	Steps        int
	Limit        int
}

func (e *CascadeExceededError) Error() string {
	return fmt.Sprintf("action list %s exceeded cascade quota: %d steps > %d limit",
		e.ActionListID, e.Steps, e.Limit)
}

// IsCascadeExceededError reports whether err wraps a CascadeExceededError.
func IsCascadeExceededError(err error) bool {
	var ce *CascadeExceededError
	return errors.As(err, &ce)
}
