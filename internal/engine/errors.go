package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is a recoverable problem found while the engine runs. The
// engine logs it and carries on; tests and the control server read the
// structured fields.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string

	EventID      string
	ActionListID string

	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodePluginNotRegistered: an action item names a plugin type with no
	// registered plugin. The item is skipped.
	ErrCodePluginNotRegistered RuntimeErrorCode = "PLUGIN_NOT_REGISTERED"

	// ErrCodeCascadeQuotaExceeded: a carrier cascade hit the per-frame quota.
	ErrCodeCascadeQuotaExceeded RuntimeErrorCode = "CASCADE_QUOTA_EXCEEDED"

	// ErrCodeUnknownEventType: an event's type has no binding. The event is
	// not bound.
	ErrCodeUnknownEventType RuntimeErrorCode = "UNKNOWN_EVENT_TYPE"

	// ErrCodeUnknownActionList: a request or event names a missing list.
	ErrCodeUnknownActionList RuntimeErrorCode = "UNKNOWN_ACTION_LIST"
)

func (e *RuntimeError) Error() string {
	switch {
	case e.EventID != "" && e.ActionListID != "":
		return fmt.Sprintf("%s: %s (event=%s, list=%s)", e.Code, e.Message, e.EventID, e.ActionListID)
	case e.ActionListID != "":
		return fmt.Sprintf("%s: %s (list=%s)", e.Code, e.Message, e.ActionListID)
	case e.EventID != "":
		return fmt.Sprintf("%s: %s (event=%s)", e.Code, e.Message, e.EventID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorCode returns the code of a wrapped RuntimeError, or "".
func ErrorCode(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	if IsCascadeExceededError(err) {
		return ErrCodeCascadeQuotaExceeded
	}
	return ""
}

// NewPluginError reports an action item whose plugin is not registered.
func NewPluginError(actionListID, actionTypeID string) *RuntimeError {
	return &RuntimeError{
		Code:         ErrCodePluginNotRegistered,
		Message:      fmt.Sprintf("no plugin registered for %s", actionTypeID),
		ActionListID: actionListID,
		Details:      map[string]string{"action_type": actionTypeID},
	}
}

// NewQuotaError wraps a cascade cut off by the quota.
func NewQuotaError(err *CascadeExceededError) *RuntimeError {
	return &RuntimeError{
		Code:         ErrCodeCascadeQuotaExceeded,
		Message:      fmt.Sprintf("cascade exceeded %d steps in one frame", err.Limit),
		ActionListID: err.ActionListID,
		Details: map[string]string{
			"steps":     fmt.Sprintf("%d", err.Steps),
			"max_steps": fmt.Sprintf("%d", err.Limit),
		},
	}
}

// NewUnknownEventError reports an event type without a binding.
func NewUnknownEventError(eventID, eventTypeID string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownEventType,
		Message: fmt.Sprintf("unknown event type %s", eventTypeID),
		EventID: eventID,
	}
}

// NewUnknownListError reports a reference to a missing action list.
func NewUnknownListError(eventID, actionListID string) *RuntimeError {
	return &RuntimeError{
		Code:         ErrCodeUnknownActionList,
		Message:      "action list not found",
		EventID:      eventID,
		ActionListID: actionListID,
	}
}
