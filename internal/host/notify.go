package host

import "github.com/roach88/motion/internal/timeline"

// NotificationKind names an externally visible engine hook.
type NotificationKind string

const (
	AnimationStarted  NotificationKind = "animation-started"
	AnimationStopping NotificationKind = "animation-stopping"
)

// Notification is fired when an instance is created and when it is about
// to be removed.
type Notification struct {
	Kind         NotificationKind `json:"kind"`
	InstanceID   timeline.ID      `json:"instanceId"`
	ElementID    string           `json:"elementId"`
	ActionListID string           `json:"actionListId"`
	ActionTypeID string           `json:"actionTypeId"`
}

// Notifier receives engine notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Notifiers fans a notification out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(n Notification) {
	for _, x := range ns {
		if x != nil {
			x.Notify(n)
		}
	}
}
