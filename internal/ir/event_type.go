package ir

// EventTypeID names the trigger condition of an event.
type EventTypeID string

const (
	MouseClick          EventTypeID = "MOUSE_CLICK"
	MouseSecondClick    EventTypeID = "MOUSE_SECOND_CLICK"
	MouseDown           EventTypeID = "MOUSE_DOWN"
	MouseUp             EventTypeID = "MOUSE_UP"
	MouseOver           EventTypeID = "MOUSE_OVER"
	MouseOut            EventTypeID = "MOUSE_OUT"
	MouseMove           EventTypeID = "MOUSE_MOVE"
	MouseMoveInViewport EventTypeID = "MOUSE_MOVE_IN_VIEWPORT"
	ScrollIntoView      EventTypeID = "SCROLL_INTO_VIEW"
	ScrollOutOfView     EventTypeID = "SCROLL_OUT_OF_VIEW"
	ScrollingInView     EventTypeID = "SCROLLING_IN_VIEW"
	PageStart           EventTypeID = "PAGE_START"
	PageFinish          EventTypeID = "PAGE_FINISH"
	PageScrollUp        EventTypeID = "PAGE_SCROLL_UP"
	PageScrollDown      EventTypeID = "PAGE_SCROLL_DOWN"
	PageScroll          EventTypeID = "PAGE_SCROLL"
)

// KnownEventTypes lists every event type the engine can bind.
var KnownEventTypes = []EventTypeID{
	MouseClick, MouseSecondClick, MouseDown, MouseUp, MouseOver, MouseOut,
	MouseMove, MouseMoveInViewport, ScrollIntoView, ScrollOutOfView,
	ScrollingInView, PageStart, PageFinish, PageScrollUp, PageScrollDown,
	PageScroll,
}

// IsKnown reports whether the engine has a binding for the event type.
func (t EventTypeID) IsKnown() bool {
	for _, k := range KnownEventTypes {
		if k == t {
			return true
		}
	}
	return false
}

// IsPageLevel reports whether the event is bound to the window rather than to
// its target elements.
func (t EventTypeID) IsPageLevel() bool {
	switch t {
	case PageStart, PageFinish, PageScrollUp, PageScrollDown, PageScroll, MouseMoveInViewport:
		return true
	}
	return false
}

// IsContinuousDriver reports whether the event type can drive continuous
// parameter groups.
func (t EventTypeID) IsContinuousDriver() bool {
	switch t {
	case MouseMove, MouseMoveInViewport, ScrollingInView, PageScroll:
		return true
	}
	return false
}
