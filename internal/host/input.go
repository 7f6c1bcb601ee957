package host

// Source names an input notification.
type Source string

const (
	SourceClick      Source = "click"
	SourceMouseDown  Source = "mousedown"
	SourceMouseUp    Source = "mouseup"
	SourceMouseOver  Source = "mouseover"
	SourceMouseOut   Source = "mouseout"
	SourceMouseMove  Source = "mousemove"
	SourceScroll     Source = "scroll"
	SourceResize     Source = "resize"
	SourceReady      Source = "ready"
	SourceLoad       Source = "load"
	SourcePageUpdate Source = "pageupdate"
)

// Input is one notification from the host.
type Input struct {
	Source Source
	// Target is the element the input happened on; nil for page-level input.
	Target Element
	// X and Y are the viewport-relative pointer position.
	X, Y float64
}

// Handler receives input.
type Handler func(Input)

// InputSource registers input handlers. A nil target listens at page level
// and, for pointer sources, receives input for every element.
type InputSource interface {
	Listen(src Source, target Element, h Handler) (remove func())
}
