package state

import (
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/timeline"
)

// Reducer computes the next state for a message. Reducers must be pure and
// total: unrecognized messages return the input unchanged.
type Reducer func(State, Message) State

// Reduce is the root reducer. It routes the message through every sub-tree
// reducer; sub-trees a message does not touch keep their identity.
func Reduce(s State, m Message) State {
	return State{
		Data:       reduceData(s.Data, m),
		Request:    reduceRequest(s.Request, m),
		Session:    reduceSession(s.Session, m),
		Elements:   reduceElements(s.Elements, m),
		Instances:  reduceInstances(s.Instances, m),
		Parameters: reduceParameters(s.Parameters, m),
	}
}

func reduceData(d *ir.Model, m Message) *ir.Model {
	if msg, ok := m.(DataImported); ok {
		return msg.Model
	}
	return d
}

func reduceRequest(r RequestState, m Message) RequestState {
	switch msg := m.(type) {
	case PreviewRequested:
		r.Preview = msg
		r.PreviewSeq++
	case PlaybackRequested:
		r.Playback = msg
		r.PlaybackSeq++
	case StopRequested:
		r.Stop = msg
		r.StopSeq++
	case ClearRequested:
		r.ClearSeq++
	}
	return r
}

func reduceSession(s Session, m Message) Session {
	switch msg := m.(type) {
	case SessionInitialized:
		s.HasBoundaryNodes = msg.HasBoundaryNodes
	case SessionStarted:
		s.Active = true
	case SessionStopped:
		return Session{}
	case ListenerAdded:
		listeners := make([]Listener, len(s.Listeners), len(s.Listeners)+1)
		copy(listeners, s.Listeners)
		s.Listeners = append(listeners, msg.Listener)
	case FrameChanged:
		s.Tick = msg.Now
	case EventStateChanged:
		events := make(map[string]EventState, len(s.EventState)+1)
		for k, v := range s.EventState {
			events[k] = v
		}
		events[msg.Key] = msg.State
		s.EventState = events
	case ActionListPlaybackChanged:
		playback := make(map[string]bool, len(s.Playback)+1)
		for k, v := range s.Playback {
			playback[k] = v
		}
		playback[msg.ActionListID] = msg.IsPlaying
		s.Playback = playback
	case ViewportWidthChanged:
		s.ViewportWidth = msg.Width
		s.MediaQueryKey = ""
		for _, q := range msg.MediaQueries {
			if q.Matches(msg.Width) {
				s.MediaQueryKey = q.Key
				break
			}
		}
	case MediaQueriesDefined:
		s.HasDefinedMediaQueries = true
		s.MediaQueryKeys = append([]string(nil), msg.Keys...)
	}
	return s
}

func reduceElements(e Elements, m Message) Elements {
	switch msg := m.(type) {
	case ElementStateChanged:
		return e.merge(msg)
	case SessionStopped:
		return Elements{}
	}
	return e
}

func reduceInstances(s InstanceSet, m Message) InstanceSet {
	switch msg := m.(type) {
	case InstanceAdded:
		in := msg.Instance
		if in.RenderType == ir.RenderUnknown {
			in.RenderType = in.ActionItem.RenderType
		}
		if in.RenderType == ir.RenderUnknown {
			in.RenderType = ir.RenderTypeOf(in.ActionItem.ActionTypeID)
		}
		if in.Curve == nil {
			in.Curve = timeline.CurveFrom(in.ActionItem.Config.CustomEasing)
		}
		return s.With(&in)
	case InstanceStarted:
		in, ok := s.Get(msg.ID)
		if !ok {
			return s
		}
		next := *in
		next.Active = true
		next.Complete = false
		next.Start = msg.Time
		return s.With(&next)
	case InstanceRemoved:
		return s.Without(msg.ID)
	case FrameChanged:
		frame := timeline.Frame{Now: msg.Now, Parameters: msg.Parameters}
		return s.update(func(in *timeline.Instance) *timeline.Instance {
			if msg.Repeat && in.Continuous {
				return in
			}
			return timeline.Compute(in, frame)
		})
	case SessionStopped:
		return InstanceSet{}
	}
	return s
}

func reduceParameters(p Parameters, m Message) Parameters {
	switch msg := m.(type) {
	case ParameterChanged:
		next := make(Parameters, len(p)+1)
		for k, v := range p {
			next[k] = v
		}
		next[msg.Key] = msg.Value
		return next
	case SessionStopped:
		return nil
	}
	return p
}
