package state

import (
	"encoding/json"
	"fmt"
)

var decoders = map[Kind]func() Message{
	KindDataImported:              func() Message { return &DataImported{} },
	KindSessionInitialized:        func() Message { return &SessionInitialized{} },
	KindSessionStarted:            func() Message { return &SessionStarted{} },
	KindSessionStopped:            func() Message { return &SessionStopped{} },
	KindListenerAdded:             func() Message { return &ListenerAdded{} },
	KindFrameChanged:              func() Message { return &FrameChanged{} },
	KindInstanceAdded:             func() Message { return &InstanceAdded{} },
	KindInstanceStarted:           func() Message { return &InstanceStarted{} },
	KindInstanceRemoved:           func() Message { return &InstanceRemoved{} },
	KindElementStateChanged:       func() Message { return &ElementStateChanged{} },
	KindEventStateChanged:         func() Message { return &EventStateChanged{} },
	KindActionListPlaybackChanged: func() Message { return &ActionListPlaybackChanged{} },
	KindViewportWidthChanged:      func() Message { return &ViewportWidthChanged{} },
	KindMediaQueriesDefined:       func() Message { return &MediaQueriesDefined{} },
	KindParameterChanged:          func() Message { return &ParameterChanged{} },
	KindPreviewRequested:          func() Message { return &PreviewRequested{} },
	KindPlaybackRequested:         func() Message { return &PlaybackRequested{} },
	KindStopRequested:             func() Message { return &StopRequested{} },
	KindClearRequested:            func() Message { return &ClearRequested{} },
}

// EncodeMessage serializes a message payload for the journal.
func EncodeMessage(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Kind(), err)
	}
	return data, nil
}

// DecodeMessage rebuilds a message from its kind and journaled payload.
func DecodeMessage(kind Kind, payload []byte) (Message, error) {
	newMsg, ok := decoders[kind]
	if !ok {
		return nil, fmt.Errorf("decode: unknown message kind %q", kind)
	}
	ptr := newMsg()
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, ptr); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
	}
	return deref(ptr), nil
}

// deref returns the value form of a decoded message; reducers switch on
// value types.
func deref(m Message) Message {
	switch v := m.(type) {
	case *DataImported:
		return *v
	case *SessionInitialized:
		return *v
	case *SessionStarted:
		return *v
	case *SessionStopped:
		return *v
	case *ListenerAdded:
		return *v
	case *FrameChanged:
		return *v
	case *InstanceAdded:
		return *v
	case *InstanceStarted:
		return *v
	case *InstanceRemoved:
		return *v
	case *ElementStateChanged:
		return *v
	case *EventStateChanged:
		return *v
	case *ActionListPlaybackChanged:
		return *v
	case *ViewportWidthChanged:
		return *v
	case *MediaQueriesDefined:
		return *v
	case *ParameterChanged:
		return *v
	case *PreviewRequested:
		return *v
	case *PlaybackRequested:
		return *v
	case *StopRequested:
		return *v
	case *ClearRequested:
		return *v
	}
	return m
}
