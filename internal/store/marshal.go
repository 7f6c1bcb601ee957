package store

import (
	"fmt"

	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/state"
)

// marshalPayload converts a message to canonical JSON TEXT for storage.
func marshalPayload(m state.Message) (string, error) {
	data, err := ir.MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", m.Kind(), err)
	}
	return string(data), nil
}

// unmarshalPayload rebuilds a message from its stored kind and payload.
func unmarshalPayload(kind, payload string) (state.Message, error) {
	m, err := state.DecodeMessage(state.Kind(kind), []byte(payload))
	if err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return m, nil
}
