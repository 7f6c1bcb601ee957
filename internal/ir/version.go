package ir

// Version constants for the model schema and engine.
const (
	// ModelVersion is the declarative document schema version.
	ModelVersion = "1"

	// EngineVersion is the timeline engine version.
	EngineVersion = "0.1.0"
)
