package ir

// Version constants for the serialized formats and engine.
const (
	// IRVersion is the version of the TweenSpec and Sample encodings.
	IRVersion = "1"

	// EngineVersion is the tween engine version.
	EngineVersion = "0.1.0"
)
