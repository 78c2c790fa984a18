package tts

import "errors"

// Common errors for the TTS system.
var (
	// Engine errors
	ErrEngineNotAvailable = errors.New("TTS engine is not available")
	ErrUnknownEngine      = errors.New("unknown TTS engine")
	ErrEmptyText          = errors.New("text cannot be empty")
	ErrTextTooLong        = errors.New("text exceeds engine limit")
	ErrUnsupportedFormat  = errors.New("unsupported audio format")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("required configuration missing")
)
