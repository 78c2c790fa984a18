package cache

import "errors"

// Common errors for cache operations.
var (
	// ErrNoCacheDir is returned when no cache folder is configured.
	ErrNoCacheDir = errors.New("cache folder must be defined")

	// ErrEmptyText is returned when there is no text to derive a key from.
	ErrEmptyText = errors.New("text is empty")

	// ErrInvalidText is returned when the text is not valid UTF-8.
	ErrInvalidText = errors.New("text is not valid UTF-8")

	// ErrInvalidVoice is returned when the voice label is empty or not
	// safe to use as part of a filename.
	ErrInvalidVoice = errors.New("invalid voice label")

	// ErrNoSynthesizer is returned on a cache miss when no synthesizer
	// was configured to fill it.
	ErrNoSynthesizer = errors.New("no synthesizer configured")
)
