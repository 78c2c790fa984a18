// Package tts defines the synthesizer contract shared by all speech
// engines, along with their configuration.
package tts

import (
	"context"
	"io"
)

// Synthesizer converts text to an audio byte stream. Implementations
// must produce deterministic output for identical inputs; the cache
// layered on top depends on that.
type Synthesizer interface {
	// Synthesize returns a stream of encoded audio for the text, spoken
	// by the given voice, in the given output format (e.g. "mp3").
	// The caller owns the stream and must close it.
	Synthesize(ctx context.Context, text, voice, format string) (io.ReadCloser, error)

	// Voices returns the voices the engine can speak with.
	Voices(ctx context.Context) ([]Voice, error)

	// Name identifies the engine.
	Name() string
}

// Voice represents a TTS voice configuration.
type Voice struct {
	ID       string // Voice identifier
	Name     string // Human-readable name
	Language string // Language code (e.g., "en-US")
	Gender   string // Voice gender
}
