// Package mock provides a deterministic in-process synthesizer for
// testing and offline use.
package mock

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/voxcache/tts"
)

// Engine implements tts.Synthesizer without any external backend. The
// produced bytes are a deterministic function of the inputs, so the
// cache behaves exactly as it would against a real engine.
type Engine struct {
	delay       time.Duration
	failureRate float64
	rng         *rand.Rand

	mu       sync.Mutex
	calls    int
	failWith error
}

// New creates a mock engine from configuration.
func New(cfg tts.MockConfig) *Engine {
	return &Engine{
		delay:       cfg.GenerationDelay,
		failureRate: cfg.FailureRate,
		rng:         rand.New(rand.NewSource(1)), //nolint:gosec // test determinism
	}
}

// Name identifies the engine.
func (e *Engine) Name() string { return "mock" }

// Synthesize produces a deterministic pseudo-audio payload.
func (e *Engine) Synthesize(ctx context.Context, text, voice, format string) (io.ReadCloser, error) {
	e.mu.Lock()
	e.calls++
	fail := e.failWith
	if fail == nil && e.failureRate > 0 && e.rng.Float64() < e.failureRate {
		fail = tts.ErrEngineNotAvailable
	}
	e.mu.Unlock()

	if fail != nil {
		return nil, fail
	}
	if text == "" {
		return nil, tts.ErrEmptyText
	}

	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	payload := fmt.Sprintf("MOCK-AUDIO %s %s\n%s\n", voice, format, text)
	return io.NopCloser(strings.NewReader(payload)), nil
}

// Voices returns a fixed voice list.
func (e *Engine) Voices(context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{ID: "MockOne", Name: "Mock One", Language: "en-US", Gender: "Female"},
		{ID: "MockTwo", Name: "Mock Two", Language: "en-GB", Gender: "Male"},
	}, nil
}

// Calls returns how many times Synthesize was invoked.
func (e *Engine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// FailWith makes every subsequent Synthesize call return err. Pass nil
// to restore normal operation.
func (e *Engine) FailWith(err error) {
	e.mu.Lock()
	e.failWith = err
	e.mu.Unlock()
}

var _ tts.Synthesizer = (*Engine)(nil)
