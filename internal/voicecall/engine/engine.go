package engine

import (
	"context"
	"errors"
	"time"
)

// Package engine defines the contract between a call session and a realtime
// conversational engine. Protocol-specific adapters (OpenAI Realtime, Gemini
// Live) implement Link; call-handling logic never sees protocol frames.

var (
	// ErrHandshakeTimeout is returned by Start when the engine's bootstrap
	// sequence does not complete within the configured bound.
	ErrHandshakeTimeout = errors.New("engine handshake timed out")
	// ErrDisconnected is carried on a Closed event when the engine transport drops.
	ErrDisconnected = errors.New("engine transport disconnected")
)

// EventType classifies events demultiplexed from the engine stream.
type EventType int

const (
	// EventAudioDelta carries a chunk of synthesized speech, already decoded
	// to PCM16 at the link's output sample rate.
	EventAudioDelta EventType = iota
	// EventSpeechStarted signals the caller began talking while engine audio
	// is playing; the session must cancel the response and clear queued audio.
	EventSpeechStarted
	// EventToolCall carries a completed tool invocation request.
	EventToolCall
	// EventClosed is the final event on the channel; Err is nil on an orderly
	// shutdown and non-nil when the transport dropped.
	EventClosed
)

// Event is one demultiplexed engine event. Unknown protocol frames are never
// surfaced here; adapters drop them.
type Event struct {
	Type  EventType
	Audio []byte
	Tool  ToolCall
	Err   error
}

// ToolCall is a structured function-invocation request from the engine.
type ToolCall struct {
	CallID    string
	Name      string
	Arguments map[string]interface{}
}

// ToolDefinition describes one callable tool in the session configuration.
// Parameters holds a JSON-schema object; adapters translate it to their
// protocol's tool format.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// SessionConfig is the engine-independent session bootstrap payload.
type SessionConfig struct {
	Instructions     string
	Tools            []ToolDefinition
	Voice            string
	HandshakeTimeout time.Duration
}

// Link is one persistent session to a realtime engine. Start performs the
// bootstrap handshake (open transport, send configuration, send the priming
// silence frame) and returns the demultiplexed event stream. All methods are
// safe for use by a single session goroutine family.
type Link interface {
	Start(ctx context.Context, cfg SessionConfig) (<-chan Event, error)
	SendAudio(ctx context.Context, pcm []byte) error
	Cancel(ctx context.Context) error
	SendToolResult(ctx context.Context, callID string, resultJSON string) error
	Close() error

	// InputSampleRate and OutputSampleRate report the PCM16 rates this
	// engine consumes and produces; formats are fixed per link, never
	// negotiated per frame.
	InputSampleRate() int
	OutputSampleRate() int
}
