package openairealtime

import (
	"clinic-server/internal/observability"
	"clinic-server/internal/voice/audio"
	"clinic-server/internal/voicecall/engine"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const realtimeURL = "wss://api.openai.com/v1/realtime?model=%s"

const (
	inputSampleRate  = 24000
	outputSampleRate = 24000
)

// Client is the OpenAI Realtime protocol adapter for engine.Link. One Client
// serves one call; create a fresh one per session.
type Client struct {
	apiKey string
	model  string
	logger *observability.Logger

	conn      *websocket.Conn
	writeMu   sync.Mutex
	events    chan engine.Event
	closeOnce sync.Once
}

func New(apiKey, model string, logger *observability.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
}

func (c *Client) InputSampleRate() int  { return inputSampleRate }
func (c *Client) OutputSampleRate() int { return outputSampleRate }

// Start dials the realtime endpoint, sends the session configuration and the
// priming silence frame, strictly in that order. Each step failing fails the
// whole handshake.
func (c *Client) Start(ctx context.Context, cfg engine.SessionConfig) (<-chan engine.Event, error) {
	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	handshakeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := websocket.Dialer{}
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.apiKey)
	headers.Set("OpenAI-Beta", "realtime=v1")

	conn, _, err := dialer.DialContext(handshakeCtx, fmt.Sprintf(realtimeURL, c.model), headers)
	if err != nil {
		if handshakeCtx.Err() != nil {
			return nil, fmt.Errorf("dial realtime endpoint: %w", engine.ErrHandshakeTimeout)
		}
		return nil, fmt.Errorf("dial realtime endpoint: %w", err)
	}
	c.conn = conn

	deadline, _ := handshakeCtx.Deadline()

	voice := cfg.Voice
	if voice == "" {
		voice = "alloy"
	}
	sessionUpdate := map[string]interface{}{
		"type": "session.update",
		"session": map[string]interface{}{
			"modalities":          []string{"audio", "text"},
			"instructions":        cfg.Instructions,
			"voice":               voice,
			"input_audio_format":  "pcm16",
			"output_audio_format": "pcm16",
			"turn_detection":      map[string]interface{}{"type": "server_vad"},
			"tools":               translateTools(cfg.Tools),
			"tool_choice":         "auto",
		},
	}
	if err := c.writeJSONDeadline(sessionUpdate, deadline); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send session configuration: %w", err)
	}

	// Priming silence elicits the engine's opening utterance.
	silence := audio.Silence(100*time.Millisecond, inputSampleRate)
	if err := c.SendAudio(handshakeCtx, silence); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send priming frame: %w", err)
	}

	c.events = make(chan engine.Event, 64)
	go c.readLoop(ctx)
	return c.events, nil
}

// SendAudio forwards caller PCM16 to the engine's input buffer.
func (c *Client) SendAudio(ctx context.Context, pcm []byte) error {
	return c.writeJSON(map[string]interface{}{
		"type":  "input_audio_buffer.append",
		"audio": audio.BytesToBase64(pcm),
	})
}

// Cancel aborts the in-flight response; used on barge-in.
func (c *Client) Cancel(ctx context.Context) error {
	return c.writeJSON(map[string]interface{}{"type": "response.cancel"})
}

// SendToolResult returns a tool call's output and immediately asks the engine
// to resume speaking.
func (c *Client) SendToolResult(ctx context.Context, callID string, resultJSON string) error {
	item := map[string]interface{}{
		"type": "conversation.item.create",
		"item": map[string]interface{}{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  resultJSON,
		},
	}
	if err := c.writeJSON(item); err != nil {
		return err
	}
	return c.writeJSON(map[string]interface{}{"type": "response.create"})
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.conn == nil {
			return
		}
		c.writeMu.Lock()
		c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// emit delivers one event unless the session context is gone. Without the
// context clause a consumer that stopped reading would park this goroutine on
// a full channel forever.
func (c *Client) emit(ctx context.Context, event engine.Event) bool {
	select {
	case c.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) readLoop(ctx context.Context) {
	defer close(c.events)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || ctx.Err() != nil {
				c.emit(ctx, engine.Event{Type: engine.EventClosed})
			} else {
				c.logger.Error(ctx, "Realtime read error", err)
				c.emit(ctx, engine.Event{Type: engine.EventClosed, Err: engine.ErrDisconnected})
			}
			return
		}

		var ev struct {
			Type      string `json:"type"`
			Delta     string `json:"delta"`
			CallID    string `json:"call_id"`
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		}
		if err := json.Unmarshal(msg, &ev); err != nil {
			c.logger.Error(ctx, "Failed to parse realtime event", err)
			continue
		}

		switch ev.Type {
		case "response.audio.delta":
			pcm, err := audio.Base64ToBytes(ev.Delta)
			if err != nil {
				// Frame-level decode errors are dropped, not surfaced.
				c.logger.Error(ctx, "Failed to decode audio delta", err)
				continue
			}
			if !c.emit(ctx, engine.Event{Type: engine.EventAudioDelta, Audio: pcm}) {
				return
			}

		case "input_audio_buffer.speech_started":
			if !c.emit(ctx, engine.Event{Type: engine.EventSpeechStarted}) {
				return
			}

		case "response.function_call_arguments.done":
			args := map[string]interface{}{}
			if ev.Arguments != "" {
				if err := json.Unmarshal([]byte(ev.Arguments), &args); err != nil {
					c.logger.Error(ctx, fmt.Sprintf("Malformed tool arguments for %s", ev.Name), err)
					continue
				}
			}
			if !c.emit(ctx, engine.Event{Type: engine.EventToolCall, Tool: engine.ToolCall{
				CallID:    ev.CallID,
				Name:      ev.Name,
				Arguments: args,
			}}) {
				return
			}

		default:
			// Unknown event types are ignored, not errors.
		}
	}
}

func (c *Client) writeJSON(v interface{}) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *Client) writeJSONDeadline(v interface{}, deadline time.Time) error {
	c.writeMu.Lock()
	c.conn.SetWriteDeadline(deadline)
	c.writeMu.Unlock()
	err := c.writeJSON(v)
	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Time{})
	c.writeMu.Unlock()
	return err
}

func translateTools(tools []engine.ToolDefinition) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(tools))
	for _, t := range tools {
		params := t.Parameters
		if params == nil {
			params = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
		}
		out = append(out, map[string]interface{}{
			"type":        "function",
			"name":        t.Name,
			"description": t.Description,
			"parameters":  params,
		})
	}
	return out
}
