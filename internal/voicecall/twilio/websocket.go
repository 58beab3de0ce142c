package twilio

import (
	"clinic-server/internal/observability"
	"clinic-server/internal/voice/audio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrDisconnected is returned when the media stream drops mid-call.
var ErrDisconnected = errors.New("telephony media stream disconnected")

// MediaEvent is one JSON frame on the Twilio media stream.
type MediaEvent struct {
	Event string `json:"event"`
	Start struct {
		StreamSid string `json:"streamSid"`
		CallSid   string `json:"callSid"`
	} `json:"start,omitempty"`
	Media struct {
		Payload string `json:"payload"`
	} `json:"media,omitempty"`
	Stop struct {
		StreamSid string `json:"streamSid"`
	} `json:"stop,omitempty"`
}

// MediaStream owns the persistent websocket to Twilio for one call. Outbound
// frames are pushed through SendMedia/Clear; inbound frames are delivered to
// the callback passed to Run. The call session is the only writer.
type MediaStream struct {
	conn       *websocket.Conn
	logger     *observability.Logger
	streamSid  string
	callSid    string
	writeMutex sync.Mutex
	stopOnce   sync.Once
}

func NewMediaStream(conn *websocket.Conn, logger *observability.Logger) *MediaStream {
	return &MediaStream{
		conn:   conn,
		logger: logger,
	}
}

// AwaitStart reads frames until Twilio's start event arrives and records the
// stream and call identifiers. Frames other than start are dropped here; no
// media is expected before start.
func (m *MediaStream) AwaitStart(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, msg, err := m.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("await start: %w", ErrDisconnected)
		}

		var event MediaEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			m.logger.Error(ctx, "Failed to parse Twilio event", err)
			continue
		}
		if event.Event == "start" {
			m.streamSid = event.Start.StreamSid
			m.callSid = event.Start.CallSid
			m.logger.Info(ctx, fmt.Sprintf("Twilio stream started: %s (call %s)", m.streamSid, m.callSid))
			return nil
		}
	}
}

// Run is the inbound read loop: media payloads are base64-decoded and handed
// to onMedia; stop returns nil; a transport drop returns ErrDisconnected.
func (m *MediaStream) Run(ctx context.Context, onMedia func(mulaw []byte)) error {
	for {
		select {
		case <-ctx.Done():
			m.logger.Info(ctx, "Media stream read stopped: context cancelled")
			return nil
		default:
		}

		_, msg, err := m.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				m.logger.Info(ctx, "Twilio websocket closed normally")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			m.logger.Error(ctx, "Twilio websocket read error", err)
			return ErrDisconnected
		}

		var event MediaEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			// Malformed frames are dropped, not propagated.
			m.logger.Error(ctx, "Failed to parse Twilio event", err)
			continue
		}

		switch event.Event {
		case "media":
			audioBytes, err := audio.Base64ToBytes(event.Media.Payload)
			if err != nil {
				m.logger.Error(ctx, "Failed to decode audio payload", err)
				continue
			}
			onMedia(audioBytes)

		case "stop":
			m.logger.Info(ctx, fmt.Sprintf("Twilio stream stopped: %s", event.Stop.StreamSid))
			return nil

		case "mark":
			// Playback markers are not used.

		default:
			m.logger.Debug(ctx, fmt.Sprintf("Unknown Twilio event: %s", event.Event))
		}
	}
}

// SendMedia sends one mu-law frame to the caller.
func (m *MediaStream) SendMedia(mulaw []byte) error {
	msg := map[string]interface{}{
		"event":     "media",
		"streamSid": m.streamSid,
		"media": map[string]string{
			"payload": audio.BytesToBase64(mulaw),
		},
	}
	return m.writeJSON(msg)
}

// Clear tells Twilio to discard buffered-but-unplayed outbound audio; sent on
// barge-in so the caller is never talked over.
func (m *MediaStream) Clear() error {
	return m.writeJSON(map[string]interface{}{
		"event":     "clear",
		"streamSid": m.streamSid,
	})
}

// Stop closes the websocket. Safe to call multiple times and from error paths.
func (m *MediaStream) Stop() {
	m.stopOnce.Do(func() {
		m.writeMutex.Lock()
		m.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		m.writeMutex.Unlock()
		m.conn.Close()
	})
}

func (m *MediaStream) StreamSID() string { return m.streamSid }
func (m *MediaStream) CallSID() string   { return m.callSid }

func (m *MediaStream) writeJSON(v interface{}) error {
	msgBytes, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.writeMutex.Lock()
	defer m.writeMutex.Unlock()
	if err := m.conn.WriteMessage(websocket.TextMessage, msgBytes); err != nil {
		return fmt.Errorf("write media frame: %w", ErrDisconnected)
	}
	return nil
}
