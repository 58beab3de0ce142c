package handler

import (
	"strconv"
	"strings"

	"clinic-server/internal/voice/transcribe"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleRecording serves the dictation websocket: binary PCM16 frames in,
// JSON transcript messages out. Phrases are segmented by trailing silence and
// transcribed in batches; any remainder is flushed when the client closes.
func (h *Handler) HandleRecording(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(ctx, "WebSocket upgrade failed", err)
		return
	}
	defer conn.Close()

	sampleRate := 16000
	if raw := c.Query("rate"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			sampleRate = parsed
		}
	}

	transcriber, err := h.newTranscriber()
	if err != nil {
		h.logger.Error(ctx, "Failed to create transcriber", err)
		return
	}

	var phrases []string
	send := func(text string) {
		phrases = append(phrases, text)
		if err := conn.WriteJSON(gin.H{"text": text, "partial": false}); err != nil {
			h.logger.Error(ctx, "Failed to send transcript", err)
		}
	}

	buffer := transcribe.NewPhraseBuffer(transcribe.Config{
		SampleRate:       sampleRate,
		SilenceThreshold: h.cfg.SilenceThreshold,
		SilenceDuration:  h.cfg.SilenceDuration,
	}, transcriber, send, h.logger)

	h.logger.Info(ctx, "Recording websocket established")

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.InfoWithError(ctx, "Recording websocket closed", err)
			}
			break
		}
		if msgType == websocket.BinaryMessage {
			buffer.ProcessChunk(ctx, msg)
			continue
		}
		if msgType == websocket.TextMessage && string(msg) == "end" {
			// Flush the remainder, then answer with the full transcript so
			// the client can tell the dictation is done.
			buffer.Flush(ctx)
			if err := conn.WriteJSON(gin.H{"type": "complete", "text": strings.Join(phrases, " ")}); err != nil {
				h.logger.Error(ctx, "Failed to send final transcript", err)
			}
			return
		}
	}

	buffer.Flush(ctx)
}
