package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clinic-server/internal/store"
	"clinic-server/internal/voicecall/session"
	"clinic-server/internal/voicecall/twilio"

	"github.com/gin-gonic/gin"
)

// HandleVoiceAgent owns one phone call end to end: it upgrades the Twilio
// media websocket, builds a call session around a fresh engine link, and
// pumps caller audio until the call ends.
func (h *Handler) HandleVoiceAgent(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(ctx, "WebSocket upgrade failed", err)
		return
	}

	h.logger.Info(ctx, "Twilio WebSocket connection established for voice agent")

	stream := twilio.NewMediaStream(conn, h.logger)
	defer stream.Stop()

	if err := stream.AwaitStart(ctx); err != nil {
		h.logger.Error(ctx, "Twilio stream never started", err)
		return
	}

	link, err := h.newLink(ctx)
	if err != nil {
		h.logger.Error(ctx, "Failed to create engine link", err)
		return
	}

	customPrompt, err := h.store.GetCustomPrompt(ctx)
	if err != nil {
		// A failed prompt lookup degrades to the base prompt.
		h.logger.Error(ctx, "Failed to load custom prompt", err)
		customPrompt = ""
	}

	sess := session.New(stream.StreamSID(), stream.CallSID(), stream, link, h.dispatcher, h.logger, session.Options{
		Voice:            h.cfg.Voice,
		CustomPrompt:     customPrompt,
		HandshakeTimeout: h.cfg.HandshakeTimeout,
	})

	callLog, err := h.store.InsertCallLog(ctx, stream.CallSID(), stream.StreamSID(), h.cfg.EngineName)
	if err != nil {
		h.logger.Error(ctx, "Failed to record call start", err)
	}

	if err := sess.Start(ctx); err != nil {
		h.logger.Error(ctx, fmt.Sprintf("Failed to start session for call %s", stream.CallSID()), err)
		h.finishCallLog(callLog, sess, "engine_unavailable")
		return
	}

	h.registry.Add(sess)
	defer func() {
		h.registry.Remove(stream.StreamSID())
		sess.Stop()
		h.finishCallLog(callLog, sess, "completed")
	}()

	if err := stream.Run(ctx, sess.HandleInboundAudio); err != nil {
		if errors.Is(err, twilio.ErrDisconnected) {
			h.logger.Info(ctx, fmt.Sprintf("Call %s disconnected", stream.CallSID()))
			return
		}
		h.logger.Error(ctx, "Media stream loop failed", err)
	}
}

func (h *Handler) finishCallLog(callLog *store.CallLog, sess *session.Session, outcome string) {
	if callLog == nil {
		return
	}
	var verified sql.NullInt64
	if id, ok := sess.VerifiedPatientID(); ok {
		verified = sql.NullInt64{Int64: int64(id), Valid: true}
	}
	// The request context is gone by teardown time.
	ctx := context.Background()
	if err := h.store.FinishCallLog(ctx, callLog.ID, verified, outcome); err != nil {
		h.logger.Error(ctx, "Failed to record call end", err)
	}
}
