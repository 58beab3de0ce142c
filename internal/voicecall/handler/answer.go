package handler

import (
	"fmt"

	"clinic-server/internal/apierrors"

	"github.com/gin-gonic/gin"
	"github.com/twilio/twilio-go/twiml"
)

// HandleAnswerCall returns the TwiML that greets the caller and connects the
// call's media stream to the voice-agent websocket.
func (h *Handler) HandleAnswerCall(c *gin.Context) {
	wsURL := fmt.Sprintf("wss://%s/api/phone/voice-agent", h.cfg.PublicHost)
	h.logger.Info(c.Request.Context(), fmt.Sprintf("Answering call, stream URL: %s", wsURL))

	say := &twiml.VoiceSay{
		Message: "Hello! Connecting you to our clinic assistant. One moment please.",
	}
	stream := twiml.VoiceStream{
		Name: "voice-agent-stream",
		Url:  wsURL,
	}
	connect := twiml.VoiceConnect{
		InnerElements: []twiml.Element{stream},
	}

	twimlResult, err := twiml.Voice([]twiml.Element{say, connect})
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}
	c.Header("Content-Type", "text/xml")
	c.String(200, twimlResult)
}
