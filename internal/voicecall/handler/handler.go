package handler

import (
	"clinic-server/internal/observability"
	"clinic-server/internal/store"
	"clinic-server/internal/voice/transcribe"
	"clinic-server/internal/voicecall/engine"
	"clinic-server/internal/voicecall/session"
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// LinkFactory builds a fresh engine link for one call; each session owns
// exactly one link.
type LinkFactory func(ctx context.Context) (engine.Link, error)

// TranscriberFactory builds the batch transcriber for a dictation websocket.
type TranscriberFactory func() (transcribe.Transcriber, error)

type Config struct {
	PublicHost       string
	EngineName       string
	Voice            string
	HandshakeTimeout time.Duration
	SilenceThreshold float64
	SilenceDuration  time.Duration
}

type Handler struct {
	cfg            Config
	newLink        LinkFactory
	newTranscriber TranscriberFactory
	dispatcher     session.ToolRunner
	registry       *session.Registry
	store          store.Store
	logger         *observability.Logger
}

func New(cfg Config, newLink LinkFactory, newTranscriber TranscriberFactory, dispatcher session.ToolRunner, registry *session.Registry, st store.Store, logger *observability.Logger) Handler {
	return Handler{
		cfg:            cfg,
		newLink:        newLink,
		newTranscriber: newTranscriber,
		dispatcher:     dispatcher,
		registry:       registry,
		store:          st,
		logger:         logger,
	}
}

// upgrader is a shared WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Twilio media streams carry no browser origin.
		return true
	},
}
