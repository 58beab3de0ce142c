package bootstrap

import (
	"clinic-server/internal/config"
	"clinic-server/internal/observability"
	"clinic-server/internal/store"
	"context"
	"fmt"

	"clinic-server/internal/clients/googleai"
	"clinic-server/internal/clients/openairealtime"
	"clinic-server/internal/clients/oscar"
	"clinic-server/internal/clients/twiliocontrol"
	"clinic-server/internal/voice/transcribe"
	"clinic-server/internal/voicecall/engine"
	voiceCallHandler "clinic-server/internal/voicecall/handler"
	"clinic-server/internal/voicecall/identity"
	"clinic-server/internal/voicecall/session"
	"clinic-server/internal/voicecall/tools"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Store  store.Store
	Logger *observability.Logger

	// Handlers
	VoiceCallHandler voiceCallHandler.Handler

	// Session registry, drained at shutdown
	Registry *session.Registry
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	// Initialize database store
	st, err := store.New(cfg.Database.ConnectionString(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	deps.Store = st

	// Clinic EMR client signs with OAuth1 service tokens held in the store.
	oscarClient := oscar.New(cfg.Oscar.BaseURL, cfg.Oscar.ConsumerKey, cfg.Oscar.ConsumerSecret, &st, cfg.Oscar.InsecureSkipVerify, logger)

	verifier := identity.NewVerifier(oscarClient, logger)
	control := twiliocontrol.New(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.TransferNumber, logger)
	dispatcher := tools.NewDispatcher(oscarClient, verifier, control, logger)

	newLink, err := linkFactory(cfg, logger)
	if err != nil {
		return nil, err
	}
	newTranscriber := func() (transcribe.Transcriber, error) {
		return transcribe.NewWhisperTranscriber(cfg.OpenAI.APIKey)
	}

	deps.Registry = session.NewRegistry()
	deps.VoiceCallHandler = voiceCallHandler.New(
		voiceCallHandler.Config{
			PublicHost:       cfg.Voice.PublicHost,
			EngineName:       cfg.Voice.Engine,
			Voice:            cfg.Voice.Name,
			HandshakeTimeout: cfg.Voice.HandshakeTimeout,
			SilenceThreshold: cfg.Voice.SilenceThreshold,
			SilenceDuration:  cfg.Voice.SilenceDuration,
		},
		newLink,
		newTranscriber,
		dispatcher,
		deps.Registry,
		st,
		logger,
	)

	return deps, nil
}

// linkFactory selects the realtime engine adapter from configuration. Each
// call gets its own link instance.
func linkFactory(cfg *config.Config, logger *observability.Logger) (voiceCallHandler.LinkFactory, error) {
	switch cfg.Voice.Engine {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("voice engine %q requires an OpenAI API key", cfg.Voice.Engine)
		}
		return func(ctx context.Context) (engine.Link, error) {
			return openairealtime.New(cfg.OpenAI.APIKey, cfg.OpenAI.RealtimeModel, logger), nil
		}, nil
	case "googleai":
		if cfg.GoogleAI.APIKey == "" {
			return nil, fmt.Errorf("voice engine %q requires a Google AI API key", cfg.Voice.Engine)
		}
		return func(ctx context.Context) (engine.Link, error) {
			return googleai.NewLiveClient(cfg.GoogleAI.APIKey, cfg.GoogleAI.LiveModel, logger)
		}, nil
	default:
		return nil, fmt.Errorf("unknown voice engine %q", cfg.Voice.Engine)
	}
}

// Cleanup releases resources held by dependencies
func (d *Dependencies) Cleanup() {
	d.Registry.StopAll()
	if db := d.Store.DB(); db != nil {
		db.Close()
	}
}
