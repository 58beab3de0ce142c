package googleai

import (
	"clinic-server/internal/observability"
	"clinic-server/internal/voice/audio"
	"clinic-server/internal/voicecall/engine"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	inputSampleRate  = 16000
	outputSampleRate = 24000
)

// LiveClient is the Gemini Live protocol adapter for engine.Link. It speaks
// the same four operations as the OpenAI adapter; call-handling logic does
// not know which engine is behind the link.
type LiveClient struct {
	client *genai.Client
	model  string
	logger *observability.Logger

	session *genai.Session
	events  chan engine.Event
}

// NewLiveClient creates a Gemini Live adapter. One LiveClient serves one call.
func NewLiveClient(apiKey, model string, logger *observability.Logger) (*LiveClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Google AI client: %w", err)
	}

	return &LiveClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (g *LiveClient) InputSampleRate() int  { return inputSampleRate }
func (g *LiveClient) OutputSampleRate() int { return outputSampleRate }

// Start connects to the Live API with the session configuration and sends the
// priming silence frame.
func (g *LiveClient) Start(ctx context.Context, cfg engine.SessionConfig) (<-chan engine.Event, error) {
	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	handshakeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	voice := cfg.Voice
	if voice == "" {
		voice = "Aoede"
	}
	config := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.Modality("AUDIO")},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: cfg.Instructions}},
		},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
		// Automatic voice activity detection drives barge-in on this engine.
		RealtimeInputConfig: &genai.RealtimeInputConfig{
			AutomaticActivityDetection: &genai.AutomaticActivityDetection{Disabled: false},
		},
		Tools: translateTools(cfg.Tools),
	}

	session, err := g.client.Live.Connect(handshakeCtx, g.model, config)
	if err != nil {
		if handshakeCtx.Err() != nil {
			return nil, fmt.Errorf("connect to Live API: %w", engine.ErrHandshakeTimeout)
		}
		return nil, fmt.Errorf("connect to Live API: %w", err)
	}
	g.session = session

	if err := g.SendAudio(ctx, audio.Silence(100*time.Millisecond, inputSampleRate)); err != nil {
		session.Close()
		return nil, fmt.Errorf("send priming frame: %w", err)
	}

	g.events = make(chan engine.Event, 64)
	go g.receiveLoop(ctx)
	return g.events, nil
}

// SendAudio forwards caller PCM16 at 16 kHz to the model.
func (g *LiveClient) SendAudio(ctx context.Context, pcm []byte) error {
	return g.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{
			Data:     pcm,
			MIMEType: fmt.Sprintf("audio/pcm;rate=%d", inputSampleRate),
		},
	})
}

// Cancel is a no-op: the Live API cancels its own response on server-side VAD
// and reports it via an Interrupted message, which the adapter surfaces as
// EventSpeechStarted.
func (g *LiveClient) Cancel(ctx context.Context) error {
	return nil
}

// SendToolResult returns a tool call's output; the model resumes speaking on
// its own after a tool response.
func (g *LiveClient) SendToolResult(ctx context.Context, callID string, resultJSON string) error {
	response := map[string]interface{}{}
	if err := json.Unmarshal([]byte(resultJSON), &response); err != nil {
		response = map[string]interface{}{"output": resultJSON}
	}
	return g.session.SendToolResponse(genai.LiveToolResponseInput{
		FunctionResponses: []*genai.FunctionResponse{
			{ID: callID, Response: response},
		},
	})
}

func (g *LiveClient) Close() error {
	if g.session != nil {
		g.session.Close()
	}
	return nil
}

// emit delivers one event unless the session context is gone. Without the
// context clause a consumer that stopped reading would park this goroutine on
// a full channel forever.
func (g *LiveClient) emit(ctx context.Context, event engine.Event) bool {
	select {
	case g.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func (g *LiveClient) receiveLoop(ctx context.Context) {
	defer close(g.events)

	for {
		msg, err := g.session.Receive()
		if err != nil {
			if ctx.Err() != nil || strings.Contains(err.Error(), "closed") {
				g.emit(ctx, engine.Event{Type: engine.EventClosed})
			} else {
				g.logger.Error(ctx, "Live API receive error", err)
				g.emit(ctx, engine.Event{Type: engine.EventClosed, Err: engine.ErrDisconnected})
			}
			return
		}

		if msg.ServerContent != nil {
			if msg.ServerContent.Interrupted {
				if !g.emit(ctx, engine.Event{Type: engine.EventSpeechStarted}) {
					return
				}
			}
			if msg.ServerContent.ModelTurn != nil {
				for _, part := range msg.ServerContent.ModelTurn.Parts {
					if part.InlineData != nil && len(part.InlineData.Data) > 0 {
						if !g.emit(ctx, engine.Event{Type: engine.EventAudioDelta, Audio: part.InlineData.Data}) {
							return
						}
					}
				}
			}
		}

		if msg.ToolCall != nil {
			for _, call := range msg.ToolCall.FunctionCalls {
				if !g.emit(ctx, engine.Event{Type: engine.EventToolCall, Tool: engine.ToolCall{
					CallID:    call.ID,
					Name:      call.Name,
					Arguments: call.Args,
				}}) {
					return
				}
			}
		}
	}
}

func translateTools(tools []engine.ToolDefinition) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  translateSchema(t.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// translateSchema converts a JSON-schema object map into the genai schema type.
func translateSchema(schema map[string]interface{}) *genai.Schema {
	if schema == nil {
		return &genai.Schema{Type: genai.TypeObject}
	}
	out := &genai.Schema{Type: schemaType(schema["type"])}
	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if prop, ok := raw.(map[string]interface{}); ok {
				out.Properties[name] = translateSchema(prop)
			}
		}
	}
	if required, ok := schema["required"].([]string); ok {
		out.Required = required
	}
	return out
}

func schemaType(v interface{}) genai.Type {
	s, _ := v.(string)
	switch s {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}
