package transcribe

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"clinic-server/internal/observability"

	"github.com/openai/openai-go"
	openaiOption "github.com/openai/openai-go/option"
)

// Transcriber converts one complete WAV phrase to text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// WhisperTranscriber sends phrases to the OpenAI Whisper API.
type WhisperTranscriber struct {
	apiKey string
}

func NewWhisperTranscriber(apiKey string) (*WhisperTranscriber, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key not set")
	}
	return &WhisperTranscriber{apiKey: apiKey}, nil
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	client := openai.NewClient(
		openaiOption.WithAPIKey(w.apiKey),
	)
	file := openai.File(bytes.NewReader(wav), "audio.wav", "audio/wav")
	resp, err := client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  file,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Config tunes phrase segmentation. A chunk quieter than SilenceThreshold dB
// counts toward the silence run; once the run reaches SilenceDuration with
// buffered speech, the buffer is flushed to the transcriber.
type Config struct {
	SampleRate       int
	SilenceThreshold float64
	SilenceDuration  time.Duration
}

// PhraseBuffer accumulates PCM16 audio and emits a transcript per spoken
// phrase, segmented by trailing silence.
type PhraseBuffer struct {
	cfg          Config
	transcriber  Transcriber
	onTranscript func(text string)
	logger       *observability.Logger

	buffer  []byte
	silence time.Duration
}

func NewPhraseBuffer(cfg Config, transcriber Transcriber, onTranscript func(text string), logger *observability.Logger) *PhraseBuffer {
	return &PhraseBuffer{
		cfg:          cfg,
		transcriber:  transcriber,
		onTranscript: onTranscript,
		logger:       logger,
	}
}

// ProcessChunk folds one PCM16 chunk into the current phrase.
func (p *PhraseBuffer) ProcessChunk(ctx context.Context, pcm []byte) {
	if len(pcm) < 2 {
		return
	}
	chunkLen := pcmDuration(len(pcm), p.cfg.SampleRate)

	if RMSLevel(pcm) > p.cfg.SilenceThreshold {
		p.buffer = append(p.buffer, pcm...)
		p.silence = 0
		return
	}

	p.silence += chunkLen
	if len(p.buffer) > 0 && p.silence >= p.cfg.SilenceDuration {
		p.flush(ctx)
	}
}

// Flush transcribes whatever audio remains, used at end of call.
func (p *PhraseBuffer) Flush(ctx context.Context) {
	if len(p.buffer) > 0 {
		p.flush(ctx)
	}
}

func (p *PhraseBuffer) flush(ctx context.Context) {
	wav := WAV(p.buffer, p.cfg.SampleRate)
	p.buffer = nil
	p.silence = 0

	start := time.Now()
	text, err := p.transcriber.Transcribe(ctx, wav)
	if err != nil {
		p.logger.Error(ctx, "Phrase transcription failed", err)
		return
	}
	p.logger.Info(ctx, fmt.Sprintf("Transcribed phrase in %s", time.Since(start).Round(time.Millisecond)))
	if text != "" {
		p.onTranscript(text)
	}
}

// RMSLevel returns the chunk's level in dBFS relative to full-scale PCM16.
// An all-zero buffer reports -96 dB rather than negative infinity.
func RMSLevel(pcm []byte) float64 {
	samples := len(pcm) / 2
	if samples == 0 {
		return -96
	}
	var sum float64
	for i := 0; i < samples; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
		sum += s * s
	}
	rms := math.Sqrt(sum / float64(samples))
	if rms < 1 {
		return -96
	}
	return 20 * math.Log10(rms/32768)
}

// WAV wraps raw mono PCM16 in a RIFF header.
func WAV(pcm []byte, sampleRate int) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

func pcmDuration(byteLen, sampleRate int) time.Duration {
	samples := byteLen / 2
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
