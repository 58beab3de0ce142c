package audio

import (
	"encoding/base64"
	"time"
)

// Package audio converts between the telephony leg (8 kHz 8-bit mu-law) and the
// realtime engine leg (16-bit linear PCM at the engine's sample rates).

// TelephonyRate is the sample rate of the Twilio media stream.
const TelephonyRate = 8000

const (
	mulawBias = 0x84
	mulawClip = 32635
)

// Codec is a bidirectional converter bound to one engine's audio formats.
// It keeps resampler state, so one Codec belongs to exactly one call.
type Codec struct {
	up   *Resampler // telephony rate -> engine input rate
	down *Resampler // engine output rate -> telephony rate
}

// NewCodec creates a codec for an engine that consumes PCM at inRate and
// produces PCM at outRate.
func NewCodec(inRate, outRate int) *Codec {
	return &Codec{
		up:   NewResampler(TelephonyRate, inRate),
		down: NewResampler(outRate, TelephonyRate),
	}
}

// ToEngineFormat converts a mu-law telephony frame to PCM16 at the engine's
// input rate.
func (c *Codec) ToEngineFormat(mulaw []byte) []byte {
	return c.up.Process(DecodeMuLaw(mulaw))
}

// ToTelephonyFormat converts an engine PCM16 frame to 8 kHz mu-law.
func (c *Codec) ToTelephonyFormat(pcm []byte) []byte {
	return EncodeMuLaw(c.down.Process(pcm))
}

// DecodeMuLaw expands 8-bit mu-law bytes to little-endian 16-bit PCM.
func DecodeMuLaw(mulaw []byte) []byte {
	pcm := make([]byte, len(mulaw)*2)
	for i, b := range mulaw {
		sample := mulawToLinear(b)
		pcm[i*2] = byte(sample)
		pcm[i*2+1] = byte(sample >> 8)
	}
	return pcm
}

// EncodeMuLaw compands little-endian 16-bit PCM to 8-bit mu-law. A trailing
// odd byte is ignored.
func EncodeMuLaw(pcm []byte) []byte {
	mulaw := make([]byte, len(pcm)/2)
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(pcm[i]) | int16(pcm[i+1])<<8
		mulaw[i/2] = linearToMulaw(sample)
	}
	return mulaw
}

// Silence returns an all-zero PCM16 buffer of the given duration. A 100ms
// frame at the engine's input rate primes it into speaking first.
func Silence(d time.Duration, rate int) []byte {
	samples := int(d.Seconds() * float64(rate))
	return make([]byte, samples*2)
}

func Base64ToBytes(base64String string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64String)
}

func BytesToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func mulawToLinear(mulawByte byte) int16 {
	// Invert all bits
	mulawByte = ^mulawByte

	sign := mulawByte & 0x80
	exponent := (mulawByte >> 4) & 0x07
	mantissa := mulawByte & 0x0F

	sample := (int32(mantissa)<<3 | mulawBias) << exponent
	sample -= mulawBias

	if sign != 0 {
		return int16(-sample)
	}
	return int16(sample)
}

func linearToMulaw(sample int16) byte {
	sign := byte(0)
	s := int32(sample)
	if s < 0 {
		sign = 0x80
		s = -s
	}
	if s > mulawClip {
		s = mulawClip
	}
	s += mulawBias

	exponent := byte(7)
	for mask := int32(0x4000); s&mask == 0 && exponent > 0; mask >>= 1 {
		exponent--
	}
	mantissa := byte((s >> (uint(exponent) + 3)) & 0x0F)

	return ^(sign | exponent<<4 | mantissa)
}

// Resampler converts PCM16 between two fixed sample rates by linear
// interpolation. The fractional read position and the last input sample are
// carried across calls, so samples falling on a frame boundary are emitted on
// the next call instead of being dropped.
type Resampler struct {
	from   int
	to     int
	pos    float64 // read position relative to the carried sample
	last   int16
	primed bool
}

func NewResampler(from, to int) *Resampler {
	return &Resampler{from: from, to: to}
}

// Process resamples one frame. Output positions advance by from/to input
// samples per output sample; at equal rates the conversion is exact.
func (r *Resampler) Process(pcm []byte) []byte {
	n := len(pcm) / 2
	if n == 0 {
		return nil
	}

	samples := make([]int16, 0, n+1)
	if r.primed {
		samples = append(samples, r.last)
	}
	for i := 0; i < n; i++ {
		samples = append(samples, int16(pcm[i*2])|int16(pcm[i*2+1])<<8)
	}

	step := float64(r.from) / float64(r.to)
	out := make([]byte, 0, (n*r.to/r.from+2)*2)

	pos := r.pos
	limit := float64(len(samples) - 1)
	for pos <= limit {
		i := int(pos)
		frac := pos - float64(i)
		var sample int16
		if i+1 < len(samples) {
			delta := float64(samples[i+1]) - float64(samples[i])
			sample = int16(float64(samples[i]) + frac*delta)
		} else {
			sample = samples[i]
		}
		out = append(out, byte(sample), byte(sample>>8))
		pos += step
	}

	r.pos = pos - limit
	r.last = samples[len(samples)-1]
	r.primed = true

	return out
}
