// Package audio decodes synthesized speech into playable sample buffers and
// owns the process-wide output context those buffers are played through.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Format describes interleaved PCM16 audio.
type Format struct {
	SampleRate int
	Channels   int
}

// SpeechFormat is what the TTS endpoint is asked to produce: 24 kHz mono.
var SpeechFormat = Format{SampleRate: 24000, Channels: 1}

func (f Format) validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("audio: sample rate must be > 0 (got %d)", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("audio: channels must be > 0 (got %d)", f.Channels)
	}
	return nil
}

// Buffer holds de-interleaved samples normalised to [-1, 1].
type Buffer struct {
	Format Format
	// Data[channel][frame]
	Data [][]float32
}

// Frames returns the number of sample frames per channel.
func (b *Buffer) Frames() int {
	if b == nil || len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.Format.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.Format.SampleRate)
}

var errOddLength = errors.New("audio: pcm16 payload has odd byte length")

// DecodePCM16 reinterprets little-endian signed 16-bit interleaved samples
// as a Buffer. Each sample s maps to s/32768.
// Trailing samples that do not fill a whole frame are dropped.
func DecodePCM16(data []byte, f Format) (*Buffer, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	if len(data)%2 != 0 {
		return nil, errOddLength
	}

	samples := len(data) / 2
	frames := samples / f.Channels

	buf := &Buffer{Format: f, Data: make([][]float32, f.Channels)}
	for ch := range buf.Data {
		buf.Data[ch] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < f.Channels; ch++ {
			off := (i*f.Channels + ch) * 2
			s := int16(binary.LittleEndian.Uint16(data[off:]))
			buf.Data[ch][i] = float32(s) / 32768.0
		}
	}
	return buf, nil
}

// EncodePCM16 is the inverse of DecodePCM16. Samples outside [-1, 1) are clamped.
func EncodePCM16(b *Buffer) []byte {
	frames := b.Frames()
	channels := len(b.Data)
	out := make([]byte, frames*channels*2)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			binary.LittleEndian.PutUint16(out[off:], uint16(toInt16(b.Data[ch][i])))
		}
	}
	return out
}

func toInt16(v float32) int16 {
	s := float64(v) * 32768.0
	switch {
	case s >= 32767:
		return 32767
	case s <= -32768:
		return -32768
	}
	return int16(s)
}
