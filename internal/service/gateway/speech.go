package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/myvocab-backend/internal/audio"
	"github.com/heartmarshall/myvocab-backend/internal/domain"
	"github.com/heartmarshall/myvocab-backend/internal/provider"
)

// clipKey identifies a clip by voice and spoken text.
func clipKey(voice, text string) string {
	h := sha256.Sum256([]byte(voice + ":" + text))
	return hex.EncodeToString(h[:16])
}

// Synthesize returns the decoded pronunciation of word (PCM16, 24 kHz, mono).
// Failures wrap domain.ErrPlaybackFailed.
func (s *Service) Synthesize(ctx context.Context, word string) (*audio.Buffer, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, domain.NewValidationError("word", "required")
	}

	key := clipKey(s.audio.Voice, domain.NormalizeText(word))
	if pcm, ok := s.cachedClip(ctx, key); ok {
		return decodeClip(pcm)
	}

	res, err := s.speech.SynthesizeSpeech(ctx, provider.SpeechRequest{Text: word, Voice: s.audio.Voice})
	if err != nil {
		return nil, fmt.Errorf("%w: synthesize %q: %w", domain.ErrPlaybackFailed, word, err)
	}
	if len(res.Data) == 0 {
		return nil, fmt.Errorf("%w: no audio data received for %q", domain.ErrPlaybackFailed, word)
	}

	pcm := res.Data
	buf, err := decodeClip(pcm)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, pcm); err != nil {
			s.log.WarnContext(ctx, "clip cache write failed", slog.String("word", word), slog.String("error", err.Error()))
		}
	}

	return buf, nil
}

func (s *Service) cachedClip(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	pcm, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WarnContext(ctx, "clip cache read failed", slog.String("error", err.Error()))
		return nil, false
	}
	return pcm, ok
}

func decodeClip(pcm []byte) (*audio.Buffer, error) {
	buf, err := audio.DecodePCM16(pcm, audio.SpeechFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPlaybackFailed, err)
	}
	return buf, nil
}

// PronunciationWAV returns the pronunciation of word as a WAV file.
func (s *Service) PronunciationWAV(ctx context.Context, word string) ([]byte, error) {
	buf, err := s.Synthesize(ctx, word)
	if err != nil {
		return nil, err
	}
	return audio.EncodeWAV(buf), nil
}

// Warm synthesizes word so that later plays hit the clip cache.
func (s *Service) Warm(ctx context.Context, word string) error {
	_, err := s.Synthesize(ctx, word)
	return err
}

// Play speaks word through the shared audio output without blocking the
// caller. It runs on a context detached from ctx and bounded by the play
// timeout. Errors are logged, never returned. Plays are not serialised, so
// rapid calls overlap.
func (s *Service) Play(ctx context.Context, word string) {
	s.plays.Add(1)
	go func() {
		defer s.plays.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.audio.PlayTimeout)
		defer cancel()

		if err := s.play(ctx, word); err != nil {
			s.log.ErrorContext(ctx, "pronunciation playback failed",
				slog.String("word", word),
				slog.String("error", err.Error()),
			)
		}
	}()
}

func (s *Service) play(ctx context.Context, word string) error {
	out := s.output()
	if out.State() == audio.StateSuspended {
		if err := out.Resume(); err != nil {
			return fmt.Errorf("%w: resume output: %w", domain.ErrPlaybackFailed, err)
		}
	}

	buf, err := s.Synthesize(ctx, word)
	if err != nil {
		return err
	}

	clip, err := out.Start(buf, word)
	if err != nil {
		return fmt.Errorf("%w: start source: %w", domain.ErrPlaybackFailed, err)
	}

	s.log.DebugContext(ctx, "pronunciation started",
		slog.String("word", word),
		slog.String("clip_id", clip.ID.String()),
		slog.Duration("duration", buf.Duration()),
	)
	return nil
}
