package gateway

import (
	"context"
	"encoding/binary"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/myvocab-backend/internal/audio"
	"github.com/heartmarshall/myvocab-backend/internal/domain"
	"github.com/heartmarshall/myvocab-backend/internal/provider"
)

func pcmPayload(samples ...int16) []byte {
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	return raw
}

func speechReturning(data []byte) *speechSynthesizerMock {
	return &speechSynthesizerMock{
		SynthesizeSpeechFunc: func(_ context.Context, _ provider.SpeechRequest) (provider.SpeechResult, error) {
			return provider.SpeechResult{Data: data, MimeType: "audio/L16;codec=pcm;rate=24000"}, nil
		},
	}
}

func TestSynthesize_DecodesPCM(t *testing.T) {
	t.Parallel()

	speech := speechReturning(pcmPayload(0, 16384, -32768, 32767))
	svc := newTestService(nil, speech, nil)

	buf, err := svc.Synthesize(context.Background(), "apple")
	require.NoError(t, err)

	assert.Equal(t, audio.SpeechFormat, buf.Format)
	require.Len(t, buf.Data, 1)
	assert.Equal(t, []float32{0, 0.5, -1, 32767.0 / 32768.0}, buf.Data[0])

	calls := speech.SynthesizeSpeechCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, provider.SpeechRequest{Text: "apple", Voice: "Kore"}, calls[0])
}

func TestSynthesize_EmptyWord(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil, &speechSynthesizerMock{}, nil)

	_, err := svc.Synthesize(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSynthesize_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		speech *speechSynthesizerMock
	}{
		{name: "request error", speech: &speechSynthesizerMock{
			SynthesizeSpeechFunc: func(_ context.Context, _ provider.SpeechRequest) (provider.SpeechResult, error) {
				return provider.SpeechResult{}, errors.New("boom")
			},
		}},
		{name: "no audio", speech: speechReturning(nil)},
		{name: "odd length", speech: speechReturning([]byte{1, 2, 3})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(nil, tt.speech, nil)
			buf, err := svc.Synthesize(context.Background(), "apple")
			assert.Nil(t, buf)
			assert.ErrorIs(t, err, domain.ErrPlaybackFailed)
		})
	}
}

func TestSynthesize_UsesCache(t *testing.T) {
	t.Parallel()

	cache := &clipCacheMock{}
	speech := speechReturning(pcmPayload(1, 2, 3))
	svc := newTestService(nil, speech, cache)

	first, err := svc.Synthesize(context.Background(), "Apple")
	require.NoError(t, err)
	second, err := svc.Synthesize(context.Background(), "apple ")
	require.NoError(t, err)

	assert.Len(t, speech.SynthesizeSpeechCalls(), 1)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, first.Data, second.Data)
}

func TestSynthesize_CacheErrorsAreNotFatal(t *testing.T) {
	t.Parallel()

	cache := &clipCacheMock{GetErr: errors.New("disk gone"), SetErr: errors.New("disk gone")}
	svc := newTestService(nil, speechReturning(pcmPayload(1, 2)), cache)

	buf, err := svc.Synthesize(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, 2, buf.Frames())
}

func TestClipKey_DependsOnVoice(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, clipKey("Kore", "apple"), clipKey("Puck", "apple"))
	assert.Equal(t, clipKey("Kore", "apple"), clipKey("Kore", "apple"))
	assert.Len(t, clipKey("Kore", "apple"), 32)
}

func TestPronunciationWAV(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil, speechReturning(pcmPayload(1, 2, 3)), nil)

	wav, err := svc.PronunciationWAV(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(wav[:4]))
	assert.Len(t, wav, 44+6)
}

func TestPlay_ResumesAndStartsClip(t *testing.T) {
	t.Parallel()

	out := audio.NewContext()
	clips, unsub := out.Subscribe(4)
	defer unsub()

	svc := newTestService(nil, speechReturning(pcmPayload(1, 2, 3)), nil)
	svc.output = func() *audio.Context { return out }

	svc.Play(context.Background(), "apple")
	svc.Wait()

	assert.Equal(t, audio.StateRunning, out.State())
	select {
	case clip := <-clips:
		assert.Equal(t, "apple", clip.Label)
		assert.Equal(t, 3, clip.Buffer.Frames())
	case <-time.After(time.Second):
		t.Fatal("no clip delivered")
	}
}

func TestPlay_SurvivesCallerCancellation(t *testing.T) {
	t.Parallel()

	out := audio.NewContext()
	clips, unsub := out.Subscribe(1)
	defer unsub()

	release := make(chan struct{})
	speech := &speechSynthesizerMock{
		SynthesizeSpeechFunc: func(ctx context.Context, _ provider.SpeechRequest) (provider.SpeechResult, error) {
			<-release
			if err := ctx.Err(); err != nil {
				return provider.SpeechResult{}, err
			}
			return provider.SpeechResult{Data: pcmPayload(5)}, nil
		},
	}
	svc := newTestService(nil, speech, nil)
	svc.output = func() *audio.Context { return out }

	ctx, cancel := context.WithCancel(context.Background())
	svc.Play(ctx, "apple")
	cancel()
	close(release)
	svc.Wait()

	select {
	case clip := <-clips:
		assert.Equal(t, "apple", clip.Label)
	default:
		t.Fatal("playback was cancelled with the caller")
	}
}

func TestPlay_OverlappingPlaysAreNotSerialised(t *testing.T) {
	t.Parallel()

	out := audio.NewContext()
	clips, unsub := out.Subscribe(8)
	defer unsub()

	var inFlight, maxInFlight atomic.Int32
	gate := make(chan struct{})
	speech := &speechSynthesizerMock{
		SynthesizeSpeechFunc: func(_ context.Context, _ provider.SpeechRequest) (provider.SpeechResult, error) {
			n := inFlight.Add(1)
			for {
				m := maxInFlight.Load()
				if n <= m || maxInFlight.CompareAndSwap(m, n) {
					break
				}
			}
			<-gate
			inFlight.Add(-1)
			return provider.SpeechResult{Data: pcmPayload(1)}, nil
		},
	}
	svc := newTestService(nil, speech, nil)
	svc.output = func() *audio.Context { return out }

	svc.Play(context.Background(), "cat")
	svc.Play(context.Background(), "dog")

	require.Eventually(t, func() bool { return inFlight.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(gate)
	svc.Wait()

	assert.Equal(t, int32(2), maxInFlight.Load())
	labels := map[string]bool{(<-clips).Label: true, (<-clips).Label: true}
	assert.Equal(t, map[string]bool{"cat": true, "dog": true}, labels)
}

func TestPlay_FailureIsSwallowed(t *testing.T) {
	t.Parallel()

	out := audio.NewContext()
	clips, unsub := out.Subscribe(1)
	defer unsub()

	svc := newTestService(nil, speechReturning(nil), nil)
	svc.output = func() *audio.Context { return out }

	assert.NotPanics(t, func() {
		svc.Play(context.Background(), "apple")
		svc.Wait()
	})

	select {
	case <-clips:
		t.Fatal("no clip expected")
	default:
	}
	started, _ := out.Stats()
	assert.Zero(t, started)
}
