// Command generate asks the configured AI provider for a vocabulary list and
// prints it as JSON, or synthesizes one pronunciation into a WAV file.
//
// Usage:
//
//	generate --topic=Animals
//	generate --say=apple --out=apple.wav
//
// Uses the same configuration as the server (API_KEY, AI_PROVIDER, ...).
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/myvocab-backend/internal/app"
	"github.com/heartmarshall/myvocab-backend/internal/config"
	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

func main() {
	topic := flag.String("topic", "", "topic label, English part is enough (default: first topic)")
	say := flag.String("say", "", "word to synthesize instead of generating a list")
	out := flag.String("out", "", "output WAV path for --say (default: <word>.wav)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	gw, err := app.NewGateway(cfg, nil, logger)
	if err != nil {
		logger.Error("create gateway", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *say != "" {
		path := *out
		if path == "" {
			path = *say + ".wav"
		}
		if err := synthesize(ctx, gw, *say, path); err != nil {
			logger.Error("synthesize failed", slog.String("word", *say), slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("pronunciation written", slog.String("path", path))
		return
	}

	t := domain.DefaultTopic()
	if *topic != "" {
		t, err = domain.ParseTopic(*topic)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unknown topic %q; known topics:\n", *topic)
			for _, known := range domain.Topics {
				fmt.Fprintf(os.Stderr, "  %s\n", known)
			}
			os.Exit(1)
		}
	}

	words, err := gw.GenerateVocabulary(ctx, t)
	if err != nil {
		logger.Error("generate vocabulary", slog.String("topic", t.String()), slog.String("error", err.Error()))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(words); err != nil {
		log.Fatalf("encode: %v", err)
	}
}

type synthesizer interface {
	PronunciationWAV(ctx context.Context, word string) ([]byte, error)
}

func synthesize(ctx context.Context, s synthesizer, word, path string) error {
	wav, err := s.PronunciationWAV(ctx, word)
	if err != nil {
		return err
	}
	return os.WriteFile(path, wav, 0o644)
}
