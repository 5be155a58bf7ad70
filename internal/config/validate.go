package config

import (
	"fmt"
	"strings"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"

	maxWordCount = 20
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
// Missing API keys are deliberately not an error.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if err := c.AI.validate(); err != nil {
		return fmt.Errorf("ai: %w", err)
	}

	if c.Vocabulary.WordCount < 1 || c.Vocabulary.WordCount > maxWordCount {
		return fmt.Errorf("vocabulary.word_count must be in 1..%d (got %d)", maxWordCount, c.Vocabulary.WordCount)
	}

	if strings.TrimSpace(c.Audio.Voice) == "" {
		return fmt.Errorf("audio.voice is required")
	}
	if c.Audio.PlayTimeout <= 0 {
		return fmt.Errorf("audio.play_timeout must be > 0 (got %v)", c.Audio.PlayTimeout)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be > 0 (got %v)", c.Session.TTL)
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be > 0 (got %v)", c.Session.SweepInterval)
	}
	if c.Session.FetchTimeout <= 0 {
		return fmt.Errorf("session.fetch_timeout must be > 0 (got %v)", c.Session.FetchTimeout)
	}
	if c.Session.MaxSessions < 1 {
		return fmt.Errorf("session.max_sessions must be >= 1 (got %d)", c.Session.MaxSessions)
	}

	if c.Worker.PrewarmEnabled && c.Worker.Concurrency < 1 {
		return fmt.Errorf("worker.concurrency must be >= 1 (got %d)", c.Worker.Concurrency)
	}
	if c.Worker.PrewarmEnabled && c.Worker.TaskTimeout <= 0 {
		return fmt.Errorf("worker.task_timeout must be positive (got %s)", c.Worker.TaskTimeout)
	}
	if c.Worker.MaxRetry < 0 {
		return fmt.Errorf("worker.max_retry must be >= 0 (got %d)", c.Worker.MaxRetry)
	}

	if c.RateLimit.Enabled && c.RateLimit.PerMinute < 1 {
		return fmt.Errorf("rate_limit.per_minute must be >= 1 (got %d)", c.RateLimit.PerMinute)
	}

	return nil
}

func (a *AIConfig) validate() error {
	a.Provider = strings.ToLower(strings.TrimSpace(a.Provider))
	switch a.Provider {
	case ProviderGemini, ProviderAnthropic:
	default:
		return fmt.Errorf("provider must be %q or %q (got %q)", ProviderGemini, ProviderAnthropic, a.Provider)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", a.Timeout)
	}
	return nil
}
