package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

// startFetchLocked raises the loading flag, clears the error and requests a
// word list for the current topic in the background.
func (c *Controller) startFetchLocked() {
	c.seq++
	seq, topic := c.seq, c.topic

	c.loading = true
	c.errMsg = ""
	if c.idle == nil {
		c.idle = make(chan struct{})
	}

	c.fetches.Add(1)
	go c.fetch(seq, topic)
}

func (c *Controller) fetch(seq uint64, topic domain.Topic) {
	defer c.fetches.Done()

	ctx, cancel := context.WithTimeout(c.ctx, c.fetchTimeout)
	defer cancel()

	words, err := c.gen.GenerateVocabulary(ctx, topic)
	if err == nil && len(words) == 0 {
		err = domain.ErrEmptyResult
	}

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.log.Debug("stale word list discarded", slog.Uint64("seq", seq), slog.String("topic", string(topic)))
		return
	}

	c.loading = false
	if err != nil {
		// Previously loaded words stay visible behind the error.
		c.errMsg = GenericErrorMessage
	} else {
		c.words = words
		if _, ok := c.view.(domain.LearnView); ok {
			c.view = domain.LearnView{Topic: c.topic, Words: words}
		}
	}
	if c.idle != nil {
		close(c.idle)
		c.idle = nil
	}
	c.mu.Unlock()

	if err != nil {
		level := slog.LevelError
		if errors.Is(err, domain.ErrEmptyResult) {
			level = slog.LevelWarn
		}
		c.log.Log(ctx, level, "word list fetch failed", slog.String("topic", string(topic)), slog.String("error", err.Error()))
		return
	}

	c.log.Info("word list loaded", slog.String("topic", string(topic)), slog.Int("words", len(words)))
	if c.prewarm != nil {
		c.prewarm.Prewarm(c.ctx, words)
	}
}
