// Package clipcache stores decoded pronunciation audio (raw PCM16) so that a
// word is synthesized at most once per voice.
package clipcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Disk keeps one file per clip under Dir.
type Disk struct {
	dir string
}

// NewDisk creates the cache directory if needed.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("clipcache: create dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\.`) {
		return "", fmt.Errorf("clipcache: invalid key %q", key)
	}
	return filepath.Join(d.dir, key+".pcm"), nil
}

// Get returns the clip stored under key. found is false on a miss.
func (d *Disk) Get(_ context.Context, key string) ([]byte, bool, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("clipcache: read: %w", err)
	}
	return data, true, nil
}

// Set stores the clip. The file is written to a temp name and renamed so
// concurrent readers never see a partial clip.
func (d *Disk) Set(_ context.Context, key string, data []byte) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("clipcache: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("clipcache: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("clipcache: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("clipcache: rename: %w", err)
	}
	return nil
}
