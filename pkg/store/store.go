// Package store persists the canonical options document to disk and watches
// it for external edits.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/kumarabd/gokit/logger"
	"github.com/kumarabd/validation-plane/tuner/pkg/statsopts"
)

// Config contains configuration for the options store
type Config struct {
	Path     string `json:"path" yaml:"path" default:"options.json"`          // Options document location
	MaxBytes int64  `json:"max_bytes" yaml:"max_bytes" default:"1048576"`     // Size cap for the document
	Watch    bool   `json:"watch" yaml:"watch" default:"false"`               // Reload on external edits
}

type Handler struct {
	config *Config
	log    *logger.Handler
}

// New validates the configured path and returns the store. Only .json
// documents are accepted; the persisted layout is JSON by contract.
func New(cfg *Config, log *logger.Handler) (*Handler, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if ext := strings.ToLower(filepath.Ext(cfg.Path)); ext != ".json" {
		return nil, fmt.Errorf("unsupported options file extension %q, want .json", ext)
	}
	return &Handler{
		config: cfg,
		log:    log,
	}, nil
}

// Path returns the configured document location.
func (h *Handler) Path() string {
	return h.config.Path
}

// Load reads and decodes the persisted document. A missing file returns
// (nil, nil): the caller falls back to the all-defaults object. The decode is
// strict, but range invariants are the caller's admission decision — the
// codec trusts previously serialized state.
func (h *Handler) Load() (*statsopts.Options, error) {
	info, err := os.Stat(h.config.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat options file: %w", err)
	}
	if info.Size() > h.config.MaxBytes {
		return nil, fmt.Errorf("options file %s is %d bytes, cap is %d", h.config.Path, info.Size(), h.config.MaxBytes)
	}

	data, err := os.ReadFile(h.config.Path)
	if err != nil {
		return nil, fmt.Errorf("read options file: %w", err)
	}

	opts, err := statsopts.FromJSON(string(data))
	if err != nil {
		return nil, fmt.Errorf("decode options file %s: %w", h.config.Path, err)
	}
	return opts, nil
}

// Save writes the document atomically: temp file in the same directory, then
// rename over the target.
func (h *Handler) Save(doc string) error {
	dir := filepath.Dir(h.config.Path)
	tmp, err := os.CreateTemp(dir, ".options-*.json")
	if err != nil {
		return fmt.Errorf("create temp options file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp options file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp options file: %w", err)
	}
	if err := os.Rename(tmpName, h.config.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace options file: %w", err)
	}
	return nil
}

// Watch reports external modifications of the options document until the
// context is cancelled. The watcher covers the parent directory so that
// atomic rename-into-place edits are seen too.
func (h *Handler) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(h.config.Path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(h.config.Path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				h.log.Info().Str("path", target).Str("op", event.Op.String()).Msg("Options file changed on disk")
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				h.log.Error().Err(err).Msg("Options file watcher error")
			}
		}
	}()
	return nil
}
