// Package service owns the current options object: it admits replacement
// documents, persists them, records history, and fans accepted revisions out
// to the workers.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kumarabd/gokit/logger"
	"github.com/kumarabd/validation-plane/tuner/internal/metrics"
	"github.com/kumarabd/validation-plane/tuner/pkg/cache"
	"github.com/kumarabd/validation-plane/tuner/pkg/notifier"
	"github.com/kumarabd/validation-plane/tuner/pkg/statsopts"
	"github.com/kumarabd/validation-plane/tuner/pkg/store"
)

// ErrInvalidOptions wraps an admission failure: the payload parsed but the
// resulting object breaks a range invariant. The wrapped error carries the
// contractual message.
var ErrInvalidOptions = errors.New("invalid options document")

type Handler struct {
	log      *logger.Handler
	metric   *metrics.Handler
	store    *store.Handler
	history  *cache.Handler
	notifier *notifier.Notifier

	mu       sync.RWMutex
	current  *statsopts.Options
	document string
	revision string
}

// New loads the persisted document (or the all-defaults object when none
// exists) and returns the service. A corrupt or invalid persisted document is
// a boot failure: the operator hand-edited it, silently ignoring it would
// hide that.
func New(l *logger.Handler, m *metrics.Handler, st *store.Handler, hist *cache.Handler, not *notifier.Notifier) (*Handler, error) {
	h := &Handler{
		log:      l,
		metric:   m,
		store:    st,
		history:  hist,
		notifier: not,
	}

	opts, err := st.Load()
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts, err = statsopts.New(statsopts.Params{})
		if err != nil {
			return nil, err
		}
		l.Info().Str("path", st.Path()).Msg("No persisted options, starting from defaults")
	} else {
		if err := opts.Validate(); err != nil {
			return nil, fmt.Errorf("persisted options at %s: %w", st.Path(), err)
		}
		l.Info().Str("path", st.Path()).Msg("Loaded persisted options")
	}

	doc, err := opts.ToJSON()
	if err != nil {
		return nil, err
	}

	h.current = opts
	h.document = doc
	h.revision = uuid.NewString()
	return h, nil
}

// Current returns the canonical document and its revision id.
func (h *Handler) Current() (string, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.document, h.revision
}

// Options returns the current validated object.
func (h *Handler) Options() *statsopts.Options {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Sampling returns the sampling-policy view of the current object.
func (h *Handler) Sampling() statsopts.Sampling {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Sampling()
}

// History returns up to limit recently accepted revisions, newest first.
func (h *Handler) History(limit int) []cache.Revision {
	return h.history.Recent(limit)
}

// Replace admits a new options document: strict decode, re-validation, swap,
// persist, record, distribute. The codec trusts persisted layout by contract,
// so validation here is the admission policy for untrusted payloads. Returns
// the new revision id.
func (h *Handler) Replace(ctx context.Context, payload, source string) (string, error) {
	opts, err := statsopts.FromJSON(payload)
	if err != nil {
		h.metric.IncOptionsReplacementsTotal("rejected", source)
		return "", err
	}
	if err := opts.Validate(); err != nil {
		h.metric.IncOptionsReplacementsTotal("rejected", source)
		h.recordValidationFailure(err)
		return "", fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	doc, err := opts.ToJSON()
	if err != nil {
		h.metric.IncOptionsReplacementsTotal("rejected", source)
		return "", err
	}

	revision := uuid.NewString()
	h.mu.Lock()
	h.current = opts
	h.document = doc
	h.revision = revision
	h.mu.Unlock()

	if err := h.store.Save(doc); err != nil {
		// The in-memory object already moved forward; surface the
		// persistence failure without rolling back.
		h.log.Error().Err(err).Str("revision", revision).Msg("Failed to persist accepted options")
	}

	h.history.Put(cache.Revision{
		ID:         revision,
		Source:     source,
		ReceivedAt: time.Now().UTC(),
		Options:    doc,
	})
	if h.notifier != nil {
		h.notifier.Publish(notifier.Revision{ID: revision, Document: doc})
	}

	h.metric.IncOptionsReplacementsTotal("accepted", source)
	h.log.Info().Str("revision", revision).Str("source", source).Msg("Adopted new options revision")
	return revision, nil
}

// Check runs full construction validation over the given parameters and
// returns the canonical document the object would serialize to. Nothing is
// adopted.
func (h *Handler) Check(ctx context.Context, params statsopts.Params) (string, error) {
	opts, err := statsopts.New(params)
	if err != nil {
		h.metric.IncOptionsValidationsTotal("fail")
		h.recordValidationFailure(err)
		return "", err
	}
	h.metric.IncOptionsValidationsTotal("ok")
	return opts.ToJSON()
}

// Reload re-reads the persisted document after an external edit. An invalid
// document keeps the current object in place and reports the rejection.
func (h *Handler) Reload(ctx context.Context) error {
	opts, err := h.store.Load()
	if err != nil {
		h.metric.IncOptionsReplacementsTotal("rejected", "file_watch")
		return err
	}
	if opts == nil {
		h.metric.IncOptionsReplacementsTotal("rejected", "file_watch")
		return fmt.Errorf("options file %s disappeared", h.store.Path())
	}
	if err := opts.Validate(); err != nil {
		h.metric.IncOptionsReplacementsTotal("rejected", "file_watch")
		h.recordValidationFailure(err)
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	doc, err := opts.ToJSON()
	if err != nil {
		return err
	}

	h.mu.Lock()
	if doc == h.document {
		// Our own Save landing on disk, not an external edit.
		h.mu.Unlock()
		return nil
	}
	revision := uuid.NewString()
	h.current = opts
	h.document = doc
	h.revision = revision
	h.mu.Unlock()

	h.history.Put(cache.Revision{
		ID:         revision,
		Source:     "file_watch",
		ReceivedAt: time.Now().UTC(),
		Options:    doc,
	})
	if h.notifier != nil {
		h.notifier.Publish(notifier.Revision{ID: revision, Document: doc})
	}

	h.metric.IncOptionsReplacementsTotal("accepted", "file_watch")
	h.log.Info().Str("revision", revision).Msg("Adopted externally edited options")
	return nil
}

func (h *Handler) recordValidationFailure(err error) {
	var typeErr *statsopts.TypeError
	var valueErr *statsopts.ValueError
	switch {
	case errors.As(err, &typeErr):
		h.metric.IncOptionsValidationFailures(typeErr.Field, "type")
	case errors.As(err, &valueErr):
		h.metric.IncOptionsValidationFailures(valueErr.Field, "value")
	}
}
