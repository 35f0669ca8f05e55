package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kumarabd/gokit/logger"
	"github.com/kumarabd/validation-plane/tuner/internal/metrics"
	"github.com/kumarabd/validation-plane/tuner/pkg/cache"
	"github.com/kumarabd/validation-plane/tuner/pkg/statsopts"
	"github.com/kumarabd/validation-plane/tuner/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, namespace string) (*Handler, string) {
	t.Helper()

	log, err := logger.New("service_test", logger.Options{Format: logger.JSONLogFormat})
	require.NoError(t, err)

	metric, err := metrics.New(namespace)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "options.json")
	st, err := store.New(&store.Config{Path: path, MaxBytes: 1 << 20}, log)
	require.NoError(t, err)

	hist, err := cache.New(&cache.Config{TTL: time.Minute, MaxEntries: 10})
	require.NoError(t, err)

	svc, err := New(log, metric, st, hist, nil)
	require.NoError(t, err)

	return svc, path
}

func TestNewStartsFromDefaults(t *testing.T) {
	svc, _ := newTestService(t, "svc_defaults")

	doc, revision := svc.Current()
	assert.NotEmpty(t, revision)

	defaults, err := statsopts.New(statsopts.Params{})
	require.NoError(t, err)
	want, err := defaults.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, want, doc)

	assert.Equal(t, statsopts.SamplingNone, svc.Sampling().Kind)
}

func TestNewRejectsInvalidPersistedDocument(t *testing.T) {
	log, err := logger.New("service_test", logger.Options{Format: logger.JSONLogFormat})
	require.NoError(t, err)
	metric, err := metrics.New("svc_invalid_boot")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "options.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"_sample_count": -1}`), 0o644))

	st, err := store.New(&store.Config{Path: path, MaxBytes: 1 << 20}, log)
	require.NoError(t, err)
	hist, err := cache.New(&cache.Config{TTL: time.Minute, MaxEntries: 10})
	require.NoError(t, err)

	_, err = New(log, metric, st, hist, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid sample_count -1")
}

func TestReplaceAdoptsValidDocument(t *testing.T) {
	svc, path := newTestService(t, "svc_replace")
	_, before := svc.Current()

	revision, err := svc.Replace(context.Background(), `{"_sample_count": 50}`, "http")
	require.NoError(t, err)
	assert.NotEqual(t, before, revision)

	doc, current := svc.Current()
	assert.Equal(t, revision, current)
	assert.Contains(t, doc, `"_sample_count":50`)

	count, ok := svc.Options().GetSampleCount()
	require.True(t, ok)
	assert.Equal(t, int64(50), count)

	// Accepted documents are persisted in canonical form.
	persisted, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(persisted))

	// And recorded in history, newest first.
	revs := svc.History(10)
	require.Len(t, revs, 1)
	assert.Equal(t, revision, revs[0].ID)
	assert.Equal(t, "http", revs[0].Source)
	assert.Equal(t, doc, revs[0].Options)
}

func TestReplaceRejectsUnknownKeys(t *testing.T) {
	svc, _ := newTestService(t, "svc_unknown")
	_, before := svc.Current()

	_, err := svc.Replace(context.Background(), `{"surprise": true}`, "http")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidOptions), "unknown keys are a parse error, not a validation error")

	_, after := svc.Current()
	assert.Equal(t, before, after, "a rejected document must not move the revision")
	assert.Empty(t, svc.History(10))
}

func TestReplaceRejectsInvalidValues(t *testing.T) {
	svc, _ := newTestService(t, "svc_invalid")

	_, err := svc.Replace(context.Background(), `{"_sample_count": 100, "_sample_rate": 0.5}`, "http")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.Contains(t, err.Error(), "Only one of sample_count or sample_rate can be specified.")
}

func TestCheck(t *testing.T) {
	svc, _ := newTestService(t, "svc_check")

	rate := 0.5
	doc, err := svc.Check(context.Background(), statsopts.Params{SampleRate: &rate})
	require.NoError(t, err)
	assert.Contains(t, doc, `"_sample_rate":0.5`)

	count := int64(0)
	_, err = svc.Check(context.Background(), statsopts.Params{SampleCount: &count})
	require.Error(t, err)
	assert.Equal(t, "Invalid sample_count 0", err.Error())

	var valueErr *statsopts.ValueError
	assert.ErrorAs(t, err, &valueErr)

	// Check never adopts anything.
	assert.Equal(t, statsopts.SamplingNone, svc.Sampling().Kind)
}

func TestReloadAdoptsExternalEdit(t *testing.T) {
	svc, path := newTestService(t, "svc_reload")
	_, before := svc.Current()

	require.NoError(t, os.WriteFile(path, []byte(`{"_sample_rate": 0.25}`), 0o644))
	require.NoError(t, svc.Reload(context.Background()))

	_, after := svc.Current()
	assert.NotEqual(t, before, after)
	assert.Equal(t, statsopts.SamplingRate, svc.Sampling().Kind)
	assert.Equal(t, 0.25, svc.Sampling().Rate)

	revs := svc.History(10)
	require.Len(t, revs, 1)
	assert.Equal(t, "file_watch", revs[0].Source)
}

func TestReloadKeepsCurrentOnInvalidEdit(t *testing.T) {
	svc, path := newTestService(t, "svc_reload_invalid")
	_, before := svc.Current()

	require.NoError(t, os.WriteFile(path, []byte(`{"_num_values_histogram_buckets": 1}`), 0o644))
	err := svc.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.Contains(t, err.Error(), "Invalid num_values_histogram_buckets 1")

	_, after := svc.Current()
	assert.Equal(t, before, after)
}
