// Package notifier distributes accepted options revisions to the subscribed
// statistics workers.
package notifier

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/kumarabd/gokit/logger"
	"github.com/kumarabd/validation-plane/tuner/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Config contains configuration for the notifier
type Config struct {
	Enabled   bool     `json:"enabled" yaml:"enabled" default:"true"`
	Endpoints []string `json:"endpoints" yaml:"endpoints"` // Worker options endpoints

	Timeout            time.Duration `json:"timeout" yaml:"timeout" default:"5s"`                              // Per-attempt request timeout
	MaxRetries         int           `json:"max_retries" yaml:"max_retries" default:"2"`                       // Max retry attempts per endpoint
	RetryBaseDelay     time.Duration `json:"retry_base_delay" yaml:"retry_base_delay" default:"20ms"`          // Base delay between retries
	QueueSize          int           `json:"queue_size" yaml:"queue_size" default:"64"`                        // Max queued revisions
	FlushInterval      time.Duration `json:"flush_interval" yaml:"flush_interval" default:"2s"`                // Coalescing window
	BreakerMaxFailures int           `json:"breaker_max_failures" yaml:"breaker_max_failures" default:"3"`     // Failures before opening
	BreakerCooldown    time.Duration `json:"breaker_cooldown" yaml:"breaker_cooldown" default:"30s"`           // Open-state cooldown
}

// Revision is one accepted options document to distribute. Document carries
// the canonical JSON layout.
type Revision struct {
	ID       string
	Document string
}

// Notifier pushes accepted revisions to every subscribed endpoint. Queued
// revisions are coalesced to the latest one per flush: workers only ever need
// the current document.
type Notifier struct {
	config *Config
	log    *logger.Handler
	metric *metrics.Handler
	tracer trace.Tracer

	client   *http.Client
	queue    chan Revision
	breakers map[string]*Breaker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics *notifierMetrics
}

type notifierMetrics struct {
	PushesTotal   *metrics.Counter
	FailuresTotal *metrics.Counter
	RetriesTotal  *metrics.Counter
	SkippedTotal  *metrics.Counter
	DroppedTotal  *metrics.Counter
	PushLatency   *metrics.Histogram
	QueueSize     *metrics.Gauge
}

// New creates a new notifier
func New(config *Config, log *logger.Handler, metric *metrics.Handler) *Notifier {
	ctx, cancel := context.WithCancel(context.Background())

	n := &Notifier{
		config:   config,
		log:      log,
		metric:   metric,
		tracer:   otel.Tracer("tuner/notifier"),
		client:   &http.Client{Timeout: config.Timeout},
		queue:    make(chan Revision, config.QueueSize),
		breakers: make(map[string]*Breaker, len(config.Endpoints)),
		ctx:      ctx,
		cancel:   cancel,
	}

	for _, endpoint := range config.Endpoints {
		n.breakers[endpoint] = NewBreaker(config.BreakerMaxFailures, config.BreakerCooldown)
	}

	n.initMetrics()

	return n
}

func (n *Notifier) initMetrics() {
	n.metrics = &notifierMetrics{
		PushesTotal:   n.metric.NewCounter("notifier_pushes_total", "Total revision pushes delivered", "endpoint"),
		FailuresTotal: n.metric.NewCounter("notifier_push_failures_total", "Total revision pushes that exhausted retries", "endpoint"),
		RetriesTotal:  n.metric.NewCounter("notifier_retries_total", "Total push retry attempts", "endpoint"),
		SkippedTotal:  n.metric.NewCounter("notifier_skipped_total", "Total pushes skipped by an open breaker", "endpoint"),
		DroppedTotal:  n.metric.NewCounter("notifier_dropped_total", "Total revisions dropped on a full queue"),
		PushLatency:   n.metric.NewHistogram("notifier_push_latency_seconds", "Push latency per endpoint", "endpoint"),
		QueueSize:     n.metric.NewGauge("notifier_queue_size", "Current notifier queue size"),
	}
}

// Start starts the distribution loop
func (n *Notifier) Start() error {
	if !n.config.Enabled {
		n.log.Info().Msg("Notifier disabled, revisions will not be distributed")
		return nil
	}

	n.wg.Add(1)
	go n.run()

	n.log.Info().Int("endpoints", len(n.config.Endpoints)).Msg("Notifier started")
	return nil
}

// Stop drains the loop and waits for in-flight pushes
func (n *Notifier) Stop() error {
	n.cancel()
	n.wg.Wait()
	n.log.Info().Msg("Notifier stopped")
	return nil
}

// Publish enqueues a revision for distribution. The call never blocks: a
// full queue drops the revision, since a newer one supersedes it anyway.
func (n *Notifier) Publish(rev Revision) {
	if !n.config.Enabled {
		return
	}
	select {
	case n.queue <- rev:
		n.metrics.QueueSize.Set(float64(len(n.queue)))
	default:
		n.metrics.DroppedTotal.Inc()
		n.log.Warn().Str("revision", rev.ID).Msg("Notifier queue full, dropping revision")
	}
}

func (n *Notifier) run() {
	defer n.wg.Done()

	ticker := time.NewTicker(n.config.FlushInterval)
	defer ticker.Stop()

	var pending *Revision
	for {
		select {
		case <-n.ctx.Done():
			if pending != nil {
				n.fanout(*pending)
			}
			return

		case rev := <-n.queue:
			// Coalesce: only the latest revision matters.
			pending = &rev
			n.metrics.QueueSize.Set(float64(len(n.queue)))

		case <-ticker.C:
			if pending != nil {
				n.fanout(*pending)
				pending = nil
			}
		}
	}
}

func (n *Notifier) fanout(rev Revision) {
	for _, endpoint := range n.config.Endpoints {
		if n.breakers[endpoint].Open() {
			n.metrics.SkippedTotal.Inc(endpoint)
			n.log.Warn().Str("endpoint", endpoint).Str("revision", rev.ID).Msg("Breaker open, skipping push")
			continue
		}

		start := time.Now()
		err := n.push(endpoint, rev)
		n.metrics.PushLatency.Observe(time.Since(start).Seconds(), endpoint)

		if err != nil {
			n.breakers[endpoint].Fail()
			n.metrics.FailuresTotal.Inc(endpoint)
			n.log.Error().Err(err).Str("endpoint", endpoint).Str("revision", rev.ID).Msg("Failed to push revision")
		} else {
			n.breakers[endpoint].Success()
			n.metrics.PushesTotal.Inc(endpoint)
		}
	}
}

// push delivers one revision to one endpoint with per-attempt timeouts and
// jittered backoff between attempts.
func (n *Notifier) push(endpoint string, rev Revision) error {
	ctx, span := n.tracer.Start(n.ctx, "notifier.push")
	defer span.End()

	span.SetAttributes(
		attribute.String("notifier.endpoint", endpoint),
		attribute.String("options.revision", rev.ID),
	)

	var lastErr error
	for attempt := 0; attempt <= n.config.MaxRetries; attempt++ {
		if attempt > 0 {
			n.metrics.RetriesTotal.Inc(endpoint)
			d := n.config.RetryBaseDelay + time.Duration(rand.Intn(25))*time.Millisecond
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		// per-attempt timeout
		tctx, cancel := context.WithTimeout(ctx, n.config.Timeout)
		lastErr = n.send(tctx, endpoint, rev)
		cancel()

		if lastErr == nil {
			return nil
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return lastErr
}

func (n *Notifier) send(ctx context.Context, endpoint string, rev Revision) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader([]byte(rev.Document)))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Options-Revision", rev.ID)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to push revision to %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("endpoint %s returned error status: %d", endpoint, resp.StatusCode)
	}
	return nil
}
