// Package processor drives the pipeline: it pulls chunks from the audio
// source at the chunk cadence, runs filtering, voice gating and the
// algorithm chain, and hands the resulting vectors to the sink.
package processor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tkarvinen/soundpulse/internal/audio"
	"github.com/tkarvinen/soundpulse/internal/chain"
	"github.com/tkarvinen/soundpulse/internal/dsp"
	"github.com/tkarvinen/soundpulse/internal/errors"
	"github.com/tkarvinen/soundpulse/internal/logging"
	"github.com/tkarvinen/soundpulse/internal/observability"
	"github.com/tkarvinen/soundpulse/internal/sink"
)

// SpeechGate classifies chunks as speech or not. Satisfied by vad.Gate.
type SpeechGate interface {
	IsSpeech(chunk *audio.Chunk) (bool, error)
}

// underrun sleep bounds. The sleep is a fraction of the chunk duration
// so a fast cadence polls faster, clamped so it neither busy-spins nor
// oversleeps a whole cycle.
const (
	minUnderrunSleep = 500 * time.Microsecond
	maxUnderrunSleep = 10 * time.Millisecond
)

// Config assembles a processor. Source, Chain and Sink are required;
// Gate, Filters and Metrics may be nil to disable that stage.
type Config struct {
	Source  audio.Source
	Gate    SpeechGate
	Chain   *chain.Chain
	Sink    sink.Sink
	Filters *dsp.FilterChain
	Metrics *observability.Metrics
}

// Processor owns one pipeline run. Create with New, drive with Run.
type Processor struct {
	source  audio.Source
	gate    SpeechGate
	chain   *chain.Chain
	sink    sink.Sink
	filters *dsp.FilterChain
	metrics *observability.Metrics

	releaseOnce sync.Once

	logger *slog.Logger
}

// New validates the configuration and creates a processor.
func New(config Config) (*Processor, error) {
	if config.Source == nil || config.Chain == nil || config.Sink == nil {
		return nil, errors.NewStd("processor requires a source, a chain and a sink").
			Component("processor").
			Category(errors.CategoryValidation).
			Build()
	}

	logger := logging.ForService("processor")
	if logger == nil {
		logger = slog.Default()
	}

	return &Processor{
		source:  config.Source,
		gate:    config.Gate,
		chain:   config.Chain,
		sink:    config.Sink,
		filters: config.Filters,
		metrics: config.Metrics,
		logger:  logger.With("source", config.Source.Name()),
	}, nil
}

// Run executes the processing loop until the context is canceled or the
// source stops producing. The source and sink are released exactly once
// on every exit path.
func (p *Processor) Run(ctx context.Context) error {
	if err := p.source.Start(); err != nil {
		return err
	}
	if err := p.sink.Open(); err != nil {
		p.source.Stop()
		return errors.New(err).
			Component("processor").
			Category(errors.CategorySink).
			Context("operation", "open_sink").
			Build()
	}
	defer p.release()

	cadence := p.source.ChunkDuration()
	underrunSleep := boundedSleep(cadence / 8)

	p.logger.Info("processing started",
		"cadence", cadence,
		"outputs", p.chain.NumOutputs(),
		"gated", p.gate != nil)

	// The deadline anchors output cadence to the wall clock so timing
	// drift does not accumulate across cycles.
	deadline := time.Now()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("processing stopped", "reason", "canceled")
			return ctx.Err()
		default:
		}

		if !p.source.Running() {
			p.logger.Info("processing stopped", "reason", "source exhausted")
			return nil
		}

		chunk := p.source.GetChunk()
		if chunk == nil {
			// Transient underrun. Wait briefly for the producer rather
			// than treating it as a failure.
			p.metrics.RecordUnderrun()
			if !sleepCtx(ctx, underrunSleep) {
				p.logger.Info("processing stopped", "reason", "canceled")
				return ctx.Err()
			}
			continue
		}

		start := time.Now()
		p.processChunk(chunk)
		p.metrics.RecordCycle(time.Since(start))

		deadline = deadline.Add(cadence)
		now := time.Now()
		if deadline.Before(now) {
			// Processing overran the cadence. Re-anchor instead of
			// sprinting through a backlog of stale deadlines.
			deadline = now
			continue
		}
		if !sleepCtx(ctx, deadline.Sub(now)) {
			p.logger.Info("processing stopped", "reason", "canceled")
			return ctx.Err()
		}
	}
}

// processChunk runs one chunk through filter, gate, chain and sink. The
// gate and the chain both see the filtered chunk, so what gets
// classified is exactly what gets analyzed.
func (p *Processor) processChunk(chunk *audio.Chunk) {
	filtered := p.filterChunk(chunk)

	speech := true
	if p.gate != nil {
		var err error
		speech, err = p.gate.IsSpeech(filtered)
		if err != nil {
			// Fail open: a broken gate dims nothing, it just stops
			// gating until it recovers.
			p.logger.Warn("voice gate failed, passing chunk through",
				append([]any{"error", err}, errors.LogAttrs(err)...)...)
			speech = true
		}
	}

	values := p.chain.Process(filtered, speech)

	if err := p.sink.Display(values); err != nil {
		p.metrics.RecordSinkFailure()
		p.logger.Error("output delivery failed",
			append([]any{"error", err}, errors.LogAttrs(err)...)...)
	}
	p.metrics.RecordChunk(speech)
}

// filterChunk applies the filter chain to a copy of the chunk. Filter
// state is reset first so every chunk is filtered from quiescence.
func (p *Processor) filterChunk(chunk *audio.Chunk) *audio.Chunk {
	if p.filters == nil || p.filters.Length() == 0 {
		return chunk
	}

	floats := dsp.SamplesToFloat64(chunk.Samples)
	p.filters.Reset()
	p.filters.ApplyBatch(floats)

	return &audio.Chunk{
		Samples:    dsp.Float64ToSamples(floats),
		SampleRate: chunk.SampleRate,
		Channels:   chunk.Channels,
		Timestamp:  chunk.Timestamp,
	}
}

// release stops the source and closes the sink exactly once.
func (p *Processor) release() {
	p.releaseOnce.Do(func() {
		p.source.Stop()
		if err := p.sink.Close(); err != nil {
			p.logger.Error("sink close failed", "error", err)
		}
	})
}

// boundedSleep clamps an underrun sleep to its bounds.
func boundedSleep(d time.Duration) time.Duration {
	if d < minUnderrunSleep {
		return minUnderrunSleep
	}
	if d > maxUnderrunSleep {
		return maxUnderrunSleep
	}
	return d
}

// sleepCtx sleeps for d unless the context is canceled first. It
// reports false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
