// Package pipeline assembles the full processing pipeline from settings
// and runs it. The command layer calls into here; everything below is
// wired from the individual packages.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/tkarvinen/soundpulse/internal/audio"
	"github.com/tkarvinen/soundpulse/internal/chain"
	"github.com/tkarvinen/soundpulse/internal/conf"
	"github.com/tkarvinen/soundpulse/internal/dsp"
	"github.com/tkarvinen/soundpulse/internal/logging"
	"github.com/tkarvinen/soundpulse/internal/observability"
	"github.com/tkarvinen/soundpulse/internal/processor"
	"github.com/tkarvinen/soundpulse/internal/sink"
	"github.com/tkarvinen/soundpulse/internal/vad"
)

// Run builds the pipeline described by the settings and processes until
// the context is canceled or the source is exhausted. Cancellation is a
// clean exit, not an error.
func Run(ctx context.Context, settings *conf.Settings, out io.Writer) error {
	logger := logging.ForService("pipeline")
	if logger == nil {
		logger = slog.Default()
	}

	entries := conf.DefaultChainConfig()
	if settings.Chain.Path != "" {
		loaded, err := conf.LoadChainConfig(settings.Chain.Path)
		if err != nil {
			return err
		}
		entries = loaded
	}

	algorithms, err := chain.FromConfig(entries, settings.Chain.NumOutputs, settings.Audio.SampleRate)
	if err != nil {
		return err
	}
	logger.Info("algorithm chain built",
		"algorithms", algorithms.Len(),
		"outputs", algorithms.NumOutputs())

	var filters *dsp.FilterChain
	if settings.Audio.HighPass.Enabled {
		filters, err = dsp.NewButterworthHighPass(
			float64(settings.Audio.SampleRate),
			settings.Audio.HighPass.Cutoff,
			settings.Audio.HighPass.Order,
		)
		if err != nil {
			return err
		}
	}

	var gate processor.SpeechGate
	if settings.VAD.Enabled {
		vadGate, err := vad.New(vad.Config{
			Mode:          settings.VAD.Mode,
			FrameDuration: settings.VAD.FrameDuration,
			ResampleRate:  settings.VAD.ResampleRate,
		})
		if err != nil {
			return err
		}
		gate = vadGate
	}

	source, err := audio.NewSource(settings)
	if err != nil {
		return err
	}

	output, err := sink.New(settings, out)
	if err != nil {
		return err
	}

	var metrics *observability.Metrics
	if settings.Metrics.Enabled {
		metrics, err = observability.NewMetrics()
		if err != nil {
			return err
		}
		go metrics.Serve(ctx, settings.Metrics.Listen)
	}

	proc, err := processor.New(processor.Config{
		Source:  source,
		Gate:    gate,
		Chain:   algorithms,
		Sink:    output,
		Filters: filters,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}

	if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
