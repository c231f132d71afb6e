// Package chain turns audio chunks into fixed-length output vectors by
// blending the results of one or more analysis algorithms. Each
// algorithm maps a chunk to per-channel levels; the chain combines them
// with normalized weights into a single byte vector for the sinks.
package chain

import (
	"log/slog"
	"slices"

	"github.com/tkarvinen/soundpulse/internal/audio"
	"github.com/tkarvinen/soundpulse/internal/conf"
	"github.com/tkarvinen/soundpulse/internal/errors"
	"github.com/tkarvinen/soundpulse/internal/logging"
)

// Algorithm maps an audio chunk to one level per output channel. Levels
// are floats in [0, 255]; the chain handles weighting, rounding and
// clamping. Process may keep state between calls but must be
// deterministic for a given call sequence.
type Algorithm interface {
	Name() string
	NumOutputs() int
	Process(chunk *audio.Chunk, isSpeech bool) []float64
}

// AlgorithmConfig carries the construction parameters shared by all
// algorithm factories.
type AlgorithmConfig struct {
	NumOutputs int
	SampleRate int
	Params     map[string]float64
}

// factory builds a configured algorithm instance.
type factory func(config AlgorithmConfig) (Algorithm, error)

// factories is the explicit table of known algorithm names. Adding an
// algorithm means adding a row here.
var factories = map[string]factory{
	"volume":         newVolume,
	"volume_dynamic": newDynamicVolume,
	"frequency":      newFrequency,
}

// AlgorithmNames returns the registered algorithm names.
func AlgorithmNames() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// FromConfig builds a chain from named entries, typically loaded from a
// chain configuration file. Unknown names are skipped with a warning so
// a config written for a newer build still partially works. The
// resulting chain has its weights normalized.
func FromConfig(entries map[string]conf.ChainEntry, numOutputs, sampleRate int) (*Chain, error) {
	logger := logging.ForService("chain")
	if logger == nil {
		logger = slog.Default()
	}

	// Map iteration order is randomized; the accumulation order in
	// Process must not be, or outputs stop being reproducible between
	// runs. Build in name order.
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)

	chain := New(numOutputs)
	for _, name := range names {
		entry := entries[name]
		build, known := factories[name]
		if !known {
			logger.Warn("unknown algorithm in chain config, skipping",
				"algorithm", name)
			continue
		}

		alg, err := build(AlgorithmConfig{
			NumOutputs: numOutputs,
			SampleRate: sampleRate,
			Params:     entry.Params,
		})
		if err != nil {
			return nil, errors.New(err).
				Component("chain").
				Category(errors.CategoryConfiguration).
				Context("algorithm", name).
				Build()
		}
		if err := chain.Add(alg, entry.Weight); err != nil {
			return nil, err
		}
	}

	chain.Normalize()
	return chain, nil
}

// paramOr reads a named parameter with a fallback default.
func paramOr(params map[string]float64, name string, fallback float64) float64 {
	if v, ok := params[name]; ok {
		return v
	}
	return fallback
}
