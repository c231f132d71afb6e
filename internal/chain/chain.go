package chain

import (
	"math"

	"github.com/tkarvinen/soundpulse/internal/audio"
	"github.com/tkarvinen/soundpulse/internal/conf"
	"github.com/tkarvinen/soundpulse/internal/errors"
)

// entry pairs an algorithm with its blend weight.
type entry struct {
	algorithm Algorithm
	weight    float64
}

// Chain combines algorithm outputs into one byte vector. Algorithms run
// in the order they were added, so a given chain and input sequence
// always reproduces the same outputs. Not safe for concurrent use; the
// processing loop owns it.
type Chain struct {
	numOutputs int
	entries    []entry
	normalized bool
}

// New creates an empty chain producing vectors of the given width.
func New(numOutputs int) *Chain {
	return &Chain{numOutputs: numOutputs}
}

// Add appends an algorithm with a non-negative blend weight. The
// algorithm's output width must match the chain's.
func (c *Chain) Add(alg Algorithm, weight float64) error {
	if weight < 0 || math.IsNaN(weight) {
		return errors.Newf("algorithm %q weight must be non-negative, got %v", alg.Name(), weight).
			Component("chain").
			Category(errors.CategoryValidation).
			Context("algorithm", alg.Name()).
			Build()
	}
	if alg.NumOutputs() != c.numOutputs {
		return errors.Newf("algorithm %q produces %d outputs, chain expects %d",
			alg.Name(), alg.NumOutputs(), c.numOutputs).
			Component("chain").
			Category(errors.CategoryValidation).
			Context("algorithm", alg.Name()).
			Build()
	}

	c.entries = append(c.entries, entry{algorithm: alg, weight: weight})
	c.normalized = false
	return nil
}

// Normalize rescales weights to sum to exactly 1. When every weight is
// zero the algorithms get equal shares instead, so an all-zero config
// degrades to a plain average rather than a dark output.
func (c *Chain) Normalize() {
	if len(c.entries) == 0 {
		c.normalized = true
		return
	}

	var sum float64
	for i := range c.entries {
		sum += c.entries[i].weight
	}

	if sum == 0 {
		equal := 1.0 / float64(len(c.entries))
		for i := range c.entries {
			c.entries[i].weight = equal
		}
	} else {
		for i := range c.entries {
			c.entries[i].weight /= sum
		}
	}
	c.normalized = true
}

// Len returns the number of algorithms in the chain.
func (c *Chain) Len() int {
	return len(c.entries)
}

// NumOutputs returns the width of the produced vectors.
func (c *Chain) NumOutputs() int {
	return c.numOutputs
}

// Process runs every algorithm on the chunk and blends their levels by
// weight. The result is rounded to the nearest integer and clamped to
// the byte range. An empty chain produces an all-zero vector.
func (c *Chain) Process(chunk *audio.Chunk, isSpeech bool) []uint8 {
	if !c.normalized {
		c.Normalize()
	}

	mixed := make([]float64, c.numOutputs)
	for i := range c.entries {
		levels := c.entries[i].algorithm.Process(chunk, isSpeech)
		w := c.entries[i].weight
		for ch := 0; ch < c.numOutputs && ch < len(levels); ch++ {
			mixed[ch] += levels[ch] * w
		}
	}

	out := make([]uint8, c.numOutputs)
	for ch, v := range mixed {
		r := math.Round(v)
		if r < 0 {
			r = 0
		} else if r > conf.MaxOutputValue {
			r = conf.MaxOutputValue
		}
		out[ch] = uint8(r)
	}
	return out
}
