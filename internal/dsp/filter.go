// Package dsp provides the signal-processing primitives for the audio
// pipeline: biquad filters based on Robert Bristow-Johnson's audio EQ
// cookbook, Butterworth filter design, band-limited resampling and
// mel-scale helpers.
package dsp

import (
	"math"

	"github.com/tkarvinen/soundpulse/internal/errors"
)

// FilterName represents the kind of digital filter.
type FilterName int

// FilterName constants are digital filter names.
const (
	Undefined FilterName = iota
	LowPass
	HighPass
)

// Filter holds the digital filter parameters and its per-pass state.
type Filter struct {
	name FilterName

	// state variables
	in1  []float64
	in2  []float64
	out1 []float64
	out2 []float64

	// digital filter parameters
	a0 float64
	a1 float64
	a2 float64
	b0 float64
	b1 float64
	b2 float64

	// number of passes
	passes int

	// Pre-computed coefficients for optimization
	b0a0, b1a0, b2a0, a1a0, a2a0 float64
}

// IsZero returns true when f is not initialized.
func (f *Filter) IsZero() bool {
	return f.name == Undefined
}

// NewFilter creates a new Filter with the specified number of passes.
func NewFilter(name FilterName, a0, a1, a2, b0, b1, b2 float64, passes int) *Filter {
	f := &Filter{
		name:   name,
		a0:     a0,
		a1:     a1,
		a2:     a2,
		b0:     b0,
		b1:     b1,
		b2:     b2,
		passes: passes,
		in1:    make([]float64, passes),
		in2:    make([]float64, passes),
		out1:   make([]float64, passes),
		out2:   make([]float64, passes),
	}

	// Pre-compute coefficients
	f.b0a0 = b0 / a0
	f.b1a0 = b1 / a0
	f.b2a0 = b2 / a0
	f.a1a0 = a1 / a0
	f.a2a0 = a2 / a0

	return f
}

// ApplyBatch applies the filter to a batch of samples in place.
func (f *Filter) ApplyBatch(input []float64) {
	for p := 0; p < f.passes; p++ {
		for i := range input {
			output := f.b0a0*input[i] + f.b1a0*f.in1[p] + f.b2a0*f.in2[p] -
				f.a1a0*f.out1[p] - f.a2a0*f.out2[p]

			f.in2[p] = f.in1[p]
			f.in1[p] = input[i]
			f.out2[p] = f.out1[p]
			f.out1[p] = output

			input[i] = output
		}
	}
}

// Reset clears the filter state so the next batch starts from silence.
func (f *Filter) Reset() {
	for p := 0; p < f.passes; p++ {
		f.in1[p] = 0
		f.in2[p] = 0
		f.out1[p] = 0
		f.out2[p] = 0
	}
}

// NewHighPass returns a second-order high-pass filter.
//
// Parameters:
//
//   - sampleRate ... sample rate in Hz. e.g. 44100.0
//   - frequency ... cut off frequency in Hz.
//   - q ... Q value.
//   - passes ... number of passes (1 = 12dB/oct, 2 = 24dB/oct)
//
// NOTE: q must be greater than 0. passes must be 1 or greater.
func NewHighPass(sampleRate, frequency, q float64, passes int) (*Filter, error) {
	if passes < 1 {
		return nil, errors.Newf("filter passes must be 1 or greater").
			Component("dsp").
			Category(errors.CategoryValidation).
			Build()
	}
	if frequency <= 0 || frequency >= sampleRate/2 {
		return nil, errors.Newf("cutoff %.1f Hz out of range for sample rate %.0f Hz", frequency, sampleRate).
			Component("dsp").
			Category(errors.CategoryValidation).
			Build()
	}

	w0 := 2.0 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)

	return NewFilter(
		HighPass,
		1.0+alpha,
		-2.0*math.Cos(w0),
		1.0-alpha,
		(1.0+math.Cos(w0))/2.0,
		-1.0*(1.0+math.Cos(w0)),
		(1.0+math.Cos(w0))/2.0,
		passes,
	), nil
}

// NewLowPass returns a second-order low-pass filter.
func NewLowPass(sampleRate, frequency, q float64, passes int) (*Filter, error) {
	if passes < 1 {
		return nil, errors.Newf("filter passes must be 1 or greater").
			Component("dsp").
			Category(errors.CategoryValidation).
			Build()
	}
	if frequency <= 0 || frequency >= sampleRate/2 {
		return nil, errors.Newf("cutoff %.1f Hz out of range for sample rate %.0f Hz", frequency, sampleRate).
			Component("dsp").
			Category(errors.CategoryValidation).
			Build()
	}

	w0 := 2.0 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)

	return NewFilter(
		LowPass,
		1.0+alpha,
		-2.0*math.Cos(w0),
		1.0-alpha,
		(1.0-math.Cos(w0))/2.0,
		1.0-math.Cos(w0),
		(1.0-math.Cos(w0))/2.0,
		passes,
	), nil
}

// newFirstOrderHighPass returns a first-order high-pass section expressed
// as a biquad with zeroed second-order terms, derived with the bilinear
// transform.
func newFirstOrderHighPass(sampleRate, frequency float64) *Filter {
	k := math.Tan(math.Pi * frequency / sampleRate)

	return NewFilter(
		HighPass,
		1.0,
		(k-1.0)/(k+1.0),
		0.0,
		1.0/(1.0+k),
		-1.0/(1.0+k),
		0.0,
		1,
	)
}

// NewButterworthHighPass builds a high-pass filter of the given order as
// a cascade of second-order sections with Butterworth Q values, plus one
// first-order section when the order is odd. The cascade has a maximally
// flat passband and -3 dB at the cutoff frequency.
func NewButterworthHighPass(sampleRate, cutoff float64, order int) (*FilterChain, error) {
	if order < 1 {
		return nil, errors.Newf("filter order must be 1 or greater, got %d", order).
			Component("dsp").
			Category(errors.CategoryValidation).
			Context("order", order).
			Build()
	}

	chain := NewFilterChain()

	// Pole pair k of an order n Butterworth prototype sits at
	// (2k-1)*pi/(2n) off the imaginary axis, giving Q = 1/(2*sin(angle)).
	for k := 1; k <= order/2; k++ {
		angle := float64(2*k-1) * math.Pi / float64(2*order)
		q := 1.0 / (2.0 * math.Sin(angle))

		section, err := NewHighPass(sampleRate, cutoff, q, 1)
		if err != nil {
			return nil, err
		}
		if err := chain.AddFilter(section); err != nil {
			return nil, err
		}
	}

	if order%2 == 1 {
		if cutoff <= 0 || cutoff >= sampleRate/2 {
			return nil, errors.Newf("cutoff %.1f Hz out of range for sample rate %.0f Hz", cutoff, sampleRate).
				Component("dsp").
				Category(errors.CategoryValidation).
				Build()
		}
		if err := chain.AddFilter(newFirstOrderHighPass(sampleRate, cutoff)); err != nil {
			return nil, err
		}
	}

	return chain, nil
}

// FilterChain represents a chain of filters applied in sequence. The
// chain is owned by a single goroutine and carries no locking; the
// processing loop is the only caller.
type FilterChain struct {
	filters []*Filter
}

// NewFilterChain creates and returns a new FilterChain.
func NewFilterChain() *FilterChain {
	return &FilterChain{
		filters: make([]*Filter, 0),
	}
}

// AddFilter adds a new filter to the chain.
func (fc *FilterChain) AddFilter(f *Filter) error {
	if f == nil || f.IsZero() {
		return errors.Newf("cannot add nil or uninitialized filter").
			Component("dsp").
			Category(errors.CategoryValidation).
			Build()
	}
	fc.filters = append(fc.filters, f)
	return nil
}

// Length returns the number of filters in the chain.
func (fc *FilterChain) Length() int {
	return len(fc.filters)
}

// ApplyBatch applies all filters in the chain to a batch of samples in
// place.
func (fc *FilterChain) ApplyBatch(input []float64) {
	for _, filter := range fc.filters {
		filter.ApplyBatch(input)
	}
}

// Reset clears the state of every filter in the chain. The processing
// loop resets between chunks, so each chunk is filtered from silence.
// This can introduce discontinuities at chunk boundaries; carrying state
// across chunks would change the output of the baseline pipeline, so the
// reset stays until that behavior is deliberately revisited.
func (fc *FilterChain) Reset() {
	for _, filter := range fc.filters {
		filter.Reset()
	}
}
