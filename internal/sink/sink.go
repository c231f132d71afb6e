// Package sink delivers output vectors to their consumers. A sink
// receives one byte vector per processing cycle; what it does with it,
// drive LEDs, draw a terminal meter, feed a test, is its own business.
package sink

import (
	"fmt"
	"io"
	"strings"

	"github.com/tkarvinen/soundpulse/internal/conf"
	"github.com/tkarvinen/soundpulse/internal/errors"
)

// Sink consumes output vectors. Display is called once per cycle from
// the processing loop and should return quickly; a slow sink stalls the
// cadence. Display errors are reported to the caller, which logs and
// keeps going.
type Sink interface {
	Open() error
	Display(values []uint8) error
	Close() error
}

// New builds the sink selected by the settings.
func New(settings *conf.Settings, w io.Writer) (Sink, error) {
	switch settings.Output.Type {
	case "null", "":
		return &Null{}, nil
	case "writer", "console":
		return NewWriter(w), nil
	default:
		return nil, errors.Newf("unknown output type: %s", settings.Output.Type).
			Component("sink").
			Category(errors.CategoryConfiguration).
			Context("output_type", settings.Output.Type).
			Build()
	}
}

// Null discards every vector. Useful for benchmarking the pipeline and
// as the default when no output hardware is attached.
type Null struct{}

func (*Null) Open() error           { return nil }
func (*Null) Display([]uint8) error { return nil }
func (*Null) Close() error          { return nil }

// Writer renders each vector as a line of bar meters, one column per
// channel. Mostly a debugging aid.
type Writer struct {
	w io.Writer
}

// NewWriter creates a sink writing meter lines to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (*Writer) Open() error { return nil }

func (s *Writer) Display(values []uint8) error {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%3d|%-8s", v, strings.Repeat("#", int(v)/32))
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return errors.New(err).
			Component("sink").
			Category(errors.CategorySink).
			Context("operation", "write_meters").
			Build()
	}
	return nil
}

func (*Writer) Close() error { return nil }
