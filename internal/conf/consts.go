// conf/consts.go constant values for the application
package conf

const (
	// DefaultSampleRate is the capture sample rate in Hz.
	DefaultSampleRate = 44100

	// DefaultChunkSize is the number of samples per chunk.
	DefaultChunkSize = 2048

	// NumChannels is the number of channels used for audio capture.
	NumChannels = 1

	// BitDepth is the bit depth used for audio capture.
	BitDepth = 16

	// DefaultNumOutputs is the length of the output vector.
	DefaultNumOutputs = 5

	// DefaultHighPassCutoff is the high-pass filter cutoff in Hz.
	DefaultHighPassCutoff = 100.0

	// DefaultHighPassOrder is the Butterworth high-pass filter order.
	DefaultHighPassOrder = 5

	// DefaultVADMode is the default classifier aggressiveness, 0-3.
	DefaultVADMode = 1

	// DefaultVADFrameDuration is the classifier frame length in ms.
	DefaultVADFrameDuration = 30

	// DefaultVADResampleRate is the classifier sample rate in Hz.
	DefaultVADResampleRate = 16000

	// MaxOutputValue is the upper bound of each output vector slot.
	MaxOutputValue = 255
)
