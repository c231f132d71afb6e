package dsp

import "math"

// HzToMel converts a frequency in Hz to the mel scale.
func HzToMel(f float64) float64 {
	return 2595.0 * math.Log10(1.0+f/700.0)
}

// MelToHz converts a mel-scale value back to Hz.
func MelToHz(m float64) float64 {
	return 700.0 * (math.Pow(10.0, m/2595.0) - 1.0)
}

// MelBandEdges returns numBands+1 frequency edges in Hz, spaced evenly on
// the mel scale between minHz and maxHz.
func MelBandEdges(numBands int, minHz, maxHz float64) []float64 {
	edges := make([]float64, numBands+1)
	minMel := HzToMel(minHz)
	maxMel := HzToMel(maxHz)
	for i := range edges {
		mel := minMel + (maxMel-minMel)*float64(i)/float64(numBands)
		edges[i] = MelToHz(mel)
	}
	return edges
}
