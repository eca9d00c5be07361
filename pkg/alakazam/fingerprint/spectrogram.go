package fingerprint

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// WindowSize is the number of samples per analysis window.
	WindowSize = 1024
	// HopSize is the stride between successive window starts (50% overlap).
	HopSize = WindowSize / 2
)

// FlatHamming returns the single taper coefficient 0.54 − 0.46·cos(2π/n)
// that is applied uniformly to every sample of a window. Because the
// coefficient does not vary with the sample index this acts as a constant
// gain rather than a true taper; hashes derived from it depend on the
// behaviour, so it stays the default. See Hamming for the per-sample form.
func FlatHamming(n int) float64 {
	return 0.54 - 0.46*math.Cos(2*math.Pi/float64(n))
}

// Hamming returns the standard per-sample Hamming window of length n.
func Hamming(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// Spectrum computes the magnitude spectrum of one tapered frame. The input
// frame and taper must have equal length W; the result holds the moduli of
// bins 0..W/2-1.
func Spectrum(frame, taper []float64) []float64 {
	buf := make([]float64, len(frame))
	for i := range frame {
		buf[i] = frame[i] * taper[i]
	}

	spec := fft.FFTReal(buf)

	mag := make([]float64, len(frame)/2)
	for i := range mag {
		mag[i] = cmplx.Abs(spec[i])
	}
	return mag
}
