package fingerprint

// Fingerprinter turns a mono signal into a sequence of 64-bit hashes. It is
// safe for concurrent use: the cached taper is immutable after construction
// and every call allocates its own analysis buffers.
type Fingerprinter struct {
	windowSize int
	hopSize    int
	taper      []float64
}

// Option configures a Fingerprinter.
type Option func(*Fingerprinter)

// WithPerSampleWindow replaces the default uniform-gain taper with the
// standard per-sample Hamming window. Hashes generated with this option do
// not match hashes generated without it.
func WithPerSampleWindow(enabled bool) Option {
	return func(f *Fingerprinter) {
		if enabled {
			f.taper = Hamming(f.windowSize)
		}
	}
}

// New returns a Fingerprinter with the fixed 1024-sample window and 50%
// overlap.
func New(opts ...Option) *Fingerprinter {
	f := &Fingerprinter{windowSize: WindowSize, hopSize: HopSize}
	for _, opt := range opts {
		opt(f)
	}
	if f.taper == nil {
		gain := FlatHamming(f.windowSize)
		f.taper = make([]float64, f.windowSize)
		for i := range f.taper {
			f.taper[i] = gain
		}
	}
	return f
}

// Generate computes the fingerprint of a mono signal. It never fails: short
// or silent signals simply produce fewer (or zero) hashes. The result is
// deterministic, emitted in window, then band, then pair order.
func (f *Fingerprinter) Generate(samples []float64, sampleRate int) []uint64 {
	hashes := make([]uint64, 0)

	for start := 0; start+f.windowSize <= len(samples); start += f.hopSize {
		spectrum := Spectrum(samples[start:start+f.windowSize], f.taper)
		peaks := ExtractPeaks(spectrum, sampleRate)
		hashes = append(hashes, HashPeaks(peaks)...)
	}

	return hashes
}
