package fingerprint

import "math"

// Band describes one frequency region of the spectrum together with its
// peak-picking parameters.
type Band struct {
	ID        uint8
	Name      string
	LowHz     float64
	HighHz    float64
	MaxPeaks  int
	Threshold float64 // multiplier applied to the band's mean magnitude
}

// Bands partitions the spectrum into six regions tuned for voice and music:
// bass instruments at the bottom, voice fundamentals and harmonics through
// the mids, air and presence at the top. Wider, voice-critical bands keep
// more peaks at a lower threshold.
var Bands = [6]Band{
	{ID: 1, Name: "bass", LowHz: 20, HighHz: 300, MaxPeaks: 3, Threshold: 1.1},
	{ID: 2, Name: "low_mid", LowHz: 300, HighHz: 800, MaxPeaks: 4, Threshold: 1.0},
	{ID: 3, Name: "mid", LowHz: 800, HighHz: 3000, MaxPeaks: 4, Threshold: 1.0},
	{ID: 4, Name: "high_mid", LowHz: 3000, HighHz: 5000, MaxPeaks: 2, Threshold: 1.2},
	{ID: 5, Name: "treble", LowHz: 5000, HighHz: 8000, MaxPeaks: 1, Threshold: 1.3},
	{ID: 6, Name: "presence", LowHz: 8000, HighHz: 20000, MaxPeaks: 1, Threshold: 1.4},
}

// binRange converts the band's Hz edges into FFT bin indices for the given
// analysis window size and sample rate: bin = round(f/Δf) with
// Δf = sampleRate/windowSize. The returned end index is exclusive and not
// yet clamped to the spectrum length.
func (b Band) binRange(windowSize, sampleRate int) (int, int) {
	freqRes := float64(sampleRate) / float64(windowSize)
	start := int(math.Round(b.LowHz / freqRes))
	end := int(math.Round(b.HighHz / freqRes))
	return start, end
}
