package fingerprint

import "sort"

// Peak is a local amplitude maximum within one band of a window's spectrum.
type Peak struct {
	Bin       int
	Amplitude float64
	BandID    uint8
}

// peakRadius is the half-width of the sliding comparison window: a bin is a
// peak only if it dominates the 7 bins centred on it.
const peakRadius = 3

// ExtractPeaks scans each frequency band of a magnitude spectrum and returns
// the significant local maxima, at most MaxPeaks per band. A bin qualifies
// when its amplitude strictly exceeds the band's adaptive threshold (band
// mean times the band's multiplier) and is not exceeded anywhere in the
// surrounding comparison window. Candidates are kept in descending amplitude
// order before truncation, so the loudest peaks survive.
func ExtractPeaks(spectrum []float64, sampleRate int) []Peak {
	windowSize := len(spectrum) * 2
	peaks := make([]Peak, 0, 16)

	for _, band := range Bands {
		start, end := band.binRange(windowSize, sampleRate)
		if end > len(spectrum) {
			end = len(spectrum)
		}
		if start >= end {
			continue
		}
		bs := spectrum[start:end]

		var sum float64
		for _, v := range bs {
			sum += v
		}
		threshold := sum / float64(len(bs)) * band.Threshold

		var candidates []Peak
		for i := peakRadius; i < len(bs)-peakRadius; i++ {
			center := bs[i]
			if center <= threshold {
				continue
			}
			isMax := true
			for j := i - peakRadius; j <= i+peakRadius; j++ {
				if bs[j] > center {
					isMax = false
					break
				}
			}
			if isMax {
				candidates = append(candidates, Peak{Bin: start + i, Amplitude: center, BandID: band.ID})
			}
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Amplitude > candidates[j].Amplitude
		})
		if len(candidates) > band.MaxPeaks {
			candidates = candidates[:band.MaxPeaks]
		}
		peaks = append(peaks, candidates...)
	}

	return peaks
}
