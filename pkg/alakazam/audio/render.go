package audio

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/eligwz/spectrogram"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteSpectrogramPNG renders a WAV file's spectrogram to a PNG. Useful for
// eyeballing what the peak extractor is working with.
func WriteSpectrogramPNG(wavPath, pngPath string, width, height int) error {
	if width <= 0 {
		width = 2048
	}
	if height <= 0 {
		height = 512
	}

	file, err := os.Open(wavPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", wavPath, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return fmt.Errorf("invalid WAV file: %s", wavPath)
	}

	duration, err := decoder.Duration()
	if err != nil {
		return fmt.Errorf("reading duration of %s: %w", wavPath, err)
	}

	totalSamples := int(duration.Seconds() * float64(decoder.SampleRate))
	if totalSamples == 0 {
		return fmt.Errorf("no samples in %s", wavPath)
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(decoder.NumChans),
			SampleRate:  int(decoder.SampleRate),
		},
		Data:           make([]int, totalSamples*int(decoder.NumChans)),
		SourceBitDepth: int(decoder.BitDepth),
	}
	if _, err := decoder.PCMBuffer(buf); err != nil {
		return fmt.Errorf("reading samples from %s: %w", wavPath, err)
	}

	samples := make([]float64, len(buf.Data))
	maxVal := float64(int(1) << (uint(decoder.BitDepth) - 1))
	for i, v := range buf.Data {
		samples[i] = float64(v) / maxVal
	}
	samples = Downmix(samples, int(decoder.NumChans))

	img := spectrogram.NewImage128(image.Rect(0, 0, width, height))
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	spectrogram.Drawfft(
		img,
		samples,
		decoder.SampleRate,
		uint32(height), // bins
		false,          // use a Hamming window, not rectangular
		false,          // FFT, not DFT
		true,           // magnitude
		false,          // linear scale
	)

	if err := spectrogram.SavePng(img, pngPath); err != nil {
		return fmt.Errorf("saving PNG %s: %w", pngPath, err)
	}
	return nil
}
