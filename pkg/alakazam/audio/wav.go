package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// ErrUnsupportedFormat reports a WAV encoding the pipeline cannot consume:
// anything other than 16/24/32-bit integer PCM or 32-bit IEEE float.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// WavFormat holds the fields of the fmt chunk the decoder cares about.
type WavFormat struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	BitsPerSample uint16
}

const (
	formatPCM   = 1
	formatFloat = 3
)

type wavData struct {
	Format WavFormat
	Data   []byte
}

// Decode parses a WAV byte buffer and returns mono samples normalised to
// [-1, 1] together with the container's sample rate. Integer samples are
// scaled by the positive full scale of their bit depth; float samples pass
// through unchanged; multichannel audio is averaged down to mono.
func Decode(data []byte) ([]float64, int, error) {
	return decode(bytes.NewReader(data))
}

// DecodeFile is Decode for a file on disk.
func DecodeFile(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening wav file: %w", err)
	}
	defer f.Close()
	return decode(f)
}

func decode(r io.ReadSeeker) ([]float64, int, error) {
	if err := readRIFFHeader(r); err != nil {
		return nil, 0, err
	}

	wav, err := scanChunks(r)
	if err != nil {
		return nil, 0, err
	}

	samples, err := convertSamples(wav.Format, wav.Data)
	if err != nil {
		return nil, 0, err
	}

	mono := Downmix(samples, int(wav.Format.NumChannels))
	return mono, int(wav.Format.SampleRate), nil
}

// readRIFFHeader reads and validates the 12-byte RIFF/WAVE preamble.
func readRIFFHeader(r io.Reader) error {
	var riff [4]byte
	var fileSize uint32
	var wave [4]byte

	if err := binary.Read(r, binary.LittleEndian, &riff); err != nil {
		return fmt.Errorf("reading RIFF header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &fileSize); err != nil {
		return fmt.Errorf("reading RIFF size: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &wave); err != nil {
		return fmt.Errorf("reading WAVE id: %w", err)
	}

	if string(riff[:]) != "RIFF" || string(wave[:]) != "WAVE" {
		return errors.New("not a WAV/RIFF file")
	}
	return nil
}

func readFmtChunk(r io.ReadSeeker, chunkSize uint32) (*WavFormat, error) {
	var format WavFormat
	var byteRate uint32
	var blockAlign uint16

	fields := []any{
		&format.AudioFormat,
		&format.NumChannels,
		&format.SampleRate,
		&byteRate,
		&blockAlign,
		&format.BitsPerSample,
	}
	for _, field := range fields {
		if err := binary.Read(r, binary.LittleEndian, field); err != nil {
			return nil, fmt.Errorf("reading fmt chunk: %w", err)
		}
	}

	// Skip any extension bytes at the end of the fmt chunk.
	if remaining := int64(chunkSize) - 16; remaining > 0 {
		if _, err := r.Seek(remaining, io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("seeking past fmt extras: %w", err)
		}
	}
	return &format, nil
}

// scanChunks walks the chunk list until both the fmt and data chunks have
// been seen, skipping anything else (LIST, INFO, junk).
func scanChunks(r io.ReadSeeker) (*wavData, error) {
	var format WavFormat
	var data []byte
	fmtFound := false
	dataFound := false

	for !(fmtFound && dataFound) {
		var chunkID [4]byte
		var chunkSize uint32

		if err := binary.Read(r, binary.LittleEndian, &chunkID); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("reading chunk header: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return nil, fmt.Errorf("reading chunk size: %w", err)
		}

		switch string(chunkID[:]) {
		case "fmt ":
			f, err := readFmtChunk(r, chunkSize)
			if err != nil {
				return nil, err
			}
			format = *f
			fmtFound = true

		case "data":
			data = make([]byte, chunkSize)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("reading data chunk: %w", err)
			}
			dataFound = true

		default:
			if _, err := r.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("skipping chunk %s: %w", chunkID[:], err)
			}
		}

		// Chunks are word-aligned; odd sizes are followed by a pad byte.
		if chunkSize%2 == 1 {
			if _, err := r.Seek(1, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("seeking pad byte: %w", err)
			}
		}
	}

	if !fmtFound {
		return nil, errors.New("fmt chunk not found")
	}
	if !dataFound {
		return nil, errors.New("data chunk not found")
	}
	return &wavData{Format: format, Data: data}, nil
}

// convertSamples decodes the raw data chunk into normalised float64 samples,
// still interleaved by channel.
func convertSamples(format WavFormat, data []byte) ([]float64, error) {
	switch format.AudioFormat {
	case formatPCM:
		switch format.BitsPerSample {
		case 16:
			return decodeInt16(data), nil
		case 24:
			return decodeInt24(data), nil
		case 32:
			return decodeInt32(data), nil
		default:
			return nil, fmt.Errorf("%w: %d-bit integer PCM", ErrUnsupportedFormat, format.BitsPerSample)
		}
	case formatFloat:
		if format.BitsPerSample != 32 {
			return nil, fmt.Errorf("%w: %d-bit float", ErrUnsupportedFormat, format.BitsPerSample)
		}
		return decodeFloat32(data), nil
	default:
		return nil, fmt.Errorf("%w: wav format tag %d", ErrUnsupportedFormat, format.AudioFormat)
	}
}

func decodeInt16(data []byte) []float64 {
	const scale = 1.0 / 32767.0
	out := make([]float64, len(data)/2)
	for i := range out {
		s := int16(binary.LittleEndian.Uint16(data[2*i:]))
		out[i] = float64(s) * scale
	}
	return out
}

func decodeInt24(data []byte) []float64 {
	const scale = 1.0 / (1 << 23)
	out := make([]float64, len(data)/3)
	for i := range out {
		b := data[3*i : 3*i+3]
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		// Sign-extend the 24-bit value.
		if v&0x800000 != 0 {
			v |= ^int32(0xFFFFFF)
		}
		out[i] = float64(v) * scale
	}
	return out
}

func decodeInt32(data []byte) []float64 {
	const scale = 1.0 / float64(1<<31-1)
	out := make([]float64, len(data)/4)
	for i := range out {
		s := int32(binary.LittleEndian.Uint32(data[4*i:]))
		out[i] = float64(s) * scale
	}
	return out
}

func decodeFloat32(data []byte) []float64 {
	out := make([]float64, len(data)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:])))
	}
	return out
}

// Downmix averages interleaved channels into a mono signal. A mono input is
// returned unchanged.
func Downmix(samples []float64, channels int) []float64 {
	if channels <= 1 {
		return samples
	}
	frames := len(samples) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float64(channels)
	}
	return out
}
