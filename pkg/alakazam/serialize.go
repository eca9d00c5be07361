package alakazam

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/arunnats/alakazam/pkg/alakazam/fingerprint"
	"github.com/arunnats/alakazam/pkg/alakazam/model"
)

// BuildSongFingerprint computes the boundary representation of a full
// recording's fingerprint.
func BuildSongFingerprint(samples []float64, sampleRate int) model.SongFingerprint {
	hashes := fingerprint.New().Generate(samples, sampleRate)
	return model.SongFingerprint{
		Hashes: hashes,
		Metadata: model.SongMetadata{
			Duration:   float32(len(samples)) / float32(sampleRate),
			SampleRate: uint32(sampleRate),
			HashCount:  len(hashes),
		},
	}
}

// BuildQueryFingerprint computes the boundary representation of a query
// clip's fingerprint.
func BuildQueryFingerprint(samples []float64, sampleRate int) model.QueryFingerprint {
	return model.QueryFingerprint{
		Hashes:   fingerprint.New().Generate(samples, sampleRate),
		Duration: float32(len(samples)) / float32(sampleRate),
	}
}

// BuildAudioHashes renders a fingerprint with hashes as decimal strings, for
// receivers that cannot represent 64-bit integers exactly.
func BuildAudioHashes(samples []float64, sampleRate int) model.AudioHashes {
	hashes := fingerprint.New().Generate(samples, sampleRate)
	strs := make([]string, len(hashes))
	for i, h := range hashes {
		strs[i] = strconv.FormatUint(h, 10)
	}
	return model.AudioHashes{
		Hashes:          strs,
		SampleRate:      uint32(sampleRate),
		DurationSeconds: float32(len(samples)) / float32(sampleRate),
	}
}

// MarshalResult encodes a result object as JSON for a boundary crossing.
func MarshalResult(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}
