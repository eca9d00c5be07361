package model

// SongInfo is the metadata stored for an enrolled recording.
type SongInfo struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

// Match is one ranked candidate returned by a search.
type Match struct {
	SongID     uint64   `json:"song_id"`
	Song       SongInfo `json:"song"`
	Confidence float64  `json:"confidence"`
}

// SongMetadata describes the recording a fingerprint was computed from.
type SongMetadata struct {
	Duration   float32 `json:"duration"`
	SampleRate uint32  `json:"sample_rate"`
	HashCount  int     `json:"hash_count"`
}

// SongFingerprint is the boundary representation of a full recording's
// fingerprint.
type SongFingerprint struct {
	Hashes   []uint64     `json:"hashes"`
	Metadata SongMetadata `json:"metadata"`
}

// QueryFingerprint is the boundary representation of a query clip's
// fingerprint.
type QueryFingerprint struct {
	Hashes   []uint64 `json:"hashes"`
	Duration float32  `json:"duration"`
}

// AudioHashes carries hashes as decimal strings for runtimes that cannot
// represent 64-bit integers exactly.
type AudioHashes struct {
	Hashes          []string `json:"hashes"`
	SampleRate      uint32   `json:"sample_rate"`
	DurationSeconds float32  `json:"duration_seconds"`
}
