package alakazam

import (
	"context"

	"github.com/arunnats/alakazam/pkg/alakazam/model"
)

// Service exposes the fingerprinting engine: hash generation, enrollment of
// recordings under stable song ids, and confidence-ranked retrieval.
type Service interface {
	// GenerateFingerprint computes the hash sequence of a mono signal. It is
	// deterministic and never fails; short or silent signals produce fewer
	// (or zero) hashes.
	GenerateFingerprint(samples []float64, sampleRate int) []uint64

	// StoreSong enrolls a recording under a freshly allocated song id and
	// returns that id.
	StoreSong(ctx context.Context, info model.SongInfo, samples []float64, sampleRate int) (uint64, error)

	// SearchSong compares a query clip against the store and returns
	// candidates sorted by descending confidence. A query that matches
	// nothing returns an empty list, not an error.
	SearchSong(ctx context.Context, samples []float64, sampleRate int) ([]model.Match, error)

	// StoreSongFile enrolls an audio file. WAV files are decoded directly;
	// other containers go through the ffmpeg converter. Empty name or artist
	// fall back to the container's tags.
	StoreSongFile(ctx context.Context, path, name, artist string) (uint64, error)

	// SearchSongFile runs SearchSong on an audio file.
	SearchSongFile(ctx context.Context, path string) ([]model.Match, error)

	// Close releases the store handle.
	Close() error
}

// Store is the persistence contract: a song table plus an inverted index
// from hash to the set of song ids containing it. Implementations must make
// NextSongID an atomic increment-and-fetch and AddPosting an atomic set-add,
// so concurrent enrollments of distinct recordings cannot tear a posting.
type Store interface {
	NextSongID(ctx context.Context) (uint64, error)
	PutSong(ctx context.Context, id uint64, info model.SongInfo) error
	GetSong(ctx context.Context, id uint64) (*model.SongInfo, error)
	AddPosting(ctx context.Context, hash, id uint64) error
	GetPostings(ctx context.Context, hash uint64) ([]uint64, error)
	Close() error
}

// BatchPoster is an optional Store extension for bulk enrollment. Backends
// that can batch or pipeline posting writes implement it; enrollment falls
// back to per-hash AddPosting otherwise.
type BatchPoster interface {
	AddPostings(ctx context.Context, hashes []uint64, id uint64) error
}

// Logger is the logging interface used by the service, allowing embedders to
// supply their own implementation.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
