package alakazam

import (
	"errors"

	"github.com/arunnats/alakazam/pkg/alakazam/audio"
	"github.com/arunnats/alakazam/pkg/alakazam/storage"
)

// Error kinds surfaced by the library. Hash generation itself never fails;
// every failure originates in a collaborator and is propagated verbatim, so
// all of these are matchable with errors.Is on returned chains.
var (
	// ErrUnsupportedFormat: audio bit depth not in {16, 24, 32} integer or
	// 32-bit float.
	ErrUnsupportedFormat = audio.ErrUnsupportedFormat

	// ErrStoreUnavailable: the storage backend could not be reached or an
	// operation failed.
	ErrStoreUnavailable = storage.ErrUnavailable

	// ErrSerialization: a result object could not be encoded at a boundary.
	ErrSerialization = errors.New("serialization failed")
)
