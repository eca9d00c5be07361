package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/arunnats/alakazam/pkg/alakazam/model"
)

// MemoryStore is the in-process reference store: a song table and an
// inverted index held in two maps. Postings have set semantics and the song
// counter is atomic, so concurrent enrollments of distinct recordings never
// tear a posting.
type MemoryStore struct {
	counter atomic.Uint64

	mu       sync.RWMutex
	songs    map[uint64]model.SongInfo
	postings map[uint64]map[uint64]struct{}
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		songs:    make(map[uint64]model.SongInfo),
		postings: make(map[uint64]map[uint64]struct{}),
	}
}

func (s *MemoryStore) NextSongID(ctx context.Context) (uint64, error) {
	return s.counter.Add(1), nil
}

func (s *MemoryStore) PutSong(ctx context.Context, id uint64, info model.SongInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.songs[id] = info
	return nil
}

func (s *MemoryStore) GetSong(ctx context.Context, id uint64) (*model.SongInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.songs[id]
	if !ok {
		return nil, ErrSongNotFound
	}
	return &info, nil
}

func (s *MemoryStore) AddPosting(ctx context.Context, hash, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addPostingLocked(hash, id)
	return nil
}

func (s *MemoryStore) AddPostings(ctx context.Context, hashes []uint64, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range hashes {
		s.addPostingLocked(h, id)
	}
	return nil
}

func (s *MemoryStore) addPostingLocked(hash, id uint64) {
	set, ok := s.postings[hash]
	if !ok {
		set = make(map[uint64]struct{})
		s.postings[hash] = set
	}
	set[id] = struct{}{}
}

func (s *MemoryStore) GetPostings(ctx context.Context, hash uint64) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.postings[hash]
	if len(set) == 0 {
		return nil, nil
	}
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }
