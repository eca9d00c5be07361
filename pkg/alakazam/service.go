package alakazam

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arunnats/alakazam/pkg/alakazam/audio"
	"github.com/arunnats/alakazam/pkg/alakazam/fingerprint"
	"github.com/arunnats/alakazam/pkg/alakazam/model"
	"github.com/arunnats/alakazam/pkg/alakazam/storage"
	"github.com/arunnats/alakazam/pkg/logger"
)

type service struct {
	store Store
	fp    *fingerprint.Fingerprinter
	log   Logger
	cfg   *Config
}

// NewService builds a Service from functional options. Without an explicit
// store it connects to Redis when a Redis address is configured and falls
// back to SQLite at DBPath otherwise.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	store := cfg.Store
	var err error
	if store == nil {
		if cfg.RedisAddr != "" {
			store, err = storage.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		} else {
			store, err = storage.NewSQLite(cfg.DBPath)
		}
		if err != nil {
			return nil, fmt.Errorf("creating store: %w", err)
		}
	}

	var fpOpts []fingerprint.Option
	if cfg.PerSampleWindow {
		fpOpts = append(fpOpts, fingerprint.WithPerSampleWindow(true))
	}

	return &service{
		store: store,
		fp:    fingerprint.New(fpOpts...),
		log:   cfg.Logger,
		cfg:   cfg,
	}, nil
}

func (s *service) GenerateFingerprint(samples []float64, sampleRate int) []uint64 {
	return s.fp.Generate(samples, sampleRate)
}

func (s *service) StoreSong(ctx context.Context, info model.SongInfo, samples []float64, sampleRate int) (uint64, error) {
	hashes := s.fp.Generate(samples, sampleRate)
	s.log.Infof("enrolling %q by %q: %d hashes", info.Name, info.Artist, len(hashes))

	id, err := s.store.NextSongID(ctx)
	if err != nil {
		return 0, fmt.Errorf("allocating song id: %w", err)
	}
	if err := s.store.PutSong(ctx, id, info); err != nil {
		return 0, fmt.Errorf("writing song record: %w", err)
	}

	if bp, ok := s.store.(BatchPoster); ok {
		if err := bp.AddPostings(ctx, hashes, id); err != nil {
			return 0, fmt.Errorf("writing postings: %w", err)
		}
	} else {
		for _, h := range hashes {
			if err := s.store.AddPosting(ctx, h, id); err != nil {
				return 0, fmt.Errorf("writing posting: %w", err)
			}
		}
	}

	s.log.Infof("enrolled song id=%d", id)
	return id, nil
}

// candidate accumulates one song's hits while scanning the query hashes.
type candidate struct {
	raw     int
	matched []uint64
}

type scored struct {
	id         uint64
	confidence float64
}

func (s *service) SearchSong(ctx context.Context, samples []float64, sampleRate int) ([]model.Match, error) {
	query := s.fp.Generate(samples, sampleRate)
	s.log.Debugf("query produced %d hashes", len(query))
	if len(query) == 0 {
		return []model.Match{}, nil
	}

	accs := make(map[uint64]*candidate)
	for _, h := range query {
		ids, err := s.store.GetPostings(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("looking up postings: %w", err)
		}
		for _, id := range ids {
			c := accs[id]
			if c == nil {
				c = &candidate{}
				accs[id] = c
			}
			c.raw++
			c.matched = append(c.matched, h)
		}
	}

	ranked := rank(accs, len(query))

	matches := make([]model.Match, 0, len(ranked))
	for _, r := range ranked {
		info, err := s.store.GetSong(ctx, r.id)
		if err != nil {
			if errors.Is(err, storage.ErrSongNotFound) {
				s.log.Warnf("posting references missing song %d", r.id)
				continue
			}
			return nil, fmt.Errorf("fetching song %d: %w", r.id, err)
		}
		matches = append(matches, model.Match{SongID: r.id, Song: *info, Confidence: r.confidence})
	}

	s.log.Infof("query matched %d candidates", len(matches))
	return matches, nil
}

// rank converts the per-song accumulators into confidence-ordered results.
// The base confidence is the matched share of the query's hashes; songs
// whose raw hit count outruns their matched list are penalised for
// duplicate matches; anything below the 10% floor is dropped.
func rank(accs map[uint64]*candidate, totalHashes int) []scored {
	results := make([]scored, 0, len(accs))
	for id, c := range accs {
		matched := len(c.matched)
		if matched == 0 {
			continue
		}

		base := float64(matched) / float64(totalHashes)
		ratio := float64(c.raw) / float64(matched)

		penalty := 1.0
		switch {
		case ratio > 2.0:
			penalty = 0.8
		case ratio > 1.5:
			penalty = 0.9
		}

		if base < 0.10 {
			continue
		}
		results = append(results, scored{id: id, confidence: base * penalty})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].confidence != results[j].confidence {
			return results[i].confidence > results[j].confidence
		}
		return results[i].id < results[j].id
	})
	return results
}

func (s *service) StoreSongFile(ctx context.Context, path, name, artist string) (uint64, error) {
	samples, rate, err := s.loadAudio(ctx, path)
	if err != nil {
		return 0, err
	}

	if name == "" || artist == "" {
		if meta, err := audio.ReadMetadata(ctx, path); err == nil {
			if name == "" {
				name = meta.Title
			}
			if artist == "" {
				artist = meta.Artist
			}
		} else {
			s.log.Debugf("no metadata for %s: %v", path, err)
		}
	}

	return s.StoreSong(ctx, model.SongInfo{Name: name, Artist: artist}, samples, rate)
}

func (s *service) SearchSongFile(ctx context.Context, path string) ([]model.Match, error) {
	samples, rate, err := s.loadAudio(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.SearchSong(ctx, samples, rate)
}

// loadAudio decodes WAV files directly and routes everything else through
// the ffmpeg converter.
func (s *service) loadAudio(ctx context.Context, path string) ([]float64, int, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return audio.DecodeFile(path)
	}

	wavPath, err := audio.ConvertToMonoWAV(ctx, path, s.cfg.TempDir, audio.ConvertWAVConfig{})
	if err != nil {
		return nil, 0, fmt.Errorf("audio conversion failed: %w", err)
	}
	defer os.Remove(wavPath)

	return audio.DecodeFile(wavPath)
}

func (s *service) Close() error {
	return s.store.Close()
}
