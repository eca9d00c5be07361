package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arunnats/alakazam/pkg/alakazam/model"
)

// RedisStore keeps the song table and inverted index in Redis. The layout is
// a counter at song_counter, one JSON record per song at song:{id}, and one
// set of song ids per hash at hash:{hash}.
type RedisStore struct {
	client *redis.Client
}

const songCounterKey = "song_counter"

func songKey(id uint64) string   { return fmt.Sprintf("song:%d", id) }
func hashKey(hash uint64) string { return fmt.Sprintf("hash:%d", hash) }

// NewRedis connects to the Redis server at addr and verifies the connection
// with a ping.
func NewRedis(addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, storeErr("connecting to redis", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) NextSongID(ctx context.Context) (uint64, error) {
	id, err := s.client.Incr(ctx, songCounterKey).Result()
	if err != nil {
		return 0, storeErr("incrementing song counter", err)
	}
	return uint64(id), nil
}

func (s *RedisStore) PutSong(ctx context.Context, id uint64, info model.SongInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding song record: %w", err)
	}
	if err := s.client.Set(ctx, songKey(id), data, 0).Err(); err != nil {
		return storeErr("writing song record", err)
	}
	return nil
}

func (s *RedisStore) GetSong(ctx context.Context, id uint64) (*model.SongInfo, error) {
	data, err := s.client.Get(ctx, songKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, storeErr("reading song record", err)
	}
	var info model.SongInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil, fmt.Errorf("decoding song record: %w", err)
	}
	return &info, nil
}

func (s *RedisStore) AddPosting(ctx context.Context, hash, id uint64) error {
	if err := s.client.SAdd(ctx, hashKey(hash), id).Err(); err != nil {
		return storeErr("writing posting", err)
	}
	return nil
}

// AddPostings pipelines a whole fingerprint's postings in one round trip.
func (s *RedisStore) AddPostings(ctx context.Context, hashes []uint64, id uint64) error {
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, h := range hashes {
			pipe.SAdd(ctx, hashKey(h), id)
		}
		return nil
	})
	if err != nil {
		return storeErr("writing postings", err)
	}
	return nil
}

func (s *RedisStore) GetPostings(ctx context.Context, hash uint64) ([]uint64, error) {
	members, err := s.client.SMembers(ctx, hashKey(hash)).Result()
	if err != nil {
		return nil, storeErr("reading postings", err)
	}
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decoding posting member %q: %w", m, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
