package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arunnats/alakazam/pkg/alakazam/model"
)

// DefaultDBFile is used when no path is configured.
const DefaultDBFile = "alakazam.sqlite3"

const songCounterName = "song_id"

// SQLiteStore persists the song table and inverted index in a local SQLite
// database.
type SQLiteStore struct {
	db    *gorm.DB
	sqlDB *sql.DB // underlying sql.DB for Close
}

type songRow struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string
	Artist    string
	CreatedAt time.Time
}

func (songRow) TableName() string { return "songs" }

// postingRow is one (hash, song) membership of the inverted index. The
// composite unique index gives postings set semantics: re-adding an existing
// member is a no-op.
type postingRow struct {
	ID     uint   `gorm:"primaryKey;autoIncrement"`
	Hash   uint64 `gorm:"uniqueIndex:idx_posting,priority:1;index:idx_hash"`
	SongID uint64 `gorm:"uniqueIndex:idx_posting,priority:2"`
}

func (postingRow) TableName() string { return "postings" }

type counterRow struct {
	Name  string `gorm:"primaryKey"`
	Value uint64
}

func (counterRow) TableName() string { return "counters" }

// NewSQLite opens (or creates) the SQLite database at dbPath and runs
// migrations.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, storeErr("opening sqlite db", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, storeErr("getting sql.DB from gorm", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&songRow{}, &postingRow{}, &counterRow{}); err != nil {
		sqlDB.Close()
		return nil, storeErr("auto migrate", err)
	}

	return &SQLiteStore{db: db, sqlDB: sqlDB}, nil
}

// NextSongID atomically increments and returns the song counter.
func (s *SQLiteStore) NextSongID(ctx context.Context) (uint64, error) {
	var id uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&counterRow{}).
			Where("name = ?", songCounterName).
			Update("value", gorm.Expr("value + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&counterRow{Name: songCounterName, Value: 1}).Error; err != nil {
				return err
			}
			id = 1
			return nil
		}
		var row counterRow
		if err := tx.First(&row, "name = ?", songCounterName).Error; err != nil {
			return err
		}
		id = row.Value
		return nil
	})
	if err != nil {
		return 0, storeErr("allocating song id", err)
	}
	return id, nil
}

func (s *SQLiteStore) PutSong(ctx context.Context, id uint64, info model.SongInfo) error {
	row := songRow{ID: id, Name: info.Name, Artist: info.Artist}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return storeErr("writing song record", err)
	}
	return nil
}

func (s *SQLiteStore) GetSong(ctx context.Context, id uint64) (*model.SongInfo, error) {
	var row songRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, storeErr("querying song record", err)
	}
	return &model.SongInfo{Name: row.Name, Artist: row.Artist}, nil
}

func (s *SQLiteStore) AddPosting(ctx context.Context, hash, id uint64) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&postingRow{Hash: hash, SongID: id}).Error
	if err != nil {
		return storeErr("writing posting", err)
	}
	return nil
}

// AddPostings inserts a whole fingerprint's postings in batches.
func (s *SQLiteStore) AddPostings(ctx context.Context, hashes []uint64, id uint64) error {
	rows := make([]postingRow, 0, 1024)
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(rows, 500).Error
		rows = rows[:0]
		return err
	}

	for _, h := range hashes {
		rows = append(rows, postingRow{Hash: h, SongID: id})
		if len(rows) >= 1000 {
			if err := flush(); err != nil {
				return storeErr("batch insert postings", err)
			}
		}
	}
	if err := flush(); err != nil {
		return storeErr("batch insert postings", err)
	}
	return nil
}

func (s *SQLiteStore) GetPostings(ctx context.Context, hash uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).
		Model(&postingRow{}).
		Where("hash = ?", hash).
		Pluck("song_id", &ids).Error
	if err != nil {
		return nil, storeErr("querying postings", err)
	}
	return ids, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
