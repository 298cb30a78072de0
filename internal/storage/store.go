package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrCorrupt is returned by Load when a stored payload exists but fails to
// decode. Callers recover per-record; the raw row is left in place so a later
// write simply replaces it.
var ErrCorrupt = errors.New("stored record is corrupt")

const (
	maxWriteAttempts = 3
	baseRetryDelay   = 50 * time.Millisecond
)

// Record is one named persisted entity group, JSON-encoded.
type Record struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	Key     string `gorm:"uniqueIndex"`
	Payload string `gorm:"type:text"`
}

type deferredWrite struct {
	key     string
	payload string
}

// Store is the persistence gateway: typed get/set over named records.
// Writes are write-through with bounded retry; failed writes are queued for
// a later FlushDeferred rather than dropped.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger

	mu       sync.Mutex
	deferred []deferredWrite

	// sleep is swappable in tests to avoid real backoff delays.
	sleep func(time.Duration)
}

// NewStore opens (or creates) the state database at dbFilePath.
// Use ":memory:" for tests.
func NewStore(dbFilePath string, zapLogger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: zapLogger,
		sleep:  time.Sleep,
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Load reads the record named key into out. It returns false when no record
// exists. A payload that fails to decode returns ErrCorrupt; out is left
// untouched in that case.
func (s *Store) Load(key string, out any) (bool, error) {
	var record Record
	result := s.db.Where("key = ?", key).First(&record)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if result.Error != nil {
		s.logger.Error("failed to read record", zap.String("key", key), zap.Error(result.Error))
		return false, result.Error
	}

	if err := json.Unmarshal([]byte(record.Payload), out); err != nil {
		s.logger.Error("failed to decode record", zap.String("key", key), zap.Error(err))
		return true, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}

	return true, nil
}

// Save encodes v and writes it through to the record named key before
// returning. After maxWriteAttempts failures the write is parked on the
// deferred queue and the last error is returned.
func (s *Store) Save(key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", key, err)
	}

	err = s.writeWithRetry(key, string(payload))
	if err != nil {
		s.mu.Lock()
		s.deferred = append(s.deferred, deferredWrite{key: key, payload: string(payload)})
		s.mu.Unlock()
		s.logger.Warn("write deferred after repeated failures",
			zap.String("key", key), zap.Error(err))
	}
	return err
}

func (s *Store) writeWithRetry(key, payload string) error {
	var lastErr error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		if attempt > 0 {
			s.sleep(baseRetryDelay << (attempt - 1))
		}

		lastErr = s.writeOnce(key, payload)
		if lastErr == nil {
			return nil
		}
		s.logger.Warn("record write failed",
			zap.String("key", key), zap.Int("attempt", attempt+1), zap.Error(lastErr))
	}
	return lastErr
}

func (s *Store) writeOnce(key, payload string) error {
	var record Record
	result := s.db.Where("key = ?", key).First(&record)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		record = Record{Key: key, Payload: payload}
		return s.db.Create(&record).Error
	}
	if result.Error != nil {
		return result.Error
	}

	record.Payload = payload
	return s.db.Save(&record).Error
}

// FlushDeferred retries every parked write once, keeping the ones that still
// fail. It returns how many writes remain deferred.
func (s *Store) FlushDeferred() int {
	s.mu.Lock()
	pending := s.deferred
	s.deferred = nil
	s.mu.Unlock()

	var remaining []deferredWrite
	for _, w := range pending {
		if err := s.writeOnce(w.key, w.payload); err != nil {
			remaining = append(remaining, w)
			s.logger.Warn("deferred write still failing", zap.String("key", w.key), zap.Error(err))
		} else {
			s.logger.Info("deferred write flushed", zap.String("key", w.key))
		}
	}

	s.mu.Lock()
	s.deferred = append(remaining, s.deferred...)
	n := len(s.deferred)
	s.mu.Unlock()
	return n
}

// DeferredCount reports how many writes are waiting for a retry.
func (s *Store) DeferredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deferred)
}
