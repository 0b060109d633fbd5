package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// FailedBatch describes a batch whose handler returned an error.
type FailedBatch struct {
	Driver     string
	MessageIDs []string
	Bodies     []string
	Err        string
	FailedAt   time.Time
}

// FailedStore records failed batches.
type FailedStore interface {
	Record(ctx context.Context, fb FailedBatch) error
	List(ctx context.Context) ([]FailedBatch, error)
}

// MemoryFailedStore keeps failed batches in process memory.
type MemoryFailedStore struct {
	mu     sync.RWMutex
	failed []FailedBatch
}

func NewMemoryFailedStore() *MemoryFailedStore { return &MemoryFailedStore{} }

func (s *MemoryFailedStore) Record(_ context.Context, fb FailedBatch) error {
	s.mu.Lock()
	s.failed = append(s.failed, fb)
	s.mu.Unlock()
	return nil
}

// List returns a snapshot.
func (s *MemoryFailedStore) List(context.Context) ([]FailedBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FailedBatch, len(s.failed))
	copy(out, s.failed)
	return out, nil
}

// FailedBatchRecord is the GORM model behind the failed_batches table.
type FailedBatchRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	Driver     string    `gorm:"size:32;not null;index"`
	MessageIDs string    `gorm:"type:text;not null"`
	Bodies     string    `gorm:"type:text;not null"`
	Error      string    `gorm:"type:text"`
	FailedAt   time.Time `gorm:"autoCreateTime"`
}

func (FailedBatchRecord) TableName() string { return "failed_batches" }

// GormFailedStore persists failed batches to a SQL database.
type GormFailedStore struct {
	db *gorm.DB
}

// NewGormFailedStore creates the failed_batches table if needed.
func NewGormFailedStore(db *gorm.DB) (*GormFailedStore, error) {
	if err := db.AutoMigrate(&FailedBatchRecord{}); err != nil {
		return nil, fmt.Errorf("queue: migrate failed_batches: %w", err)
	}
	return &GormFailedStore{db: db}, nil
}

func (s *GormFailedStore) Record(ctx context.Context, fb FailedBatch) error {
	ids, err := json.Marshal(fb.MessageIDs)
	if err != nil {
		return fmt.Errorf("queue: encode message ids: %w", err)
	}
	bodies, err := json.Marshal(fb.Bodies)
	if err != nil {
		return fmt.Errorf("queue: encode bodies: %w", err)
	}

	rec := FailedBatchRecord{
		Driver:     fb.Driver,
		MessageIDs: string(ids),
		Bodies:     string(bodies),
		Error:      fb.Err,
		FailedAt:   fb.FailedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("queue: record failed batch: %w", err)
	}
	return nil
}

func (s *GormFailedStore) List(ctx context.Context) ([]FailedBatch, error) {
	var recs []FailedBatchRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("queue: list failed batches: %w", err)
	}

	out := make([]FailedBatch, 0, len(recs))
	for _, r := range recs {
		fb := FailedBatch{Driver: r.Driver, Err: r.Error, FailedAt: r.FailedAt}
		_ = json.Unmarshal([]byte(r.MessageIDs), &fb.MessageIDs)
		_ = json.Unmarshal([]byte(r.Bodies), &fb.Bodies)
		out = append(out, fb)
	}
	return out, nil
}
