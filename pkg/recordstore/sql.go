package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

// Record is one stored item: the logical table it belongs to, its key, and
// the item encoded as JSON.
type Record struct {
	Collection string `gorm:"primaryKey;size:128"`
	ItemKey    string `gorm:"primaryKey;size:191"`
	Body       string `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Record) TableName() string { return "records" }

// SQLStore keeps items in a relational database through GORM.
type SQLStore struct {
	db     *gorm.DB
	schema Schema
}

// NewSQLStore returns a store backed by db. Call Migrate before first use.
func NewSQLStore(db *gorm.DB, schema Schema) *SQLStore {
	return &SQLStore{db: db, schema: schema}
}

// Migrate creates the records table.
func (s *SQLStore) Migrate() error {
	if err := s.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("recordstore/sql: migrate: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, table, key string, dest any) (found bool, err error) {
	defer metrics.ObserveStore("sql", "get", table, time.Now(), &err)

	if _, err = s.schema.KeyAttr(table); err != nil {
		return false, err
	}

	var rec Record
	err = s.db.WithContext(ctx).
		Where(&Record{Collection: table, ItemKey: key}).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("recordstore/sql: get %s: %w", table, err)
	}

	if err = json.Unmarshal([]byte(rec.Body), dest); err != nil {
		return false, fmt.Errorf("recordstore/sql: get %s: %w", table, err)
	}
	return true, nil
}

func (s *SQLStore) Put(ctx context.Context, table string, item any) (err error) {
	defer metrics.ObserveStore("sql", "put", table, time.Now(), &err)

	key, body, err := s.schema.keyOf(table, item)
	if err != nil {
		return err
	}

	rec := Record{Collection: table, ItemKey: key, Body: string(body)}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "item_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("recordstore/sql: put %s: %w", table, err)
	}
	return nil
}

func (s *SQLStore) Scan(ctx context.Context, table string, dest any) (err error) {
	defer metrics.ObserveStore("sql", "scan", table, time.Now(), &err)

	if _, err = s.schema.KeyAttr(table); err != nil {
		return err
	}

	var recs []Record
	err = s.db.WithContext(ctx).
		Where(&Record{Collection: table}).
		Order("created_at").
		Find(&recs).Error
	if err != nil {
		return fmt.Errorf("recordstore/sql: scan %s: %w", table, err)
	}

	bodies := make([][]byte, len(recs))
	for i, r := range recs {
		bodies[i] = []byte(r.Body)
	}
	if err = decodeBodies(bodies, dest); err != nil {
		return fmt.Errorf("recordstore/sql: scan %s: %w", table, err)
	}
	return nil
}
