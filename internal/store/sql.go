package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dbmodel/internal/errors"
	"dbmodel/internal/model"
)

// documentRow is one stored document.
type documentRow struct {
	Type      string `gorm:"primaryKey;size:64"`
	ID        string `gorm:"primaryKey;size:191"`
	Body      []byte `gorm:"type:json;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (documentRow) TableName() string { return "documents" }

// indexRow maps a secondary key value to a document.
type indexRow struct {
	Type      string `gorm:"primaryKey;size:64"`
	Attribute string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"primaryKey;size:191"`
	ID        string `gorm:"size:191;not null;index"`
}

func (indexRow) TableName() string { return "document_indexes" }

type sqlStore struct {
	db *gorm.DB
}

// NewSQL builds a GORM-backed store. The DB should be opened with
// TranslateError so duplicate keys surface as gorm.ErrDuplicatedKey.
func NewSQL(db *gorm.DB) Store {
	return &sqlStore{db: db}
}

// Migrate creates or updates the document tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&documentRow{}, &indexRow{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// rowID is the key without its type, which has its own column.
func rowID(k model.Key) string {
	if k.Sort == "" {
		return k.Partition
	}
	return k.Partition + "#" + k.Sort
}

func indexRows(typ, id string, indexes map[string]string) []indexRow {
	rows := make([]indexRow, 0, len(indexes))
	for attr, v := range indexes {
		rows = append(rows, indexRow{Type: typ, Attribute: attr, Value: v, ID: id})
	}
	return rows
}

func duplicate(err error, key model.Key) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", errors.ErrRecordExists, key)
	}
	return err
}

func notFound(err error, key model.Key) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", errors.ErrRecordNotFound, key)
	}
	return err
}

func (s *sqlStore) Create(ctx context.Context, doc Document) error {
	id := rowID(doc.Key)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := documentRow{Type: doc.Key.Type, ID: id, Body: doc.Body}
		if err := tx.Create(&row).Error; err != nil {
			return duplicate(err, doc.Key)
		}
		if rows := indexRows(doc.Key.Type, id, doc.Indexes); len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return duplicate(err, doc.Key)
			}
		}
		return nil
	})
}

func (s *sqlStore) Merge(ctx context.Context, key model.Key, changes model.Entry, indexes map[string]string) (json.RawMessage, error) {
	id := rowID(key)
	var merged json.RawMessage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row documentRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("type = ? AND id = ?", key.Type, id).First(&row).Error; err != nil {
			return notFound(err, key)
		}

		var err error
		if merged, err = merge(row.Body, changes); err != nil {
			return err
		}
		if err := tx.Model(&documentRow{}).
			Where("type = ? AND id = ?", key.Type, id).
			Update("body", []byte(merged)).Error; err != nil {
			return err
		}

		if len(indexes) == 0 {
			return nil
		}
		attrs := make([]string, 0, len(indexes))
		for attr := range indexes {
			attrs = append(attrs, attr)
		}
		if err := tx.Where("type = ? AND id = ? AND attribute IN ?", key.Type, id, attrs).
			Delete(&indexRow{}).Error; err != nil {
			return err
		}
		rows := indexRows(key.Type, id, indexes)
		if err := tx.Create(&rows).Error; err != nil {
			return duplicate(err, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *sqlStore) Get(ctx context.Context, key model.Key) (json.RawMessage, error) {
	var row documentRow
	if err := s.db.WithContext(ctx).
		Where("type = ? AND id = ?", key.Type, rowID(key)).First(&row).Error; err != nil {
		return nil, notFound(err, key)
	}
	return row.Body, nil
}

func (s *sqlStore) Delete(ctx context.Context, key model.Key) error {
	id := rowID(key)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("type = ? AND id = ?", key.Type, id).Delete(&indexRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("type = ? AND id = ?", key.Type, id).Delete(&documentRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", errors.ErrRecordNotFound, key)
		}
		return nil
	})
}

func (s *sqlStore) List(ctx context.Context, typ string) ([]json.RawMessage, error) {
	var rows []documentRow
	if err := s.db.WithContext(ctx).Where("type = ?", typ).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", typ, err)
	}
	out := make([]json.RawMessage, len(rows))
	for i, row := range rows {
		out[i] = row.Body
	}
	return out, nil
}

func (s *sqlStore) Lookup(ctx context.Context, typ, attribute, value string) (json.RawMessage, error) {
	var idx indexRow
	err := s.db.WithContext(ctx).
		Where("type = ? AND attribute = ? AND value = ?", typ, attribute, value).First(&idx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s %s=%s", errors.ErrRecordNotFound, typ, attribute, value)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", typ, err)
	}

	var row documentRow
	if err := s.db.WithContext(ctx).
		Where("type = ? AND id = ?", typ, idx.ID).First(&row).Error; err != nil {
		return nil, notFound(err, model.Key{Type: typ, Partition: idx.ID})
	}
	return row.Body, nil
}

func (s *sqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
