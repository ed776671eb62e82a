package database

import (
	"context"
	"database/sql"
	"doghouse/models"
	"fmt"

	"gorm.io/gorm"
)

const seedBatchSize = 100

// Conn is a single checked-out storage connection owned by one request.
type Conn struct {
	db  *gorm.DB
	raw *sql.Conn
}

// Close returns the connection to the pool.
func (c *Conn) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// EnsureSchema creates the dogs table when it does not exist yet.
func (c *Conn) EnsureSchema(ctx context.Context) error {
	m := c.db.WithContext(ctx).Migrator()
	if m.HasTable(&models.Dog{}) {
		return nil
	}
	if err := m.CreateTable(&models.Dog{}); err != nil {
		// Another request may have created it first.
		if m.HasTable(&models.Dog{}) {
			return nil
		}
		return fmt.Errorf("failed to create dogs table: %w", err)
	}
	return nil
}

// FetchRandom returns one row picked by the database, or nil when the table is empty.
func (c *Conn) FetchRandom(ctx context.Context) (*models.Dog, error) {
	var dogs []models.Dog
	if err := c.db.WithContext(ctx).Order("random()").Limit(1).Find(&dogs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch random dog: %w", err)
	}
	if len(dogs) == 0 {
		return nil, nil
	}
	return &dogs[0], nil
}

// Insert appends one row and commits. On failure the transaction is rolled
// back and the returned error wraps ErrWrite.
func (c *Conn) Insert(ctx context.Context, name, image *string) (*models.Dog, error) {
	tx := c.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", ErrWrite, tx.Error)
	}

	dog := models.Dog{Name: name, Image: image}
	if err := tx.Create(&dog).Error; err != nil {
		// Best effort; the insert error is what the caller needs.
		_ = tx.Rollback().Error
		return nil, fmt.Errorf("%w: failed to insert dog: %v", ErrWrite, err)
	}
	if err := tx.Commit().Error; err != nil {
		_ = tx.Rollback().Error
		return nil, fmt.Errorf("%w: failed to commit dog: %v", ErrWrite, err)
	}
	return &dog, nil
}

// ListItems returns every row, newest id first.
func (c *Conn) ListItems(ctx context.Context) ([]models.Dog, error) {
	dogs := []models.Dog{}
	if err := c.db.WithContext(ctx).Order("id desc").Find(&dogs).Error; err != nil {
		return nil, fmt.Errorf("failed to list dogs: %w", err)
	}
	return dogs, nil
}

// SeedIfEmpty bulk-inserts items when the table has no rows. Items are
// normalized first and those with neither name nor image are dropped. It
// reports whether anything was inserted.
func (c *Conn) SeedIfEmpty(ctx context.Context, items []models.Dog) (bool, error) {
	payload := make([]models.Dog, 0, len(items))
	for _, item := range items {
		dog := models.Dog{Name: item.Name, Image: item.Image}.Normalized()
		if dog.Empty() {
			continue
		}
		payload = append(payload, dog)
	}
	if len(payload) == 0 {
		return false, nil
	}

	seeded := false
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialize concurrent seeders so only one sees an empty table.
		if tx.Dialector.Name() == DriverPostgres {
			if err := tx.Exec("LOCK TABLE dogs IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return err
			}
		}

		var probe []models.Dog
		if err := tx.Select("id").Limit(1).Find(&probe).Error; err != nil {
			return err
		}
		if len(probe) > 0 {
			return nil
		}

		if err := tx.CreateInBatches(&payload, seedBatchSize).Error; err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed dogs: %w", err)
	}
	return seeded, nil
}
