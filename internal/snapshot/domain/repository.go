package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, snap *SensorSnapshot) error
	// FindNewest returns the most recently observed snapshot for the
	// (owner, device) pair; historical rows may exist behind it.
	FindNewest(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, deviceID string) (*SensorSnapshot, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SensorSnapshot, error)
	List(ctx context.Context, db *gorm.DB) ([]*SensorSnapshot, error)
	ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]*SensorSnapshot, error)
	ListByDevice(ctx context.Context, db *gorm.DB, deviceID string) ([]*SensorSnapshot, error)
	ListNewestFirst(ctx context.Context, db *gorm.DB) ([]*SensorSnapshot, error)
	Update(ctx context.Context, db *gorm.DB, snap *SensorSnapshot) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	DeleteByDevice(ctx context.Context, db *gorm.DB, deviceID string) (int64, error)
}
