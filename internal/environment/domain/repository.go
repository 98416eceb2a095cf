package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, env *Environment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Environment, error)
	FindForOwner(ctx context.Context, db *gorm.DB, id, ownerID snowflake.ID) (*Environment, error)
	// FindOldestByOwner returns the owner's first environment by creation
	// time; device state projection is pinned to it.
	FindOldestByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (*Environment, error)
	ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]*Environment, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]*Environment, error)
	Update(ctx context.Context, db *gorm.DB, env *Environment) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
