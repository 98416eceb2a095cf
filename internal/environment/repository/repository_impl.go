package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/hogarlink/hogar/internal/environment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, env *domain.Environment) error {
	return db.WithContext(ctx).Create(env).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Environment, error) {
	var env domain.Environment
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&env).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &env, nil
}

func (r *repo) FindForOwner(ctx context.Context, db *gorm.DB, id, ownerID snowflake.ID) (*domain.Environment, error) {
	var env domain.Environment
	err := db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&env).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &env, nil
}

func (r *repo) FindOldestByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (*domain.Environment, error) {
	var env domain.Environment
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at asc, id asc").
		First(&env).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &env, nil
}

func (r *repo) ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]*domain.Environment, error) {
	var envs []*domain.Environment
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at asc, id asc").
		Find(&envs).Error
	if err != nil {
		return nil, err
	}
	return envs, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]*domain.Environment, error) {
	var envs []*domain.Environment
	err := db.WithContext(ctx).
		Order("created_at asc, id asc").
		Find(&envs).Error
	if err != nil {
		return nil, err
	}
	return envs, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, env *domain.Environment) error {
	return db.WithContext(ctx).Save(env).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Environment{}).Error
}
