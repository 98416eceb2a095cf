package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/hogarlink/hogar/internal/snapshot/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, snap *domain.SensorSnapshot) error {
	return db.WithContext(ctx).Create(snap).Error
}

func (r *repo) FindNewest(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, deviceID string) (*domain.SensorSnapshot, error) {
	var snap domain.SensorSnapshot
	err := db.WithContext(ctx).
		Where("owner_id = ? AND device_id = ?", ownerID, deviceID).
		Order("observed_at desc, id desc").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.SensorSnapshot, error) {
	var snap domain.SensorSnapshot
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.SensorSnapshot, error) {
	return r.list(ctx, db)
}

func (r *repo) ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]*domain.SensorSnapshot, error) {
	return r.list(ctx, db, "owner_id = ?", ownerID)
}

func (r *repo) ListByDevice(ctx context.Context, db *gorm.DB, deviceID string) ([]*domain.SensorSnapshot, error) {
	return r.list(ctx, db, "device_id = ?", deviceID)
}

func (r *repo) ListNewestFirst(ctx context.Context, db *gorm.DB) ([]*domain.SensorSnapshot, error) {
	return r.list(ctx, db)
}

func (r *repo) list(ctx context.Context, db *gorm.DB, conds ...interface{}) ([]*domain.SensorSnapshot, error) {
	stmt := db.WithContext(ctx).Model(&domain.SensorSnapshot{})
	if len(conds) > 0 {
		stmt = stmt.Where(conds[0], conds[1:]...)
	}

	var snaps []*domain.SensorSnapshot
	err := stmt.
		Order("observed_at desc, id desc").
		Find(&snaps).Error
	if err != nil {
		return nil, err
	}
	return snaps, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, snap *domain.SensorSnapshot) error {
	return db.WithContext(ctx).Save(snap).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.SensorSnapshot{}).Error
}

func (r *repo) DeleteByDevice(ctx context.Context, db *gorm.DB, deviceID string) (int64, error) {
	res := db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Delete(&domain.SensorSnapshot{})
	return res.RowsAffected, res.Error
}
