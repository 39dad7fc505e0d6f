package repository

import (
	"context"

	"propertyhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *model.Property) error
	Update(ctx context.Context, property *model.Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Property, error)
	List(ctx context.Context, status, search string, page, limit int) ([]model.Property, int64, error)
	Count(ctx context.Context) (int64, error)
}

type propertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) Create(ctx context.Context, property *model.Property) error {
	return GetDB(ctx, r.db).Create(property).Error
}

func (r *propertyRepository) Update(ctx context.Context, property *model.Property) error {
	return GetDB(ctx, r.db).Save(property).Error
}

func (r *propertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Property{}).Error
}

func (r *propertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	var property model.Property
	if err := GetDB(ctx, r.db).Preload("Manager").First(&property, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) List(ctx context.Context, status, search string, page, limit int) ([]model.Property, int64, error) {
	var properties []model.Property
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Property{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("name ILIKE ? OR address ILIKE ? OR city ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Model(&model.Property{}).Preload("Manager")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if search != "" {
		fetchQuery = fetchQuery.Where("name ILIKE ? OR address ILIKE ? OR city ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&properties).Error; err != nil {
		return nil, 0, err
	}

	return properties, total, nil
}

func (r *propertyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Property{}).Count(&count).Error
	return count, err
}
