package repository

import (
	"context"

	"propertyhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	Update(ctx context.Context, tenant *model.Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	List(ctx context.Context, propertyID *uuid.UUID, status string, page, limit int) ([]model.Tenant, int64, error)
	// UpdateStatus is used by approval side effects; it only touches the
	// status column so concurrent lease edits are not clobbered.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type tenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(ctx context.Context, tenant *model.Tenant) error {
	return GetDB(ctx, r.db).Create(tenant).Error
}

func (r *tenantRepository) Update(ctx context.Context, tenant *model.Tenant) error {
	return GetDB(ctx, r.db).Save(tenant).Error
}

func (r *tenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := GetDB(ctx, r.db).Preload("User").Preload("Property").First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) List(ctx context.Context, propertyID *uuid.UUID, status string, page, limit int) ([]model.Tenant, int64, error) {
	var tenants []model.Tenant
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Tenant{})
	if propertyID != nil {
		query = query.Where("property_id = ?", *propertyID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("User").Preload("Property")
	if propertyID != nil {
		fetchQuery = fetchQuery.Where("property_id = ?", *propertyID)
	}
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tenants).Error; err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

func (r *tenantRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Tenant{}).
		Where("id = ?", id).Update("status", status).Error
}

func (r *tenantRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Tenant{}).
		Where("status = ?", status).Count(&count).Error
	return count, err
}
