package repository

import (
	"context"

	"propertyhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaintenanceRepository interface {
	Create(ctx context.Context, req *model.MaintenanceRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MaintenanceRequest, error)
	List(ctx context.Context, propertyID *uuid.UUID, status string, page, limit int) ([]model.MaintenanceRequest, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Assign(ctx context.Context, id, technicianID uuid.UUID) error
}

type maintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) Create(ctx context.Context, req *model.MaintenanceRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *maintenanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.MaintenanceRequest, error) {
	var req model.MaintenanceRequest
	if err := GetDB(ctx, r.db).Preload("Tenant").Preload("Technician").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *maintenanceRepository) List(ctx context.Context, propertyID *uuid.UUID, status string, page, limit int) ([]model.MaintenanceRequest, int64, error) {
	var reqs []model.MaintenanceRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.MaintenanceRequest{})
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
	fetchQuery := db.Preload("Tenant").Preload("Technician")
	if propertyID != nil {
		fetchQuery = fetchQuery.Where("property_id = ?", *propertyID)
	}
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}

func (r *maintenanceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.MaintenanceRequest{}).
		Where("id = ?", id).Update("status", status).Error
}

func (r *maintenanceRepository) Assign(ctx context.Context, id, technicianID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.MaintenanceRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"assigned_to": technicianID,
			"status":      model.MaintenanceStatusInProgress,
		}).Error
}
