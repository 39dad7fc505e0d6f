package repository

import (
	"context"
	"time"

	"propertyhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalFilter narrows List results. Zero values mean "no constraint".
type ApprovalFilter struct {
	Status      string
	RequestType string
	Page        int
	Limit       int
}

// Decision carries the reviewer fields for the pending -> decided update.
type Decision struct {
	Status     string
	ReviewedBy uuid.UUID
	ReviewedAt time.Time
	Notes      string
}

type ApprovalRepository interface {
	Create(ctx context.Context, req *model.ApprovalRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	List(ctx context.Context, filter ApprovalFilter) ([]model.ApprovalRequest, int64, error)
	ListAll(ctx context.Context) ([]model.ApprovalRequest, error)
	// ApplyDecision atomically moves a request out of pending. The WHERE
	// clause doubles as the compare-and-set: if another reviewer got there
	// first, zero rows match and the call reports false with no mutation.
	ApplyDecision(ctx context.Context, id uuid.UUID, d Decision) (bool, error)
	// CountPending counts every undecided request, including legacy
	// in_review rows, so the badge agrees with the stats pending bucket.
	CountPending(ctx context.Context) (int64, error)
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, req *model.ApprovalRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *approvalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *approvalRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	if err := GetDB(ctx, r.db).Preload("Requester").Preload("Reviewer").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *approvalRepository) List(ctx context.Context, filter ApprovalFilter) ([]model.ApprovalRequest, int64, error) {
	var requests []model.ApprovalRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.ApprovalRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequestType != "" {
		query = query.Where("request_type = ?", filter.RequestType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := db.Preload("Requester").Preload("Reviewer")
	if filter.Status != "" {
		fetchQuery = fetchQuery.Where("status = ?", filter.Status)
	}
	if filter.RequestType != "" {
		fetchQuery = fetchQuery.Where("request_type = ?", filter.RequestType)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *approvalRepository) ListAll(ctx context.Context) ([]model.ApprovalRequest, error) {
	var requests []model.ApprovalRequest
	if err := GetDB(ctx, r.db).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *approvalRepository) ApplyDecision(ctx context.Context, id uuid.UUID, d Decision) (bool, error) {
	updates := map[string]interface{}{
		"status":      d.Status,
		"reviewed_by": d.ReviewedBy,
		"reviewed_at": d.ReviewedAt,
	}
	if d.Notes != "" {
		updates["notes"] = d.Notes
	}

	res := GetDB(ctx, r.db).Model(&model.ApprovalRequest{}).
		Where("id = ? AND status = ?", id, model.ApprovalPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *approvalRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ApprovalRequest{}).
		Where("status IN ?", []string{model.ApprovalPending, model.ApprovalInReview}).
		Count(&count).Error
	return count, err
}
