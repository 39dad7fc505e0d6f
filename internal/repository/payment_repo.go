package repository

import (
	"context"
	"fmt"
	"time"

	"propertyhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, tenantID *uuid.UUID, paymentType string, page, limit int) ([]model.Payment, int64, error)
	SumByType(ctx context.Context, paymentType string, from, to time.Time) (decimal.Decimal, error)
	NextReference(ctx context.Context) (string, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).Preload("Tenant").First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) List(ctx context.Context, tenantID *uuid.UUID, paymentType string, page, limit int) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Payment{})
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	}
	if paymentType != "" {
		query = query.Where("payment_type = ?", paymentType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Tenant")
	if tenantID != nil {
		fetchQuery = fetchQuery.Where("tenant_id = ?", *tenantID)
	}
	if paymentType != "" {
		fetchQuery = fetchQuery.Where("payment_type = ?", paymentType)
	}
	if err := fetchQuery.Order("paid_at DESC").Offset(offset).Limit(limit).Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *paymentRepository) SumByType(ctx context.Context, paymentType string, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("payment_type = ? AND paid_at >= ? AND paid_at <= ?", paymentType, from, to).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *paymentRepository) NextReference(ctx context.Context) (string, error) {
	db := GetDB(ctx, r.db)
	today := time.Now().Format("20060102")
	prefix := "PAY-" + today + "-"

	// Advisory lock prevents concurrent duplicate references within a day
	db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix)

	var count int64
	if err := db.Model(&model.Payment{}).
		Where("reference LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}
