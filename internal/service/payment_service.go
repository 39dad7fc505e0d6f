package service

import (
	"context"
	"fmt"
	"time"

	"propertyhub/internal/authz"
	"propertyhub/internal/model"
	"propertyhub/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type RecordPaymentRequest struct {
	TenantID    string `json:"tenant_id" binding:"required"`
	PropertyID  string `json:"property_id" binding:"required"`
	PaymentType string `json:"payment_type" binding:"required,oneof=RENT DEPOSIT"`
	Amount      string `json:"amount" binding:"required"`
	Note        string `json:"note"`
}

type PaymentResponse struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	PropertyID  string `json:"property_id"`
	PaymentType string `json:"payment_type"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	Reference   string `json:"reference"`
	Note        string `json:"note"`
	PaidAt      string `json:"paid_at"`
}

// --- Interface ---

// PaymentService records rent and deposit payments. Refunds are deliberately
// absent here: a refund row only exists as the side effect of an approved
// refund_approval request.
type PaymentService interface {
	RecordPayment(ctx context.Context, actor Actor, req RecordPaymentRequest) (*PaymentResponse, error)
	ListPayments(ctx context.Context, tenantID, paymentType string, page, limit int) ([]PaymentResponse, int64, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	txManager   repository.TransactionManager
}

func NewPaymentService(paymentRepo repository.PaymentRepository, txManager repository.TransactionManager) PaymentService {
	return &paymentService{paymentRepo: paymentRepo, txManager: txManager}
}

// --- Implementation ---

func (s *paymentService) RecordPayment(ctx context.Context, actor Actor, req RecordPaymentRequest) (*PaymentResponse, error) {
	if !authz.NewChecker(actor.Role).Has(authz.ManagePayments) {
		return nil, ErrPermissionDenied
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant_id: %w", err)
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("invalid property_id: %w", err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be positive, got %s", amount)
	}

	recordedBy := actor.UserID
	payment := model.Payment{
		TenantID:    tenantID,
		PropertyID:  propertyID,
		PaymentType: req.PaymentType,
		Amount:      amount,
		Status:      model.PaymentStatusPaid,
		Note:        req.Note,
		RecordedBy:  &recordedBy,
		PaidAt:      time.Now(),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		reference, refErr := s.paymentRepo.NextReference(txCtx)
		if refErr != nil {
			return fmt.Errorf("failed to generate payment reference: %w", refErr)
		}
		payment.Reference = reference

		if createErr := s.paymentRepo.Create(txCtx, &payment); createErr != nil {
			return fmt.Errorf("failed to record payment: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toPaymentResponse(payment)
	return &resp, nil
}

func (s *paymentService) ListPayments(ctx context.Context, tenantID, paymentType string, page, limit int) ([]PaymentResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var tenantFilter *uuid.UUID
	if tenantID != "" {
		parsed, err := uuid.Parse(tenantID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid tenant_id: %w", err)
		}
		tenantFilter = &parsed
	}

	payments, total, err := s.paymentRepo.List(ctx, tenantFilter, paymentType, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}

	result := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, toPaymentResponse(p))
	}
	return result, total, nil
}

func toPaymentResponse(p model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID.String(),
		TenantID:    p.TenantID.String(),
		PropertyID:  p.PropertyID.String(),
		PaymentType: p.PaymentType,
		Amount:      p.Amount.StringFixed(2),
		Status:      p.Status,
		Reference:   p.Reference,
		Note:        p.Note,
		PaidAt:      p.PaidAt.Format(time.RFC3339),
	}
}
