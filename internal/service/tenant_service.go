package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"propertyhub/internal/model"
	"propertyhub/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateTenantRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	PropertyID  string `json:"property_id" binding:"required"`
	UnitNumber  string `json:"unit_number" binding:"required"`
	MonthlyRent string `json:"monthly_rent" binding:"required"`
	LeaseStart  string `json:"lease_start"` // RFC3339 date
	LeaseEnd    string `json:"lease_end"`
}

type TenantResponse struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	Username     string  `json:"username"`
	PropertyID   string  `json:"property_id"`
	PropertyName string  `json:"property_name"`
	UnitNumber   string  `json:"unit_number"`
	MonthlyRent  string  `json:"monthly_rent"`
	Status       string  `json:"status"`
	LeaseStart   *string `json:"lease_start"`
	LeaseEnd     *string `json:"lease_end"`
	CreatedAt    string  `json:"created_at"`
}

// --- Interface ---

type TenantService interface {
	CreateTenant(ctx context.Context, actor Actor, req CreateTenantRequest) (*TenantResponse, error)
	GetTenant(ctx context.Context, id string) (*TenantResponse, error)
	ListTenants(ctx context.Context, propertyID, status string, page, limit int) ([]TenantResponse, int64, error)
}

type tenantService struct {
	tenantRepo repository.TenantRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewTenantService(
	tenantRepo repository.TenantRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) TenantService {
	return &tenantService{
		tenantRepo: tenantRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
	}
}

// --- Implementation ---

// CreateTenant records a lease application. The record starts PENDING and
// only becomes ACTIVE through an approved lease_approval request.
func (s *tenantService) CreateTenant(ctx context.Context, actor Actor, req CreateTenantRequest) (*TenantResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id: %w", err)
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("invalid property_id: %w", err)
	}
	rent, err := decimal.NewFromString(req.MonthlyRent)
	if err != nil {
		return nil, fmt.Errorf("invalid monthly_rent: %w", err)
	}

	tenant := model.Tenant{
		UserID:      userID,
		PropertyID:  propertyID,
		UnitNumber:  req.UnitNumber,
		MonthlyRent: rent,
		Status:      model.TenantStatusPending,
	}

	if req.LeaseStart != "" {
		start, parseErr := time.Parse(time.RFC3339, req.LeaseStart)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid lease_start: %w", parseErr)
		}
		tenant.LeaseStart = &start
	}
	if req.LeaseEnd != "" {
		end, parseErr := time.Parse(time.RFC3339, req.LeaseEnd)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid lease_end: %w", parseErr)
		}
		tenant.LeaseEnd = &end
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.tenantRepo.Create(txCtx, &tenant); createErr != nil {
			return fmt.Errorf("failed to create tenant: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"property_id": req.PropertyID,
			"unit_number": req.UnitNumber,
		})
		entry := model.AuditLog{
			UserID:     &actor.UserID,
			Action:     model.ActionCreateTenant,
			EntityID:   tenant.ID.String(),
			EntityName: req.UnitNumber,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Create(txCtx, &entry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTenant(ctx, tenant.ID.String())
}

func (s *tenantService) GetTenant(ctx context.Context, id string) (*TenantResponse, error) {
	tenantID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant id: %w", err)
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("tenant not found: %w", err)
	}

	resp := toTenantResponse(*tenant)
	return &resp, nil
}

func (s *tenantService) ListTenants(ctx context.Context, propertyID, status string, page, limit int) ([]TenantResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var propertyFilter *uuid.UUID
	if propertyID != "" {
		parsed, err := uuid.Parse(propertyID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid property_id: %w", err)
		}
		propertyFilter = &parsed
	}

	tenants, total, err := s.tenantRepo.List(ctx, propertyFilter, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tenants: %w", err)
	}

	result := make([]TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		result = append(result, toTenantResponse(t))
	}
	return result, total, nil
}

func toTenantResponse(t model.Tenant) TenantResponse {
	resp := TenantResponse{
		ID:          t.ID.String(),
		UserID:      t.UserID.String(),
		PropertyID:  t.PropertyID.String(),
		UnitNumber:  t.UnitNumber,
		MonthlyRent: t.MonthlyRent.StringFixed(2),
		Status:      t.Status,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.User != nil {
		resp.Username = t.User.Username
	}
	if t.Property != nil {
		resp.PropertyName = t.Property.Name
	}
	if t.LeaseStart != nil {
		v := t.LeaseStart.Format(time.RFC3339)
		resp.LeaseStart = &v
	}
	if t.LeaseEnd != nil {
		v := t.LeaseEnd.Format(time.RFC3339)
		resp.LeaseEnd = &v
	}
	return resp
}
