package service

import (
	"context"
	"time"

	"propertyhub/internal/model"
	"propertyhub/internal/repository"
)

// DashboardResponse feeds the portfolio analytics tiles.
type DashboardResponse struct {
	TimeRangeStartDate time.Time `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time `json:"time_range_end_date"`
	TotalProperties    int64     `json:"total_properties"`
	ActiveTenants      int64     `json:"active_tenants"`
	PendingTenants     int64     `json:"pending_tenants"`
	RentCollected      string    `json:"rent_collected"`
	Refunded           string    `json:"refunded"`
	NetIncome          string    `json:"net_income"`
	PendingApprovals   int64     `json:"pending_approvals"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context, startDate, endDate time.Time) (DashboardResponse, error)
}

type dashboardService struct {
	propertyRepo repository.PropertyRepository
	tenantRepo   repository.TenantRepository
	paymentRepo  repository.PaymentRepository
	approvalRepo repository.ApprovalRepository
}

func NewDashboardService(
	propertyRepo repository.PropertyRepository,
	tenantRepo repository.TenantRepository,
	paymentRepo repository.PaymentRepository,
	approvalRepo repository.ApprovalRepository,
) DashboardService {
	return &dashboardService{
		propertyRepo: propertyRepo,
		tenantRepo:   tenantRepo,
		paymentRepo:  paymentRepo,
		approvalRepo: approvalRepo,
	}
}

// GetDashboard aggregates portfolio metrics bounded to a time bracket.
// Refund rows carry negative amounts, so net income is a plain sum.
func (s *dashboardService) GetDashboard(ctx context.Context, startDate, endDate time.Time) (DashboardResponse, error) {
	response := DashboardResponse{
		TimeRangeStartDate: startDate,
		TimeRangeEndDate:   endDate,
	}

	totalProperties, err := s.propertyRepo.Count(ctx)
	if err != nil {
		return response, err
	}
	response.TotalProperties = totalProperties

	activeTenants, err := s.tenantRepo.CountByStatus(ctx, model.TenantStatusActive)
	if err != nil {
		return response, err
	}
	response.ActiveTenants = activeTenants

	pendingTenants, err := s.tenantRepo.CountByStatus(ctx, model.TenantStatusPending)
	if err != nil {
		return response, err
	}
	response.PendingTenants = pendingTenants

	rent, err := s.paymentRepo.SumByType(ctx, model.PaymentTypeRent, startDate, endDate)
	if err != nil {
		return response, err
	}
	refunded, err := s.paymentRepo.SumByType(ctx, model.PaymentTypeRefund, startDate, endDate)
	if err != nil {
		return response, err
	}
	response.RentCollected = rent.StringFixed(2)
	response.Refunded = refunded.Abs().StringFixed(2)
	response.NetIncome = rent.Add(refunded).StringFixed(2)

	pendingApprovals, err := s.approvalRepo.CountPending(ctx)
	if err != nil {
		return response, err
	}
	response.PendingApprovals = pendingApprovals

	return response, nil
}
