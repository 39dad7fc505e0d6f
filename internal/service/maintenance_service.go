package service

import (
	"context"
	"fmt"
	"time"

	"propertyhub/internal/authz"
	"propertyhub/internal/model"
	"propertyhub/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateMaintenanceRequest struct {
	TenantID    string `json:"tenant_id" binding:"required"`
	PropertyID  string `json:"property_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type MaintenanceResponse struct {
	ID             string  `json:"id"`
	TenantID       string  `json:"tenant_id"`
	PropertyID     string  `json:"property_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Status         string  `json:"status"`
	AssignedTo     *string `json:"assigned_to"`
	TechnicianName string  `json:"technician_name"`
	CreatedAt      string  `json:"created_at"`
}

// --- Interface ---

type MaintenanceService interface {
	CreateRequest(ctx context.Context, actor Actor, req CreateMaintenanceRequest) (*MaintenanceResponse, error)
	GetRequest(ctx context.Context, id string) (*MaintenanceResponse, error)
	ListRequests(ctx context.Context, propertyID, status string, page, limit int) ([]MaintenanceResponse, int64, error)
	AssignTechnician(ctx context.Context, actor Actor, id, technicianID string) (*MaintenanceResponse, error)
	CompleteRequest(ctx context.Context, actor Actor, id string) (*MaintenanceResponse, error)
}

type maintenanceService struct {
	maintenanceRepo repository.MaintenanceRepository
}

func NewMaintenanceService(maintenanceRepo repository.MaintenanceRepository) MaintenanceService {
	return &maintenanceService{maintenanceRepo: maintenanceRepo}
}

// --- Implementation ---

func (s *maintenanceService) CreateRequest(ctx context.Context, actor Actor, req CreateMaintenanceRequest) (*MaintenanceResponse, error) {
	if !authz.NewChecker(actor.Role).Has(authz.SubmitRequests) {
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

	request := model.MaintenanceRequest{
		TenantID:    tenantID,
		PropertyID:  propertyID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.MaintenanceStatusOpen,
	}
	if err := s.maintenanceRepo.Create(ctx, &request); err != nil {
		return nil, fmt.Errorf("failed to create maintenance request: %w", err)
	}

	return s.GetRequest(ctx, request.ID.String())
}

func (s *maintenanceService) GetRequest(ctx context.Context, id string) (*MaintenanceResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid maintenance request id: %w", err)
	}

	request, err := s.maintenanceRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("maintenance request not found: %w", err)
	}

	resp := toMaintenanceResponse(*request)
	return &resp, nil
}

func (s *maintenanceService) ListRequests(ctx context.Context, propertyID, status string, page, limit int) ([]MaintenanceResponse, int64, error) {
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

	requests, total, err := s.maintenanceRepo.List(ctx, propertyFilter, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch maintenance requests: %w", err)
	}

	result := make([]MaintenanceResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toMaintenanceResponse(r))
	}
	return result, total, nil
}

// AssignTechnician moves an APPROVED request into IN_PROGRESS under a named
// technician.
func (s *maintenanceService) AssignTechnician(ctx context.Context, actor Actor, id, technicianID string) (*MaintenanceResponse, error) {
	if !authz.NewChecker(actor.Role).Has(authz.ManageMaintenance) {
		return nil, ErrPermissionDenied
	}

	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid maintenance request id: %w", err)
	}
	techID, err := uuid.Parse(technicianID)
	if err != nil {
		return nil, fmt.Errorf("invalid technician id: %w", err)
	}

	request, err := s.maintenanceRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("maintenance request not found: %w", err)
	}
	if request.Status != model.MaintenanceStatusApproved {
		return nil, fmt.Errorf("maintenance request is %s, not APPROVED", request.Status)
	}

	if err := s.maintenanceRepo.Assign(ctx, requestID, techID); err != nil {
		return nil, fmt.Errorf("failed to assign technician: %w", err)
	}

	return s.GetRequest(ctx, id)
}

func (s *maintenanceService) CompleteRequest(ctx context.Context, actor Actor, id string) (*MaintenanceResponse, error) {
	if !authz.NewChecker(actor.Role).Has(authz.ManageMaintenance) {
		return nil, ErrPermissionDenied
	}

	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid maintenance request id: %w", err)
	}

	request, err := s.maintenanceRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("maintenance request not found: %w", err)
	}
	if request.Status != model.MaintenanceStatusInProgress {
		return nil, fmt.Errorf("maintenance request is %s, not IN_PROGRESS", request.Status)
	}

	if err := s.maintenanceRepo.UpdateStatus(ctx, requestID, model.MaintenanceStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete maintenance request: %w", err)
	}

	return s.GetRequest(ctx, id)
}

func toMaintenanceResponse(r model.MaintenanceRequest) MaintenanceResponse {
	resp := MaintenanceResponse{
		ID:          r.ID.String(),
		TenantID:    r.TenantID.String(),
		PropertyID:  r.PropertyID.String(),
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
	if r.AssignedTo != nil {
		v := r.AssignedTo.String()
		resp.AssignedTo = &v
	}
	if r.Technician != nil {
		resp.TechnicianName = r.Technician.Username
	}
	return resp
}
