package service

import (
	"context"
	"encoding/json"
	"fmt"

	"propertyhub/internal/model"
	"propertyhub/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreatePropertyRequest struct {
	Name       string `json:"name" binding:"required"`
	Address    string `json:"address" binding:"required"`
	City       string `json:"city"`
	TotalUnits int    `json:"total_units" binding:"required,min=1"`
	ManagerID  string `json:"manager_id"`
}

type UpdatePropertyRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	TotalUnits int    `json:"total_units"`
	ManagerID  string `json:"manager_id"`
	Status     string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

type PropertyResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	TotalUnits  int     `json:"total_units"`
	ManagerID   *string `json:"manager_id"`
	ManagerName string  `json:"manager_name"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

// --- Interface ---

type PropertyService interface {
	CreateProperty(ctx context.Context, actor Actor, req CreatePropertyRequest) (*PropertyResponse, error)
	GetProperty(ctx context.Context, id string) (*PropertyResponse, error)
	ListProperties(ctx context.Context, status, search string, page, limit int) ([]PropertyResponse, int64, error)
	UpdateProperty(ctx context.Context, actor Actor, id string, req UpdatePropertyRequest) (*PropertyResponse, error)
	DeleteProperty(ctx context.Context, actor Actor, id string) error
}

type propertyService struct {
	propertyRepo repository.PropertyRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewPropertyService(
	propertyRepo repository.PropertyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) PropertyService {
	return &propertyService{
		propertyRepo: propertyRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *propertyService) CreateProperty(ctx context.Context, actor Actor, req CreatePropertyRequest) (*PropertyResponse, error) {
	property := model.Property{
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		TotalUnits: req.TotalUnits,
		Status:     model.PropertyStatusActive,
	}

	if req.ManagerID != "" {
		parsed, err := uuid.Parse(req.ManagerID)
		if err != nil {
			return nil, fmt.Errorf("invalid manager_id: %w", err)
		}
		property.ManagerID = &parsed
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.propertyRepo.Create(txCtx, &property); createErr != nil {
			return fmt.Errorf("failed to create property: %w", createErr)
		}
		return s.audit(txCtx, actor, model.ActionCreateProperty, &property)
	})
	if err != nil {
		return nil, err
	}

	return s.GetProperty(ctx, property.ID.String())
}

func (s *propertyService) GetProperty(ctx context.Context, id string) (*PropertyResponse, error) {
	propertyID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid property id: %w", err)
	}

	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("property not found: %w", err)
	}

	resp := toPropertyResponse(*property)
	return &resp, nil
}

func (s *propertyService) ListProperties(ctx context.Context, status, search string, page, limit int) ([]PropertyResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	properties, total, err := s.propertyRepo.List(ctx, status, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch properties: %w", err)
	}

	result := make([]PropertyResponse, 0, len(properties))
	for _, p := range properties {
		result = append(result, toPropertyResponse(p))
	}
	return result, total, nil
}

func (s *propertyService) UpdateProperty(ctx context.Context, actor Actor, id string, req UpdatePropertyRequest) (*PropertyResponse, error) {
	propertyID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid property id: %w", err)
	}

	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("property not found: %w", err)
	}

	if req.Name != "" {
		property.Name = req.Name
	}
	if req.Address != "" {
		property.Address = req.Address
	}
	if req.City != "" {
		property.City = req.City
	}
	if req.TotalUnits > 0 {
		property.TotalUnits = req.TotalUnits
	}
	if req.Status != "" {
		property.Status = req.Status
	}
	if req.ManagerID != "" {
		parsed, parseErr := uuid.Parse(req.ManagerID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid manager_id: %w", parseErr)
		}
		property.ManagerID = &parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.propertyRepo.Update(txCtx, property); updateErr != nil {
			return fmt.Errorf("failed to update property: %w", updateErr)
		}
		return s.audit(txCtx, actor, model.ActionUpdateProperty, property)
	})
	if err != nil {
		return nil, err
	}

	return s.GetProperty(ctx, id)
}

func (s *propertyService) DeleteProperty(ctx context.Context, actor Actor, id string) error {
	propertyID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid property id: %w", err)
	}

	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("property not found: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.propertyRepo.Delete(txCtx, propertyID); deleteErr != nil {
			return fmt.Errorf("failed to delete property: %w", deleteErr)
		}
		return s.audit(txCtx, actor, model.ActionDeleteProperty, property)
	})
}

func (s *propertyService) audit(ctx context.Context, actor Actor, action string, property *model.Property) error {
	details, _ := json.Marshal(map[string]interface{}{
		"name": property.Name,
		"city": property.City,
	})
	entry := model.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		EntityID:   property.ID.String(),
		EntityName: property.Name,
		Details:    string(details),
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toPropertyResponse(p model.Property) PropertyResponse {
	resp := PropertyResponse{
		ID:         p.ID.String(),
		Name:       p.Name,
		Address:    p.Address,
		City:       p.City,
		TotalUnits: p.TotalUnits,
		Status:     p.Status,
		CreatedAt:  p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if p.ManagerID != nil {
		v := p.ManagerID.String()
		resp.ManagerID = &v
	}
	if p.Manager != nil {
		resp.ManagerName = p.Manager.Username
	}
	return resp
}
