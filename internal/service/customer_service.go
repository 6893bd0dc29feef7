package service

import (
	"context"
	"fmt"

	"fieldops/internal/apperr"
	"fieldops/internal/model"
	"fieldops/internal/repository"

	"github.com/google/uuid"
)

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"is_active"`
}

type CustomerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Notes     string `json:"notes"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type CustomerService interface {
	Create(ctx context.Context, accountID uuid.UUID, req CreateCustomerRequest) (CustomerResponse, error)
	Get(ctx context.Context, accountID uuid.UUID, id string) (CustomerResponse, error)
	List(ctx context.Context, accountID uuid.UUID, search string, page, limit int) ([]CustomerResponse, int64, error)
	Update(ctx context.Context, accountID uuid.UUID, id string, req UpdateCustomerRequest) (CustomerResponse, error)
	Delete(ctx context.Context, accountID uuid.UUID, id string) error
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, accountID uuid.UUID, req CreateCustomerRequest) (CustomerResponse, error) {
	customer := model.Customer{
		AccountID: accountID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Notes:     req.Notes,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, &customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to create customer: %w", err)
	}
	return toCustomerResponse(customer), nil
}

func (s *customerService) Get(ctx context.Context, accountID uuid.UUID, id string) (CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return CustomerResponse{}, apperr.Validationf("invalid customer id")
	}
	customer, err := s.repo.FindByID(ctx, accountID, customerID)
	if err != nil {
		return CustomerResponse{}, asNotFound(err, "customer")
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) List(ctx context.Context, accountID uuid.UUID, search string, page, limit int) ([]CustomerResponse, int64, error) {
	customers, total, err := s.repo.List(ctx, accountID, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}

	result := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		result = append(result, toCustomerResponse(c))
	}
	return result, total, nil
}

func (s *customerService) Update(ctx context.Context, accountID uuid.UUID, id string, req UpdateCustomerRequest) (CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return CustomerResponse{}, apperr.Validationf("invalid customer id")
	}
	customer, err := s.repo.FindByID(ctx, accountID, customerID)
	if err != nil {
		return CustomerResponse{}, asNotFound(err, "customer")
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	if req.IsActive != nil {
		customer.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to update customer: %w", err)
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) Delete(ctx context.Context, accountID uuid.UUID, id string) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validationf("invalid customer id")
	}
	if _, err := s.repo.FindByID(ctx, accountID, customerID); err != nil {
		return asNotFound(err, "customer")
	}
	return s.repo.Delete(ctx, accountID, customerID)
}

func toCustomerResponse(c model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Notes:     c.Notes,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
