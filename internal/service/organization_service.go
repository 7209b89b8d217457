package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Company DTOs ---

type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateCompanyRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// --- Department DTOs ---

type CreateDepartmentRequest struct {
	Name      string `json:"name" binding:"required"`
	CompanyID string `json:"company_id" binding:"required,uuid"`
}

type UpdateDepartmentRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

type CompanyService interface {
	CreateCompany(ctx context.Context, req CreateCompanyRequest) (*model.Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*model.Company, error)
	ListCompanies(ctx context.Context, page, limit int) ([]model.Company, int64, error)
	UpdateCompany(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (*model.Company, error)
	DeactivateCompany(ctx context.Context, id uuid.UUID) error
}

type DepartmentService interface {
	CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*model.Department, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error)
	ListDepartments(ctx context.Context, companyID *uuid.UUID, page, limit int) ([]model.Department, int64, error)
	UpdateDepartment(ctx context.Context, id uuid.UUID, req UpdateDepartmentRequest) (*model.Department, error)
	DeactivateDepartment(ctx context.Context, id uuid.UUID) error
}

type companyService struct {
	companyRepo repository.CompanyRepository
}

func NewCompanyService(companyRepo repository.CompanyRepository) CompanyService {
	return &companyService{companyRepo: companyRepo}
}

func (s *companyService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*model.Company, error) {
	if _, err := s.companyRepo.FindByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("company %q already exists", req.Name)
	}

	company := &model.Company{Name: req.Name, IsActive: true}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return company, nil
}

func (s *companyService) GetCompany(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("company %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	return company, nil
}

func (s *companyService) ListCompanies(ctx context.Context, page, limit int) ([]model.Company, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.companyRepo.List(ctx, page, limit)
}

func (s *companyService) UpdateCompany(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (*model.Company, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		company.Name = *req.Name
	}
	if req.IsActive != nil {
		company.IsActive = *req.IsActive
	}

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return company, nil
}

func (s *companyService) DeactivateCompany(ctx context.Context, id uuid.UUID) error {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return err
	}
	company.IsActive = false
	if err := s.companyRepo.Update(ctx, company); err != nil {
		return fmt.Errorf("failed to deactivate company: %w", err)
	}
	return nil
}

type departmentService struct {
	departmentRepo repository.DepartmentRepository
	companyRepo    repository.CompanyRepository
}

func NewDepartmentService(departmentRepo repository.DepartmentRepository, companyRepo repository.CompanyRepository) DepartmentService {
	return &departmentService{departmentRepo: departmentRepo, companyRepo: companyRepo}
}

func (s *departmentService) CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*model.Department, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company ID")
	}
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("company %s: %w", companyID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	if !company.IsActive {
		return nil, fmt.Errorf("company is inactive: %w", apperr.ErrInvalidState)
	}

	department := &model.Department{Name: req.Name, CompanyID: companyID, IsActive: true}
	if err := s.departmentRepo.Create(ctx, department); err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}
	return s.departmentRepo.FindByID(ctx, department.ID)
}

func (s *departmentService) GetDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	department, err := s.departmentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("department %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load department: %w", err)
	}
	return department, nil
}

func (s *departmentService) ListDepartments(ctx context.Context, companyID *uuid.UUID, page, limit int) ([]model.Department, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.departmentRepo.ListByCompany(ctx, companyID, page, limit)
}

func (s *departmentService) UpdateDepartment(ctx context.Context, id uuid.UUID, req UpdateDepartmentRequest) (*model.Department, error) {
	department, err := s.GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		department.Name = *req.Name
	}
	if req.IsActive != nil {
		department.IsActive = *req.IsActive
	}

	if err := s.departmentRepo.Update(ctx, department); err != nil {
		return nil, fmt.Errorf("failed to update department: %w", err)
	}
	return department, nil
}

func (s *departmentService) DeactivateDepartment(ctx context.Context, id uuid.UUID) error {
	department, err := s.GetDepartment(ctx, id)
	if err != nil {
		return err
	}
	department.IsActive = false
	if err := s.departmentRepo.Update(ctx, department); err != nil {
		return fmt.Errorf("failed to deactivate department: %w", err)
	}
	return nil
}
