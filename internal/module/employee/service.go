package employee

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simp-lee/companyemployees/internal/domain"
)

// employeeService implements domain.EmployeeService. Every operation first
// checks that the owning company exists.
type employeeService struct {
	companies domain.CompanyRepository
	repo      domain.EmployeeRepository
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(companies domain.CompanyRepository, repo domain.EmployeeRepository) domain.EmployeeService {
	return &employeeService{companies: companies, repo: repo}
}

// ListEmployees returns one filtered page of a company's employees.
// An inverted age range is rejected before any query runs.
func (s *employeeService) ListEmployees(ctx context.Context, companyID uuid.UUID, req domain.PageRequest) (*domain.PagedResult[domain.Employee], error) {
	if !req.ValidAgeRange() {
		return nil, domain.ErrInvalidRange
	}
	if err := s.ensureCompany(ctx, companyID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, companyID, req)
}

// GetEmployee retrieves one employee of a company.
func (s *employeeService) GetEmployee(ctx context.Context, companyID, id uuid.UUID) (*domain.Employee, error) {
	if err := s.ensureCompany(ctx, companyID); err != nil {
		return nil, err
	}
	return s.getEmployee(ctx, companyID, id)
}

// CreateEmployee adds an employee to a company.
func (s *employeeService) CreateEmployee(ctx context.Context, companyID uuid.UUID, input domain.EmployeeInput) (*domain.Employee, error) {
	input, err := input.Normalize()
	if err != nil {
		return nil, err
	}
	if err := s.ensureCompany(ctx, companyID); err != nil {
		return nil, err
	}

	employee := &domain.Employee{CompanyID: companyID}
	apply(employee, input)
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// UpdateEmployee replaces the writable fields of an employee.
func (s *employeeService) UpdateEmployee(ctx context.Context, companyID, id uuid.UUID, input domain.EmployeeInput) error {
	input, err := input.Normalize()
	if err != nil {
		return err
	}
	if err := s.ensureCompany(ctx, companyID); err != nil {
		return err
	}
	employee, err := s.getEmployee(ctx, companyID, id)
	if err != nil {
		return err
	}

	apply(employee, input)
	return s.repo.Update(ctx, employee)
}

// DeleteEmployee removes an employee from a company.
func (s *employeeService) DeleteEmployee(ctx context.Context, companyID, id uuid.UUID) error {
	if err := s.ensureCompany(ctx, companyID); err != nil {
		return err
	}
	employee, err := s.getEmployee(ctx, companyID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, employee)
}

func (s *employeeService) ensureCompany(ctx context.Context, companyID uuid.UUID) error {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		if domain.IsNotFound(err) {
			return domain.NewAppError(domain.KindNotFound,
				fmt.Sprintf("company with id %s doesn't exist in the database", companyID), err)
		}
		return err
	}
	return nil
}

func (s *employeeService) getEmployee(ctx context.Context, companyID, id uuid.UUID) (*domain.Employee, error) {
	employee, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewAppError(domain.KindNotFound,
				fmt.Sprintf("employee with id %s doesn't exist in the database", id), err)
		}
		return nil, err
	}
	return employee, nil
}

// apply copies normalized input onto e.
func apply(e *domain.Employee, in domain.EmployeeInput) {
	e.Name = in.Name
	e.Age = in.Age
	e.Position = in.Position
}
