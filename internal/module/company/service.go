package company

import (
	"context"

	"github.com/google/uuid"

	"github.com/simp-lee/companyemployees/internal/domain"
)

// companyService implements domain.CompanyService.
type companyService struct {
	repo domain.CompanyRepository
}

// NewCompanyService creates a new CompanyService with the given repository.
func NewCompanyService(repo domain.CompanyRepository) domain.CompanyService {
	return &companyService{repo: repo}
}

// ListCompanies returns one page of companies ordered by name.
func (s *companyService) ListCompanies(ctx context.Context, req domain.PageRequest) (*domain.PagedResult[domain.Company], error) {
	return s.repo.List(ctx, req)
}

// GetCompany retrieves a company by ID.
func (s *companyService) GetCompany(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	return s.repo.GetByID(ctx, id)
}

// GetCompaniesByIDs returns exactly one company per id. An empty id list, or
// any id without a company, is an error.
func (s *companyService) GetCompaniesByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Company, error) {
	if len(ids) == 0 {
		return nil, domain.ErrMissingIDs
	}

	companies, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(companies) != len(ids) {
		return nil, domain.ErrCollectionMismatch
	}
	return companies, nil
}

// CreateCompany persists a company and its nested employees.
func (s *companyService) CreateCompany(ctx context.Context, input domain.CompanyInput) (*domain.Company, error) {
	input, err := input.Normalize()
	if err != nil {
		return nil, err
	}
	company := newCompany(input)
	if err := s.repo.Create(ctx, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// CreateCompanyCollection persists all companies in one unit of work.
func (s *companyService) CreateCompanyCollection(ctx context.Context, inputs []domain.CompanyInput) ([]domain.Company, error) {
	if len(inputs) == 0 {
		return nil, domain.NewAppError(domain.KindValidation, "company collection is empty", nil)
	}

	companies := make([]domain.Company, len(inputs))
	for i, in := range inputs {
		normalized, err := in.Normalize()
		if err != nil {
			return nil, err
		}
		companies[i] = newCompany(normalized)
	}
	if err := s.repo.CreateMany(ctx, companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// UpdateCompany replaces the company fields and appends any nested employees.
func (s *companyService) UpdateCompany(ctx context.Context, id uuid.UUID, input domain.CompanyInput) error {
	input, err := input.Normalize()
	if err != nil {
		return err
	}
	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	updated := newCompany(input)
	company.Name = updated.Name
	company.Address = updated.Address
	company.Country = updated.Country
	company.Employees = updated.Employees

	return s.repo.Update(ctx, company)
}

// DeleteCompany removes a company and its employees.
func (s *companyService) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// newCompany builds a company from normalized input.
func newCompany(in domain.CompanyInput) domain.Company {
	company := domain.Company{
		Name:    in.Name,
		Address: in.Address,
		Country: in.Country,
	}
	if len(in.Employees) > 0 {
		company.Employees = make([]domain.Employee, len(in.Employees))
		for i, e := range in.Employees {
			company.Employees[i] = domain.Employee{Name: e.Name, Age: e.Age, Position: e.Position}
		}
	}
	return company
}
