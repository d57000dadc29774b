package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Company is an organisation that employs employees.
type Company struct {
	BaseModel
	Name      string     `gorm:"size:30;not null;index" json:"name"`
	Address   string     `gorm:"size:100;not null" json:"address"`
	Country   string     `gorm:"size:20;not null" json:"country"`
	Employees []Employee `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"employees,omitempty"`
}

// FullAddress joins address and country the way company responses expose them.
func (c Company) FullAddress() string {
	return c.Address + " " + c.Country
}

// CompanyInput carries the writable company fields and optional nested employees.
type CompanyInput struct {
	Name      string
	Address   string
	Country   string
	Employees []EmployeeInput
}

// Normalize trims the text fields of the company and of every nested employee
// and checks them against the company and employee rules.
func (in CompanyInput) Normalize() (CompanyInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Country = strings.TrimSpace(in.Country)

	checks := []struct {
		value         string
		maxLen        int
		missing, long string
	}{
		{in.Name, 30, "Company name is a required field.", "Maximum length for the Name is 30 characters."},
		{in.Address, 100, "Address name is a required field.", "Maximum length for the Address is 100 characters."},
		{in.Country, 20, "Country name is a required field.", "Maximum length for the Country is 20 characters."},
	}
	for _, c := range checks {
		if err := requireText(c.value, c.maxLen, c.missing, c.long); err != nil {
			return in, err
		}
	}

	if len(in.Employees) > 0 {
		employees := make([]EmployeeInput, len(in.Employees))
		for i, e := range in.Employees {
			normalized, err := e.Normalize()
			if err != nil {
				var appErr *AppError
				if errors.As(err, &appErr) {
					return in, NewAppError(appErr.Kind, fmt.Sprintf("employees[%d]: %s", i, appErr.Message), nil)
				}
				return in, err
			}
			employees[i] = normalized
		}
		in.Employees = employees
	}
	return in, nil
}

// CompanyRepository defines the data access interface for companies.
type CompanyRepository interface {
	List(ctx context.Context, req PageRequest) (*PagedResult[Company], error)
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Company, error)
	Create(ctx context.Context, company *Company) error
	CreateMany(ctx context.Context, companies []Company) error
	Update(ctx context.Context, company *Company) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CompanyService defines the business logic interface for companies.
type CompanyService interface {
	ListCompanies(ctx context.Context, req PageRequest) (*PagedResult[Company], error)
	GetCompany(ctx context.Context, id uuid.UUID) (*Company, error)
	GetCompaniesByIDs(ctx context.Context, ids []uuid.UUID) ([]Company, error)
	CreateCompany(ctx context.Context, input CompanyInput) (*Company, error)
	CreateCompanyCollection(ctx context.Context, inputs []CompanyInput) ([]Company, error)
	UpdateCompany(ctx context.Context, id uuid.UUID, input CompanyInput) error
	DeleteCompany(ctx context.Context, id uuid.UUID) error
}
