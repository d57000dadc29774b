package domain

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee belongs to exactly one company.
type Employee struct {
	BaseModel
	Name       string    `gorm:"size:30;not null;index" json:"name"`
	NameSearch string    `gorm:"size:60;index" json:"-"`
	Age        int       `gorm:"not null;index" json:"age"`
	Position   string    `gorm:"size:20;not null" json:"position"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index" json:"companyId"`
}

// BeforeSave keeps NameSearch in step with Name.
func (e *Employee) BeforeSave(*gorm.DB) error {
	e.NameSearch = FoldSearchText(e.Name)
	return nil
}

// FoldSearchText returns the case-folded form used by name search. Stores
// compare against the folded column so that matching does not depend on the
// database's own case rules, which may only fold ASCII.
func FoldSearchText(s string) string {
	return strings.ToLower(s)
}

// EmployeeInput carries the writable employee fields.
type EmployeeInput struct {
	Name     string
	Age      int
	Position string
}

// MinEmployeeAge is the youngest age an employee may have.
const MinEmployeeAge = 18

// Normalize trims the text fields and checks them against the employee rules.
func (in EmployeeInput) Normalize() (EmployeeInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Position = strings.TrimSpace(in.Position)

	if err := requireText(in.Name, 30,
		"Employee name is a required field.",
		"Maximum length for the Name is 30 characters."); err != nil {
		return in, err
	}
	if in.Age < MinEmployeeAge {
		return in, NewAppError(KindValidation, "Age is required and it can't be lower than 18.", nil)
	}
	if err := requireText(in.Position, 20,
		"Position is a required field.",
		"Maximum length for the Position is 20 characters."); err != nil {
		return in, err
	}
	return in, nil
}

// EmployeeRepository defines the data access interface for employees.
// Every lookup is scoped to the owning company.
type EmployeeRepository interface {
	List(ctx context.Context, companyID uuid.UUID, req PageRequest) (*PagedResult[Employee], error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*Employee, error)
	Create(ctx context.Context, employee *Employee) error
	Update(ctx context.Context, employee *Employee) error
	Delete(ctx context.Context, employee *Employee) error
}

// EmployeeService defines the business logic interface for employees.
type EmployeeService interface {
	ListEmployees(ctx context.Context, companyID uuid.UUID, req PageRequest) (*PagedResult[Employee], error)
	GetEmployee(ctx context.Context, companyID, id uuid.UUID) (*Employee, error)
	CreateEmployee(ctx context.Context, companyID uuid.UUID, input EmployeeInput) (*Employee, error)
	UpdateEmployee(ctx context.Context, companyID, id uuid.UUID, input EmployeeInput) error
	DeleteEmployee(ctx context.Context, companyID, id uuid.UUID) error
}
