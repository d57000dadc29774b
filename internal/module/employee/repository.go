package employee

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/companyemployees/internal/domain"
	"github.com/simp-lee/companyemployees/internal/pkg"
)

// listOrder keeps pages stable when names collide.
const listOrder = "name, id"

// employeeRepository implements domain.EmployeeRepository using GORM.
type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new EmployeeRepository backed by the given GORM database.
func NewEmployeeRepository(db *gorm.DB) domain.EmployeeRepository {
	return &employeeRepository{db: db}
}

// List returns one page of a company's employees after applying the age range
// and then the name search, ordered by name.
func (r *employeeRepository) List(ctx context.Context, companyID uuid.UUID, req domain.PageRequest) (*domain.PagedResult[domain.Employee], error) {
	var result *domain.PagedResult[domain.Employee]
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		src := pkg.GormSource[domain.Employee]{
			DB: tx,
			Scopes: []func(*gorm.DB) *gorm.DB{
				ofCompany(companyID),
				pkg.AgeRangeScope("age", req.MinAge, req.MaxAge),
				pkg.SearchScope("name_search", req.SearchTerm),
			},
			Order: listOrder,
		}
		page, err := pkg.Paginate[domain.Employee](ctx, src, req)
		if err != nil {
			return err
		}
		result = page
		return nil
	})
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return result, nil
}

// GetByID retrieves an employee of the given company.
func (r *employeeRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.db.WithContext(ctx).
		Scopes(ofCompany(companyID)).
		First(&employee, "id = ?", id).Error
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &employee, nil
}

// Create inserts a new employee. CompanyID must already be set.
func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	if err := r.db.WithContext(ctx).Create(employee).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

// Update saves the writable columns of an existing employee.
func (r *employeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	res := r.db.WithContext(ctx).Model(&domain.Employee{}).
		Scopes(ofCompany(employee.CompanyID)).
		Where("id = ?", employee.ID).
		Updates(map[string]any{
			"name":        employee.Name,
			"name_search": domain.FoldSearchText(employee.Name),
			"age":         employee.Age,
			"position":    employee.Position,
		})
	if res.Error != nil {
		return pkg.MapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes an employee.
func (r *employeeRepository) Delete(ctx context.Context, employee *domain.Employee) error {
	res := r.db.WithContext(ctx).
		Scopes(ofCompany(employee.CompanyID)).
		Delete(&domain.Employee{}, "id = ?", employee.ID)
	if res.Error != nil {
		return pkg.MapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func ofCompany(companyID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}
