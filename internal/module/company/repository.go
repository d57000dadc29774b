package company

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/companyemployees/internal/domain"
	"github.com/simp-lee/companyemployees/internal/pkg"
)

// listOrder keeps pages stable when names collide.
const listOrder = "name, id"

// companyRepository implements domain.CompanyRepository using GORM.
type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new CompanyRepository backed by the given GORM database.
func NewCompanyRepository(db *gorm.DB) domain.CompanyRepository {
	return &companyRepository{db: db}
}

// List returns one page of companies ordered by name. The count and the window
// run in the same transaction so they describe the same snapshot.
func (r *companyRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PagedResult[domain.Company], error) {
	var result *domain.PagedResult[domain.Company]
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		src := pkg.GormSource[domain.Company]{DB: tx, Order: listOrder}
		page, err := pkg.Paginate[domain.Company](ctx, src, req)
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

// GetByID retrieves a company by its primary key.
func (r *companyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	var company domain.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &company, nil
}

// GetByIDs returns the companies whose id is in ids, ordered by name.
// Ids without a matching row are silently skipped.
func (r *companyRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Company, error) {
	companies := []domain.Company{}
	if len(ids) == 0 {
		return companies, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order(listOrder).Find(&companies).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return companies, nil
}

// Create inserts a company together with its nested employees.
func (r *companyRepository) Create(ctx context.Context, company *domain.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

// CreateMany inserts every company, and their employees, or none of them.
func (r *companyRepository) CreateMany(ctx context.Context, companies []domain.Company) error {
	if len(companies) == 0 {
		return nil
	}
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Create(&companies).Error
	})
	return pkg.MapDBError(err)
}

// Update saves the company columns and inserts company.Employees as new
// employees of the company. Existing employees are left untouched.
func (r *companyRepository) Update(ctx context.Context, company *domain.Company) error {
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		res := tx.Model(&domain.Company{}).
			Where("id = ?", company.ID).
			Updates(map[string]any{
				"name":    company.Name,
				"address": company.Address,
				"country": company.Country,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		if len(company.Employees) == 0 {
			return nil
		}
		for i := range company.Employees {
			company.Employees[i].CompanyID = company.ID
		}
		return tx.Omit(clause.Associations).Create(&company.Employees).Error
	})
	return pkg.MapDBError(err)
}

// Delete removes a company and all of its employees.
func (r *companyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", id).Delete(&domain.Employee{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Company{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return pkg.MapDBError(err)
}
