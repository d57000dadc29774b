package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/companyemployees/internal/domain"
	"github.com/simp-lee/companyemployees/internal/pkg"
)

// userRepository implements domain.UserRepository using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository backed by the given GORM database.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a user and links it to user.Roles, which must already exist.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

// GetByUserName retrieves a user and its roles by user name.
func (r *userRepository) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		First(&user, "user_name = ?", userName).Error
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &user, nil
}

// FindRoles returns the roles whose name is in names. Unknown names are skipped.
func (r *userRepository) FindRoles(ctx context.Context, names []string) ([]domain.Role, error) {
	roles := []domain.Role{}
	if len(names) == 0 {
		return roles, nil
	}
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Order("name").Find(&roles).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return roles, nil
}

// EnsureRoles creates every role in names that does not exist yet.
func (r *userRepository) EnsureRoles(ctx context.Context, names []string) error {
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		for _, name := range names {
			role := domain.Role{Name: name}
			if err := tx.Where(domain.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return pkg.MapDBError(err)
}
