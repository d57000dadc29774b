package domain

import "context"

// Built-in role names seeded by the migrate command.
const (
	RoleManager       = "Manager"
	RoleAdministrator = "Administrator"
)

// DefaultRoles lists the roles every installation starts with.
var DefaultRoles = []string{RoleManager, RoleAdministrator}

// Role is a named permission group assigned to users.
type Role struct {
	BaseModel
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`
}

// User is an API account able to obtain access tokens.
type User struct {
	BaseModel
	FirstName    string `gorm:"size:100" json:"firstName"`
	LastName     string `gorm:"size:100" json:"lastName"`
	UserName     string `gorm:"size:100;uniqueIndex;not null" json:"userName"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PhoneNumber  string `gorm:"size:30" json:"phoneNumber"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Roles        []Role `gorm:"many2many:user_roles" json:"roles,omitempty"`
}

// RoleNames returns the names of the user's roles in stored order.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// UserRepository defines the data access interface for users and roles.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByUserName(ctx context.Context, userName string) (*User, error)
	FindRoles(ctx context.Context, names []string) ([]Role, error)
	EnsureRoles(ctx context.Context, names []string) error
}
