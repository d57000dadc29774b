package auth

import (
	"context"
	"net/mail"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/companyemployees/internal/domain"
)

const (
	minPasswordLength = 10
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Generate(userName string, roles []string) (string, time.Time, error)
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	FirstName   string
	LastName    string
	UserName    string
	Password    string
	Email       string
	PhoneNumber string
	Roles       []string
}

// Service defines the authentication operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, userName, password string) (*TokenResponse, error)
}

// authService implements Service.
type authService struct {
	tokens   TokenIssuer
	userRepo domain.UserRepository
}

// NewService creates a new auth Service.
func NewService(tokens TokenIssuer, userRepo domain.UserRepository) Service {
	return &authService{
		tokens:   tokens,
		userRepo: userRepo,
	}
}

// Register validates input, resolves the requested roles and persists the user
// with a bcrypt password hash.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.UserName = strings.TrimSpace(input.UserName)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	roles, err := s.resolveRoles(ctx, input.Roles)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewAppError(domain.KindInternal, "failed to hash password", err)
	}

	user := domain.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		UserName:     input.UserName,
		Email:        input.Email,
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		PasswordHash: string(hash),
		Roles:        roles,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, domain.NewAppError(domain.KindAlreadyExists, "user name or email is already taken", err)
		}
		return nil, err
	}

	return &user, nil
}

// Login checks the credentials and issues an access token carrying the
// user's roles.
func (s *authService) Login(ctx context.Context, userName, password string) (*TokenResponse, error) {
	user, err := s.userRepo.GetByUserName(ctx, strings.TrimSpace(userName))
	if err != nil {
		// Unknown users and wrong passwords look the same to the caller.
		if domain.IsNotFound(err) {
			return nil, domain.NewAppError(domain.KindUnauthorized, "invalid user name or password", nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.NewAppError(domain.KindUnauthorized, "invalid user name or password", nil)
	}

	token, expiresAt, err := s.tokens.Generate(user.UserName, user.RoleNames())
	if err != nil {
		return nil, domain.NewAppError(domain.KindInternal, "failed to generate token", err)
	}

	return &TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// resolveRoles maps role names to stored roles. Every name must exist.
func (s *authService) resolveRoles(ctx context.Context, names []string) ([]domain.Role, error) {
	var wanted []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" && !slices.Contains(wanted, n) {
			wanted = append(wanted, n)
		}
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	roles, err := s.userRepo.FindRoles(ctx, wanted)
	if err != nil {
		return nil, err
	}
	for _, n := range wanted {
		if !slices.ContainsFunc(roles, func(r domain.Role) bool { return r.Name == n }) {
			return nil, domain.NewAppError(domain.KindValidation, "role "+n+" does not exist", nil)
		}
	}
	return roles, nil
}

// validateRegisterInput checks the fields the binding tags cannot express on
// their own. UserName and Email are expected to be pre-trimmed.
func validateRegisterInput(in RegisterInput) error {
	if in.UserName == "" {
		return domain.NewAppError(domain.KindValidation, "user name is required", nil)
	}
	if utf8.RuneCountInString(in.UserName) > 100 {
		return domain.NewAppError(domain.KindValidation, "user name must not exceed 100 characters", nil)
	}
	if in.Email == "" {
		return domain.NewAppError(domain.KindValidation, "email is required", nil)
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Name != "" || addr.Address != in.Email {
		return domain.NewAppError(domain.KindValidation, "email must be a valid email address", nil)
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return domain.NewAppError(domain.KindValidation, "password must be at least 10 characters", nil)
	}
	if len(in.Password) > maxPasswordBytes {
		return domain.NewAppError(domain.KindValidation, "password must not exceed 72 bytes", nil)
	}
	if !strings.ContainsFunc(in.Password, unicode.IsDigit) {
		return domain.NewAppError(domain.KindValidation, "password must contain at least one digit", nil)
	}
	return nil
}
