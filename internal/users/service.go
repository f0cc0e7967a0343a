package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgdb "github.com/developersvyapar-netizen/vyaapar-backend/pkg/db"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type passwordHasher interface {
	Hash(password string) (string, error)
}

type userRepo interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByLoginID(ctx context.Context, loginID string) (*models.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.User, int64, error)
}

// Service defines administrative user-management operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*UserView, error)
	Get(ctx context.Context, id uuid.UUID) (*UserView, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]UserView, pagination.Page, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   userRepo
	hasher passwordHasher
}

// CreateInput carries the plaintext fields for user provisioning.
type CreateInput struct {
	LoginID  string
	Name     string
	Email    *string
	Phone    *string
	Password string
	Role     enums.UserRole
}

// NewService builds a user management service.
func NewService(repo userRepo, hasher passwordHasher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	return &service{repo: repo, hasher: hasher}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*UserView, error) {
	loginID := strings.TrimSpace(input.LoginID)
	if loginID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "login id required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	created, err := s.repo.Create(ctx, CreateUserDTO{
		LoginID:      loginID,
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         input.Role,
	})
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "login_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "login id already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	view := NewUserView(created)
	return &view, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	view := NewUserView(user)
	return &view, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]UserView, pagination.Page, error) {
	found, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	views := make([]UserView, 0, len(found))
	for i := range found {
		views = append(views, NewUserView(&found[i]))
	}
	return views, pagination.NewPage(params, total), nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

func (s *service) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *service) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user active flag")
	}
	return nil
}
