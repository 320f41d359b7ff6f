package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"portfolio-tracker/internal/domain"
	"portfolio-tracker/internal/repository"
	"portfolio-tracker/internal/validation"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService describes user lifecycle operations. Every operation acting on
// another user's record goes through the Authorizer.
type UserService interface {
	Register(ctx context.Context, in validation.Input) (*domain.User, error)
	Authenticate(ctx context.Context, in validation.Input) (*domain.User, error)
	Current(ctx context.Context, principalID int64) (*domain.User, error)
	Get(ctx context.Context, principalID, targetID int64) (*domain.User, error)
	List(ctx context.Context, principalID int64) ([]domain.User, error)
	Update(ctx context.Context, principalID, targetID int64, in validation.Input) (*domain.User, error)
	Confirm(ctx context.Context, in validation.Input) (int64, error)
	Managed(ctx context.Context, principalID, targetID int64) ([]domain.User, error)
}

type userService struct {
	users      repository.UserRepository
	authz      *Authorizer
	bcryptCost int
}

func NewUserService(users repository.UserRepository, authz *Authorizer, bcryptCost int) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		users:      users,
		authz:      authz,
		bcryptCost: bcryptCost,
	}
}

func (s *userService) Register(ctx context.Context, in validation.Input) (*domain.User, error) {
	if err := validation.RegisterRules.Check(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(validation.Stringify(in["password"])), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(validation.Stringify(in["email"]))),
		PasswordHash: string(hash),
		FirstName:    validation.Stringify(in["firstName"]),
		LastName:     validation.Stringify(in["lastName"]),
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.Conflict("User with this email already exists.", err)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, in validation.Input) (*domain.User, error) {
	if err := validation.LoginRules.Check(in); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(validation.Stringify(in["email"])))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(validation.Stringify(in["password"]))); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) Current(ctx context.Context, principalID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(msgUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, principalID, targetID int64) (*domain.User, error) {
	return s.authz.AuthorizeUser(ctx, principalID, targetID)
}

func (s *userService) List(ctx context.Context, principalID int64) ([]domain.User, error) {
	if _, err := s.authz.AuthorizeAdmin(ctx, principalID); err != nil {
		return nil, err
	}
	return s.users.Find(ctx)
}

func (s *userService) Update(ctx context.Context, principalID, targetID int64, in validation.Input) (*domain.User, error) {
	if err := validation.UserUpdateRules.Check(in); err != nil {
		return nil, err
	}

	user, err := s.authz.AuthorizeUser(ctx, principalID, targetID)
	if err != nil {
		return nil, err
	}

	updated := *user
	updated.FirstName = validation.Stringify(in["firstName"])
	updated.LastName = validation.Stringify(in["lastName"])

	if raw, ok := in["role"]; ok {
		canAssign, err := s.canAssignRole(ctx, principalID)
		if err != nil {
			return nil, err
		}
		if canAssign {
			updated.Role = validation.Stringify(raw)
		}
	}

	if raw, ok := in["portfolioManagerId"]; ok {
		managerID, err := s.resolveManager(ctx, user.ID, raw)
		if err != nil {
			return nil, err
		}
		updated.PortfolioManagerID = managerID
	}

	saved, err := s.users.Update(ctx, &updated)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(msgUserNotFound)
		}
		return nil, err
	}
	return saved, nil
}

// canAssignRole reports whether the principal may change roles. Only
// administrators can; for everyone else the stored role is kept.
func (s *userService) canAssignRole(ctx context.Context, principalID int64) (bool, error) {
	if _, err := s.authz.AuthorizeAdmin(ctx, principalID); err != nil {
		if domain.KindOf(err) == domain.KindUnauthorized {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// resolveManager checks the portfolio manager reference: it must name an
// existing user other than the user being updated. Null clears it.
func (s *userService) resolveManager(ctx context.Context, userID int64, raw any) (*int64, error) {
	if raw == nil {
		return nil, nil
	}
	managerID, err := validation.Int64(raw)
	if err != nil {
		return nil, domain.ValidationError([]domain.Violation{{
			Field: "portfolioManagerId", Message: "Portfolio manager id must be an integer.", Value: raw,
		}})
	}
	if managerID == userID {
		return nil, domain.ValidationError([]domain.Violation{{
			Field: "portfolioManagerId", Message: "A user cannot be their own portfolio manager.", Value: raw,
		}})
	}
	if _, err := s.users.FindByID(ctx, managerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ValidationError([]domain.Violation{{
				Field: "portfolioManagerId", Message: "Portfolio manager does not exist.", Value: raw,
			}})
		}
		return nil, err
	}
	return &managerID, nil
}

func (s *userService) Confirm(ctx context.Context, in validation.Input) (int64, error) {
	if err := validation.EmailRules.Check(in); err != nil {
		return 0, err
	}

	email := strings.ToLower(strings.TrimSpace(validation.Stringify(in["email"])))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.NotFound("User with this email does not exist.")
		}
		return 0, err
	}
	return user.ID, nil
}

func (s *userService) Managed(ctx context.Context, principalID, targetID int64) ([]domain.User, error) {
	user, err := s.authz.AuthorizeUser(ctx, principalID, targetID)
	if err != nil {
		return nil, err
	}
	return s.users.FindByManager(ctx, user.ID)
}
