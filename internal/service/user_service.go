package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/panelmgmt/pms-core/internal/dto"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/repository"
	"gorm.io/gorm"
)

// UserService covers admin account management. Bulk enrollment goes through
// RosterService instead.
type UserService interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	Users(ctx context.Context) ([]model.User, error)
	Students(ctx context.Context) ([]model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*model.User, error) {
	if req.UIN != 0 {
		existing, err := s.userRepo.FindByUIN(req.UIN)
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: looking up UIN %d: %v", ErrUpstream, req.UIN, err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: UIN %d already registered", ErrValidation, req.UIN)
		}
	}

	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}
	user := &model.User{
		ID:        uuid.New().String(),
		Role:      role,
		UIN:       req.UIN,
		Email:     req.Email,
		FirstName: req.Name,
		LastName:  req.LastName,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("%w: creating user: %v", ErrUpstream, err)
	}
	return user, nil
}

func (s *userService) UserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return user, nil
}

func (s *userService) Users(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("%w: loading users: %v", ErrUpstream, err)
	}
	return users, nil
}

func (s *userService) Students(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.FindStudents()
	if err != nil {
		return nil, fmt.Errorf("%w: loading students: %v", ErrUpstream, err)
	}
	return users, nil
}
