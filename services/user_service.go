package services

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/models"
	"github.com/Mayank561/ECOMMERCE-API/repository"
)

// UserInput is used for create, register and update. On update an empty
// Password keeps the stored hash.
type UserInput struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"isAdmin"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

const userNotFound = "User not found"

type UserService struct {
	repo   repository.UserRepo
	hasher PasswordHasher
}

func NewUserService(repo repository.UserRepo, hasher PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// List returns every user. Password hashes are never encoded.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, storeErr(err, userNotFound)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id, "User")
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, storeErr(err, userNotFound)
	}
	return user, nil
}

// Create stores a new user with a hashed password. It backs both the admin
// create and public registration; registration never grants admin.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if strings.TrimSpace(in.Password) == "" {
		return nil, apperrors.Validation("password is required", nil)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{PasswordHash: hash}
	applyUserInput(user, in)
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("a user with this email already exists", err)
		}
		return nil, apperrors.Creation("the user cannot be created!", err)
	}
	return user, nil
}

func (s *UserService) Register(ctx context.Context, in UserInput) (*models.User, error) {
	in.IsAdmin = false
	return s.Create(ctx, in)
}

// Update replaces the profile. The password is re-hashed only when a new
// one is supplied.
func (s *UserService) Update(ctx context.Context, id string, in UserInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		user.PasswordHash = hash
	}
	applyUserInput(user, in)

	if err := s.repo.Replace(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("a user with this email already exists", err)
		}
		return nil, storeErr(err, userNotFound)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "User")
	if err != nil {
		return err
	}
	return storeErr(s.repo.Delete(ctx, oid), "User not found!")
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, storeErr(err, userNotFound)
	}
	return count, nil
}

func applyUserInput(u *models.User, in UserInput) {
	u.Name = in.Name
	u.Email = strings.ToLower(strings.TrimSpace(in.Email))
	u.Phone = in.Phone
	u.IsAdmin = in.IsAdmin
	u.Street = in.Street
	u.Apartment = in.Apartment
	u.Zip = in.Zip
	u.City = in.City
	u.Country = in.Country
}
