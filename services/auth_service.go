package services

import (
	"context"
	"errors"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/common/logger"
	"github.com/Mayank561/ECOMMERCE-API/repository"
	"go.uber.org/zap"
)

const invalidCredentials = "invalid email or password"

// LoginResult is returned on a successful login.
type LoginResult struct {
	User  string `json:"user"`
	Token string `json:"token"`
}

type AuthService struct {
	users  repository.UserRepo
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewAuthService(users repository.UserRepo, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Login checks the password and issues a token. An unknown email and a wrong
// password fail with the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Auth(invalidCredentials)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		logger.FromContext(ctx).Info("login rejected", zap.String("user_id", user.ID.Hex()))
		return nil, apperrors.Auth(invalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID.Hex(), user.IsAdmin)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &LoginResult{User: user.Email, Token: token}, nil
}
