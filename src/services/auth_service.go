package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/username/nepsefolio/backend/src/logger"
	"github.com/username/nepsefolio/backend/src/models"
	"github.com/username/nepsefolio/backend/src/repository"
	"github.com/username/nepsefolio/backend/src/security"
	"github.com/username/nepsefolio/backend/src/security/validation"
)

type authServiceImpl struct {
	repo   repository.Repository
	tokens *security.AuthService
}

func NewAuthService(repo repository.Repository, tokens *security.AuthService) AuthService {
	return &authServiceImpl{repo: repo, tokens: tokens}
}

func (s *authServiceImpl) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(validation.SanitizeText(username))
	if err := validation.ValidateStringNotEmpty(username, "username"); err != nil {
		return nil, err
	}
	if err := validation.ValidateStringMaxLength(username, validation.DefaultMaxStringLength, "username"); err != nil {
		return nil, err
	}
	email, err := validation.ValidateEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.tokens.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.CreateUser(ctx, username, email, hash)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("User registered", "userID", user.ID)
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := s.tokens.CheckPassword(user.Password, password); err != nil {
		logger.FromContext(ctx).Warn("Login failed: password mismatch", "userID", user.ID)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(strconv.FormatInt(user.ID, 10))
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
