package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/auth/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/auth/repository"
	commonauth "github.com/idl00005/microservices-ecommerce-sub000/internal/common/auth"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
)

type AuthService struct {
	users     repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewAuthService(users repository.UserRepository, jwtSecret []byte, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, errors.Validation("Email and password are required")
	}
	if len(password) < 8 {
		return nil, errors.Validation("Password must be at least 8 characters")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, errors.Conflict("Email already registered")
	} else if !stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.Internal("Failed to check existing user", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashed),
		Name:     name,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, errors.Internal("Failed to create user", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies the credentials and issues a signed token. Unknown email and
// wrong password return the same error so accounts can't be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return "", nil, errors.Unauthorized("Invalid credentials")
		}
		return "", nil, errors.Internal("Failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, errors.Unauthorized("Invalid credentials")
	}

	token, err := commonauth.GenerateToken(s.jwtSecret, user.ID.String(), user.Role, s.tokenTTL)
	if err != nil {
		return "", nil, errors.Internal("Failed to generate token", err)
	}
	return token, user, nil
}
