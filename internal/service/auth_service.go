package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"authdesk/internal/auth"
	"authdesk/internal/cache"
	apperrors "authdesk/internal/errors"
	"authdesk/internal/model"
	"authdesk/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// AuthResult is returned by Signup and Login. The password hash never leaves the service.
type AuthResult struct {
	ID    uuid.UUID
	Email string
	Token string
}

// AuthService handles authentication operations.
type AuthService interface {
	Signup(ctx context.Context, email, password, confirmPassword string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, claims *auth.Claims) (*model.User, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	hasher     *auth.PasswordHasher
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	cache      *cache.Client
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	hasher *auth.PasswordHasher,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	cache *cache.Client,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
		tokenStore: tokenStore,
		cache:      cache,
	}
}

func (s *authService) cacheKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

// Signup creates a new user with a hashed password. The existence check runs
// before hashing so a taken email costs no bcrypt work.
func (s *authService) Signup(ctx context.Context, email, password, confirmPassword string) (*AuthResult, error) {
	if email == "" || password == "" || confirmPassword == "" {
		return nil, apperrors.ErrMissingFields
	}
	if password != confirmPassword {
		return nil, apperrors.ErrPasswordMismatch
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent signup for the same email
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(user)
}

// Login verifies credentials. It never writes to the store.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEmailNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, apperrors.ErrWrongPassword
	}

	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &AuthResult{ID: user.ID, Email: user.Email, Token: token}, nil
}

// Me resolves the user behind a validated token against the record store.
func (s *authService) Me(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	if claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(claims.UserID), &cached) {
		return &cached, nil
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		// token outlived its user record
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(claims.UserID), user, userCacheTTL)
	return user, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.ErrUnauthorized
	}
	if err := s.tokenStore.BlacklistAccessToken(ctx, claims.ID, s.jwtService.RemainingTTL(claims)); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}
