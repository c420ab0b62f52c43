package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"authdesk/internal/auth"
	apperrors "authdesk/internal/errors"
	"authdesk/internal/model"
	"authdesk/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func newTestService(t *testing.T, repo repository.UserRepository, store auth.TokenStoreInterface) (AuthService, *auth.JWTService, *auth.PasswordHasher) {
	t.Helper()
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	return NewAuthService(repo, hasher, jwtService, store, nil), jwtService, hasher
}

func TestAuthService_Signup(t *testing.T) {
	dbDown := errors.New("dial tcp: connection refused")

	tests := []struct {
		name            string
		email           string
		password        string
		confirmPassword string
		setupMock       func(*MockUserRepository)
		expectedError   error
		internal        bool
	}{
		{
			name:            "successful signup",
			email:           "a@b.com",
			password:        "secret1",
			confirmPassword: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == "a@b.com" && u.PasswordHash != "" && u.PasswordHash != "secret1"
				})).Return(nil)
			},
		},
		{
			name:            "password beyond bcrypt input limit",
			email:           "long@b.com",
			password:        strings.Repeat("p", 100),
			confirmPassword: strings.Repeat("p", 100),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "long@b.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:            "missing email",
			password:        "secret1",
			confirmPassword: "secret1",
			setupMock:       func(m *MockUserRepository) {},
			expectedError:   apperrors.ErrMissingFields,
		},
		{
			name:            "missing confirmation",
			email:           "a@b.com",
			password:        "secret1",
			setupMock:       func(m *MockUserRepository) {},
			expectedError:   apperrors.ErrMissingFields,
		},
		{
			name:            "password mismatch",
			email:           "a@b.com",
			password:        "secret1",
			confirmPassword: "secret2",
			setupMock:       func(m *MockUserRepository) {},
			expectedError:   apperrors.ErrPasswordMismatch,
		},
		{
			name:            "email already registered",
			email:           "taken@b.com",
			password:        "secret1",
			confirmPassword: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "taken@b.com").Return(&model.User{Email: "taken@b.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:            "duplicate detected on insert",
			email:           "race@b.com",
			password:        "secret1",
			confirmPassword: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@b.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(repository.ErrDuplicateEmail)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:            "store unavailable on lookup",
			email:           "a@b.com",
			password:        "secret1",
			confirmPassword: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, dbDown)
			},
			expectedError: dbDown,
			internal:      true,
		},
		{
			name:            "store unavailable on insert",
			email:           "a@b.com",
			password:        "secret1",
			confirmPassword: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(dbDown)
			},
			expectedError: dbDown,
			internal:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc, jwtService, _ := newTestService(t, mockRepo, new(MockTokenStore))
			result, err := svc.Signup(context.Background(), tt.email, tt.password, tt.confirmPassword)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Equal(t, tt.internal, apperrors.IsInternal(err))
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, result.ID)
				assert.Equal(t, tt.email, result.Email)

				claims, err := jwtService.ValidateToken(result.Token)
				require.NoError(t, err)
				assert.Equal(t, result.ID.String(), claims.UserID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_SignupMismatchCreatesNothing(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc, _, _ := newTestService(t, mockRepo, new(MockTokenStore))

	_, err := svc.Signup(context.Background(), "a@b.com", "secret1", "secret2")
	assert.ErrorIs(t, err, apperrors.ErrPasswordMismatch)

	mockRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	userID := uuid.New()
	stored := &model.User{ID: userID, Email: "a@b.com", PasswordHash: hash}
	dbDown := errors.New("connection reset")

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "a@b.com",
			password: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(stored, nil)
			},
		},
		{
			name:     "email not found",
			email:    "nobody@b.com",
			password: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@b.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrEmailNotFound,
		},
		{
			name:     "wrong password",
			email:    "a@b.com",
			password: "wrong",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(stored, nil)
			},
			expectedError: apperrors.ErrWrongPassword,
		},
		{
			name:     "store unavailable",
			email:    "a@b.com",
			password: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, dbDown)
			},
			expectedError: dbDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc, _, _ := newTestService(t, mockRepo, new(MockTokenStore))
			result, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, userID, result.ID)
				assert.Equal(t, "a@b.com", result.Email)
				assert.NotEmpty(t, result.Token)
			}

			mockRepo.AssertExpectations(t)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Me(t *testing.T) {
	userID := uuid.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Email: "a@b.com"}, nil)

	svc, jwtService, _ := newTestService(t, mockRepo, new(MockTokenStore))
	token, err := jwtService.GenerateAccessToken(userID, "a@b.com")
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)

	user, err := svc.Me(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)

	_, err = svc.Me(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Me(context.Background(), &auth.Claims{UserID: "not-a-uuid"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	mockRepo.AssertExpectations(t)
}

func TestAuthService_MeDeletedUser(t *testing.T) {
	userID := uuid.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)

	svc, _, _ := newTestService(t, mockRepo, new(MockTokenStore))
	_, err := svc.Me(context.Background(), &auth.Claims{UserID: userID.String()})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_Logout(t *testing.T) {
	mockStore := new(MockTokenStore)
	svc, jwtService, _ := newTestService(t, new(MockUserRepository), mockStore)

	token, err := jwtService.GenerateAccessToken(uuid.New(), "a@b.com")
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)

	mockStore.On("BlacklistAccessToken", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= time.Hour
	})).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), claims))
	assert.ErrorIs(t, svc.Logout(context.Background(), nil), apperrors.ErrUnauthorized)

	mockStore.AssertExpectations(t)
}
