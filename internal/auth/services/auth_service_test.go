package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/auth/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/auth/repository"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/auth/services"
	commonauth "github.com/idl00005/microservices-ecommerce-sub000/internal/common/auth"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
)

type mockUserRepo struct {
	users map[string]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}
func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	m.users[user.Email] = user
	return nil
}

var testSecret = []byte("test-secret")

func newAuthService(repo *mockUserRepo) *services.AuthService {
	return services.NewAuthService(repo, testSecret, time.Hour, zap.NewNop())
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), "ana@example.com", "s3cret-pass", "Ana")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cret-pass")))
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), "ana@example.com", "s3cret-pass", "Ana")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "ana@example.com", "other-pass-1", "Ana")
	assert.True(t, errors.Is(err, errors.KindConflict))
}

func TestRegisterShortPassword(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	_, err := svc.Register(context.Background(), "ana@example.com", "short", "Ana")
	assert.True(t, errors.Is(err, errors.KindValidation))
}

func TestLoginIssuesToken(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	registered, err := svc.Register(context.Background(), "ana@example.com", "s3cret-pass", "Ana")
	require.NoError(t, err)

	token, user, err := svc.Login(context.Background(), "ana@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := commonauth.ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID.String(), claims["sub"])
	assert.Equal(t, models.RoleUser, claims["role"])
}

func TestLoginWrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), "ana@example.com", "s3cret-pass", "Ana")
	require.NoError(t, err)

	_, _, wrongPass := svc.Login(context.Background(), "ana@example.com", "wrong-pass-1")
	_, _, unknown := svc.Login(context.Background(), "ghost@example.com", "whatever-123")

	assert.True(t, errors.Is(wrongPass, errors.KindUnauthorized))
	assert.True(t, errors.Is(unknown, errors.KindUnauthorized))
	assert.Equal(t, wrongPass.Error(), unknown.Error(), "both failures must be indistinguishable")
}
