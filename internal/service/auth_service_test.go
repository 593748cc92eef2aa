package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/laboserve/laboserve-api/internal/models"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
)

type mockAuthRepo struct {
	created        []*models.User
	userByEmail    *models.User
	findByEmailErr error
	auditLogs      []*models.AuditLog
	lastLogin      bool
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "user-new"
	m.created = append(m.created, user)
	return nil
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.userByEmail, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string) error {
	m.lastLogin = true
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, entry)
	return nil
}

func newAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, nil, zap.NewNop(), AuthConfig{Secret: "test-secret", Issuer: "laboserve"})
}

func TestDeriveRole(t *testing.T) {
	svc := newAuthService(&mockAuthRepo{})

	for _, tc := range []struct {
		email string
		role  models.UserRole
		ok    bool
	}{
		{"2110631170001@student.unsika.ac.id", models.RoleStudent, true},
		{"oman.komarudin@unsika.ac.id", models.RoleLecturer, true},
		{"2110631170001@unsika.ac.id", models.RoleStudent, true},
		{"someone@gmail.com", "", false},
		{"someone@staff.unsika.ac.id", "", false},
		{"invalid-address", "", false},
	} {
		t.Run(tc.email, func(t *testing.T) {
			role, ok := svc.DeriveRole(tc.email)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.role, role)
		})
	}
}

func TestRegisterDerivesRole(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := newAuthService(repo)

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "2110631170001@student.unsika.ac.id",
		Password: "rahasia123",
		FullName: "Andi Pratama",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, info.Role)
	require.Len(t, repo.created, 1)
	assert.True(t, repo.created[0].Active)
	assert.NotEqual(t, "rahasia123", repo.created[0].PasswordHash)
}

func TestRegisterRejectsForeignDomain(t *testing.T) {
	svc := newAuthService(&mockAuthRepo{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "andi@gmail.com",
		Password: "rahasia123",
		FullName: "Andi Pratama",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmailDomain.Code, appErrors.FromError(err).Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "user-1", Email: "oman.komarudin@unsika.ac.id"}}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "oman.komarudin@unsika.ac.id",
		Password: "rahasia123",
		FullName: "Oman Komarudin",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLoginIssuesValidToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{userByEmail: &models.User{
		ID: "user-1", Email: "oman.komarudin@unsika.ac.id", FullName: "Oman Komarudin",
		Role: models.RoleLecturer, Active: true, PasswordHash: string(hash),
	}}
	svc := newAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "oman.komarudin@unsika.ac.id", Password: "rahasia123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, models.RoleLecturer, resp.User.Role)
	assert.True(t, repo.lastLogin)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleLecturer, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{userByEmail: &models.User{
		ID: "user-1", Email: "oman.komarudin@unsika.ac.id", Active: true, PasswordHash: string(hash),
	}}
	svc := newAuthService(repo)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "oman.komarudin@unsika.ac.id", Password: "salah"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	repo := &mockAuthRepo{userByEmail: &models.User{
		ID: "user-1", Email: "oman.komarudin@unsika.ac.id", Active: false, PasswordHash: string(hash),
	}}
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "oman.komarudin@unsika.ac.id", Password: "rahasia123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newAuthService(&mockAuthRepo{})

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)

	other := NewAuthService(&mockAuthRepo{}, nil, zap.NewNop(), AuthConfig{Secret: "different-secret"})
	hash, _ := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "user-1", Email: "a@unsika.ac.id", Active: true, PasswordHash: string(hash)}}
	issuer := newAuthService(repo)
	resp, err := issuer.Login(context.Background(), models.LoginRequest{Email: "a@unsika.ac.id", Password: "x"})
	require.NoError(t, err)

	_, err = other.ValidateToken(resp.AccessToken)
	assert.Error(t, err)
}
