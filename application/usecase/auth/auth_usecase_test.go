package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
	"github.com/fleetlog/fleetlog/infrastructure/adapter/memory"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
	"github.com/fleetlog/fleetlog/pkg/requestctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTokenService struct {
	issued []outbound.TokenClaims
}

func (m *mockTokenService) GenerateAccessToken(claims outbound.TokenClaims) (string, error) {
	m.issued = append(m.issued, claims)
	return fmt.Sprintf("mock-access-token-%d", len(m.issued)), nil
}

func (m *mockTokenService) ValidateAccessToken(token string) (*outbound.TokenClaims, error) {
	return nil, errors.New("not used")
}

type mockPasswordService struct{}

func (m *mockPasswordService) HashPassword(password string) (string, error) {
	return "hashed-" + password, nil
}

func (m *mockPasswordService) VerifyPassword(password, hash string) (bool, error) {
	return hash == "hashed-"+password, nil
}

// counterLimiter is an in-memory stand-in for the Redis limiter
type counterLimiter struct {
	mu       sync.Mutex
	attempts map[string]int
	blocked  map[string]bool
}

func newCounterLimiter() *counterLimiter {
	return &counterLimiter{attempts: map[string]int{}, blocked: map[string]bool{}}
}

func (c *counterLimiter) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts[key] < limit, nil
}

func (c *counterLimiter) Increment(ctx context.Context, key string, window time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts[key]++
	return nil
}

func (c *counterLimiter) Reset(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.attempts, key)
	return nil
}

func (c *counterLimiter) Block(ctx context.Context, key string, d time.Duration, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocked[key] = true
	return nil
}

func (c *counterLimiter) IsBlocked(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocked[key], nil
}

func (c *counterLimiter) GetAttempts(ctx context.Context, key string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts[key], nil
}

func setup(t *testing.T) (inbound.AuthUseCase, *entity.User, *mockTokenService, *counterLimiter) {
	t.Helper()
	users := memory.NewUserRepository()
	admin := entity.NewUser("admin@fleetlog.io", "Olena Admin", "hashed-correct-horse", entity.RoleAdmin)
	require.NoError(t, users.Create(context.Background(), admin))

	tokens := &mockTokenService{}
	limiter := newCounterLimiter()
	policy := LoginPolicy{
		IPLimit: 3, IPWindow: time.Minute, IPBlock: time.Minute,
		AccountLimit: 2, AccountWindow: time.Minute, AccountBlock: time.Minute,
	}
	uc := NewAuthUseCase(users, tokens, &mockPasswordService{}, limiter, logger.NewNopLogger(), 15*time.Minute, policy)
	return uc, admin, tokens, limiter
}

func TestLogin_Success(t *testing.T) {
	uc, admin, tokens, _ := setup(t)
	ctx := requestctx.WithClientIP(context.Background(), "10.0.0.1")

	resp, err := uc.Login(ctx, inbound.LoginRequest{Email: " Admin@Fleetlog.io ", Password: "correct-horse"})

	require.NoError(t, err)
	assert.Equal(t, "mock-access-token-1", resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 900, resp.ExpiresIn)
	assert.Equal(t, admin.ID, resp.User.ID)
	assert.Equal(t, entity.RoleAdmin, resp.User.Role)
	require.Len(t, tokens.issued, 1)
	assert.Equal(t, outbound.TokenClaims{UserID: admin.ID, Email: admin.Email, Role: entity.RoleAdmin}, tokens.issued[0])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown user", "ghost@fleetlog.io", "correct-horse"},
		{"wrong password", "admin@fleetlog.io", "battery-staple"},
		{"empty password", "admin@fleetlog.io", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, tokens, _ := setup(t)

			_, err := uc.Login(context.Background(), inbound.LoginRequest{Email: tt.email, Password: tt.password})

			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Empty(t, tokens.issued)
		})
	}
}

func TestLogin_AccountLockout(t *testing.T) {
	uc, admin, _, limiter := setup(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := uc.Login(ctx, inbound.LoginRequest{Email: admin.Email, Password: "wrong-password"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := uc.Login(ctx, inbound.LoginRequest{Email: admin.Email, Password: "correct-horse"})

	assert.ErrorIs(t, err, ErrAccountBlocked)
	assert.True(t, limiter.blocked[fmt.Sprintf("login:user:%d", admin.ID)])
}

func TestLogin_IPLockout(t *testing.T) {
	uc, _, _, _ := setup(t)
	ctx := requestctx.WithClientIP(context.Background(), "10.0.0.9")

	for i := 0; i < 3; i++ {
		_, err := uc.Login(ctx, inbound.LoginRequest{Email: fmt.Sprintf("ghost%d@fleetlog.io", i), Password: "whatever1"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := uc.Login(ctx, inbound.LoginRequest{Email: "admin@fleetlog.io", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestLogin_SuccessResetsAccountAttempts(t *testing.T) {
	uc, admin, _, limiter := setup(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, inbound.LoginRequest{Email: admin.Email, Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = uc.Login(ctx, inbound.LoginRequest{Email: admin.Email, Password: "correct-horse"})
	require.NoError(t, err)

	assert.Zero(t, limiter.attempts[fmt.Sprintf("login:user:%d", admin.ID)])
}

func TestMe(t *testing.T) {
	uc, admin, _, _ := setup(t)

	me, err := uc.Me(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Olena Admin", me.FullName)

	_, err = uc.Me(context.Background(), 404)
	assert.ErrorIs(t, err, entity.ErrUserNotFound)
}
