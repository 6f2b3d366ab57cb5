package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
	"github.com/fleetlog/fleetlog/pkg/requestctx"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many login attempts, try again later")
	ErrAccountBlocked     = errors.New("account is temporarily blocked")
)

// LoginPolicy bounds failed login attempts per IP and per account
type LoginPolicy struct {
	IPLimit       int
	IPWindow      time.Duration
	IPBlock       time.Duration
	AccountLimit  int
	AccountWindow time.Duration
	AccountBlock  time.Duration
}

func DefaultLoginPolicy() LoginPolicy {
	return LoginPolicy{
		IPLimit:       5,
		IPWindow:      15 * time.Minute,
		IPBlock:       30 * time.Minute,
		AccountLimit:  10,
		AccountWindow: time.Hour,
		AccountBlock:  time.Hour,
	}
}

type AuthUseCase struct {
	userRepository   outbound.UserRepository
	tokenService     outbound.TokenService
	passwordService  outbound.PasswordService
	rateLimitService inbound.RateLimitService
	logger           logger.Logger
	accessTokenTTL   time.Duration
	policy           LoginPolicy
}

func NewAuthUseCase(
	userRepo outbound.UserRepository,
	tokenService outbound.TokenService,
	passwordService outbound.PasswordService,
	rateLimitService inbound.RateLimitService,
	log logger.Logger,
	accessTokenTTL time.Duration,
	policy LoginPolicy,
) inbound.AuthUseCase {
	return &AuthUseCase{
		userRepository:   userRepo,
		tokenService:     tokenService,
		passwordService:  passwordService,
		rateLimitService: rateLimitService,
		logger:           log,
		accessTokenTTL:   accessTokenTTL,
		policy:           policy,
	}
}

func (uc *AuthUseCase) Login(ctx context.Context, req inbound.LoginRequest) (*inbound.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	ip := requestctx.ClientIP(ctx)
	ipKey := "login:ip:" + ip

	logger.LogAuthEvent(ctx, uc.logger, "login_attempt", "", ip, true, map[string]interface{}{
		"email": email,
	})

	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if err := uc.checkBlocked(ctx, ipKey, uc.policy.IPLimit, uc.policy.IPWindow, uc.policy.IPBlock); err != nil {
		logger.LogSecurityEvent(ctx, uc.logger, "ip_login_blocked", "MEDIUM", map[string]interface{}{
			"ip":    ip,
			"email": email,
		})
		return nil, err
	}

	user, err := uc.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			uc.recordFailure(ctx, ipKey, uc.policy.IPWindow)
			logger.LogAuthEvent(ctx, uc.logger, "login_failed_user_not_found", "", ip, false, map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	userID := strconv.FormatInt(user.ID, 10)
	accountKey := "login:user:" + userID
	if err := uc.checkBlocked(ctx, accountKey, uc.policy.AccountLimit, uc.policy.AccountWindow, uc.policy.AccountBlock); err != nil {
		logger.LogSecurityEvent(ctx, uc.logger, "account_login_blocked", "MEDIUM", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrAccountBlocked
	}

	start := time.Now()
	valid, err := uc.passwordService.VerifyPassword(req.Password, user.Password)
	logger.LogPerformance(ctx, uc.logger, "password_verification", time.Since(start), map[string]interface{}{
		"user_id": user.ID,
	})
	if err != nil {
		uc.logger.Error(ctx, "Password verification error", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, fmt.Errorf("password verification failed: %w", err)
	}
	if !valid {
		uc.recordFailure(ctx, ipKey, uc.policy.IPWindow)
		uc.recordFailure(ctx, accountKey, uc.policy.AccountWindow)
		logger.LogAuthEvent(ctx, uc.logger, "login_failed_invalid_password", userID, ip, false, map[string]interface{}{
			"email": email,
		})
		return nil, ErrInvalidCredentials
	}

	accessToken, err := uc.tokenService.GenerateAccessToken(outbound.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		uc.logger.Error(ctx, "Failed to generate access token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	if uc.rateLimitService != nil {
		if err := uc.rateLimitService.Reset(ctx, accountKey); err != nil {
			uc.logger.Warn(ctx, "Failed to reset login attempts", map[string]interface{}{
				"user_id": user.ID,
				"error":   err.Error(),
			})
		}
	}

	logger.LogAuthEvent(ctx, uc.logger, "login_successful", userID, ip, true, map[string]interface{}{
		"email": email,
		"role":  user.Role,
	})

	return &inbound.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(uc.accessTokenTTL.Seconds()),
		User:        toMeResponse(user),
	}, nil
}

func (uc *AuthUseCase) Me(ctx context.Context, userID int64) (*inbound.MeResponse, error) {
	user, err := uc.userRepository.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			logger.LogSecurityEvent(ctx, uc.logger, "me_user_not_found", "MEDIUM", map[string]interface{}{
				"user_id": userID,
			})
		}
		return nil, fmt.Errorf("failed to find user %d: %w", userID, err)
	}

	me := toMeResponse(user)
	return &me, nil
}

// checkBlocked returns ErrTooManyAttempts when key is blocked or has used up its
// attempts, blocking it in the latter case. Limiter errors fail open.
func (uc *AuthUseCase) checkBlocked(ctx context.Context, key string, limit int, window, block time.Duration) error {
	if uc.rateLimitService == nil {
		return nil
	}

	blocked, err := uc.rateLimitService.IsBlocked(ctx, key)
	if err != nil {
		uc.logger.Error(ctx, "Failed to check block status", err, map[string]interface{}{"key": key})
		return nil
	}
	if blocked {
		return ErrTooManyAttempts
	}

	allowed, err := uc.rateLimitService.CheckLimit(ctx, key, limit, window)
	if err != nil {
		uc.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{"key": key})
		return nil
	}
	if !allowed {
		if err := uc.rateLimitService.Block(ctx, key, block, "too many failed logins"); err != nil {
			uc.logger.Error(ctx, "Failed to block key", err, map[string]interface{}{"key": key})
		}
		return ErrTooManyAttempts
	}
	return nil
}

func (uc *AuthUseCase) recordFailure(ctx context.Context, key string, window time.Duration) {
	if uc.rateLimitService == nil {
		return
	}
	if err := uc.rateLimitService.Increment(ctx, key, window); err != nil {
		uc.logger.Error(ctx, "Failed to record failed login", err, map[string]interface{}{"key": key})
	}
}

func toMeResponse(user *entity.User) inbound.MeResponse {
	return inbound.MeResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}
}
