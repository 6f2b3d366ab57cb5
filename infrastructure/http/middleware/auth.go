package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
	domainerror "github.com/fleetlog/fleetlog/domain/error"
	"github.com/fleetlog/fleetlog/infrastructure/http/response"
)

type authUserKey struct{}

type AuthMiddleware struct {
	tokenService outbound.TokenService
}

func NewAuthMiddleware(tokenService outbound.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.FromError(w, domainerror.ErrInvalidToken("authorization header required"), nil)
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			response.FromError(w, domainerror.ErrInvalidToken("authorization header must use the Bearer scheme"), nil)
			return
		}

		token = strings.TrimSpace(token)
		if token == "" {
			response.FromError(w, domainerror.ErrInvalidToken("token cannot be empty"), nil)
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(token)
		if err != nil {
			if errors.Is(err, outbound.ErrTokenExpired) {
				response.FromError(w, domainerror.ErrTokenExpired(), nil)
				return
			}
			response.FromError(w, domainerror.ErrInvalidToken(""), nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), claims)))
	}
}

// RequireAdmin ensures that the user has admin role
func (m *AuthMiddleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserClaims(r.Context())
		if claims == nil {
			response.FromError(w, domainerror.ErrInvalidToken("user not authenticated"), nil)
			return
		}

		if !entity.IsAdminRole(claims.Role) {
			response.FromError(w, domainerror.ErrUnauthorizedAccess("admin role required"), nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func WithUserClaims(ctx context.Context, claims *outbound.TokenClaims) context.Context {
	return context.WithValue(ctx, authUserKey{}, claims)
}

// GetUserClaims retrieves user claims from context
func GetUserClaims(ctx context.Context) *outbound.TokenClaims {
	if claims, ok := ctx.Value(authUserKey{}).(*outbound.TokenClaims); ok {
		return claims
	}
	return nil
}
