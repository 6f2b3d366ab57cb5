package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	domainerror "github.com/fleetlog/fleetlog/domain/error"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
	"github.com/fleetlog/fleetlog/infrastructure/service/metrics"
	"github.com/fleetlog/fleetlog/infrastructure/service/ratelimit"
	"github.com/fleetlog/fleetlog/pkg/requestctx"
)

type stubTokens map[string]*outbound.TokenClaims

func (s stubTokens) GenerateAccessToken(claims outbound.TokenClaims) (string, error) {
	return "", outbound.ErrInvalidToken
}

func (s stubTokens) ValidateAccessToken(token string) (*outbound.TokenClaims, error) {
	if token == "stale-token" {
		return nil, outbound.ErrTokenExpired
	}
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, outbound.ErrInvalidToken
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) domainerror.ErrorCode {
	t.Helper()
	var body struct {
		Code domainerror.ErrorCode `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

var tokens = stubTokens{
	"admin-token":   {UserID: 1, Email: "admin@fleetlog.io", Role: "admin"},
	"manager-token": {UserID: 3, Email: "manager@fleetlog.io", Role: "manager"},
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r.Context())
	if claims == nil {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(claims.Email))
}

func TestAuthMiddleware(t *testing.T) {
	auth := NewAuthMiddleware(tokens)

	tests := []struct {
		name       string
		header     string
		admin      bool
		wantStatus int
		wantCode   domainerror.ErrorCode
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeInvalidToken},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeInvalidToken},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeInvalidToken},
		{name: "invalid token", header: "Bearer forged", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeInvalidToken},
		{name: "expired token", header: "Bearer stale-token", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeTokenExpired},
		{name: "manager authenticated", header: "Bearer manager-token", wantStatus: http.StatusOK},
		{name: "manager on admin route", header: "Bearer manager-token", admin: true, wantStatus: http.StatusForbidden, wantCode: domainerror.ErrCodeUnauthorizedAccess},
		{name: "admin on admin route", header: "Bearer admin-token", admin: true, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := auth.RequireAuth(echoUser)
			if tt.admin {
				handler = auth.RequireAdmin(echoUser)
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/requests", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
			}
		})
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	var gotCID, gotIP string
	handler := CorrelationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCID = requestctx.CorrelationID(r.Context())
		gotIP = requestctx.ClientIP(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.7:51234"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.NotEmpty(t, gotCID)
		assert.Equal(t, gotCID, rec.Header().Get(CorrelationIDHeader))
		assert.Equal(t, "10.0.0.7", gotIP)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(CorrelationIDHeader, "cid-42")
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "cid-42", gotCID)
		assert.Equal(t, "cid-42", rec.Header().Get(CorrelationIDHeader))
		assert.Equal(t, "203.0.113.9", gotIP)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.NewNopLogger()
	limiter := ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{Enabled: true}, client, log)
	policy := RateLimitPolicy{Name: "login", Limit: 2, Window: time.Minute, BlockDuration: 5 * time.Minute}

	handler := NewRateLimitMiddleware(limiter, log).Limit(policy, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = ip + ":1000"
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1").Code)

	limited := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "300", limited.Header().Get("Retry-After"))
	assert.Equal(t, domainerror.ErrCodeRateLimitExceeded, errorCode(t, limited))

	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2").Code)
}

func TestRateLimitMiddleware_NoopLimiter(t *testing.T) {
	handler := NewRateLimitMiddleware(ratelimit.NoopRateLimitService{}, logger.NewNopLogger()).
		Limit(RateLimitPolicy{Name: "login", Limit: 1, Window: time.Minute}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	router := mux.NewRouter()
	router.Use(MetricsMiddleware(m))
	router.HandleFunc("/v1/requests/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	for _, id := range []string{"1", "2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/requests/"+id, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/v1/requests/{id}", "404")))
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := CORSMiddleware(next, []string{"https://console.fleetlog.io", ""}, true)

	req := httptest.NewRequest(http.MethodOptions, "/v1/requests", nil)
	req.Header.Set("Origin", "https://console.fleetlog.io")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://console.fleetlog.io", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/v1/requests", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
