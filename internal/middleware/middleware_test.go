package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MINDBRIDGE_BACK-END/internal/config"
	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/ratelimit"
	"MINDBRIDGE_BACK-END/internal/utils"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:         "test-secret",
		AccessTokenTTL: time.Hour,
		ResetTokenTTL:  time.Minute,
		CookieName:     "mb_session",
	}
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(id.String()))
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := GenerateToken(userID, "a@b.test", cfg)
	require.NoError(t, err)

	claims, err := ValidateToken(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "a@b.test", claims.Email)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateToken(uuid.New(), "a@b.test", cfg)
	require.NoError(t, err)

	other := testJWTConfig()
	other.Secret = "different"
	_, err = ValidateToken(token, other)
	assert.Error(t, err)
}

func TestResetTokenIsNotAnAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	reset, err := GenerateResetToken(uuid.New(), "a@b.test", "123456", cfg)
	require.NoError(t, err)

	_, err = ValidateToken(reset, cfg)
	assert.Error(t, err)

	claims, err := ValidateResetToken(reset, cfg)
	require.NoError(t, err)
	assert.Equal(t, "123456", claims.Code)

	access, err := GenerateToken(uuid.New(), "a@b.test", cfg)
	require.NoError(t, err)
	_, err = ValidateResetToken(access, cfg)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	token, err := GenerateToken(userID, "a@b.test", cfg)
	require.NoError(t, err)

	handler := AuthMiddleware(echoUser, cfg)

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
	}{
		{"missing credentials", func(r *http.Request) {}, http.StatusUnauthorized},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token abc") }, http.StatusUnauthorized},
		{"invalid token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"session cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: token})
		}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()

			handler(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID.String(), rr.Body.String())
				return
			}
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, "Unauthorized", body.Error)
		})
	}
}

func TestSessionCookies(t *testing.T) {
	cfg := testJWTConfig()

	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "tok", cfg)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "mb_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	rr = httptest.NewRecorder()
	ClearSessionCookie(rr, cfg)
	cookies = rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestRateLimit_NilLimiterPassesThrough(t *testing.T) {
	rule := ratelimit.Rule{Key: "rl:test:", Limit: 1, Window: time.Minute}
	handler := RateLimit(echoUser, nil, rule, http.MethodPost)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/requests", nil)
		req = req.WithContext(utils.WithUser(req.Context(), uuid.New(), "a@b.test"))
		rr := httptest.NewRecorder()
		handler(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "1", rr.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", rr.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestInstrument_RecordsStatus(t *testing.T) {
	handler := Instrument("/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest(http.MethodPost, "/test", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestRecover(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "Internal Server Error", body.Error)
}
