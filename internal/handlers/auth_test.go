package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"MINDBRIDGE_BACK-END/internal/config"
	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/middleware"
	"MINDBRIDGE_BACK-END/internal/models"
	"MINDBRIDGE_BACK-END/internal/services"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:         "test-secret",
			AccessTokenTTL: time.Hour,
			ResetTokenTTL:  10 * time.Minute,
			CookieName:     "mb_session",
		},
		App: config.AppConfig{FrontendURL: "http://localhost:3000/"},
	}
}

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func sessionCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegister_Success(t *testing.T) {
	users, profiles := new(MockUserService), new(MockProfileService)
	cfg := testConfig()
	user := &models.User{ID: uuid.New(), Email: "new@example.com", Role: "user", Provider: services.ProviderPassword}

	users.On("Create", mock.Anything, mock.MatchedBy(func(acc services.NewAccount) bool {
		return acc.Email == "new@example.com" &&
			acc.Provider == services.ProviderPassword &&
			bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("long-enough")) == nil
	})).Return(user, nil)
	profiles.On("Get", mock.Anything, user.ID).Return(&models.Profile{UserID: user.ID, DisplayName: ptr("Newbie")}, nil)

	h := NewAuthHandler(users, profiles, cfg)
	rec := httptest.NewRecorder()
	h.Register(rec, newRequest(t, http.MethodPost, "/api/auth/register",
		dto.RegisterRequest{Email: " new@example.com ", Password: "long-enough"}, uuid.Nil))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp dto.AuthResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, user.ID.String(), resp.User.ID)
	assert.Equal(t, "Newbie", *resp.User.DisplayName)

	claims, err := middleware.ValidateToken(resp.Token, &cfg.JWT)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	cookie := sessionCookie(rec, cfg.JWT.CookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, resp.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	users.AssertExpectations(t)
}

func TestRegister_Conflict(t *testing.T) {
	users := new(MockUserService)
	users.On("Create", mock.Anything, mock.Anything).Return(nil, services.ErrConflict)

	h := NewAuthHandler(users, new(MockProfileService), testConfig())
	rec := httptest.NewRecorder()
	h.Register(rec, newRequest(t, http.MethodPost, "/api/auth/register",
		dto.RegisterRequest{Email: "taken@example.com", Password: "long-enough"}, uuid.Nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var resp dto.ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "User already exists", resp.Error)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		body dto.RegisterRequest
	}{
		{"missing email", dto.RegisterRequest{Password: "long-enough"}},
		{"bad email", dto.RegisterRequest{Email: "nope", Password: "long-enough"}},
		{"short password", dto.RegisterRequest{Email: "a@b.co", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserService)
			h := NewAuthHandler(users, new(MockProfileService), testConfig())

			rec := httptest.NewRecorder()
			h.Register(rec, newRequest(t, http.MethodPost, "/api/auth/register", tt.body, uuid.Nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			users.AssertNumberOfCalls(t, "Create", 0)
		})
	}
}

func TestLogin(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "me@example.com", PasswordHash: "", Role: "user"}

	tests := []struct {
		name     string
		hash     string
		password string
		found    bool
		want     int
	}{
		{"correct password", "correct-horse", "correct-horse", true, http.StatusOK},
		{"wrong password", "correct-horse", "battery-staple", true, http.StatusUnauthorized},
		{"unknown email", "", "whatever", false, http.StatusUnauthorized},
		{"google-only account", "", "anything", true, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, profiles := new(MockUserService), new(MockProfileService)
			u := *user
			if tt.hash != "" {
				u.PasswordHash = hashPassword(t, tt.hash)
			}
			if tt.found {
				users.On("GetByEmail", mock.Anything, u.Email).Return(&u, nil)
			} else {
				users.On("GetByEmail", mock.Anything, u.Email).Return(nil, services.ErrNotFound)
			}
			profiles.On("Get", mock.Anything, u.ID).Return(nil, services.ErrNotFound)

			cfg := testConfig()
			h := NewAuthHandler(users, profiles, cfg)
			rec := httptest.NewRecorder()
			h.Login(rec, newRequest(t, http.MethodPost, "/api/auth/login",
				dto.LoginRequest{Email: u.Email, Password: tt.password}, uuid.Nil))

			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.want == http.StatusOK {
				assert.NotNil(t, sessionCookie(rec, cfg.JWT.CookieName))
			} else {
				assert.Nil(t, sessionCookie(rec, cfg.JWT.CookieName))
			}
		})
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	cfg := testConfig()
	h := NewAuthHandler(new(MockUserService), new(MockProfileService), cfg)

	rec := httptest.NewRecorder()
	h.Logout(rec, newRequest(t, http.MethodPost, "/api/auth/logout", nil, uuid.Nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(rec, cfg.JWT.CookieName)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestMe(t *testing.T) {
	users, profiles := new(MockUserService), new(MockProfileService)
	user := &models.User{ID: uuid.New(), Email: "me@example.com", Role: "user", Provider: "google"}
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	profiles.On("Get", mock.Anything, user.ID).Return(&models.Profile{
		UserID:              user.ID,
		SupportType:         ptr("giver"),
		OnboardingCompleted: true,
	}, nil)

	h := NewAuthHandler(users, profiles, testConfig())
	rec := httptest.NewRecorder()
	h.Me(rec, newRequest(t, http.MethodGet, "/api/auth/me", nil, user.ID))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.UserResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "me@example.com", resp.Email)
	assert.Equal(t, "giver", *resp.SupportType)
	assert.True(t, resp.OnboardingCompleted)
}

func TestMe_Unauthorized(t *testing.T) {
	h := NewAuthHandler(new(MockUserService), new(MockProfileService), testConfig())

	rec := httptest.NewRecorder()
	h.Me(rec, newRequest(t, http.MethodGet, "/api/auth/me", nil, uuid.Nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGoogleLogin_NotConfigured(t *testing.T) {
	h := NewGoogleAuthHandler(new(MockUserService), testConfig())

	rec := httptest.NewRecorder()
	h.GoogleLogin(rec, newRequest(t, http.MethodGet, "/api/auth/google/login", nil, uuid.Nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGoogleLogin_SetsState(t *testing.T) {
	cfg := testConfig()
	cfg.GoogleOAuth = config.GoogleOAuthConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"}
	h := NewGoogleAuthHandler(new(MockUserService), cfg)

	rec := httptest.NewRecorder()
	h.GoogleLogin(rec, newRequest(t, http.MethodGet, "/api/auth/google/login", nil, uuid.Nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.GoogleLoginResponse
	decodeBody(t, rec, &resp)
	cookie := sessionCookie(rec, oauthStateCookie)
	require.NotNil(t, cookie)
	assert.Equal(t, resp.State, cookie.Value)
	assert.Contains(t, resp.AuthURL, "state="+url.QueryEscape(resp.State))
}

func TestGoogleCallback_StateMismatch(t *testing.T) {
	h := NewGoogleAuthHandler(new(MockUserService), testConfig())

	req := newRequest(t, http.MethodGet, "/api/auth/google/callback?code=abc&state=one", nil, uuid.Nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "two"})
	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoogleCompleteLogin_CreatesAccount(t *testing.T) {
	users := new(MockUserService)
	cfg := testConfig()
	created := &models.User{ID: uuid.New(), Email: "g@example.com", Provider: services.ProviderGoogle}
	users.On("GetByEmail", mock.Anything, "g@example.com").Return(nil, services.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(acc services.NewAccount) bool {
		return acc.Provider == services.ProviderGoogle && acc.PasswordHash == "" &&
			acc.DisplayName != nil && *acc.DisplayName == "Gee"
	})).Return(created, nil)

	h := NewGoogleAuthHandler(users, cfg)
	rec := httptest.NewRecorder()
	redirect, err := h.completeLogin(rec, newRequest(t, http.MethodGet, "/", nil, uuid.Nil),
		&dto.GoogleUserInfo{Email: "g@example.com", Name: " Gee ", Verified: true})

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/auth/callback?provider=google&user_id="+created.ID.String(), redirect)
	assert.NotNil(t, sessionCookie(rec, cfg.JWT.CookieName))
	users.AssertExpectations(t)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendVerificationCode(to, code string, ttl time.Duration) error {
	return m.Called(to, code, ttl).Error(0)
}

func TestForgotPassword_UnknownEmailLooksSent(t *testing.T) {
	users, mailer := new(MockUserService), new(mockMailer)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, services.ErrNotFound)

	h := NewPasswordResetHandler(users, mailer, testConfig())
	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, newRequest(t, http.MethodPost, "/api/auth/forgot-password",
		dto.ForgotPasswordRequest{Email: "ghost@example.com"}, uuid.Nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	mailer.AssertNumberOfCalls(t, "SendVerificationCode", 0)
}

func TestForgotPassword_SendsCode(t *testing.T) {
	users, mailer := new(MockUserService), new(mockMailer)
	user := &models.User{ID: uuid.New(), Email: "me@example.com"}
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	users.On("LatestVerification", mock.Anything, user.ID, user.Email).Return(nil, services.ErrNotFound)
	users.On("CreateVerification", mock.Anything, user.ID, user.Email, mock.AnythingOfType("string"), verificationTTL).Return(nil)
	mailer.On("SendVerificationCode", user.Email, mock.AnythingOfType("string"), verificationTTL).Return(nil)

	h := NewPasswordResetHandler(users, mailer, testConfig())
	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, newRequest(t, http.MethodPost, "/api/auth/forgot-password",
		dto.ForgotPasswordRequest{Email: user.Email}, uuid.Nil))

	require.Equal(t, http.StatusOK, rec.Code)
	stored := users.Calls[2].Arguments.String(3)
	sent := mailer.Calls[0].Arguments.String(1)
	assert.Len(t, stored, 6)
	assert.Equal(t, stored, sent)
}

func TestForgotPassword_ActiveCodeThrottled(t *testing.T) {
	users, mailer := new(MockUserService), new(mockMailer)
	user := &models.User{ID: uuid.New(), Email: "me@example.com"}
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	users.On("LatestVerification", mock.Anything, user.ID, user.Email).
		Return(&services.Verification{Code: "123456", ExpiresAt: time.Now().Add(time.Minute)}, nil)

	h := NewPasswordResetHandler(users, mailer, testConfig())
	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, newRequest(t, http.MethodPost, "/api/auth/forgot-password",
		dto.ForgotPasswordRequest{Email: user.Email}, uuid.Nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	mailer.AssertNumberOfCalls(t, "SendVerificationCode", 0)
}

func TestVerifyOTPAndReset(t *testing.T) {
	users := new(MockUserService)
	cfg := testConfig()
	user := &models.User{ID: uuid.New(), Email: "me@example.com"}
	v := &services.Verification{ID: uuid.New(), UserID: user.ID, Email: user.Email, Code: "424242", ExpiresAt: time.Now().Add(time.Minute)}
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	users.On("LatestVerification", mock.Anything, user.ID, user.Email).Return(v, nil)
	users.On("ResetPassword", mock.Anything, user.ID, v.ID, mock.AnythingOfType("string")).Return(nil)

	h := NewPasswordResetHandler(users, new(mockMailer), cfg)

	rec := httptest.NewRecorder()
	h.VerifyOTP(rec, newRequest(t, http.MethodPost, "/api/auth/verify-otp",
		dto.VerifyOTPRequest{Email: user.Email, Code: "000000"}, uuid.Nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.VerifyOTP(rec, newRequest(t, http.MethodPost, "/api/auth/verify-otp",
		dto.VerifyOTPRequest{Email: user.Email, Code: "424242"}, uuid.Nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var otp dto.VerifyOTPResponse
	decodeBody(t, rec, &otp)
	require.NotEmpty(t, otp.ResetToken)

	rec = httptest.NewRecorder()
	h.ResetPassword(rec, newRequest(t, http.MethodPost, "/api/auth/reset-password", dto.ResetPasswordRequest{
		ResetToken:      otp.ResetToken,
		NewPassword:     "brand-new-pass",
		ConfirmPassword: "brand-new-pass",
	}, uuid.Nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	hash := users.Calls[len(users.Calls)-1].Arguments.String(3)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("brand-new-pass")))
}

func TestResetPassword_MismatchedConfirm(t *testing.T) {
	h := NewPasswordResetHandler(new(MockUserService), new(mockMailer), testConfig())

	rec := httptest.NewRecorder()
	h.ResetPassword(rec, newRequest(t, http.MethodPost, "/api/auth/reset-password", dto.ResetPasswordRequest{
		ResetToken:      "x",
		NewPassword:     "brand-new-pass",
		ConfirmPassword: "different-pass",
	}, uuid.Nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateVerificationCode(t *testing.T) {
	code, err := generateVerificationCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9')
	}
}
