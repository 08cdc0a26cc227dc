package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MINDBRIDGE_BACK-END/internal/config"
	"MINDBRIDGE_BACK-END/internal/dto"
)

func TestWriteErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteErrorResponse(rec, http.StatusForbidden, "Forbidden", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Forbidden"}`, rec.Body.String())
}

func TestDecodeJSONRequest(t *testing.T) {
	var body dto.LoginRequest
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.test","password":"pw"}`))
	require.NoError(t, DecodeJSONRequest(req, &body))
	assert.Equal(t, "a@b.test", body.Email)

	empty := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.EqualError(t, DecodeJSONRequest(empty, &body), "request body is required")

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	assert.Error(t, DecodeJSONRequest(bad, &body))
}

func TestUserContext(t *testing.T) {
	_, ok := GetUserIDFromContext(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	ctx := WithUser(context.Background(), id, "a@b.test")

	got, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, "a@b.test", GetEmailFromContext(ctx))

	// plain string keys from other packages do not collide
	ctx = context.WithValue(context.Background(), "user_id", id)
	_, ok = GetUserIDFromContext(ctx)
	assert.False(t, ok)
}

func TestDates(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", *FormatDate(&d))

	ts, err := ParseDate("2025-03-10T08:00:00+07:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10T01:00:00Z", FormatTimestamp(ts))

	_, err = ParseDate("10/03/2025")
	assert.Error(t, err)
	assert.Nil(t, FormatDate(nil))
}

func TestSendVerificationCode_LogsWithoutSMTP(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{})
	assert.NoError(t, svc.SendVerificationCode("a@b.test", "123456", 3*time.Minute))
}

func TestWriteJSONResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONResponse(rec, http.StatusCreated, map[string]int{"n": 1})

	var got map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 1, got["n"])
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(dto.RegisterRequest{Email: "not-an-email", Password: "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "password must be at least 8 characters")

	assert.NoError(t, ValidateStruct(dto.RegisterRequest{Email: "a@b.test", Password: "long enough"}))
}
