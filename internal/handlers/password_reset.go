package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"MINDBRIDGE_BACK-END/internal/config"
	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/middleware"
	"MINDBRIDGE_BACK-END/internal/services"
	"MINDBRIDGE_BACK-END/internal/utils"
)

// verificationTTL is how long an emailed reset code stays valid
const verificationTTL = 3 * time.Minute

// PasswordResetHandler handles the forgot password flow
type PasswordResetHandler struct {
	users  services.UserService
	mailer utils.Mailer
	config *config.Config
}

// NewPasswordResetHandler creates a new PasswordResetHandler instance
func NewPasswordResetHandler(users services.UserService, mailer utils.Mailer, cfg *config.Config) *PasswordResetHandler {
	return &PasswordResetHandler{users: users, mailer: mailer, config: cfg}
}

// ForgotPassword sends verification code to user's email
// @Summary Request password reset
// @Description Send a 6-digit verification code to the user's email
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Email address"
// @Success 200 {object} dto.MessageResponse "Verification code sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 429 {object} dto.ErrorResponse "Code already sent"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/forgot-password [post]
func (h *PasswordResetHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req dto.ForgotPasswordRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	// Same answer whether or not the account exists
	sent := dto.MessageResponse{Message: "If an account exists for this email, a verification code has been sent"}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, services.ErrNotFound) {
		utils.WriteJSONResponse(w, http.StatusOK, sent)
		return
	}
	if err != nil {
		writeServiceError(w, r, "password-reset", err)
		return
	}

	latest, err := h.users.LatestVerification(r.Context(), user.ID, user.Email)
	if err == nil && !latest.Used && time.Now().Before(latest.ExpiresAt) {
		utils.WriteErrorResponse(w, http.StatusTooManyRequests, "Code already sent",
			fmt.Sprintf("Please wait %d seconds before requesting a new code", int(time.Until(latest.ExpiresAt).Seconds())))
		return
	}
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		writeServiceError(w, r, "password-reset", err)
		return
	}

	code, err := generateVerificationCode(6)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate code", err.Error())
		return
	}
	if err := h.users.CreateVerification(r.Context(), user.ID, user.Email, code, verificationTTL); err != nil {
		writeServiceError(w, r, "password-reset", err)
		return
	}
	if err := h.mailer.SendVerificationCode(user.Email, code, verificationTTL); err != nil {
		log.Printf("[password-reset] send code to %s: %v", user.Email, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to send verification email", "")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, sent)
}

// VerifyOTP verifies the OTP and returns a reset token
// @Summary Verify OTP
// @Description Verify the 6-digit code and get a temporary reset token
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Email and verification code"
// @Success 200 {object} dto.VerifyOTPResponse "OTP verified successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired code"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/verify-otp [post]
func (h *PasswordResetHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req dto.VerifyOTPRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, services.ErrNotFound) {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid code", "No verification code found")
		return
	}
	if err != nil {
		writeServiceError(w, r, "password-reset", err)
		return
	}

	v, err := h.users.LatestVerification(r.Context(), user.ID, user.Email)
	if errors.Is(err, services.ErrNotFound) {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid code", "No verification code found")
		return
	}
	if err != nil {
		writeServiceError(w, r, "password-reset", err)
		return
	}
	if problem := checkVerification(v, req.Code); problem != "" {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid code", problem)
		return
	}

	resetToken, err := middleware.GenerateResetToken(user.ID, user.Email, v.Code, &h.config.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate reset token", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.VerifyOTPResponse{
		Message:    "OTP verified successfully",
		ResetToken: resetToken,
	})
}

// ResetPassword resets user's password using reset token
// @Summary Reset password
// @Description Set a new password using the reset token from verify-otp
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} dto.MessageResponse "Password reset successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired reset token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/reset-password [post]
func (h *PasswordResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req dto.ResetPasswordRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	claims, err := middleware.ValidateResetToken(req.ResetToken, &h.config.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid reset token", err.Error())
		return
	}

	v, err := h.users.LatestVerification(r.Context(), claims.UserID, claims.Email)
	if errors.Is(err, services.ErrNotFound) {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid verification", "No matching verification found")
		return
	}
	if err != nil {
		writeServiceError(w, r, "password-reset", err)
		return
	}
	if problem := checkVerification(v, claims.Code); problem != "" {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid verification", problem)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", err.Error())
		return
	}

	if err := h.users.ResetPassword(r.Context(), claims.UserID, v.ID, string(hashedPassword)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Code already used", "This verification code has already been used")
			return
		}
		writeServiceError(w, r, "password-reset", err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Password has been reset successfully"})
}

// checkVerification returns a user-facing problem or "" when v matches code
func checkVerification(v *services.Verification, code string) string {
	switch {
	case v.Used:
		return "This verification code has already been used"
	case time.Now().After(v.ExpiresAt):
		return "Verification code has expired. Please request a new one"
	case v.Code != code:
		return "The verification code you entered is incorrect"
	}
	return ""
}

// generateVerificationCode generates a random n-digit verification code
func generateVerificationCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)

	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}

	return string(code), nil
}
