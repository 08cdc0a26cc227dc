package handlers

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"MINDBRIDGE_BACK-END/internal/config"
	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/middleware"
	"MINDBRIDGE_BACK-END/internal/models"
	"MINDBRIDGE_BACK-END/internal/services"
	"MINDBRIDGE_BACK-END/internal/utils"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users    services.UserService
	profiles services.ProfileService
	config   *config.Config
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(users services.UserService, profiles services.ProfileService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, profiles: profiles, config: cfg}
}

// toUserResponse merges the account with its profile display fields
func toUserResponse(u *models.User, p *models.Profile) dto.UserResponse {
	resp := dto.UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Role:      u.Role,
		Provider:  u.Provider,
		CreatedAt: utils.FormatTimestamp(u.CreatedAt),
		UpdatedAt: utils.FormatTimestamp(u.UpdatedAt),
	}
	if p != nil {
		resp.DisplayName = p.DisplayName
		resp.AvatarURL = p.AvatarURL
		resp.SupportType = p.SupportType
		resp.OnboardingCompleted = p.OnboardingCompleted
	}
	return resp
}

// issueSession signs a token, sets the session cookie and writes the auth response
func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := middleware.GenerateToken(user.ID, user.Email, &h.config.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", err.Error())
		return
	}
	middleware.SetSessionCookie(w, token, &h.config.JWT)

	profile, err := h.profiles.Get(r.Context(), user.ID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		writeServiceError(w, r, "auth", err)
		return
	}

	utils.WriteJSONResponse(w, status, dto.AuthResponse{
		User:  toUserResponse(user, profile),
		Token: token,
	})
}

// Register handles user registration
// @Summary Register a new user
// @Description Create an account and its empty profile, then start a session
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 201 {object} dto.AuthResponse "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "User already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req dto.RegisterRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", err.Error())
		return
	}

	user, err := h.users.Create(r.Context(), services.NewAccount{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Provider:     services.ProviderPassword,
		DisplayName:  req.DisplayName,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			utils.WriteErrorResponse(w, http.StatusConflict, "User already exists", "Email already registered")
			return
		}
		writeServiceError(w, r, "auth", err)
		return
	}

	h.issueSession(w, r, http.StatusCreated, user)
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email and password. The token is also set as an HttpOnly cookie.
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req dto.LoginRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields", err.Error())
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
			return
		}
		writeServiceError(w, r, "auth", err)
		return
	}

	// Google-only accounts have no password hash
	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
		return
	}

	h.issueSession(w, r, http.StatusOK, user)
}

// Logout clears the session cookie
// @Summary Logout user
// @Tags authentication
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	middleware.ClearSessionCookie(w, &h.config.JWT)
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

// Me returns the current user
// @Summary Get current user
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "auth", err)
		return
	}
	profile, err := h.profiles.Get(r.Context(), userID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		writeServiceError(w, r, "auth", err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, toUserResponse(user, profile))
}
