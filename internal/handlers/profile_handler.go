package handlers

import (
	"net/http"

	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/models"
	"MINDBRIDGE_BACK-END/internal/services"
	"MINDBRIDGE_BACK-END/internal/utils"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func toProfileResponse(p *models.Profile) dto.ProfileResponse {
	prefs := p.SupportPreferences
	if prefs == nil {
		prefs = []string{}
	}
	return dto.ProfileResponse{
		UserID:              p.UserID.String(),
		Email:               p.Email,
		DisplayName:         p.DisplayName,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		AvatarURL:           p.AvatarURL,
		Location:            p.Location,
		SupportType:         p.SupportType,
		SupportPreferences:  prefs,
		JourneyNote:         p.JourneyNote,
		IsActive:            p.IsActive,
		Availability:        p.Availability,
		OnboardingCompleted: p.OnboardingCompleted,
		ProfileCompleted:    p.ProfileCompleted,
		CreatedAt:           utils.FormatTimestamp(p.CreatedAt),
		UpdatedAt:           utils.FormatTimestamp(p.UpdatedAt),
	}
}

// Profile dispatches by HTTP method for /api/profile
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.Get(w, r)
	case http.MethodPut, http.MethodPatch:
		h.Update(w, r)
	default:
		methodNotAllowed(w)
	}
}

// Get godoc
// @Summary      Get my profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ProfileResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	p, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "profile", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toProfileResponse(p))
}

// Update godoc
// @Summary      Update my profile
// @Description  Only provided fields are written. An empty string clears a field. support_preferences accepts an array or a comma-separated string.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      dto.ProfileUpdateRequest  true  "Profile fields"
// @Success      200      {object}  dto.ProfileResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.ErrorResponse
// @Router       /api/profile [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.ProfileUpdateRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	p, err := h.profiles.Update(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, "profile", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toProfileResponse(p))
}

// Sync godoc
// @Summary      Reconcile onboarding data cached on the client
// @Description  Server values win: non-empty server fields are kept and only empty ones are filled from the client.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      dto.ProfileUpdateRequest  true  "Client-cached profile"
// @Success      200      {object}  dto.ProfileSyncResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.ErrorResponse
// @Router       /api/profile/sync [post]
func (h *ProfileHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.ProfileUpdateRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	p, applied, ignored, err := h.profiles.Sync(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, "profile", err)
		return
	}
	if applied == nil {
		applied = []string{}
	}
	if ignored == nil {
		ignored = []string{}
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.ProfileSyncResponse{
		Profile: toProfileResponse(p),
		Applied: applied,
		Ignored: ignored,
	})
}
