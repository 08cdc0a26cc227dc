package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/metrics"
	"MINDBRIDGE_BACK-END/internal/models"
	"MINDBRIDGE_BACK-END/internal/services"
	"MINDBRIDGE_BACK-END/internal/utils"
)

// MindfulnessHandler serves journal, gratitude and strength entries and the
// daily streak
type MindfulnessHandler struct {
	entries services.MindfulnessService
	streaks services.StreakService
	now     func() time.Time
}

// NewMindfulnessHandler creates a new MindfulnessHandler
func NewMindfulnessHandler(entries services.MindfulnessService, streaks services.StreakService) *MindfulnessHandler {
	return &MindfulnessHandler{entries: entries, streaks: streaks, now: time.Now}
}

func toEntryResponse(e models.MindfulnessEntry) dto.MindfulnessEntryResponse {
	return dto.MindfulnessEntryResponse{
		ID:        e.ID.String(),
		Type:      e.EntryType,
		Title:     e.Title,
		Content:   e.Content,
		Mood:      e.Mood,
		Category:  e.Category,
		CreatedAt: utils.FormatTimestamp(e.CreatedAt),
		UpdatedAt: utils.FormatTimestamp(e.UpdatedAt),
	}
}

func toStreakResponse(s models.Streak, incremented bool) dto.StreakResponse {
	return dto.StreakResponse{
		CurrentStreak:    s.CurrentStreak,
		LongestStreak:    s.LongestStreak,
		TotalDays:        s.TotalDays,
		LastActivityDate: utils.FormatDate(s.LastActivityDate),
		Incremented:      incremented,
	}
}

// Entries dispatches by HTTP method for /api/mindfulness
func (h *MindfulnessHandler) Entries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.ListEntries(w, r)
	case http.MethodPost:
		h.CreateEntry(w, r)
	case http.MethodPut, http.MethodPatch:
		h.UpdateEntry(w, r)
	case http.MethodDelete:
		h.DeleteEntry(w, r)
	default:
		methodNotAllowed(w)
	}
}

// ListEntries handles GET /api/mindfulness
// @Summary List my mindfulness entries
// @Tags mindfulness
// @Produce json
// @Security BearerAuth
// @Param type query string false "journal | gratitude | strength"
// @Success 200 {object} dto.MindfulnessListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/mindfulness [get]
func (h *MindfulnessHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	entryType := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))
	list, err := h.entries.List(r.Context(), userID, entryType)
	if err != nil {
		writeServiceError(w, r, "mindfulness", err)
		return
	}

	out := make([]dto.MindfulnessEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEntryResponse(e))
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MindfulnessListResponse{Entries: out})
}

// CreateEntry handles POST /api/mindfulness
// @Summary Create a mindfulness entry
// @Tags mindfulness
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateMindfulnessRequest true "Entry"
// @Success 201 {object} dto.MindfulnessEntryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/mindfulness [post]
func (h *MindfulnessHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateMindfulnessRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	if err := services.ValidateNewEntry(req); err != nil {
		writeServiceError(w, r, "mindfulness", err)
		return
	}

	e, err := h.entries.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, "mindfulness", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, toEntryResponse(*e))
}

// UpdateEntry handles PUT /api/mindfulness
// @Summary Update one of my mindfulness entries
// @Tags mindfulness
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateMindfulnessRequest true "Entry id and fields to change"
// @Success 200 {object} dto.MindfulnessEntryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/mindfulness [put]
func (h *MindfulnessHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateMindfulnessRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	id, ok := parseID(w, "id", req.ID)
	if !ok {
		return
	}

	e, err := h.entries.Update(r.Context(), userID, id, req)
	if err != nil {
		writeServiceError(w, r, "mindfulness", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toEntryResponse(*e))
}

// DeleteEntry handles DELETE /api/mindfulness?id=
// @Summary Delete one of my mindfulness entries
// @Tags mindfulness
// @Produce json
// @Security BearerAuth
// @Param id query string true "Entry ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/mindfulness [delete]
func (h *MindfulnessHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, "id", r.URL.Query().Get("id"))
	if !ok {
		return
	}

	if err := h.entries.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, "mindfulness", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Entry deleted"})
}

// Streak dispatches by HTTP method for /api/mindfulness/streak
func (h *MindfulnessHandler) Streak(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.GetStreak(w, r)
	case http.MethodPost:
		h.RecordStreak(w, r)
	default:
		methodNotAllowed(w)
	}
}

// RecordStreak handles POST /api/mindfulness/streak
// @Summary Record today's mindfulness activity
// @Description Idempotent per calendar day in the given IANA timezone (UTC when omitted).
// @Tags mindfulness
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.StreakRequest false "Optional timezone"
// @Success 200 {object} dto.StreakResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/mindfulness/streak [post]
func (h *MindfulnessHandler) RecordStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.StreakRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil && !errors.Is(err, utils.ErrEmptyBody) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	today, err := services.CalendarDay(h.now(), strings.TrimSpace(req.Timezone))
	if err != nil {
		writeServiceError(w, r, "streak", err)
		return
	}

	s, result, err := h.streaks.Record(r.Context(), userID, today)
	if err != nil {
		writeServiceError(w, r, "streak", err)
		return
	}
	metrics.StreakUpdatesTotal.WithLabelValues(string(result)).Inc()

	utils.WriteJSONResponse(w, http.StatusOK, toStreakResponse(s, result.Changed()))
}

// GetStreak handles GET /api/mindfulness/streak
// @Summary Get my current streak
// @Description A streak whose last activity is before yesterday reads as zero.
// @Tags mindfulness
// @Produce json
// @Security BearerAuth
// @Param timezone query string false "IANA timezone, default UTC"
// @Success 200 {object} dto.StreakResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/mindfulness/streak [get]
func (h *MindfulnessHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	today, err := services.CalendarDay(h.now(), strings.TrimSpace(r.URL.Query().Get("timezone")))
	if err != nil {
		writeServiceError(w, r, "streak", err)
		return
	}

	s, err := h.streaks.Get(r.Context(), userID, today)
	if err != nil {
		writeServiceError(w, r, "streak", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toStreakResponse(s, false))
}
