package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/models"
	"MINDBRIDGE_BACK-END/internal/services"
	"MINDBRIDGE_BACK-END/internal/utils"
)

// NotificationsHandler: HTTP endpoints (list/mark read/mark all read)
type NotificationsHandler struct {
	svc services.NotificationsService
}

func NewNotificationsHandler(svc services.NotificationsService) *NotificationsHandler {
	return &NotificationsHandler{svc: svc}
}

func toNotificationItem(n models.Notification) dto.NotificationItem {
	return dto.NotificationItem{
		ID:        n.ID.String(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		ActionURL: n.ActionURL,
		Read:      n.Read,
		CreatedAt: utils.FormatTimestamp(n.CreatedAt),
	}
}

// ListNotifications handles GET /api/notifications
// @Summary List notifications
// @Description List user notifications with filters and pagination.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread_only query bool false "true|false (default false)"
// @Param type query string false "filter by type"
// @Param limit query int false "default 20 (max 100)"
// @Param offset query int false "default 0"
// @Success 200 {object} dto.NotificationListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/notifications [get]
func (h *NotificationsHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	f := services.NotificationFilter{
		UnreadOnly: strings.EqualFold(q.Get("unread_only"), "true"),
		Type:       strings.TrimSpace(q.Get("type")),
		Limit:      20,
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
		f.Limit = min(n, 100)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid offset", "offset must be a non-negative integer")
			return
		}
		f.Offset = n
	}
	if f.Type != "" && !services.IsValidNotificationType(f.Type) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid type", "invalid notification type")
		return
	}

	page, err := h.svc.List(r.Context(), userID, f)
	if err != nil {
		writeServiceError(w, r, "notifications", err)
		return
	}

	items := make([]dto.NotificationItem, 0, len(page.Items))
	for _, n := range page.Items {
		items = append(items, toNotificationItem(n))
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.NotificationListResponse{
		Notifications: items,
		Pagination: dto.NotificationListPagination{
			Total:       page.Total,
			UnreadCount: page.UnreadCount,
			Limit:       f.Limit,
			Offset:      f.Offset,
		},
	})
}

// MarkRead handles POST /api/notifications/{id}/read
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/notifications/{id}/read [post]
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	// /api/notifications/{id}/read
	rest := strings.TrimPrefix(r.URL.Path, "/api/notifications/")
	idStr, suffix, found := strings.Cut(rest, "/")
	if !found || suffix != "read" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid path", "missing or invalid notification id")
		return
	}
	nID, ok := parseID(w, "notification id", idStr)
	if !ok {
		return
	}

	if err := h.svc.MarkRead(r.Context(), userID, nID); err != nil {
		writeServiceError(w, r, "notifications", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Notification marked as read"})
}

// MarkAllRead handles POST /api/notifications/read-all
// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MarkAllReadResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/notifications/read-all [post]
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	n, err := h.svc.MarkAllRead(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "notifications", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MarkAllReadResponse{
		Message:      "All notifications marked as read",
		UpdatedCount: n,
	})
}
