package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/events"
	"MINDBRIDGE_BACK-END/internal/matching"
	"MINDBRIDGE_BACK-END/internal/metrics"
	"MINDBRIDGE_BACK-END/internal/models"
	"MINDBRIDGE_BACK-END/internal/services"
	"MINDBRIDGE_BACK-END/internal/support"
	"MINDBRIDGE_BACK-END/internal/utils"
)

const requestsActionURL = "/peer-support?tab=requests"

// RequestsHandler manages the support request lifecycle endpoints
type RequestsHandler struct {
	requests services.SupportRequestService
	profiles services.ProfileService
	effects  sideEffects
}

// NewRequestsHandler creates a new RequestsHandler
func NewRequestsHandler(
	requests services.SupportRequestService,
	profiles services.ProfileService,
	notifications services.NotificationsService,
	publisher events.Publisher,
) *RequestsHandler {
	return &RequestsHandler{
		requests: requests,
		profiles: profiles,
		effects:  sideEffects{notifications: notifications, events: publisher},
	}
}

// Requests dispatches by HTTP method for /api/peer-support/requests
func (h *RequestsHandler) Requests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.ListRequests(w, r)
	case http.MethodPost:
		h.CreateRequest(w, r)
	case http.MethodPatch, http.MethodPut:
		h.RespondRequest(w, r)
	case http.MethodDelete:
		h.CancelRequest(w, r)
	default:
		methodNotAllowed(w)
	}
}

// nameAndAvatar loads a user's public display fields. Lookup failures fall
// back to the transformer defaults.
func (h *RequestsHandler) nameAndAvatar(ctx context.Context, userID uuid.UUID) (*string, *string) {
	p, err := h.profiles.Get(ctx, userID)
	if err != nil {
		return nil, nil
	}
	name := matching.DisplayName(p.DisplayName, p.FirstName, p.LastName, "")
	if name == "" {
		return nil, p.AvatarURL
	}
	return &name, p.AvatarURL
}

// view renders req for viewerID with both participants' display fields
func (h *RequestsHandler) view(ctx context.Context, req *models.SupportRequest, viewerID uuid.UUID) dto.SupportRequestView {
	row := models.SupportRequestRow{SupportRequest: *req}
	row.SenderName, row.SenderAvatar = h.nameAndAvatar(ctx, req.SenderID)
	row.ReceiverName, row.ReceiverAvatar = h.nameAndAvatar(ctx, req.ReceiverID)
	return matching.ToSupportRequest(row, viewerID)
}

// ListRequests handles GET /api/peer-support/requests
// @Summary List my support requests
// @Tags peer-support
// @Produce json
// @Security BearerAuth
// @Param direction query string false "sent | received (default both)"
// @Param status query string false "pending | accepted | rejected | cancelled | completed"
// @Success 200 {object} dto.SupportRequestListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/peer-support/requests [get]
func (h *RequestsHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	rows, err := h.requests.List(r.Context(), userID,
		strings.TrimSpace(q.Get("direction")), strings.ToLower(strings.TrimSpace(q.Get("status"))))
	if err != nil {
		writeServiceError(w, r, "requests", err)
		return
	}

	out := make([]dto.SupportRequestView, 0, len(rows))
	for _, row := range rows {
		out = append(out, matching.ToSupportRequest(row, userID))
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.SupportRequestListResponse{Requests: out})
}

// CreateRequest handles POST /api/peer-support/requests
// @Summary Send a support request
// @Description Fails with 400 while a pending or accepted request exists between the two users in either direction.
// @Tags peer-support
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSupportRequest true "Receiver and optional message"
// @Success 201 {object} dto.SupportRequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/peer-support/requests [post]
func (h *RequestsHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body dto.CreateSupportRequest
	if err := utils.DecodeJSONRequest(r, &body); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	body.ReceiverID = strings.TrimSpace(body.ReceiverID)
	if err := utils.ValidateStruct(body); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}
	receiverID := uuid.MustParse(body.ReceiverID)

	if body.Message != nil {
		trimmed := strings.TrimSpace(*body.Message)
		body.Message = &trimmed
	}

	req, err := h.requests.Create(r.Context(), userID, receiverID, body.Message, body.IsAnonymous)
	if err != nil {
		writeServiceError(w, r, "requests", err)
		return
	}
	metrics.SupportRequestsTotal.WithLabelValues("create").Inc()

	view := h.view(r.Context(), req, userID)

	senderLabel := matching.AnonymousName
	data := map[string]any{"request_id": req.ID.String()}
	if !req.IsAnonymous {
		if name, _ := h.nameAndAvatar(r.Context(), userID); name != nil {
			senderLabel = *name
		} else {
			senderLabel = matching.DefaultPeerName
		}
		data["sender_id"] = userID.String()
	}
	msg := senderLabel + " would like to connect with you"
	h.effects.notify(r.Context(), receiverID, services.NotificationRequestReceived, "New support request", &msg, data, requestsActionURL)
	h.effects.publish(events.Event{
		Subject:    events.SubjectRequestCreated,
		ActorID:    userID.String(),
		TargetID:   receiverID.String(),
		ResourceID: req.ID.String(),
		Data:       map[string]any{"is_anonymous": req.IsAnonymous},
	})

	utils.WriteJSONResponse(w, http.StatusCreated, dto.SupportRequestResponse{Request: view})
}

// RespondRequest handles PATCH /api/peer-support/requests
// @Summary Accept or reject a support request
// @Description Only the receiver may respond, and only while the request is pending. Accepting opens the chat with a system message.
// @Tags peer-support
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RespondSupportRequest true "Request id and action"
// @Success 200 {object} dto.SupportRequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/peer-support/requests [patch]
func (h *RequestsHandler) RespondRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body dto.RespondSupportRequest
	if err := utils.DecodeJSONRequest(r, &body); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	body.Action = strings.ToLower(strings.TrimSpace(body.Action))
	if err := utils.ValidateStruct(body); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}
	requestID := uuid.MustParse(body.RequestID)
	action, err := support.ParseAction(body.Action)
	if err != nil {
		writeServiceError(w, r, "requests", err)
		return
	}

	req, err := h.requests.Respond(r.Context(), userID, requestID, action)
	if err != nil {
		writeServiceError(w, r, "requests", err)
		return
	}
	metrics.SupportRequestsTotal.WithLabelValues(string(action)).Inc()

	view := h.view(r.Context(), req, userID)

	receiverLabel := matching.DefaultPeerName
	if name, _ := h.nameAndAvatar(r.Context(), userID); name != nil {
		receiverLabel = *name
	}
	data := map[string]any{"request_id": req.ID.String(), "receiver_id": userID.String()}
	if action == support.ActionAccept {
		msg := receiverLabel + " accepted your support request. You can now chat."
		h.effects.notify(r.Context(), req.SenderID, services.NotificationRequestAccepted, "Support request accepted", &msg, data, "/peer-support/chat?peer_id="+userID.String())
		h.effects.publish(events.Event{Subject: events.SubjectRequestAccepted, ActorID: userID.String(), TargetID: req.SenderID.String(), ResourceID: req.ID.String()})
	} else {
		msg := receiverLabel + " is not able to connect right now."
		h.effects.notify(r.Context(), req.SenderID, services.NotificationRequestRejected, "Support request declined", &msg, data, requestsActionURL)
		h.effects.publish(events.Event{Subject: events.SubjectRequestRejected, ActorID: userID.String(), TargetID: req.SenderID.String(), ResourceID: req.ID.String()})
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.SupportRequestResponse{Request: view})
}

// CancelRequest handles DELETE /api/peer-support/requests?id=
// @Summary Cancel a support request I sent
// @Description Only the sender may cancel, and only while the request is pending.
// @Tags peer-support
// @Produce json
// @Security BearerAuth
// @Param id query string true "Request ID"
// @Success 200 {object} dto.SupportRequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/peer-support/requests [delete]
func (h *RequestsHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	requestID, ok := parseID(w, "id", r.URL.Query().Get("id"))
	if !ok {
		return
	}

	req, err := h.requests.Cancel(r.Context(), userID, requestID)
	if err != nil {
		writeServiceError(w, r, "requests", err)
		return
	}
	metrics.SupportRequestsTotal.WithLabelValues(string(support.ActionCancel)).Inc()
	h.effects.publish(events.Event{
		Subject:    events.SubjectRequestCancelled,
		ActorID:    userID.String(),
		TargetID:   req.ReceiverID.String(),
		ResourceID: req.ID.String(),
	})

	utils.WriteJSONResponse(w, http.StatusOK, dto.SupportRequestResponse{Request: h.view(r.Context(), req, userID)})
}
