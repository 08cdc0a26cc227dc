package handlers

import (
	"context"
	"errors"
	"net/http"

	"MINDBRIDGE_BACK-END/internal/ai"
	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/metrics"
	"MINDBRIDGE_BACK-END/internal/utils"
)

// Replier produces AI companion replies; *ai.Companion satisfies it
type Replier interface {
	Reply(ctx context.Context, req dto.AIChatRequest) (dto.AIChatResponse, error)
}

type AIChatHandler struct {
	companion Replier
}

func NewAIChatHandler(companion Replier) *AIChatHandler {
	return &AIChatHandler{companion: companion}
}

// Chat handles POST /api/ai-chat
// @Summary Talk to the AI companion
// @Description Crisis messages return helpline resources instead of a model reply.
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AIChatRequest true "Message and recent history"
// @Success 200 {object} dto.AIChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/ai-chat [post]
func (h *AIChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req dto.AIChatRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	resp, err := h.companion.Reply(r.Context(), req)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyMessage) || errors.Is(err, ai.ErrMessageTooLong) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", err.Error())
			return
		}
		writeServiceError(w, r, "ai", err)
		return
	}
	metrics.AIRepliesTotal.WithLabelValues(resp.Source).Inc()

	utils.WriteJSONResponse(w, http.StatusOK, resp)
}
