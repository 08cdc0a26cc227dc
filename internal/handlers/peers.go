package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"MINDBRIDGE_BACK-END/internal/dto"
	"MINDBRIDGE_BACK-END/internal/matching"
	"MINDBRIDGE_BACK-END/internal/models"
	"MINDBRIDGE_BACK-END/internal/services"
	"MINDBRIDGE_BACK-END/internal/utils"
)

// maxPeerLimit caps the limit query parameter
const maxPeerLimit = 100

// PeersHandler lists candidate peers scored against the caller's preferences
type PeersHandler struct {
	profiles  services.ProfileService
	poolLimit int
}

// NewPeersHandler creates a PeersHandler. poolLimit bounds how many
// candidates are read before filtering.
func NewPeersHandler(profiles services.ProfileService, poolLimit int) *PeersHandler {
	if poolLimit <= 0 {
		poolLimit = 50
	}
	return &PeersHandler{profiles: profiles, poolLimit: poolLimit}
}

// ListPeers handles GET /api/peer-support
// @Summary List matched peers
// @Description Other users with a support type, scored against my preferences, then filtered and sorted.
// @Tags peer-support
// @Produce json
// @Security BearerAuth
// @Param activeOnly query bool false "only peers marked active"
// @Param sort query string false "match (default) | rating | peopleSupported | availability"
// @Param type query string false "seeker | giver"
// @Param limit query int false "max peers returned"
// @Success 200 {object} dto.PeerListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/peer-support [get]
func (h *PeersHandler) ListPeers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	sortKey, ok := matching.ParseSortKey(q.Get("sort"))
	if !ok {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid sort", "sort must be match, rating, peopleSupported or availability")
		return
	}

	var filter matching.Filter
	if v := q.Get("activeOnly"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid activeOnly", "activeOnly must be true or false")
			return
		}
		filter.ActiveOnly = &b
	}
	if v := strings.ToLower(strings.TrimSpace(q.Get("type"))); v != "" {
		if !models.IsValidSupportType(v) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid type", "type must be seeker or giver")
			return
		}
		filter.SupportType = v
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
		limit = min(n, maxPeerLimit)
	}

	var viewerPrefs []string
	viewer, err := h.profiles.Get(r.Context(), userID)
	switch {
	case err == nil:
		viewerPrefs = matching.SplitPreferences(viewer.SupportPreferences)
	case !errors.Is(err, services.ErrNotFound):
		writeServiceError(w, r, "peers", err)
		return
	}

	candidates, err := h.profiles.ListCandidates(r.Context(), userID, services.CandidateQuery{
		Limit:       h.poolLimit,
		ActiveOnly:  filter.ActiveOnly != nil && *filter.ActiveOnly,
		SupportType: filter.SupportType,
	})
	if err != nil {
		writeServiceError(w, r, "peers", err)
		return
	}

	peers := make([]dto.PeerMatch, 0, len(candidates))
	for _, c := range candidates {
		peers = append(peers, matching.ToPeerMatch(c, viewerPrefs))
	}
	peers = matching.FilterPeers(peers, filter)
	matching.SortPeers(peers, sortKey)
	if limit > 0 && len(peers) > limit {
		peers = peers[:limit]
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.PeerListResponse{Peers: peers, Total: len(peers)})
}
