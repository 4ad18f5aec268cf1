package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/consogab/backend/internal/presence"
	"github.com/consogab/backend/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	presence       *presence.Store
}

func NewProfileHandler(profileService *service.ProfileService, presenceStore *presence.Store) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		presence:       presenceStore,
	}
}

// Batch resolves display profiles for ?ids=a,b,c in one query. Unknown ids
// are omitted; callers fall back to placeholders.
func (h *ProfileHandler) Batch(w http.ResponseWriter, r *http.Request) {
	ids, ok := parseIDList(r.URL.Query().Get("ids"))
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_IDS", "ids must be a comma-separated list of UUIDs")
		return
	}

	profiles := h.profileService.Resolve(r.Context(), ids)
	writeJSON(w, http.StatusOK, profiles)
}

// Online reports which of the given users currently hold a live presence key.
func (h *ProfileHandler) Online(w http.ResponseWriter, r *http.Request) {
	ids, ok := parseIDList(r.URL.Query().Get("ids"))
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_IDS", "ids must be a comma-separated list of UUIDs")
		return
	}

	online, err := h.presence.Online(r.Context(), ids)
	if err != nil {
		log.Error().Err(err).Msg("presence lookup failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, online)
}

func parseIDList(raw string) ([]uuid.UUID, bool) {
	if raw == "" {
		return nil, true
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
