package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/consogab/backend/internal/service"
	"github.com/consogab/backend/internal/transport/http/middleware"
	"github.com/consogab/backend/pkg/validator"
)

type BusinessHandler struct {
	businessService *service.BusinessService
}

func NewBusinessHandler(businessService *service.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

func (h *BusinessHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateBusinessInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateBusiness(input.Name, input.Category, input.City); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	business, err := h.businessService.Create(r.Context(), userID, input)
	if err != nil {
		log.Error().Err(err).Msg("create business failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, business)
}

func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid business ID")
		return
	}

	business, err := h.businessService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Business not found")
		} else {
			log.Error().Err(err).Msg("get business failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, business)
}

func (h *BusinessHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	businesses, err := h.businessService.ListByOwner(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("list own businesses failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, businesses)
}

func (h *BusinessHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 50
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	businesses, err := h.businessService.Search(r.Context(), q.Get("q"), q.Get("category"), q.Get("city"), limit)
	if err != nil {
		log.Error().Err(err).Msg("search businesses failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, businesses)
}
