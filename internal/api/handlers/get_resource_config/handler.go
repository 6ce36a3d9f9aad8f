package get_resource_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-FreetimeService/internal/api/handlers"
	"github.com/m04kA/SMC-FreetimeService/internal/api/middleware"
	"github.com/m04kA/SMC-FreetimeService/internal/usecase/freetime"
)

const (
	msgInvalidResourceID = "некорректный ID ресурса"
	msgResourceNotFound  = "ресурс не найден"
)

type Handler struct {
	useCase ResourceConfigUseCase
	logger  Logger
}

func NewHandler(useCase ResourceConfigUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{resourceId}/config
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFromContext(r.Context())

	resourceIDStr := mux.Vars(r)["resourceId"]
	resourceID, err := strconv.ParseInt(resourceIDStr, 10, 64)
	if err != nil || resourceID <= 0 {
		h.logger.Warn("GET /resources/{id}/config - Invalid resource ID: %s, request_id=%s", resourceIDStr, requestID)
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}

	cfg, err := h.useCase.ResourceConfig(r.Context(), resourceID)
	if err != nil {
		switch {
		case errors.Is(err, freetime.ErrNotFound):
			h.logger.Warn("GET /resources/{id}/config - Resource not found: resource_id=%d, request_id=%s", resourceID, requestID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, freetime.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidResourceID)

		default:
			h.logger.Error("GET /resources/{id}/config - Failed to get config: resource_id=%d, request_id=%s, error=%v",
				resourceID, requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /resources/{id}/config - Config retrieved successfully: resource_id=%d, request_id=%s", resourceID, requestID)
	handlers.RespondJSON(w, http.StatusOK, FromDomain(cfg))
}
