package get_resource_freetime

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-FreetimeService/internal/api/handlers"
	"github.com/m04kA/SMC-FreetimeService/internal/api/handlers/slots"
	"github.com/m04kA/SMC-FreetimeService/internal/api/middleware"
	"github.com/m04kA/SMC-FreetimeService/internal/usecase/freetime"
)

const (
	msgInvalidResourceID = "некорректный ID ресурса"
	msgInvalidRange      = "некорректный период: конец раньше начала или период слишком длинный"
	msgTooManySlots      = "слишком много слотов за период, сократите период"
	msgResourceNotFound  = "ресурс не найден"
)

type Handler struct {
	useCase FreetimeUseCase
	logger  Logger
}

func NewHandler(useCase FreetimeUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{resourceId}/freetime
// Query params: start_date, end_date (required, YYYY-MM-DD), detailed_overlap (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFromContext(r.Context())

	resourceIDStr := mux.Vars(r)["resourceId"]
	resourceID, err := strconv.ParseInt(resourceIDStr, 10, 64)
	if err != nil || resourceID <= 0 {
		h.logger.Warn("GET /resources/{id}/freetime - Invalid resource ID: %s, request_id=%s", resourceIDStr, requestID)
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}

	query, err := slots.ParseQuery(r)
	if err != nil {
		h.logger.Warn("GET /resources/{id}/freetime - Invalid query: resource_id=%d, request_id=%s, error=%v",
			resourceID, requestID, err)
		handlers.RespondBadRequest(w, slots.QueryErrorMessage(err))
		return
	}

	result, err := h.useCase.ForResource(r.Context(), ToUseCaseRequest(resourceID, query, slots.CallerFromRequest(r)))
	if err != nil {
		switch {
		case errors.Is(err, freetime.ErrNotFound):
			h.logger.Warn("GET /resources/{id}/freetime - Resource not found: resource_id=%d, request_id=%s", resourceID, requestID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, freetime.ErrInvalidRange), errors.Is(err, freetime.ErrInvalidInput):
			h.logger.Warn("GET /resources/{id}/freetime - Invalid range: resource_id=%d, request_id=%s, error=%v",
				resourceID, requestID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, freetime.ErrTooManySlots):
			h.logger.Warn("GET /resources/{id}/freetime - Too many slots: resource_id=%d, request_id=%s, error=%v",
				resourceID, requestID, err)
			handlers.RespondBadRequest(w, msgTooManySlots)

		default:
			h.logger.Error("GET /resources/{id}/freetime - Failed to get slots: resource_id=%d, request_id=%s, error=%v",
				resourceID, requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /resources/{id}/freetime - Slots retrieved successfully: resource_id=%d, request_id=%s, slots_count=%d",
		resourceID, requestID, len(result))
	handlers.RespondJSON(w, http.StatusOK, slots.FromUseCase(result))
}
