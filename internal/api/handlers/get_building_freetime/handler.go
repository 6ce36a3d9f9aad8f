package get_building_freetime

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
	msgInvalidBuildingID = "некорректный ID здания"
	msgInvalidRange      = "некорректный период: конец раньше начала или период слишком длинный"
	msgTooManySlots      = "слишком много слотов за период, сократите период"
	msgBuildingNotFound  = "здание не найдено"
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

// Handle GET /api/v1/buildings/{buildingId}/freetime
// Query params: start_date, end_date (required, YYYY-MM-DD), detailed_overlap, include_inactive (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFromContext(r.Context())

	buildingIDStr := mux.Vars(r)["buildingId"]
	buildingID, err := strconv.ParseInt(buildingIDStr, 10, 64)
	if err != nil || buildingID <= 0 {
		h.logger.Warn("GET /buildings/{id}/freetime - Invalid building ID: %s, request_id=%s", buildingIDStr, requestID)
		handlers.RespondBadRequest(w, msgInvalidBuildingID)
		return
	}

	query, err := slots.ParseQuery(r)
	if err != nil {
		h.logger.Warn("GET /buildings/{id}/freetime - Invalid query: building_id=%d, request_id=%s, error=%v",
			buildingID, requestID, err)
		handlers.RespondBadRequest(w, slots.QueryErrorMessage(err))
		return
	}

	result, err := h.useCase.ForBuilding(r.Context(), ToUseCaseRequest(buildingID, query, slots.CallerFromRequest(r)))
	if err != nil {
		switch {
		case errors.Is(err, freetime.ErrNotFound):
			h.logger.Warn("GET /buildings/{id}/freetime - Building not found: building_id=%d, request_id=%s", buildingID, requestID)
			handlers.RespondNotFound(w, msgBuildingNotFound)

		case errors.Is(err, freetime.ErrInvalidRange), errors.Is(err, freetime.ErrInvalidInput):
			h.logger.Warn("GET /buildings/{id}/freetime - Invalid range: building_id=%d, request_id=%s, error=%v",
				buildingID, requestID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, freetime.ErrTooManySlots):
			h.logger.Warn("GET /buildings/{id}/freetime - Too many slots: building_id=%d, request_id=%s, error=%v",
				buildingID, requestID, err)
			handlers.RespondBadRequest(w, msgTooManySlots)

		default:
			h.logger.Error("GET /buildings/{id}/freetime - Failed to get slots: building_id=%d, request_id=%s, error=%v",
				buildingID, requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /buildings/{id}/freetime - Slots retrieved successfully: building_id=%d, request_id=%s, resources_count=%d",
		buildingID, requestID, len(result))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
