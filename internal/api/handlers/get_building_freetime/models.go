package get_building_freetime

import (
	"github.com/m04kA/SMC-FreetimeService/internal/api/handlers/slots"
	"github.com/m04kA/SMC-FreetimeService/internal/usecase/freetime"
)

// BuildingFreetimeResponse слоты по ресурсам здания, ключ - ID ресурса
type BuildingFreetimeResponse map[string][]slots.TimeSlot

// ToUseCaseRequest создает запрос use case из параметров запроса
func ToUseCaseRequest(buildingID int64, query *slots.Query, caller freetime.CallerContext) *freetime.BuildingRequest {
	return &freetime.BuildingRequest{
		BuildingID:      buildingID,
		StartDate:       query.StartDate,
		EndDate:         query.EndDate,
		Detailed:        query.Detailed,
		IncludeInactive: query.IncludeInactive,
		Caller:          caller,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(byResource map[int64][]freetime.TimeSlot) BuildingFreetimeResponse {
	return slots.FromUseCaseMap(byResource)
}
