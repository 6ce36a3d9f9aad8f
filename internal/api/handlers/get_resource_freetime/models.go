package get_resource_freetime

import (
	"github.com/m04kA/SMC-FreetimeService/internal/api/handlers/slots"
	"github.com/m04kA/SMC-FreetimeService/internal/usecase/freetime"
)

// ToUseCaseRequest создает запрос use case из параметров запроса
func ToUseCaseRequest(resourceID int64, query *slots.Query, caller freetime.CallerContext) *freetime.ResourceRequest {
	return &freetime.ResourceRequest{
		ResourceID: resourceID,
		StartDate:  query.StartDate,
		EndDate:    query.EndDate,
		Detailed:   query.Detailed,
		Caller:     caller,
	}
}
