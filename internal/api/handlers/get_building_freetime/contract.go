package get_building_freetime

import (
	"context"

	"github.com/m04kA/SMC-FreetimeService/internal/usecase/freetime"
)

type FreetimeUseCase interface {
	ForBuilding(ctx context.Context, req *freetime.BuildingRequest) (map[int64][]freetime.TimeSlot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
