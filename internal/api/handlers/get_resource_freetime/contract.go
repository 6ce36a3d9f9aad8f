package get_resource_freetime

import (
	"context"

	"github.com/m04kA/SMC-FreetimeService/internal/usecase/freetime"
)

type FreetimeUseCase interface {
	ForResource(ctx context.Context, req *freetime.ResourceRequest) ([]freetime.TimeSlot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
