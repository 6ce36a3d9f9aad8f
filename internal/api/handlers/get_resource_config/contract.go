package get_resource_config

import (
	"context"

	"github.com/m04kA/SMC-FreetimeService/internal/domain"
)

type ResourceConfigUseCase interface {
	ResourceConfig(ctx context.Context, resourceID int64) (*domain.ResourceConfig, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
