package freetime

import (
	"context"
	"time"

	"github.com/m04kA/SMC-FreetimeService/internal/domain"
)

// ResourceRepository интерфейс репозитория параметров ресурсов
type ResourceRepository interface {
	GetByID(ctx context.Context, resourceID int64) (*domain.ResourceConfig, error)
	ListByBuilding(ctx context.Context, buildingID int64, includeInactive bool) ([]*domain.ResourceConfig, error)
	BuildingExists(ctx context.Context, buildingID int64) (bool, error)
}

// ScheduleRepository интерфейс чтения занятости ресурсов
type ScheduleRepository interface {
	// ForResource сущности одного ресурса, пересекающие окно
	ForResource(ctx context.Context, resourceID int64, windowStart, windowEnd time.Time) ([]*domain.ScheduledEntity, error)
	// ForBuilding сущности всех переданных ресурсов одним запросом, разложенные по ресурсам
	ForBuilding(ctx context.Context, buildingID int64, resourceIDs []int64, windowStart, windowEnd time.Time) (map[int64][]*domain.ScheduledEntity, error)
}

// TransactionManager выполняет чтения в одном снимке данных
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// OwnershipPolicy решает, считается ли сущность "своей" (предварительной) для вызывающего
// Своя сущность даёт overlap=2, чужая overlap=1
type OwnershipPolicy interface {
	IsOwnEntity(entity *domain.ScheduledEntity, caller CallerContext) bool
}

// Recorder метрики движка
type Recorder interface {
	ObserveSlot(overlap string)
	ObserveDroppedEntity()
	ObserveBuildingFanOut(resources int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

type nopRecorder struct{}

func (nopRecorder) ObserveSlot(string) {}
func (nopRecorder) ObserveDroppedEntity() {}
func (nopRecorder) ObserveBuildingFanOut(int) {}
