package freetime

import (
	"time"

	"github.com/m04kA/SMC-FreetimeService/internal/domain"
)

// CallerContext данные вызывающего, влияющие на классификацию
// Передаётся явно вместо глобального состояния сессии
type CallerContext struct {
	SessionID      string // блокировки этой сессии не учитываются
	OrganizationID *int64
}

// ResourceRequest запрос доступности одного ресурса
type ResourceRequest struct {
	ResourceID int64
	StartDate  time.Time // дата без времени, первый день периода
	EndDate    time.Time // дата без времени, последний день периода включительно
	Detailed   bool
	Caller     CallerContext
}

// BuildingRequest запрос доступности всех ресурсов здания
type BuildingRequest struct {
	BuildingID      int64
	StartDate       time.Time
	EndDate         time.Time
	Detailed        bool
	IncludeInactive bool // включать ресурсы без календаря пустыми списками
	Caller          CallerContext
}

// TimeSlot классифицированный слот
// Детали (ResourceID, Reason, Type, Event) заполняются только для детального ответа
type TimeSlot struct {
	Start      time.Time // в часовом поясе движка
	End        time.Time
	When       string
	Overlap    domain.Overlap
	Reason     domain.OverlapReason
	Type       domain.OverlapType
	Event      *OverlapEvent
	ResourceID *int64
}

// OverlapEvent сущность, из-за которой слот занят
type OverlapEvent struct {
	ID     int64
	Type   domain.EntityType
	Status *string
}

// Options параметры движка из конфигурации
type Options struct {
	Location     *time.Location
	QueryTimeout time.Duration
	MaxRangeDays int
	Workers      int
}
