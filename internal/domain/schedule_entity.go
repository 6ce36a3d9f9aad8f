package domain

import "time"

// EntityType тип занятия ресурса
type EntityType string

const (
	EntityTypeAllocation EntityType = "allocation"
	EntityTypeBooking    EntityType = "booking"
	EntityTypeEvent      EntityType = "event"
	EntityTypeBlock      EntityType = "block" // временная блокировка на время заполнения заявки
)

// Rank порядок типов при равных ID
func (t EntityType) Rank() int {
	switch t {
	case EntityTypeAllocation:
		return 0
	case EntityTypeBooking:
		return 1
	case EntityTypeEvent:
		return 2
	case EntityTypeBlock:
		return 3
	default:
		return 4
	}
}

// ScheduledEntity событие, бронирование, выделение или блокировка, занимающие ресурсы на интервал [From, To)
type ScheduledEntity struct {
	ID             int64
	Type           EntityType
	Active         bool
	From           time.Time
	To             time.Time
	BuildingID     int64
	Resources      []int64
	Status         *string // статус связанной заявки
	OrganizationID *int64
	SessionID      *string // только для блокировок
}

// IsWellFormed возвращает true, если интервал непустой
func (e *ScheduledEntity) IsWellFormed() bool {
	return e.From.Before(e.To)
}

// HasResource возвращает true, если сущность занимает ресурс
func (e *ScheduledEntity) HasResource(resourceID int64) bool {
	for _, id := range e.Resources {
		if id == resourceID {
			return true
		}
	}
	return false
}

// Intersects проверяет пересечение с полуоткрытым интервалом [start, end)
// Интервалы, которые только касаются границами, не пересекаются
func (e *ScheduledEntity) Intersects(start, end time.Time) bool {
	return e.From.Before(end) && e.To.After(start)
}

// StatusValue статус заявки или пустая строка
func (e *ScheduledEntity) StatusValue() string {
	if e.Status == nil {
		return ""
	}
	return *e.Status
}
