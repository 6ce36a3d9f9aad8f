package freetime

import (
	"time"

	"github.com/m04kA/SMC-FreetimeService/internal/domain"
)

// classification результат классификации слота
type classification struct {
	overlap domain.Overlap
	reason  domain.OverlapReason
	kind    domain.OverlapType
	entity  *domain.ScheduledEntity
}

// classifier классифицирует слоты одного ресурса в рамках одного запроса
// now уже сдвинут на booking_buffer_deadline
type classifier struct {
	cfg          *domain.ResourceConfig
	resourceID   int64
	now          time.Time
	bookingStart *time.Time
	horizonEnd   *time.Time
	caller       CallerContext
	policy       OwnershipPolicy
}

func newClassifier(cfg *domain.ResourceConfig, now time.Time, caller CallerContext, policy OwnershipPolicy) *classifier {
	c := &classifier{
		cfg:        cfg,
		resourceID: cfg.ID,
		now:        now.Add(time.Duration(cfg.BookingBufferDeadline) * time.Minute),
		caller:     caller,
		policy:     policy,
	}

	if cfg.HasBookingStart() {
		c.bookingStart = cfg.SimpleBookingStartDate
	}

	// Бронировать можно до конца дня "сегодня + horizon" включительно
	if cfg.HasDayHorizon() {
		end := startOfDay(now).AddDate(0, 0, cfg.BookingDayHorizon+1)
		c.horizonEnd = &end
	}

	return c
}

// classify порядок проверок: прошлое, ограничения бронирования, первая пересекающая сущность,
// deactivate_application, свободен
func (c *classifier) classify(slot slotStub, entities []*domain.ScheduledEntity) classification {
	// Прошлое важнее любого конфликта
	if !slot.end.After(c.now) {
		return classification{overlap: domain.OverlapPast, reason: domain.ReasonTimeInPast, kind: domain.TypeDisabled}
	}

	if c.bookingStart != nil && slot.start.Before(*c.bookingStart) {
		return classification{overlap: domain.OverlapPast, reason: domain.ReasonBeforeBookingStart, kind: domain.TypeDisabled}
	}

	if c.horizonEnd != nil && !slot.start.Before(*c.horizonEnd) {
		return classification{overlap: domain.OverlapPast, reason: domain.ReasonBeyondBookingHorizon, kind: domain.TypeDisabled}
	}

	for _, entity := range entities {
		if !c.applies(entity) || !entity.Intersects(slot.start, slot.end) {
			continue
		}

		result := classification{entity: entity, overlap: domain.OverlapBooked}
		result.reason, result.kind = overlapKind(entity, slot)
		if c.policy.IsOwnEntity(entity, c.caller) {
			result.overlap = domain.OverlapProvisional
		}
		return result
	}

	if c.cfg.DeactivateApplication {
		return classification{overlap: domain.OverlapNone, kind: domain.TypeDisabled}
	}

	return classification{overlap: domain.OverlapNone}
}

// applies сущность может занимать слот этого ресурса для этого вызывающего
func (c *classifier) applies(entity *domain.ScheduledEntity) bool {
	if !entity.Active || !entity.IsWellFormed() || !entity.HasResource(c.resourceID) {
		return false
	}
	// Собственная блокировка вызывающего не мешает ему же
	if entity.Type == domain.EntityTypeBlock && entity.SessionID != nil &&
		c.caller.SessionID != "" && *entity.SessionID == c.caller.SessionID {
		return false
	}
	return true
}

// overlapKind характер пересечения сущности со слотом
func overlapKind(entity *domain.ScheduledEntity, slot slotStub) (domain.OverlapReason, domain.OverlapType) {
	switch {
	case !entity.From.After(slot.start) && !entity.To.Before(slot.end):
		return domain.ReasonCompleteOverlap, domain.TypeComplete
	case !entity.From.Before(slot.start) && !entity.To.After(slot.end):
		return domain.ReasonCompleteContainment, domain.TypePartial
	case entity.From.Before(slot.start):
		return domain.ReasonEndOverlap, domain.TypePartial
	default:
		return domain.ReasonStartOverlap, domain.TypePartial
	}
}
