package freetime

import "github.com/m04kA/SMC-FreetimeService/internal/domain"

// ProvisionalPolicy политика по умолчанию: предварительными считаются блокировки
// и сущности заявок в процессе заполнения (NEWPARTIAL1)
type ProvisionalPolicy struct{}

// IsOwnEntity реализует OwnershipPolicy
func (ProvisionalPolicy) IsOwnEntity(entity *domain.ScheduledEntity, _ CallerContext) bool {
	return entity.Type == domain.EntityTypeBlock ||
		entity.StatusValue() == domain.ApplicationStatusPartial
}

// OrganizationPolicy считает своими сущности организации вызывающего,
// остальное решает Fallback
type OrganizationPolicy struct {
	Fallback OwnershipPolicy
}

// IsOwnEntity реализует OwnershipPolicy
func (p OrganizationPolicy) IsOwnEntity(entity *domain.ScheduledEntity, caller CallerContext) bool {
	if caller.OrganizationID != nil && entity.OrganizationID != nil &&
		*caller.OrganizationID == *entity.OrganizationID {
		return true
	}
	if p.Fallback == nil {
		return false
	}
	return p.Fallback.IsOwnEntity(entity, caller)
}

// NewPolicy политика по имени из конфигурации (provisional, organization)
func NewPolicy(name string) OwnershipPolicy {
	if name == "organization" {
		return OrganizationPolicy{Fallback: ProvisionalPolicy{}}
	}
	return ProvisionalPolicy{}
}
