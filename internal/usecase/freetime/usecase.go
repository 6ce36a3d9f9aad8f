package freetime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-FreetimeService/internal/domain"
	resourceRepo "github.com/m04kA/SMC-FreetimeService/internal/infra/storage/resource"
)

const (
	defaultQueryTimeout = 10 * time.Second
	defaultWorkers      = 8
)

// UseCase движок доступности ресурсов
type UseCase struct {
	resourceRepo ResourceRepository
	scheduleRepo ScheduleRepository
	txManager    TransactionManager
	policy       OwnershipPolicy
	recorder     Recorder
	timeProvider TimeProvider
	logger       Logger

	loc          *time.Location
	queryTimeout time.Duration
	maxRangeDays int
	maxSlots     int
	workers      int
}

// NewUseCase создает новый экземпляр use case
// policy и recorder могут быть nil: тогда используются ProvisionalPolicy и пустой recorder
func NewUseCase(
	resourceRepo ResourceRepository,
	scheduleRepo ScheduleRepository,
	txManager TransactionManager,
	policy OwnershipPolicy,
	recorder Recorder,
	logger Logger,
	opts Options,
) *UseCase {
	if policy == nil {
		policy = ProvisionalPolicy{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = defaultQueryTimeout
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}

	return &UseCase{
		resourceRepo: resourceRepo,
		scheduleRepo: scheduleRepo,
		txManager:    txManager,
		policy:       policy,
		recorder:     recorder,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		loc:          opts.Location,
		queryTimeout: opts.QueryTimeout,
		maxRangeDays: opts.MaxRangeDays,
		maxSlots:     slotLimit(opts.MaxRangeDays),
		workers:      opts.Workers,
	}
}

// ForResource возвращает слоты ресурса за период, покрывающие его без пропусков
func (uc *UseCase) ForResource(ctx context.Context, req *ResourceRequest) ([]TimeSlot, error) {
	uc.logger.Info("ForResource: resource=%d, start=%s, end=%s, detailed=%t",
		req.ResourceID, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat), req.Detailed)

	// 1. Валидация входных данных
	if err := validateID("resourceID", req.ResourceID); err != nil {
		uc.logger.Warn("ForResource: validation failed: %v", err)
		return nil, err
	}

	windowStart, windowEnd, err := buildWindow(req.StartDate, req.EndDate, uc.loc, uc.maxRangeDays)
	if err != nil {
		uc.logger.Warn("ForResource: validation failed: %v", err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
	defer cancel()

	// 2. Одно "сейчас" на весь запрос
	now := uc.timeProvider.Now().In(uc.loc)

	// 3. Параметры ресурса
	cfg, err := uc.resourceRepo.GetByID(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrResourceNotFound) {
			uc.logger.Warn("ForResource: resource id=%d not found", req.ResourceID)
			return nil, fmt.Errorf("%w: resource %d", ErrNotFound, req.ResourceID)
		}
		return nil, uc.upstreamError("ForResource", err)
	}

	if !cfg.ProducesSlots() {
		uc.logger.Info("ForResource: resource id=%d has no calendar (active=%t, deactivate_calendar=%t)",
			cfg.ID, cfg.Active, cfg.DeactivateCalendar)
		return []TimeSlot{}, nil
	}

	// 4. Занятость ресурса
	entities, err := uc.scheduleRepo.ForResource(ctx, req.ResourceID, windowStart, windowEnd)
	if err != nil {
		return nil, uc.upstreamError("ForResource", err)
	}

	// 5. Генерация и классификация слотов
	slots, err := uc.computeSlots(cfg, entities, windowStart, windowEnd, now, req.Detailed, req.Caller)
	if err != nil {
		uc.logger.Error("ForResource: resource id=%d: %v", cfg.ID, err)
		return nil, err
	}

	uc.logger.Info("ForResource: generated %d slots for resource=%d from %d entities",
		len(slots), cfg.ID, len(entities))

	return slots, nil
}

// ForBuilding возвращает слоты всех ресурсов здания
// Результат для каждого ресурса совпадает с ForResource для него же
func (uc *UseCase) ForBuilding(ctx context.Context, req *BuildingRequest) (map[int64][]TimeSlot, error) {
	uc.logger.Info("ForBuilding: building=%d, start=%s, end=%s, detailed=%t, include_inactive=%t",
		req.BuildingID, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat),
		req.Detailed, req.IncludeInactive)

	// 1. Валидация входных данных
	if err := validateID("buildingID", req.BuildingID); err != nil {
		uc.logger.Warn("ForBuilding: validation failed: %v", err)
		return nil, err
	}

	windowStart, windowEnd, err := buildWindow(req.StartDate, req.EndDate, uc.loc, uc.maxRangeDays)
	if err != nil {
		uc.logger.Warn("ForBuilding: validation failed: %v", err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
	defer cancel()

	now := uc.timeProvider.Now().In(uc.loc)

	// 2. Ресурсы и их занятость читаются в одном снимке
	var (
		resources          []*domain.ResourceConfig
		entitiesByResource map[int64][]*domain.ScheduledEntity
	)

	err = uc.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		exists, err := uc.resourceRepo.BuildingExists(ctx, req.BuildingID)
		if err != nil {
			return uc.upstreamError("ForBuilding", err)
		}
		if !exists {
			uc.logger.Warn("ForBuilding: building id=%d not found", req.BuildingID)
			return fmt.Errorf("%w: building %d", ErrNotFound, req.BuildingID)
		}

		listed, err := uc.resourceRepo.ListByBuilding(ctx, req.BuildingID, req.IncludeInactive)
		if err != nil {
			return uc.upstreamError("ForBuilding", err)
		}

		resourceIDs := make([]int64, 0, len(listed))
		for _, cfg := range listed {
			if !cfg.ProducesSlots() {
				if !req.IncludeInactive {
					continue
				}
			} else {
				resourceIDs = append(resourceIDs, cfg.ID)
			}
			resources = append(resources, cfg)
		}

		// Один запрос на всё здание
		entitiesByResource, err = uc.scheduleRepo.ForBuilding(ctx, req.BuildingID, resourceIDs, windowStart, windowEnd)
		if err != nil {
			return uc.upstreamError("ForBuilding", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, uc.upstreamError("ForBuilding", err)
	}

	uc.recorder.ObserveBuildingFanOut(len(resources))

	// 3. Слоты по ресурсам независимы и считаются параллельно
	// Ресурс с некорректной настройкой не попадает в ответ и не ломает остальные
	results := make([][]TimeSlot, len(resources))
	skipped := make([]bool, len(resources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)

	for i, cfg := range resources {
		i, cfg := i, cfg
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots, err := uc.computeSlots(cfg, entitiesByResource[cfg.ID], windowStart, windowEnd, now, req.Detailed, req.Caller)
			if errors.Is(err, ErrConfigInconsistent) {
				uc.logger.Error("ForBuilding: building id=%d: skipping resource id=%d: %v", req.BuildingID, cfg.ID, err)
				skipped[i] = true
				return nil
			}
			if err != nil {
				return fmt.Errorf("resource id=%d: %w", cfg.ID, err)
			}
			results[i] = slots
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrTooManySlots) {
			uc.logger.Error("ForBuilding: building id=%d: %v", req.BuildingID, err)
			return nil, err
		}
		return nil, uc.upstreamError("ForBuilding", err)
	}

	byResource := make(map[int64][]TimeSlot, len(resources))
	for i, cfg := range resources {
		if skipped[i] {
			continue
		}
		byResource[cfg.ID] = results[i]
	}

	uc.logger.Info("ForBuilding: computed slots for %d resources of building=%d", len(byResource), req.BuildingID)

	return byResource, nil
}

// ResourceConfig возвращает параметры расписания ресурса
func (uc *UseCase) ResourceConfig(ctx context.Context, resourceID int64) (*domain.ResourceConfig, error) {
	if err := validateID("resourceID", resourceID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.queryTimeout)
	defer cancel()

	cfg, err := uc.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrResourceNotFound) {
			uc.logger.Warn("ResourceConfig: resource id=%d not found", resourceID)
			return nil, fmt.Errorf("%w: resource %d", ErrNotFound, resourceID)
		}
		return nil, uc.upstreamError("ResourceConfig", err)
	}

	return cfg, nil
}

// computeSlots общий для ForResource и ForBuilding расчёт слотов одного ресурса
func (uc *UseCase) computeSlots(
	cfg *domain.ResourceConfig,
	entities []*domain.ScheduledEntity,
	windowStart, windowEnd, now time.Time,
	detailed bool,
	caller CallerContext,
) ([]TimeSlot, error) {
	stubs, err := generateSlots(cfg, windowStart, windowEnd, uc.loc, uc.maxSlots)
	if err != nil {
		return nil, err
	}

	valid := uc.dropMalformed(cfg.ID, entities)
	c := newClassifier(cfg, now, caller, uc.policy)

	slots := make([]TimeSlot, 0, len(stubs))
	for _, stub := range stubs {
		result := c.classify(stub, valid)
		uc.recorder.ObserveSlot(result.overlap.String())
		slots = append(slots, toTimeSlot(stub, result, cfg.ID, detailed))
	}

	return slots, nil
}

// dropMalformed отбрасывает сущности с from_ >= to_, одна такая сущность не должна ломать весь ответ
func (uc *UseCase) dropMalformed(resourceID int64, entities []*domain.ScheduledEntity) []*domain.ScheduledEntity {
	valid := make([]*domain.ScheduledEntity, 0, len(entities))
	for _, entity := range entities {
		if !entity.IsWellFormed() {
			uc.logger.Warn("computeSlots: resource=%d: dropping %s id=%d with from_=%s >= to_=%s",
				resourceID, entity.Type, entity.ID, entity.From.Format(time.RFC3339), entity.To.Format(time.RFC3339))
			uc.recorder.ObserveDroppedEntity()
			continue
		}
		valid = append(valid, entity)
	}
	return valid
}

func toTimeSlot(stub slotStub, result classification, resourceID int64, detailed bool) TimeSlot {
	slot := TimeSlot{
		Start:   stub.start,
		End:     stub.end,
		When:    stub.when(),
		Overlap: result.overlap,
	}

	if !detailed {
		return slot
	}

	id := resourceID
	slot.ResourceID = &id
	slot.Reason = result.reason
	slot.Type = result.kind
	if result.entity != nil {
		slot.Event = &OverlapEvent{
			ID:     result.entity.ID,
			Type:   result.entity.Type,
			Status: result.entity.Status,
		}
	}

	return slot
}

// upstreamError ошибка чтения данных, таймаут тоже считается временной недоступностью
func (uc *UseCase) upstreamError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		uc.logger.Error("%s: query timeout after %s: %v", op, uc.queryTimeout, err)
	} else {
		uc.logger.Error("%s: failed to read data: %v", op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, op, err)
}
