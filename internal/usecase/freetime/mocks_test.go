package freetime

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-FreetimeService/internal/domain"
	resourceRepo "github.com/m04kA/SMC-FreetimeService/internal/infra/storage/resource"
	"github.com/m04kA/SMC-FreetimeService/pkg/logger"
)

// ── Mock ResourceRepository ──

type mockResourceRepo struct {
	resources map[int64]*domain.ResourceConfig
	buildings map[int64][]int64 // здание -> ресурсы в порядке sort
	err       error
}

func newMockResourceRepo() *mockResourceRepo {
	return &mockResourceRepo{
		resources: make(map[int64]*domain.ResourceConfig),
		buildings: make(map[int64][]int64),
	}
}

func (m *mockResourceRepo) add(buildingID int64, cfg *domain.ResourceConfig) {
	cfg.BuildingID = buildingID
	m.resources[cfg.ID] = cfg
	m.buildings[buildingID] = append(m.buildings[buildingID], cfg.ID)
}

func (m *mockResourceRepo) GetByID(_ context.Context, id int64) (*domain.ResourceConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	if cfg, ok := m.resources[id]; ok {
		return cfg, nil
	}
	return nil, resourceRepo.ErrResourceNotFound
}

func (m *mockResourceRepo) ListByBuilding(_ context.Context, buildingID int64, includeInactive bool) ([]*domain.ResourceConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([]*domain.ResourceConfig, 0)
	for _, id := range m.buildings[buildingID] {
		cfg := m.resources[id]
		if !includeInactive && !cfg.ProducesSlots() {
			continue
		}
		result = append(result, cfg)
	}
	return result, nil
}

func (m *mockResourceRepo) BuildingExists(_ context.Context, buildingID int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.buildings[buildingID]
	return ok, nil
}

// ── Mock ScheduleRepository ──

// mockScheduleRepo повторяет контракт репозитория: фильтр по окну и активности, сортировка (id, тип)
type mockScheduleRepo struct {
	mu       sync.Mutex
	entities []*domain.ScheduledEntity
	err      error
	delay    time.Duration

	resourceCalls int
	buildingCalls int
}

func (m *mockScheduleRepo) fetch(ctx context.Context, match func(e *domain.ScheduledEntity) bool, windowStart, windowEnd time.Time) ([]*domain.ScheduledEntity, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}

	result := make([]*domain.ScheduledEntity, 0)
	for _, e := range m.entities {
		if e.Active && match(e) && e.From.Before(windowEnd) && e.To.After(windowStart) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].ID != result[j].ID {
			return result[i].ID < result[j].ID
		}
		return result[i].Type.Rank() < result[j].Type.Rank()
	})
	return result, nil
}

func (m *mockScheduleRepo) ForResource(ctx context.Context, resourceID int64, windowStart, windowEnd time.Time) ([]*domain.ScheduledEntity, error) {
	m.mu.Lock()
	m.resourceCalls++
	m.mu.Unlock()

	return m.fetch(ctx, func(e *domain.ScheduledEntity) bool { return e.HasResource(resourceID) }, windowStart, windowEnd)
}

func (m *mockScheduleRepo) ForBuilding(ctx context.Context, _ int64, resourceIDs []int64, windowStart, windowEnd time.Time) (map[int64][]*domain.ScheduledEntity, error) {
	m.mu.Lock()
	m.buildingCalls++
	m.mu.Unlock()

	wanted := make(map[int64]bool, len(resourceIDs))
	for _, id := range resourceIDs {
		wanted[id] = true
	}

	all, err := m.fetch(ctx, func(e *domain.ScheduledEntity) bool {
		for _, id := range e.Resources {
			if wanted[id] {
				return true
			}
		}
		return false
	}, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	result := make(map[int64][]*domain.ScheduledEntity, len(resourceIDs))
	for _, id := range resourceIDs {
		result[id] = make([]*domain.ScheduledEntity, 0)
	}
	for _, e := range all {
		for _, id := range e.Resources {
			if wanted[id] {
				result[id] = append(result[id], e)
			}
		}
	}
	return result, nil
}

// ── Mock TransactionManager ──

type mockTxManager struct {
	calls int
	err   error
}

func (m *mockTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

// ── Mock Recorder ──

type mockRecorder struct {
	mu      sync.Mutex
	slots   map[string]int
	dropped int
	fanOut  []int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{slots: make(map[string]int)}
}

func (m *mockRecorder) ObserveSlot(overlap string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[overlap]++
}

func (m *mockRecorder) ObserveDroppedEntity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

func (m *mockRecorder) ObserveBuildingFanOut(resources int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fanOut = append(m.fanOut, resources)
}

// ── Время ──

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

// ── Хелперы ──

func oslo() *time.Location {
	loc, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		panic(err)
	}
	return loc
}

func at(loc *time.Location, year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string {
	return &s
}

func int64Ptr(v int64) *int64 {
	return &v
}

func resourceConfig(id int64, minutes int) *domain.ResourceConfig {
	return &domain.ResourceConfig{
		ID:                 id,
		Name:               "resource",
		BookingTimeMinutes: minutes,
		Active:             true,
	}
}

func entity(id int64, entityType domain.EntityType, from, to time.Time, resources ...int64) *domain.ScheduledEntity {
	return &domain.ScheduledEntity{
		ID:        id,
		Type:      entityType,
		Active:    true,
		From:      from,
		To:        to,
		Resources: resources,
	}
}

type fixture struct {
	uc        *UseCase
	resources *mockResourceRepo
	schedule  *mockScheduleRepo
	tx        *mockTxManager
	recorder  *mockRecorder
	loc       *time.Location
}

func newFixture(now time.Time, workers int) *fixture {
	loc := oslo()
	f := &fixture{
		resources: newMockResourceRepo(),
		schedule:  &mockScheduleRepo{},
		tx:        &mockTxManager{},
		recorder:  newMockRecorder(),
		loc:       loc,
	}
	f.uc = NewUseCase(f.resources, f.schedule, f.tx, nil, f.recorder, logger.NewNop(), Options{
		Location:     loc,
		QueryTimeout: time.Second,
		MaxRangeDays: 31,
		Workers:      workers,
	})
	f.uc.timeProvider = &fixedTimeProvider{now: now}
	return f
}
