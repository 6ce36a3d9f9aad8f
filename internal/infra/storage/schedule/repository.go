package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/m04kA/SMC-FreetimeService/internal/domain"
	"github.com/m04kA/SMC-FreetimeService/pkg/dbmetrics"
	"github.com/m04kA/SMC-FreetimeService/pkg/psqlbuilder"
)

// Колонки from_/to_ имеют тип timestamp without time zone и хранят местное время
const wallClockLayout = "2006-01-02 15:04:05"

// Repository читает занятость ресурсов: выделения, бронирования, мероприятия и блокировки
type Repository struct {
	db  DBExecutor
	loc *time.Location
}

// NewRepository создает новый экземпляр репозитория расписания
// loc - часовой пояс, в котором хранятся from_/to_
func NewRepository(db DBExecutor, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.Local
	}
	return &Repository{db: db, loc: loc}
}

// ForResource возвращает активные сущности, занимающие ресурс и пересекающие [windowStart, windowEnd)
// Порядок: id по возрастанию, при равных id allocation < booking < event < block
func (r *Repository) ForResource(ctx context.Context, resourceID int64, windowStart, windowEnd time.Time) ([]*domain.ScheduledEntity, error) {
	entities, err := r.fetch(ctx, []int64{resourceID}, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("ForResource - resource %d: %w", resourceID, err)
	}
	return entities, nil
}

// ForBuilding одним запросом получает сущности для всех переданных ресурсов здания
// и раскладывает их по ресурсам. Порядок внутри каждого ресурса совпадает с ForResource
// В результате есть ключ для каждого переданного ресурса, даже если список пуст
func (r *Repository) ForBuilding(ctx context.Context, buildingID int64, resourceIDs []int64, windowStart, windowEnd time.Time) (map[int64][]*domain.ScheduledEntity, error) {
	result := make(map[int64][]*domain.ScheduledEntity, len(resourceIDs))
	for _, id := range resourceIDs {
		result[id] = make([]*domain.ScheduledEntity, 0)
	}

	if len(resourceIDs) == 0 {
		return result, nil
	}

	entities, err := r.fetch(ctx, resourceIDs, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("ForBuilding - building %d: %w", buildingID, err)
	}

	for _, entity := range entities {
		for _, resourceID := range entity.Resources {
			if _, ok := result[resourceID]; ok {
				result[resourceID] = append(result[resourceID], entity)
			}
		}
	}

	return result, nil
}

func (r *Repository) fetch(ctx context.Context, resourceIDs []int64, windowStart, windowEnd time.Time) ([]*domain.ScheduledEntity, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	from := windowStart.In(r.loc).Format(wallClockLayout)
	to := windowEnd.In(r.loc).Format(wallClockLayout)
	ids := pq.Array(resourceIDs)

	query, args, err := psqlbuilder.UnionAll(
		allocationsQuery(ids, from, to),
		bookingsQuery(ids, from, to),
		eventsQuery(ids, from, to),
		blocksQuery(ids, from, to),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch - build union query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	type entityKey struct {
		entityType domain.EntityType
		id         int64
	}

	byKey := make(map[entityKey]*domain.ScheduledEntity)
	entities := make([]*domain.ScheduledEntity, 0)

	for rows.Next() {
		var (
			entityType     string
			id             int64
			entityFrom     time.Time
			entityTo       time.Time
			buildingID     sql.NullInt64
			resourceID     int64
			status         sql.NullString
			organizationID sql.NullInt64
			sessionID      sql.NullString
		)

		err := rows.Scan(
			&entityType,
			&id,
			&entityFrom,
			&entityTo,
			&buildingID,
			&resourceID,
			&status,
			&organizationID,
			&sessionID,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: fetch - scan row: %v", ErrScanRow, err)
		}

		key := entityKey{entityType: domain.EntityType(entityType), id: id}
		if entity, ok := byKey[key]; ok {
			entity.Resources = append(entity.Resources, resourceID)
			continue
		}

		if key.entityType.Rank() > domain.EntityTypeBlock.Rank() {
			return nil, fmt.Errorf("%w: fetch - %q", ErrUnknownEntityType, entityType)
		}

		entity := &domain.ScheduledEntity{
			ID:         id,
			Type:       key.entityType,
			Active:     true,
			From:       r.wallClock(entityFrom),
			To:         r.wallClock(entityTo),
			BuildingID: buildingID.Int64,
			Resources:  []int64{resourceID},
		}
		if status.Valid {
			entity.Status = &status.String
		}
		if organizationID.Valid {
			orgID := organizationID.Int64
			entity.OrganizationID = &orgID
		}
		if sessionID.Valid {
			entity.SessionID = &sessionID.String
		}

		byKey[key] = entity
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: fetch - rows error: %v", ErrScanRow, err)
	}

	for _, entity := range entities {
		sort.Slice(entity.Resources, func(i, j int) bool { return entity.Resources[i] < entity.Resources[j] })
	}

	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].ID != entities[j].ID {
			return entities[i].ID < entities[j].ID
		}
		return entities[i].Type.Rank() < entities[j].Type.Rank()
	})

	return entities, nil
}

// wallClock переносит время из БД (драйвер отдаёт его как UTC) в часовой пояс репозитория без сдвига
func (r *Repository) wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), r.loc)
}

// intersects условие пересечения полуоткрытых интервалов [from_, to_) и [from, to)
func intersects(alias, from, to string) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.Lt{alias + ".from_": to},
		squirrel.Gt{alias + ".to_": from},
	}
}

// Выделения и бронирования учитываются только в активном опубликованном сезоне
func allocationsQuery(ids interface{}, from, to string) squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"'allocation' AS type",
		"a.id",
		"a.from_",
		"a.to_",
		"s.building_id",
		"ar.resource_id",
		"app.status",
		"a.organization_id",
		"NULL::varchar AS session_id",
	).
		From("bb_allocation a").
		Join("bb_allocation_resource ar ON ar.allocation_id = a.id").
		Join("bb_season s ON s.id = a.season_id").
		LeftJoin("bb_application app ON app.id = a.application_id").
		Where(squirrel.Eq{"a.active": 1, "s.active": 1, "s.status": domain.SeasonStatusPublished}).
		Where(intersects("a", from, to)).
		Where("a.id IN (SELECT allocation_id FROM bb_allocation_resource WHERE resource_id = ANY(?))", ids)
}

func bookingsQuery(ids interface{}, from, to string) squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"'booking' AS type",
		"b.id",
		"b.from_",
		"b.to_",
		"s.building_id",
		"br.resource_id",
		"app.status",
		"g.organization_id",
		"NULL::varchar AS session_id",
	).
		From("bb_booking b").
		Join("bb_booking_resource br ON br.booking_id = b.id").
		Join("bb_season s ON s.id = b.season_id").
		LeftJoin("bb_group g ON g.id = b.group_id").
		LeftJoin("bb_application app ON app.id = b.application_id").
		Where(squirrel.Eq{"b.active": 1, "s.active": 1, "s.status": domain.SeasonStatusPublished}).
		Where(intersects("b", from, to)).
		Where("b.id IN (SELECT booking_id FROM bb_booking_resource WHERE resource_id = ANY(?))", ids)
}

func eventsQuery(ids interface{}, from, to string) squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"'event' AS type",
		"e.id",
		"e.from_",
		"e.to_",
		"e.building_id",
		"er.resource_id",
		"app.status",
		"e.customer_organization_id",
		"NULL::varchar AS session_id",
	).
		From("bb_event e").
		Join("bb_event_resource er ON er.event_id = e.id").
		LeftJoin("bb_application app ON app.id = e.application_id").
		Where(squirrel.Eq{"e.active": 1}).
		Where(intersects("e", from, to)).
		Where("e.id IN (SELECT event_id FROM bb_event_resource WHERE resource_id = ANY(?))", ids)
}

// Блокировка всегда занимает один ресурс, здание берётся из связи ресурса со зданием
func blocksQuery(ids interface{}, from, to string) squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"'block' AS type",
		"k.id",
		"k.from_",
		"k.to_",
		"(SELECT MIN(bbr.building_id) FROM bb_building_resource bbr WHERE bbr.resource_id = k.resource_id)",
		"k.resource_id",
		"NULL::text AS status",
		"NULL::int AS organization_id",
		"k.session_id",
	).
		From("bb_block k").
		Where(squirrel.Eq{"k.active": 1}).
		Where(intersects("k", from, to)).
		Where("k.resource_id = ANY(?)", ids)
}
