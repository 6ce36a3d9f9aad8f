package resource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-FreetimeService/internal/domain"
	"github.com/m04kA/SMC-FreetimeService/pkg/dbmetrics"
	"github.com/m04kA/SMC-FreetimeService/pkg/psqlbuilder"
)

// Флаги в bb_resource хранятся как int (0/1), поэтому сравниваем с 1
var resourceColumns = []string{
	"r.id",
	"r.name",
	"COALESCE(r.booking_time_minutes, -1)",
	"r.active",
	"r.deactivate_application",
	"r.deactivate_calendar",
	"COALESCE(r.simple_booking, 0)",
	"r.simple_booking_start_date",
	"COALESCE(r.booking_day_horizon, 0)",
	"COALESCE(r.booking_buffer_deadline, 0)",
}

// Repository репозиторий параметров расписания ресурсов (только чтение)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория ресурсов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает параметры ресурса по ID
// Ресурс может входить в несколько зданий, building_id берётся минимальный
func (r *Repository) GetByID(ctx context.Context, resourceID int64) (*domain.ResourceConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	columns := append([]string{
		"(SELECT MIN(br.building_id) FROM bb_building_resource br WHERE br.resource_id = r.id)",
	}, resourceColumns...)

	query, args, err := psqlbuilder.Select(columns...).
		From("bb_resource r").
		Where(squirrel.Eq{"r.id": resourceID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	cfg, err := scanResource(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan resource: %v", ErrScanRow, err)
	}

	return cfg, nil
}

// ListByBuilding получает ресурсы здания в порядке sort, name, id
// Без includeInactive отбрасываются неактивные ресурсы и ресурсы с отключённым календарём
func (r *Repository) ListByBuilding(ctx context.Context, buildingID int64, includeInactive bool) ([]*domain.ResourceConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	columns := append([]string{"br.building_id"}, resourceColumns...)

	selectBuilder := psqlbuilder.Select(columns...).
		From("bb_resource r").
		Join("bb_building_resource br ON br.resource_id = r.id").
		Where(squirrel.Eq{"br.building_id": buildingID})

	if !includeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{
			"r.active":              1,
			"r.deactivate_calendar": 0,
		})
	}

	query, args, err := selectBuilder.
		OrderBy("r.sort ASC", "r.name ASC", "r.id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByBuilding - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBuilding - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	resources := make([]*domain.ResourceConfig, 0)

	for rows.Next() {
		cfg, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByBuilding - scan row: %v", ErrScanRow, err)
		}
		resources = append(resources, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBuilding - rows error: %v", ErrScanRow, err)
	}

	return resources, nil
}

// BuildingExists проверяет наличие здания
func (r *Repository) BuildingExists(ctx context.Context, buildingID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("bb_building").
		Where(squirrel.Eq{"id": buildingID}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: BuildingExists - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: BuildingExists - scan: %v", ErrScanRow, err)
	}

	return exists, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResource(row rowScanner) (*domain.ResourceConfig, error) {
	var (
		cfg                   domain.ResourceConfig
		buildingID            sql.NullInt64
		active                int
		deactivateApplication int
		deactivateCalendar    int
		simpleBooking         int
		simpleBookingStart    sql.NullInt64
	)

	err := row.Scan(
		&buildingID,
		&cfg.ID,
		&cfg.Name,
		&cfg.BookingTimeMinutes,
		&active,
		&deactivateApplication,
		&deactivateCalendar,
		&simpleBooking,
		&simpleBookingStart,
		&cfg.BookingDayHorizon,
		&cfg.BookingBufferDeadline,
	)
	if err != nil {
		return nil, err
	}

	cfg.BuildingID = buildingID.Int64
	cfg.Active = active == 1
	cfg.DeactivateApplication = deactivateApplication == 1
	cfg.DeactivateCalendar = deactivateCalendar == 1
	cfg.SimpleBooking = simpleBooking == 1

	// simple_booking_start_date хранится как unix timestamp
	if simpleBookingStart.Valid && simpleBookingStart.Int64 > 0 {
		start := time.Unix(simpleBookingStart.Int64, 0)
		cfg.SimpleBookingStartDate = &start
	}

	return &cfg, nil
}
