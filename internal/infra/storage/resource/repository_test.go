package resource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scanColumns = []string{
	"building_id", "id", "name", "booking_time_minutes", "active",
	"deactivate_application", "deactivate_calendar", "simple_booking",
	"simple_booking_start_date", "booking_day_horizon", "booking_buffer_deadline",
}

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newMockRepository(t)

	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM bb_resource r WHERE r\.id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(scanColumns).
			AddRow(7, 42, "Gymsal", 60, 1, 0, 0, 1, start.Unix(), 14, 30))

	cfg, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.ID)
	assert.Equal(t, int64(7), cfg.BuildingID)
	assert.Equal(t, "Gymsal", cfg.Name)
	assert.Equal(t, 60, cfg.BookingTimeMinutes)
	assert.True(t, cfg.Active)
	assert.False(t, cfg.DeactivateApplication)
	assert.False(t, cfg.DeactivateCalendar)
	assert.True(t, cfg.SimpleBooking)
	require.NotNil(t, cfg.SimpleBookingStartDate)
	assert.True(t, start.Equal(*cfg.SimpleBookingStartDate))
	assert.Equal(t, 14, cfg.BookingDayHorizon)
	assert.Equal(t, 30, cfg.BookingBufferDeadline)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NullableColumns(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM bb_resource r`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(scanColumns).
			AddRow(nil, 3, "Lager", -1, 0, 1, 1, 0, nil, 0, 0))

	cfg, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, int64(0), cfg.BuildingID)
	assert.Equal(t, -1, cfg.BookingTimeMinutes)
	assert.False(t, cfg.Active)
	assert.True(t, cfg.DeactivateApplication)
	assert.True(t, cfg.DeactivateCalendar)
	assert.Nil(t, cfg.SimpleBookingStartDate)
	assert.False(t, cfg.ProducesSlots())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM bb_resource r`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(scanColumns))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestRepository_GetByID_DBError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM bb_resource r`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrScanRow)
	assert.NotErrorIs(t, err, ErrResourceNotFound)
}

func TestRepository_ListByBuilding(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`JOIN bb_building_resource br ON br\.resource_id = r\.id WHERE br\.building_id = \$1 AND .* ORDER BY r\.sort ASC, r\.name ASC, r\.id ASC`).
		WithArgs(int64(10), 1, 0).
		WillReturnRows(sqlmock.NewRows(scanColumns).
			AddRow(10, 1, "A", 30, 1, 0, 0, 0, nil, 0, 0).
			AddRow(10, 2, "B", 60, 1, 1, 0, 0, nil, 0, 0))

	resources, err := repo.ListByBuilding(context.Background(), 10, false)
	require.NoError(t, err)
	require.Len(t, resources, 2)

	assert.Equal(t, int64(1), resources[0].ID)
	assert.Equal(t, int64(10), resources[0].BuildingID)
	assert.Equal(t, int64(2), resources[1].ID)
	assert.True(t, resources[1].DeactivateApplication)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByBuilding_IncludeInactive(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`WHERE br\.building_id = \$1 ORDER BY`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(scanColumns).
			AddRow(10, 5, "Closed", 60, 0, 0, 1, 0, nil, 0, 0))

	resources, err := repo.ListByBuilding(context.Background(), 10, true)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.False(t, resources[0].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByBuilding_QueryError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM bb_resource r`).WillReturnError(errors.New("timeout"))

	_, err := repo.ListByBuilding(context.Background(), 10, false)
	assert.ErrorIs(t, err, ErrExecQuery)
}

func TestRepository_BuildingExists(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT EXISTS \( SELECT 1 FROM bb_building WHERE id = \$1 \)`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.BuildingExists(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.BuildingExists(context.Background(), 11)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
