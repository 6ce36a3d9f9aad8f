package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FreetimeService/internal/domain"
)

var entityColumns = []string{
	"type", "id", "from_", "to_", "building_id", "resource_id", "status", "organization_id", "session_id",
}

func mustLoadLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)
	return loc
}

// dbTime так драйвер отдаёт timestamp without time zone: настенное время в UTC
func dbTime(day, hour, minute int) time.Time {
	return time.Date(2025, 3, day, hour, minute, 0, 0, time.UTC)
}

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock, *time.Location) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	loc := mustLoadLocation(t)
	return NewRepository(db, loc), mock, loc
}

// Строки приходят в произвольном порядке, многоресурсные сущности дают по строке на ресурс
func scheduleRows() *sqlmock.Rows {
	return sqlmock.NewRows(entityColumns).
		AddRow("event", 5, dbTime(3, 9, 0), dbTime(3, 10, 0), 1, 20, "ACCEPTED", 77, nil).
		AddRow("allocation", 5, dbTime(3, 8, 0), dbTime(3, 12, 0), 1, 10, nil, 12, nil).
		AddRow("booking", 2, dbTime(3, 14, 0), dbTime(3, 15, 0), 1, 10, nil, nil, nil).
		AddRow("event", 5, dbTime(3, 9, 0), dbTime(3, 10, 0), 1, 10, "ACCEPTED", 77, nil).
		AddRow("block", 1, dbTime(3, 16, 0), dbTime(3, 17, 0), 1, 20, nil, nil, "sess-1")
}

func TestRepository_ForResource_GroupsAndOrders(t *testing.T) {
	repo, mock, loc := newMockRepository(t)

	windowStart := time.Date(2025, 3, 3, 0, 0, 0, 0, loc)
	windowEnd := windowStart.AddDate(0, 0, 1)

	mock.ExpectQuery(`FROM bb_allocation a .* UNION ALL .* FROM bb_booking b .* UNION ALL .* FROM bb_event e .* UNION ALL .* FROM bb_block k`).
		WillReturnRows(scheduleRows())

	entities, err := repo.ForResource(context.Background(), 10, windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, entities, 4)

	assert.Equal(t, int64(1), entities[0].ID)
	assert.Equal(t, domain.EntityTypeBlock, entities[0].Type)
	assert.Equal(t, int64(2), entities[1].ID)
	assert.Equal(t, int64(5), entities[2].ID)
	assert.Equal(t, domain.EntityTypeAllocation, entities[2].Type)
	assert.Equal(t, int64(5), entities[3].ID)
	assert.Equal(t, domain.EntityTypeEvent, entities[3].Type)

	event := entities[3]
	assert.Equal(t, []int64{10, 20}, event.Resources)
	assert.True(t, event.Active)
	assert.Equal(t, "ACCEPTED", event.StatusValue())
	require.NotNil(t, event.OrganizationID)
	assert.Equal(t, int64(77), *event.OrganizationID)
	assert.True(t, event.From.Equal(time.Date(2025, 3, 3, 9, 0, 0, 0, loc)))
	assert.Equal(t, loc, event.From.Location())

	block := entities[0]
	require.NotNil(t, block.SessionID)
	assert.Equal(t, "sess-1", *block.SessionID)
	assert.Nil(t, block.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ForResource_PassesWallClockWindow(t *testing.T) {
	repo, mock, loc := newMockRepository(t)

	windowStart := time.Date(2025, 3, 3, 0, 0, 0, 0, loc)
	windowEnd := windowStart.AddDate(0, 0, 2)

	from := "2025-03-03 00:00:00"
	to := "2025-03-05 00:00:00"
	ids := sqlmock.AnyArg()

	mock.ExpectQuery(`UNION ALL`).
		WithArgs(
			1, 1, domain.SeasonStatusPublished, to, from, ids,
			1, 1, domain.SeasonStatusPublished, to, from, ids,
			1, to, from, ids,
			1, to, from, ids,
		).
		WillReturnRows(sqlmock.NewRows(entityColumns))

	entities, err := repo.ForResource(context.Background(), 10, windowStart.UTC(), windowEnd.UTC())
	require.NoError(t, err)
	assert.Empty(t, entities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ForBuilding_PartitionMatchesForResource(t *testing.T) {
	repo, mock, loc := newMockRepository(t)

	windowStart := time.Date(2025, 3, 3, 0, 0, 0, 0, loc)
	windowEnd := windowStart.AddDate(0, 0, 1)

	mock.ExpectQuery(`UNION ALL`).WillReturnRows(scheduleRows())
	byResource, err := repo.ForBuilding(context.Background(), 1, []int64{10, 20, 30}, windowStart, windowEnd)
	require.NoError(t, err)

	require.Contains(t, byResource, int64(30))
	assert.Empty(t, byResource[30])

	mock.ExpectQuery(`UNION ALL`).WillReturnRows(scheduleRows())
	single, err := repo.ForResource(context.Background(), 10, windowStart, windowEnd)
	require.NoError(t, err)

	// ForResource не фильтрует по ресурсу (это делает SQL), сравниваем только сущности ресурса 10
	expected := make([]*domain.ScheduledEntity, 0)
	for _, e := range single {
		if e.HasResource(10) {
			expected = append(expected, e)
		}
	}
	assert.Equal(t, expected, byResource[10])

	require.Len(t, byResource[20], 2)
	assert.Equal(t, domain.EntityTypeBlock, byResource[20][0].Type)
	assert.Equal(t, domain.EntityTypeEvent, byResource[20][1].Type)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ForBuilding_NoResources(t *testing.T) {
	repo, mock, loc := newMockRepository(t)

	result, err := repo.ForBuilding(context.Background(), 1, nil, time.Now().In(loc), time.Now().In(loc).Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ForResource_Errors(t *testing.T) {
	repo, mock, loc := newMockRepository(t)
	windowStart := time.Date(2025, 3, 3, 0, 0, 0, 0, loc)

	mock.ExpectQuery(`UNION ALL`).WillReturnError(errors.New("connection refused"))
	_, err := repo.ForResource(context.Background(), 10, windowStart, windowStart.Add(time.Hour))
	assert.ErrorIs(t, err, ErrExecQuery)

	mock.ExpectQuery(`UNION ALL`).WillReturnRows(sqlmock.NewRows(entityColumns).
		AddRow("meeting", 1, dbTime(3, 8, 0), dbTime(3, 9, 0), 1, 10, nil, nil, nil))
	_, err = repo.ForResource(context.Background(), 10, windowStart, windowStart.Add(time.Hour))
	assert.ErrorIs(t, err, ErrUnknownEntityType)

	mock.ExpectQuery(`UNION ALL`).WillReturnRows(sqlmock.NewRows(entityColumns).
		AddRow("event", "not-a-number", dbTime(3, 8, 0), dbTime(3, 9, 0), 1, 10, nil, nil, nil))
	_, err = repo.ForResource(context.Background(), 10, windowStart, windowStart.Add(time.Hour))
	assert.ErrorIs(t, err, ErrScanRow)

	assert.NoError(t, mock.ExpectationsWereMet())
}
