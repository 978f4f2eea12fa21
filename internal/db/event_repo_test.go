package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firebay/internal/types"
)

// --- Mock DBTX ---

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// eventMockRows implements pgx.Rows for the List query columns:
// (id string, occurred_at time.Time, kind string, severity string,
// sector string, status string).
type eventMockRows struct {
	data    []eventRowData
	idx     int
	closed  bool
	scanErr error
	errVal  error
}

type eventRowData struct {
	id         string
	occurredAt time.Time
	kind       string
	severity   string
	sector     string
	status     string
}

func (r *eventMockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx <= len(r.data)
}

func (r *eventMockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.idx-1]
	*dest[0].(*string) = row.id
	*dest[1].(*time.Time) = row.occurredAt
	*dest[2].(*string) = row.kind
	*dest[3].(*string) = row.severity
	*dest[4].(*string) = row.sector
	*dest[5].(*string) = row.status
	return nil
}

func (r *eventMockRows) Close()                                       { r.closed = true }
func (r *eventMockRows) Err() error                                   { return r.errVal }
func (r *eventMockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *eventMockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *eventMockRows) RawValues() [][]byte                          { return nil }
func (r *eventMockRows) Values() ([]any, error)                       { return nil, nil }
func (r *eventMockRows) Conn() *pgx.Conn                              { return nil }

// --- EventRepository Tests ---

func TestEventRepository_Insert_Success(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewEventRepository(dbMock)

	event := &types.DetectedEvent{
		ID:         "evt_1",
		OccurredAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		Kind:       types.EventThermalAnomaly,
		Severity:   types.RiskHigh,
		Sector:     "Sector Norte",
		Status:     types.EventStatusMonitoring,
	}

	dbMock.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Insert(context.Background(), event)
	require.NoError(t, err)
	dbMock.AssertExpectations(t)
}

func TestEventRepository_Insert_DBError(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewEventRepository(dbMock)

	dbMock.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	err := repo.Insert(context.Background(), &types.DetectedEvent{ID: "evt_1"})
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestEventRepository_List_Success(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewEventRepository(dbMock)

	rows := &eventMockRows{data: []eventRowData{
		{
			id:         "evt_2",
			occurredAt: time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC),
			kind:       "index_alert",
			severity:   "ALTO",
			sector:     "Sector Este",
			status:     "monitoring",
		},
		{
			id:         "evt_1",
			occurredAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
			kind:       "thermal_anomaly",
			severity:   "MEDIO",
			sector:     "Sector Norte",
			status:     "resolved",
		},
	}}

	dbMock.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(rows, nil)

	events, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "evt_2", events[0].ID)
	assert.Equal(t, types.EventIndexAlert, events[0].Kind)
	assert.Equal(t, types.RiskHigh, events[0].Severity)
	assert.Equal(t, types.EventStatusResolved, events[1].Status)
	assert.True(t, rows.closed, "rows should be closed after List")
}

func TestEventRepository_List_ScanError(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewEventRepository(dbMock)

	rows := &eventMockRows{
		data:    []eventRowData{{id: "evt_1"}},
		scanErr: errors.New("type mismatch"),
	}
	dbMock.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(rows, nil)

	_, err := repo.List(context.Background(), 10)
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestEventRepository_Prune_ReturnsRowCount(t *testing.T) {
	dbMock := new(mockDBTX)
	repo := NewEventRepository(dbMock)

	dbMock.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 7"), nil)

	removed, err := repo.Prune(context.Background(), time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)
}

// --- MemoryEventStore Tests ---

func TestMemoryEventStore_InsertAndList(t *testing.T) {
	store := NewMemoryEventStore()
	ctx := context.Background()

	older := types.DetectedEvent{
		ID:         "evt_old",
		OccurredAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Kind:       types.EventHotspot,
		Severity:   types.RiskMedium,
		Status:     types.EventStatusMonitoring,
	}
	newer := types.DetectedEvent{
		ID:         "evt_new",
		OccurredAt: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		Kind:       types.EventThermalAnomaly,
		Severity:   types.RiskHigh,
		Status:     types.EventStatusMonitoring,
	}

	require.NoError(t, store.Insert(ctx, &older))
	require.NoError(t, store.Insert(ctx, &newer))

	events, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "evt_new", events[0].ID, "newest first")
	assert.Equal(t, "evt_old", events[1].ID)
}

func TestMemoryEventStore_ListHonorsLimit(t *testing.T) {
	store := NewMemoryEventStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := types.DetectedEvent{
			ID:         string(rune('a' + i)),
			OccurredAt: time.Date(2026, 8, 1+i, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, store.Insert(ctx, &e))
	}

	events, err := store.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestMemoryEventStore_Prune(t *testing.T) {
	store := NewMemoryEventStore()
	store.Seed([]types.DetectedEvent{
		{ID: "evt_old", OccurredAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "evt_new", OccurredAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
	})

	removed, err := store.Prune(context.Background(), time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	events, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "evt_new", events[0].ID)
}
