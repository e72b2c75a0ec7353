package jobs_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/jobs"
	"github.com/basetide/activity-marts/internal/mocks"
	"github.com/basetide/activity-marts/internal/registry"
)

// testDedupMocks contains all the mocks needed for testing the dedup runner
type testDedupMocks struct {
	ctrl     *gomock.Controller
	store    *mocks.MockStore
	registry *mocks.MockDedupSourceRegistry
	clock    *mocks.MockClock
	runner   *jobs.DedupRunner
}

func setupTestDedup(t *testing.T) *testDedupMocks {
	ctrl := gomock.NewController(t)

	tm := &testDedupMocks{
		ctrl:     ctrl,
		store:    mocks.NewMockStore(ctrl),
		registry: mocks.NewMockDedupSourceRegistry(ctrl),
		clock:    mocks.NewMockClock(ctrl),
	}
	tm.runner = jobs.NewDedupRunner(tm.store, tm.registry, tm.clock)

	tm.clock.EXPECT().Now().Return(testTime()).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).Return(testDuration()).AnyTimes()

	return tm
}

func tearDownTestDedup(tm *testDedupMocks) {
	tm.ctrl.Finish()
}

func testEventsSource() registry.DedupSource {
	return registry.DedupSource{
		Name:           "web_events",
		SourceTable:    "web_events_raw",
		TargetTable:    "web_events_dedup",
		KeyColumns:     []string{"user_id", "browser_type", "host", "url", "event_time"},
		RecencyColumn:  "collected_at",
		TiebreakColumn: "batch_seq",
	}
}

func TestDedupRunner_Run(t *testing.T) {
	tm := setupTestDedup(t)
	defer tearDownTestDedup(tm)

	src := testEventsSource()

	tm.registry.EXPECT().Get("web_events").Return(src, nil)
	expectLedger(tm.store, domain.JobDedup, "web_events", domain.JobRunCompleted)
	tm.store.EXPECT().TableExists(gomock.Any(), "web_events_raw").Return(true, nil)
	tm.store.EXPECT().MissingColumns(gomock.Any(), "web_events_raw", src.Columns()).Return(nil, nil)
	tm.store.EXPECT().CountAmbiguousKeys(gomock.Any(), src).Return(int64(0), nil)
	tm.store.EXPECT().MaterializeDedup(gomock.Any(), src).Return(int64(42), nil)

	result, err := tm.runner.Run(context.Background(), "web_events")
	require.NoError(t, err)
	assert.Equal(t, "web_events_raw", result.Source)
	assert.Equal(t, "web_events_dedup", result.Target)
	assert.Equal(t, int64(42), result.Rows)
}

func TestDedupRunner_Run_UnknownSource(t *testing.T) {
	tm := setupTestDedup(t)
	defer tearDownTestDedup(tm)

	tm.registry.EXPECT().Get("nope").
		Return(registry.DedupSource{}, fmt.Errorf("%w: nope", domain.ErrUnknownDedupSource))

	result, err := tm.runner.Run(context.Background(), "nope")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUnknownDedupSource)
}

func TestDedupRunner_Run_MissingSourceTable(t *testing.T) {
	tm := setupTestDedup(t)
	defer tearDownTestDedup(tm)

	src := testEventsSource()

	tm.registry.EXPECT().Get("web_events").Return(src, nil)
	expectLedger(tm.store, domain.JobDedup, "web_events", domain.JobRunFailed)
	tm.store.EXPECT().TableExists(gomock.Any(), "web_events_raw").Return(false, nil)

	result, err := tm.runner.Run(context.Background(), "web_events")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrSourceSchemaMismatch)
}

func TestDedupRunner_Run_MissingColumns(t *testing.T) {
	tm := setupTestDedup(t)
	defer tearDownTestDedup(tm)

	src := testEventsSource()

	tm.registry.EXPECT().Get("web_events").Return(src, nil)
	expectLedger(tm.store, domain.JobDedup, "web_events", domain.JobRunFailed)
	tm.store.EXPECT().TableExists(gomock.Any(), "web_events_raw").Return(true, nil)
	tm.store.EXPECT().MissingColumns(gomock.Any(), "web_events_raw", src.Columns()).
		Return([]string{"batch_seq"}, nil)

	result, err := tm.runner.Run(context.Background(), "web_events")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrSourceSchemaMismatch)
}

func TestDedupRunner_Run_AmbiguousKeys(t *testing.T) {
	tm := setupTestDedup(t)
	defer tearDownTestDedup(tm)

	src := testEventsSource()

	tm.registry.EXPECT().Get("web_events").Return(src, nil)
	expectLedger(tm.store, domain.JobDedup, "web_events", domain.JobRunFailed)
	tm.store.EXPECT().TableExists(gomock.Any(), "web_events_raw").Return(true, nil)
	tm.store.EXPECT().MissingColumns(gomock.Any(), "web_events_raw", src.Columns()).Return(nil, nil)
	tm.store.EXPECT().CountAmbiguousKeys(gomock.Any(), src).Return(int64(3), nil)

	result, err := tm.runner.Run(context.Background(), "web_events")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrAmbiguousDedupKey)
}

func TestDedupRunner_Run_TargetExists(t *testing.T) {
	tm := setupTestDedup(t)
	defer tearDownTestDedup(tm)

	src := testEventsSource()

	tm.registry.EXPECT().Get("web_events").Return(src, nil)
	expectLedger(tm.store, domain.JobDedup, "web_events", domain.JobRunFailed)
	tm.store.EXPECT().TableExists(gomock.Any(), "web_events_raw").Return(true, nil)
	tm.store.EXPECT().MissingColumns(gomock.Any(), "web_events_raw", src.Columns()).Return(nil, nil)
	tm.store.EXPECT().CountAmbiguousKeys(gomock.Any(), src).Return(int64(0), nil)
	tm.store.EXPECT().MaterializeDedup(gomock.Any(), src).
		Return(int64(0), fmt.Errorf("target table web_events_dedup: %w", domain.ErrTargetTableExists))

	result, err := tm.runner.Run(context.Background(), "web_events")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrTargetTableExists)
}
