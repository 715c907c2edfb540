package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/youpolonia/cms-sub038/internal/domain"
	"github.com/youpolonia/cms-sub038/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection to a :memory: DSN gets its own database,
	// so concurrent tests must share a single connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access test db pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&domain.ContentVersion{},
		&domain.ScheduledEvent{},
		&domain.Batch{},
		&domain.BatchItem{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// testEnv bundles the repositories and services wired against one
// in-memory database.
type testEnv struct {
	db           *gorm.DB
	versionRepo  repository.VersionRepository
	scheduleRepo repository.ScheduleRepository
	batchRepo    repository.BatchRepository
	scheduler    *SchedulerService
	batches      *BatchService
	due          *DueEventService
	versions     *VersionService
}

func newTestEnv(t *testing.T, perms PermissionChecker) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	versionRepo := repository.NewVersionRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	batchRepo := repository.NewBatchRepository(db)

	resolver := NewConflictResolver(30 * time.Minute)
	stateMachine := NewScheduleStateMachine()

	scheduler := NewSchedulerService(scheduleRepo, versionRepo, resolver, stateMachine, perms, nil, nil, nil)
	batches := NewBatchService(batchRepo, scheduleRepo, versionRepo, scheduler, resolver, perms, nil, 0)
	due := NewDueEventService(scheduleRepo, versionRepo, stateMachine, nil, nil)
	versions := NewVersionService(versionRepo, scheduleRepo)

	return &testEnv{
		db:           db,
		versionRepo:  versionRepo,
		scheduleRepo: scheduleRepo,
		batchRepo:    batchRepo,
		scheduler:    scheduler,
		batches:      batches,
		due:          due,
		versions:     versions,
	}
}

// seedVersion creates a draft version for a content item.
func (e *testEnv) seedVersion(t *testing.T, contentID uint64, payload string) *domain.ContentVersion {
	t.Helper()
	version, err := e.versions.CreateVersion(context.Background(), contentID, payload, "author", "default")
	if err != nil {
		t.Fatalf("failed to seed version: %v", err)
	}
	return version
}

// seedEvent inserts a scheduled event row directly, bypassing the
// publish-time validation, for sweep tests over past-due events.
func (e *testEnv) seedEvent(t *testing.T, contentID, versionID uint64, publishAt time.Time, status domain.ScheduleStatus) *domain.ScheduledEvent {
	t.Helper()
	event := &domain.ScheduledEvent{
		ContentID: contentID,
		VersionID: versionID,
		TenantID:  "default",
		PublishAt: publishAt,
		Status:    status,
		CreatedBy: "seeder",
	}
	if err := e.db.Create(event).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return event
}

// --- Mock PermissionChecker ---

type mockPermissionChecker struct {
	mock.Mock
}

func (m *mockPermissionChecker) HasPermission(userID, action string, resourceID uint64) (bool, error) {
	args := m.Called(userID, action, resourceID)
	return args.Bool(0), args.Error(1)
}
