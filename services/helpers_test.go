package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-ops/config"
	"hotel-ops/models"
)

var testStart = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

// testClock is a settable Clock.
type testClock struct{ t time.Time }

func newTestClock() *testClock { return &testClock{t: testStart} }

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestDB opens a private in-memory sqlite database with every table
// migrated. A single connection keeps the database alive for the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return db
}

type testEnv struct {
	db    *gorm.DB
	clock *testClock
	app   *Container
	est   *models.Establishment
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	clock := newTestClock()
	app := NewContainer(Options{
		DB:        db,
		Logger:    quietLogger(),
		UploadDir: t.TempDir(),
		Now:       clock.Now,
	})
	est := &models.Establishment{Name: "Hôtel du Lac", Currency: "EUR", IsActive: true}
	require.NoError(t, db.Create(est).Error)
	return &testEnv{db: db, clock: clock, app: app, est: est}
}

func (e *testEnv) createRoom(t *testing.T, number string, price float64) *models.Room {
	t.Helper()
	room, err := e.app.Rooms.CreateRoom(context.Background(), e.est.ID, RoomInput{Number: number, Floor: "1", PricePerNight: &price})
	require.NoError(t, err)
	return room
}

func (e *testEnv) reloadRoom(t *testing.T, id string) models.Room {
	t.Helper()
	var room models.Room
	require.NoError(t, e.db.First(&room, "id = ?", id).Error)
	return room
}

func (e *testEnv) activeBlockages(t *testing.T, roomID string) []models.RoomBlockage {
	t.Helper()
	var out []models.RoomBlockage
	require.NoError(t, e.db.Where("room_id = ? AND is_active = ?", roomID, true).Find(&out).Error)
	return out
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }
