package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/harukimoto/teamtrack-api/internal/constants"
	"github.com/harukimoto/teamtrack-api/internal/models"
	"github.com/harukimoto/teamtrack-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupNotificationTestEnv(t *testing.T) (*gorm.DB, *NotificationService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Notification{}))

	service := NewNotificationService(repository.NewNotificationRepository(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, service
}

func TestNotificationService_Fetch(t *testing.T) {
	db, service := setupNotificationTestEnv(t)

	service.Dispatch(1, models.NotificationTaskAssigned, "First", "msg", nil)
	service.Dispatch(1, models.NotificationTaskAssigned, "Second", "msg", map[string]uint64{"task_id": 7})
	service.Dispatch(2, models.NotificationTaskAssigned, "Other user", "msg", nil)

	// An expired entry never surfaces
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Create(&models.Notification{
		UserID:    1,
		Type:      models.NotificationTaskAssigned,
		Title:     "Expired",
		ExpiresAt: &expired,
	}).Error)

	notifications, err := service.Fetch(1)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	for _, n := range notifications {
		require.NotEqual(t, "Expired", n.Title)
		require.NotEqual(t, "Other user", n.Title)
	}
}

func TestNotificationService_Fetch_Capped(t *testing.T) {
	_, service := setupNotificationTestEnv(t)

	for i := 0; i < constants.NotificationFeedLimit+10; i++ {
		service.Dispatch(1, models.NotificationTaskAssigned, fmt.Sprintf("n%d", i), "msg", nil)
	}

	notifications, err := service.Fetch(1)
	require.NoError(t, err)
	require.Len(t, notifications, constants.NotificationFeedLimit)
}

func TestNotificationService_MarkRead(t *testing.T) {
	db, service := setupNotificationTestEnv(t)

	service.Dispatch(1, models.NotificationTaskAssigned, "First", "msg", nil)

	var notification models.Notification
	require.NoError(t, db.First(&notification).Error)

	require.NoError(t, service.MarkRead(notification.ID, 1))

	var read models.Notification
	require.NoError(t, db.First(&read, notification.ID).Error)
	require.NotNil(t, read.ReadAt)
	firstReadAt := *read.ReadAt

	// Re-marking keeps the original timestamp
	require.NoError(t, service.MarkRead(notification.ID, 1))
	require.NoError(t, db.First(&read, notification.ID).Error)
	require.Equal(t, firstReadAt.Unix(), read.ReadAt.Unix())
}

func TestNotificationService_MarkRead_WrongUser(t *testing.T) {
	db, service := setupNotificationTestEnv(t)

	service.Dispatch(1, models.NotificationTaskAssigned, "First", "msg", nil)

	var notification models.Notification
	require.NoError(t, db.First(&notification).Error)

	// Another user's mark does not touch the row
	require.NoError(t, service.MarkRead(notification.ID, 2))

	var stored models.Notification
	require.NoError(t, db.First(&stored, notification.ID).Error)
	require.Nil(t, stored.ReadAt)
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	db, service := setupNotificationTestEnv(t)

	service.Dispatch(1, models.NotificationTaskAssigned, "First", "msg", nil)
	service.Dispatch(1, models.NotificationTaskAssigned, "Second", "msg", nil)
	service.Dispatch(2, models.NotificationTaskAssigned, "Other", "msg", nil)

	require.NoError(t, service.MarkAllRead(1))
	// Idempotent
	require.NoError(t, service.MarkAllRead(1))

	var unreadMine int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", 1).Count(&unreadMine).Error)
	require.Zero(t, unreadMine)

	var unreadOthers int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", 2).Count(&unreadOthers).Error)
	require.EqualValues(t, 1, unreadOthers)
}

func TestNotificationService_Dismiss(t *testing.T) {
	db, service := setupNotificationTestEnv(t)

	service.Dispatch(1, models.NotificationTaskAssigned, "First", "msg", nil)

	var notification models.Notification
	require.NoError(t, db.First(&notification).Error)

	require.NoError(t, service.Dismiss(notification.ID, 1))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
}
