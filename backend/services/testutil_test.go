package services

import (
	"fmt"
	"testing"
	"time"

	"dailytracker/backend/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database per test. cache=shared
// with a unique name keeps the schema alive across pooled connections
// without leaking state between tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Entry{},
		&models.AuditLog{},
		&models.Notification{},
		&models.BackupLog{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		Email:        NormalizeEmail(email),
		PasswordHash: "x",
		Name:         "Test User",
		Role:         models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedSuperAdmin(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := seedUser(t, db, email)
	require.NoError(t, db.Model(user).Update("role", models.RoleSuperAdmin).Error)
	user.Role = models.RoleSuperAdmin
	return user
}

// seedGroup creates a group owned by owner, with the owner as its first
// member, mirroring GroupService.Create.
func seedGroup(t *testing.T, db *gorm.DB, owner *models.User, name string) *models.Group {
	t.Helper()
	group := models.Group{Name: name, Timezone: models.DefaultTimezone, OwnerID: owner.ID}
	require.NoError(t, db.Create(&group).Error)
	member := models.GroupMember{GroupID: group.ID, UserID: owner.ID, JoinedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&member).Error)
	return &group
}

func seedMember(t *testing.T, db *gorm.DB, group *models.Group, user *models.User) {
	t.Helper()
	member := models.GroupMember{GroupID: group.ID, UserID: user.ID, JoinedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&member).Error)
}

func seedEntry(t *testing.T, db *gorm.DB, user *models.User, group *models.Group, section string, day time.Time, content string) *models.Entry {
	t.Helper()
	entry := models.Entry{
		UserID:    user.ID,
		GroupID:   group.ID,
		Section:   section,
		Content:   content,
		EntryDate: models.DateOnly(day),
	}
	require.NoError(t, db.Create(&entry).Error)
	return &entry
}

// daysAgo returns the UTC day boundary n days before today.
func daysAgo(n int) time.Time {
	return models.Today().AddDate(0, 0, -n)
}
