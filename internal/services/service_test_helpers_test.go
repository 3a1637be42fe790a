package services_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/mrskaggs/forkful/backend/internal/authz"
	"github.com/mrskaggs/forkful/backend/internal/identity"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"github.com/mrskaggs/forkful/backend/internal/repositories"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Recipe{},
		&models.Comment{},
		&models.Suggestion{},
		&models.Report{},
		&models.Block{},
		&models.ChatMessage{},
	))
	return db
}

func testDirectory(ids ...uint) *repositories.StaticRecipeDirectory {
	dir := &repositories.StaticRecipeDirectory{IDs: make(map[uint]bool)}
	for _, id := range ids {
		dir.IDs[id] = true
	}
	return dir
}

func testPolicy() *authz.Policy { return authz.NewPolicy() }

func testLogger() *zap.Logger { return zap.NewNop() }

func adminIdentity(userID uint) identity.Identity {
	return identity.Identity{UserID: userID, DisplayName: "admin", Role: identity.RoleAdmin}
}

func userIdentity(userID uint) identity.Identity {
	return identity.Identity{UserID: userID, DisplayName: "user", Role: identity.RoleUser}
}
