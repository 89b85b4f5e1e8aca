package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"steam-catalog/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.SteamApp{},
		&models.SteamAppDetail{},
		&models.SteamAppPriceInfo{},
		&models.SteamAppRequirement{},
		&models.SteamAppScreenshot{},
		&models.SteamAppMovie{},
		&models.SteamAppDlc{},
		&models.SteamAppDemo{},
		&models.SteamAppPackage{},
		&models.SteamAppPackageGroup{},
		&models.SteamAppPackageGroupSub{},
		&models.SteamAppAchievementHighlighted{},
		&models.SteamAppContentDescriptorID{},
		&models.SteamAppRating{},
		&models.SteamAppCategory{},
		&models.SteamAppGenre{},
		&models.SteamAppDeveloper{},
		&models.SteamAppPublisher{},
		&models.SteamAppNews{},
		&models.SteamAppWorkshopItem{},
	)
	require.NoError(t, err)

	return db
}

func createTestApp(t *testing.T, db *gorm.DB, appid uint, name string) *models.SteamApp {
	t.Helper()
	app := &models.SteamApp{Appid: appid, Name: name}
	require.NoError(t, db.Create(app).Error)
	return app
}
