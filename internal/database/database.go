package database

import (
	"fmt"
	"log"
	"time"

	"steam-catalog/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialized successfully")
	return db, nil
}

// Migrate creates or updates every catalog table. Tables that depend on
// others come later so foreign keys resolve.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
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
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
