package models

import (
	"fmt"
	"time"
)

// SteamApp is one row per Steam application, keyed by the immutable appid.
// The import step only ever touches the name; the refresh timestamps are
// owned by the detail/news fetchers.
type SteamApp struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	Appid             uint       `json:"appid" gorm:"uniqueIndex;not null"`
	Name              string     `json:"name" gorm:"not null"`
	LastDetailsUpdate *time.Time `json:"last_details_update"`
	LastNewsUpdate    *time.Time `json:"last_news_update"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Detail    *SteamAppDetail    `json:"detail,omitempty" gorm:"foreignKey:SteamAppID"`
	PriceInfo *SteamAppPriceInfo `json:"price_info,omitempty" gorm:"foreignKey:SteamAppID"`

	Requirements  []SteamAppRequirement            `json:"requirements,omitempty" gorm:"foreignKey:SteamAppID"`
	Screenshots   []SteamAppScreenshot             `json:"screenshots,omitempty" gorm:"foreignKey:SteamAppID"`
	Movies        []SteamAppMovie                  `json:"movies,omitempty" gorm:"foreignKey:SteamAppID"`
	Dlcs          []SteamAppDlc                    `json:"dlcs,omitempty" gorm:"foreignKey:SteamAppID"`
	Demos         []SteamAppDemo                   `json:"demos,omitempty" gorm:"foreignKey:SteamAppID"`
	Packages      []SteamAppPackage                `json:"packages,omitempty" gorm:"foreignKey:SteamAppID"`
	PackageGroups []SteamAppPackageGroup           `json:"package_groups,omitempty" gorm:"foreignKey:SteamAppID"`
	Achievements  []SteamAppAchievementHighlighted `json:"achievements_highlighted,omitempty" gorm:"foreignKey:SteamAppID"`
	Descriptors   []SteamAppContentDescriptorID    `json:"content_descriptor_ids,omitempty" gorm:"foreignKey:SteamAppID"`
	Ratings       []SteamAppRating                 `json:"ratings,omitempty" gorm:"foreignKey:SteamAppID"`
	News          []SteamAppNews                   `json:"news,omitempty" gorm:"foreignKey:SteamAppID"`
	WorkshopItems []SteamAppWorkshopItem           `json:"workshop_items,omitempty" gorm:"foreignKey:SteamAppID"`

	Categories []SteamAppCategory  `json:"categories,omitempty" gorm:"many2many:steam_app_category;joinForeignKey:SteamAppID;joinReferences:SteamAppCategoryID"`
	Genres     []SteamAppGenre     `json:"genres,omitempty" gorm:"many2many:steam_app_genre;joinForeignKey:SteamAppID;joinReferences:SteamAppGenreID"`
	Developers []SteamAppDeveloper `json:"developers,omitempty" gorm:"many2many:steam_app_developer;joinForeignKey:SteamAppID;joinReferences:SteamAppDeveloperID"`
	Publishers []SteamAppPublisher `json:"publishers,omitempty" gorm:"many2many:steam_app_publisher;joinForeignKey:SteamAppID;joinReferences:SteamAppPublisherID"`
}

func (SteamApp) TableName() string { return "steam_apps" }

// StoreURL returns the Steam store page for the application.
func (a *SteamApp) StoreURL() string {
	return fmt.Sprintf("https://store.steampowered.com/app/%d", a.Appid)
}

// HeaderImageURL prefers the fetched detail image and falls back to the
// conventional CDN location.
func (a *SteamApp) HeaderImageURL() string {
	if a.Detail != nil && a.Detail.HeaderImage != nil && *a.Detail.HeaderImage != "" {
		return *a.Detail.HeaderImage
	}
	return fmt.Sprintf("https://shared.akamai.steamstatic.com/store_item_assets/steam/apps/%d/header.jpg", a.Appid)
}
