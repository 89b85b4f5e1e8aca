package models

import (
	"time"

	"gorm.io/gorm"
)

// Nested per-app collections. Each carries a unique compound key on
// (steam_app_id, natural key). Screenshots and movies are tombstoned when
// they disappear from a fetch; the rest are hard-deleted.

type SteamAppScreenshot struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	SteamAppID   uint           `json:"steam_app_id" gorm:"uniqueIndex:uniq_app_screenshot;not null"`
	ScreenshotID uint           `json:"screenshot_id" gorm:"uniqueIndex:uniq_app_screenshot;not null"`
	PathThumbnail *string       `json:"path_thumbnail"`
	PathFull     *string        `json:"path_full"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (SteamAppScreenshot) TableName() string { return "steam_app_screenshots" }

type SteamAppMovie struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	SteamAppID uint           `json:"steam_app_id" gorm:"uniqueIndex:uniq_app_movie;not null"`
	MovieID    uint           `json:"movie_id" gorm:"uniqueIndex:uniq_app_movie;not null"`
	Name       *string        `json:"name"`
	Thumbnail  *string        `json:"thumbnail"`
	Webm480    *string        `json:"webm_480"`
	WebmMax    *string        `json:"webm_max"`
	Mp4480     *string        `json:"mp4_480"`
	Mp4Max     *string        `json:"mp4_max"`
	Highlight  bool           `json:"highlight" gorm:"default:false"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (SteamAppMovie) TableName() string { return "steam_app_movies" }

type SteamAppRequirement struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SteamAppID  uint      `json:"steam_app_id" gorm:"uniqueIndex:uniq_app_platform;not null"`
	Platform    string    `json:"platform" gorm:"uniqueIndex:uniq_app_platform;not null"` // pc, mac, linux
	Minimum     *string   `json:"minimum" gorm:"type:longtext"`
	Recommended *string   `json:"recommended" gorm:"type:longtext"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SteamAppRequirement) TableName() string { return "steam_app_requirements" }

type SteamAppDlc struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SteamAppID uint      `json:"steam_app_id" gorm:"uniqueIndex:uniq_app_dlc;not null"`
	DlcAppid   uint      `json:"dlc_appid" gorm:"uniqueIndex:uniq_app_dlc;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (SteamAppDlc) TableName() string { return "steam_app_dlcs" }

type SteamAppDemo struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SteamAppID  uint      `json:"steam_app_id" gorm:"uniqueIndex:uniq_app_demo;not null"`
	Appid       uint      `json:"appid" gorm:"uniqueIndex:uniq_app_demo;not null"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SteamAppDemo) TableName() string { return "steam_app_demos" }

type SteamAppPackage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SteamAppID uint      `json:"steam_app_id" gorm:"uniqueIndex:uniq_app_package;not null"`
	PackageID  uint      `json:"package_id" gorm:"uniqueIndex:uniq_app_package;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (SteamAppPackage) TableName() string { return "steam_app_packages" }

// SteamAppPackageGroup owns its subs; deleting a group cascades to them.
type SteamAppPackageGroup struct {
	ID                      uint    `json:"id" gorm:"primaryKey"`
	SteamAppID              uint    `json:"steam_app_id" gorm:"uniqueIndex:uniq_app_pkg_group;not null"`
	Name                    string  `json:"name" gorm:"uniqueIndex:uniq_app_pkg_group;not null"`
	Title                   *string `json:"title"`
	Description             *string `json:"description" gorm:"type:text"`
	SelectionText           *string `json:"selection_text"`
	SaveText                *string `json:"save_text"`
	DisplayType             int     `json:"display_type" gorm:"default:0"`
	IsRecurringSubscription *string `json:"is_recurring_subscription"`

	Subs []SteamAppPackageGroupSub `json:"subs,omitempty" gorm:"foreignKey:SteamAppPackageGroupID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SteamAppPackageGroup) TableName() string { return "steam_app_package_groups" }

type SteamAppPackageGroupSub struct {
	ID                      uint      `json:"id" gorm:"primaryKey"`
	SteamAppPackageGroupID  uint      `json:"steam_app_package_group_id" gorm:"uniqueIndex:uniq_group_sub;not null"`
	Packageid               uint      `json:"packageid" gorm:"uniqueIndex:uniq_group_sub;not null"`
	PercentSavingsText      *string   `json:"percent_savings_text"`
	PercentSavings          int       `json:"percent_savings" gorm:"default:0"`
	OptionText              *string   `json:"option_text"`
	OptionDescription       *string   `json:"option_description" gorm:"type:text"`
	CanGetFreeLicense       *string   `json:"can_get_free_license"`
	IsFreeLicense           bool      `json:"is_free_license" gorm:"default:false"`
	PriceInCentsWithDiscount *int64   `json:"price_in_cents_with_discount"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func (SteamAppPackageGroupSub) TableName() string { return "steam_app_package_group_subs" }

type SteamAppAchievementHighlighted struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SteamAppID uint      `json:"steam_app_id" gorm:"uniqueIndex:uniq_app_achievement;not null"`
	Name       string    `json:"name" gorm:"uniqueIndex:uniq_app_achievement;not null"`
	Path       string    `json:"path" gorm:"uniqueIndex:uniq_app_achievement"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (SteamAppAchievementHighlighted) TableName() string {
	return "steam_app_achievements_highlighted"
}

type SteamAppContentDescriptorID struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SteamAppID   uint      `json:"steam_app_id" gorm:"uniqueIndex:uniq_app_descriptor;not null"`
	DescriptorID uint      `json:"descriptor_id" gorm:"uniqueIndex:uniq_app_descriptor;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (SteamAppContentDescriptorID) TableName() string { return "steam_app_content_descriptor_ids" }

type SteamAppRating struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	SteamAppID          uint      `json:"steam_app_id" gorm:"uniqueIndex:uniq_app_rating;not null"`
	Board               string    `json:"board" gorm:"uniqueIndex:uniq_app_rating;not null"` // esrb, pegi, ...
	Rating              *string   `json:"rating"`
	Descriptors         *string   `json:"descriptors" gorm:"type:text"`
	DisplayOnlineNotice *string   `json:"display_online_notice"`
	RequiredAge         *string   `json:"required_age"`
	UseAgeGate          *string   `json:"use_age_gate"`
	Banned              *string   `json:"banned"`
	RatingGenerated     *string   `json:"rating_generated"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (SteamAppRating) TableName() string { return "steam_app_ratings" }
