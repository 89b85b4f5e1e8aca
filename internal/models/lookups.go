package models

import "time"

// Reference tables shared across apps, created on first sight and attached
// through fully re-synced many-to-many joins. Category descriptions are not
// unique: distinct category ids can share one (e.g. the PvP variants).

type SteamAppCategory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CategoryID  uint      `json:"category_id" gorm:"uniqueIndex;not null"`
	Description string    `json:"description" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SteamAppCategory) TableName() string { return "steam_app_categories" }

type SteamAppGenre struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	GenreID     string    `json:"genre_id" gorm:"uniqueIndex;not null"`
	Description string    `json:"description" gorm:"uniqueIndex;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SteamAppGenre) TableName() string { return "steam_app_genres" }

type SteamAppDeveloper struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SteamAppDeveloper) TableName() string { return "steam_app_developers" }

type SteamAppPublisher struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SteamAppPublisher) TableName() string { return "steam_app_publishers" }
