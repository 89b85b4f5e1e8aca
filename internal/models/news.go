package models

import "time"

// SteamAppNews is keyed by the globally unique upstream gid, not scoped to
// the app. News is cumulative history: refreshes only ever add or update.
type SteamAppNews struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	SteamAppID uint `json:"steam_app_id" gorm:"index;not null"`

	Gid           string  `json:"gid" gorm:"uniqueIndex;not null"`
	Title         string  `json:"title" gorm:"not null"`
	URL           *string `json:"url" gorm:"type:text"`
	IsExternalURL bool    `json:"is_external_url" gorm:"default:false"`
	Author        *string `json:"author"`
	Contents      *string `json:"contents" gorm:"type:longtext"`
	Feedlabel     *string `json:"feedlabel"`
	Date          *int64  `json:"date"` // unix timestamp as reported by Steam
	Feedname      *string `json:"feedname"`
	FeedType      int     `json:"feed_type" gorm:"default:0"`
	Tags          *string `json:"tags" gorm:"type:json"` // JSON array stored as string

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SteamAppNews) TableName() string { return "steam_app_news" }
