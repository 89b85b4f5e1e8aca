package models

import "time"

// SteamAppWorkshopItem is keyed by the globally unique published file id.
// Rows are merged from two upstream calls: the paginated QueryFiles listing
// and the batch GetPublishedFileDetails response.
type SteamAppWorkshopItem struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	SteamAppID uint `json:"steam_app_id" gorm:"index;not null"`

	PublishedFileID   uint64  `json:"publishedfileid" gorm:"uniqueIndex;not null"`
	Creator           *string `json:"creator"` // author SteamID64
	Title             string  `json:"title" gorm:"not null"`
	ShortDescription  *string `json:"short_description" gorm:"type:text"`
	Description       *string `json:"description" gorm:"type:longtext"`
	Filename          *string `json:"filename"`
	FileSize          int64   `json:"file_size" gorm:"default:0"`
	FileURL           *string `json:"file_url"`
	PreviewURL        *string `json:"preview_url"`
	URL               *string `json:"url"`
	Tags              *string `json:"tags" gorm:"type:json"` // JSON array stored as string
	Banned            bool    `json:"banned" gorm:"default:false"`
	Views             int64   `json:"views" gorm:"default:0"`
	Subscriptions     int64   `json:"subscriptions" gorm:"default:0"`
	Favorited         int64   `json:"favorited" gorm:"default:0"`
	NumCommentsPublic int64   `json:"num_comments_public" gorm:"default:0"`

	TimeCreated *time.Time `json:"time_created"`
	TimeUpdated *time.Time `json:"time_updated"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SteamAppWorkshopItem) TableName() string { return "steam_app_workshop_items" }
