package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"steam-catalog/internal/models"
	"steam-catalog/internal/services/steam"
)

// NewsFetcher pulls the latest news items for one app. News accumulates:
// items are upserted by gid and never deleted when they age out of the feed.
type NewsFetcher struct {
	db      *gorm.DB
	gateway Gateway
}

func NewNewsFetcher(db *gorm.DB, gateway Gateway) *NewsFetcher {
	return &NewsFetcher{db: db, gateway: gateway}
}

// Fetch refreshes the news of one app. An appid not present in the catalog is
// a no-op. Like the details fetcher, the timestamp is stamped before the
// store step.
func (f *NewsFetcher) Fetch(ctx context.Context, appid uint) error {
	var app models.SteamApp
	err := f.db.Where("appid = ?", appid).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return &SyncError{Appid: appid, Err: err}
	}

	items, err := f.gateway.GetAppNews(ctx, appid)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := f.db.Model(&app).Update("last_news_update", now).Error; err != nil {
		return &SyncError{Appid: appid, Err: err}
	}
	app.LastNewsUpdate = &now

	err = f.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if item.Gid == "" {
				continue
			}
			if err := upsertNewsItem(tx, app.ID, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &SyncError{Appid: appid, Err: err}
	}
	return nil
}

func upsertNewsItem(tx *gorm.DB, appID uint, item steam.NewsItemPayload) error {
	var row models.SteamAppNews
	err := tx.Where("gid = ?", item.Gid).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	row.SteamAppID = appID
	row.Gid = item.Gid
	row.Title = item.Title
	row.URL = item.URL
	row.IsExternalURL = item.IsExternalURL
	row.Author = item.Author
	row.Contents = item.Contents
	row.Feedlabel = item.Feedlabel
	row.Date = item.Date
	row.Feedname = item.Feedname
	row.FeedType = item.FeedType
	row.Tags = encodeTags(item.Tags)

	if row.ID == 0 {
		return tx.Create(&row).Error
	}
	return tx.Save(&row).Error
}

func encodeTags(tags []string) *string {
	if tags == nil {
		return nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}
