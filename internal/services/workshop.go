package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"steam-catalog/internal/models"
	"steam-catalog/internal/services/steam"
)

// FirstWorkshopCursor starts the cursor-based listing pagination.
const FirstWorkshopCursor = "*"

const workshopResultOK = 1

// WorkshopFetcher ingests one listing page of an app's workshop per call.
// Each page is joined with the batch file-details response; listing values
// win where the two overlap, since the listing endpoint is the fresher one.
type WorkshopFetcher struct {
	db      *gorm.DB
	gateway Gateway
}

func NewWorkshopFetcher(db *gorm.DB, gateway Gateway) *WorkshopFetcher {
	return &WorkshopFetcher{db: db, gateway: gateway}
}

// FetchPage stores one page of workshop items and returns the cursor of the
// next page, or "" when the listing is exhausted. An appid not present in the
// catalog is a no-op.
func (f *WorkshopFetcher) FetchPage(ctx context.Context, appid uint, cursor string) (string, error) {
	if cursor == "" {
		cursor = FirstWorkshopCursor
	}

	var app models.SteamApp
	err := f.db.Where("appid = ?", appid).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", &SyncError{Appid: appid, Err: err}
	}

	page, err := f.gateway.QueryWorkshopItems(ctx, appid, cursor)
	if err != nil {
		return "", err
	}
	if len(page.Items) == 0 {
		return "", nil
	}

	ids := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		if item.PublishedFileID != "" {
			ids = append(ids, item.PublishedFileID)
		}
	}

	details, err := f.gateway.GetPublishedFileDetails(ctx, ids)
	if err != nil {
		return "", err
	}

	detailByID := make(map[string]steam.WorkshopDetailItem, len(details))
	for _, d := range details {
		detailByID[d.PublishedFileID] = d
	}

	err = f.db.Transaction(func(tx *gorm.DB) error {
		for _, listing := range page.Items {
			if listing.Result != nil && *listing.Result != workshopResultOK {
				continue
			}
			fileID, err := strconv.ParseUint(listing.PublishedFileID, 10, 64)
			if err != nil || fileID == 0 {
				continue
			}
			detail, ok := detailByID[listing.PublishedFileID]
			if !ok {
				continue
			}
			if detail.Result != nil && *detail.Result != workshopResultOK {
				continue
			}
			if err := upsertWorkshopItem(tx, app.ID, fileID, listing, detail); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", &SyncError{Appid: appid, Err: err}
	}

	next := page.NextCursor
	if next == cursor || next == "" {
		return "", nil
	}
	return next, nil
}

func upsertWorkshopItem(tx *gorm.DB, appID uint, fileID uint64, listing steam.WorkshopListingItem, detail steam.WorkshopDetailItem) error {
	var row models.SteamAppWorkshopItem
	err := tx.Where("published_file_id = ?", fileID).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	row.SteamAppID = appID
	row.PublishedFileID = fileID

	row.Creator = detail.Creator
	row.Description = detail.Description
	row.Filename = detail.Filename
	row.FileSize = detail.FileSize.Int64()
	row.FileURL = detail.FileURL
	row.Banned = detail.Banned
	row.Tags = encodeWorkshopTags(detail.Tags)
	if detail.NumCommentsPublic != nil {
		row.NumCommentsPublic = *detail.NumCommentsPublic
	}

	row.Title = firstString(listing.Title, detail.Title)
	row.ShortDescription = listing.ShortDescription
	row.PreviewURL = coalesceStrPtr(listing.PreviewURL, detail.PreviewURL)
	row.Views = coalesceInt64(listing.Views, detail.Views)
	row.Subscriptions = coalesceInt64(listing.Subscriptions, detail.Subscriptions)
	row.Favorited = coalesceInt64(listing.Favorited, detail.Favorited)
	row.TimeCreated = unixTimePtr(listing.TimeCreated)
	row.TimeUpdated = unixTimePtr(listing.TimeUpdated)

	url := fmt.Sprintf("https://steamcommunity.com/sharedfiles/filedetails/?id=%d", fileID)
	row.URL = &url

	if row.ID == 0 {
		return tx.Create(&row).Error
	}
	return tx.Save(&row).Error
}

func encodeWorkshopTags(tags []steam.WorkshopTagPayload) *string {
	if tags == nil {
		return nil
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Tag != "" {
			names = append(names, t.Tag)
		}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

func firstString(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return *c
		}
	}
	return ""
}

func coalesceStrPtr(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return c
		}
	}
	return nil
}

func coalesceInt64(candidates ...*int64) int64 {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return 0
}

func unixTimePtr(ts *int64) *time.Time {
	if ts == nil || *ts == 0 {
		return nil
	}
	t := time.Unix(*ts, 0)
	return &t
}
