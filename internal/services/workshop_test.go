package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steam-catalog/internal/models"
	"steam-catalog/internal/services/steam"
)

func listingItem(id string) steam.WorkshopListingItem {
	return steam.WorkshopListingItem{
		PublishedFileID: id,
		Result:          intPtr(1),
		Title:           strPtr("Listing Title " + id),
		PreviewURL:      strPtr("https://cdn/preview-" + id + ".jpg"),
		Views:           int64Ptr(1000),
		Subscriptions:   int64Ptr(200),
		Favorited:       int64Ptr(50),
		TimeCreated:     int64Ptr(1600000000),
		TimeUpdated:     int64Ptr(1700000000),
	}
}

func detailItem(id string) steam.WorkshopDetailItem {
	return steam.WorkshopDetailItem{
		PublishedFileID: id,
		Result:          intPtr(1),
		Creator:         strPtr("76561198000000001"),
		Title:           strPtr("Detail Title " + id),
		Description:     strPtr("Full description"),
		Filename:        strPtr("map.vpk"),
		FileSize:        steam.FlexInt(12345),
		Views:           int64Ptr(1),
		Subscriptions:   int64Ptr(2),
		Favorited:       int64Ptr(3),
		Tags:            []steam.WorkshopTagPayload{{Tag: "map"}, {Tag: "fun"}},
	}
}

func TestFetchWorkshopPageJoinsListingAndDetails(t *testing.T) {
	db := openTestDB(t)
	app := createTestApp(t, db, 440, "Team Fortress 2")

	gw := &fakeGateway{
		workshopPages: map[string]*steam.WorkshopListingPage{
			FirstWorkshopCursor: {Items: []steam.WorkshopListingItem{listingItem("111")}, NextCursor: "", Total: 1},
		},
		workshopDetails: []steam.WorkshopDetailItem{detailItem("111")},
	}
	fetcher := NewWorkshopFetcher(db, gw)

	next, err := fetcher.FetchPage(context.Background(), 440, "")
	require.NoError(t, err)
	assert.Empty(t, next)

	var item models.SteamAppWorkshopItem
	require.NoError(t, db.Where("steam_app_id = ?", app.ID).First(&item).Error)

	// Listing values win over the detail response.
	assert.Equal(t, "Listing Title 111", item.Title)
	assert.EqualValues(t, 1000, item.Views)
	assert.EqualValues(t, 200, item.Subscriptions)
	assert.EqualValues(t, 50, item.Favorited)
	require.NotNil(t, item.PreviewURL)
	assert.Equal(t, "https://cdn/preview-111.jpg", *item.PreviewURL)

	// Detail-only fields come from the batch call.
	require.NotNil(t, item.Creator)
	assert.EqualValues(t, 12345, item.FileSize)
	require.NotNil(t, item.Tags)
	assert.JSONEq(t, `["map","fun"]`, *item.Tags)

	require.NotNil(t, item.URL)
	assert.Equal(t, "https://steamcommunity.com/sharedfiles/filedetails/?id=111", *item.URL)
	require.NotNil(t, item.TimeCreated)
}

func TestFetchWorkshopPageReturnsNextCursor(t *testing.T) {
	db := openTestDB(t)
	createTestApp(t, db, 440, "Team Fortress 2")

	gw := &fakeGateway{
		workshopPages: map[string]*steam.WorkshopListingPage{
			FirstWorkshopCursor: {Items: []steam.WorkshopListingItem{listingItem("111")}, NextCursor: "AoJ4...", Total: 2},
			"AoJ4...":           {Items: []steam.WorkshopListingItem{listingItem("222")}, NextCursor: "AoJ4...", Total: 2},
		},
		workshopDetails: []steam.WorkshopDetailItem{detailItem("111"), detailItem("222")},
	}
	fetcher := NewWorkshopFetcher(db, gw)

	next, err := fetcher.FetchPage(context.Background(), 440, "")
	require.NoError(t, err)
	assert.Equal(t, "AoJ4...", next)

	// A cursor that repeats itself ends the pagination.
	next, err = fetcher.FetchPage(context.Background(), 440, next)
	require.NoError(t, err)
	assert.Empty(t, next)

	var count int64
	require.NoError(t, db.Model(&models.SteamAppWorkshopItem{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestFetchWorkshopSkipsFailedResults(t *testing.T) {
	db := openTestDB(t)
	createTestApp(t, db, 440, "Team Fortress 2")

	failed := listingItem("333")
	failed.Result = intPtr(9)

	gw := &fakeGateway{
		workshopPages: map[string]*steam.WorkshopListingPage{
			FirstWorkshopCursor: {Items: []steam.WorkshopListingItem{failed, listingItem("444")}},
		},
		workshopDetails: []steam.WorkshopDetailItem{detailItem("444")},
	}
	fetcher := NewWorkshopFetcher(db, gw)

	_, err := fetcher.FetchPage(context.Background(), 440, "")
	require.NoError(t, err)

	var items []models.SteamAppWorkshopItem
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, 1)
	assert.EqualValues(t, 444, items[0].PublishedFileID)
}

func TestFetchWorkshopUpsertIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	createTestApp(t, db, 440, "Team Fortress 2")

	gw := &fakeGateway{
		workshopPages: map[string]*steam.WorkshopListingPage{
			FirstWorkshopCursor: {Items: []steam.WorkshopListingItem{listingItem("111")}},
		},
		workshopDetails: []steam.WorkshopDetailItem{detailItem("111")},
	}
	fetcher := NewWorkshopFetcher(db, gw)

	_, err := fetcher.FetchPage(context.Background(), 440, "")
	require.NoError(t, err)
	_, err = fetcher.FetchPage(context.Background(), 440, "")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.SteamAppWorkshopItem{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFetchWorkshopUnknownAppidIsNoop(t *testing.T) {
	db := openTestDB(t)
	gw := &fakeGateway{}
	fetcher := NewWorkshopFetcher(db, gw)

	next, err := fetcher.FetchPage(context.Background(), 999, "")
	require.NoError(t, err)
	assert.Empty(t, next)
}
