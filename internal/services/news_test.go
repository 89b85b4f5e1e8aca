package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steam-catalog/internal/models"
	"steam-catalog/internal/services/steam"
)

func newsItem(gid, title string) steam.NewsItemPayload {
	return steam.NewsItemPayload{
		Gid:       gid,
		Title:     title,
		URL:       strPtr("https://store.steampowered.com/news/" + gid),
		Author:    strPtr("valve"),
		Date:      int64Ptr(1700000000),
		Feedlabel: strPtr("Community Announcements"),
		Tags:      []string{"patchnotes"},
	}
}

func TestFetchNewsUnknownAppidIsNoop(t *testing.T) {
	db := openTestDB(t)
	gw := &fakeGateway{}
	fetcher := NewNewsFetcher(db, gw)

	require.NoError(t, fetcher.Fetch(context.Background(), 999))
	assert.Zero(t, gw.newsCalls)
}

func TestFetchNewsUpsertsByGid(t *testing.T) {
	db := openTestDB(t)
	app := createTestApp(t, db, 440, "Team Fortress 2")

	gw := &fakeGateway{news: map[uint][]steam.NewsItemPayload{
		440: {newsItem("g1", "First post"), newsItem("g2", "Second post")},
	}}
	fetcher := NewNewsFetcher(db, gw)
	require.NoError(t, fetcher.Fetch(context.Background(), 440))

	// The feed window moves on: g1 ages out, g2 is edited, g3 appears.
	gw.news[440] = []steam.NewsItemPayload{newsItem("g2", "Second post (updated)"), newsItem("g3", "Third post")}
	require.NoError(t, fetcher.Fetch(context.Background(), 440))

	var rows []models.SteamAppNews
	require.NoError(t, db.Where("steam_app_id = ?", app.ID).Order("gid").Find(&rows).Error)
	require.Len(t, rows, 3, "news accumulates, items never disappear")
	assert.Equal(t, "First post", rows[0].Title)
	assert.Equal(t, "Second post (updated)", rows[1].Title)
	assert.Equal(t, "Third post", rows[2].Title)

	require.NotNil(t, rows[0].Tags)
	assert.JSONEq(t, `["patchnotes"]`, *rows[0].Tags)

	var stored models.SteamApp
	require.NoError(t, db.First(&stored, app.ID).Error)
	assert.NotNil(t, stored.LastNewsUpdate)
}

func TestFetchNewsSkipsItemsWithoutGid(t *testing.T) {
	db := openTestDB(t)
	app := createTestApp(t, db, 440, "Team Fortress 2")

	gw := &fakeGateway{news: map[uint][]steam.NewsItemPayload{
		440: {newsItem("", "broken"), newsItem("g1", "ok")},
	}}
	fetcher := NewNewsFetcher(db, gw)
	require.NoError(t, fetcher.Fetch(context.Background(), 440))

	var count int64
	require.NoError(t, db.Model(&models.SteamAppNews{}).Where("steam_app_id = ?", app.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
