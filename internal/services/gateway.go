package services

import (
	"context"

	"steam-catalog/internal/services/steam"
)

// Gateway is the slice of the Steam API the fetchers consume. *steam.Client
// satisfies it; tests substitute a fake.
type Gateway interface {
	GetAppList(ctx context.Context) ([]steam.AppListEntry, error)
	GetAppDetails(ctx context.Context, appid uint) (*steam.AppDetailsPayload, error)
	GetAppNews(ctx context.Context, appid uint) ([]steam.NewsItemPayload, error)
	QueryWorkshopItems(ctx context.Context, appid uint, cursor string) (*steam.WorkshopListingPage, error)
	GetPublishedFileDetails(ctx context.Context, ids []string) ([]steam.WorkshopDetailItem, error)
	ProbeImage(ctx context.Context, url string) bool
}
