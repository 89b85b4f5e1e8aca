package services

import (
	"context"
	"errors"

	"steam-catalog/internal/services/steam"
)

// fakeGateway is an in-memory Gateway for service tests.
type fakeGateway struct {
	appList    []steam.AppListEntry
	appListErr error

	details    map[uint]*steam.AppDetailsPayload
	detailsErr error

	news    map[uint][]steam.NewsItemPayload
	newsErr error

	workshopPages   map[string]*steam.WorkshopListingPage
	workshopDetails []steam.WorkshopDetailItem

	existingImages map[string]bool

	detailCalls int
	newsCalls   int
}

func (f *fakeGateway) GetAppList(ctx context.Context) ([]steam.AppListEntry, error) {
	if f.appListErr != nil {
		return nil, f.appListErr
	}
	return f.appList, nil
}

func (f *fakeGateway) GetAppDetails(ctx context.Context, appid uint) (*steam.AppDetailsPayload, error) {
	f.detailCalls++
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	payload, ok := f.details[appid]
	if !ok {
		return nil, errors.New("no details for appid")
	}
	return payload, nil
}

func (f *fakeGateway) GetAppNews(ctx context.Context, appid uint) ([]steam.NewsItemPayload, error) {
	f.newsCalls++
	if f.newsErr != nil {
		return nil, f.newsErr
	}
	return f.news[appid], nil
}

func (f *fakeGateway) QueryWorkshopItems(ctx context.Context, appid uint, cursor string) (*steam.WorkshopListingPage, error) {
	page, ok := f.workshopPages[cursor]
	if !ok {
		return &steam.WorkshopListingPage{}, nil
	}
	return page, nil
}

func (f *fakeGateway) GetPublishedFileDetails(ctx context.Context, ids []string) ([]steam.WorkshopDetailItem, error) {
	return f.workshopDetails, nil
}

func (f *fakeGateway) ProbeImage(ctx context.Context, url string) bool {
	return f.existingImages[url]
}

func strPtr(s string) *string { return &s }

func uintPtr(v uint) *uint { return &v }

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }
