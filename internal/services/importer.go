package services

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"steam-catalog/internal/config"
	"steam-catalog/internal/jobs"
	"steam-catalog/internal/models"
	"steam-catalog/internal/services/steam"
)

const importChunkSize = 1000

// ImportResult summarizes one import pass over the full app list.
type ImportResult struct {
	Created    int `json:"created"`
	Updated    int `json:"updated"`
	Skipped    int `json:"skipped"`
	Dispatched int `json:"dispatched"`
}

// Importer walks the full Steam app list, upserts the catalog rows and
// dispatches refresh jobs for apps whose details have gone stale. It only
// ever touches the app name; everything else belongs to the fetchers.
type Importer struct {
	db         *gorm.DB
	gateway    Gateway
	dispatcher jobs.Dispatcher
	policy     config.RefreshPolicy
	enableNews bool
}

func NewImporter(db *gorm.DB, gateway Gateway, dispatcher jobs.Dispatcher, policy config.RefreshPolicy, enableNews bool) *Importer {
	return &Importer{
		db:         db,
		gateway:    gateway,
		dispatcher: dispatcher,
		policy:     policy,
		enableNews: enableNews,
	}
}

// Import runs one full pass. Entries with an empty name are skipped; the
// catalog keeps listing delisted apps and Steam returns them nameless.
// Dispatch failures are logged per entry and never abort the pass.
func (im *Importer) Import(ctx context.Context) (*ImportResult, error) {
	entries, err := im.gateway.GetAppList(ctx)
	if err != nil {
		return nil, err
	}

	log.Printf("[importer] received %d app list entries", len(entries))

	result := &ImportResult{}
	now := time.Now()

	for start := 0; start < len(entries); start += importChunkSize {
		end := start + importChunkSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := im.importChunk(entries[start:end], now, result); err != nil {
			return result, err
		}
	}

	log.Printf("[importer] pass done: %d created, %d updated, %d skipped, %d jobs dispatched",
		result.Created, result.Updated, result.Skipped, result.Dispatched)
	return result, nil
}

func (im *Importer) importChunk(entries []steam.AppListEntry, now time.Time, result *ImportResult) error {
	appids := make([]uint, 0, len(entries))
	for _, e := range entries {
		if e.Name != "" {
			appids = append(appids, e.Appid)
		}
	}
	if len(appids) == 0 {
		for range entries {
			result.Skipped++
		}
		return nil
	}

	var existing []models.SteamApp
	err := im.db.Preload("Detail").Where("appid IN ?", appids).Find(&existing).Error
	if err != nil {
		return err
	}
	byAppid := make(map[uint]*models.SteamApp, len(existing))
	for i := range existing {
		byAppid[existing[i].Appid] = &existing[i]
	}

	for _, entry := range entries {
		if entry.Name == "" {
			result.Skipped++
			continue
		}

		app, known := byAppid[entry.Appid]
		if !known {
			created := models.SteamApp{Appid: entry.Appid, Name: entry.Name}
			if err := im.db.Create(&created).Error; err != nil {
				// One broken row must not sink the pass.
				log.Printf("[importer] create failed for appid %d: %v", entry.Appid, err)
				result.Skipped++
				continue
			}
			app = &created
			result.Created++
		} else {
			if app.Name != entry.Name {
				if err := im.db.Model(app).Update("name", entry.Name).Error; err != nil {
					log.Printf("[importer] rename failed for appid %d: %v", entry.Appid, err)
					result.Skipped++
					continue
				}
				app.Name = entry.Name
			}
			// Every existing entry counts as updated; skip is reserved for
			// nameless (delisted) entries and failed rows.
			result.Updated++
		}

		im.dispatchDue(app, now, result)
	}

	return nil
}

func (im *Importer) dispatchDue(app *models.SteamApp, now time.Time, result *ImportResult) {
	var releaseDate *time.Time
	if app.Detail != nil {
		releaseDate = app.Detail.ReleaseDate
	}

	if ShouldRefreshDetails(app.LastDetailsUpdate, releaseDate, now, im.policy) {
		if err := im.dispatcher.Dispatch(jobs.Job{Kind: jobs.KindDetails, Appid: app.Appid}); err != nil {
			log.Printf("[importer] details dispatch failed for appid %d: %v", app.Appid, err)
		} else {
			result.Dispatched++
		}
	}

	if im.enableNews && ShouldRefreshDetails(app.LastNewsUpdate, releaseDate, now, im.policy) {
		if err := im.dispatcher.Dispatch(jobs.Job{Kind: jobs.KindNews, Appid: app.Appid}); err != nil {
			log.Printf("[importer] news dispatch failed for appid %d: %v", app.Appid, err)
		} else {
			result.Dispatched++
		}
	}
}
