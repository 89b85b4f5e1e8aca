package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"steam-catalog/internal/models"
	"steam-catalog/internal/services/steam"
)

// releaseDatePlaceholders are upstream strings that mean "no date yet". They
// map to a NULL release date, never a sentinel.
var releaseDatePlaceholders = map[string]struct{}{
	"coming soon":      {},
	"tba":              {},
	"to be announced":  {},
	"to be determined": {},
}

var releaseDateLayouts = []string{
	"2 Jan, 2006",
	"Jan 2, 2006",
	"2 January, 2006",
	"January 2, 2006",
	"2006-01-02",
	"Jan 2006",
	"January 2006",
	"2006",
}

// parseReleaseDate turns the upstream release_date block into a nullable
// timestamp. Placeholders and unparseable strings yield nil.
func parseReleaseDate(rd *steam.ReleaseDatePayload) (*time.Time, bool) {
	if rd == nil {
		return nil, false
	}

	raw := strings.TrimSpace(rd.Date)
	if raw == "" {
		return nil, rd.ComingSoon
	}
	if _, placeholder := releaseDatePlaceholders[strings.ToLower(raw)]; placeholder {
		return nil, rd.ComingSoon
	}

	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, rd.ComingSoon
		}
	}
	return nil, rd.ComingSoon
}

// DetailsFetcher pulls the store details payload for one app and converges
// the stored record and every nested collection onto it.
type DetailsFetcher struct {
	db      *gorm.DB
	gateway Gateway
}

func NewDetailsFetcher(db *gorm.DB, gateway Gateway) *DetailsFetcher {
	return &DetailsFetcher{db: db, gateway: gateway}
}

// Fetch refreshes one app. An appid not present in the catalog is a no-op.
// The refresh timestamp is stamped after a successful fetch but before the
// store step, so an app whose payload keeps failing to persist does not stay
// at the front of every staleness pass.
func (f *DetailsFetcher) Fetch(ctx context.Context, appid uint) error {
	var app models.SteamApp
	err := f.db.Where("appid = ?", appid).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return &SyncError{Appid: appid, Err: err}
	}

	payload, err := f.gateway.GetAppDetails(ctx, appid)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := f.db.Model(&app).Update("last_details_update", now).Error; err != nil {
		return &SyncError{Appid: appid, Err: err}
	}
	app.LastDetailsUpdate = &now

	// The store page never links the library capsules; probe the CDN for them.
	var libraryImage, heroImage *string
	if url := steam.LibraryImageURL(appid); f.gateway.ProbeImage(ctx, url) {
		libraryImage = &url
	}
	if url := steam.LibraryHeroImageURL(appid); f.gateway.ProbeImage(ctx, url) {
		heroImage = &url
	}

	err = f.db.Transaction(func(tx *gorm.DB) error {
		return storeDetails(tx, &app, payload, libraryImage, heroImage)
	})
	if err != nil {
		return &SyncError{Appid: appid, Err: err}
	}
	return nil
}

func storeDetails(tx *gorm.DB, app *models.SteamApp, payload *steam.AppDetailsPayload, libraryImage, heroImage *string) error {
	if err := upsertDetailRecord(tx, app, payload, libraryImage, heroImage); err != nil {
		return err
	}

	if err := upsertRequirement(tx, app.ID, "pc", payload.PCRequirements); err != nil {
		return err
	}
	if err := upsertRequirement(tx, app.ID, "mac", payload.MacRequirements); err != nil {
		return err
	}
	if err := upsertRequirement(tx, app.ID, "linux", payload.LinuxRequirements); err != nil {
		return err
	}

	if payload.Screenshots != nil {
		err := syncCollection(tx, app.ID, payload.Screenshots, syncOptions[steam.ScreenshotPayload, models.SteamAppScreenshot, uint]{
			OwnerColumn: "steam_app_id",
			KeyFromPayload: func(p steam.ScreenshotPayload) (uint, bool) {
				if p.ID == nil {
					return 0, false
				}
				return *p.ID, true
			},
			KeyFromRow: func(r models.SteamAppScreenshot) uint { return r.ScreenshotID },
			Assign: func(r *models.SteamAppScreenshot, ownerID uint, p steam.ScreenshotPayload) {
				r.SteamAppID = ownerID
				r.ScreenshotID = *p.ID
				r.PathThumbnail = p.PathThumbnail
				r.PathFull = p.PathFull
				r.DeletedAt = gorm.DeletedAt{}
			},
			SoftDelete: true,
		})
		if err != nil {
			return err
		}
	}

	if payload.Movies != nil {
		err := syncCollection(tx, app.ID, payload.Movies, syncOptions[steam.MoviePayload, models.SteamAppMovie, uint]{
			OwnerColumn: "steam_app_id",
			KeyFromPayload: func(p steam.MoviePayload) (uint, bool) {
				if p.ID == nil {
					return 0, false
				}
				return *p.ID, true
			},
			KeyFromRow: func(r models.SteamAppMovie) uint { return r.MovieID },
			Assign: func(r *models.SteamAppMovie, ownerID uint, p steam.MoviePayload) {
				r.SteamAppID = ownerID
				r.MovieID = *p.ID
				r.Name = p.Name
				r.Thumbnail = p.Thumbnail
				r.Webm480, r.WebmMax = videoSources(p.Webm)
				r.Mp4480, r.Mp4Max = videoSources(p.Mp4)
				r.Highlight = p.Highlight
				r.DeletedAt = gorm.DeletedAt{}
			},
			SoftDelete: true,
		})
		if err != nil {
			return err
		}
	}

	if payload.DLC != nil {
		err := syncCollection(tx, app.ID, payload.DLC, syncOptions[uint, models.SteamAppDlc, uint]{
			OwnerColumn:    "steam_app_id",
			KeyFromPayload: func(p uint) (uint, bool) { return p, true },
			KeyFromRow:     func(r models.SteamAppDlc) uint { return r.DlcAppid },
			Assign: func(r *models.SteamAppDlc, ownerID uint, p uint) {
				r.SteamAppID = ownerID
				r.DlcAppid = p
			},
		})
		if err != nil {
			return err
		}
	}

	if payload.Demos != nil {
		err := syncCollection(tx, app.ID, payload.Demos, syncOptions[steam.DemoPayload, models.SteamAppDemo, uint]{
			OwnerColumn: "steam_app_id",
			KeyFromPayload: func(p steam.DemoPayload) (uint, bool) {
				if p.Appid == nil {
					return 0, false
				}
				return *p.Appid, true
			},
			KeyFromRow: func(r models.SteamAppDemo) uint { return r.Appid },
			Assign: func(r *models.SteamAppDemo, ownerID uint, p steam.DemoPayload) {
				r.SteamAppID = ownerID
				r.Appid = *p.Appid
				r.Description = p.Description
			},
		})
		if err != nil {
			return err
		}
	}

	if payload.Packages != nil {
		err := syncCollection(tx, app.ID, payload.Packages, syncOptions[uint, models.SteamAppPackage, uint]{
			OwnerColumn:    "steam_app_id",
			KeyFromPayload: func(p uint) (uint, bool) { return p, true },
			KeyFromRow:     func(r models.SteamAppPackage) uint { return r.PackageID },
			Assign: func(r *models.SteamAppPackage, ownerID uint, p uint) {
				r.SteamAppID = ownerID
				r.PackageID = p
			},
		})
		if err != nil {
			return err
		}
	}

	if payload.PackageGroups != nil {
		if err := syncPackageGroups(tx, app.ID, payload.PackageGroups); err != nil {
			return err
		}
	}

	if payload.Achievements != nil && payload.Achievements.Highlighted != nil {
		type achievementKey struct{ Name, Path string }
		err := syncCollection(tx, app.ID, payload.Achievements.Highlighted, syncOptions[steam.AchievementHighlightPayload, models.SteamAppAchievementHighlighted, achievementKey]{
			OwnerColumn: "steam_app_id",
			KeyFromPayload: func(p steam.AchievementHighlightPayload) (achievementKey, bool) {
				if p.Name == "" {
					return achievementKey{}, false
				}
				return achievementKey{Name: p.Name, Path: p.Path}, true
			},
			KeyFromRow: func(r models.SteamAppAchievementHighlighted) achievementKey {
				return achievementKey{Name: r.Name, Path: r.Path}
			},
			Assign: func(r *models.SteamAppAchievementHighlighted, ownerID uint, p steam.AchievementHighlightPayload) {
				r.SteamAppID = ownerID
				r.Name = p.Name
				r.Path = p.Path
			},
		})
		if err != nil {
			return err
		}
	}

	if payload.ContentDescriptors != nil && payload.ContentDescriptors.IDs != nil {
		err := syncCollection(tx, app.ID, payload.ContentDescriptors.IDs, syncOptions[uint, models.SteamAppContentDescriptorID, uint]{
			OwnerColumn:    "steam_app_id",
			KeyFromPayload: func(p uint) (uint, bool) { return p, true },
			KeyFromRow:     func(r models.SteamAppContentDescriptorID) uint { return r.DescriptorID },
			Assign: func(r *models.SteamAppContentDescriptorID, ownerID uint, p uint) {
				r.SteamAppID = ownerID
				r.DescriptorID = p
			},
		})
		if err != nil {
			return err
		}
	}

	if payload.Ratings != nil {
		if err := syncRatings(tx, app.ID, payload.Ratings); err != nil {
			return err
		}
	}

	if payload.PriceOverview != nil {
		if err := upsertPriceInfo(tx, app.ID, payload.PriceOverview); err != nil {
			return err
		}
	}

	return syncLookups(tx, app, payload)
}

func upsertDetailRecord(tx *gorm.DB, app *models.SteamApp, payload *steam.AppDetailsPayload, libraryImage, heroImage *string) error {
	var detail models.SteamAppDetail
	err := tx.Where("steam_app_id = ?", app.ID).First(&detail).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	releaseDate, comingSoon := parseReleaseDate(payload.ReleaseDate)

	detail.SteamAppID = app.ID
	detail.Type = payload.Type
	detail.Name = payload.Name
	detail.RequiredAge = payload.RequiredAge.Int()
	detail.IsFree = payload.IsFree
	detail.ControllerSupport = payload.ControllerSupport
	detail.DetailedDescription = payload.DetailedDescription
	detail.AboutTheGame = payload.AboutTheGame
	detail.ShortDescription = payload.ShortDescription
	detail.SupportedLanguages = payload.SupportedLanguages
	detail.HeaderImage = payload.HeaderImage
	detail.LibraryImage = libraryImage
	detail.LibraryHeroImage = heroImage
	detail.CapsuleImage = payload.CapsuleImage
	detail.CapsuleImagev5 = payload.CapsuleImagev5
	detail.Website = payload.Website
	detail.LegalNotice = payload.LegalNotice
	detail.DRMNotice = payload.DRMNotice
	detail.Windows = payload.Platforms.Windows
	detail.Mac = payload.Platforms.Mac
	detail.Linux = payload.Platforms.Linux
	detail.Background = payload.Background
	detail.BackgroundRaw = payload.BackgroundRaw
	detail.ReleaseDate = releaseDate
	detail.ComingSoon = comingSoon

	if payload.Metacritic != nil {
		score := payload.Metacritic.Score
		url := payload.Metacritic.URL
		detail.MetacriticScore = &score
		detail.MetacriticURL = &url
	} else {
		detail.MetacriticScore = nil
		detail.MetacriticURL = nil
	}

	if payload.Recommendations != nil {
		total := payload.Recommendations.Total
		detail.RecommendationsTotal = &total
	} else {
		detail.RecommendationsTotal = nil
	}

	if payload.Achievements != nil {
		total := payload.Achievements.Total
		detail.AchievementsTotal = &total
	} else {
		detail.AchievementsTotal = nil
	}

	if payload.ContentDescriptors != nil {
		detail.ContentDescriptorsNotes = payload.ContentDescriptors.Notes
	} else {
		detail.ContentDescriptorsNotes = nil
	}

	if payload.SupportInfo != nil {
		detail.SupportURL = nonEmptyPtr(payload.SupportInfo.URL)
		detail.SupportEmail = nonEmptyPtr(payload.SupportInfo.Email)
	} else {
		detail.SupportURL = nil
		detail.SupportEmail = nil
	}

	if detail.ID == 0 {
		return tx.Create(&detail).Error
	}
	return tx.Save(&detail).Error
}

// upsertRequirement writes one platform's requirement row. A nil payload
// means the key was absent upstream; the stored row is left untouched.
func upsertRequirement(tx *gorm.DB, appID uint, platform string, req *steam.RequirementsPayload) error {
	if req == nil {
		return nil
	}

	var row models.SteamAppRequirement
	err := tx.Where("steam_app_id = ? AND platform = ?", appID, platform).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.SteamAppRequirement{
			SteamAppID:  appID,
			Platform:    platform,
			Minimum:     req.Minimum,
			Recommended: req.Recommended,
		}
		return tx.Create(&row).Error
	}
	if err != nil {
		return err
	}

	row.Minimum = req.Minimum
	row.Recommended = req.Recommended
	return tx.Save(&row).Error
}

// syncPackageGroups reconciles groups on their name and each group's subs on
// packageid. Subs of a removed group are deleted explicitly so the cascade
// does not depend on database-level foreign keys.
func syncPackageGroups(tx *gorm.DB, appID uint, fetched []steam.PackageGroupPayload) error {
	keep := make(map[string]struct{}, len(fetched))
	for _, g := range fetched {
		keep[g.Name] = struct{}{}
	}

	var existing []models.SteamAppPackageGroup
	if err := tx.Where("steam_app_id = ?", appID).Find(&existing).Error; err != nil {
		return err
	}

	byName := make(map[string]models.SteamAppPackageGroup, len(existing))
	for _, g := range existing {
		byName[g.Name] = g
		if _, ok := keep[g.Name]; ok {
			continue
		}
		if err := tx.Where("steam_app_package_group_id = ?", g.ID).Delete(&models.SteamAppPackageGroupSub{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.SteamAppPackageGroup{}, g.ID).Error; err != nil {
			return err
		}
	}

	seen := make(map[string]struct{}, len(fetched))
	for _, g := range fetched {
		if _, dup := seen[g.Name]; dup {
			continue
		}
		seen[g.Name] = struct{}{}

		row, ok := byName[g.Name]
		row.SteamAppID = appID
		row.Name = g.Name
		row.Title = g.Title
		row.Description = g.Description
		row.SelectionText = g.SelectionText
		row.SaveText = g.SaveText
		row.DisplayType = g.DisplayType.Int()
		row.IsRecurringSubscription = g.IsRecurringSubscription

		var err error
		if ok {
			err = tx.Save(&row).Error
		} else {
			err = tx.Create(&row).Error
		}
		if err != nil {
			return err
		}

		err = syncCollection(tx, row.ID, g.Subs, syncOptions[steam.PackageGroupSubPayload, models.SteamAppPackageGroupSub, uint]{
			OwnerColumn: "steam_app_package_group_id",
			KeyFromPayload: func(p steam.PackageGroupSubPayload) (uint, bool) {
				if p.Packageid == nil {
					return 0, false
				}
				return *p.Packageid, true
			},
			KeyFromRow: func(r models.SteamAppPackageGroupSub) uint { return r.Packageid },
			Assign: func(r *models.SteamAppPackageGroupSub, ownerID uint, p steam.PackageGroupSubPayload) {
				r.SteamAppPackageGroupID = ownerID
				r.Packageid = *p.Packageid
				r.PercentSavingsText = p.PercentSavingsText
				r.PercentSavings = p.PercentSavings
				r.OptionText = p.OptionText
				r.OptionDescription = p.OptionDescription
				r.CanGetFreeLicense = p.CanGetFreeLicense
				r.IsFreeLicense = p.IsFreeLicense
				r.PriceInCentsWithDiscount = p.PriceInCentsWithDiscount
			},
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func syncRatings(tx *gorm.DB, appID uint, ratings map[string]steam.RatingPayload) error {
	type boardRating struct {
		Board  string
		Rating steam.RatingPayload
	}
	fetched := make([]boardRating, 0, len(ratings))
	for board, r := range ratings {
		fetched = append(fetched, boardRating{Board: board, Rating: r})
	}

	return syncCollection(tx, appID, fetched, syncOptions[boardRating, models.SteamAppRating, string]{
		OwnerColumn: "steam_app_id",
		KeyFromPayload: func(p boardRating) (string, bool) {
			if p.Board == "" {
				return "", false
			}
			return p.Board, true
		},
		KeyFromRow: func(r models.SteamAppRating) string { return r.Board },
		Assign: func(r *models.SteamAppRating, ownerID uint, p boardRating) {
			r.SteamAppID = ownerID
			r.Board = p.Board
			r.Rating = p.Rating.Rating
			r.Descriptors = p.Rating.Descriptors
			r.DisplayOnlineNotice = p.Rating.DisplayOnlineNotice
			r.RequiredAge = p.Rating.RequiredAge
			r.UseAgeGate = p.Rating.UseAgeGate
			r.Banned = p.Rating.Banned
			r.RatingGenerated = p.Rating.RatingGenerated
		},
	})
}

func upsertPriceInfo(tx *gorm.DB, appID uint, price *steam.PriceOverviewPayload) error {
	var row models.SteamAppPriceInfo
	err := tx.Where("steam_app_id = ?", appID).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	row.SteamAppID = appID
	row.Currency = price.Currency
	row.Initial = price.Initial
	row.Final = price.Final
	row.DiscountPercent = price.DiscountPercent
	row.InitialFormatted = price.InitialFormatted
	row.FinalFormatted = price.FinalFormatted

	if row.ID == 0 {
		return tx.Create(&row).Error
	}
	return tx.Save(&row).Error
}

// syncLookups creates missing reference rows and replaces the app's
// many-to-many links wholesale. Absent payload keys leave the links alone.
func syncLookups(tx *gorm.DB, app *models.SteamApp, payload *steam.AppDetailsPayload) error {
	if payload.Categories != nil {
		categories := make([]models.SteamAppCategory, 0, len(payload.Categories))
		for _, c := range payload.Categories {
			if c.ID == nil {
				continue
			}
			var row models.SteamAppCategory
			err := tx.Where(models.SteamAppCategory{CategoryID: *c.ID}).
				Assign(models.SteamAppCategory{Description: c.Description}).
				FirstOrCreate(&row).Error
			if err != nil {
				return err
			}
			categories = append(categories, row)
		}
		if err := replaceAssociation(tx, app, "Categories", categories); err != nil {
			return err
		}
	}

	if payload.Genres != nil {
		genres := make([]models.SteamAppGenre, 0, len(payload.Genres))
		for _, g := range payload.Genres {
			if g.ID == "" {
				continue
			}
			var row models.SteamAppGenre
			err := tx.Where(models.SteamAppGenre{GenreID: g.ID}).
				Assign(models.SteamAppGenre{Description: g.Description}).
				FirstOrCreate(&row).Error
			if err != nil {
				return err
			}
			genres = append(genres, row)
		}
		if err := replaceAssociation(tx, app, "Genres", genres); err != nil {
			return err
		}
	}

	if payload.Developers != nil {
		developers := make([]models.SteamAppDeveloper, 0, len(payload.Developers))
		for _, name := range payload.Developers {
			if name == "" {
				continue
			}
			var row models.SteamAppDeveloper
			if err := tx.Where(models.SteamAppDeveloper{Name: name}).FirstOrCreate(&row).Error; err != nil {
				return err
			}
			developers = append(developers, row)
		}
		if err := replaceAssociation(tx, app, "Developers", developers); err != nil {
			return err
		}
	}

	if payload.Publishers != nil {
		publishers := make([]models.SteamAppPublisher, 0, len(payload.Publishers))
		for _, name := range payload.Publishers {
			if name == "" {
				continue
			}
			var row models.SteamAppPublisher
			if err := tx.Where(models.SteamAppPublisher{Name: name}).FirstOrCreate(&row).Error; err != nil {
				return err
			}
			publishers = append(publishers, row)
		}
		if err := replaceAssociation(tx, app, "Publishers", publishers); err != nil {
			return err
		}
	}

	return nil
}

func videoSources(v *steam.VideoSourcesPayload) (p480, max *string) {
	if v == nil {
		return nil, nil
	}
	return v.P480, v.Max
}

func nonEmptyPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
