package steam

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexInt tolerates Steam returning numeric fields as either a JSON number
// or a quoted string ("0" and 0 both appear in the wild).
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// Some age fields carry values like "17+"; take the leading digits.
			trimmed := s
			for i := 0; i < len(s); i++ {
				if s[i] < '0' || s[i] > '9' {
					trimmed = s[:i]
					break
				}
			}
			n, err = strconv.ParseInt(trimmed, 10, 64)
			if err != nil {
				*f = 0
				return nil
			}
		}
		*f = FlexInt(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		var fl float64
		if err2 := json.Unmarshal(data, &fl); err2 != nil {
			return err
		}
		n = int64(fl)
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) Int() int     { return int(f) }
func (f FlexInt) Int64() int64 { return int64(f) }

// AppListEntry is one row of the GetAppList response.
type AppListEntry struct {
	Appid uint   `json:"appid"`
	Name  string `json:"name"`
}

type PlatformsPayload struct {
	Windows bool `json:"windows"`
	Mac     bool `json:"mac"`
	Linux   bool `json:"linux"`
}

type ReleaseDatePayload struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}

type SupportInfoPayload struct {
	URL   string `json:"url"`
	Email string `json:"email"`
}

type ScreenshotPayload struct {
	ID            *uint   `json:"id"`
	PathThumbnail *string `json:"path_thumbnail"`
	PathFull      *string `json:"path_full"`
}

type VideoSourcesPayload struct {
	P480 *string `json:"480"`
	Max  *string `json:"max"`
}

type MoviePayload struct {
	ID        *uint                `json:"id"`
	Name      *string              `json:"name"`
	Thumbnail *string              `json:"thumbnail"`
	Webm      *VideoSourcesPayload `json:"webm"`
	Mp4       *VideoSourcesPayload `json:"mp4"`
	Highlight bool                 `json:"highlight"`
}

// RequirementsPayload is either an object or, for apps without requirements,
// an empty JSON array. The array form unmarshals to the zero value.
type RequirementsPayload struct {
	Minimum     *string
	Recommended *string
}

func (r *RequirementsPayload) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '[' || string(data) == "null" {
		return nil
	}
	var raw struct {
		Minimum     *string `json:"minimum"`
		Recommended *string `json:"recommended"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Minimum = raw.Minimum
	r.Recommended = raw.Recommended
	return nil
}

type CategoryPayload struct {
	ID          *uint  `json:"id"`
	Description string `json:"description"`
}

type GenrePayload struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type PriceOverviewPayload struct {
	Currency         *string `json:"currency"`
	Initial          *int64  `json:"initial"`
	Final            *int64  `json:"final"`
	DiscountPercent  int     `json:"discount_percent"`
	InitialFormatted *string `json:"initial_formatted"`
	FinalFormatted   *string `json:"final_formatted"`
}

type DemoPayload struct {
	Appid       *uint   `json:"appid"`
	Description *string `json:"description"`
}

type PackageGroupSubPayload struct {
	Packageid                *uint   `json:"packageid"`
	PercentSavingsText       *string `json:"percent_savings_text"`
	PercentSavings           int     `json:"percent_savings"`
	OptionText               *string `json:"option_text"`
	OptionDescription        *string `json:"option_description"`
	CanGetFreeLicense        *string `json:"can_get_free_license"`
	IsFreeLicense            bool    `json:"is_free_license"`
	PriceInCentsWithDiscount *int64  `json:"price_in_cents_with_discount"`
}

type PackageGroupPayload struct {
	Name                    string                   `json:"name"`
	Title                   *string                  `json:"title"`
	Description             *string                  `json:"description"`
	SelectionText           *string                  `json:"selection_text"`
	SaveText                *string                  `json:"save_text"`
	DisplayType             FlexInt                  `json:"display_type"`
	IsRecurringSubscription *string                  `json:"is_recurring_subscription"`
	Subs                    []PackageGroupSubPayload `json:"subs"`
}

type MetacriticPayload struct {
	Score int    `json:"score"`
	URL   string `json:"url"`
}

type RecommendationsPayload struct {
	Total int64 `json:"total"`
}

type AchievementHighlightPayload struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type AchievementsPayload struct {
	Total       int                           `json:"total"`
	Highlighted []AchievementHighlightPayload `json:"highlighted"`
}

type ContentDescriptorsPayload struct {
	IDs   []uint  `json:"ids"`
	Notes *string `json:"notes"`
}

type RatingPayload struct {
	Rating              *string `json:"rating"`
	Descriptors         *string `json:"descriptors"`
	DisplayOnlineNotice *string `json:"display_online_notice"`
	RequiredAge         *string `json:"required_age"`
	UseAgeGate          *string `json:"use_age_gate"`
	Banned              *string `json:"banned"`
	RatingGenerated     *string `json:"rating_generated"`
}

// AppDetailsPayload is the typed form of the appdetails "data" object.
// Optional keys are pointers (or nil-able slices/maps): a nil collection
// means the key was absent from the payload, an empty one means it was
// present and empty. The reconcilers rely on that distinction.
type AppDetailsPayload struct {
	Type                *string  `json:"type"`
	Name                string   `json:"name"`
	SteamAppid          uint     `json:"steam_appid"`
	RequiredAge         FlexInt  `json:"required_age"`
	IsFree              bool     `json:"is_free"`
	ControllerSupport   *string  `json:"controller_support"`
	DLC                 []uint   `json:"dlc"`
	DetailedDescription *string  `json:"detailed_description"`
	AboutTheGame        *string  `json:"about_the_game"`
	ShortDescription    *string  `json:"short_description"`
	SupportedLanguages  *string  `json:"supported_languages"`
	HeaderImage         *string  `json:"header_image"`
	CapsuleImage        *string  `json:"capsule_image"`
	CapsuleImagev5      *string  `json:"capsule_imagev5"`
	Website             *string  `json:"website"`
	LegalNotice         *string  `json:"legal_notice"`
	DRMNotice           *string  `json:"drm_notice"`

	PCRequirements    *RequirementsPayload `json:"pc_requirements"`
	MacRequirements   *RequirementsPayload `json:"mac_requirements"`
	LinuxRequirements *RequirementsPayload `json:"linux_requirements"`

	Demos         []DemoPayload         `json:"demos"`
	Packages      []uint                `json:"packages"`
	PackageGroups []PackageGroupPayload `json:"package_groups"`

	Platforms       PlatformsPayload        `json:"platforms"`
	Metacritic      *MetacriticPayload      `json:"metacritic"`
	Recommendations *RecommendationsPayload `json:"recommendations"`
	Achievements    *AchievementsPayload    `json:"achievements"`

	Categories  []CategoryPayload   `json:"categories"`
	Genres      []GenrePayload      `json:"genres"`
	Developers  []string            `json:"developers"`
	Publishers  []string            `json:"publishers"`
	Screenshots []ScreenshotPayload `json:"screenshots"`
	Movies      []MoviePayload      `json:"movies"`

	PriceOverview *PriceOverviewPayload `json:"price_overview"`

	Background    *string `json:"background"`
	BackgroundRaw *string `json:"background_raw"`

	ContentDescriptors *ContentDescriptorsPayload `json:"content_descriptors"`
	Ratings            map[string]RatingPayload   `json:"ratings"`

	ReleaseDate *ReleaseDatePayload `json:"release_date"`
	SupportInfo *SupportInfoPayload `json:"support_info"`
}

type NewsItemPayload struct {
	Gid           string   `json:"gid"`
	Title         string   `json:"title"`
	URL           *string  `json:"url"`
	IsExternalURL bool     `json:"is_external_url"`
	Author        *string  `json:"author"`
	Contents      *string  `json:"contents"`
	Feedlabel     *string  `json:"feedlabel"`
	Date          *int64   `json:"date"`
	Feedname      *string  `json:"feedname"`
	FeedType      int      `json:"feed_type"`
	Tags          []string `json:"tags"`
}

// WorkshopListingItem is one entry of the paginated QueryFiles response.
type WorkshopListingItem struct {
	PublishedFileID  string  `json:"publishedfileid"`
	Result           *int    `json:"result"` // 1 = success
	Title            *string `json:"title"`
	ShortDescription *string `json:"short_description"`
	PreviewURL       *string `json:"preview_url"`
	Views            *int64  `json:"views"`
	Subscriptions    *int64  `json:"subscriptions"`
	Favorited        *int64  `json:"favorited"`
	TimeCreated      *int64  `json:"time_created"`
	TimeUpdated      *int64  `json:"time_updated"`
}

// WorkshopListingPage carries one page of listing results and the cursor of
// the following page.
type WorkshopListingPage struct {
	Items      []WorkshopListingItem
	NextCursor string
	Total      int
}

type WorkshopTagPayload struct {
	Tag string `json:"tag"`
}

// WorkshopDetailItem is one entry of the batch GetPublishedFileDetails
// response.
type WorkshopDetailItem struct {
	PublishedFileID   string               `json:"publishedfileid"`
	Result            *int                 `json:"result"`
	Creator           *string              `json:"creator"`
	Title             *string              `json:"title"`
	Description       *string              `json:"description"`
	Filename          *string              `json:"filename"`
	FileSize          FlexInt              `json:"file_size"`
	FileURL           *string              `json:"file_url"`
	PreviewURL        *string              `json:"preview_url"`
	Banned            bool                 `json:"banned"`
	Views             *int64               `json:"views"`
	Subscriptions     *int64               `json:"subscriptions"`
	Favorited         *int64               `json:"favorited"`
	NumCommentsPublic *int64               `json:"num_comments_public"`
	Tags              []WorkshopTagPayload `json:"tags"`
}
