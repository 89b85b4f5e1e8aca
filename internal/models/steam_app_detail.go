package models

import "time"

// SteamAppDetail is the flat descriptive record from the store appdetails
// endpoint, at most one per SteamApp.
//
// ReleaseDate is nil whenever the upstream value is absent, a "coming soon"
// marker, or a placeholder string (TBA and friends). It never stores a
// sentinel date.
type SteamAppDetail struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	SteamAppID uint `json:"steam_app_id" gorm:"uniqueIndex;not null"`

	Type              *string `json:"type" gorm:"index"`
	Name              string  `json:"name" gorm:"not null"`
	RequiredAge       int     `json:"required_age" gorm:"default:0"`
	IsFree            bool    `json:"is_free" gorm:"default:false"`
	ControllerSupport *string `json:"controller_support"`

	DetailedDescription *string `json:"detailed_description" gorm:"type:longtext"`
	AboutTheGame        *string `json:"about_the_game" gorm:"type:longtext"`
	ShortDescription    *string `json:"short_description" gorm:"type:longtext"`
	SupportedLanguages  *string `json:"supported_languages" gorm:"type:longtext"`

	HeaderImage      *string `json:"header_image"`
	LibraryImage     *string `json:"library_image"`
	LibraryHeroImage *string `json:"library_hero_image"`
	CapsuleImage     *string `json:"capsule_image"`
	CapsuleImagev5   *string `json:"capsule_imagev5"`

	MetacriticScore      *int    `json:"metacritic_score"`
	MetacriticURL        *string `json:"metacritic_url"`
	RecommendationsTotal *int64  `json:"recommendations_total"`
	AchievementsTotal    *int    `json:"achievements_total"`

	Website     *string `json:"website"`
	LegalNotice *string `json:"legal_notice" gorm:"type:longtext"`
	DRMNotice   *string `json:"drm_notice" gorm:"type:longtext"`

	Windows bool `json:"windows" gorm:"default:false"`
	Mac     bool `json:"mac" gorm:"default:false"`
	Linux   bool `json:"linux" gorm:"default:false"`

	Background              *string `json:"background"`
	BackgroundRaw           *string `json:"background_raw"`
	ContentDescriptorsNotes *string `json:"content_descriptors_notes" gorm:"type:longtext"`

	ReleaseDate *time.Time `json:"release_date" gorm:"index"`
	ComingSoon  bool       `json:"coming_soon" gorm:"default:false"`

	SupportURL   *string `json:"support_url"`
	SupportEmail *string `json:"support_email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SteamAppDetail) TableName() string { return "steam_app_details" }

// SteamAppPriceInfo is the current price snapshot, overwritten wholesale on
// every details refresh.
type SteamAppPriceInfo struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	SteamAppID uint `json:"steam_app_id" gorm:"uniqueIndex;not null"`

	Currency         *string `json:"currency"`
	Initial          *int64  `json:"initial"`
	Final            *int64  `json:"final"`
	DiscountPercent  int     `json:"discount_percent" gorm:"default:0"`
	InitialFormatted *string `json:"initial_formatted"`
	FinalFormatted   *string `json:"final_formatted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SteamAppPriceInfo) TableName() string { return "steam_app_price_info" }
