package services

import (
	"time"

	"steam-catalog/internal/config"
)

// releaseAge buckets drive how often details are refreshed: new and upcoming
// titles churn, old ones barely move.
type releaseAge int

const (
	releaseAgeRecent releaseAge = iota
	releaseAgeMid
	releaseAgeOld
)

func classifyReleaseAge(releaseDate *time.Time, now time.Time, policy config.RefreshPolicy) releaseAge {
	// Unknown and future release dates are treated as recent.
	if releaseDate == nil || releaseDate.After(now) {
		return releaseAgeRecent
	}

	if now.Before(releaseDate.AddDate(0, policy.RecentMonths, 0)) {
		return releaseAgeRecent
	}
	if now.Before(releaseDate.AddDate(policy.MidMaxYears, 0, 0)) {
		return releaseAgeMid
	}
	return releaseAgeOld
}

// ShouldRefreshDetails reports whether an app's details are stale enough to
// warrant a re-fetch. Pure: no clock, no database.
//
// Rules: never fetched means due; otherwise the days since the last refresh
// must strictly exceed the interval of the release-age bucket (exactly on the
// boundary is not due yet).
func ShouldRefreshDetails(lastUpdate, releaseDate *time.Time, now time.Time, policy config.RefreshPolicy) bool {
	if lastUpdate == nil {
		return true
	}

	var intervalDays int
	switch classifyReleaseAge(releaseDate, now, policy) {
	case releaseAgeRecent:
		intervalDays = policy.RecentDays
	case releaseAgeMid:
		intervalDays = policy.MidDays
	default:
		intervalDays = policy.OldDays
	}

	elapsedDays := int(now.Sub(*lastUpdate).Hours() / 24)
	return elapsedDays > intervalDays
}
