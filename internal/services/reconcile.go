package services

import (
	"fmt"

	"gorm.io/gorm"
)

// syncOptions parameterizes one reconciliation run of a nested collection.
// P is the fetched payload item, R the stored row, K the natural key.
type syncOptions[P any, R any, K comparable] struct {
	// OwnerColumn scopes stored rows to the owning record. Collections owned
	// by a SteamApp use "steam_app_id"; package group subs are owned by their
	// group instead.
	OwnerColumn string

	// KeyFromPayload extracts the natural key of a fetched item. ok=false
	// discards the item (required key field missing upstream).
	KeyFromPayload func(P) (K, bool)

	// KeyFromRow extracts the natural key of a stored row.
	KeyFromRow func(R) K

	// Assign maps all payload fields onto a new or existing row. For
	// soft-delete collections it must also clear the tombstone, so a key
	// that reappears after removal becomes active again.
	Assign func(*R, uint, P)

	// SoftDelete tombstones rows missing from the fetch instead of removing
	// them. Only screenshots and movies keep history this way.
	SoftDelete bool
}

// syncCollection converges the stored rows of one nested collection onto the
// freshly fetched list, so that afterwards stored rows and fetched items form
// a bijection on the natural key. An empty fetched list removes every stored
// row; it is not a no-op. Callers decide whether an absent payload key means
// "skip" and simply don't call.
//
// The routine is idempotent: replaying the same fetched list leaves the
// stored rows unchanged.
func syncCollection[P any, R any, K comparable](tx *gorm.DB, ownerID uint, fetched []P, opts syncOptions[P, R, K]) error {
	ownerCond := fmt.Sprintf("%s = ?", opts.OwnerColumn)

	// Deduplicate fetched items on the natural key, keeping the first
	// occurrence, and discard items missing the key.
	keys := make(map[K]struct{}, len(fetched))
	items := make([]P, 0, len(fetched))
	itemKeys := make([]K, 0, len(fetched))
	for _, item := range fetched {
		key, ok := opts.KeyFromPayload(item)
		if !ok {
			continue
		}
		if _, seen := keys[key]; seen {
			continue
		}
		keys[key] = struct{}{}
		items = append(items, item)
		itemKeys = append(itemKeys, key)
	}

	// Load every stored row for the owner, tombstoned ones included, so a
	// previously removed natural key can be reactivated instead of tripping
	// the unique index.
	var existing []R
	if err := tx.Unscoped().Where(ownerCond, ownerID).Find(&existing).Error; err != nil {
		return err
	}

	byKey := make(map[K]R, len(existing))
	for _, row := range existing {
		byKey[opts.KeyFromRow(row)] = row
	}

	// Remove stored rows whose key is absent from the fetch.
	for _, row := range existing {
		if _, keep := keys[opts.KeyFromRow(row)]; keep {
			continue
		}
		row := row
		if opts.SoftDelete {
			if err := tx.Delete(&row).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Unscoped().Delete(&row).Error; err != nil {
				return err
			}
		}
	}

	// Upsert each fetched item keyed by (owner, natural key).
	for i, item := range items {
		if row, ok := byKey[itemKeys[i]]; ok {
			opts.Assign(&row, ownerID, item)
			if err := tx.Unscoped().Save(&row).Error; err != nil {
				return err
			}
			continue
		}
		var row R
		opts.Assign(&row, ownerID, item)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	return nil
}

// replaceAssociation swaps the full many-to-many association set of an app
// in one step, dropping stale links and adding new ones.
func replaceAssociation(tx *gorm.DB, app interface{}, name string, values interface{}) error {
	return tx.Model(app).Association(name).Replace(values)
}
