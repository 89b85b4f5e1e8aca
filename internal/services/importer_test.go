package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steam-catalog/internal/config"
	"steam-catalog/internal/jobs"
	"steam-catalog/internal/models"
	"steam-catalog/internal/services/steam"
)

type recordingDispatcher struct {
	dispatched []jobs.Job
	err        error
}

func (d *recordingDispatcher) Dispatch(j jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	d.dispatched = append(d.dispatched, j)
	return nil
}

func TestImporterPass(t *testing.T) {
	db := openTestDB(t)
	policy := config.DefaultRefreshPolicy()

	// Appid 2 exists with a fresh refresh timestamp; appid 3 exists under an
	// old name; appid 1 is new; appid 4 is delisted (empty name).
	fresh := time.Now().Add(-time.Hour)
	require.NoError(t, db.Create(&models.SteamApp{Appid: 2, Name: "Fresh App", LastDetailsUpdate: &fresh}).Error)
	require.NoError(t, db.Create(&models.SteamApp{Appid: 3, Name: "Old Name"}).Error)

	gw := &fakeGateway{appList: []steam.AppListEntry{
		{Appid: 1, Name: "Brand New"},
		{Appid: 2, Name: "Fresh App"},
		{Appid: 3, Name: "New Name"},
		{Appid: 4, Name: ""},
	}}
	dispatcher := &recordingDispatcher{}
	importer := NewImporter(db, gw, dispatcher, policy, false)

	result, err := importer.Import(context.Background())
	require.NoError(t, err)

	// Both existing apps count as updated, the rename and the no-op alike;
	// only the nameless entry is skipped.
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 1, result.Skipped)

	var renamed models.SteamApp
	require.NoError(t, db.Where("appid = ?", 3).First(&renamed).Error)
	assert.Equal(t, "New Name", renamed.Name)

	// Nameless entries never become rows.
	var count int64
	require.NoError(t, db.Model(&models.SteamApp{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	// Only the never-fetched apps are due: 1 and 3. Appid 2 was refreshed an
	// hour ago and stays untouched.
	require.Len(t, dispatcher.dispatched, 2)
	dueAppids := map[uint]bool{}
	for _, j := range dispatcher.dispatched {
		assert.Equal(t, jobs.KindDetails, j.Kind)
		dueAppids[j.Appid] = true
	}
	assert.True(t, dueAppids[1])
	assert.True(t, dueAppids[3])
}

func TestImporterDispatchesNewsWhenEnabled(t *testing.T) {
	db := openTestDB(t)

	gw := &fakeGateway{appList: []steam.AppListEntry{{Appid: 1, Name: "Brand New"}}}
	dispatcher := &recordingDispatcher{}
	importer := NewImporter(db, gw, dispatcher, config.DefaultRefreshPolicy(), true)

	_, err := importer.Import(context.Background())
	require.NoError(t, err)

	require.Len(t, dispatcher.dispatched, 2)
	kinds := map[jobs.Kind]bool{}
	for _, j := range dispatcher.dispatched {
		kinds[j.Kind] = true
	}
	assert.True(t, kinds[jobs.KindDetails])
	assert.True(t, kinds[jobs.KindNews])
}

func TestImporterIdempotentReplay(t *testing.T) {
	db := openTestDB(t)

	gw := &fakeGateway{appList: []steam.AppListEntry{{Appid: 1, Name: "Game"}, {Appid: 2, Name: "Other"}}}
	importer := NewImporter(db, gw, &recordingDispatcher{}, config.DefaultRefreshPolicy(), false)

	first, err := importer.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := importer.Import(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, 2, second.Updated)
	assert.Zero(t, second.Skipped)
}

func TestImporterSurfacesListError(t *testing.T) {
	db := openTestDB(t)

	gw := &fakeGateway{appListErr: assert.AnError}
	importer := NewImporter(db, gw, &recordingDispatcher{}, config.DefaultRefreshPolicy(), false)

	_, err := importer.Import(context.Background())
	require.Error(t, err)
}
