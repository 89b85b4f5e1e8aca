package steam

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIntTolerantDecoding(t *testing.T) {
	var payload struct {
		Age FlexInt `json:"required_age"`
	}

	cases := map[string]int{
		`{"required_age": 18}`:    18,
		`{"required_age": "18"}`:  18,
		`{"required_age": "17+"}`: 17,
		`{"required_age": ""}`:    0,
		`{"required_age": null}`:  0,
	}
	for raw, want := range cases {
		payload.Age = 0
		require.NoError(t, json.Unmarshal([]byte(raw), &payload), raw)
		assert.Equal(t, want, payload.Age.Int(), raw)
	}
}

func TestRequirementsDecodeObjectAndEmptyArray(t *testing.T) {
	// Steam returns an object normally and an empty array for apps without
	// requirements; both forms must decode, and both count as "present".
	var payload AppDetailsPayload
	raw := `{
		"name": "Test",
		"pc_requirements": {"minimum": "<b>OS:</b> Windows 10", "recommended": "<b>OS:</b> Windows 11"},
		"mac_requirements": []
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	require.NotNil(t, payload.PCRequirements)
	require.NotNil(t, payload.PCRequirements.Minimum)
	assert.Contains(t, *payload.PCRequirements.Minimum, "Windows 10")

	require.NotNil(t, payload.MacRequirements)
	assert.Nil(t, payload.MacRequirements.Minimum)

	assert.Nil(t, payload.LinuxRequirements, "absent key stays nil")
}

func TestAppDetailsNilVersusEmptyCollections(t *testing.T) {
	var payload AppDetailsPayload
	raw := `{"name": "Test", "screenshots": [], "dlc": [1, 2]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	assert.NotNil(t, payload.Screenshots, "present-but-empty must stay distinguishable")
	assert.Empty(t, payload.Screenshots)
	assert.Equal(t, []uint{1, 2}, payload.DLC)
	assert.Nil(t, payload.Movies, "absent key decodes to nil")
}

func TestMovieVideoSourceKeys(t *testing.T) {
	var payload MoviePayload
	raw := `{"id": 7, "webm": {"480": "http://cdn/480.webm", "max": "http://cdn/max.webm"}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	require.NotNil(t, payload.Webm)
	require.NotNil(t, payload.Webm.P480)
	assert.Equal(t, "http://cdn/480.webm", *payload.Webm.P480)
	assert.Nil(t, payload.Mp4)
}
