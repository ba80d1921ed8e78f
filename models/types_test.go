// ABOUTME: Tests for sync data models
// ABOUTME: Validates backend payload decoding, timestamp leniency, and helper methods
package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runningRunJSON = `{
	"id": 42,
	"config_id": 1,
	"started_at": "2025-03-01T10:15:30.123456",
	"completed_at": null,
	"status": "running",
	"contacts_processed": 0,
	"contacts_matched": 0,
	"meta_audience_id": null,
	"meta_audience_name": null,
	"meta_lookalike_id": null,
	"meta_lookalike_name": null,
	"error_message": null,
	"normalization_stats": null,
	"duration_seconds": null
}`

func TestSyncRun_DecodesRunningRun(t *testing.T) {
	var run SyncRun
	require.NoError(t, json.Unmarshal([]byte(runningRunJSON), &run))

	assert.Equal(t, int64(42), run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.False(t, run.IsTerminal())
	require.NotNil(t, run.StartedAt)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 15, 30, 123456000, time.UTC), run.StartedAt.Time)
	assert.Nil(t, run.CompletedAt)
	assert.Nil(t, run.DurationSeconds)
	assert.Nil(t, run.NormalizationStats)
}

func TestSyncRunDetail_DecodesSamples(t *testing.T) {
	payload := `{
		"id": 7,
		"status": "success",
		"started_at": "2025-03-01T10:00:00+00:00",
		"completed_at": "2025-03-01T10:02:05+00:00",
		"contacts_processed": 200,
		"contacts_matched": 150,
		"meta_audience_name": "LTV Audience",
		"duration_seconds": 125.0,
		"normalization_stats": {
			"min_ltv": 10, "max_ltv": 900, "median_ltv": 120, "mean_ltv": 180.5,
			"count": 200, "distribution": [20,20,20,20,20,20,20,20,20,20]
		},
		"contact_samples": [
			{"ghl_contact_id": "c1", "email": "a@example.com", "first_name": "Ada", "last_name": null, "raw_ltv": 99.5, "normalized_value": 42}
		]
	}`

	var detail SyncRunDetail
	require.NoError(t, json.Unmarshal([]byte(payload), &detail))

	assert.Equal(t, int64(7), detail.ID)
	assert.True(t, detail.IsTerminal())
	assert.Equal(t, "LTV Audience", StringValue(detail.MetaAudienceName))
	require.NotNil(t, detail.NormalizationStats)
	assert.Equal(t, 200, detail.NormalizationStats.DistributionSum())
	require.Len(t, detail.ContactSamples, 1)
	assert.Equal(t, "Ada", StringValue(detail.ContactSamples[0].FirstName))
	assert.Nil(t, detail.ContactSamples[0].LastName)
	assert.Equal(t, 42, detail.ContactSamples[0].NormalizedValue)
}

func TestTimestamp_RejectsGarbage(t *testing.T) {
	var ts Timestamp
	err := json.Unmarshal([]byte(`"yesterday"`), &ts)
	assert.Error(t, err)
}

func TestCustomField_Key(t *testing.T) {
	assert.Equal(t, "contact.ltv", CustomField{ID: "abc", FieldKey: "contact.ltv"}.Key())
	assert.Equal(t, "abc", CustomField{ID: "abc"}.Key())
}

func TestConfigEnvelope_NullConfig(t *testing.T) {
	payload := `{"config": null, "meta_ad_account_id": "act_1", "ghl_location_name": "Main St", "smtp_from": "", "smtp_to": ""}`

	var env ConfigEnvelope
	require.NoError(t, json.Unmarshal([]byte(payload), &env))

	assert.Nil(t, env.Config)
	assert.Equal(t, "act_1", env.MetaAdAccountID)
	assert.Equal(t, "Main St", env.LocationName)
}
