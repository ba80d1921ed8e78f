// ABOUTME: Data models for the LTV audience sync backend
// ABOUTME: Defines SyncConfig, SyncRun, NormalizationStats, SyncStatus, HistoryPage and request/response envelopes
package models

// Run status constants.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusWarning = "warning"
	RunStatusFailed  = "failed"
)

// BucketCount is the fixed number of decile buckets in a distribution.
const BucketCount = 10

type SyncConfig struct {
	ID              int64  `json:"id"`
	LTVFieldKey     string `json:"ghl_ltv_field_key"`
	LTVFieldName    string `json:"ghl_ltv_field_name"`
	MetaAdAccountID string `json:"meta_ad_account_id"`
	SyncEnabled     bool   `json:"sync_enabled"`
}

// ConfigEnvelope is the response of GET /api/config. Config is nil until the
// operator saves a field mapping for the first time.
type ConfigEnvelope struct {
	Config          *SyncConfig `json:"config"`
	MetaAdAccountID string      `json:"meta_ad_account_id"`
	LocationName    string      `json:"ghl_location_name"`
	SMTPFrom        string      `json:"smtp_from"`
	SMTPTo          string      `json:"smtp_to"`
}

// ConfigPayload is the body of POST /api/config.
type ConfigPayload struct {
	LTVFieldKey  string `json:"ghl_ltv_field_key"`
	LTVFieldName string `json:"ghl_ltv_field_name"`
}

type CustomField struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FieldKey string `json:"fieldKey,omitempty"`
}

// Key returns the value the backend expects as ghl_ltv_field_key.
func (f CustomField) Key() string {
	if f.FieldKey != "" {
		return f.FieldKey
	}
	return f.ID
}

type NormalizationStats struct {
	MinLTV       float64 `json:"min_ltv"`
	MaxLTV       float64 `json:"max_ltv"`
	MedianLTV    float64 `json:"median_ltv"`
	MeanLTV      float64 `json:"mean_ltv"`
	Count        int     `json:"count"`
	Distribution []int   `json:"distribution"`
}

// DistributionSum adds up the bucket counts.
func (s *NormalizationStats) DistributionSum() int {
	total := 0
	for _, n := range s.Distribution {
		total += n
	}
	return total
}

type SyncRun struct {
	ID                 int64               `json:"id"`
	ConfigID           int64               `json:"config_id"`
	StartedAt          *Timestamp          `json:"started_at"`
	CompletedAt        *Timestamp          `json:"completed_at"`
	Status             string              `json:"status"`
	ContactsProcessed  int                 `json:"contacts_processed"`
	ContactsMatched    int                 `json:"contacts_matched"`
	MetaAudienceID     *string             `json:"meta_audience_id"`
	MetaAudienceName   *string             `json:"meta_audience_name"`
	MetaLookalikeID    *string             `json:"meta_lookalike_id"`
	MetaLookalikeName  *string             `json:"meta_lookalike_name"`
	ErrorMessage       *string             `json:"error_message"`
	NormalizationStats *NormalizationStats `json:"normalization_stats"`
	DurationSeconds    *float64            `json:"duration_seconds"`
}

// IsTerminal reports whether the run has left the running state.
func (r *SyncRun) IsTerminal() bool {
	return r.Status != RunStatusRunning
}

type ContactSample struct {
	ContactID       string  `json:"ghl_contact_id"`
	Email           *string `json:"email"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	RawLTV          float64 `json:"raw_ltv"`
	NormalizedValue int     `json:"normalized_value"`
}

// SyncRunDetail is a run plus up to ten sampled contacts.
type SyncRunDetail struct {
	SyncRun
	ContactSamples []ContactSample `json:"contact_samples"`
}

type SyncStatus struct {
	IsRunning     bool     `json:"is_running"`
	RunningSyncID *int64   `json:"running_sync_id"`
	LastRun       *SyncRun `json:"last_run"`
}

type HistoryPage struct {
	Runs       []SyncRun `json:"runs"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	TotalPages int       `json:"total_pages"`
}

type TriggerResult struct {
	Message  string `json:"message"`
	ConfigID int64  `json:"config_id"`
}

type EmailTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StringValue dereferences an optional string, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
