// ABOUTME: Sync MCP tool handlers
// ABOUTME: Implements get_sync_status, get_sync_history, get_sync_run, trigger_sync and get_config over the backend API
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/ltvdash/api"
	"github.com/harperreed/ltvdash/metrics"
	"github.com/harperreed/ltvdash/models"
)

// Backend is the part of the REST API the tools read and drive.
type Backend interface {
	GetStatus(ctx context.Context) (*models.SyncStatus, error)
	GetHistory(ctx context.Context, page int) (*models.HistoryPage, error)
	GetRun(ctx context.Context, id int64) (*models.SyncRunDetail, error)
	GetConfig(ctx context.Context) (*models.ConfigEnvelope, error)
	TriggerSync(ctx context.Context) (*models.TriggerResult, error)
}

type SyncHandlers struct {
	backend Backend
}

func NewSyncHandlers(backend Backend) *SyncHandlers {
	return &SyncHandlers{backend: backend}
}

type RunOutput struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	StartedAt         string `json:"started_at"`
	CompletedAt       string `json:"completed_at,omitempty"`
	Duration          string `json:"duration"`
	ContactsProcessed int    `json:"contacts_processed"`
	ContactsMatched   int    `json:"contacts_matched"`
	MatchRate         string `json:"match_rate"`
	AudienceName      string `json:"audience_name,omitempty"`
	AudienceID        string `json:"audience_id,omitempty"`
	LookalikeName     string `json:"lookalike_name,omitempty"`
	LookalikeID       string `json:"lookalike_id,omitempty"`
	ErrorMessage      string `json:"error_message,omitempty"`
	Stats             *Stats `json:"normalization_stats,omitempty"`
}

type Stats struct {
	MinLTV       float64 `json:"min_ltv"`
	MaxLTV       float64 `json:"max_ltv"`
	MedianLTV    float64 `json:"median_ltv"`
	MeanLTV      float64 `json:"mean_ltv"`
	Count        int     `json:"count"`
	Distribution []int   `json:"distribution"`
}

type SampleOutput struct {
	ContactID       string  `json:"contact_id"`
	Email           string  `json:"email,omitempty"`
	Name            string  `json:"name,omitempty"`
	RawLTV          float64 `json:"raw_ltv"`
	NormalizedValue int     `json:"normalized_value"`
}

type GetSyncStatusInput struct{}

type SyncStatusOutput struct {
	IsRunning     bool       `json:"is_running"`
	RunningSyncID int64      `json:"running_sync_id,omitempty"`
	LastRun       *RunOutput `json:"last_run,omitempty"`
}

func (h *SyncHandlers) GetSyncStatus(ctx context.Context, request *mcp.CallToolRequest, input GetSyncStatusInput) (*mcp.CallToolResult, SyncStatusOutput, error) {
	status, err := h.backend.GetStatus(ctx)
	if err != nil {
		return nil, SyncStatusOutput{}, fmt.Errorf("failed to get sync status: %w", err)
	}

	out := SyncStatusOutput{IsRunning: status.IsRunning}
	if status.RunningSyncID != nil {
		out.RunningSyncID = *status.RunningSyncID
	}
	if status.LastRun != nil {
		run := runToOutput(status.LastRun)
		out.LastRun = &run
	}
	return nil, out, nil
}

type GetSyncHistoryInput struct {
	Page int `json:"page,omitempty" jsonschema:"History page, 1-indexed (default 1)"`
}

type SyncHistoryOutput struct {
	Runs       []RunOutput `json:"runs"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	Total      int         `json:"total"`
}

func (h *SyncHandlers) GetSyncHistory(ctx context.Context, request *mcp.CallToolRequest, input GetSyncHistoryInput) (*mcp.CallToolResult, SyncHistoryOutput, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}

	history, err := h.backend.GetHistory(ctx, page)
	if err != nil {
		return nil, SyncHistoryOutput{}, fmt.Errorf("failed to get sync history: %w", err)
	}

	runs := make([]RunOutput, len(history.Runs))
	for i := range history.Runs {
		runs[i] = runToOutput(&history.Runs[i])
	}
	return nil, SyncHistoryOutput{
		Runs:       runs,
		Page:       history.Page,
		TotalPages: history.TotalPages,
		Total:      history.Total,
	}, nil
}

type GetSyncRunInput struct {
	ID int64 `json:"id" jsonschema:"Sync run ID (required)"`
}

type SyncRunOutput struct {
	Run     RunOutput      `json:"run"`
	Samples []SampleOutput `json:"contact_samples"`
}

func (h *SyncHandlers) GetSyncRun(ctx context.Context, request *mcp.CallToolRequest, input GetSyncRunInput) (*mcp.CallToolResult, SyncRunOutput, error) {
	if input.ID <= 0 {
		return nil, SyncRunOutput{}, fmt.Errorf("id is required")
	}

	detail, err := h.backend.GetRun(ctx, input.ID)
	if err != nil {
		return nil, SyncRunOutput{}, fmt.Errorf("failed to get sync run %d: %w", input.ID, err)
	}

	samples := make([]SampleOutput, len(detail.ContactSamples))
	for i, c := range detail.ContactSamples {
		name := models.StringValue(c.FirstName)
		if last := models.StringValue(c.LastName); last != "" {
			if name != "" {
				name += " "
			}
			name += last
		}
		samples[i] = SampleOutput{
			ContactID:       c.ContactID,
			Email:           models.StringValue(c.Email),
			Name:            name,
			RawLTV:          c.RawLTV,
			NormalizedValue: c.NormalizedValue,
		}
	}
	return nil, SyncRunOutput{Run: runToOutput(&detail.SyncRun), Samples: samples}, nil
}

type TriggerSyncInput struct{}

type TriggerSyncOutput struct {
	Message  string `json:"message"`
	ConfigID int64  `json:"config_id"`
}

func (h *SyncHandlers) TriggerSync(ctx context.Context, request *mcp.CallToolRequest, input TriggerSyncInput) (*mcp.CallToolResult, TriggerSyncOutput, error) {
	result, err := h.backend.TriggerSync(ctx)
	if err != nil {
		// Surface the backend detail verbatim.
		return nil, TriggerSyncOutput{}, fmt.Errorf("failed to trigger sync: %s", api.Detail(err))
	}
	return nil, TriggerSyncOutput{Message: result.Message, ConfigID: result.ConfigID}, nil
}

type GetConfigInput struct{}

type ConfigOutput struct {
	Configured      bool   `json:"configured"`
	LTVFieldKey     string `json:"ltv_field_key,omitempty"`
	LTVFieldName    string `json:"ltv_field_name,omitempty"`
	SyncEnabled     bool   `json:"sync_enabled"`
	MetaAdAccountID string `json:"meta_ad_account_id,omitempty"`
	LocationName    string `json:"location_name,omitempty"`
	SMTPFrom        string `json:"smtp_from,omitempty"`
	SMTPTo          string `json:"smtp_to,omitempty"`
}

func (h *SyncHandlers) GetConfig(ctx context.Context, request *mcp.CallToolRequest, input GetConfigInput) (*mcp.CallToolResult, ConfigOutput, error) {
	env, err := h.backend.GetConfig(ctx)
	if err != nil {
		return nil, ConfigOutput{}, fmt.Errorf("failed to get config: %w", err)
	}

	out := ConfigOutput{
		MetaAdAccountID: env.MetaAdAccountID,
		LocationName:    env.LocationName,
		SMTPFrom:        env.SMTPFrom,
		SMTPTo:          env.SMTPTo,
	}
	if env.Config != nil {
		out.Configured = true
		out.LTVFieldKey = env.Config.LTVFieldKey
		out.LTVFieldName = env.Config.LTVFieldName
		out.SyncEnabled = env.Config.SyncEnabled
	}
	return nil, out, nil
}

func runToOutput(run *models.SyncRun) RunOutput {
	out := RunOutput{
		ID:                run.ID,
		Status:            run.Status,
		StartedAt:         metrics.FormatTimestamp(run.StartedAt),
		Duration:          metrics.FormatDuration(run.DurationSeconds),
		ContactsProcessed: run.ContactsProcessed,
		ContactsMatched:   run.ContactsMatched,
		MatchRate:         metrics.RunMatchRate(run),
		AudienceName:      models.StringValue(run.MetaAudienceName),
		AudienceID:        models.StringValue(run.MetaAudienceID),
		LookalikeName:     models.StringValue(run.MetaLookalikeName),
		LookalikeID:       models.StringValue(run.MetaLookalikeID),
		ErrorMessage:      models.StringValue(run.ErrorMessage),
	}
	if run.CompletedAt != nil {
		out.CompletedAt = metrics.FormatTimestamp(run.CompletedAt)
	}
	if s := run.NormalizationStats; s != nil {
		out.Stats = &Stats{
			MinLTV:       s.MinLTV,
			MaxLTV:       s.MaxLTV,
			MedianLTV:    s.MedianLTV,
			MeanLTV:      s.MeanLTV,
			Count:        s.Count,
			Distribution: append([]int{}, s.Distribution...),
		}
	}
	return out
}
