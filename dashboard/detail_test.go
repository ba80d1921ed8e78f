package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/ltvdash/api"
	"github.com/harperreed/ltvdash/models"
)

func detailFor(id int64) *models.SyncRunDetail {
	return &models.SyncRunDetail{SyncRun: models.SyncRun{ID: id, Status: models.RunStatusSuccess}}
}

func TestDetail_OpenLoadsRun(t *testing.T) {
	h := newHarness(t)
	h.backend.runs[12] = detailFor(12)

	cmd := h.ctrl.OpenDetail(12)
	assert.Equal(t, DetailLoading, h.ctrl.Detail().State())
	h.run(cmd)

	d := h.ctrl.Detail()
	assert.Equal(t, DetailLoaded, d.State())
	require.NotNil(t, d.Detail())
	assert.Equal(t, int64(12), d.Detail().ID)
}

func TestDetail_SupersededRunNeverShown(t *testing.T) {
	h := newHarness(t)
	h.backend.runs[1] = detailFor(1)
	h.backend.runs[2] = detailFor(2)

	first := h.ctrl.OpenDetail(1)()
	second := h.ctrl.OpenDetail(2)()

	h.ctrl.Update(second)
	h.ctrl.Update(first)

	d := h.ctrl.Detail()
	assert.Equal(t, DetailLoaded, d.State())
	assert.Equal(t, int64(2), d.RunID())
	assert.Equal(t, int64(2), d.Detail().ID)
}

func TestDetail_LateResponseForPreviousRunIgnoredWhileLoading(t *testing.T) {
	h := newHarness(t)
	h.backend.runs[1] = detailFor(1)
	h.backend.runs[2] = detailFor(2)

	first := h.ctrl.OpenDetail(1)()
	_ = h.ctrl.OpenDetail(2)

	h.ctrl.Update(first)

	d := h.ctrl.Detail()
	assert.Equal(t, DetailLoading, d.State())
	assert.Nil(t, d.Detail())
}

func TestDetail_CloseDropsInFlightResponse(t *testing.T) {
	h := newHarness(t)
	h.backend.runs[3] = detailFor(3)

	pending := h.ctrl.OpenDetail(3)()
	h.ctrl.CloseDetail()
	h.ctrl.Update(pending)

	d := h.ctrl.Detail()
	assert.Equal(t, DetailClosed, d.State())
	assert.False(t, d.IsOpen())
	assert.Nil(t, d.Detail())
}

func TestDetail_FailureThenReopenResets(t *testing.T) {
	h := newHarness(t)

	h.run(h.ctrl.OpenDetail(99))
	d := h.ctrl.Detail()
	assert.Equal(t, DetailFailed, d.State())
	assert.Equal(t, "Sync run not found", api.Detail(d.Err()))

	h.backend.runs[4] = detailFor(4)
	cmd := h.ctrl.OpenDetail(4)
	assert.Equal(t, DetailLoading, d.State())
	assert.NoError(t, d.Err())
	h.run(cmd)
	assert.Equal(t, DetailLoaded, d.State())
}

func TestDetail_IndependentOfHistoryAndPolling(t *testing.T) {
	h := newHarness(t)
	h.backend.runs[8] = detailFor(8)

	h.run(h.ctrl.Init())
	statusCalls := len(h.backend.statusAt)
	historyCalls := len(h.backend.historyReqs)

	h.run(h.ctrl.OpenDetail(8))

	assert.Len(t, h.backend.statusAt, statusCalls)
	assert.Len(t, h.backend.historyReqs, historyCalls)
}
