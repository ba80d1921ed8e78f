package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/ltvdash/models"
)

func TestPager_LastRequestedPageWins(t *testing.T) {
	h := newHarness(t)
	h.backend.history = func(page int) (*models.HistoryPage, error) {
		return pageOf(page, 5, models.SyncRun{ID: int64(page * 100), Status: models.RunStatusSuccess}), nil
	}

	tests := []struct {
		name    string
		issue   []int
		arrival []int
		want    int
	}{
		{name: "issued 1,2,3 arriving 3,1,2", issue: []int{1, 2, 3}, arrival: []int{3, 1, 2}, want: 3},
		{name: "issued 1,3,2 arriving 3,1,2", issue: []int{1, 3, 2}, arrival: []int{3, 1, 2}, want: 2},
		{name: "issued 2,1 arriving 1,2", issue: []int{2, 1}, arrival: []int{1, 2}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := make(map[int]HistoryMsg)
			for _, page := range tt.issue {
				msg := h.ctrl.SetPage(page)()
				msgs[page] = msg.(HistoryMsg)
			}
			for _, page := range tt.arrival {
				h.ctrl.Update(msgs[page])
			}

			pager := h.ctrl.Pager()
			assert.Equal(t, tt.want, pager.Page())
			require.Len(t, pager.Runs(), 1)
			assert.Equal(t, int64(tt.want*100), pager.Runs()[0].ID, "runs must belong to the page in view")
			assert.Equal(t, 5, pager.TotalPages())
		})
	}
}

func TestPager_PrevNextScenario(t *testing.T) {
	h := newHarness(t)
	h.backend.history = func(page int) (*models.HistoryPage, error) {
		return pageOf(page, 3), nil
	}
	pager := h.ctrl.Pager()

	h.run(h.ctrl.SetPage(1))
	assert.Equal(t, 1, pager.Page())
	assert.False(t, pager.HasPrev())
	assert.True(t, pager.HasNext())
	assert.Nil(t, h.ctrl.PrevPage(), "prev is disabled on the first page")

	h.run(h.ctrl.NextPage())
	assert.Equal(t, 2, pager.Page())
	assert.True(t, pager.HasPrev())
	assert.True(t, pager.HasNext())

	h.run(h.ctrl.NextPage())
	assert.Equal(t, 3, pager.Page())
	assert.True(t, pager.HasPrev())
	assert.False(t, pager.HasNext())
	assert.Nil(t, h.ctrl.NextPage(), "next is disabled on the last page")

	h.run(h.ctrl.PrevPage())
	assert.Equal(t, 2, pager.Page())
	assert.Equal(t, []int{1, 2, 3, 2}, h.backend.historyReqs)
}

func TestPager_EmptyHistoryDisablesBoth(t *testing.T) {
	h := newHarness(t)
	h.backend.history = func(page int) (*models.HistoryPage, error) {
		return &models.HistoryPage{Page: 1, PerPage: 20}, nil
	}

	h.run(h.ctrl.SetPage(1))

	pager := h.ctrl.Pager()
	assert.True(t, pager.Loaded())
	assert.Empty(t, pager.Runs())
	assert.Equal(t, 0, pager.TotalPages())
	assert.False(t, pager.HasPrev())
	assert.False(t, pager.HasNext())
}

func TestPager_FailureKeepsPageInView(t *testing.T) {
	h := newHarness(t)
	h.backend.history = func(page int) (*models.HistoryPage, error) {
		if page == 2 {
			return nil, errBoom("history")
		}
		return pageOf(page, 3, models.SyncRun{ID: 7}), nil
	}

	h.run(h.ctrl.SetPage(1))
	h.run(h.ctrl.NextPage())

	pager := h.ctrl.Pager()
	assert.Error(t, pager.Err())
	assert.Equal(t, 1, pager.Page())
	require.Len(t, pager.Runs(), 1)
	assert.Equal(t, int64(7), pager.Runs()[0].ID)
	assert.False(t, pager.Loading())
}

func TestPager_ClampsPageBelowOne(t *testing.T) {
	h := newHarness(t)
	h.run(h.ctrl.SetPage(0))
	h.run(h.ctrl.SetPage(-4))
	assert.Equal(t, []int{1, 1}, h.backend.historyReqs)
}

func TestPager_ReloadTargetsLastRequestedPage(t *testing.T) {
	h := newHarness(t)
	h.backend.history = func(page int) (*models.HistoryPage, error) {
		return pageOf(page, 4), nil
	}

	h.run(h.ctrl.SetPage(3))
	h.run(h.ctrl.Pager().Reload())
	assert.Equal(t, []int{3, 3}, h.backend.historyReqs)
}

func TestPager_LatestSuccessSkipsOtherStatuses(t *testing.T) {
	h := newHarness(t)
	h.backend.history = func(page int) (*models.HistoryPage, error) {
		return pageOf(1, 1,
			models.SyncRun{ID: 5, Status: models.RunStatusRunning},
			models.SyncRun{ID: 4, Status: models.RunStatusWarning},
			models.SyncRun{ID: 3, Status: models.RunStatusSuccess},
			models.SyncRun{ID: 2, Status: models.RunStatusSuccess},
		), nil
	}

	h.run(h.ctrl.SetPage(1))

	run := h.ctrl.Pager().LatestSuccess()
	require.NotNil(t, run)
	assert.Equal(t, int64(3), run.ID)

	_, ok := h.ctrl.Pager().Run(10)
	assert.False(t, ok)
}
