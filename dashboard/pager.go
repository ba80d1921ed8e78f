package dashboard

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/harperreed/ltvdash/models"
)

// HistoryMsg carries the result of one history page fetch.
type HistoryMsg struct {
	seq  uint64
	Page int
	Data *models.HistoryPage
	Err  error
}

// Pager holds the page of sync history currently in view. Page number, runs
// and page metadata are replaced together from one response; responses to
// superseded requests are dropped.
type Pager struct {
	source HistorySource
	seq    *Sequencer
	call   caller
	logger *log.Logger

	page       int // page in view, 0 before the first load
	want       int // most recently requested page
	totalPages int
	total      int
	perPage    int
	runs       []models.SyncRun

	loaded  bool
	loading bool
	err     error
}

func NewPager(source HistorySource, seq *Sequencer, call caller, logger *log.Logger) *Pager {
	return &Pager{
		source: source,
		seq:    seq,
		call:   call,
		logger: logger,
		want:   1,
	}
}

// SetPage requests page n (1-indexed). Earlier in-flight requests lose.
func (p *Pager) SetPage(n int) tea.Cmd {
	if n < 1 {
		n = 1
	}
	p.want = n
	p.loading = true

	seq := p.seq.Next(keyHistory)
	source := p.source
	return p.call.cmd(func(ctx context.Context) tea.Msg {
		data, err := source.GetHistory(ctx, n)
		return HistoryMsg{seq: seq, Page: n, Data: data, Err: err}
	})
}

// Reload re-fetches the most recently requested page.
func (p *Pager) Reload() tea.Cmd {
	return p.SetPage(p.want)
}

// Next requests the page after the one in view, if there is one.
func (p *Pager) Next() tea.Cmd {
	if !p.HasNext() {
		return nil
	}
	return p.SetPage(p.page + 1)
}

// Prev requests the page before the one in view, if there is one.
func (p *Pager) Prev() tea.Cmd {
	if !p.HasPrev() {
		return nil
	}
	return p.SetPage(p.page - 1)
}

// HandleHistory applies a page response. It reports whether the response
// was current; stale responses change nothing.
func (p *Pager) HandleHistory(msg HistoryMsg) bool {
	if !p.seq.IsLatest(keyHistory, msg.seq) {
		p.logger.Debug("discarding superseded history page", "page", msg.Page)
		return false
	}
	p.loading = false

	if msg.Err != nil || msg.Data == nil {
		p.err = msg.Err
		if p.err == nil {
			p.err = fmt.Errorf("history page %d: empty response", msg.Page)
		}
		p.logger.Warn("history load failed", "page", msg.Page, "err", msg.Err)
		return true
	}

	data := msg.Data
	page := data.Page
	if page < 1 {
		page = msg.Page
	}
	runs := data.Runs
	if runs == nil {
		runs = []models.SyncRun{}
	}

	p.page = page
	p.runs = runs
	p.totalPages = data.TotalPages
	p.total = data.Total
	p.perPage = data.PerPage
	p.loaded = true
	p.err = nil
	return true
}

func (p *Pager) Page() int              { return p.page }
func (p *Pager) TotalPages() int        { return p.totalPages }
func (p *Pager) Total() int             { return p.total }
func (p *Pager) PerPage() int           { return p.perPage }
func (p *Pager) Runs() []models.SyncRun { return p.runs }
func (p *Pager) Loaded() bool           { return p.loaded }
func (p *Pager) Loading() bool          { return p.loading }
func (p *Pager) Err() error             { return p.err }

// HasPrev reports whether a "previous" control should be enabled.
func (p *Pager) HasPrev() bool {
	return p.page > 1
}

// HasNext reports whether a "next" control should be enabled.
func (p *Pager) HasNext() bool {
	return p.page >= 1 && p.page < p.totalPages
}

// LatestSuccess returns the most recent run on this page with status
// success, or nil. Runs are ordered most recent first.
func (p *Pager) LatestSuccess() *models.SyncRun {
	for i := range p.runs {
		if p.runs[i].Status == models.RunStatusSuccess {
			return &p.runs[i]
		}
	}
	return nil
}

// Run returns the run at index i of the page in view.
func (p *Pager) Run(i int) (*models.SyncRun, bool) {
	if i < 0 || i >= len(p.runs) {
		return nil, false
	}
	return &p.runs[i], true
}
