package dashboard

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/harperreed/ltvdash/models"
)

// DetailState is the lifecycle of the detail view.
type DetailState int

const (
	DetailClosed DetailState = iota
	DetailLoading
	DetailLoaded
	DetailFailed
)

// DetailMsg carries the result of one run detail fetch.
type DetailMsg struct {
	seq    uint64
	RunID  int64
	Detail *models.SyncRunDetail
	Err    error
}

// DetailViewer fetches one run's full record on demand, independent of
// the history list and the poll cycle.
type DetailViewer struct {
	source RunSource
	seq    *Sequencer
	call   caller
	logger *log.Logger

	state  DetailState
	runID  int64
	detail *models.SyncRunDetail
	err    error
}

func NewDetailViewer(source RunSource, seq *Sequencer, call caller, logger *log.Logger) *DetailViewer {
	return &DetailViewer{source: source, seq: seq, call: call, logger: logger}
}

// Open resets the view to loading for id and fetches it. Any earlier fetch
// still in flight is superseded.
func (d *DetailViewer) Open(id int64) tea.Cmd {
	d.state = DetailLoading
	d.runID = id
	d.detail = nil
	d.err = nil

	seq := d.seq.Next(keyDetail)
	source := d.source
	return d.call.cmd(func(ctx context.Context) tea.Msg {
		detail, err := source.GetRun(ctx, id)
		return DetailMsg{seq: seq, RunID: id, Detail: detail, Err: err}
	})
}

// Close resets local state only; an in-flight fetch is left to finish and
// its response is dropped.
func (d *DetailViewer) Close() {
	d.seq.Invalidate(keyDetail)
	d.state = DetailClosed
	d.runID = 0
	d.detail = nil
	d.err = nil
}

// HandleDetail applies a detail response if it belongs to the run currently
// requested. It reports whether the response was applied.
func (d *DetailViewer) HandleDetail(msg DetailMsg) bool {
	if !d.seq.IsLatest(keyDetail, msg.seq) || d.state != DetailLoading || msg.RunID != d.runID {
		return false
	}

	if msg.Err != nil || msg.Detail == nil {
		d.state = DetailFailed
		d.err = msg.Err
		if d.err == nil {
			d.err = fmt.Errorf("run %d: empty response", msg.RunID)
		}
		d.logger.Warn("run detail load failed", "run_id", msg.RunID, "err", msg.Err)
		return true
	}

	d.state = DetailLoaded
	d.detail = msg.Detail
	return true
}

func (d *DetailViewer) State() DetailState            { return d.state }
func (d *DetailViewer) RunID() int64                  { return d.runID }
func (d *DetailViewer) Detail() *models.SyncRunDetail { return d.detail }
func (d *DetailViewer) Err() error                    { return d.err }
func (d *DetailViewer) IsOpen() bool                  { return d.state != DetailClosed }
