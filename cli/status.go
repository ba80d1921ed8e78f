// ABOUTME: Read-only CLI commands for sync status and history
// ABOUTME: One-shot snapshot, history pages and single run detail printed as tables
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/ltvdash/api"
	"github.com/harperreed/ltvdash/dashboard"
	"github.com/harperreed/ltvdash/metrics"
	"github.com/harperreed/ltvdash/models"
)

// stdout is where commands print; tests swap it.
var stdout io.Writer = os.Stdout

// commandTimeout bounds a one-shot command's backend calls.
var commandTimeout = 30 * time.Second

type snapshot struct {
	config    *models.ConfigEnvelope
	configErr error
	status    *models.SyncStatus
	statusErr error
	history   *models.HistoryPage
	histErr   error
}

// loadSnapshot fetches config, status and the first history page in
// parallel. Each load fails on its own; none cancels the others.
func loadSnapshot(ctx context.Context, backend dashboard.Backend) *snapshot {
	var snap snapshot
	var g errgroup.Group

	g.Go(func() error {
		snap.config, snap.configErr = backend.GetConfig(ctx)
		return nil
	})
	g.Go(func() error {
		snap.status, snap.statusErr = backend.GetStatus(ctx)
		return nil
	})
	g.Go(func() error {
		snap.history, snap.histErr = backend.GetHistory(ctx, 1)
		return nil
	})
	_ = g.Wait()

	return &snap
}

// StatusCommand prints a one-shot dashboard snapshot.
func StatusCommand(backend dashboard.Backend, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	snap := loadSnapshot(ctx, backend)
	printSnapshot(snap)

	if snap.configErr != nil && snap.statusErr != nil && snap.histErr != nil {
		return fmt.Errorf("backend unreachable: %w", snap.statusErr)
	}
	return nil
}

func printSnapshot(snap *snapshot) {
	w := stdout

	_, _ = fmt.Fprintln(w, "SYNC STATUS")
	switch {
	case snap.statusErr != nil:
		_, _ = fmt.Fprintf(w, "  unavailable: %s\n", api.Detail(snap.statusErr))
	case snap.status.IsRunning:
		id := "?"
		if snap.status.RunningSyncID != nil {
			id = strconv.FormatInt(*snap.status.RunningSyncID, 10)
		}
		_, _ = fmt.Fprintf(w, "  ⟳ Running (sync #%s)\n", id)
	case snap.status.LastRun == nil:
		_, _ = fmt.Fprintln(w, "  No syncs yet")
	default:
		_, _ = fmt.Fprintf(w, "  Idle, last run #%d %s\n", snap.status.LastRun.ID, snap.status.LastRun.Status)
	}
	if snap.statusErr == nil && snap.status.LastRun != nil {
		printRunSummary(w, snap.status.LastRun)
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, "CONFIG")
	if snap.configErr != nil {
		_, _ = fmt.Fprintf(w, "  unavailable: %s\n", api.Detail(snap.configErr))
	} else {
		printConfig(w, snap.config)
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, "HISTORY")
	if snap.histErr != nil {
		_, _ = fmt.Fprintf(w, "  unavailable: %s\n", api.Detail(snap.histErr))
		return
	}
	printHistory(w, snap.history)
}

func printRunSummary(w io.Writer, run *models.SyncRun) {
	_, _ = fmt.Fprintf(w, "  Audience:   %s\n", metrics.OrPlaceholder(run.MetaAudienceName))
	_, _ = fmt.Fprintf(w, "  Lookalike:  %s\n", metrics.OrPlaceholder(run.MetaLookalikeName))
	_, _ = fmt.Fprintf(w, "  Contacts:   %d processed, %d matched (%s)\n", run.ContactsProcessed, run.ContactsMatched, percent(metrics.RunMatchRate(run)))
	_, _ = fmt.Fprintf(w, "  Duration:   %s\n", metrics.FormatDuration(run.DurationSeconds))
	if msg := models.StringValue(run.ErrorMessage); msg != "" {
		_, _ = fmt.Fprintf(w, "  Error:      %s\n", msg)
	}
}

func printConfig(w io.Writer, env *models.ConfigEnvelope) {
	if env == nil {
		_, _ = fmt.Fprintln(w, "  No configuration")
		return
	}
	if env.Config == nil {
		_, _ = fmt.Fprintln(w, "  LTV field:  not configured")
	} else {
		_, _ = fmt.Fprintf(w, "  LTV field:  %s (%s)\n", env.Config.LTVFieldName, env.Config.LTVFieldKey)
	}
	_, _ = fmt.Fprintf(w, "  Ad account: %s\n", orDash(env.MetaAdAccountID))
	_, _ = fmt.Fprintf(w, "  Location:   %s\n", orDash(env.LocationName))
	_, _ = fmt.Fprintf(w, "  Email:      %s -> %s\n", orNotConfigured(env.SMTPFrom), orNotConfigured(env.SMTPTo))
}

func printHistory(w io.Writer, page *models.HistoryPage) {
	if len(page.Runs) == 0 {
		_, _ = fmt.Fprintln(w, "  No sync runs yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tPROCESSED\tMATCHED\tMATCH %\tAUDIENCE\tDURATION")
	_, _ = fmt.Fprintln(tw, "--\t-------\t------\t---------\t-------\t-------\t--------\t--------")
	for i := range page.Runs {
		run := &page.Runs[i]
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			run.ID,
			metrics.FormatTimestamp(run.StartedAt),
			run.Status,
			run.ContactsProcessed,
			run.ContactsMatched,
			metrics.RunMatchRate(run),
			metrics.OrPlaceholder(run.MetaAudienceName),
			metrics.FormatDuration(run.DurationSeconds),
		)
	}
	_ = tw.Flush()

	if page.TotalPages > 1 {
		_, _ = fmt.Fprintf(w, "\nPage %d of %d (%d runs)\n", page.Page, page.TotalPages, page.Total)
	}
}

// HistoryCommand prints one page of sync history.
func HistoryCommand(backend dashboard.Backend, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	page := fs.Int("page", 1, "Page number (1-indexed)")
	_ = fs.Parse(args)

	if *page < 1 {
		return fmt.Errorf("--page must be at least 1")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	history, err := backend.GetHistory(ctx, *page)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	printHistory(stdout, history)
	return nil
}

// ShowCommand prints one run with its stats and contact samples.
func ShowCommand(backend dashboard.Backend, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: show <run-id>")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid run id: %s", fs.Arg(0))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	run, err := backend.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", id, err)
	}

	w := stdout
	_, _ = fmt.Fprintf(w, "Sync run #%d\n", run.ID)
	_, _ = fmt.Fprintf(w, "  Status:     %s\n", run.Status)
	_, _ = fmt.Fprintf(w, "  Started:    %s\n", metrics.FormatTimestamp(run.StartedAt))
	_, _ = fmt.Fprintf(w, "  Completed:  %s\n", metrics.FormatTimestamp(run.CompletedAt))
	printRunSummary(w, &run.SyncRun)
	if id := models.StringValue(run.MetaAudienceID); id != "" {
		_, _ = fmt.Fprintf(w, "  Audience ID:  %s\n", id)
	}
	if id := models.StringValue(run.MetaLookalikeID); id != "" {
		_, _ = fmt.Fprintf(w, "  Lookalike ID: %s\n", id)
	}

	if s := run.NormalizationStats; s != nil {
		_, _ = fmt.Fprintln(w, "\nNormalization")
		_, _ = fmt.Fprintf(w, "  min %s  max %s  median %s  mean %s  count %d\n",
			metrics.FormatMoney(s.MinLTV), metrics.FormatMoney(s.MaxLTV),
			metrics.FormatMoney(s.MedianLTV), metrics.FormatMoney(s.MeanLTV), s.Count)
		if buckets, ok := metrics.Buckets(s); ok {
			for _, b := range buckets {
				_, _ = fmt.Fprintf(w, "  %7s  %d\n", b.Label, b.Count)
			}
		}
	}

	if len(run.ContactSamples) > 0 {
		_, _ = fmt.Fprintln(w, "\nSample contacts")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "NAME\tEMAIL\tRAW LTV\tVALUE")
		for _, c := range run.ContactSamples {
			name := strings.TrimSpace(models.StringValue(c.FirstName) + " " + models.StringValue(c.LastName))
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", orDash(name), metrics.OrPlaceholder(c.Email), metrics.FormatMoney(c.RawLTV), c.NormalizedValue)
		}
		_ = tw.Flush()
	}
	return nil
}

func percent(rate string) string {
	if rate == metrics.Placeholder {
		return rate
	}
	return rate + "%"
}

func orDash(s string) string {
	if s == "" {
		return metrics.Placeholder
	}
	return s
}

func orNotConfigured(s string) string {
	if s == "" {
		return "Not configured"
	}
	return s
}
