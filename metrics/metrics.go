// ABOUTME: Derived figures for sync runs shown by the dashboard
// ABOUTME: Match rate, duration and money formatting, decile bucket labels; never errors
package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/harperreed/ltvdash/models"
)

// Placeholder is shown wherever a figure cannot be derived.
const Placeholder = "—"

// BucketLabels name the ten decile buckets in distribution order.
var BucketLabels = [models.BucketCount]string{
	"0-10", "10-20", "20-30", "30-40", "40-50",
	"50-60", "60-70", "70-80", "80-90", "90-100",
}

// Bucket is one labelled bar of the value distribution chart.
type Bucket struct {
	Label string
	Count int
}

// MatchRateValue returns matched/processed as a percentage. ok is false when
// processed is zero or the counts are malformed.
func MatchRateValue(processed, matched int) (rate float64, ok bool) {
	if processed <= 0 || matched < 0 {
		return 0, false
	}
	return float64(matched) / float64(processed) * 100, true
}

// MatchRate renders the match rate to one decimal place, or Placeholder.
func MatchRate(processed, matched int) string {
	rate, ok := MatchRateValue(processed, matched)
	if !ok {
		return Placeholder
	}
	return fmt.Sprintf("%.1f", rate)
}

// RunMatchRate is MatchRate for a run that may be absent.
func RunMatchRate(run *models.SyncRun) string {
	if run == nil {
		return Placeholder
	}
	return MatchRate(run.ContactsProcessed, run.ContactsMatched)
}

// FormatDuration renders elapsed seconds as "42s" or "3m 5s". Under a minute
// the seconds are rounded as a whole, so 59.6 renders as "60s".
func FormatDuration(seconds *float64) string {
	if seconds == nil || math.IsNaN(*seconds) || math.IsInf(*seconds, 0) || *seconds < 0 {
		return Placeholder
	}
	if *seconds < 60 {
		return fmt.Sprintf("%ds", int(math.Round(*seconds)))
	}
	mins := int(math.Floor(*seconds / 60))
	secs := int(math.Round(math.Mod(*seconds, 60)))
	if secs == 60 {
		mins, secs = mins+1, 0
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}

// Buckets pairs the distribution with BucketLabels by position. ok is false
// when stats are absent, the distribution does not have exactly ten buckets,
// or any bucket count is negative.
func Buckets(stats *models.NormalizationStats) (buckets []Bucket, ok bool) {
	if stats == nil || len(stats.Distribution) != models.BucketCount {
		return nil, false
	}
	for _, count := range stats.Distribution {
		if count < 0 {
			return nil, false
		}
	}
	buckets = make([]Bucket, models.BucketCount)
	for i, count := range stats.Distribution {
		buckets[i] = Bucket{Label: BucketLabels[i], Count: count}
	}
	return buckets, true
}

// DistributionConsistent reports whether the bucket counts add up to Count.
func DistributionConsistent(stats *models.NormalizationStats) bool {
	if stats == nil || len(stats.Distribution) != models.BucketCount {
		return false
	}
	return stats.DistributionSum() == stats.Count
}

// FormatMoney renders an LTV amount as dollars with cents.
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return fmt.Sprintf("$%.2f", v)
}

// FormatTimestamp renders an optional backend timestamp in local time.
func FormatTimestamp(ts *models.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return Placeholder
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

// FormatCount renders a contact count of a run that may be absent.
func FormatCount(run *models.SyncRun) string {
	if run == nil {
		return Placeholder
	}
	return fmt.Sprintf("%d", run.ContactsProcessed)
}

// OrPlaceholder returns s, or Placeholder when s is empty or nil.
func OrPlaceholder(s *string) string {
	if s == nil || *s == "" {
		return Placeholder
	}
	return *s
}

// Since renders how long ago t was, for the watch log and header.
func Since(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return pluralAgo(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return pluralAgo(int(d.Hours()), "hour")
	default:
		return pluralAgo(int(d.Hours()/24), "day")
	}
}

func pluralAgo(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
