// Package artifact writes the per-report result rows to a row-oriented CSV
// file and hands back the stable internal reference the job record stores.
package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	perr "storewatch/internal/platform/errors"
)

// Row is one store's uptime/downtime result, ready to serialize
type Row struct {
	StoreID          string
	UptimeLastHour   int     // minutes
	UptimeLastDay    float64 // hours
	UptimeLastWeek   float64 // hours
	DowntimeLastHour int     // minutes
	DowntimeLastDay  float64 // hours
	DowntimeLastWeek float64 // hours
}

var header = []string{
	"store_id",
	"uptime_last_hour", "uptime_last_day", "uptime_last_week",
	"downtime_last_hour", "downtime_last_day", "downtime_last_week",
}

// Writer writes report artifacts under Root and knows how to turn the
// resulting file path into the stable internal reference the job record
// carries.
type Writer struct {
	Root string // directory reports/<report_id>.csv are written under
}

// New constructs a Writer rooted at dir. The directory is created lazily on
// first Write, not here, so constructing a Writer never touches disk.
func New(dir string) Writer { return Writer{Root: dir} }

// Write sorts rows by StoreID and serializes them as UTF-8 CSV with LF line
// endings under Root/<reportID>.csv, returning the stable internal
// reference "file://<absPath>" that GetStatus later translates to a public URL.
func (w Writer) Write(reportID string, rows []Row) (string, error) {
	if err := os.MkdirAll(w.Root, 0o755); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "artifact: create report dir %q", w.Root)
	}

	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StoreID < sorted[j].StoreID })

	path := filepath.Join(w.Root, reportID+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "artifact: create file %q", path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.UseCRLF = false // LF line endings per the artifact contract

	if err := cw.Write(header); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "artifact: write header")
	}
	for _, r := range sorted {
		rec := []string{
			r.StoreID,
			strconv.Itoa(r.UptimeLastHour),
			formatHours(r.UptimeLastDay),
			formatHours(r.UptimeLastWeek),
			strconv.Itoa(r.DowntimeLastHour),
			formatHours(r.DowntimeLastDay),
			formatHours(r.DowntimeLastWeek),
		}
		if err := cw.Write(rec); err != nil {
			return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "artifact: write row for store %q", r.StoreID)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "artifact: flush")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return fmt.Sprintf("file://%s", abs), nil
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64)
}
