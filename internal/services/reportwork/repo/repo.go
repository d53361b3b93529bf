// Package repo provides the reportwork persistence surface: the job table
// (reports) and the read-only input corpus (status, hours, timezones).
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"storewatch/internal/core/businesshours"
	"storewatch/internal/core/polls"
	"storewatch/internal/modkit/repokit"
	"storewatch/internal/services/reportwork/domain"
)

// Repo is the reportwork persistence surface used by the service layer
type Repo interface {
	// CreateOrGetActive returns the id of an existing Pending/Running
	// report if one exists, else creates a new Pending one. created
	// reports whether a new row was inserted.
	CreateOrGetActive(ctx context.Context) (reportID string, created bool, err error)
	GetByID(ctx context.Context, reportID string) (domain.Report, error)
	MarkRunning(ctx context.Context, reportID string) error
	MarkComplete(ctx context.Context, reportID, url string) error
	MarkFailed(ctx context.Context, reportID string) error

	// ListStoreIDs returns the union of store ids observed across the
	// status, hours, and timezones corpora.
	ListStoreIDs(ctx context.Context) ([]string, error)
	// MaxSampleTimestamp returns the dataset-wide most recent ts_utc,
	// used once per run as the anchor instant.
	MaxSampleTimestamp(ctx context.Context) (time.Time, bool, error)
	// LoadRawPolls returns samples for storeID with ts_utc >= leftUTC,
	// ascending by ts_utc.
	LoadRawPolls(ctx context.Context, storeID string, leftUTC time.Time) ([]polls.RawSample, error)
	LoadHours(ctx context.Context, storeID string) ([]businesshours.HoursRow, error)
	LoadTimezone(ctx context.Context, storeID string) (string, bool, error)
}

type (
	// PG is a Postgres implementation of the reportwork repo
	PG      struct{}
	queries struct {
		q  repokit.Queryer
		tx repokit.TxRunner
	}
)

// NewPG returns a binder for the Postgres implementation
func NewPG(tx repokit.TxRunner) repokit.Binder[Repo] {
	return pgBinder{tx: tx}
}

type pgBinder struct{ tx repokit.TxRunner }

// Bind attaches a Queryer to the Postgres implementation
func (b pgBinder) Bind(q repokit.Queryer) Repo { return &queries{q: q, tx: b.tx} }

// CreateOrGetActive enforces the one-active-report rule with a single
// transaction around the existence check and the insert, the same
// short-critical-section pattern used elsewhere in this codebase for
// single-flight work.
func (r *queries) CreateOrGetActive(ctx context.Context) (string, bool, error) {
	var (
		reportID string
		created  bool
	)
	err := r.tx.Tx(ctx, func(q repokit.Queryer) error {
		const findActive = `
			SELECT report_id FROM reports
			WHERE status IN ('PENDING', 'RUNNING')
			ORDER BY created_at ASC
			LIMIT 1
		`
		var existing string
		err := q.QueryRow(ctx, findActive).Scan(&existing)
		if err == nil {
			reportID = existing
			return nil
		}
		if !errors.Is(err, stdsql.ErrNoRows) {
			return err
		}

		id := uuid.NewString()
		const insert = `
			INSERT INTO reports (report_id, status, created_at, updated_at)
			VALUES ($1, 'PENDING', NOW(), NOW())
		`
		if _, err := q.Exec(ctx, insert, id); err != nil {
			return err
		}
		reportID = id
		created = true
		return nil
	})
	return reportID, created, err
}

// GetByID returns the report row, or a zero-value Report with
// stdsql.ErrNoRows-wrapped error if unknown.
func (r *queries) GetByID(ctx context.Context, reportID string) (domain.Report, error) {
	const sqlq = `
		SELECT report_id, status, COALESCE(url, ''), created_at, updated_at
		FROM reports WHERE report_id = $1
	`
	var rep domain.Report
	var status string
	row := r.q.QueryRow(ctx, sqlq, reportID)
	if err := row.Scan(&rep.ReportID, &status, &rep.URL, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
		return domain.Report{}, err
	}
	rep.Status = domain.Status(status)
	return rep, nil
}

// MarkRunning transitions a Pending report to Running
func (r *queries) MarkRunning(ctx context.Context, reportID string) error {
	const sqlq = `UPDATE reports SET status = 'RUNNING', updated_at = NOW() WHERE report_id = $1 AND status = 'PENDING'`
	_, err := r.q.Exec(ctx, sqlq, reportID)
	return err
}

// MarkComplete transitions a Running report to Complete, recording the
// artifact reference
func (r *queries) MarkComplete(ctx context.Context, reportID, url string) error {
	const sqlq = `UPDATE reports SET status = 'COMPLETE', url = $2, updated_at = NOW() WHERE report_id = $1 AND status = 'RUNNING'`
	_, err := r.q.Exec(ctx, sqlq, reportID, url)
	return err
}

// MarkFailed transitions a Running report to Failed
func (r *queries) MarkFailed(ctx context.Context, reportID string) error {
	const sqlq = `UPDATE reports SET status = 'FAILED', updated_at = NOW() WHERE report_id = $1 AND status = 'RUNNING'`
	_, err := r.q.Exec(ctx, sqlq, reportID)
	return err
}

// ListStoreIDs unions the store ids observed across all three input tables
func (r *queries) ListStoreIDs(ctx context.Context) ([]string, error) {
	const sqlq = `
		SELECT store_id FROM status
		UNION
		SELECT store_id FROM hours
		UNION
		SELECT store_id FROM timezones
	`
	rows, err := r.q.Query(ctx, sqlq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MaxSampleTimestamp returns the most recent ts_utc across the whole
// status table, used once per run as the dataset-wide anchor
func (r *queries) MaxSampleTimestamp(ctx context.Context) (time.Time, bool, error) {
	const sqlq = `SELECT MAX(ts_utc) FROM status`
	var ts stdsql.NullString
	if err := r.q.QueryRow(ctx, sqlq).Scan(&ts); err != nil {
		return time.Time{}, false, err
	}
	if !ts.Valid || ts.String == "" {
		return time.Time{}, false, nil
	}
	t, err := parseTSUTC(ts.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// LoadRawPolls returns samples for storeID at or after leftUTC, ascending
func (r *queries) LoadRawPolls(ctx context.Context, storeID string, leftUTC time.Time) ([]polls.RawSample, error) {
	const sqlq = `
		SELECT store_id, ts_utc, status FROM status
		WHERE store_id = $1 AND ts_utc >= $2
		ORDER BY ts_utc ASC
	`
	rows, err := r.q.Query(ctx, sqlq, storeID, leftUTC.Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []polls.RawSample
	for rows.Next() {
		var (
			sid, rawTS, status string
		)
		if err := rows.Scan(&sid, &rawTS, &status); err != nil {
			return nil, err
		}
		ts, err := parseTSUTC(rawTS)
		if err != nil {
			return nil, err
		}
		out = append(out, polls.RawSample{StoreID: sid, TSUTC: ts, Status: status})
	}
	return out, rows.Err()
}

// LoadHours returns the business-hours schedule rows for storeID
func (r *queries) LoadHours(ctx context.Context, storeID string) ([]businesshours.HoursRow, error) {
	const sqlq = `
		SELECT day_of_week, start_local, end_local FROM hours
		WHERE store_id = $1
	`
	rows, err := r.q.Query(ctx, sqlq, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []businesshours.HoursRow
	for rows.Next() {
		var dow int
		var start, end string
		if err := rows.Scan(&dow, &start, &end); err != nil {
			return nil, err
		}
		s, err := parseTimeOfDay(start)
		if err != nil {
			return nil, err
		}
		e, err := parseTimeOfDay(end)
		if err != nil {
			return nil, err
		}
		out = append(out, businesshours.HoursRow{DayOfWeek: dow, Start: s, End: e})
	}
	return out, rows.Err()
}

// LoadTimezone returns the IANA zone name for storeID, ok=false if absent
func (r *queries) LoadTimezone(ctx context.Context, storeID string) (string, bool, error) {
	const sqlq = `SELECT tz FROM timezones WHERE store_id = $1`
	var tz string
	err := r.q.QueryRow(ctx, sqlq, storeID).Scan(&tz)
	if errors.Is(err, stdsql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return tz, true, nil
}

// parseTSUTC parses a status.ts_utc value, stripping a trailing " UTC"
// literal some rows carry before RFC3339/space-separated parsing.
func parseTSUTC(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, " UTC")
	s = strings.TrimSpace(s)

	layouts := []string{
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
	}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

func parseTimeOfDay(raw string) (businesshours.TimeOfDay, error) {
	s := strings.TrimSpace(raw)
	layouts := []string{"15:04:05", "15:04"}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return businesshours.TimeOfDay{Hour: t.Hour(), Min: t.Minute(), Sec: t.Second()}, nil
		} else {
			lastErr = err
		}
	}
	return businesshours.TimeOfDay{}, lastErr
}
