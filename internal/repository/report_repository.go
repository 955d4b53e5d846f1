package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dormi-app/dormi-api/internal/escalation"
	"github.com/dormi-app/dormi-api/internal/models"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

// EscalationCheck maps the in-transaction count for the triggering report's
// (student, category, month) to an escalation decision. It must be pure; the
// repository guarantees the count reflects the just-inserted row.
type EscalationCheck func(count int) escalation.Decision

// SubmitResult reports what one submission created.
type SubmitResult struct {
	Report    *models.Report
	Reprimand *models.Reprimand
}

// ReportRepository persists infraction reports and their escalations.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// MonthWindow returns the [start, end) boundaries of the calendar month
// containing t, in t's location.
func MonthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

const insertReportQuery = `INSERT INTO reports
(id, student_id, reported_by, author_role, category, reason, status, approved_by, approved_at, reported_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const insertReprimandQuery = `INSERT INTO reprimands
(id, student_id, issued_by, severity, reason, issued_at, trigger_report_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const countReportsQuery = `SELECT COUNT(*) FROM reports
WHERE student_id = $1 AND category = $2 AND reported_at >= $3 AND reported_at < $4`

// CreateWithEscalation inserts the report, recounts the student's reports for
// the category within the report's calendar month inside the same
// transaction, and conditionally inserts an automatic reprimand. Everything
// commits or rolls back as a unit.
func (r *ReportRepository) CreateWithEscalation(ctx context.Context, report *models.Report, check EscalationCheck) (*SubmitResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "begin report transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	result, err := r.submitInTx(ctx, tx, report, check, true)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "commit report transaction")
	}
	committed = true
	return result, nil
}

// CreateBatchWithEscalation runs the submit sequence once per report inside a
// single transaction. Any failure rolls back the whole batch.
func (r *ReportRepository) CreateBatchWithEscalation(ctx context.Context, reports []*models.Report, check EscalationCheck) ([]SubmitResult, error) {
	if len(reports) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "begin batch transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Acquire every subject lock upfront in sorted order. Two overlapping
	// batches touching the same subjects then always lock in the same
	// sequence and cannot deadlock each other.
	now := time.Now().UTC()
	keys := make([]string, 0, len(reports))
	seen := make(map[string]struct{}, len(reports))
	for _, report := range reports {
		if report.ReportedAt.IsZero() {
			report.ReportedAt = now
		}
		key := escalationLockKey(report)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := acquireEscalationLock(ctx, tx, key); err != nil {
			return nil, err
		}
	}

	results := make([]SubmitResult, 0, len(reports))
	for _, report := range reports {
		result, err := r.submitInTx(ctx, tx, report, check, false)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "commit batch transaction")
	}
	committed = true
	return results, nil
}

// escalationLockKey names the (student, category, month) subject a
// submission serialises on. ReportedAt must already be set.
func escalationLockKey(report *models.Report) string {
	return fmt.Sprintf("%s|%s|%s", report.StudentID, report.Category, report.ReportedAt.Format("2006-01"))
}

// acquireEscalationLock takes the transaction-scoped advisory lock for one
// subject key; Postgres releases it at transaction end.
func acquireEscalationLock(ctx context.Context, tx *sqlx.Tx, key string) error {
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return mapWriteError(err, "acquire escalation lock")
	}
	return nil
}

// submitInTx performs the insert-recount-escalate sequence on an open
// transaction. The advisory lock serialises concurrent submissions for the
// same (student, category, month) so overlapping transactions cannot both
// read a pre-increment count. Batch callers pass lock=false after taking
// every subject lock themselves in sorted order.
func (r *ReportRepository) submitInTx(ctx context.Context, tx *sqlx.Tx, report *models.Report, check EscalationCheck, lock bool) (*SubmitResult, error) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if report.ReportedAt.IsZero() {
		report.ReportedAt = now
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}

	if lock {
		if err := acquireEscalationLock(ctx, tx, escalationLockKey(report)); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, insertReportQuery,
		report.ID, report.StudentID, report.ReportedBy, report.AuthorRole, report.Category,
		report.Reason, report.Status, report.ApprovedBy, report.ApprovedAt,
		report.ReportedAt, report.CreatedAt,
	); err != nil {
		return nil, mapWriteError(err, "insert report")
	}

	windowStart, windowEnd := MonthWindow(report.ReportedAt)
	var count int
	if err := tx.GetContext(ctx, &count, countReportsQuery,
		report.StudentID, report.Category, windowStart, windowEnd,
	); err != nil {
		return nil, mapWriteError(err, "count reports in window")
	}

	result := &SubmitResult{Report: report}

	decision := check(count)
	if !decision.Trigger {
		return result, nil
	}

	reprimand := &models.Reprimand{
		ID:              uuid.NewString(),
		StudentID:       report.StudentID,
		IssuedBy:        models.SystemIssuerID,
		Severity:        decision.Severity,
		Reason:          decision.Reason,
		IssuedAt:        report.ReportedAt,
		TriggerReportID: &report.ID,
		CreatedAt:       now,
	}
	if _, err := tx.ExecContext(ctx, insertReprimandQuery,
		reprimand.ID, reprimand.StudentID, reprimand.IssuedBy, reprimand.Severity,
		reprimand.Reason, reprimand.IssuedAt, reprimand.TriggerReportID, reprimand.CreatedAt,
	); err != nil {
		return nil, mapWriteError(err, "insert automatic reprimand")
	}
	result.Reprimand = reprimand

	return result, nil
}

// CountInWindow recomputes the persisted count for a (student, category)
// pair within [windowStart, windowEnd). Read-only; used for statistics and
// consistency checks outside the writer path.
func (r *ReportRepository) CountInWindow(ctx context.Context, studentID string, category models.ReportCategory, windowStart, windowEnd time.Time) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, countReportsQuery, studentID, category, windowStart, windowEnd); err != nil {
		return 0, mapWriteError(err, "count reports in window")
	}
	return count, nil
}

const reporterNameExpr = `COALESCE(
	(SELECT s2.full_name FROM students s2 WHERE s2.id = r.reported_by AND r.author_role = 'Monitor'),
	(SELECT st.full_name FROM staff st WHERE st.id = r.reported_by AND r.author_role = 'Preceptor'),
	'System') AS reporter_name`

// ListByStudent returns a student's reports, newest first.
func (r *ReportRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ReportDetail, error) {
	query := fmt.Sprintf(`SELECT r.id, r.student_id, r.reported_by, r.author_role, r.category, r.reason, r.status,
	r.approved_by, r.approved_at, r.reported_at, r.signature, r.signed_at, r.created_at,
	s.full_name AS student_name, %s
FROM reports r
JOIN students s ON s.id = r.student_id
WHERE r.student_id = $1
ORDER BY r.reported_at DESC`, reporterNameExpr)
	var rows []models.ReportDetail
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list reports by student: %w", err)
	}
	return rows, nil
}

const listReportsBase = `FROM reports r JOIN students s ON s.id = r.student_id`

// reportFilterClause builds the WHERE clause and bind args shared by the
// paginated list, the count, and the unpaged export query.
func reportFilterClause(filter models.ReportFilter) (string, []interface{}) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("r.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(r.student_id ILIKE $%d OR s.full_name ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	return strings.Join(where, " AND "), args
}

// List returns paginated reports with optional search on student ID or name.
func (r *ReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.ReportDetail, int, error) {
	whereClause, args := reportFilterClause(filter)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT r.id, r.student_id, r.reported_by, r.author_role, r.category, r.reason, r.status,
	r.approved_by, r.approved_at, r.reported_at, r.signature, r.signed_at, r.created_at,
	s.full_name AS student_name, %s
%s WHERE %s ORDER BY r.reported_at DESC LIMIT %d OFFSET %d`, reporterNameExpr, listReportsBase, whereClause, size, offset)

	var rows []models.ReportDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", listReportsBase, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}
	return rows, total, nil
}

// ListAll returns every report matching the filter without pagination. It is
// meant for exports, where truncating the result set would corrupt the file.
func (r *ReportRepository) ListAll(ctx context.Context, filter models.ReportFilter) ([]models.ReportDetail, error) {
	whereClause, args := reportFilterClause(filter)
	query := fmt.Sprintf(`SELECT r.id, r.student_id, r.reported_by, r.author_role, r.category, r.reason, r.status,
	r.approved_by, r.approved_at, r.reported_at, r.signature, r.signed_at, r.created_at,
	s.full_name AS student_name, %s
%s WHERE %s ORDER BY r.reported_at DESC`, reporterNameExpr, listReportsBase, whereClause)

	var rows []models.ReportDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list all reports: %w", err)
	}
	return rows, nil
}

// Approve transitions a pending report to approved. Returns false when the
// report does not exist or is no longer pending.
func (r *ReportRepository) Approve(ctx context.Context, reportID, approverID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reports SET status = $1, approved_by = $2, approved_at = $3 WHERE id = $4 AND status = $5`,
		models.ReportStatusApproved, approverID, time.Now().UTC(), reportID, models.ReportStatusPending)
	if err != nil {
		return false, mapWriteError(err, "approve report")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("approve report rows affected: %w", err)
	}
	return affected > 0, nil
}

// Reject transitions a pending report to rejected.
func (r *ReportRepository) Reject(ctx context.Context, reportID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reports SET status = $1 WHERE id = $2 AND status = $3`,
		models.ReportStatusRejected, reportID, models.ReportStatusPending)
	if err != nil {
		return false, mapWriteError(err, "reject report")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reject report rows affected: %w", err)
	}
	return affected > 0, nil
}

// AttachSignature stores a captured signature on a report.
func (r *ReportRepository) AttachSignature(ctx context.Context, reportID, signature string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reports SET signature = $1, signed_at = $2 WHERE id = $3`,
		signature, time.Now().UTC(), reportID)
	if err != nil {
		return false, mapWriteError(err, "sign report")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sign report rows affected: %w", err)
	}
	return affected > 0, nil
}
