package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dormi-app/dormi-api/internal/escalation"
	"github.com/dormi-app/dormi-api/internal/models"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

func newReportRepoMock(t *testing.T) (*ReportRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return NewReportRepository(sqlxDB), mock, cleanup
}

func alwaysTrigger(count int) escalation.Decision {
	return escalation.Decision{Trigger: count > 0 && count%3 == 0, Severity: 1, Reason: "Accumulation of 3 Discipline reports"}
}

func neverTrigger(int) escalation.Decision { return escalation.Decision{} }

func pendingReport() *models.Report {
	return &models.Report{
		StudentID:  "S1",
		ReportedBy: "M100",
		AuthorRole: models.RoleMonitor,
		Category:   models.CategoryDiscipline,
		Reason:     "noise after curfew",
		Status:     models.ReportStatusPending,
	}
}

func TestMonthWindow(t *testing.T) {
	at := time.Date(2025, time.March, 15, 20, 30, 0, 0, time.UTC)
	start, end := MonthWindow(at)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestCreateWithEscalationNoTrigger(t *testing.T) {
	repo, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reports").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports").
		WithArgs("S1", string(models.CategoryDiscipline), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	result, err := repo.CreateWithEscalation(context.Background(), pendingReport(), alwaysTrigger)
	require.NoError(t, err)
	require.NotNil(t, result.Report)
	assert.NotEmpty(t, result.Report.ID)
	assert.Nil(t, result.Reprimand)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithEscalationThirdReportGeneratesReprimand(t *testing.T) {
	repo, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reports").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec("INSERT INTO reprimands").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := repo.CreateWithEscalation(context.Background(), pendingReport(), alwaysTrigger)
	require.NoError(t, err)
	require.NotNil(t, result.Reprimand)
	assert.Equal(t, models.SystemIssuerID, result.Reprimand.IssuedBy)
	assert.Equal(t, models.MinSeverity, result.Reprimand.Severity)
	require.NotNil(t, result.Reprimand.TriggerReportID)
	assert.Equal(t, result.Report.ID, *result.Reprimand.TriggerReportID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithEscalationReprimandFailureRollsBackReport(t *testing.T) {
	repo, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reports").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec("INSERT INTO reprimands").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "reprimands_issued_by_fkey"})
	mock.ExpectRollback()

	_, err := repo.CreateWithEscalation(context.Background(), pendingReport(), alwaysTrigger)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrReference.Code, appErrors.FromError(err).Code)
	assert.Contains(t, appErrors.FromError(err).Message, "issuing authority")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithEscalationUnknownStudentMapsReferenceError(t *testing.T) {
	repo, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reports").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "reports_student_id_fkey"})
	mock.ExpectRollback()

	_, err := repo.CreateWithEscalation(context.Background(), pendingReport(), neverTrigger)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrReference.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "student")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatchAllOrNothing(t *testing.T) {
	repo, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	reports := make([]*models.Report, 5)
	for i := range reports {
		r := pendingReport()
		r.StudentID = "S" + string(rune('1'+i))
		reports[i] = r
	}

	mock.ExpectBegin()
	// every subject lock is taken upfront
	for range reports {
		mock.ExpectExec("SELECT pg_advisory_xact_lock").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	// first two subjects succeed
	for i := 0; i < 2; i++ {
		mock.ExpectExec("INSERT INTO reports").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	}
	// third subject violates a reference constraint; whole batch rolls back
	mock.ExpectExec("INSERT INTO reports").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "reports_student_id_fkey"})
	mock.ExpectRollback()

	results, err := repo.CreateBatchWithEscalation(context.Background(), reports, neverTrigger)
	require.Error(t, err)
	assert.Nil(t, results)
	assert.Equal(t, appErrors.ErrReference.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatchMixedEscalations(t *testing.T) {
	repo, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	first := pendingReport()
	second := pendingReport()
	second.StudentID = "S2"

	mock.ExpectBegin()
	// both subject locks upfront, then S1 reaches the threshold
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reports").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec("INSERT INTO reprimands").
		WillReturnResult(sqlmock.NewResult(1, 1))
	// S2 does not
	mock.ExpectExec("INSERT INTO reports").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	evening := func(count int) escalation.Decision {
		if count > 0 && count%2 == 0 {
			return escalation.Decision{Trigger: true, Severity: 1, Reason: "Accumulation of 2 Service Absence reports"}
		}
		return escalation.Decision{}
	}

	results, err := repo.CreateBatchWithEscalation(context.Background(), []*models.Report{first, second}, evening)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NotNil(t, results[0].Reprimand)
	assert.Nil(t, results[1].Reprimand)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatchLocksSubjectsInSortedOrder(t *testing.T) {
	repo, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	reportedAt := time.Date(2025, time.March, 10, 7, 0, 0, 0, time.UTC)
	reports := make([]*models.Report, 0, 3)
	for _, studentID := range []string{"S3", "S1", "S2"} {
		r := pendingReport()
		r.StudentID = studentID
		r.ReportedAt = reportedAt
		reports = append(reports, r)
	}

	mock.ExpectBegin()
	// locks go by sorted subject key regardless of input order
	for _, studentID := range []string{"S1", "S2", "S3"} {
		mock.ExpectExec("SELECT pg_advisory_xact_lock").
			WithArgs(studentID + "|discipline|2025-03").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	for range reports {
		mock.ExpectExec("INSERT INTO reports").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	}
	mock.ExpectCommit()

	results, err := repo.CreateBatchWithEscalation(context.Background(), reports, neverTrigger)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountInWindowIsRepeatable(t *testing.T) {
	repo, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	start, end := MonthWindow(time.Now().UTC())
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports").
			WithArgs("S1", string(models.CategoryDiscipline), start, end).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	}

	first, err := repo.CountInWindow(context.Background(), "S1", models.CategoryDiscipline, start, end)
	require.NoError(t, err)
	second, err := repo.CountInWindow(context.Background(), "S1", models.CategoryDiscipline, start, end)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAllOmitsPagination(t *testing.T) {
	repo, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	// The export query must end at the ORDER BY with no LIMIT or OFFSET,
	// otherwise large exports get silently truncated.
	mock.ExpectQuery(`ORDER BY r.reported_at DESC$`).
		WithArgs("S1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("rep-1").AddRow("rep-2"))

	rows, err := repo.ListAll(context.Background(), models.ReportFilter{StudentID: "S1"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveOnlyPendingReports(t *testing.T) {
	repo, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE reports SET status").
		WithArgs(string(models.ReportStatusApproved), "P9", sqlmock.AnyArg(), "rep-1", string(models.ReportStatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Approve(context.Background(), "rep-1", "P9")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
