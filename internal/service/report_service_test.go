package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dormi-app/dormi-api/internal/escalation"
	"github.com/dormi-app/dormi-api/internal/models"
	"github.com/dormi-app/dormi-api/internal/notify"
	"github.com/dormi-app/dormi-api/internal/repository"
	"github.com/dormi-app/dormi-api/pkg/config"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

type reportStoreStub struct {
	counts    map[string]int
	submitted []*models.Report
	statuses  map[string]models.ReportStatus
	failWith  error
}

func newReportStoreStub() *reportStoreStub {
	return &reportStoreStub{counts: map[string]int{}, statuses: map[string]models.ReportStatus{}}
}

func (r *reportStoreStub) key(studentID string, category models.ReportCategory) string {
	return studentID + "|" + string(category)
}

func (r *reportStoreStub) submit(report *models.Report, check repository.EscalationCheck) repository.SubmitResult {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	r.counts[r.key(report.StudentID, report.Category)]++
	r.submitted = append(r.submitted, report)
	r.statuses[report.ID] = report.Status

	result := repository.SubmitResult{Report: report}
	decision := check(r.counts[r.key(report.StudentID, report.Category)])
	if decision.Trigger {
		reportID := report.ID
		result.Reprimand = &models.Reprimand{
			ID:              uuid.NewString(),
			StudentID:       report.StudentID,
			IssuedBy:        models.SystemIssuerID,
			Severity:        decision.Severity,
			Reason:          decision.Reason,
			IssuedAt:        report.ReportedAt,
			TriggerReportID: &reportID,
		}
	}
	return result
}

func (r *reportStoreStub) CreateWithEscalation(_ context.Context, report *models.Report, check repository.EscalationCheck) (*repository.SubmitResult, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	result := r.submit(report, check)
	return &result, nil
}

func (r *reportStoreStub) CreateBatchWithEscalation(_ context.Context, reports []*models.Report, check repository.EscalationCheck) ([]repository.SubmitResult, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	results := make([]repository.SubmitResult, 0, len(reports))
	for _, report := range reports {
		results = append(results, r.submit(report, check))
	}
	return results, nil
}

func (r *reportStoreStub) List(_ context.Context, _ models.ReportFilter) ([]models.ReportDetail, int, error) {
	details := make([]models.ReportDetail, 0, len(r.submitted))
	for _, report := range r.submitted {
		details = append(details, models.ReportDetail{Report: *report})
	}
	return details, len(details), nil
}

func (r *reportStoreStub) ListAll(_ context.Context, _ models.ReportFilter) ([]models.ReportDetail, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	details := make([]models.ReportDetail, 0, len(r.submitted))
	for _, report := range r.submitted {
		details = append(details, models.ReportDetail{Report: *report})
	}
	return details, nil
}

func (r *reportStoreStub) ListByStudent(_ context.Context, studentID string) ([]models.ReportDetail, error) {
	var details []models.ReportDetail
	for _, report := range r.submitted {
		if report.StudentID == studentID {
			details = append(details, models.ReportDetail{Report: *report})
		}
	}
	return details, nil
}

func (r *reportStoreStub) Approve(_ context.Context, reportID, _ string) (bool, error) {
	if r.statuses[reportID] != models.ReportStatusPending {
		return false, nil
	}
	r.statuses[reportID] = models.ReportStatusApproved
	return true, nil
}

func (r *reportStoreStub) Reject(_ context.Context, reportID string) (bool, error) {
	if r.statuses[reportID] != models.ReportStatusPending {
		return false, nil
	}
	r.statuses[reportID] = models.ReportStatusRejected
	return true, nil
}

func (r *reportStoreStub) AttachSignature(_ context.Context, reportID, _ string) (bool, error) {
	_, ok := r.statuses[reportID]
	return ok, nil
}

type dispatcherStub struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (d *dispatcherStub) Send(msg notify.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
}

func (d *dispatcherStub) titles() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	titles := make([]string, 0, len(d.sent))
	for _, msg := range d.sent {
		titles = append(titles, msg.Title)
	}
	return titles
}

func testPolicy() escalation.Policy {
	return escalation.NewPolicy(config.EscalationConfig{})
}

func TestSubmitMonitorReportStaysPending(t *testing.T) {
	store := newReportStoreStub()
	svc := NewReportService(store, testPolicy(), &dispatcherStub{}, nil, nil, nil)

	result, err := svc.Submit(context.Background(), SubmitReportRequest{
		StudentID:  "S001",
		ReportedBy: "M010",
		AuthorRole: "Monitor",
		Category:   "discipline",
		Reason:     "noise after curfew",
	})

	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, result.Report.Status)
	assert.Nil(t, result.Report.ApprovedBy)
	assert.Nil(t, result.Reprimand)
}

func TestSubmitPreceptorReportAutoApproves(t *testing.T) {
	store := newReportStoreStub()
	svc := NewReportService(store, testPolicy(), &dispatcherStub{}, nil, nil, nil)

	result, err := svc.Submit(context.Background(), SubmitReportRequest{
		StudentID:  "S001",
		ReportedBy: "P001",
		AuthorRole: "Preceptor",
		Category:   "damages",
		Reason:     "broken chair",
	})

	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusApproved, result.Report.Status)
	require.NotNil(t, result.Report.ApprovedBy)
	assert.Equal(t, "P001", *result.Report.ApprovedBy)
}

func TestSubmitThirdReportEscalates(t *testing.T) {
	store := newReportStoreStub()
	notifier := &dispatcherStub{}
	svc := NewReportService(store, testPolicy(), notifier, nil, nil, nil)

	req := SubmitReportRequest{
		StudentID:  "S001",
		ReportedBy: "P001",
		AuthorRole: "Preceptor",
		Category:   "discipline",
		Reason:     "late return",
	}

	var last *SubmitReportResult
	for i := 0; i < 3; i++ {
		var err error
		last, err = svc.Submit(context.Background(), req)
		require.NoError(t, err)
	}

	require.NotNil(t, last.Reprimand)
	assert.Equal(t, models.SystemIssuerID, last.Reprimand.IssuedBy)
	assert.Equal(t, models.MinSeverity, last.Reprimand.Severity)
	require.NotNil(t, last.Reprimand.TriggerReportID)
	assert.Equal(t, last.Report.ID, *last.Reprimand.TriggerReportID)
	assert.Contains(t, notifier.titles(), "Reprimand issued")
}

func TestSubmitRejectsUnknownCategory(t *testing.T) {
	svc := NewReportService(newReportStoreStub(), testPolicy(), &dispatcherStub{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitReportRequest{
		StudentID:  "S001",
		ReportedBy: "P001",
		AuthorRole: "Preceptor",
		Category:   "tardiness",
		Reason:     "x",
	})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	svc := NewReportService(newReportStoreStub(), testPolicy(), &dispatcherStub{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitReportRequest{StudentID: "S001"})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSubmitPropagatesReferenceError(t *testing.T) {
	store := newReportStoreStub()
	store.failWith = appErrors.Clone(appErrors.ErrReference, "referenced student does not exist")
	notifier := &dispatcherStub{}
	svc := NewReportService(store, testPolicy(), notifier, nil, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitReportRequest{
		StudentID:  "GHOST",
		ReportedBy: "P001",
		AuthorRole: "Preceptor",
		Category:   "discipline",
		Reason:     "x",
	})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrReference))
	assert.Empty(t, notifier.titles())
}

func TestApproveRequiresPendingReport(t *testing.T) {
	store := newReportStoreStub()
	svc := NewReportService(store, testPolicy(), &dispatcherStub{}, nil, nil, nil)

	result, err := svc.Submit(context.Background(), SubmitReportRequest{
		StudentID:  "S001",
		ReportedBy: "P001",
		AuthorRole: "Preceptor",
		Category:   "discipline",
		Reason:     "x",
	})
	require.NoError(t, err)

	err = svc.Approve(context.Background(), result.Report.ID, "P002")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestRejectPendingReport(t *testing.T) {
	store := newReportStoreStub()
	svc := NewReportService(store, testPolicy(), &dispatcherStub{}, nil, nil, nil)

	result, err := svc.Submit(context.Background(), SubmitReportRequest{
		StudentID:  "S001",
		ReportedBy: "M010",
		AuthorRole: "Monitor",
		Category:   "discipline",
		Reason:     "x",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reject(context.Background(), result.Report.ID))
	assert.Equal(t, models.ReportStatusRejected, store.statuses[result.Report.ID])
}

func TestSubmitUsesProvidedReportedAt(t *testing.T) {
	store := newReportStoreStub()
	svc := NewReportService(store, testPolicy(), &dispatcherStub{}, nil, nil, nil)

	reportedAt := time.Date(2025, time.March, 10, 21, 0, 0, 0, time.UTC)
	result, err := svc.Submit(context.Background(), SubmitReportRequest{
		StudentID:  "S001",
		ReportedBy: "M010",
		AuthorRole: "Monitor",
		Category:   "cleanliness",
		Reason:     "unmade bed",
		ReportedAt: &reportedAt,
	})

	require.NoError(t, err)
	assert.Equal(t, reportedAt, result.Report.ReportedAt)
}

func TestExportReturnsEveryReport(t *testing.T) {
	store := newReportStoreStub()
	svc := NewReportService(store, testPolicy(), &dispatcherStub{}, nil, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(context.Background(), SubmitReportRequest{
			StudentID:  "S001",
			ReportedBy: "M010",
			AuthorRole: "Monitor",
			Category:   "discipline",
			Reason:     "noise after curfew",
		})
		require.NoError(t, err)
	}

	reports, err := svc.Export(context.Background(), models.ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, reports, 3)
}
