package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dormi-app/dormi-api/internal/models"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
	"github.com/dormi-app/dormi-api/pkg/export"
)

type reprimandStoreStub struct {
	reprimands map[string]*models.ReprimandDetail
	levels     []models.ReprimandLevel
	levelCalls int
}

func newReprimandStoreStub() *reprimandStoreStub {
	return &reprimandStoreStub{
		reprimands: map[string]*models.ReprimandDetail{},
		levels: []models.ReprimandLevel{
			{Severity: 1, Name: "First warning"},
			{Severity: 2, Name: "Second warning"},
			{Severity: 3, Name: "Final warning"},
		},
	}
}

func (r *reprimandStoreStub) Create(_ context.Context, rep *models.Reprimand) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	r.reprimands[rep.ID] = &models.ReprimandDetail{Reprimand: *rep, StudentName: "Test Student", IssuerName: "Test Preceptor", LevelName: "First warning"}
	return nil
}

func (r *reprimandStoreStub) List(_ context.Context) ([]models.ReprimandDetail, error) {
	var out []models.ReprimandDetail
	for _, d := range r.reprimands {
		out = append(out, *d)
	}
	return out, nil
}

func (r *reprimandStoreStub) ListByStudent(_ context.Context, studentID string) ([]models.ReprimandDetail, error) {
	var out []models.ReprimandDetail
	for _, d := range r.reprimands {
		if d.StudentID == studentID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *reprimandStoreStub) Get(_ context.Context, id string) (*models.ReprimandDetail, error) {
	return r.reprimands[id], nil
}

func (r *reprimandStoreStub) Levels(_ context.Context) ([]models.ReprimandLevel, error) {
	r.levelCalls++
	return r.levels, nil
}

func (r *reprimandStoreStub) AttachSignature(_ context.Context, id, signature string) (bool, error) {
	d, ok := r.reprimands[id]
	if !ok {
		return false, nil
	}
	d.Signature = &signature
	return true, nil
}

func TestRegisterManualReprimand(t *testing.T) {
	store := newReprimandStoreStub()
	notifier := &dispatcherStub{}
	svc := NewReprimandService(store, nil, 0, export.NewPDFExporter(), notifier, nil, nil, nil)

	rep, err := svc.Register(context.Background(), RegisterReprimandRequest{
		StudentID: "S001",
		IssuedBy:  "P001",
		Severity:  2,
		Reason:    "repeated curfew violations",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, rep.ID)
	assert.Nil(t, rep.TriggerReportID)
	assert.Contains(t, notifier.titles(), "Reprimand issued")
}

func TestRegisterRejectsZeroSeverity(t *testing.T) {
	svc := NewReprimandService(newReprimandStoreStub(), nil, 0, export.NewPDFExporter(), &dispatcherStub{}, nil, nil, nil)

	_, err := svc.Register(context.Background(), RegisterReprimandRequest{
		StudentID: "S001",
		IssuedBy:  "P001",
		Severity:  0,
		Reason:    "x",
	})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestLevelsCatalog(t *testing.T) {
	store := newReprimandStoreStub()
	svc := NewReprimandService(store, nil, 0, export.NewPDFExporter(), &dispatcherStub{}, nil, nil, nil)

	levels, err := svc.Levels(context.Background())

	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, 1, levels[0].Severity)
}

func TestSlipRendersPDF(t *testing.T) {
	store := newReprimandStoreStub()
	svc := NewReprimandService(store, nil, 0, export.NewPDFExporter(), &dispatcherStub{}, nil, nil, nil)

	rep, err := svc.Register(context.Background(), RegisterReprimandRequest{
		StudentID: "S001",
		IssuedBy:  "P001",
		Severity:  1,
		Reason:    "unexcused absences",
	})
	require.NoError(t, err)

	payload, filename, err := svc.Slip(context.Background(), rep.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, payload)
	assert.Equal(t, "reprimand-"+rep.ID+".pdf", filename)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestSlipUnknownReprimand(t *testing.T) {
	svc := NewReprimandService(newReprimandStoreStub(), nil, 0, export.NewPDFExporter(), &dispatcherStub{}, nil, nil, nil)

	_, _, err := svc.Slip(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAttachSignatureMissingReprimand(t *testing.T) {
	svc := NewReprimandService(newReprimandStoreStub(), nil, 0, export.NewPDFExporter(), &dispatcherStub{}, nil, nil, nil)

	err := svc.AttachSignature(context.Background(), "missing", "data:image/png;base64,abc")

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
