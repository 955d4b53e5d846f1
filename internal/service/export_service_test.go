package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
	"github.com/dormi-app/dormi-api/pkg/storage"
)

type slipSourceStub struct {
	data []byte
	err  error
}

func (s *slipSourceStub) Slip(_ context.Context, reprimandID string) ([]byte, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.data, "reprimand-" + reprimandID + ".pdf", nil
}

func newExportService(t *testing.T, slips slipSource) *ExportService {
	t.Helper()
	archive, err := storage.NewArchive(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewLinkSigner("test-secret", time.Hour)
	return NewExportService(slips, archive, signer, ExportConfig{APIPrefix: "/api/v1"}, nil)
}

func TestExportServiceSlipLinkAndDownload(t *testing.T) {
	svc := newExportService(t, &slipSourceStub{data: []byte("%PDF-1.4 slip")})

	link, err := svc.SlipLink(context.Background(), "rep-1")
	require.NoError(t, err)
	require.Equal(t, "slips/reprimand-rep-1.pdf", link.Name)
	require.Contains(t, link.URL, "/api/v1/downloads/")
	require.True(t, link.ExpiresAt.After(time.Now()))

	file, filename, err := svc.Download(link.Token)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	require.Equal(t, "reprimand-rep-1.pdf", filename)

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.4 slip"), content)
}

func TestExportServiceSlipLinkPropagatesNotFound(t *testing.T) {
	svc := newExportService(t, &slipSourceStub{err: appErrors.Clone(appErrors.ErrNotFound, "reprimand not found")})

	_, err := svc.SlipLink(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestExportServiceDownloadRejectsBadToken(t *testing.T) {
	svc := newExportService(t, &slipSourceStub{data: []byte("%PDF-1.4 slip")})

	_, _, err := svc.Download("not-a-token")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestExportServiceDownloadMissingFile(t *testing.T) {
	svc := newExportService(t, &slipSourceStub{data: []byte("%PDF-1.4 slip")})

	link, err := svc.SlipLink(context.Background(), "rep-2")
	require.NoError(t, err)

	_, err = svc.files.Purge(0)
	require.NoError(t, err)

	_, _, err = svc.Download(link.Token)
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestExportServiceCleanupKeepsFreshFiles(t *testing.T) {
	svc := newExportService(t, &slipSourceStub{data: []byte("%PDF-1.4 slip")})

	link, err := svc.SlipLink(context.Background(), "rep-3")
	require.NoError(t, err)

	purged, err := svc.Cleanup(time.Hour)
	require.NoError(t, err)
	require.Empty(t, purged)

	file, _, err := svc.Download(link.Token)
	require.NoError(t, err)
	require.NoError(t, file.Close())
}
