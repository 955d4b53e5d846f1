package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
	"github.com/dormi-app/dormi-api/pkg/storage"
)

type slipSource interface {
	Slip(ctx context.Context, reprimandID string) ([]byte, string, error)
}

type fileStore interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Purge(retention time.Duration) ([]string, error)
}

// ExportConfig tunes document archiving and download links.
type ExportConfig struct {
	APIPrefix string
	Retention time.Duration
}

// SlipLink carries the signed download reference for an archived slip.
type SlipLink struct {
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportService archives rendered slip documents and mints signed
// download links so they can be fetched without an Authorization header.
type ExportService struct {
	slips  slipSource
	files  fileStore
	signer *storage.LinkSigner
	cfg    ExportConfig
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(slips slipSource, files fileStore, signer *storage.LinkSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	return &ExportService{
		slips:  slips,
		files:  files,
		signer: signer,
		cfg:    cfg,
		logger: logger,
	}
}

// SlipLink renders the reprimand slip, stores it in the archive and
// returns a time-limited download reference.
func (s *ExportService) SlipLink(ctx context.Context, reprimandID string) (*SlipLink, error) {
	data, filename, err := s.slips.Slip(ctx, reprimandID)
	if err != nil {
		return nil, err
	}

	name := path.Join("slips", filename)
	if _, err := s.files.Save(name, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive slip")
	}

	token, expiresAt, err := s.signer.Sign(reprimandID, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &SlipLink{
		Name:      name,
		Token:     token,
		URL:       fmt.Sprintf("%s/downloads/%s", prefix, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Download validates the token and opens the archived file. The second
// return value is the bare file name for the Content-Disposition header.
func (s *ExportService) Download(token string) (*os.File, string, error) {
	_, name, err := s.signer.Verify(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download link")
	}
	file, err := s.files.Open(name)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "archived file no longer exists")
	}
	return file, path.Base(name), nil
}

// Cleanup removes archived files past the retention window and returns
// the purged names.
func (s *ExportService) Cleanup(retention time.Duration) ([]string, error) {
	if retention <= 0 {
		retention = s.cfg.Retention
	}
	purged, err := s.files.Purge(retention)
	if err != nil {
		return nil, err
	}
	if len(purged) > 0 {
		s.logger.Sugar().Infow("archive cleanup", "purged", len(purged))
	}
	return purged, nil
}
