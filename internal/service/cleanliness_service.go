package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dormi-app/dormi-api/internal/models"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

type cleanlinessStore interface {
	Criteria(ctx context.Context) ([]models.CleanlinessCriterion, error)
	CreateReview(ctx context.Context, review *models.CleanlinessReview, items []models.CleanlinessReviewItem) error
	LatestReview(ctx context.Context, roomID int) (*models.ReviewDetail, error)
	History(ctx context.Context, roomID int) ([]models.ReviewHistoryRow, error)
	RoomScores(ctx context.Context) ([]models.RoomScoreRow, error)
	HallwayAverages(ctx context.Context, from, to time.Time) ([]models.HallwayAverage, error)
	RecentCutoffs(ctx context.Context, since time.Time, limit int) ([]models.CleanlinessCutoff, error)
	CreateCutoff(ctx context.Context, cutBy string) (*models.CleanlinessCutoff, error)
}

type activeSemesterSource interface {
	Active(ctx context.Context) (*models.Semester, error)
}

// CleanlinessService scores room inspections and aggregates hallway rankings
// between manual cutoffs.
type CleanlinessService struct {
	repo      cleanlinessStore
	semesters activeSemesterSource
	cache     *CacheService
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCleanlinessService constructs the service.
func NewCleanlinessService(repo cleanlinessStore, semesters activeSemesterSource, cache *CacheService, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CleanlinessService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanlinessService{repo: repo, semesters: semesters, cache: cache, cacheTTL: cacheTTL, metrics: metrics, validator: validate, logger: logger}
}

// Criteria lists the inspection criteria catalog, cached.
func (s *CleanlinessService) Criteria(ctx context.Context) ([]models.CleanlinessCriterion, error) {
	const key = "catalog:cleanliness_criteria"
	var criteria []models.CleanlinessCriterion
	hit, _ := s.cache.Get(ctx, key, &criteria)
	s.metrics.RecordCacheLookup(hit)
	if hit {
		return criteria, nil
	}

	criteria, err := s.repo.Criteria(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load cleanliness criteria")
	}
	if err := s.cache.Set(ctx, key, criteria, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache cleanliness criteria", zap.Error(err))
	}
	return criteria, nil
}

// ReviewItemInput scores a single criterion.
type ReviewItemInput struct {
	CriterionID int `json:"criterion_id" validate:"required"`
	Score       int `json:"score" validate:"min=0,max=10"`
}

// CreateReviewRequest is the payload for one room inspection.
type CreateReviewRequest struct {
	RoomID       int               `json:"room_id" validate:"required"`
	ReviewedBy   string            `json:"reviewed_by" validate:"required"`
	GeneralOrder int               `json:"general_order" validate:"min=0,max=10"`
	Discipline   int               `json:"discipline" validate:"min=0,max=10"`
	Notes        *string           `json:"notes"`
	Items        []ReviewItemInput `json:"items" validate:"required,min=1,dive"`
	ReviewedAt   *time.Time        `json:"reviewed_at"`
}

// CreateReview persists a scored inspection. The stored total is the item
// subtotal plus the general order and discipline scores.
func (s *CleanlinessService) CreateReview(ctx context.Context, req CreateReviewRequest) (*models.CleanlinessReview, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	reviewedAt := time.Now().UTC()
	if req.ReviewedAt != nil {
		reviewedAt = req.ReviewedAt.UTC()
	}

	subtotal := 0
	items := make([]models.CleanlinessReviewItem, 0, len(req.Items))
	for _, item := range req.Items {
		subtotal += item.Score
		items = append(items, models.CleanlinessReviewItem{CriterionID: item.CriterionID, Score: item.Score})
	}

	review := &models.CleanlinessReview{
		RoomID:       req.RoomID,
		ReviewedBy:   req.ReviewedBy,
		ReviewedAt:   reviewedAt,
		GeneralOrder: req.GeneralOrder,
		Discipline:   req.Discipline,
		Total:        subtotal + req.GeneralOrder + req.Discipline,
		Notes:        req.Notes,
	}
	if err := s.repo.CreateReview(ctx, review, items); err != nil {
		return nil, err
	}
	return review, nil
}

// LatestReview returns the most recent inspection of a room, nil-safe.
func (s *CleanlinessService) LatestReview(ctx context.Context, roomID int) (*models.ReviewDetail, error) {
	if roomID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room id is required")
	}
	detail, err := s.repo.LatestReview(ctx, roomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load latest review")
	}
	if detail == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "room has no reviews")
	}
	return detail, nil
}

// History lists all inspections of a room, newest first.
func (s *CleanlinessService) History(ctx context.Context, roomID int) ([]models.ReviewHistoryRow, error) {
	if roomID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room id is required")
	}
	rows, err := s.repo.History(ctx, roomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load review history")
	}
	return rows, nil
}

// RoomScores returns every room with its latest total.
func (s *CleanlinessService) RoomScores(ctx context.Context) ([]models.RoomScoreRow, error) {
	rows, err := s.repo.RoomScores(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load room scores")
	}
	return rows, nil
}

// Stats computes hallway averages over two windows: the running window since
// the most recent cutoff, and the published window between the two most
// recent cutoffs. With fewer cutoffs the active semester start bounds the
// window instead.
func (s *CleanlinessService) Stats(ctx context.Context) (*models.CleanlinessStats, error) {
	semester, err := s.semesters.Active(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load active semester")
	}
	if semester == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active semester")
	}

	cutoffs, err := s.repo.RecentCutoffs(ctx, semester.StartedAt, 2)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load cutoffs")
	}

	now := time.Now().UTC()
	currentFrom := semester.StartedAt
	publishedFrom := semester.StartedAt
	publishedTo := semester.StartedAt
	lastCutoff := semester.StartedAt

	switch {
	case len(cutoffs) >= 2:
		currentFrom = cutoffs[0].CutAt
		publishedFrom = cutoffs[1].CutAt
		publishedTo = cutoffs[0].CutAt
		lastCutoff = cutoffs[0].CutAt
	case len(cutoffs) == 1:
		currentFrom = cutoffs[0].CutAt
		publishedTo = cutoffs[0].CutAt
		lastCutoff = cutoffs[0].CutAt
	}

	current, err := s.repo.HallwayAverages(ctx, currentFrom, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to compute current averages")
	}

	var published []models.HallwayAverage
	if publishedTo.After(publishedFrom) {
		published, err = s.repo.HallwayAverages(ctx, publishedFrom, publishedTo)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to compute published averages")
		}
	}

	return &models.CleanlinessStats{Current: current, Published: published, LastCutoff: lastCutoff}, nil
}

// Cutoff records a manual statistics reset point.
func (s *CleanlinessService) Cutoff(ctx context.Context, cutBy string) (*models.CleanlinessCutoff, error) {
	if cutBy == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cut_by is required")
	}
	cutoff, err := s.repo.CreateCutoff(ctx, cutBy)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to record cutoff")
	}
	return cutoff, nil
}
