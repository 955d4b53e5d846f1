package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dormi-app/dormi-api/internal/models"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

type dormStore interface {
	Dormitories(ctx context.Context) ([]models.Dormitory, error)
	Hallways(ctx context.Context) ([]models.Hallway, error)
	Rooms(ctx context.Context, hallwayID int) ([]models.Room, error)
	Occupancy(ctx context.Context) ([]models.OccupancyRow, error)
}

// DormService serves the building catalogs and the occupancy map.
type DormService struct {
	repo     dormStore
	cache    *CacheService
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewDormService constructs the service.
func NewDormService(repo dormStore, cache *CacheService, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *DormService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DormService{repo: repo, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// Dormitories lists the buildings, cached.
func (s *DormService) Dormitories(ctx context.Context) ([]models.Dormitory, error) {
	const key = "catalog:dormitories"
	var dorms []models.Dormitory
	hit, _ := s.cache.Get(ctx, key, &dorms)
	s.metrics.RecordCacheLookup(hit)
	if hit {
		return dorms, nil
	}

	dorms, err := s.repo.Dormitories(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list dormitories")
	}
	if err := s.cache.Set(ctx, key, dorms, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache dormitories", zap.Error(err))
	}
	return dorms, nil
}

// Hallways lists all hallways, cached.
func (s *DormService) Hallways(ctx context.Context) ([]models.Hallway, error) {
	const key = "catalog:hallways"
	var hallways []models.Hallway
	hit, _ := s.cache.Get(ctx, key, &hallways)
	s.metrics.RecordCacheLookup(hit)
	if hit {
		return hallways, nil
	}

	hallways, err := s.repo.Hallways(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list hallways")
	}
	if err := s.cache.Set(ctx, key, hallways, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache hallways", zap.Error(err))
	}
	return hallways, nil
}

// Rooms lists the rooms of one hallway.
func (s *DormService) Rooms(ctx context.Context, hallwayID int) ([]models.Room, error) {
	if hallwayID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hallway id is required")
	}
	rooms, err := s.repo.Rooms(ctx, hallwayID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list rooms")
	}
	return rooms, nil
}

// OccupancyRoom is one room with its occupants.
type OccupancyRoom struct {
	RoomID     int      `json:"room_id"`
	RoomNumber string   `json:"room_number"`
	Capacity   int      `json:"capacity"`
	Occupants  []string `json:"occupants"`
}

// OccupancyHallway groups occupancy rows per hallway.
type OccupancyHallway struct {
	Hallway string          `json:"hallway"`
	Rooms   []OccupancyRoom `json:"rooms"`
}

// Occupancy groups the flat room/occupant rows into a per-hallway map.
func (s *DormService) Occupancy(ctx context.Context) ([]OccupancyHallway, error) {
	rows, err := s.repo.Occupancy(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load occupancy")
	}

	var out []OccupancyHallway
	hallwayIdx := map[string]int{}
	roomIdx := map[int][2]int{}
	for _, row := range rows {
		hi, ok := hallwayIdx[row.HallwayName]
		if !ok {
			hi = len(out)
			hallwayIdx[row.HallwayName] = hi
			out = append(out, OccupancyHallway{Hallway: row.HallwayName})
		}
		pos, ok := roomIdx[row.RoomID]
		if !ok {
			pos = [2]int{hi, len(out[hi].Rooms)}
			roomIdx[row.RoomID] = pos
			out[hi].Rooms = append(out[hi].Rooms, OccupancyRoom{
				RoomID:     row.RoomID,
				RoomNumber: row.RoomNumber,
				Capacity:   row.Capacity,
				Occupants:  []string{},
			})
		}
		if row.StudentName != nil {
			room := &out[pos[0]].Rooms[pos[1]]
			room.Occupants = append(room.Occupants, *row.StudentName)
		}
	}
	return out, nil
}
