// internal/usecase/movement_query.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/GERNAVSBIZ/movimento/internal/domain/entity"
	"github.com/GERNAVSBIZ/movimento/internal/domain/repository"
	"github.com/GERNAVSBIZ/movimento/pkg/logger"
	"github.com/GERNAVSBIZ/movimento/pkg/utils"
)

// ErrUploadNotFound reports a movement query against an upload id that was
// never ingested. The transport layer maps it to a not-found error.
var ErrUploadNotFound = errors.New("upload not found")

// MovementQuery narrows a movement listing. Zero values mean no constraint.
type MovementQuery struct {
	UploadID string
	From     *time.Time
	To       *time.Time
	Search   string
	Limit    int
}

// MovementQueryService serves upload listings and movement queries,
// enriching destinations from the aerodrome reference when available
type MovementQueryService struct {
	movementRepo  repository.MovementRepository
	uploadRepo    repository.UploadRepository
	aerodromeRepo repository.AerodromeRepository
	cache         *cache.Cache
	queryLimit    int
	logger        logger.Logger
}

// NewMovementQueryService creates a new query service. aerodromeRepo may
// be nil, which disables destination enrichment.
func NewMovementQueryService(
	movementRepo repository.MovementRepository,
	uploadRepo repository.UploadRepository,
	aerodromeRepo repository.AerodromeRepository,
	cacheTTL time.Duration,
	queryLimit int,
	logger logger.Logger,
) *MovementQueryService {
	return &MovementQueryService{
		movementRepo:  movementRepo,
		uploadRepo:    uploadRepo,
		aerodromeRepo: aerodromeRepo,
		cache:         cache.New(cacheTTL, 2*cacheTTL),
		queryLimit:    queryLimit,
		logger:        logger,
	}
}

// ListUploads returns upload metadata newest first
func (s *MovementQueryService) ListUploads(ctx context.Context) ([]*entity.Upload, error) {
	return s.uploadRepo.FindAll(ctx, s.queryLimit)
}

// GetUpload returns one upload, nil when it does not exist
func (s *MovementQueryService) GetUpload(ctx context.Context, id string) (*entity.Upload, error) {
	return s.uploadRepo.FindByID(ctx, id)
}

// QueryMovements returns the movements of one upload, newest first. The
// upload must exist and the limit is clamped to the configured maximum.
func (s *MovementQueryService) QueryMovements(ctx context.Context, query MovementQuery) ([]*entity.Movement, error) {
	upload, err := s.uploadRepo.FindByID(ctx, query.UploadID)
	if err != nil {
		return nil, err
	}
	if upload == nil {
		return nil, ErrUploadNotFound
	}

	if query.Limit <= 0 || query.Limit > s.queryLimit {
		query.Limit = s.queryLimit
	}

	movements, err := s.movementRepo.FindByUpload(ctx, repository.MovementFilter{
		UploadID: query.UploadID,
		From:     query.From,
		To:       query.To,
		Search:   query.Search,
		Limit:    query.Limit,
	})
	if err != nil {
		return nil, err
	}

	s.enrichDestinations(ctx, movements)
	return movements, nil
}

func (s *MovementQueryService) enrichDestinations(ctx context.Context, movements []*entity.Movement) {
	if s.aerodromeRepo == nil {
		return
	}

	for _, movement := range movements {
		if movement.Destination == "" || movement.Destination == utils.VALUE_MISSING {
			continue
		}
		if name, ok := s.lookupAerodrome(ctx, movement.Destination); ok {
			movement.DestinationName = name
		}
	}
}

// lookupAerodrome resolves a destination against the reference table.
// Misses are cached too, so unknown free-text destinations do not hit the
// database on every query.
func (s *MovementQueryService) lookupAerodrome(ctx context.Context, code string) (string, bool) {
	if cached, found := s.cache.Get(code); found {
		name, _ := cached.(string)
		return name, name != ""
	}

	aerodrome, err := s.aerodromeRepo.GetByCode(ctx, code)
	if err != nil || aerodrome == nil {
		s.cache.Set(code, "", cache.DefaultExpiration)
		return "", false
	}

	s.cache.Set(code, aerodrome.Name, cache.DefaultExpiration)
	return aerodrome.Name, true
}
