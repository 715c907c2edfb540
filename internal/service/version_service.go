package service

import (
	"context"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
	"github.com/youpolonia/cms-sub038/internal/repository"
)

// VersionService owns content version lifecycle: creation with monotonic
// numbering and hash-based no-op detection, lookups, and promotion to
// current on behalf of the due-event sweep.
type VersionService struct {
	versionRepo  repository.VersionRepository
	scheduleRepo repository.ScheduleRepository
}

// NewVersionService creates a new VersionService
func NewVersionService(versionRepo repository.VersionRepository, scheduleRepo repository.ScheduleRepository) *VersionService {
	return &VersionService{
		versionRepo:  versionRepo,
		scheduleRepo: scheduleRepo,
	}
}

// CreateVersion saves a new draft version of a content item. The version
// number is assigned by storage inside the create transaction; a payload
// identical to the current published version is rejected as a no-op save.
func (s *VersionService) CreateVersion(ctx context.Context, contentID uint64, payload, authorID, tenantID string) (*domain.ContentVersion, error) {
	if contentID == 0 || payload == "" {
		return nil, common.ErrInvalidInput
	}

	version := &domain.ContentVersion{
		ContentID:   contentID,
		TenantID:    tenantID,
		ContentData: payload,
		VersionHash: domain.ComputeVersionHash(payload),
		Status:      domain.VersionStatusDraft,
		IsCurrent:   false,
		CreatedBy:   authorID,
	}

	if err := s.versionRepo.CreateNext(ctx, version); err != nil {
		return nil, err
	}
	return version, nil
}

// GetVersions returns the current version plus every version with an
// active scheduled event.
func (s *VersionService) GetVersions(ctx context.Context, contentID uint64, tenantID string) (*domain.ContentVersions, error) {
	if contentID == 0 {
		return nil, common.ErrInvalidInput
	}

	current, err := s.versionRepo.FindCurrent(ctx, contentID, tenantID)
	if err != nil {
		return nil, err
	}

	active, err := s.scheduleRepo.FindActiveByContent(ctx, contentID, tenantID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(active))
	seen := make(map[uint64]bool, len(active))
	for _, e := range active {
		if !seen[e.VersionID] {
			seen[e.VersionID] = true
			ids = append(ids, e.VersionID)
		}
	}

	pending, err := s.versionRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &domain.ContentVersions{Current: current, Pending: pending}, nil
}

// GetVersion loads one version by id
func (s *VersionService) GetVersion(ctx context.Context, versionID uint64) (*domain.ContentVersion, error) {
	return s.versionRepo.FindByID(ctx, versionID)
}

// MarkCurrent promotes a version to current. Reserved for the due-event
// sweep; everything else reaches published state through scheduling.
func (s *VersionService) MarkCurrent(ctx context.Context, versionID uint64) error {
	return s.versionRepo.MarkCurrent(ctx, versionID)
}
