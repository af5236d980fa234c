// Package store holds the materialized, read-only joined relation the
// whole pipeline operates on: observations left-joined to site
// coordinates and land-use classes, with Year, Quarter and Month
// derived once at build time.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arthropod-dashboard/internal/domain"
	"github.com/arthropod-dashboard/internal/domain/repository"
)

// RecordStore builds the joined relation lazily on first use and serves
// it read-only afterwards. Reload is the one invalidation hook: it
// rebuilds from the dataset repository on demand. Safe for concurrent
// readers; the slice handed out must never be mutated.
type RecordStore struct {
	repo   repository.DatasetRepository
	logger *zap.Logger

	mu      sync.RWMutex
	records []domain.JoinedRecord
	summary domain.LoadSummary
	loaded  bool
}

func NewRecordStore(repo repository.DatasetRepository, logger *zap.Logger) *RecordStore {
	return &RecordStore{
		repo:   repo,
		logger: logger,
	}
}

// Snapshot returns the joined relation, building it on first call.
func (s *RecordStore) Snapshot(ctx context.Context) ([]domain.JoinedRecord, error) {
	s.mu.RLock()
	if s.loaded {
		records := s.records
		s.mu.RUnlock()
		return records, nil
	}
	s.mu.RUnlock()

	if err := s.load(ctx, false); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, nil
}

// Reload rebuilds the joined relation from the source relations and
// returns the new load summary. On failure the previous relation stays
// in place untouched.
func (s *RecordStore) Reload(ctx context.Context) (domain.LoadSummary, error) {
	if err := s.load(ctx, true); err != nil {
		return domain.LoadSummary{}, err
	}
	return s.Summary(), nil
}

// Summary returns the stats of the most recent successful build.
func (s *RecordStore) Summary() domain.LoadSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// Loaded reports whether a build has completed.
func (s *RecordStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *RecordStore) load(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A concurrent first caller may have built the relation while we
	// waited on the lock.
	if s.loaded && !force {
		return nil
	}

	started := time.Now()

	observations, err := s.repo.LoadObservations(ctx)
	if err != nil {
		return fmt.Errorf("load observations: %w", err)
	}
	metadata, err := s.repo.LoadSiteMetadata(ctx)
	if err != nil {
		return fmt.Errorf("load site metadata: %w", err)
	}
	landUse, err := s.repo.LoadLandUse(ctx)
	if err != nil {
		return fmt.Errorf("load land use: %w", err)
	}

	records, summary := join(observations, metadata, landUse, s.logger)

	s.records = records
	s.summary = summary
	s.loaded = true

	s.logger.Info("Joined relation built",
		zap.Int("records", summary.Records),
		zap.Int("sites", summary.Sites),
		zap.Int("sites_without_coords", summary.SitesWithoutCoords),
		zap.Int("sites_without_region", summary.SitesWithoutRegion),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

// join left-joins observations to site metadata and land-use classes on
// site code. Unmatched metadata leaves coordinates absent (never zero);
// unmatched land use assigns region Other. Both are warnings, not
// errors: observations are never dropped for incomplete references.
func join(
	observations []domain.Observation,
	metadata []domain.SiteMetadata,
	landUse []domain.LandUseClass,
	logger *zap.Logger,
) ([]domain.JoinedRecord, domain.LoadSummary) {
	coords := make(map[string]domain.SiteMetadata, len(metadata))
	for _, m := range metadata {
		if _, exists := coords[m.SiteCode]; !exists {
			coords[m.SiteCode] = m
		}
	}

	regions := make(map[string]domain.Region, len(landUse))
	for _, lu := range landUse {
		if _, exists := regions[lu.SiteCode]; !exists {
			regions[lu.SiteCode] = lu.LandUse
		}
	}

	var (
		records       = make([]domain.JoinedRecord, 0, len(observations))
		sites         = make(map[string]bool)
		warnedCoords  = make(map[string]bool)
		warnedRegions = make(map[string]bool)
	)

	for _, obs := range observations {
		rec := domain.JoinedRecord{
			SiteCode:   obs.SiteCode,
			SampleDate: obs.SampleDate,
			TaxonName:  obs.TaxonName,
			TrapName:   obs.TrapName,
			Count:      obs.Count,
			Region:     domain.RegionOther,
			Year:       obs.SampleDate.Year(),
			Quarter:    domain.QuarterOf(obs.SampleDate),
			Month:      obs.SampleDate.Format("2006-01"),
		}

		if m, ok := coords[obs.SiteCode]; ok {
			lat, lon := m.Lat, m.Lon
			rec.Lat, rec.Lon = &lat, &lon
		} else if !warnedCoords[obs.SiteCode] {
			warnedCoords[obs.SiteCode] = true
			logger.Warn("Site has no coordinate metadata, excluded from spatial view",
				zap.String("site_code", obs.SiteCode))
		}

		if region, ok := regions[obs.SiteCode]; ok {
			rec.Region = region
		} else if !warnedRegions[obs.SiteCode] {
			warnedRegions[obs.SiteCode] = true
			logger.Warn("Site has no land-use class, defaulting region to Other",
				zap.String("site_code", obs.SiteCode))
		}

		sites[obs.SiteCode] = true
		records = append(records, rec)
	}

	summary := domain.LoadSummary{
		Records:            len(records),
		Sites:              len(sites),
		SitesWithoutCoords: len(warnedCoords),
		SitesWithoutRegion: len(warnedRegions),
		LoadedAt:           time.Now().UTC(),
	}
	return records, summary
}
