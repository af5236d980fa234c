package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/arthropod-dashboard/internal/domain"
	"github.com/arthropod-dashboard/internal/domain/repository"
	"github.com/arthropod-dashboard/internal/store"
)

// OptionsUseCase derives the selectable filter domains from the entire
// unfiltered relation. The domains are independent of current filter
// state: the choices offered to the UI never shrink as filters narrow.
type OptionsUseCase struct {
	store     *store.RecordStore
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewOptionsUseCase создает новый экземпляр OptionsUseCase
func NewOptionsUseCase(
	recordStore *store.RecordStore,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *OptionsUseCase {
	return &OptionsUseCase{
		store:     recordStore,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// Options возвращает домены фильтров, используя кеш когда возможно
func (uc *OptionsUseCase) Options(ctx context.Context) (*domain.FilterOptions, error) {
	// 1. Check cache
	cached, err := uc.cacheRepo.GetOptions(ctx)
	if err == nil && cached != nil {
		uc.logger.Debug("Filter options fetched from cache")
		return cached, nil
	}
	if err != nil {
		uc.logger.Warn("Failed to get options from cache", zap.Error(err))
	}

	// 2. Derive from the joined relation
	records, err := uc.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot joined relation: %w", err)
	}
	options := deriveOptions(records)

	// 3. Cache for the configured TTL
	if err := uc.cacheRepo.SetOptions(ctx, options, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache filter options", zap.Error(err))
		// Options are already derived, so the error is not returned
	}

	return options, nil
}

// deriveOptions computes the selectable domains: sorted site and year
// lists, sorted trap list, the unfiltered top-100 taxa and the overall
// date range.
func deriveOptions(records []domain.JoinedRecord) *domain.FilterOptions {
	sites := make(map[string]bool)
	traps := make(map[string]bool)
	years := make(map[int]bool)
	taxonTotals := make(map[string]int)

	options := &domain.FilterOptions{}
	for i, rec := range records {
		sites[rec.SiteCode] = true
		years[rec.Year] = true
		if rec.TrapName != "" {
			traps[rec.TrapName] = true
		}
		taxonTotals[rec.TaxonName] += rec.Count

		if i == 0 || rec.SampleDate.Before(options.MinDate) {
			options.MinDate = rec.SampleDate
		}
		if i == 0 || rec.SampleDate.After(options.MaxDate) {
			options.MaxDate = rec.SampleDate
		}
	}

	options.Sites = sortedStringSet(sites)
	options.Traps = sortedStringSet(traps)
	options.Taxa = topRankedKeys(taxonTotals, optionsTopTaxa)

	options.Years = make([]int, 0, len(years))
	for year := range years {
		options.Years = append(options.Years, year)
	}
	sort.Ints(options.Years)

	return options
}

func sortedStringSet(set map[string]bool) []string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
