package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/arthropod-dashboard/internal/domain"
	"github.com/arthropod-dashboard/internal/domain/repository"
	"github.com/arthropod-dashboard/internal/store"
	"github.com/arthropod-dashboard/internal/usecase/dto"
)

const cachePrefix = "dashboard:"

// DashboardUseCase runs the filtering-and-aggregation pipeline for one
// interaction: snapshot the joined relation, apply the selection, feed
// the filtered subsequence to the requested aggregators. Every
// aggregation is a pure function of (relation, selection), so results
// are cached per canonical selection.
type DashboardUseCase struct {
	store     *store.RecordStore
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewDashboardUseCase создает новый экземпляр DashboardUseCase
func NewDashboardUseCase(
	recordStore *store.RecordStore,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *DashboardUseCase {
	return &DashboardUseCase{
		store:     recordStore,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// Dashboard computes every view plus the summary for one selection.
func (uc *DashboardUseCase) Dashboard(ctx context.Context, sel domain.FilterSelection) (*dto.DashboardResponse, error) {
	var response dto.DashboardResponse
	if ok := uc.fromCache(ctx, "all", sel, &response); ok {
		return &response, nil
	}

	filtered, err := uc.filtered(ctx, sel)
	if err != nil {
		return nil, err
	}

	response = dto.DashboardResponse{
		Composition:      AggregateComposition(filtered),
		TemporalByRegion: AggregateTemporalByRegion(filtered),
		SiteTotals:       AggregateSiteTotals(filtered),
		MonthlyAbundance: AggregateMonthlyAbundance(filtered),
		Diversity:        AggregateDiversity(filtered),
		Summary:          Summarize(filtered),
	}

	uc.toCache(ctx, "all", sel, response)
	return &response, nil
}

// Composition - вид "состав сообщества" (top-10 таксонов на сайт)
func (uc *DashboardUseCase) Composition(ctx context.Context, sel domain.FilterSelection) ([]domain.CompositionRow, error) {
	var rows []domain.CompositionRow
	if ok := uc.fromCache(ctx, "composition", sel, &rows); ok {
		return rows, nil
	}

	filtered, err := uc.filtered(ctx, sel)
	if err != nil {
		return nil, err
	}

	rows = AggregateComposition(filtered)
	uc.toCache(ctx, "composition", sel, rows)
	return rows, nil
}

// TemporalByRegion - вид "кварталы по землепользованию"
func (uc *DashboardUseCase) TemporalByRegion(ctx context.Context, sel domain.FilterSelection) ([]domain.RegionQuarterRow, error) {
	var rows []domain.RegionQuarterRow
	if ok := uc.fromCache(ctx, "temporal", sel, &rows); ok {
		return rows, nil
	}

	filtered, err := uc.filtered(ctx, sel)
	if err != nil {
		return nil, err
	}

	rows = AggregateTemporalByRegion(filtered)
	uc.toCache(ctx, "temporal", sel, rows)
	return rows, nil
}

// SiteTotals - вид "карта сайтов" (размер пузыря = суммарный счет)
func (uc *DashboardUseCase) SiteTotals(ctx context.Context, sel domain.FilterSelection) ([]domain.SiteTotalRow, error) {
	var rows []domain.SiteTotalRow
	if ok := uc.fromCache(ctx, "spatial", sel, &rows); ok {
		return rows, nil
	}

	filtered, err := uc.filtered(ctx, sel)
	if err != nil {
		return nil, err
	}

	rows = AggregateSiteTotals(filtered)
	uc.toCache(ctx, "spatial", sel, rows)
	return rows, nil
}

// MonthlyAbundance - временной ряд численности по месяцам
func (uc *DashboardUseCase) MonthlyAbundance(ctx context.Context, sel domain.FilterSelection) ([]domain.MonthlyAbundanceRow, error) {
	var rows []domain.MonthlyAbundanceRow
	if ok := uc.fromCache(ctx, "monthly", sel, &rows); ok {
		return rows, nil
	}

	filtered, err := uc.filtered(ctx, sel)
	if err != nil {
		return nil, err
	}

	rows = AggregateMonthlyAbundance(filtered)
	uc.toCache(ctx, "monthly", sel, rows)
	return rows, nil
}

// Diversity - метрики разнообразия по сайтам и годам
func (uc *DashboardUseCase) Diversity(ctx context.Context, sel domain.FilterSelection) ([]domain.DiversityRow, error) {
	var rows []domain.DiversityRow
	if ok := uc.fromCache(ctx, "diversity", sel, &rows); ok {
		return rows, nil
	}

	filtered, err := uc.filtered(ctx, sel)
	if err != nil {
		return nil, err
	}

	rows = AggregateDiversity(filtered)
	uc.toCache(ctx, "diversity", sel, rows)
	return rows, nil
}

// Reload rebuilds the joined relation and invalidates every cached
// aggregate and the options domain.
func (uc *DashboardUseCase) Reload(ctx context.Context) (domain.LoadSummary, error) {
	summary, err := uc.store.Reload(ctx)
	if err != nil {
		return domain.LoadSummary{}, err
	}

	if err := uc.cacheRepo.DeleteByPrefix(ctx, cachePrefix); err != nil {
		uc.logger.Warn("Failed to invalidate aggregate cache", zap.Error(err))
	}
	if err := uc.cacheRepo.DeleteOptions(ctx); err != nil {
		uc.logger.Warn("Failed to invalidate options cache", zap.Error(err))
	}

	uc.logger.Info("Dataset reloaded",
		zap.Int("records", summary.Records),
		zap.Int("sites", summary.Sites),
	)
	return summary, nil
}

// Summary returns the load summary of the current joined relation.
func (uc *DashboardUseCase) Summary() (domain.LoadSummary, bool) {
	return uc.store.Summary(), uc.store.Loaded()
}

func (uc *DashboardUseCase) filtered(ctx context.Context, sel domain.FilterSelection) ([]domain.JoinedRecord, error) {
	records, err := uc.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot joined relation: %w", err)
	}
	return ApplyFilter(records, sel), nil
}

// fromCache fills target from a cached view. Cache failures degrade to
// recomputation with a warning, never to a request failure.
func (uc *DashboardUseCase) fromCache(ctx context.Context, view string, sel domain.FilterSelection, target interface{}) bool {
	data, err := uc.cacheRepo.Get(ctx, cacheKey(view, sel))
	if err != nil {
		uc.logger.Warn("Failed to get aggregate from cache",
			zap.String("view", view), zap.Error(err))
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		uc.logger.Warn("Failed to unmarshal cached aggregate",
			zap.String("view", view), zap.Error(err))
		return false
	}

	uc.logger.Debug("Aggregate fetched from cache", zap.String("view", view))
	return true
}

func (uc *DashboardUseCase) toCache(ctx context.Context, view string, sel domain.FilterSelection, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		uc.logger.Warn("Failed to marshal aggregate for cache",
			zap.String("view", view), zap.Error(err))
		return
	}
	if err := uc.cacheRepo.Set(ctx, cacheKey(view, sel), data, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache aggregate",
			zap.String("view", view), zap.Error(err))
	}
}

// cacheKey hashes the canonical form of a selection: nil sets stay nil,
// explicit sets are sorted copies, so member order never splits the
// cache and the nil-vs-empty distinction survives.
func cacheKey(view string, sel domain.FilterSelection) string {
	canonical := struct {
		Sites    []string   `json:"sites"`
		Taxa     []string   `json:"taxa"`
		Years    []int      `json:"years"`
		Traps    []string   `json:"traps"`
		DateFrom *time.Time `json:"date_from"`
		DateTo   *time.Time `json:"date_to"`
	}{
		Sites:    sortedCopy(sel.Sites),
		Taxa:     sortedCopy(sel.Taxa),
		Years:    sortedIntCopy(sel.Years),
		Traps:    sortedCopy(sel.Traps),
		DateFrom: sel.DateFrom,
		DateTo:   sel.DateTo,
	}

	data, _ := json.Marshal(canonical)
	sum := sha256.Sum256(data)
	return cachePrefix + view + ":" + hex.EncodeToString(sum[:16])
}

func sortedCopy(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

func sortedIntCopy(values []int) []int {
	if values == nil {
		return nil
	}
	out := make([]int, len(values))
	copy(out, values)
	sort.Ints(out)
	return out
}
