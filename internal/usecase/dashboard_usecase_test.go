package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arthropod-dashboard/internal/domain"
	"github.com/arthropod-dashboard/internal/store"
	"github.com/arthropod-dashboard/internal/usecase"
)

func dashboardFixtureStore() *store.RecordStore {
	repo := &MockDatasetRepository{}
	repo.On("LoadObservations", mock.Anything).Return([]domain.Observation{
		{SiteCode: "AZ-01", SampleDate: date(2019, 2, 1), TaxonName: "Araneae", TrapName: "p1", Count: 5},
		{SiteCode: "AZ-01", SampleDate: date(2019, 4, 2), TaxonName: "Formicidae", TrapName: "p1", Count: 3},
		{SiteCode: "AZ-02", SampleDate: date(2019, 8, 3), TaxonName: "Araneae", TrapName: "p2", Count: 7},
		{SiteCode: "AZ-03", SampleDate: date(2020, 1, 4), TaxonName: "Collembola", TrapName: "p1", Count: 2},
	}, nil)
	repo.On("LoadSiteMetadata", mock.Anything).Return([]domain.SiteMetadata{
		{SiteCode: "AZ-01", Lat: 33.45, Lon: -111.94},
		{SiteCode: "AZ-02", Lat: 33.30, Lon: -111.80},
		// AZ-03 has no coordinates
	}, nil)
	repo.On("LoadLandUse", mock.Anything).Return([]domain.LandUseClass{
		{SiteCode: "AZ-01", LandUse: domain.RegionUrban},
		{SiteCode: "AZ-02", LandUse: domain.RegionDesert},
		// AZ-03 has no land-use class
	}, nil)
	return store.NewRecordStore(repo, zap.NewNop())
}

// passthroughCache misses every read and accepts every write.
func passthroughCache() *MockCacheRepository {
	mockCache := &MockCacheRepository{}
	mockCache.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return mockCache
}

func TestDashboardUseCase_Dashboard(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewDashboardUseCase(dashboardFixtureStore(), passthroughCache(), zap.NewNop(), time.Minute)

	resp, err := uc.Dashboard(ctx, domain.FilterSelection{})
	require.NoError(t, err)

	assert.Len(t, resp.Composition, 4)
	assert.Len(t, resp.TemporalByRegion, 4)
	assert.Equal(t, domain.SummaryStats{Records: 4, Sites: 3, Taxa: 3}, resp.Summary)

	// AZ-03 lacks coordinates: present in composition, absent from the
	// spatial view, aggregated under region Other in the temporal view.
	spatialSites := make(map[string]bool)
	for _, row := range resp.SiteTotals {
		spatialSites[row.SiteCode] = true
	}
	assert.Equal(t, map[string]bool{"AZ-01": true, "AZ-02": true}, spatialSites)

	var otherTotal int
	for _, row := range resp.TemporalByRegion {
		if row.Region == domain.RegionOther {
			otherTotal += row.TotalCount
		}
	}
	assert.Equal(t, 2, otherTotal)
}

func TestDashboardUseCase_EmptySelectionYieldsEmptyViews(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewDashboardUseCase(dashboardFixtureStore(), passthroughCache(), zap.NewNop(), time.Minute)

	// Explicitly deselecting every site is a valid interaction; the
	// result is zero rows, not an error.
	resp, err := uc.Dashboard(ctx, domain.FilterSelection{Sites: []string{}})
	require.NoError(t, err)
	assert.Empty(t, resp.Composition)
	assert.Empty(t, resp.TemporalByRegion)
	assert.Empty(t, resp.SiteTotals)
	assert.Equal(t, domain.SummaryStats{}, resp.Summary)
}

func TestDashboardUseCase_FilteredComposition(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewDashboardUseCase(dashboardFixtureStore(), passthroughCache(), zap.NewNop(), time.Minute)

	rows, err := uc.Composition(ctx, domain.FilterSelection{Sites: []string{"AZ-01"}})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "Araneae", rows[0].Taxon)
	assert.Equal(t, 5, rows[0].TotalCount)
	assert.Equal(t, "Formicidae", rows[1].Taxon)
}

func TestDashboardUseCase_CacheHitSkipsRecomputation(t *testing.T) {
	ctx := context.Background()

	cachedRows := `[{"site_code":"AZ-01","taxon":"Araneae","total_count":5}]`
	mockCache := &MockCacheRepository{}
	mockCache.On("Get", mock.Anything, mock.Anything).Return([]byte(cachedRows), nil)

	datasetRepo := &MockDatasetRepository{}
	uc := usecase.NewDashboardUseCase(store.NewRecordStore(datasetRepo, zap.NewNop()), mockCache, zap.NewNop(), time.Minute)

	rows, err := uc.Composition(ctx, domain.FilterSelection{Sites: []string{"AZ-01"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Araneae", rows[0].Taxon)

	datasetRepo.AssertNotCalled(t, "LoadObservations", mock.Anything)
}

func TestDashboardUseCase_CacheFailureFallsBackToRecompute(t *testing.T) {
	ctx := context.Background()

	mockCache := &MockCacheRepository{}
	mockCache.On("Get", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	uc := usecase.NewDashboardUseCase(dashboardFixtureStore(), mockCache, zap.NewNop(), time.Minute)

	rows, err := uc.TemporalByRegion(ctx, domain.FilterSelection{})
	require.NoError(t, err)
	assert.NotEmpty(t, rows)
}

func TestDashboardUseCase_ReloadInvalidatesCaches(t *testing.T) {
	ctx := context.Background()

	mockCache := &MockCacheRepository{}
	mockCache.On("DeleteByPrefix", ctx, "dashboard:").Return(nil)
	mockCache.On("DeleteOptions", ctx).Return(nil)

	uc := usecase.NewDashboardUseCase(dashboardFixtureStore(), mockCache, zap.NewNop(), time.Minute)

	summary, err := uc.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Records)
	assert.Equal(t, 1, summary.SitesWithoutCoords)
	assert.Equal(t, 1, summary.SitesWithoutRegion)

	mockCache.AssertExpectations(t)
}
