package usecase_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthropod-dashboard/internal/domain"
	"github.com/arthropod-dashboard/internal/usecase"
)

func TestAggregateComposition_TopTenWithOtherBucket(t *testing.T) {
	// 12 taxa at one site: ranks 1..12 with counts 120, 110, ... 10.
	records := make([]domain.JoinedRecord, 0, 12)
	for i := 1; i <= 12; i++ {
		records = append(records,
			rec("AZ-01", fmt.Sprintf("taxon-%02d", i), "p1", date(2019, 5, 1), (13-i)*10))
	}

	rows := usecase.AggregateComposition(records)

	// Top 10 kept plus one Other row.
	require.Len(t, rows, 11)
	assert.Equal(t, "taxon-01", rows[0].Taxon)
	assert.Equal(t, 120, rows[0].TotalCount)
	assert.Equal(t, "taxon-10", rows[9].Taxon)

	other := rows[10]
	assert.Equal(t, domain.OtherTaxonLabel, other.Taxon)
	assert.Equal(t, 20+10, other.TotalCount) // taxon-11 + taxon-12
}

func TestAggregateComposition_SumConservation(t *testing.T) {
	records := make([]domain.JoinedRecord, 0, 30)
	expected := map[string]int{}
	for i := 0; i < 15; i++ {
		site := fmt.Sprintf("AZ-%02d", i%3)
		count := (i*7)%13 + 1
		records = append(records,
			rec(site, fmt.Sprintf("taxon-%02d", i), "p1", date(2019, 5, 1), count),
			rec(site, fmt.Sprintf("taxon-%02d", i), "p2", date(2019, 7, 1), count+1))
		expected[site] += 2*count + 1
	}

	rows := usecase.AggregateComposition(records)

	// Top-10 split plus Other partitions each site's total exactly:
	// no double counting, no loss.
	got := map[string]int{}
	for _, row := range rows {
		got[row.SiteCode] += row.TotalCount
	}
	assert.Equal(t, expected, got)
}

func TestAggregateComposition_TieBreakByTaxonNameAscending(t *testing.T) {
	// Two taxa share the maximum count: the lexicographically smaller
	// name must rank first.
	records := []domain.JoinedRecord{
		rec("AZ-01", "Lycosidae", "p1", date(2019, 5, 1), 50),
		rec("AZ-01", "Araneae", "p1", date(2019, 5, 1), 50),
		rec("AZ-01", "Collembola", "p1", date(2019, 5, 1), 3),
	}

	rows := usecase.AggregateComposition(records)
	require.Len(t, rows, 3)
	assert.Equal(t, "Araneae", rows[0].Taxon)
	assert.Equal(t, "Lycosidae", rows[1].Taxon)
}

func TestAggregateComposition_PerSiteIndependence(t *testing.T) {
	// A taxon kept at one site may still fall into Other at another.
	records := []domain.JoinedRecord{}
	for i := 1; i <= 11; i++ {
		records = append(records,
			rec("AZ-01", fmt.Sprintf("taxon-%02d", i), "p1", date(2019, 5, 1), 100-i))
	}
	records = append(records, rec("AZ-02", "taxon-11", "p1", date(2019, 5, 1), 7))

	rows := usecase.AggregateComposition(records)

	var az01Other, az02Taxon11 bool
	for _, row := range rows {
		if row.SiteCode == "AZ-01" && row.Taxon == domain.OtherTaxonLabel {
			az01Other = true
			assert.Equal(t, 100-11, row.TotalCount)
		}
		if row.SiteCode == "AZ-02" && row.Taxon == "taxon-11" {
			az02Taxon11 = true
		}
	}
	assert.True(t, az01Other, "taxon-11 should collapse into Other at AZ-01")
	assert.True(t, az02Taxon11, "taxon-11 should be kept at AZ-02")
}

func TestAggregateComposition_NoOtherRowWhenTenOrFewerTaxa(t *testing.T) {
	records := []domain.JoinedRecord{
		rec("AZ-01", "Araneae", "p1", date(2019, 5, 1), 4),
		rec("AZ-01", "Formicidae", "p1", date(2019, 5, 1), 2),
	}

	rows := usecase.AggregateComposition(records)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.NotEqual(t, domain.OtherTaxonLabel, row.Taxon)
	}
}

func TestAggregateComposition_EmptyInputEmptyOutput(t *testing.T) {
	assert.Empty(t, usecase.AggregateComposition(nil))
}

func TestAggregateTemporalByRegion(t *testing.T) {
	records := []domain.JoinedRecord{
		rec("AZ-01", "Araneae", "p1", date(2019, 2, 1), 5),  // Q1
		rec("AZ-01", "Araneae", "p1", date(2019, 3, 31), 2), // Q1
		rec("AZ-01", "Araneae", "p1", date(2019, 4, 1), 3),  // Q2
		rec("AZ-02", "Araneae", "p1", date(2019, 11, 9), 8), // Q4
	}
	records[0].Region = domain.RegionUrban
	records[1].Region = domain.RegionUrban
	records[2].Region = domain.RegionUrban
	records[3].Region = domain.RegionDesert

	rows := usecase.AggregateTemporalByRegion(records)

	// Empty (region, quarter) pairs are omitted, not zero-filled.
	require.Len(t, rows, 3)
	assert.Equal(t, domain.RegionDesert, rows[0].Region)
	assert.Equal(t, domain.Q4, rows[0].Quarter)
	assert.Equal(t, 8, rows[0].TotalCount)
	assert.Equal(t, domain.RegionUrban, rows[1].Region)
	assert.Equal(t, domain.Q1, rows[1].Quarter)
	assert.Equal(t, 7, rows[1].TotalCount)
	assert.Equal(t, domain.Q2, rows[2].Quarter)
}

func TestAggregateTemporalByRegion_DefaultedRegionAggregatesUnderOther(t *testing.T) {
	// A site absent from the land-use relation carries region Other
	// out of the join and must aggregate under it.
	records := []domain.JoinedRecord{
		rec("AZ-99", "Araneae", "p1", date(2019, 7, 1), 6),
	}

	rows := usecase.AggregateTemporalByRegion(records)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.RegionOther, rows[0].Region)
	assert.Equal(t, domain.Q3, rows[0].Quarter)
	assert.Equal(t, 6, rows[0].TotalCount)
}

func TestAggregateSiteTotals_ExcludesSitesWithoutCoordinates(t *testing.T) {
	lat1, lon1 := 33.45, -111.94
	lat2, lon2 := 33.30, -111.80

	records := []domain.JoinedRecord{
		rec("AZ-01", "Araneae", "p1", date(2019, 5, 1), 4),
		rec("AZ-01", "Formicidae", "p1", date(2019, 6, 1), 6),
		rec("AZ-02", "Araneae", "p1", date(2019, 5, 1), 3),
		rec("AZ-03", "Araneae", "p1", date(2019, 5, 1), 9), // no coords
	}
	records[0].Lat, records[0].Lon = &lat1, &lon1
	records[1].Lat, records[1].Lon = &lat1, &lon1
	records[2].Lat, records[2].Lon = &lat2, &lon2

	rows := usecase.AggregateSiteTotals(records)

	require.Len(t, rows, 2)
	assert.Equal(t, "AZ-01", rows[0].SiteCode)
	assert.Equal(t, 10, rows[0].TotalCount)
	assert.Equal(t, 33.45, rows[0].Lat)
	assert.Equal(t, "AZ-02", rows[1].SiteCode)

	// The coordinate-less site is excluded here but must survive in
	// the non-spatial aggregates.
	comp := usecase.AggregateComposition(records)
	temporal := usecase.AggregateTemporalByRegion(records)
	var inComposition bool
	for _, row := range comp {
		if row.SiteCode == "AZ-03" {
			inComposition = true
		}
	}
	assert.True(t, inComposition)
	total := 0
	for _, row := range temporal {
		total += row.TotalCount
	}
	assert.Equal(t, 22, total)
}

func TestAggregateMonthlyAbundance(t *testing.T) {
	records := []domain.JoinedRecord{
		rec("AZ-02", "Araneae", "p1", date(2019, 5, 2), 3),
		rec("AZ-01", "Araneae", "p1", date(2019, 5, 9), 4),
		rec("AZ-01", "Formicidae", "p1", date(2019, 5, 20), 6),
		rec("AZ-01", "Araneae", "p1", date(2019, 6, 1), 1),
	}

	rows := usecase.AggregateMonthlyAbundance(records)

	require.Len(t, rows, 3)
	assert.Equal(t, domain.MonthlyAbundanceRow{Month: "2019-05", SiteCode: "AZ-01", TotalCount: 10}, rows[0])
	assert.Equal(t, domain.MonthlyAbundanceRow{Month: "2019-05", SiteCode: "AZ-02", TotalCount: 3}, rows[1])
	assert.Equal(t, domain.MonthlyAbundanceRow{Month: "2019-06", SiteCode: "AZ-01", TotalCount: 1}, rows[2])
}

func TestAggregateDiversity(t *testing.T) {
	records := []domain.JoinedRecord{
		rec("AZ-01", "Araneae", "p1", date(2019, 5, 1), 2),
		rec("AZ-01", "Formicidae", "p1", date(2019, 6, 1), 2),
		rec("AZ-01", "Araneae", "p1", date(2020, 5, 1), 5),
	}

	rows := usecase.AggregateDiversity(records)

	require.Len(t, rows, 2)
	assert.Equal(t, 2019, rows[0].Year)
	assert.Equal(t, 2, rows[0].Richness)
	// Two taxa with equal counts: H = ln 2.
	assert.InDelta(t, math.Log(2), rows[0].Shannon, 1e-9)

	assert.Equal(t, 2020, rows[1].Year)
	assert.Equal(t, 1, rows[1].Richness)
	assert.InDelta(t, 0, rows[1].Shannon, 1e-9)
}

func TestAggregateDiversity_ZeroCountTaxaDoNotContribute(t *testing.T) {
	records := []domain.JoinedRecord{
		rec("AZ-01", "Araneae", "p1", date(2019, 5, 1), 3),
		rec("AZ-01", "Formicidae", "p1", date(2019, 5, 1), 0),
	}

	rows := usecase.AggregateDiversity(records)
	require.Len(t, rows, 1)
	// Richness counts observed taxa; Shannon ignores the zero count.
	assert.Equal(t, 2, rows[0].Richness)
	assert.InDelta(t, 0, rows[0].Shannon, 1e-9)
}

func TestSummarize(t *testing.T) {
	stats := usecase.Summarize(testRelation())
	assert.Equal(t, domain.SummaryStats{Records: 5, Sites: 3, Taxa: 3}, stats)

	assert.Equal(t, domain.SummaryStats{}, usecase.Summarize(nil))
}

func TestAggregatorsAreDeterministic(t *testing.T) {
	records := testRelation()
	sel := domain.FilterSelection{Years: []int{2019, 2020}}

	first := usecase.AggregateComposition(usecase.ApplyFilter(records, sel))
	second := usecase.AggregateComposition(usecase.ApplyFilter(records, sel))
	assert.Equal(t, first, second)

	firstTemp := usecase.AggregateTemporalByRegion(usecase.ApplyFilter(records, sel))
	secondTemp := usecase.AggregateTemporalByRegion(usecase.ApplyFilter(records, sel))
	assert.Equal(t, firstTemp, secondTemp)
}
