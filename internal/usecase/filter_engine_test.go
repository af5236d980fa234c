package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthropod-dashboard/internal/domain"
	"github.com/arthropod-dashboard/internal/usecase"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(site, taxon, trap string, sampleDate time.Time, count int) domain.JoinedRecord {
	return domain.JoinedRecord{
		SiteCode:   site,
		SampleDate: sampleDate,
		TaxonName:  taxon,
		TrapName:   trap,
		Count:      count,
		Region:     domain.RegionOther,
		Year:       sampleDate.Year(),
		Quarter:    domain.QuarterOf(sampleDate),
		Month:      sampleDate.Format("2006-01"),
	}
}

func testRelation() []domain.JoinedRecord {
	return []domain.JoinedRecord{
		rec("AZ-01", "Araneae", "p1", date(2018, 5, 2), 4),
		rec("AZ-01", "Formicidae", "p2", date(2019, 2, 10), 9),
		rec("AZ-02", "Araneae", "p1", date(2019, 8, 21), 2),
		rec("AZ-02", "Collembola", "p3", date(2020, 1, 5), 6),
		rec("AZ-03", "Formicidae", "p1", date(2020, 12, 30), 1),
	}
}

func TestApplyFilter_UnrestrictedReturnsAll(t *testing.T) {
	records := testRelation()
	filtered := usecase.ApplyFilter(records, domain.FilterSelection{})
	assert.Equal(t, records, filtered)
}

func TestApplyFilter_ExplicitEmptySetMatchesNothing(t *testing.T) {
	records := testRelation()

	// Deselecting everything differs from never selecting anything.
	none := usecase.ApplyFilter(records, domain.FilterSelection{Sites: []string{}})
	all := usecase.ApplyFilter(records, domain.FilterSelection{Sites: nil})

	assert.Empty(t, none)
	assert.Len(t, all, len(records))
}

func TestApplyFilter_ClausesAndCombined(t *testing.T) {
	records := testRelation()

	filtered := usecase.ApplyFilter(records, domain.FilterSelection{
		Sites: []string{"AZ-01", "AZ-02"},
		Taxa:  []string{"Araneae"},
		Years: []int{2019},
	})

	require.Len(t, filtered, 1)
	assert.Equal(t, "AZ-02", filtered[0].SiteCode)
}

func TestApplyFilter_MultiSelectIsOrWithinClause(t *testing.T) {
	filtered := usecase.ApplyFilter(testRelation(), domain.FilterSelection{
		Years: []int{2018, 2020},
	})
	require.Len(t, filtered, 3)
}

func TestApplyFilter_PreservesOrderWithoutDuplication(t *testing.T) {
	records := testRelation()
	filtered := usecase.ApplyFilter(records, domain.FilterSelection{
		Sites: []string{"AZ-02", "AZ-01"},
	})

	// Output must be a subsequence of the input: same relative order,
	// no duplication, regardless of selection order.
	require.Len(t, filtered, 4)
	assert.Equal(t, records[0], filtered[0])
	assert.Equal(t, records[1], filtered[1])
	assert.Equal(t, records[2], filtered[2])
	assert.Equal(t, records[3], filtered[3])
}

func TestApplyFilter_UnknownMembersMatchZeroRecords(t *testing.T) {
	filtered := usecase.ApplyFilter(testRelation(), domain.FilterSelection{
		Sites: []string{"NO-SUCH-SITE"},
	})
	assert.Empty(t, filtered)
}

func TestApplyFilter_TrapClause(t *testing.T) {
	filtered := usecase.ApplyFilter(testRelation(), domain.FilterSelection{
		Traps: []string{"p1"},
	})
	require.Len(t, filtered, 3)
}

func TestApplyFilter_DateRangeInclusive(t *testing.T) {
	from := date(2019, 2, 10)
	to := date(2019, 8, 21)

	filtered := usecase.ApplyFilter(testRelation(), domain.FilterSelection{
		DateFrom: &from,
		DateTo:   &to,
	})

	require.Len(t, filtered, 2)
	assert.Equal(t, "Formicidae", filtered[0].TaxonName)
	assert.Equal(t, "Araneae", filtered[1].TaxonName)
}

func TestApplyFilter_DoesNotMutateInput(t *testing.T) {
	records := testRelation()
	before := make([]domain.JoinedRecord, len(records))
	copy(before, records)

	usecase.ApplyFilter(records, domain.FilterSelection{Sites: []string{"AZ-01"}})
	assert.Equal(t, before, records)
}
