package usecase

import (
	"math"
	"sort"

	"github.com/arthropod-dashboard/internal/domain"
)

// Number of taxa kept per site before the rest collapse into "Other".
const compositionTopN = 10

// Size of the taxon filter's selectable universe.
const optionsTopTaxa = 100

var quarterOrder = map[domain.Quarter]int{domain.Q1: 1, domain.Q2: 2, domain.Q3: 3, domain.Q4: 4}

// topRankedKeys is the shared rank-and-truncate operation: keys sorted
// by measure descending, ties broken by key ascending for determinism,
// truncated to limit. Both the top-100 selectable taxa (unfiltered) and
// the per-site top-10 composition (filtered) are instances of it.
func topRankedKeys(totals map[string]int, limit int) []string {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if totals[keys[i]] != totals[keys[j]] {
			return totals[keys[i]] > totals[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

// AggregateComposition sums counts by (site, taxon), keeps the top 10
// taxa per site and collapses the remainder into the "Other" bucket, so
// the per-site totals partition exactly. Sites with no matching records
// are omitted. Rows are ordered site ascending, then kept taxa by count
// descending (name ascending on ties), with "Other" last.
func AggregateComposition(filtered []domain.JoinedRecord) []domain.CompositionRow {
	bySite := make(map[string]map[string]int)
	for _, rec := range filtered {
		taxa, ok := bySite[rec.SiteCode]
		if !ok {
			taxa = make(map[string]int)
			bySite[rec.SiteCode] = taxa
		}
		taxa[rec.TaxonName] += rec.Count
	}

	sites := sortedKeys(bySite)

	rows := make([]domain.CompositionRow, 0, len(bySite)*(compositionTopN+1))
	for _, site := range sites {
		taxa := bySite[site]
		kept := topRankedKeys(taxa, compositionTopN)

		keptSet := make(map[string]bool, len(kept))
		for _, taxon := range kept {
			keptSet[taxon] = true
			rows = append(rows, domain.CompositionRow{
				SiteCode:   site,
				Taxon:      taxon,
				TotalCount: taxa[taxon],
			})
		}

		other := 0
		for taxon, count := range taxa {
			if !keptSet[taxon] {
				other += count
			}
		}
		if other > 0 {
			rows = append(rows, domain.CompositionRow{
				SiteCode:   site,
				Taxon:      domain.OtherTaxonLabel,
				TotalCount: other,
			})
		}
	}
	return rows
}

// AggregateTemporalByRegion sums counts by (region, quarter). Pairs
// with no matching records are omitted rather than emitted as zero.
// Rows are ordered region ascending, quarter ascending.
func AggregateTemporalByRegion(filtered []domain.JoinedRecord) []domain.RegionQuarterRow {
	type key struct {
		region  domain.Region
		quarter domain.Quarter
	}

	totals := make(map[key]int)
	for _, rec := range filtered {
		totals[key{rec.Region, rec.Quarter}] += rec.Count
	}

	rows := make([]domain.RegionQuarterRow, 0, len(totals))
	for k, total := range totals {
		rows = append(rows, domain.RegionQuarterRow{
			Region:     k.region,
			Quarter:    k.quarter,
			TotalCount: total,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Region != rows[j].Region {
			return rows[i].Region < rows[j].Region
		}
		return quarterOrder[rows[i].Quarter] < quarterOrder[rows[j].Quarter]
	})
	return rows
}

// AggregateSiteTotals sums counts per site for map bubble sizing. Sites
// without a coordinate pair are excluded from this output only; they
// still appear in every other aggregate.
func AggregateSiteTotals(filtered []domain.JoinedRecord) []domain.SiteTotalRow {
	type coords struct{ lat, lon float64 }

	totals := make(map[string]int)
	positions := make(map[string]coords)
	for _, rec := range filtered {
		if !rec.HasCoordinates() {
			continue
		}
		totals[rec.SiteCode] += rec.Count
		positions[rec.SiteCode] = coords{*rec.Lat, *rec.Lon}
	}

	rows := make([]domain.SiteTotalRow, 0, len(totals))
	for _, site := range sortedKeys(totals) {
		rows = append(rows, domain.SiteTotalRow{
			SiteCode:   site,
			Lat:        positions[site].lat,
			Lon:        positions[site].lon,
			TotalCount: totals[site],
		})
	}
	return rows
}

// AggregateMonthlyAbundance sums counts by (month, site) for the
// abundance time series, ordered month ascending then site ascending.
func AggregateMonthlyAbundance(filtered []domain.JoinedRecord) []domain.MonthlyAbundanceRow {
	type key struct {
		month string
		site  string
	}

	totals := make(map[key]int)
	for _, rec := range filtered {
		totals[key{rec.Month, rec.SiteCode}] += rec.Count
	}

	rows := make([]domain.MonthlyAbundanceRow, 0, len(totals))
	for k, total := range totals {
		rows = append(rows, domain.MonthlyAbundanceRow{
			Month:      k.month,
			SiteCode:   k.site,
			TotalCount: total,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		return rows[i].SiteCode < rows[j].SiteCode
	})
	return rows
}

// AggregateDiversity computes species richness and the Shannon index
// per (site, year) over per-taxon summed counts. Zero-count taxa do not
// contribute; a group with no positive counts has H = 0. Rows ordered
// site ascending, year ascending.
func AggregateDiversity(filtered []domain.JoinedRecord) []domain.DiversityRow {
	type key struct {
		site string
		year int
	}

	groups := make(map[key]map[string]int)
	for _, rec := range filtered {
		k := key{rec.SiteCode, rec.Year}
		taxa, ok := groups[k]
		if !ok {
			taxa = make(map[string]int)
			groups[k] = taxa
		}
		taxa[rec.TaxonName] += rec.Count
	}

	rows := make([]domain.DiversityRow, 0, len(groups))
	for k, taxa := range groups {
		rows = append(rows, domain.DiversityRow{
			SiteCode: k.site,
			Year:     k.year,
			Richness: len(taxa),
			Shannon:  shannonIndex(taxa),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SiteCode != rows[j].SiteCode {
			return rows[i].SiteCode < rows[j].SiteCode
		}
		return rows[i].Year < rows[j].Year
	})
	return rows
}

func shannonIndex(taxa map[string]int) float64 {
	total := 0
	for _, count := range taxa {
		if count > 0 {
			total += count
		}
	}
	if total == 0 {
		return 0
	}

	h := 0.0
	for _, count := range taxa {
		if count <= 0 {
			continue
		}
		p := float64(count) / float64(total)
		h -= p * math.Log(p)
	}
	return h
}

// Summarize returns the record/site/taxon counts of the filtered set.
func Summarize(filtered []domain.JoinedRecord) domain.SummaryStats {
	sites := make(map[string]bool)
	taxa := make(map[string]bool)
	for _, rec := range filtered {
		sites[rec.SiteCode] = true
		taxa[rec.TaxonName] = true
	}
	return domain.SummaryStats{
		Records: len(filtered),
		Sites:   len(sites),
		Taxa:    len(taxa),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
