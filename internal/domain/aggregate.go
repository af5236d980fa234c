package domain

import "time"

// OtherTaxonLabel is the synthetic overflow bucket absorbing all taxa
// beyond the per-site top-N cutoff in the composition view.
const OtherTaxonLabel = "Other"

// CompositionRow - one (site, kept-taxon-or-"Other") cell of the
// community composition view.
type CompositionRow struct {
	SiteCode   string `json:"site_code"`
	Taxon      string `json:"taxon"`
	TotalCount int    `json:"total_count"`
}

// RegionQuarterRow - one (region, quarter) cell of the quarterly
// abundance view. Pairs with no matching records are omitted, never
// emitted as zero; dense-grid zero-filling is the renderer's job.
type RegionQuarterRow struct {
	Region     Region  `json:"region"`
	Quarter    Quarter `json:"quarter"`
	TotalCount int     `json:"total_count"`
}

// SiteTotalRow - per-site total for map bubble sizing. Only sites with
// a complete coordinate pair appear here.
type SiteTotalRow struct {
	SiteCode   string  `json:"site_code"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	TotalCount int     `json:"total_count"`
}

// MonthlyAbundanceRow - per-month, per-site total for the abundance
// time series.
type MonthlyAbundanceRow struct {
	Month      string `json:"month"` // YYYY-MM
	SiteCode   string `json:"site_code"`
	TotalCount int    `json:"total_count"`
}

// DiversityRow - per-site, per-year community diversity metrics:
// species richness and the Shannon index over per-taxon summed counts.
type DiversityRow struct {
	SiteCode string  `json:"site_code"`
	Year     int     `json:"year"`
	Richness int     `json:"richness"`
	Shannon  float64 `json:"shannon"`
}

// SummaryStats - the record/site/taxon counts shown alongside the
// charts for the current filtered set.
type SummaryStats struct {
	Records int `json:"records"`
	Sites   int `json:"sites"`
	Taxa    int `json:"taxa"`
}

// FilterOptions is the selectable universe for the filter widgets,
// derived from the entire unfiltered relation. It deliberately does not
// shrink as filters narrow, so the UI's choices stay stable.
type FilterOptions struct {
	Sites []string `json:"sites"`
	// Taxa is the top-100 taxa ranked by total count descending, ties
	// broken by name ascending.
	Taxa    []string  `json:"taxa"`
	Traps   []string  `json:"traps"`
	Years   []int     `json:"years"`
	MinDate time.Time `json:"min_date"`
	MaxDate time.Time `json:"max_date"`
}

// LoadSummary describes one build of the joined relation, including the
// unknown-reference counts logged as warnings during the join.
type LoadSummary struct {
	Records            int       `json:"records"`
	Sites              int       `json:"sites"`
	SitesWithoutCoords int       `json:"sites_without_coords"`
	SitesWithoutRegion int       `json:"sites_without_region"`
	LoadedAt           time.Time `json:"loaded_at"`
}
