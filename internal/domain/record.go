package domain

import "time"

// Region is the coarse land-use classification assigned to a site.
type Region string

const (
	RegionUrban        Region = "Urban"
	RegionDesert       Region = "Desert"
	RegionAgricultural Region = "Agricultural"

	// RegionOther doubles as the policy default for sites absent from
	// the land-use relation. Sites are never dropped for lacking a
	// classification.
	RegionOther Region = "Other"
)

// ParseRegion maps a raw landuse label to a Region. Anything outside the
// known labels collapses into RegionOther.
func ParseRegion(s string) Region {
	switch Region(s) {
	case RegionUrban, RegionDesert, RegionAgricultural:
		return Region(s)
	default:
		return RegionOther
	}
}

// Quarter is one of the four three-month buckets of the calendar year.
type Quarter string

const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
	Q4 Quarter = "Q4"
)

// QuarterOf derives the quarter from a sample date's month
// (Q1: months 1-3, Q2: 4-6, Q3: 7-9, Q4: 10-12).
func QuarterOf(t time.Time) Quarter {
	switch {
	case t.Month() <= 3:
		return Q1
	case t.Month() <= 6:
		return Q2
	case t.Month() <= 9:
		return Q3
	default:
		return Q4
	}
}

// Observation - one row from the arthropod survey relation. Immutable
// once loaded. Invariants enforced by the loader: count >= 0, valid
// sample date, non-empty site code.
type Observation struct {
	SiteCode   string    `json:"site_code" db:"site_code"`
	SampleDate time.Time `json:"sample_date" db:"sample_date"`
	TaxonName  string    `json:"display_name" db:"display_name"`
	TrapName   string    `json:"trap_name" db:"trap_name"`
	Count      int       `json:"count" db:"count"`

	// Passthrough metadata, carried but ignored by the pipeline.
	Observer  string `json:"observer,omitempty" db:"observer"`
	Comments  string `json:"comments,omitempty" db:"comments"`
	Flags     string `json:"flags,omitempty" db:"flags"`
	Authority string `json:"authority,omitempty" db:"authority"`
}

// SiteMetadata - coordinates for a site. Lat/Lon come as a pair; a site
// without a complete pair has no SiteMetadata entry at all.
type SiteMetadata struct {
	SiteCode string  `json:"site_code" db:"site_code"`
	Lat      float64 `json:"lat" db:"lat"`
	Lon      float64 `json:"lon" db:"lon"`
}

// LandUseClass - NLCD-derived land-use classification for a site.
type LandUseClass struct {
	SiteCode string `json:"site_code" db:"site_code"`
	LandUse  Region `json:"landuse" db:"landuse"`
}

// JoinedRecord is the materialized combination of an Observation with
// its site coordinates (nullable) and land-use region (always
// populated). Year, Quarter and Month are pure functions of the sample
// date, computed once at build time. The joined relation is read-only
// after the build.
type JoinedRecord struct {
	SiteCode   string    `json:"site_code"`
	SampleDate time.Time `json:"sample_date"`
	TaxonName  string    `json:"display_name"`
	TrapName   string    `json:"trap_name"`
	Count      int       `json:"count"`

	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`

	Region  Region  `json:"region"`
	Year    int     `json:"year"`
	Quarter Quarter `json:"quarter"`
	Month   string  `json:"month"` // YYYY-MM
}

// HasCoordinates reports whether the record's site carried a complete
// lat/lon pair. Records without coordinates still participate in every
// non-spatial aggregate.
func (r *JoinedRecord) HasCoordinates() bool {
	return r.Lat != nil && r.Lon != nil
}
