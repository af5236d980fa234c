// Package docs Arthropod Survey Dashboard API.
//
// Backend for the long-term arthropod field-survey dashboard: joins
// survey records with site coordinates and NLCD-derived land-use
// classes, applies multi-select filters (sites, taxa, years, traps,
// date range) and serves the aggregated views the charts bind to.
//
// Views:
// - Community composition (top-10 taxa per site with "Other" bucket)
// - Quarterly abundance by land-use region
// - Per-site totals for map bubble sizing
// - Monthly abundance time series
// - Diversity metrics (richness, Shannon index) per site and year
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
