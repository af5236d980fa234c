package repository

import (
	"context"

	"github.com/arthropod-dashboard/internal/domain"
)

// DatasetRepository loads the three raw source relations. A source with
// a missing required column or an unparsable value fails its load with
// a DATA_FORMAT_ERROR; there is no partial-load mode.
type DatasetRepository interface {
	// LoadObservations returns the arthropod survey rows with sample
	// dates parsed and counts coerced to non-negative integers.
	LoadObservations(ctx context.Context) ([]domain.Observation, error)

	// LoadSiteMetadata returns one coordinate pair per site code. Rows
	// lacking a complete pair are skipped; duplicate site codes keep
	// the first complete row.
	LoadSiteMetadata(ctx context.Context) ([]domain.SiteMetadata, error)

	// LoadLandUse returns the site -> land-use classification.
	LoadLandUse(ctx context.Context) ([]domain.LandUseClass, error)
}
