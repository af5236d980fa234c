package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arthropod-dashboard/internal/domain"
	"github.com/arthropod-dashboard/internal/domain/repository"
	"github.com/arthropod-dashboard/internal/pkg/errors"
)

// datasetRepository reads the same three source relations the CSV
// loader does, from tables mirroring the survey export schema. The
// joined relation is still built in memory by the record store; the
// database is only an alternative home for the raw tables.
type datasetRepository struct {
	db *DB
}

func NewDatasetRepository(db *DB) repository.DatasetRepository {
	return &datasetRepository{db: db}
}

type observationRow struct {
	SiteCode   string         `db:"site_code"`
	SampleDate time.Time      `db:"sample_date"`
	TaxonName  string         `db:"display_name"`
	TrapName   sql.NullString `db:"trap_name"`
	Count      sql.NullInt64  `db:"count"`
	Observer   sql.NullString `db:"observer"`
	Comments   sql.NullString `db:"comments"`
	Flags      sql.NullString `db:"flags"`
	Authority  sql.NullString `db:"authority"`
}

func (r *datasetRepository) LoadObservations(ctx context.Context) ([]domain.Observation, error) {
	query := `
		SELECT site_code, sample_date, display_name, trap_name, count,
		       observer, comments, flags, authority
		FROM observations
		WHERE site_code IS NOT NULL AND site_code <> ''
		ORDER BY id`

	var rows []observationRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		r.db.logger.Error("Failed to load observations", zap.Error(err))
		return nil, fmt.Errorf("load observations: %w", err)
	}

	observations := make([]domain.Observation, 0, len(rows))
	for i, row := range rows {
		// NULL count reads as zero, same as an empty CSV cell.
		count := int(row.Count.Int64)
		if count < 0 {
			return nil, errors.NewDataFormat("observations",
				fmt.Sprintf("negative count %d at row %d", count, i+1))
		}

		observations = append(observations, domain.Observation{
			SiteCode:   row.SiteCode,
			SampleDate: row.SampleDate,
			TaxonName:  row.TaxonName,
			TrapName:   row.TrapName.String,
			Count:      count,
			Observer:   row.Observer.String,
			Comments:   row.Comments.String,
			Flags:      row.Flags.String,
			Authority:  row.Authority.String,
		})
	}

	return observations, nil
}

func (r *datasetRepository) LoadSiteMetadata(ctx context.Context) ([]domain.SiteMetadata, error) {
	// DISTINCT ON keeps the first complete coordinate pair per site,
	// matching the CSV loader's duplicate policy.
	query := `
		SELECT DISTINCT ON (site_code) site_code, lat, long AS lon
		FROM sites
		WHERE site_code IS NOT NULL AND site_code <> ''
		  AND lat IS NOT NULL AND long IS NOT NULL
		ORDER BY site_code, id`

	var metadata []domain.SiteMetadata
	if err := r.db.SelectContext(ctx, &metadata, query); err != nil {
		r.db.logger.Error("Failed to load site metadata", zap.Error(err))
		return nil, fmt.Errorf("load site metadata: %w", err)
	}

	return metadata, nil
}

type landUseRow struct {
	SiteCode string `db:"site_code"`
	LandUse  string `db:"landuse"`
}

func (r *datasetRepository) LoadLandUse(ctx context.Context) ([]domain.LandUseClass, error) {
	query := `
		SELECT DISTINCT ON (site_code) site_code, landuse
		FROM site_landuse
		WHERE site_code IS NOT NULL AND site_code <> ''
		ORDER BY site_code, id`

	var rows []landUseRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		r.db.logger.Error("Failed to load land-use classes", zap.Error(err))
		return nil, fmt.Errorf("load land-use classes: %w", err)
	}

	classes := make([]domain.LandUseClass, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, domain.LandUseClass{
			SiteCode: row.SiteCode,
			LandUse:  domain.ParseRegion(row.LandUse),
		})
	}

	return classes, nil
}
