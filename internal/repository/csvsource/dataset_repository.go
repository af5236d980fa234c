package csvsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arthropod-dashboard/internal/config"
	"github.com/arthropod-dashboard/internal/domain"
	"github.com/arthropod-dashboard/internal/domain/repository"
	"github.com/arthropod-dashboard/internal/pkg/errors"
)

// Recognized column synonyms for site coordinates, checked in order;
// the first matching header wins.
var (
	latColumns = []string{"lat", "latitude", "Lat", "Latitude"}
	lonColumns = []string{"long", "lon", "longitude", "Longitude", "Long"}
)

// Accepted sample-date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

type datasetRepository struct {
	cfg    *config.DataConfig
	logger *zap.Logger
}

// NewDatasetRepository returns a DatasetRepository reading the three
// source relations from header-row CSV files.
func NewDatasetRepository(cfg *config.DataConfig, logger *zap.Logger) repository.DatasetRepository {
	return &datasetRepository{
		cfg:    cfg,
		logger: logger,
	}
}

func (r *datasetRepository) LoadObservations(ctx context.Context) ([]domain.Observation, error) {
	source := filepath.Base(r.cfg.ObservationsPath)

	header, rows, err := readCSV(ctx, r.cfg.ObservationsPath)
	if err != nil {
		return nil, err
	}

	cols := indexColumns(header)
	required := []string{"site_code", "sample_date", "display_name", "count"}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, errors.NewDataFormat(source, fmt.Sprintf("required column %q is missing", name))
		}
	}

	observations := make([]domain.Observation, 0, len(rows))
	for i, row := range rows {
		line := i + 2 // header is line 1

		siteCode := strings.TrimSpace(field(row, cols, "site_code"))
		if siteCode == "" {
			return nil, errors.NewDataFormat(source, fmt.Sprintf("empty site_code at line %d", line))
		}

		rawDate := strings.TrimSpace(field(row, cols, "sample_date"))
		sampleDate, err := parseDate(rawDate)
		if err != nil {
			return nil, errors.NewDataFormat(source,
				fmt.Sprintf("unparsable sample_date %q at line %d", rawDate, line))
		}

		count, err := parseCount(field(row, cols, "count"))
		if err != nil {
			return nil, errors.NewDataFormat(source,
				fmt.Sprintf("invalid count %q at line %d", field(row, cols, "count"), line))
		}

		observations = append(observations, domain.Observation{
			SiteCode:   siteCode,
			SampleDate: sampleDate,
			TaxonName:  strings.TrimSpace(field(row, cols, "display_name")),
			TrapName:   strings.TrimSpace(field(row, cols, "trap_name")),
			Count:      count,
			Observer:   strings.TrimSpace(field(row, cols, "observer")),
			Comments:   strings.TrimSpace(field(row, cols, "comments")),
			Flags:      strings.TrimSpace(field(row, cols, "flags")),
			Authority:  strings.TrimSpace(field(row, cols, "authority")),
		})
	}

	r.logger.Info("Observations loaded",
		zap.String("source", source),
		zap.Int("rows", len(observations)),
	)
	return observations, nil
}

func (r *datasetRepository) LoadSiteMetadata(ctx context.Context) ([]domain.SiteMetadata, error) {
	source := filepath.Base(r.cfg.SitesPath)

	header, rows, err := readCSV(ctx, r.cfg.SitesPath)
	if err != nil {
		return nil, err
	}

	cols := indexColumns(header)
	if _, ok := cols["site_code"]; !ok {
		return nil, errors.NewDataFormat(source, `required column "site_code" is missing`)
	}

	latCol := firstColumn(cols, latColumns)
	lonCol := firstColumn(cols, lonColumns)
	if latCol == "" || lonCol == "" {
		return nil, errors.NewDataFormat(source, "no recognized latitude/longitude columns")
	}

	seen := make(map[string]bool)
	metadata := make([]domain.SiteMetadata, 0, len(rows))
	for _, row := range rows {
		siteCode := strings.TrimSpace(field(row, cols, "site_code"))
		if siteCode == "" || seen[siteCode] {
			continue
		}

		// Rows missing either coordinate contribute nothing; the site
		// simply has no metadata entry.
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(field(row, cols, latCol)), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(field(row, cols, lonCol)), 64)
		if latErr != nil || lonErr != nil {
			continue
		}

		seen[siteCode] = true
		metadata = append(metadata, domain.SiteMetadata{
			SiteCode: siteCode,
			Lat:      lat,
			Lon:      lon,
		})
	}

	r.logger.Info("Site metadata loaded",
		zap.String("source", source),
		zap.String("lat_column", latCol),
		zap.String("lon_column", lonCol),
		zap.Int("sites", len(metadata)),
	)
	return metadata, nil
}

func (r *datasetRepository) LoadLandUse(ctx context.Context) ([]domain.LandUseClass, error) {
	source := filepath.Base(r.cfg.LandUsePath)

	header, rows, err := readCSV(ctx, r.cfg.LandUsePath)
	if err != nil {
		return nil, err
	}

	cols := indexColumns(header)
	for _, name := range []string{"site_code", "landuse"} {
		if _, ok := cols[name]; !ok {
			return nil, errors.NewDataFormat(source, fmt.Sprintf("required column %q is missing", name))
		}
	}

	seen := make(map[string]bool)
	classes := make([]domain.LandUseClass, 0, len(rows))
	for _, row := range rows {
		siteCode := strings.TrimSpace(field(row, cols, "site_code"))
		if siteCode == "" || seen[siteCode] {
			continue
		}
		seen[siteCode] = true

		classes = append(classes, domain.LandUseClass{
			SiteCode: siteCode,
			LandUse:  domain.ParseRegion(strings.TrimSpace(field(row, cols, "landuse"))),
		})
	}

	r.logger.Info("Land-use classes loaded",
		zap.String("source", source),
		zap.Int("sites", len(classes)),
	)
	return classes, nil
}

// readCSV reads a header-row CSV file in full. Ragged rows are
// tolerated; missing trailing fields read as empty.
func readCSV(ctx context.Context, path string) (header []string, rows [][]string, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err = reader.Read()
	if err == io.EOF {
		return nil, nil, errors.NewDataFormat(filepath.Base(path), "file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	rows, err = reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows of %s: %w", path, err)
	}

	return header, rows, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, exists := cols[name]; !exists {
			cols[name] = i
		}
	}
	return cols
}

func firstColumn(cols map[string]int, candidates []string) string {
	for _, name := range candidates {
		if _, ok := cols[name]; ok {
			return name
		}
	}
	return ""
}

func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseCount coerces a count cell to a non-negative integer. An empty
// cell counts as zero, matching how the source data marks absent traps.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}
