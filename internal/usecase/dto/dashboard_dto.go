package dto

import "github.com/arthropod-dashboard/internal/domain"

// DashboardResponse - все виды плюс сводка за один запрос: интерактивный
// дашборд пересчитывает каждый график на каждое взаимодействие.
type DashboardResponse struct {
	Composition      []domain.CompositionRow      `json:"composition"`
	TemporalByRegion []domain.RegionQuarterRow    `json:"temporal_by_region"`
	SiteTotals       []domain.SiteTotalRow        `json:"site_totals"`
	MonthlyAbundance []domain.MonthlyAbundanceRow `json:"monthly_abundance"`
	Diversity        []domain.DiversityRow        `json:"diversity"`
	Summary          domain.SummaryStats          `json:"summary"`
}

// HealthResponse - статус сервиса для liveness-проверки
type HealthResponse struct {
	Status        string `json:"status"`
	DatasetLoaded bool   `json:"dataset_loaded"`
	Records       int    `json:"records"`
}
