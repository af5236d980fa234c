package usecase

import (
	"github.com/arthropod-dashboard/internal/domain"
)

// ApplyFilter returns the subsequence of records matching the
// selection, preserving the original order. Clauses are AND-combined;
// within a clause membership is OR over the chosen set. A nil set means
// the clause is unrestricted; a non-nil empty set matches nothing.
// Members referencing unknown sites, taxa or years simply match zero
// records rather than failing.
func ApplyFilter(records []domain.JoinedRecord, sel domain.FilterSelection) []domain.JoinedRecord {
	if sel.IsUnrestricted() {
		return records
	}

	sites := toStringSet(sel.Sites)
	taxa := toStringSet(sel.Taxa)
	traps := toStringSet(sel.Traps)
	years := toIntSet(sel.Years)

	filtered := make([]domain.JoinedRecord, 0, len(records))
	for _, rec := range records {
		if sites != nil && !sites[rec.SiteCode] {
			continue
		}
		if taxa != nil && !taxa[rec.TaxonName] {
			continue
		}
		if traps != nil && !traps[rec.TrapName] {
			continue
		}
		if years != nil && !years[rec.Year] {
			continue
		}
		if sel.DateFrom != nil && rec.SampleDate.Before(*sel.DateFrom) {
			continue
		}
		if sel.DateTo != nil && rec.SampleDate.After(*sel.DateTo) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

// toStringSet keeps the nil-vs-empty distinction: nil in, nil out.
func toStringSet(values []string) map[string]bool {
	if values == nil {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func toIntSet(values []int) map[int]bool {
	if values == nil {
		return nil
	}
	set := make(map[int]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
