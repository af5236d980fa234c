package dto

import (
	"time"

	"github.com/arthropod-dashboard/internal/domain"
)

// FilterRequest - тело запроса для всех dashboard-эндпоинтов. An absent
// field decodes to a nil slice ("all"); an explicit empty array decodes
// to an empty non-nil slice and matches nothing. Dates are inclusive
// YYYY-MM-DD bounds.
type FilterRequest struct {
	Sites []string `json:"sites" validate:"omitempty,max=500,dive,min=1"`
	Taxa  []string `json:"taxa" validate:"omitempty,max=500,dive,min=1"`
	Years []int    `json:"years" validate:"omitempty,max=200,dive,min=1800,max=2200"`
	Traps []string `json:"traps" validate:"omitempty,max=500,dive,min=1"`

	DateFrom string `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
}

// ToSelection converts the request into the domain value object,
// preserving the nil-vs-empty distinction of every set field.
func (r FilterRequest) ToSelection() (domain.FilterSelection, error) {
	sel := domain.FilterSelection{
		Sites: r.Sites,
		Taxa:  r.Taxa,
		Years: r.Years,
		Traps: r.Traps,
	}

	if r.DateFrom != "" {
		from, err := time.Parse("2006-01-02", r.DateFrom)
		if err != nil {
			return domain.FilterSelection{}, err
		}
		sel.DateFrom = &from
	}
	if r.DateTo != "" {
		to, err := time.Parse("2006-01-02", r.DateTo)
		if err != nil {
			return domain.FilterSelection{}, err
		}
		sel.DateTo = &to
	}

	return sel, nil
}
