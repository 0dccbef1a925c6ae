package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Leganyst/production-scheduler/internal/capacity"
)

type CreateLineRequest struct {
	Name                string          `json:"name" validate:"required,max=100"`
	DefaultHoursPerDay  decimal.Decimal `json:"default_hours_per_day"`
	DefaultHoursPerWeek decimal.Decimal `json:"default_hours_per_week"`
	OrderPosition       int             `json:"order_position" validate:"min=0"`
	SpecialCustomerName string          `json:"special_customer_name" validate:"max=100"`
	TimeZone            string          `json:"time_zone" validate:"max=64"`
}

type UpdateLineRequest struct {
	Name                *string          `json:"name" validate:"omitempty,max=100"`
	DefaultHoursPerDay  *decimal.Decimal `json:"default_hours_per_day"`
	DefaultHoursPerWeek *decimal.Decimal `json:"default_hours_per_week"`
	OrderPosition       *int             `json:"order_position" validate:"omitempty,min=0"`
	SpecialCustomerName *string          `json:"special_customer_name" validate:"omitempty,max=100"`
	TimeZone            *string          `json:"time_zone" validate:"omitempty,max=64"`
	Active              *bool            `json:"active"`
}

func (r CreateLineRequest) ToSpec() capacity.LineSpec {
	return capacity.LineSpec{
		Name:                r.Name,
		DefaultHoursPerDay:  r.DefaultHoursPerDay,
		DefaultHoursPerWeek: r.DefaultHoursPerWeek,
		OrderPosition:       r.OrderPosition,
		SpecialCustomerName: r.SpecialCustomerName,
		TimeZone:            r.TimeZone,
	}
}

func (r UpdateLineRequest) ToPatch() capacity.LinePatch {
	return capacity.LinePatch{
		Name:                r.Name,
		DefaultHoursPerDay:  r.DefaultHoursPerDay,
		DefaultHoursPerWeek: r.DefaultHoursPerWeek,
		OrderPosition:       r.OrderPosition,
		SpecialCustomerName: r.SpecialCustomerName,
		TimeZone:            r.TimeZone,
		Active:              r.Active,
	}
}
