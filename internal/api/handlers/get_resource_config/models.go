package get_resource_config

import (
	"github.com/m04kA/SMC-FreetimeService/internal/domain"
)

// ResourceConfigResponse параметры расписания ресурса
type ResourceConfigResponse struct {
	ID                     int64   `json:"id"`
	BuildingID             int64   `json:"building_id"`
	Name                   string  `json:"name"`
	BookingTimeMinutes     int     `json:"booking_time_minutes"`
	Active                 bool    `json:"active"`
	DeactivateApplication  bool    `json:"deactivate_application"`
	DeactivateCalendar     bool    `json:"deactivate_calendar"`
	SimpleBooking          bool    `json:"simple_booking"`
	SimpleBookingStartDate *string `json:"simple_booking_start_date"`
	BookingDayHorizon      int     `json:"booking_day_horizon"`
	BookingBufferDeadline  int     `json:"booking_buffer_deadline"`
}

// FromDomain конвертирует доменную модель в HTTP response
func FromDomain(cfg *domain.ResourceConfig) *ResourceConfigResponse {
	resp := &ResourceConfigResponse{
		ID:                    cfg.ID,
		BuildingID:            cfg.BuildingID,
		Name:                  cfg.Name,
		BookingTimeMinutes:    cfg.BookingTimeMinutes,
		Active:                cfg.Active,
		DeactivateApplication: cfg.DeactivateApplication,
		DeactivateCalendar:    cfg.DeactivateCalendar,
		SimpleBooking:         cfg.SimpleBooking,
		BookingDayHorizon:     cfg.BookingDayHorizon,
		BookingBufferDeadline: cfg.BookingBufferDeadline,
	}

	if cfg.SimpleBookingStartDate != nil {
		start := cfg.SimpleBookingStartDate.Format(domain.ISOFormat)
		resp.SimpleBookingStartDate = &start
	}

	return resp
}
