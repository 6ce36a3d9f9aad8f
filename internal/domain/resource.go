package domain

import "time"

// ResourceConfig параметры расписания бронируемого ресурса (зал, комната, оборудование)
// Только для чтения: ресурсы администрируются вне сервиса
type ResourceConfig struct {
	ID                     int64
	BuildingID             int64
	Name                   string
	BookingTimeMinutes     int  // длительность слота
	Active                 bool
	DeactivateApplication  bool // слоты показываются, но недоступны для заявки
	DeactivateCalendar     bool // ресурс не выдаёт слотов вообще
	SimpleBooking          bool
	SimpleBookingStartDate *time.Time // раньше этого момента бронировать нельзя
	BookingDayHorizon      int        // 0 = без ограничения
	BookingBufferDeadline  int        // минуты, на которые сдвигается "сейчас"
}

// ProducesSlots возвращает true, если ресурс вообще показывается в календаре
func (r *ResourceConfig) ProducesSlots() bool {
	return r.Active && !r.DeactivateCalendar
}

// SlotDuration длительность одного слота
func (r *ResourceConfig) SlotDuration() time.Duration {
	return time.Duration(r.BookingTimeMinutes) * time.Minute
}

// HasBookingStart возвращает true, если для simple booking задана дата начала приёма заявок
func (r *ResourceConfig) HasBookingStart() bool {
	return r.SimpleBooking && r.SimpleBookingStartDate != nil
}

// HasDayHorizon возвращает true, если бронировать можно только на ограниченное число дней вперёд
func (r *ResourceConfig) HasDayHorizon() bool {
	return r.BookingDayHorizon > 0
}
