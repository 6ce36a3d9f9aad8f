package freetime

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-FreetimeService/internal/domain"
)

// slotStub слот до классификации
type slotStub struct {
	start time.Time
	end   time.Time
}

// when подпись слота: "dd/mm-YYYY HH:MM - dd/mm-YYYY HH:MM" в местном времени
func (s slotStub) when() string {
	return s.start.Format(domain.WhenFormat) + " - " + s.end.Format(domain.WhenFormat)
}

// generateSlots разбивает окно [windowStart, windowEnd) на слоты длиной booking_time_minutes
// Начало окна выравнивается вниз до границы слота, отсчитанной от местной полуночи.
// Последний слот не выходит за windowEnd: неполный хвост отбрасывается
// maxSlots ограничивает число слотов одного ресурса
func generateSlots(cfg *domain.ResourceConfig, windowStart, windowEnd time.Time, loc *time.Location, maxSlots int) ([]slotStub, error) {
	// Ресурс без календаря не показывает слотов вообще
	if !cfg.ProducesSlots() {
		return []slotStub{}, nil
	}

	if cfg.BookingTimeMinutes <= 0 {
		return nil, fmt.Errorf("%w: resource %d has booking_time_minutes=%d",
			ErrConfigInconsistent, cfg.ID, cfg.BookingTimeMinutes)
	}

	duration := cfg.SlotDuration()
	start := alignToSlot(windowStart.In(loc), duration)
	end := windowEnd.In(loc)

	if !start.Before(end) {
		return []slotStub{}, nil
	}

	count := int(end.Sub(start) / duration)
	if count > maxSlots {
		return nil, fmt.Errorf("%w: %d slots of %d minutes exceed limit %d",
			ErrTooManySlots, count, cfg.BookingTimeMinutes, maxSlots)
	}

	slots := make([]slotStub, 0, count)
	for current := start; !current.Add(duration).After(end); current = current.Add(duration) {
		slots = append(slots, slotStub{start: current, end: current.Add(duration)})
	}

	return slots, nil
}

// slotLimit предел слотов на ресурс: минутные слоты самого длинного допустимого окна
// плюс час на переход с летнего времени. Без ограничения периода действует domain.MaxSlotsPerResource
func slotLimit(maxRangeDays int) int {
	if maxRangeDays <= 0 {
		return domain.MaxSlotsPerResource
	}
	return (maxRangeDays*24 + 1) * 60
}

// alignToSlot выравнивает момент вниз до границы слота от полуночи того же дня
func alignToSlot(t time.Time, duration time.Duration) time.Time {
	midnight := startOfDay(t)
	offset := t.Sub(midnight)
	return midnight.Add(offset / duration * duration)
}

// startOfDay местная полночь дня, к которому относится t
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
