package freetime

import (
	"fmt"
	"time"
)

// validateID проверяет идентификатор ресурса или здания
func validateID(name string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidInput, name)
	}
	return nil
}

// buildWindow переводит даты запроса в окно [start 00:00, end+1 00:00) в часовом поясе loc
func buildWindow(startDate, endDate time.Time, loc *time.Location, maxRangeDays int) (time.Time, time.Time, error) {
	if startDate.IsZero() || endDate.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date and end_date are required", ErrInvalidInput)
	}

	// Сравниваем календарные даты, а не моменты: сутки на переходе на летнее время короче
	startDay := calendarDay(startDate)
	endDay := calendarDay(endDate)

	if endDay.Before(startDay) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date %s is before start_date %s",
			ErrInvalidRange, endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}

	days := int(endDay.Sub(startDay).Hours()/24) + 1
	if maxRangeDays > 0 && days > maxRangeDays {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %d days requested, at most %d allowed",
			ErrInvalidRange, days, maxRangeDays)
	}

	windowStart := time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 0, 0, 0, 0, loc)
	windowEnd := time.Date(endDay.Year(), endDay.Month(), endDay.Day()+1, 0, 0, 0, 0, loc)

	return windowStart, windowEnd, nil
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
