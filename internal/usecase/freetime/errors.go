package freetime

import "errors"

var (
	// ErrNotFound возвращается, когда ресурс или здание не найдены
	ErrNotFound = errors.New("not found")

	// ErrInvalidRange возвращается, когда конец периода раньше начала или период слишком длинный
	ErrInvalidRange = errors.New("invalid date range")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrTooManySlots возвращается, когда период для ресурса даёт больше слотов, чем допустимо
	ErrTooManySlots = errors.New("too many slots")

	// ErrUpstreamUnavailable возвращается при ошибке чтения данных (можно повторить запрос)
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrConfigInconsistent возвращается при некорректной настройке ресурса, например booking_time_minutes <= 0
	ErrConfigInconsistent = errors.New("resource config inconsistent")
)
