package domain

// Статусы заявок, влияющие на классификацию
const (
	// ApplicationStatusPartial заявка в процессе заполнения
	ApplicationStatusPartial = "NEWPARTIAL1"
)

// SeasonStatusPublished только опубликованные сезоны дают выделения и бронирования
const SeasonStatusPublished = "PUBLISHED"

// Ограничения движка
const (
	// MaxSlotsPerResource предел слотов на ресурс, когда длина периода не ограничена конфигурацией
	MaxSlotsPerResource = 200000
)

// Форматы времени
const (
	DateFormat = "2006-01-02"          // YYYY-MM-DD
	WhenFormat = "02/01-2006 15:04"    // dd/mm-YYYY HH:MM
	ISOFormat  = "2006-01-02T15:04:05-07:00"
)
