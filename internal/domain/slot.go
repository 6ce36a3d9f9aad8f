package domain

// Overlap значение занятости слота
type Overlap int

const (
	OverlapNone        Overlap = 0 // свободен
	OverlapBooked      Overlap = 1 // занят другим
	OverlapProvisional Overlap = 2 // предварительная заявка или блокировка
	OverlapPast        Overlap = 3 // недоступен по времени
)

// String значение для лейблов метрик и логов
func (o Overlap) String() string {
	switch o {
	case OverlapNone:
		return "free"
	case OverlapBooked:
		return "booked"
	case OverlapProvisional:
		return "provisional"
	case OverlapPast:
		return "past"
	default:
		return "unknown"
	}
}

// OverlapReason почему слот недоступен
type OverlapReason string

const (
	ReasonNone                 OverlapReason = ""
	ReasonTimeInPast           OverlapReason = "time_in_past"
	ReasonBeforeBookingStart   OverlapReason = "before_booking_start"
	ReasonBeyondBookingHorizon OverlapReason = "beyond_booking_horizon"
	ReasonCompleteOverlap      OverlapReason = "complete_overlap"
	ReasonCompleteContainment  OverlapReason = "complete_containment"
	ReasonStartOverlap         OverlapReason = "start_overlap"
	ReasonEndOverlap           OverlapReason = "end_overlap"
)

// OverlapType характер пересечения
type OverlapType string

const (
	TypeNone     OverlapType = ""
	TypeDisabled OverlapType = "disabled"
	TypeComplete OverlapType = "complete"
	TypePartial  OverlapType = "partial"
)
