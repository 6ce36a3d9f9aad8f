package slots

import (
	"strconv"

	"github.com/m04kA/SMC-FreetimeService/internal/domain"
	"github.com/m04kA/SMC-FreetimeService/internal/usecase/freetime"
)

// Overlap в JSON свободный слот - false, занятый - 1, 2 или 3
type Overlap int

// MarshalJSON реализует json.Marshaler
func (o Overlap) MarshalJSON() ([]byte, error) {
	if o == 0 {
		return []byte("false"), nil
	}
	return []byte(strconv.Itoa(int(o))), nil
}

// TimeSlot HTTP модель слота
type TimeSlot struct {
	When          string        `json:"when"`
	Start         int64         `json:"start"` // epoch ms
	End           int64         `json:"end"`
	Overlap       Overlap       `json:"overlap"`
	StartISO      string        `json:"start_iso"`
	EndISO        string        `json:"end_iso"`
	ResourceID    *int64        `json:"resource_id,omitempty"`
	OverlapReason string        `json:"overlap_reason,omitempty"`
	OverlapType   string        `json:"overlap_type,omitempty"`
	OverlapEvent  *OverlapEvent `json:"overlap_event,omitempty"`
}

// OverlapEvent сущность, из-за которой слот занят
type OverlapEvent struct {
	ID     int64   `json:"id"`
	Type   string  `json:"type"`
	Status *string `json:"status"`
}

// FromUseCase конвертирует слоты use case в HTTP модель
func FromUseCase(slots []freetime.TimeSlot) []TimeSlot {
	result := make([]TimeSlot, len(slots))
	for i, slot := range slots {
		result[i] = TimeSlot{
			When:          slot.When,
			Start:         slot.Start.UnixMilli(),
			End:           slot.End.UnixMilli(),
			Overlap:       Overlap(slot.Overlap),
			StartISO:      slot.Start.Format(domain.ISOFormat),
			EndISO:        slot.End.Format(domain.ISOFormat),
			ResourceID:    slot.ResourceID,
			OverlapReason: string(slot.Reason),
			OverlapType:   string(slot.Type),
		}
		if slot.Event != nil {
			result[i].OverlapEvent = &OverlapEvent{
				ID:     slot.Event.ID,
				Type:   string(slot.Event.Type),
				Status: slot.Event.Status,
			}
		}
	}
	return result
}

// FromUseCaseMap конвертирует ответ по зданию, ключи - id ресурсов строками
func FromUseCaseMap(byResource map[int64][]freetime.TimeSlot) map[string][]TimeSlot {
	result := make(map[string][]TimeSlot, len(byResource))
	for resourceID, resourceSlots := range byResource {
		result[strconv.FormatInt(resourceID, 10)] = FromUseCase(resourceSlots)
	}
	return result
}
